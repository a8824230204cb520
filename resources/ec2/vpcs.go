package ec2

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/moepig/aws-inventory/resources"
)

// VPCLister implements resources.Lister for VPCs
type VPCLister struct {
	resources.Descriptor
	client EC2API
}

// NewVPCLister creates a new VPC lister
func NewVPCLister() *VPCLister {
	return &VPCLister{
		Descriptor: resources.Descriptor{
			ResourceType: resources.TypeVPC,
			ReportTitle:  "VPC",
			Header: resources.Columns{
				"id",
				"name",
				"default",
				"environment",
				"cidr_block",
			},
		},
	}
}

// List retrieves the VPCs of the region, leaving out default VPCs when
// cfg.ExcludeDefaultVPC is set
func (l *VPCLister) List(ctx context.Context, cfg resources.ListerConfig) ([]resources.Record, error) {
	client, err := clientFor(ctx, l.client, cfg)
	if err != nil {
		return nil, err
	}

	slog.Debug("Calling DescribeVpcs", "region", cfg.Region)
	resp, err := client.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe VPCs: %w", err)
	}

	records := make([]resources.Record, 0, len(resp.Vpcs))
	for _, vpc := range resp.Vpcs {
		if cfg.ExcludeDefaultVPC && aws.ToBool(vpc.IsDefault) {
			slog.Debug("Skipping default VPC", "vpc_id", aws.ToString(vpc.VpcId))
			continue
		}
		records = append(records, vpcRecord(vpc))
	}
	return records, nil
}

func vpcRecord(vpc ec2types.Vpc) resources.Record {
	tags := convertTags(vpc.Tags)
	return resources.Record{
		Fields: map[string]any{
			"id":          aws.ToString(vpc.VpcId),
			"default":     aws.ToBool(vpc.IsDefault),
			"environment": tags.Get("Environment"),
			"cidr_block":  aws.ToString(vpc.CidrBlock),
		},
		Tags: tags,
	}
}
