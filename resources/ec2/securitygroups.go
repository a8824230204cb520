package ec2

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/moepig/aws-inventory/resources"
)

// SecurityGroupLister implements resources.Lister for security groups
type SecurityGroupLister struct {
	resources.Descriptor
	client EC2API
}

// NewSecurityGroupLister creates a new security group lister
func NewSecurityGroupLister() *SecurityGroupLister {
	return &SecurityGroupLister{
		Descriptor: resources.Descriptor{
			ResourceType: resources.TypeSecurityGroup,
			ReportTitle:  "EC2:SG",
			Header: resources.Columns{
				"id",
				"group_name",
				"name",
				"environment",
			},
		},
	}
}

// List retrieves the security groups of the region
func (l *SecurityGroupLister) List(ctx context.Context, cfg resources.ListerConfig) ([]resources.Record, error) {
	client, err := clientFor(ctx, l.client, cfg)
	if err != nil {
		return nil, err
	}

	slog.Debug("Calling DescribeSecurityGroups", "region", cfg.Region)
	resp, err := client.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe security groups: %w", err)
	}

	records := make([]resources.Record, 0, len(resp.SecurityGroups))
	for _, sg := range resp.SecurityGroups {
		tags := convertTags(sg.Tags)
		records = append(records, resources.Record{
			Fields: map[string]any{
				"id":          aws.ToString(sg.GroupId),
				"group_name":  aws.ToString(sg.GroupName),
				"environment": tags.Get("Environment"),
			},
			Tags: tags,
		})
	}
	return records, nil
}
