package ec2

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/moepig/aws-inventory/resources"
)

// VolumeLister implements resources.Lister for EBS volumes
type VolumeLister struct {
	resources.Descriptor
	client EC2API
}

// NewVolumeLister creates a new EBS volume lister
func NewVolumeLister() *VolumeLister {
	return &VolumeLister{
		Descriptor: resources.Descriptor{
			ResourceType: resources.TypeVolume,
			ReportTitle:  "EC2:Volumes",
			Header: resources.Columns{
				"id",
				"size",
				"status",
				"created_time",
			},
		},
	}
}

// List retrieves the EBS volumes of the region
func (l *VolumeLister) List(ctx context.Context, cfg resources.ListerConfig) ([]resources.Record, error) {
	client, err := clientFor(ctx, l.client, cfg)
	if err != nil {
		return nil, err
	}

	slog.Debug("Calling DescribeVolumes", "region", cfg.Region)
	resp, err := client.DescribeVolumes(ctx, &ec2.DescribeVolumesInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe volumes: %w", err)
	}

	records := make([]resources.Record, 0, len(resp.Volumes))
	for _, vol := range resp.Volumes {
		records = append(records, resources.Record{
			Fields: map[string]any{
				"id":           aws.ToString(vol.VolumeId),
				"size":         aws.ToInt32(vol.Size),
				"status":       string(vol.State),
				"created_time": aws.ToTime(vol.CreateTime),
			},
			Tags: convertTags(vol.Tags),
		})
	}
	return records, nil
}
