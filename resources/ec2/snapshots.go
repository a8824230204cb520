package ec2

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/moepig/aws-inventory/resources"
)

// SnapshotLister implements resources.Lister for EBS snapshots owned by the account
type SnapshotLister struct {
	resources.Descriptor
	client EC2API
}

// NewSnapshotLister creates a new EBS snapshot lister
func NewSnapshotLister() *SnapshotLister {
	return &SnapshotLister{
		Descriptor: resources.Descriptor{
			ResourceType: resources.TypeEC2Snapshot,
			ReportTitle:  "EC2:Snapshots",
			Header: resources.Columns{
				"snapshot_id",
				"state",
				"environment",
				"size",
				"create_time",
			},
		},
	}
}

// List retrieves the snapshots owned by the calling account. Public and shared
// snapshots are left out.
func (l *SnapshotLister) List(ctx context.Context, cfg resources.ListerConfig) ([]resources.Record, error) {
	client, err := clientFor(ctx, l.client, cfg)
	if err != nil {
		return nil, err
	}

	slog.Debug("Calling DescribeSnapshots", "region", cfg.Region)
	resp, err := client.DescribeSnapshots(ctx, &ec2.DescribeSnapshotsInput{
		OwnerIds: []string{"self"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe snapshots: %w", err)
	}

	records := make([]resources.Record, 0, len(resp.Snapshots))
	for _, ss := range resp.Snapshots {
		tags := convertTags(ss.Tags)
		records = append(records, resources.Record{
			Fields: map[string]any{
				"snapshot_id": aws.ToString(ss.SnapshotId),
				"state":       string(ss.State),
				"environment": tags.Get("Environment"),
				"size":        aws.ToInt32(ss.VolumeSize),
				"create_time": aws.ToTime(ss.StartTime),
			},
			Tags: tags,
		})
	}
	return records, nil
}
