// Package rds lists RDS database instances and their snapshots.
package rds

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/moepig/aws-inventory/resources"
)

// unnamedDatabase is shown for instances created without an initial database
const unnamedDatabase = "???"

// RDSAPI defines the RDS API interface
type RDSAPI interface {
	DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error)
	DescribeDBSnapshots(ctx context.Context, params *rds.DescribeDBSnapshotsInput, optFns ...func(*rds.Options)) (*rds.DescribeDBSnapshotsOutput, error)
}

func clientFor(ctx context.Context, injected RDSAPI, cfg resources.ListerConfig) (RDSAPI, error) {
	if injected != nil {
		return injected, nil
	}
	awsCfg, err := resources.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return rds.NewFromConfig(awsCfg), nil
}

// InstanceLister implements resources.Lister for DB instances
type InstanceLister struct {
	resources.Descriptor
	client RDSAPI
}

// NewInstanceLister creates a new DB instance lister
func NewInstanceLister() *InstanceLister {
	return &InstanceLister{
		Descriptor: resources.Descriptor{
			ResourceType: resources.TypeRDS,
			ReportTitle:  "RDS",
			Header: resources.Columns{
				"dbname",
				"id",
				"uri",
			},
		},
	}
}

// List retrieves the DB instances of the region
func (l *InstanceLister) List(ctx context.Context, cfg resources.ListerConfig) ([]resources.Record, error) {
	client, err := clientFor(ctx, l.client, cfg)
	if err != nil {
		return nil, err
	}

	slog.Debug("Calling DescribeDBInstances", "region", cfg.Region)
	resp, err := client.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe DB instances: %w", err)
	}

	records := make([]resources.Record, 0, len(resp.DBInstances))
	for _, db := range resp.DBInstances {
		dbName := aws.ToString(db.DBName)
		if dbName == "" {
			dbName = unnamedDatabase
		}
		records = append(records, resources.Record{
			Fields: map[string]any{
				"dbname": dbName,
				"id":     aws.ToString(db.DBInstanceIdentifier),
				"uri":    connectionURI(db),
			},
			Tags: convertTags(db.TagList),
		})
	}
	return records, nil
}

// connectionURI derives engine://user@host:port/dbname. The host part is left
// empty while the instance has no endpoint yet.
func connectionURI(db rdstypes.DBInstance) string {
	uri := fmt.Sprintf("%s://%s@", aws.ToString(db.Engine), aws.ToString(db.MasterUsername))
	if db.Endpoint != nil && db.Endpoint.Address != nil {
		uri += aws.ToString(db.Endpoint.Address)
		if port := aws.ToInt32(db.Endpoint.Port); port != 0 {
			uri += fmt.Sprintf(":%d", port)
		}
	}
	if name := aws.ToString(db.DBName); name != "" {
		uri += "/" + name
	}
	return uri
}

// SnapshotLister implements resources.Lister for DB snapshots
type SnapshotLister struct {
	resources.Descriptor
	client RDSAPI
}

// NewSnapshotLister creates a new DB snapshot lister
func NewSnapshotLister() *SnapshotLister {
	return &SnapshotLister{
		Descriptor: resources.Descriptor{
			ResourceType: resources.TypeDBSnapshot,
			ReportTitle:  "RDS:Snapshots",
			Header: resources.Columns{
				"snapshot_id",
				"db_id",
				"engine",
				"create_time",
			},
		},
	}
}

// List retrieves the DB snapshots of the region
func (l *SnapshotLister) List(ctx context.Context, cfg resources.ListerConfig) ([]resources.Record, error) {
	client, err := clientFor(ctx, l.client, cfg)
	if err != nil {
		return nil, err
	}

	slog.Debug("Calling DescribeDBSnapshots", "region", cfg.Region)
	resp, err := client.DescribeDBSnapshots(ctx, &rds.DescribeDBSnapshotsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe DB snapshots: %w", err)
	}

	records := make([]resources.Record, 0, len(resp.DBSnapshots))
	for _, ss := range resp.DBSnapshots {
		records = append(records, resources.Record{
			Fields: map[string]any{
				"snapshot_id": aws.ToString(ss.DBSnapshotIdentifier),
				"db_id":       aws.ToString(ss.DBInstanceIdentifier),
				"engine":      aws.ToString(ss.Engine),
				"create_time": aws.ToTime(ss.SnapshotCreateTime),
			},
			Tags: convertTags(ss.TagList),
		})
	}
	return records, nil
}

func convertTags(tags []rdstypes.Tag) resources.Tags {
	return resources.NewTags(tags,
		func(t rdstypes.Tag) *string { return t.Key },
		func(t rdstypes.Tag) *string { return t.Value })
}
