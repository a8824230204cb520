// Package elasticache lists ElastiCache cache clusters and snapshots.
package elasticache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/elasticache"
	elasticachetypes "github.com/aws/aws-sdk-go-v2/service/elasticache/types"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	taggingtypes "github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi/types"
	"github.com/moepig/aws-inventory/resources"
)

const clusterResourceType = "elasticache:cluster"

// ElastiCacheAPI defines the ElastiCache API interface
type ElastiCacheAPI interface {
	DescribeCacheClusters(ctx context.Context, params *elasticache.DescribeCacheClustersInput, optFns ...func(*elasticache.Options)) (*elasticache.DescribeCacheClustersOutput, error)
	DescribeSnapshots(ctx context.Context, params *elasticache.DescribeSnapshotsInput, optFns ...func(*elasticache.Options)) (*elasticache.DescribeSnapshotsOutput, error)
}

// ResourceGroupsTaggingAPI defines the Resource Groups Tagging API interface
type ResourceGroupsTaggingAPI interface {
	GetResources(ctx context.Context, params *resourcegroupstaggingapi.GetResourcesInput, optFns ...func(*resourcegroupstaggingapi.Options)) (*resourcegroupstaggingapi.GetResourcesOutput, error)
}

// ClusterLister implements resources.Lister for cache clusters
type ClusterLister struct {
	resources.Descriptor
	elasticacheClient ElastiCacheAPI
	taggingClient     ResourceGroupsTaggingAPI
}

// NewClusterLister creates a new cache cluster lister
func NewClusterLister() *ClusterLister {
	return &ClusterLister{
		Descriptor: resources.Descriptor{
			ResourceType: resources.TypeElastiCache,
			ReportTitle:  "ElastiCache",
			Header: resources.Columns{
				"cluster_id",
				"engine",
				"status",
				"environment",
				"created_time",
			},
		},
	}
}

// List retrieves the cache clusters of the region. Tags for all clusters come
// from a single GetResources call and are joined on the cluster ARN.
func (l *ClusterLister) List(ctx context.Context, cfg resources.ListerConfig) ([]resources.Record, error) {
	elasticacheClient, taggingClient := l.elasticacheClient, l.taggingClient
	if elasticacheClient == nil || taggingClient == nil {
		awsCfg, err := resources.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		// Clients are injected in tests
		if elasticacheClient == nil {
			elasticacheClient = elasticache.NewFromConfig(awsCfg)
		}
		if taggingClient == nil {
			taggingClient = resourcegroupstaggingapi.NewFromConfig(awsCfg)
		}
	}

	slog.Debug("Calling DescribeCacheClusters", "region", cfg.Region)
	resp, err := elasticacheClient.DescribeCacheClusters(ctx, &elasticache.DescribeCacheClustersInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe cache clusters: %w", err)
	}
	if len(resp.CacheClusters) == 0 {
		return []resources.Record{}, nil
	}

	arnToTags := getClusterTags(ctx, taggingClient, cfg.Region)

	records := make([]resources.Record, 0, len(resp.CacheClusters))
	for _, cluster := range resp.CacheClusters {
		records = append(records, clusterRecord(cluster, arnToTags[aws.ToString(cluster.ARN)]))
	}
	return records, nil
}

func clusterRecord(cluster elasticachetypes.CacheCluster, tags resources.Tags) resources.Record {
	return resources.Record{
		Fields: map[string]any{
			"cluster_id":   aws.ToString(cluster.CacheClusterId),
			"engine":       aws.ToString(cluster.Engine),
			"status":       aws.ToString(cluster.CacheClusterStatus),
			"environment":  tags.Get("Environment"),
			"created_time": aws.ToTime(cluster.CacheClusterCreateTime),
		},
		Tags: tags,
	}
}

// getClusterTags maps cluster ARNs to their tags. A failed call leaves every
// cluster untagged.
func getClusterTags(ctx context.Context, client ResourceGroupsTaggingAPI, region string) map[string]resources.Tags {
	slog.Debug("Calling GetResources",
		"resource_type", clusterResourceType,
		"region", region)

	output, err := client.GetResources(ctx, &resourcegroupstaggingapi.GetResourcesInput{
		ResourceTypeFilters: []string{clusterResourceType},
	})
	if err != nil {
		slog.Debug("GetResources API call failed", "region", region, "error", err)
		return map[string]resources.Tags{}
	}

	slog.Debug("GetResources API call succeeded", "resources_count", len(output.ResourceTagMappingList))
	return buildARNToTagsMap(output.ResourceTagMappingList)
}

// buildARNToTagsMap builds a map from ARN to tags
func buildARNToTagsMap(resourceTagMappings []taggingtypes.ResourceTagMapping) map[string]resources.Tags {
	arnToTags := make(map[string]resources.Tags)
	for _, mapping := range resourceTagMappings {
		if mapping.ResourceARN == nil {
			continue
		}
		arnToTags[*mapping.ResourceARN] = resources.NewTags(mapping.Tags,
			func(t taggingtypes.Tag) *string { return t.Key },
			func(t taggingtypes.Tag) *string { return t.Value })
	}
	return arnToTags
}

// SnapshotLister implements resources.Lister for cache snapshots
type SnapshotLister struct {
	resources.Descriptor
	elasticacheClient ElastiCacheAPI
}

// NewSnapshotLister creates a new cache snapshot lister
func NewSnapshotLister() *SnapshotLister {
	return &SnapshotLister{
		Descriptor: resources.Descriptor{
			ResourceType: resources.TypeCacheSnapshot,
			ReportTitle:  "ElastiCache:Snapshots",
			Header: resources.Columns{
				"snapshot_name",
				"state",
				"source",
			},
		},
	}
}

// List retrieves the cache snapshots of the region
func (l *SnapshotLister) List(ctx context.Context, cfg resources.ListerConfig) ([]resources.Record, error) {
	client := l.elasticacheClient
	if client == nil {
		awsCfg, err := resources.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		client = elasticache.NewFromConfig(awsCfg)
	}

	slog.Debug("Calling DescribeSnapshots", "region", cfg.Region)
	resp, err := client.DescribeSnapshots(ctx, &elasticache.DescribeSnapshotsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe cache snapshots: %w", err)
	}

	records := make([]resources.Record, 0, len(resp.Snapshots))
	for _, ss := range resp.Snapshots {
		records = append(records, resources.Record{
			Fields: map[string]any{
				"snapshot_name": aws.ToString(ss.SnapshotName),
				"state":         aws.ToString(ss.SnapshotStatus),
				"source":        aws.ToString(ss.SnapshotSource),
			},
		})
	}
	return records, nil
}
