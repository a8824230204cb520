// Package s3 lists S3 buckets.
package s3

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/moepig/aws-inventory/resources"
)

const noSuchTagSet = "NoSuchTagSet"

// S3API defines the S3 API interface
type S3API interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	GetBucketLocation(ctx context.Context, params *s3.GetBucketLocationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error)
	GetBucketTagging(ctx context.Context, params *s3.GetBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error)
}

// Lister implements resources.Lister for S3 buckets. Buckets are account-wide,
// so the lister is queried once per run.
type Lister struct {
	resources.Descriptor
	client S3API
}

// NewLister creates a new S3 bucket lister
func NewLister() *Lister {
	return &Lister{
		Descriptor: resources.Descriptor{
			ResourceType: resources.TypeS3,
			ReportTitle:  "S3",
			Header: resources.Columns{
				"name",
				"region",
				"environment",
				"created_time",
			},
			ListScope: resources.ScopeGlobal,
		},
	}
}

// List retrieves all buckets, then the location and tags of each bucket
func (l *Lister) List(ctx context.Context, cfg resources.ListerConfig) ([]resources.Record, error) {
	client := l.client
	if client == nil {
		awsCfg, err := resources.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		client = s3.NewFromConfig(awsCfg)
	}

	slog.Debug("Calling ListBuckets")
	resp, err := client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}

	records := make([]resources.Record, 0, len(resp.Buckets))
	for _, bucket := range resp.Buckets {
		name := aws.ToString(bucket.Name)
		region := getBucketRegion(ctx, client, name)
		tags := getBucketTags(ctx, client, name, region)
		records = append(records, resources.Record{
			Fields: map[string]any{
				"name":         name,
				"region":       region,
				"environment":  tags.Get("Environment"),
				"created_time": aws.ToTime(bucket.CreationDate),
			},
			Tags: tags,
		})
	}
	return records, nil
}

// getBucketRegion returns the region a bucket lives in, or "" if it cannot be determined
func getBucketRegion(ctx context.Context, client S3API, bucket string) string {
	resp, err := client.GetBucketLocation(ctx, &s3.GetBucketLocationInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		slog.Debug("GetBucketLocation failed", "bucket", bucket, "error", err)
		return ""
	}
	return normalizeLocation(resp.LocationConstraint)
}

// normalizeLocation maps legacy location constraints to region names
func normalizeLocation(location s3types.BucketLocationConstraint) string {
	switch location {
	case "":
		return "us-east-1"
	case s3types.BucketLocationConstraintEu:
		return "eu-west-1"
	default:
		return string(location)
	}
}

// getBucketTags returns the tags of one bucket. Buckets without tags answer
// NoSuchTagSet; that and any other failure yield no tags.
func getBucketTags(ctx context.Context, client S3API, bucket, region string) resources.Tags {
	var optFns []func(*s3.Options)
	if region != "" {
		optFns = append(optFns, func(o *s3.Options) {
			o.Region = region
		})
	}

	resp, err := client.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{
		Bucket: aws.String(bucket),
	}, optFns...)
	if err != nil {
		var apiErr smithy.APIError
		if !errors.As(err, &apiErr) || apiErr.ErrorCode() != noSuchTagSet {
			slog.Debug("GetBucketTagging failed", "bucket", bucket, "error", err)
		}
		return nil
	}
	return resources.NewTags(resp.TagSet,
		func(t s3types.Tag) *string { return t.Key },
		func(t s3types.Tag) *string { return t.Value })
}
