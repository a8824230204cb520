// Package elb lists classic load balancers.
package elb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing"
	elbtypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing/types"
	"github.com/moepig/aws-inventory/resources"
)

// ELBAPI defines the classic Elastic Load Balancing API interface
type ELBAPI interface {
	DescribeLoadBalancers(ctx context.Context, params *elasticloadbalancing.DescribeLoadBalancersInput, optFns ...func(*elasticloadbalancing.Options)) (*elasticloadbalancing.DescribeLoadBalancersOutput, error)
	DescribeTags(ctx context.Context, params *elasticloadbalancing.DescribeTagsInput, optFns ...func(*elasticloadbalancing.Options)) (*elasticloadbalancing.DescribeTagsOutput, error)
}

// Lister implements resources.Lister for classic load balancers
type Lister struct {
	resources.Descriptor
	client ELBAPI
}

// NewLister creates a new classic load balancer lister
func NewLister() *Lister {
	return &Lister{
		Descriptor: resources.Descriptor{
			ResourceType: resources.TypeELB,
			ReportTitle:  "EC2:ELB",
			Header: resources.Columns{
				"name",
				"customer",
				"environment",
				"created_time",
			},
		},
	}
}

// List retrieves the load balancers of the region and their tags, one
// DescribeTags call per load balancer
func (l *Lister) List(ctx context.Context, cfg resources.ListerConfig) ([]resources.Record, error) {
	client := l.client
	if client == nil {
		awsCfg, err := resources.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		client = elasticloadbalancing.NewFromConfig(awsCfg)
	}

	slog.Debug("Calling DescribeLoadBalancers", "region", cfg.Region)
	resp, err := client.DescribeLoadBalancers(ctx, &elasticloadbalancing.DescribeLoadBalancersInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe load balancers: %w", err)
	}

	records := make([]resources.Record, 0, len(resp.LoadBalancerDescriptions))
	for _, lb := range resp.LoadBalancerDescriptions {
		name := aws.ToString(lb.LoadBalancerName)
		tags := getTags(ctx, client, name)
		records = append(records, resources.Record{
			Fields: map[string]any{
				"name":         name,
				"customer":     tags.Get("Tenant"),
				"environment":  tags.Get("Environment"),
				"created_time": aws.ToTime(lb.CreatedTime),
			},
			Tags: tags,
		})
	}
	return records, nil
}

// getTags returns the tags of one load balancer; failures yield no tags
func getTags(ctx context.Context, client ELBAPI, name string) resources.Tags {
	resp, err := client.DescribeTags(ctx, &elasticloadbalancing.DescribeTagsInput{
		LoadBalancerNames: []string{name},
	})
	if err != nil {
		slog.Debug("DescribeTags failed", "load_balancer", name, "error", err)
		return nil
	}
	for _, desc := range resp.TagDescriptions {
		if aws.ToString(desc.LoadBalancerName) == name {
			return convertTags(desc.Tags)
		}
	}
	return nil
}

func convertTags(tags []elbtypes.Tag) resources.Tags {
	return resources.NewTags(tags,
		func(t elbtypes.Tag) *string { return t.Key },
		func(t elbtypes.Tag) *string { return t.Value })
}
