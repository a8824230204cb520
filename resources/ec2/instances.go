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

// InstanceLister implements resources.Lister for EC2 instances
type InstanceLister struct {
	resources.Descriptor
	client EC2API
}

// NewInstanceLister creates a new EC2 instance lister
func NewInstanceLister() *InstanceLister {
	return &InstanceLister{
		Descriptor: resources.Descriptor{
			ResourceType: resources.TypeEC2,
			ReportTitle:  "EC2",
			Header: resources.Columns{
				"name",
				"customer",
				"environment",
				"state",
				"ip",
				"private_ip",
				"launch_time",
				"id",
			},
		},
	}
}

// List retrieves the instances of every reservation in the region
func (l *InstanceLister) List(ctx context.Context, cfg resources.ListerConfig) ([]resources.Record, error) {
	client, err := clientFor(ctx, l.client, cfg)
	if err != nil {
		return nil, err
	}

	slog.Debug("Calling DescribeInstances", "region", cfg.Region)
	resp, err := client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe instances: %w", err)
	}

	var records []resources.Record
	for _, reservation := range resp.Reservations {
		for _, instance := range reservation.Instances {
			records = append(records, instanceRecord(instance))
		}
	}
	slog.Debug("Described instances", "region", cfg.Region, "count", len(records))
	return records, nil
}

func instanceRecord(instance ec2types.Instance) resources.Record {
	tags := convertTags(instance.Tags)

	var state string
	if instance.State != nil {
		state = string(instance.State.Name)
	}

	// "name" is resolved through the Name tag
	return resources.Record{
		Fields: map[string]any{
			"customer":           tags.Get("Tenant"),
			"environment":        tags.Get("Environment"),
			"state":              state,
			"ip_address":         aws.ToString(instance.PublicIpAddress),
			"private_ip_address": aws.ToString(instance.PrivateIpAddress),
			"launch_time":        aws.ToTime(instance.LaunchTime),
			"id":                 aws.ToString(instance.InstanceId),
		},
		Tags: tags,
	}
}
