// Package ec2 lists EC2 instances, VPCs, security groups, EBS volumes and EBS snapshots.
package ec2

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/moepig/aws-inventory/resources"
)

// EC2API defines the subset of the EC2 API used by the listers in this package
type EC2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error)
	DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error)
	DescribeVolumes(ctx context.Context, params *ec2.DescribeVolumesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVolumesOutput, error)
	DescribeSnapshots(ctx context.Context, params *ec2.DescribeSnapshotsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSnapshotsOutput, error)
}

// clientFor returns the injected client, or builds one for the region of cfg
func clientFor(ctx context.Context, injected EC2API, cfg resources.ListerConfig) (EC2API, error) {
	if injected != nil {
		return injected, nil
	}
	awsCfg, err := resources.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return ec2.NewFromConfig(awsCfg), nil
}

func convertTags(tags []ec2types.Tag) resources.Tags {
	return resources.NewTags(tags,
		func(t ec2types.Tag) *string { return t.Key },
		func(t ec2types.Tag) *string { return t.Value })
}
