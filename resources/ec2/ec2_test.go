package ec2

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/moepig/aws-inventory/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEC2Client is a mock implementation of EC2API
type MockEC2Client struct {
	mock.Mock
}

func (m *MockEC2Client) DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ec2.DescribeInstancesOutput), args.Error(1)
}

func (m *MockEC2Client) DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ec2.DescribeVpcsOutput), args.Error(1)
}

func (m *MockEC2Client) DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ec2.DescribeSecurityGroupsOutput), args.Error(1)
}

func (m *MockEC2Client) DescribeVolumes(ctx context.Context, params *ec2.DescribeVolumesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVolumesOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ec2.DescribeVolumesOutput), args.Error(1)
}

func (m *MockEC2Client) DescribeSnapshots(ctx context.Context, params *ec2.DescribeSnapshotsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSnapshotsOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ec2.DescribeSnapshotsOutput), args.Error(1)
}

func tag(key, value string) ec2types.Tag {
	return ec2types.Tag{Key: aws.String(key), Value: aws.String(value)}
}

func project(l resources.Lister, records []resources.Record) []resources.Row {
	rows := make([]resources.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, l.Project(r))
	}
	return rows
}

func TestListers_Descriptors(t *testing.T) {
	testCases := []struct {
		lister   resources.Lister
		typ      resources.Type
		title    string
		firstCol string
	}{
		{NewInstanceLister(), resources.TypeEC2, "EC2", "name"},
		{NewVPCLister(), resources.TypeVPC, "VPC", "id"},
		{NewSecurityGroupLister(), resources.TypeSecurityGroup, "EC2:SG", "id"},
		{NewVolumeLister(), resources.TypeVolume, "EC2:Volumes", "id"},
		{NewSnapshotLister(), resources.TypeEC2Snapshot, "EC2:Snapshots", "snapshot_id"},
	}
	for _, tc := range testCases {
		t.Run(string(tc.typ), func(t *testing.T) {
			assert.Equal(t, tc.typ, tc.lister.Type())
			assert.Equal(t, tc.title, tc.lister.Title())
			assert.Equal(t, tc.firstCol, tc.lister.Columns()[0])
			assert.Equal(t, resources.ScopeRegional, tc.lister.Scope())
		})
	}
}

func TestInstanceLister_List(t *testing.T) {
	launch := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	t.Run("flattens reservations", func(t *testing.T) {
		mockClient := new(MockEC2Client)
		lister := &InstanceLister{Descriptor: NewInstanceLister().Descriptor, client: mockClient}

		mockClient.On("DescribeInstances", mock.Anything, mock.Anything, mock.Anything).Return(&ec2.DescribeInstancesOutput{
			Reservations: []ec2types.Reservation{
				{Instances: []ec2types.Instance{
					{
						InstanceId:       aws.String("i-1"),
						State:            &ec2types.InstanceState{Name: ec2types.InstanceStateNameRunning},
						PublicIpAddress:  aws.String("203.0.113.1"),
						PrivateIpAddress: aws.String("10.0.0.1"),
						LaunchTime:       aws.Time(launch),
						Tags: []ec2types.Tag{
							tag("Name", "web-1"),
							tag("Tenant", "acme"),
							tag("Environment", "production"),
						},
					},
				}},
				{Instances: []ec2types.Instance{
					{
						InstanceId:       aws.String("i-2"),
						State:            &ec2types.InstanceState{Name: ec2types.InstanceStateNameStopped},
						PrivateIpAddress: aws.String("10.0.0.2"),
					},
				}},
			},
		}, nil)

		records, err := lister.List(context.Background(), resources.ListerConfig{Region: "us-east-1"})
		require.NoError(t, err)
		require.Len(t, records, 2)

		rows := project(lister, records)
		assert.Equal(t, resources.Row{"web-1", "acme", "production", "running", "203.0.113.1", "10.0.0.1", launch, "i-1"}, rows[0])
		assert.Equal(t, resources.Row{nil, "", "", "stopped", "", "10.0.0.2", time.Time{}, "i-2"}, rows[1])

		mockClient.AssertExpectations(t)
	})

	t.Run("api error", func(t *testing.T) {
		mockClient := new(MockEC2Client)
		lister := &InstanceLister{Descriptor: NewInstanceLister().Descriptor, client: mockClient}

		mockClient.On("DescribeInstances", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("UnauthorizedOperation"))

		records, err := lister.List(context.Background(), resources.ListerConfig{Region: "sa-east-1"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to describe instances")
		assert.Nil(t, records)
	})

	t.Run("sorted by name through a query", func(t *testing.T) {
		mockClient := new(MockEC2Client)
		lister := &InstanceLister{Descriptor: NewInstanceLister().Descriptor, client: mockClient}

		mockClient.On("DescribeInstances", mock.Anything, mock.Anything, mock.Anything).Return(&ec2.DescribeInstancesOutput{
			Reservations: []ec2types.Reservation{{Instances: []ec2types.Instance{
				{InstanceId: aws.String("i-b"), Tags: []ec2types.Tag{tag("Name", "bravo"), tag("Environment", "staging")}},
				{InstanceId: aws.String("i-a"), Tags: []ec2types.Tag{tag("Name", "alpha"), tag("Environment", "production")}},
				{InstanceId: aws.String("i-c"), Tags: []ec2types.Tag{tag("Name", "charlie"), tag("Environment", "production")}},
			}}},
		}, nil)

		records, err := lister.List(context.Background(), resources.ListerConfig{Region: "us-east-1"})
		require.NoError(t, err)

		opts, err := resources.ParseOptions([]string{"name", "environment=production"}, lister.Columns())
		require.NoError(t, err)
		seq, err := resources.Query{Columns: lister.Columns(), Options: opts, Project: lister.Project}.Run(records)
		require.NoError(t, err)

		var names []any
		for row := range seq {
			names = append(names, row[0])
		}
		assert.Equal(t, []any{"alpha", "charlie"}, names)
	})
}

func TestVPCLister_List(t *testing.T) {
	output := &ec2.DescribeVpcsOutput{
		Vpcs: []ec2types.Vpc{
			{
				VpcId:     aws.String("vpc-1"),
				IsDefault: aws.Bool(true),
				CidrBlock: aws.String("10.0.0.0/16"),
				Tags:      []ec2types.Tag{tag("Name", "prod")},
			},
			{
				VpcId:     aws.String("vpc-2"),
				IsDefault: aws.Bool(false),
				CidrBlock: aws.String("10.1.0.0/16"),
				Tags:      []ec2types.Tag{tag("Name", "apps"), tag("Environment", "staging")},
			},
		},
	}

	t.Run("includes default VPCs", func(t *testing.T) {
		mockClient := new(MockEC2Client)
		lister := &VPCLister{Descriptor: NewVPCLister().Descriptor, client: mockClient}
		mockClient.On("DescribeVpcs", mock.Anything, mock.Anything, mock.Anything).Return(output, nil)

		records, err := lister.List(context.Background(), resources.ListerConfig{Region: "us-east-1"})
		require.NoError(t, err)

		rows := project(lister, records)
		require.Len(t, rows, 2)
		assert.Equal(t, resources.Row{"vpc-1", "prod", true, "", "10.0.0.0/16"}, rows[0])
		assert.Equal(t, resources.Row{"vpc-2", "apps", false, "staging", "10.1.0.0/16"}, rows[1])
	})

	t.Run("excludes default VPCs", func(t *testing.T) {
		mockClient := new(MockEC2Client)
		lister := &VPCLister{Descriptor: NewVPCLister().Descriptor, client: mockClient}
		mockClient.On("DescribeVpcs", mock.Anything, mock.Anything, mock.Anything).Return(output, nil)

		records, err := lister.List(context.Background(), resources.ListerConfig{Region: "us-east-1", ExcludeDefaultVPC: true})
		require.NoError(t, err)

		rows := project(lister, records)
		require.Len(t, rows, 1)
		assert.Equal(t, "vpc-2", rows[0][0])
	})

	t.Run("only default VPC excluded leaves empty report", func(t *testing.T) {
		mockClient := new(MockEC2Client)
		lister := &VPCLister{Descriptor: NewVPCLister().Descriptor, client: mockClient}
		mockClient.On("DescribeVpcs", mock.Anything, mock.Anything, mock.Anything).Return(&ec2.DescribeVpcsOutput{
			Vpcs: output.Vpcs[:1],
		}, nil)

		records, err := lister.List(context.Background(), resources.ListerConfig{Region: "us-east-1", ExcludeDefaultVPC: true})
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestSecurityGroupLister_List(t *testing.T) {
	mockClient := new(MockEC2Client)
	lister := &SecurityGroupLister{Descriptor: NewSecurityGroupLister().Descriptor, client: mockClient}

	mockClient.On("DescribeSecurityGroups", mock.Anything, mock.Anything, mock.Anything).Return(&ec2.DescribeSecurityGroupsOutput{
		SecurityGroups: []ec2types.SecurityGroup{
			{GroupId: aws.String("sg-1"), GroupName: aws.String("default")},
			{
				GroupId:   aws.String("sg-2"),
				GroupName: aws.String("web"),
				Tags:      []ec2types.Tag{tag("Name", "web-sg"), tag("Environment", "production")},
			},
		},
	}, nil)

	records, err := lister.List(context.Background(), resources.ListerConfig{Region: "eu-west-1"})
	require.NoError(t, err)

	rows := project(lister, records)
	assert.Equal(t, []resources.Row{
		{"sg-1", "default", nil, ""},
		{"sg-2", "web", "web-sg", "production"},
	}, rows)
}

func TestVolumeLister_List(t *testing.T) {
	created := time.Date(2023, 12, 24, 18, 0, 0, 0, time.UTC)
	mockClient := new(MockEC2Client)
	lister := &VolumeLister{Descriptor: NewVolumeLister().Descriptor, client: mockClient}

	mockClient.On("DescribeVolumes", mock.Anything, mock.Anything, mock.Anything).Return(&ec2.DescribeVolumesOutput{
		Volumes: []ec2types.Volume{
			{VolumeId: aws.String("vol-big"), Size: aws.Int32(100), State: ec2types.VolumeStateInUse, CreateTime: aws.Time(created)},
			{VolumeId: aws.String("vol-small"), Size: aws.Int32(8), State: ec2types.VolumeStateAvailable, CreateTime: aws.Time(created)},
		},
	}, nil)

	records, err := lister.List(context.Background(), resources.ListerConfig{Region: "us-east-1"})
	require.NoError(t, err)

	seq, err := resources.Query{Columns: lister.Columns(), Options: resources.Options{SortBy: "size"}}.Run(records)
	require.NoError(t, err)
	assert.Equal(t, []resources.Row{
		{"vol-small", int32(8), "available", created},
		{"vol-big", int32(100), "in-use", created},
	}, slices.Collect(seq))
}

func TestSnapshotLister_List(t *testing.T) {
	started := time.Date(2024, 2, 2, 2, 2, 2, 0, time.UTC)

	t.Run("requests snapshots owned by the account", func(t *testing.T) {
		mockClient := new(MockEC2Client)
		lister := &SnapshotLister{Descriptor: NewSnapshotLister().Descriptor, client: mockClient}

		mockClient.On("DescribeSnapshots", mock.Anything, mock.MatchedBy(func(in *ec2.DescribeSnapshotsInput) bool {
			return slices.Equal(in.OwnerIds, []string{"self"})
		}), mock.Anything).Return(&ec2.DescribeSnapshotsOutput{
			Snapshots: []ec2types.Snapshot{
				{
					SnapshotId: aws.String("snap-1"),
					State:      ec2types.SnapshotStateCompleted,
					VolumeSize: aws.Int32(30),
					StartTime:  aws.Time(started),
					Tags:       []ec2types.Tag{tag("Environment", "production")},
				},
			},
		}, nil)

		records, err := lister.List(context.Background(), resources.ListerConfig{Region: "us-east-1"})
		require.NoError(t, err)
		assert.Equal(t, []resources.Row{{"snap-1", "completed", "production", int32(30), started}}, project(lister, records))
		mockClient.AssertExpectations(t)
	})

	t.Run("api error", func(t *testing.T) {
		mockClient := new(MockEC2Client)
		lister := &SnapshotLister{Descriptor: NewSnapshotLister().Descriptor, client: mockClient}
		mockClient.On("DescribeSnapshots", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

		_, err := lister.List(context.Background(), resources.ListerConfig{Region: "us-east-1"})
		assert.ErrorContains(t, err, "failed to describe snapshots")
	})
}
