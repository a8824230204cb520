package resources

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

// DefaultGlobalRegion is used for clients of global services such as S3
const DefaultGlobalRegion = "us-east-1"

// LoadAWSConfig loads the SDK configuration for the region of cfg. Credentials
// come from the default provider chain, optionally narrowed to a shared profile.
func LoadAWSConfig(ctx context.Context, cfg ListerConfig) (aws.Config, error) {
	region := cfg.Region
	if region == "" {
		region = DefaultGlobalRegion
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}

	slog.Debug("Loading AWS configuration", "region", region, "profile", cfg.Profile)
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsCfg, nil
}
