// File: pkg/storage/aws/aws.go
package aws

import (
	"context"
	"fmt"
	"log/slog"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"cosctl/internal/config"
	"cosctl/internal/provider/registry"
	"cosctl/pkg/common"
	"cosctl/pkg/storage"
	"cosctl/pkg/storage/s3compat"
)

func init() {
	registry.RegisterProvider("aws", registry.ProviderRegistration{
		ConfigCheck:  isConfigured,
		Initializer:  initialize,
		Description:  "Amazon S3 or another S3-compatible service",
		RequiredKeys: []string{"aws.region"},
	})
}

// Checks if the AWS region is set
func isConfigured(cfg *config.Config) bool {
	return cfg.AWS.Region != ""
}

func initialize(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if !isConfigured(cfg) {
		return nil, fmt.Errorf("AWS configuration missing or incomplete")
	}
	return NewAWSStorage(ctx, cfg.AWS, logger)
}

// NewAWSStorage loads credentials from the default chain (environment, shared
// config, instance roles) and returns an S3 backed storage client
func NewAWSStorage(ctx context.Context, cfg config.AWSConfig, logger *slog.Logger) (*s3compat.Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, clientOptions(cfg)...)
	logger.Debug("Created AWS S3 client", "region", cfg.Region, "endpoint", cfg.Endpoint, "pathStyle", cfg.PathStyle)

	return s3compat.New(client, common.AWS, logger), nil
}

func clientOptions(cfg config.AWSConfig) []func(*s3.Options) {
	var opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := s3compat.NormalizeEndpoint(cfg.Endpoint)
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = sdkaws.String(endpoint)
		})
	}
	if cfg.PathStyle {
		opts = append(opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	return opts
}
