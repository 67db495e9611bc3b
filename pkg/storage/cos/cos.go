// File: pkg/storage/cos/cos.go

// Package cos provides the Cloud Object Storage provider. It authenticates either
// with HMAC keys (SigV4) or with an IAM API key exchanged for bearer tokens.
package cos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"cosctl/internal/config"
	"cosctl/internal/provider/registry"
	"cosctl/pkg/common"
	"cosctl/pkg/storage"
	"cosctl/pkg/storage/s3compat"
)

// DefaultEndpoint is the US cross-region public endpoint
const DefaultEndpoint = "s3.us.cloud-object-storage.appdomain.cloud"

// Signing region for HMAC requests; the service ignores its value
const hmacRegion = "ibm"

var (
	ErrAPIKeyRequired = errors.New("IAM ApiKey required to create S3 Client")
	ErrHMACRequired   = errors.New("HMAC credentials required to create S3 Client using HMAC")
)

func init() {
	registry.RegisterProvider("cos", registry.ProviderRegistration{
		ConfigCheck:  isConfigured,
		Initializer:  initialize,
		Description:  "IBM Cloud Object Storage (IAM API key or HMAC)",
		RequiredKeys: []string{"cos.credentials_file", "cos.apikey", "cos.access_key_id"},
	})
}

func isConfigured(cfg *config.Config) bool {
	return cfg.COS.IsConfigured()
}

func initialize(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	cred, err := cfg.COS.ServiceCredential()
	if err != nil {
		return nil, err
	}
	s, err := NewCOSStorage(Options{
		Endpoint:           cfg.COS.Endpoint,
		APIKey:             cred.APIKey,
		ResourceInstanceID: cred.ResourceInstanceID,
		AccessKeyID:        cred.HMACKeys.AccessKeyID,
		SecretAccessKey:    cred.HMACKeys.SecretAccessKey,
		UseHMAC:            cfg.COS.UseHMAC,
		IAMURL:             cfg.COS.IAMURL,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, configHint(cfg.COS.UseHMAC))
	}
	return s, nil
}

type Options struct {
	// Host or URL of the service; DefaultEndpoint when empty
	Endpoint string

	APIKey             string
	ResourceInstanceID string
	IAMURL             string

	AccessKeyID     string
	SecretAccessKey string
	UseHMAC         bool

	HTTPClient *http.Client
	// Path-style addressing, mostly useful against test servers
	UsePathStyle bool
}

// NewCOSStorage builds the S3 client for the selected authentication mode
func NewCOSStorage(opts Options, logger *slog.Logger) (*s3compat.Storage, error) {
	client, err := newClient(opts)
	if err != nil {
		return nil, err
	}

	mode := "iam"
	if opts.UseHMAC {
		mode = "hmac"
	}
	logger.Debug("Created object storage client", "auth", mode, "endpoint", endpointOrDefault(opts.Endpoint))

	return s3compat.New(client, common.COS, logger), nil
}

func newClient(opts Options) (*s3.Client, error) {
	s3opts := s3.Options{
		BaseEndpoint:               aws.String(s3compat.NormalizeEndpoint(endpointOrDefault(opts.Endpoint))),
		UsePathStyle:               opts.UsePathStyle,
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
		ResponseChecksumValidation: aws.ResponseChecksumValidationWhenRequired,
	}
	if opts.HTTPClient != nil {
		s3opts.HTTPClient = opts.HTTPClient
	}

	if opts.UseHMAC {
		if opts.AccessKeyID == "" || opts.SecretAccessKey == "" {
			return nil, ErrHMACRequired
		}
		s3opts.Region = hmacRegion
		s3opts.Credentials = credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")
		return s3.New(s3opts), nil
	}

	if opts.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}

	tokens := newTokenSource(opts.IAMURL, opts.APIKey, opts.HTTPClient)
	s3opts.Region = hmacRegion
	s3opts.Credentials = aws.AnonymousCredentials{}
	s3opts.APIOptions = append(s3opts.APIOptions, bearerAuth(tokens, opts.ResourceInstanceID))

	return s3.New(s3opts), nil
}

func endpointOrDefault(endpoint string) string {
	if endpoint == "" {
		return DefaultEndpoint
	}
	return endpoint
}

// Used by error messages when the configuration is incomplete
func configHint(useHMAC bool) string {
	if useHMAC {
		return "set cos.access_key_id and cos.secret_access_key, or cos.credentials_file"
	}
	return "set cos.apikey, or cos.credentials_file"
}
