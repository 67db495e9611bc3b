// File: pkg/storage/s3compat/s3compat.go

// Package s3compat implements storage.Storage on top of any service that speaks
// the S3 API. Provider packages build the SDK client with their own credentials
// and endpoint and hand it to New.
package s3compat

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"cosctl/pkg/common"
	"cosctl/pkg/storage"
)

// Maximum number of concurrent GetBucketLocation calls made while listing buckets
const locationLookupConcurrency = 8

type Storage struct {
	client   API
	provider common.Provider
	logger   *slog.Logger

	mu       sync.RWMutex
	endpoint string
}

var (
	_ storage.Storage        = (*Storage)(nil)
	_ storage.EndpointSetter = (*Storage)(nil)
)

func New(client API, provider common.Provider, logger *slog.Logger) *Storage {
	return &Storage{
		client:   client,
		provider: provider,
		logger:   logger,
	}
}

func (s *Storage) ProviderName() common.Provider {
	return s.provider
}

// SetEndpoint switches all subsequent requests to the given endpoint. A bare host
// name is assumed to be served over https.
func (s *Storage) SetEndpoint(endpoint string) {
	normalized := NormalizeEndpoint(endpoint)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Debug("Switching service endpoint", "from", s.endpoint, "to", normalized)
	s.endpoint = normalized
}

// Endpoint returns the endpoint override, or an empty string if the client's own endpoint is in use
func (s *Storage) Endpoint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.endpoint
}

// Per-call options applied to every request
func (s *Storage) callOptions() []func(*s3.Options) {
	endpoint := s.Endpoint()
	if endpoint == "" {
		return nil
	}
	return []func(*s3.Options){
		func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		},
	}
}

func (s *Storage) Close() error {
	// The SDK client holds no resources that need releasing
	return nil
}

// NormalizeEndpoint turns a host name into a URL, leaving full URLs untouched
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return ""
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}
	return strings.TrimRight(endpoint, "/")
}
