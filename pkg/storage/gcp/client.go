// File: pkg/storage/gcp/client.go
package gcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	gcpstorage "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	"cosctl/internal/config"
	"cosctl/internal/provider/registry"
	"cosctl/pkg/common"
	"cosctl/pkg/storage"
)

func init() {
	registry.RegisterProvider("gcp", registry.ProviderRegistration{
		ConfigCheck:  isConfigured,
		Initializer:  initialize,
		Description:  "Google Cloud Storage",
		RequiredKeys: []string{"gcp.project"},
	})
}

// Checks if the project ID is set
func isConfigured(cfg *config.Config) bool {
	return cfg.GCP.Project != ""
}

// Initializes the GCP storage client from the configuration
func initialize(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if !isConfigured(cfg) {
		return nil, fmt.Errorf("GCP configuration missing or incomplete")
	}
	return NewGCPStorage(ctx, cfg.GCP.Project, logger)
}

type GCPStorage struct {
	client    *gcpstorage.Client
	projectID string
	logger    *slog.Logger
}

var _ storage.Storage = (*GCPStorage)(nil)

func NewGCPStorage(ctx context.Context, projectID string, logger *slog.Logger) (*GCPStorage, error) {
	client, err := gcpstorage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCP storage client: %w", err)
	}

	return &GCPStorage{
		client:    client,
		projectID: projectID,
		logger:    logger,
	}, nil
}

func (g *GCPStorage) ProviderName() common.Provider {
	return common.GCP
}

func (g *GCPStorage) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Maps SDK errors onto the storage sentinels
func classify(err error) error {
	switch {
	case errors.Is(err, gcpstorage.ErrBucketNotExist):
		return fmt.Errorf("%w: %w", storage.ErrBucketNotFound, err)
	case errors.Is(err, gcpstorage.ErrObjectNotExist):
		return fmt.Errorf("%w: %w", storage.ErrObjectNotFound, err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusForbidden, http.StatusUnauthorized:
			return fmt.Errorf("%w: %w", storage.ErrAccessDenied, err)
		case http.StatusBadRequest:
			return fmt.Errorf("%w: %w", storage.ErrInvalidInput, err)
		}
	}
	return err
}

func bucketError(op, bucket string, err error) error {
	return storage.NewBucketError(op, bucket, classify(err))
}

func objectError(op, bucket, key string, err error) error {
	return storage.NewObjectError(op, bucket, key, classify(err))
}
