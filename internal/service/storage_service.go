// File: internal/service/storage_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"cosctl/pkg/storage"
)

// ProviderFactory hands out initialized storage clients by provider name
type ProviderFactory interface {
	GetStorageProvider(ctx context.Context, providerName string) (storage.Storage, error)
}

type StorageService struct {
	providerFactory ProviderFactory
	logger          *slog.Logger
}

func NewStorageService(providerFactory ProviderFactory, logger *slog.Logger) *StorageService {
	return &StorageService{
		providerFactory: providerFactory,
		logger:          logger.With("service", "StorageService"),
	}
}

// --- Bucket Operations ---

func (s *StorageService) ListAllBuckets(ctx context.Context, providerNames []string) ([]storage.Bucket, error) {
	if len(providerNames) == 0 {
		return nil, nil
	}

	s.logger.Debug("Starting ListAllBuckets operation", "providers", providerNames)

	var allBuckets []storage.Bucket
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, pName := range providerNames {
		wg.Add(1)
		go func(pName string) {
			defer wg.Done()

			client, err := s.providerFactory.GetStorageProvider(ctx, pName)
			if err != nil {
				s.logger.Error("Failed to initialize provider client", "provider", pName, "error", err)
				return
			}
			defer client.Close()

			buckets, err := client.ListBuckets(ctx)
			if err != nil {
				s.logger.Error("Failed to list buckets from provider", "provider", pName, "error", err)
				return
			}

			mu.Lock()
			allBuckets = append(allBuckets, buckets...)
			mu.Unlock()

			s.logger.Debug("Successfully fetched buckets", "provider", pName, "count", len(buckets))
		}(pName)
	}

	wg.Wait()

	// The operation itself succeeded, even if some providers failed
	return allBuckets, nil
}

func (s *StorageService) DescribeBucket(ctx context.Context, bucketName, providerName string) (storage.Bucket, error) {
	s.logger.Debug("Starting DescribeBucket operation", "bucket", bucketName, "provider", providerName)

	client, err := s.getStorageClient(ctx, providerName)
	if err != nil {
		return storage.Bucket{}, err
	}
	defer client.Close()

	bucket, err := client.DescribeBucket(ctx, bucketName)
	if err != nil {
		s.logger.Error("Failed to describe bucket", "bucket", bucketName, "provider", providerName, "error", err)
		return storage.Bucket{}, err
	}
	return bucket, nil
}

func (s *StorageService) CreateBucket(ctx context.Context, bucketName, providerName, location string) error {
	s.logger.Debug("Starting CreateBucket operation", "bucket", bucketName, "provider", providerName, "location", location)

	client, err := s.getStorageClient(ctx, providerName)
	if err != nil {
		return err
	}
	defer client.Close()

	err = client.CreateBucket(ctx, bucketName, location)
	if err != nil {
		s.logger.Error("Failed to create bucket", "bucket", bucketName, "provider", providerName, "error", err)
		return err
	}
	return nil
}

func (s *StorageService) DeleteBucket(ctx context.Context, bucketName, providerName string) error {
	s.logger.Debug("Starting DeleteBucket operation", "bucket", bucketName, "provider", providerName)

	client, err := s.getStorageClient(ctx, providerName)
	if err != nil {
		return err
	}
	defer client.Close()

	err = client.DeleteBucket(ctx, bucketName)
	if err != nil {
		s.logger.Error("Failed to delete bucket", "bucket", bucketName, "provider", providerName, "error", err)
		return err
	}
	return nil
}

// --- Object Operations ---

func (s *StorageService) ListObjects(ctx context.Context, bucketName, providerName, prefix string) (storage.ObjectList, error) {
	s.logger.Debug("Starting ListObjects operation", "bucket", bucketName, "provider", providerName, "prefix", prefix)

	client, err := s.getStorageClient(ctx, providerName)
	if err != nil {
		return storage.ObjectList{}, err
	}
	defer client.Close()

	objects, err := client.ListObjects(ctx, bucketName, prefix)
	if err != nil {
		s.logger.Error("Failed to list objects", "bucket", bucketName, "provider", providerName, "error", err)
		return storage.ObjectList{}, err
	}
	return objects, nil
}

func (s *StorageService) DescribeObject(ctx context.Context, bucketName, objectKey, providerName string) (storage.Object, error) {
	s.logger.Debug("Starting DescribeObject operation", "bucket", bucketName, "object", objectKey, "provider", providerName)

	client, err := s.getStorageClient(ctx, providerName)
	if err != nil {
		return storage.Object{}, err
	}
	defer client.Close()

	object, err := client.DescribeObject(ctx, bucketName, objectKey)
	if err != nil {
		s.logger.Error("Failed to describe object", "bucket", bucketName, "object", objectKey, "provider", providerName, "error", err)
		return storage.Object{}, err
	}
	return object, nil
}

// GetObject returns the object body. Closing it also releases the provider client.
func (s *StorageService) GetObject(ctx context.Context, bucketName, objectKey, providerName string) (io.ReadCloser, error) {
	s.logger.Debug("Starting GetObject operation", "bucket", bucketName, "object", objectKey, "provider", providerName)

	client, err := s.getStorageClient(ctx, providerName)
	if err != nil {
		return nil, err
	}

	body, err := client.GetObject(ctx, bucketName, objectKey)
	if err != nil {
		client.Close()
		if errors.Is(err, storage.ErrObjectArchived) {
			s.logger.Warn("Object is archived and must be restored before download", "bucket", bucketName, "object", objectKey)
		} else {
			s.logger.Error("Failed to get object", "bucket", bucketName, "object", objectKey, "provider", providerName, "error", err)
		}
		return nil, err
	}
	return &clientBody{ReadCloser: body, client: client}, nil
}

func (s *StorageService) PutObject(ctx context.Context, bucketName, providerName string, req storage.PutObjectRequest) error {
	return s.PutObjects(ctx, bucketName, providerName, []storage.PutObjectRequest{req})
}

// PutObjects uploads the objects in parallel through one client. The first failure
// cancels the remaining uploads and is returned.
func (s *StorageService) PutObjects(ctx context.Context, bucketName, providerName string, reqs []storage.PutObjectRequest) error {
	s.logger.Debug("Starting PutObjects operation", "bucket", bucketName, "provider", providerName, "count", len(reqs))

	client, err := s.getStorageClient(ctx, providerName)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := putAll(ctx, client, bucketName, reqs); err != nil {
		s.logger.Error("Failed to put objects", "bucket", bucketName, "provider", providerName, "error", err)
		return err
	}
	return nil
}

func (s *StorageService) DeleteObject(ctx context.Context, bucketName, objectKey, providerName string) error {
	s.logger.Debug("Starting DeleteObject operation", "bucket", bucketName, "object", objectKey, "provider", providerName)

	client, err := s.getStorageClient(ctx, providerName)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.DeleteObject(ctx, bucketName, objectKey); err != nil {
		s.logger.Error("Failed to delete object", "bucket", bucketName, "object", objectKey, "provider", providerName, "error", err)
		return err
	}
	return nil
}

func (s *StorageService) RestoreObject(ctx context.Context, bucketName, objectKey, providerName string, req storage.RestoreRequest) error {
	req = req.WithDefaults()
	s.logger.Debug("Starting RestoreObject operation", "bucket", bucketName, "object", objectKey, "provider", providerName, "days", req.Days, "tier", req.Tier)

	client, err := s.getStorageClient(ctx, providerName)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.RestoreObject(ctx, bucketName, objectKey, req); err != nil {
		s.logger.Error("Failed to restore object", "bucket", bucketName, "object", objectKey, "provider", providerName, "error", err)
		return err
	}
	s.logger.Info("Restore requested", "bucket", bucketName, "object", objectKey, "days", req.Days, "tier", req.Tier)
	return nil
}

// GetArchiveStatus fetches the object headers and decodes its archive state
func (s *StorageService) GetArchiveStatus(ctx context.Context, bucketName, objectKey, providerName string) (storage.ArchiveStatus, error) {
	obj, err := s.DescribeObject(ctx, bucketName, objectKey, providerName)
	if err != nil {
		return storage.ArchiveStatus{}, err
	}

	status := storage.NewArchiveStatus(obj)
	logArchiveStatus(s.logger, status)
	return status, nil
}

// Helper to initialize the storage client and handle common error logging
func (s *StorageService) getStorageClient(ctx context.Context, providerName string) (storage.Storage, error) {
	client, err := s.providerFactory.GetStorageProvider(ctx, providerName)
	if err != nil {
		s.logger.Error("Failed to initialize provider", "provider", providerName, "error", err)
		return nil, fmt.Errorf("error initializing provider: %w", err)
	}
	return client, nil
}

func putAll(ctx context.Context, client storage.Storage, bucketName string, reqs []storage.PutObjectRequest) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, req := range reqs {
		g.Go(func() error {
			return client.PutObject(gctx, bucketName, req)
		})
	}
	return g.Wait()
}

func logArchiveStatus(logger *slog.Logger, status storage.ArchiveStatus) {
	logger.Info("Archive status",
		"bucket", status.Bucket,
		"object", status.Key,
		"storageClass", status.StorageClass,
		"state", status.Status.State,
		"transitionState", status.Status.TransitionState,
		"transitionDate", status.Status.TransitionDate,
		"ongoingRestore", status.Status.OngoingRestore,
		"restoreExpiryDate", status.Status.RestoreExpiryDate,
	)
}

type clientBody struct {
	io.ReadCloser
	client storage.Storage
}

func (b *clientBody) Close() error {
	return errors.Join(b.ReadCloser.Close(), b.client.Close())
}
