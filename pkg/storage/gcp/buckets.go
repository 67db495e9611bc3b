// File: pkg/storage/gcp/buckets.go
package gcp

import (
	"context"
	"errors"
	"log/slog"

	gcpstorage "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"cosctl/pkg/common"
	"cosctl/pkg/storage"
)

func (g *GCPStorage) ListBuckets(ctx context.Context) ([]storage.Bucket, error) {
	g.logger.Debug("Starting GCP ListBuckets operation")
	var buckets []storage.Bucket

	// Usage for all buckets comes from one aggregated Monitoring API query
	usageMap, err := g.getAllBucketUsages(ctx)
	if err != nil {
		g.logger.Warn("Failed to retrieve bucket usage metrics, usage will be reported as N/A", "error", err)
		usageMap = nil
	}

	it := g.client.Buckets(ctx, g.projectID)
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, bucketError("ListBuckets", "", err)
		}

		usage := int64(-1)
		if u, ok := usageMap[attrs.Name]; ok {
			usage = u
		}

		b := mapBucketAttributes(attrs)
		b.UsageBytes = usage
		buckets = append(buckets, b)
	}

	return buckets, nil
}

func (g *GCPStorage) DescribeBucket(ctx context.Context, bucketName string) (storage.Bucket, error) {
	g.logger.Debug("Starting GCP DescribeBucket operation", "bucket", bucketName)

	attrs, err := g.client.Bucket(bucketName).Attrs(ctx)
	if err != nil {
		return storage.Bucket{}, bucketError("DescribeBucket", bucketName, err)
	}

	usage, err := g.getSingleBucketUsage(ctx, bucketName)
	if err != nil {
		logLevel := slog.LevelWarn
		logMsg := "Failed to retrieve usage metrics due to API error, usage will be reported as N/A"

		if errors.Is(err, ErrMetricsNotFound) {
			logLevel = slog.LevelInfo
			logMsg = "Usage metrics not yet available (bucket may be new), usage will be reported as N/A"
		}

		g.logger.Log(ctx, logLevel, logMsg, "bucket", bucketName, "error", err)
		usage = -1
	}

	b := mapBucketAttributes(attrs)
	b.UsageBytes = usage
	b.LifecycleRules = mapLifecycleRules(attrs.Lifecycle.Rules)
	b.Versioning = &storage.Versioning{Enabled: attrs.VersioningEnabled}

	return b, nil
}

func (g *GCPStorage) CreateBucket(ctx context.Context, bucketName string, location string) error {
	g.logger.Debug("Starting GCP CreateBucket operation", "bucket", bucketName, "location", location)

	attrs := &gcpstorage.BucketAttrs{
		Location: location,
	}
	if err := g.client.Bucket(bucketName).Create(ctx, g.projectID, attrs); err != nil {
		return bucketError("CreateBucket", bucketName, err)
	}
	return nil
}

func (g *GCPStorage) DeleteBucket(ctx context.Context, bucketName string) error {
	g.logger.Debug("Starting GCP DeleteBucket operation", "bucket", bucketName)

	if err := g.client.Bucket(bucketName).Delete(ctx); err != nil {
		return bucketError("DeleteBucket", bucketName, err)
	}
	return nil
}

func mapBucketAttributes(attrs *gcpstorage.BucketAttrs) storage.Bucket {
	return storage.Bucket{
		Name:               attrs.Name,
		Provider:           common.GCP,
		Location:           attrs.Location,
		LocationConstraint: attrs.LocationType,
		StorageClass:       attrs.StorageClass,
		CreatedAt:          attrs.Created,
		UpdatedAt:          attrs.Updated,
		UsageBytes:         -1,
		Labels:             attrs.Labels,
	}
}
