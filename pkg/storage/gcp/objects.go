// File: pkg/storage/gcp/objects.go
package gcp

import (
	"context"
	"fmt"
	"io"

	gcpstorage "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"cosctl/pkg/common"
	"cosctl/pkg/storage"
)

func (g *GCPStorage) ListObjects(ctx context.Context, bucketName string, prefix string) (storage.ObjectList, error) {
	g.logger.Debug("Starting GCP ListObjects operation (delimited)", "bucket", bucketName, "prefix", prefix)

	query := &gcpstorage.Query{
		Prefix:    prefix,
		Delimiter: "/",
	}

	it := g.client.Bucket(bucketName).Objects(ctx, query)

	result := storage.ObjectList{
		BucketName:     bucketName,
		Prefix:         prefix,
		Objects:        []storage.Object{},
		CommonPrefixes: []string{},
	}

	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return storage.ObjectList{}, bucketError("ListObjects", bucketName, err)
		}

		// A set Prefix marks a common prefix (directory) rather than an object
		if attrs.Prefix != "" {
			result.CommonPrefixes = append(result.CommonPrefixes, attrs.Prefix)
			continue
		}

		result.Objects = append(result.Objects, mapObjectAttributes(attrs))
	}

	return result, nil
}

func (g *GCPStorage) DescribeObject(ctx context.Context, bucketName string, objectKey string) (storage.Object, error) {
	g.logger.Debug("Starting GCP DescribeObject operation", "bucket", bucketName, "object", objectKey)

	attrs, err := g.client.Bucket(bucketName).Object(objectKey).Attrs(ctx)
	if err != nil {
		return storage.Object{}, objectError("DescribeObject", bucketName, objectKey, err)
	}

	return mapObjectAttributes(attrs), nil
}

func (g *GCPStorage) GetObject(ctx context.Context, bucketName string, objectKey string) (io.ReadCloser, error) {
	g.logger.Debug("Starting GCP GetObject operation", "bucket", bucketName, "object", objectKey)

	r, err := g.client.Bucket(bucketName).Object(objectKey).NewReader(ctx)
	if err != nil {
		return nil, objectError("GetObject", bucketName, objectKey, err)
	}
	return r, nil
}

func (g *GCPStorage) PutObject(ctx context.Context, bucketName string, req storage.PutObjectRequest) error {
	if err := req.Validate(); err != nil {
		return storage.NewObjectError("PutObject", bucketName, req.Key, err)
	}
	g.logger.Debug("Starting GCP PutObject operation", "bucket", bucketName, "object", req.Key)

	w := g.client.Bucket(bucketName).Object(req.Key).NewWriter(ctx)
	w.ContentType = req.ContentType
	w.Metadata = req.Metadata

	if _, err := io.Copy(w, req.Body); err != nil {
		_ = w.Close()
		return objectError("PutObject", bucketName, req.Key, fmt.Errorf("error writing object data: %w", err))
	}
	if err := w.Close(); err != nil {
		return objectError("PutObject", bucketName, req.Key, err)
	}
	return nil
}

func (g *GCPStorage) DeleteObject(ctx context.Context, bucketName string, objectKey string) error {
	g.logger.Debug("Starting GCP DeleteObject operation", "bucket", bucketName, "object", objectKey)

	if err := g.client.Bucket(bucketName).Object(objectKey).Delete(ctx); err != nil {
		return objectError("DeleteObject", bucketName, objectKey, err)
	}
	return nil
}

// RestoreObject is not supported: archived Cloud Storage objects can be read directly
func (g *GCPStorage) RestoreObject(ctx context.Context, bucketName string, objectKey string, req storage.RestoreRequest) error {
	return storage.NewObjectError("RestoreObject", bucketName, objectKey,
		fmt.Errorf("%w: %s objects are readable without a restore", storage.ErrNotSupported, common.GCP))
}
