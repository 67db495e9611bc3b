// File: pkg/storage/storage.go
package storage

import (
	"context"
	"io"

	"cosctl/pkg/common"
)

// Storage is implemented by every provider client. Implementations must be safe for
// concurrent use by multiple goroutines.
type Storage interface {
	ProviderName() common.Provider

	ListBuckets(ctx context.Context) ([]Bucket, error)
	DescribeBucket(ctx context.Context, bucketName string) (Bucket, error)
	CreateBucket(ctx context.Context, bucketName string, location string) error
	DeleteBucket(ctx context.Context, bucketName string) error

	ListObjects(ctx context.Context, bucketName string, prefix string) (ObjectList, error)
	// DescribeObject fetches object metadata without the body (a HEAD request)
	DescribeObject(ctx context.Context, bucketName string, objectKey string) (Object, error)
	// GetObject returns the object body; the caller must close it
	GetObject(ctx context.Context, bucketName string, objectKey string) (io.ReadCloser, error)
	PutObject(ctx context.Context, bucketName string, req PutObjectRequest) error
	DeleteObject(ctx context.Context, bucketName string, objectKey string) error
	// RestoreObject requests a temporary copy of an archived object
	RestoreObject(ctx context.Context, bucketName string, objectKey string, req RestoreRequest) error

	Close() error
}

// EndpointSetter is implemented by providers whose service endpoint can be switched
// after the client has been created, e.g. once a bucket's regional endpoint is known
type EndpointSetter interface {
	SetEndpoint(endpoint string)
	Endpoint() string
}
