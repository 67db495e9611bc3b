// File: internal/service/fake_test.go
package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"cosctl/pkg/common"
	"cosctl/pkg/storage"
)

// memStorage is an in-memory storage.Storage used by the service tests
type memStorage struct {
	mu       sync.Mutex
	buckets  map[string]storage.Bucket
	objects  map[string]map[string][]byte
	headers  map[string]storage.Object
	endpoint string
	restores []storage.RestoreRequest
	closed   int

	getErr     error
	putErr     error
	restoreErr error
	// Called after a successful restore request, e.g. to flip the object to restoring
	onRestore func(key string)
}

var (
	_ storage.Storage        = (*memStorage)(nil)
	_ storage.EndpointSetter = (*memStorage)(nil)
)

func newMemStorage(buckets ...storage.Bucket) *memStorage {
	m := &memStorage{
		buckets: make(map[string]storage.Bucket),
		objects: make(map[string]map[string][]byte),
		headers: make(map[string]storage.Object),
	}
	for _, b := range buckets {
		m.buckets[b.Name] = b
		m.objects[b.Name] = make(map[string][]byte)
	}
	return m
}

func (m *memStorage) ProviderName() common.Provider { return common.COS }

func (m *memStorage) ListBuckets(context.Context) ([]storage.Bucket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []storage.Bucket
	for _, b := range m.buckets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStorage) DescribeBucket(_ context.Context, name string) (storage.Bucket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[name]
	if !ok {
		return storage.Bucket{}, storage.NewBucketError("DescribeBucket", name, storage.ErrBucketNotFound)
	}
	return b, nil
}

func (m *memStorage) CreateBucket(_ context.Context, name, location string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.buckets[name] = storage.Bucket{Name: name, Location: location}
	m.objects[name] = make(map[string][]byte)
	return nil
}

func (m *memStorage) DeleteBucket(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.buckets, name)
	delete(m.objects, name)
	return nil
}

func (m *memStorage) ListObjects(_ context.Context, bucket, prefix string) (storage.ObjectList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	objs, ok := m.objects[bucket]
	if !ok {
		return storage.ObjectList{}, storage.NewBucketError("ListObjects", bucket, storage.ErrBucketNotFound)
	}

	list := storage.ObjectList{BucketName: bucket, Prefix: prefix, Objects: []storage.Object{}}
	for key, data := range objs {
		if strings.HasPrefix(key, prefix) {
			list.Objects = append(list.Objects, storage.Object{Key: key, Bucket: bucket, Size: int64(len(data))})
		}
	}
	sort.Slice(list.Objects, func(i, j int) bool { return list.Objects[i].Key < list.Objects[j].Key })
	return list, nil
}

func (m *memStorage) DescribeObject(_ context.Context, bucket, key string) (storage.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.objects[bucket][key]
	if !ok {
		return storage.Object{}, storage.NewObjectError("DescribeObject", bucket, key, storage.ErrObjectNotFound)
	}

	obj := storage.Object{Key: key, Bucket: bucket, Size: int64(len(data)), StorageClass: "STANDARD"}
	if h, ok := m.headers[key]; ok {
		obj.StorageClass = h.StorageClass
		obj.TransitionHeader = h.TransitionHeader
		obj.RestoreHeader = h.RestoreHeader
	}
	return obj, nil
}

func (m *memStorage) GetObject(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getErr != nil {
		return nil, storage.NewObjectError("GetObject", bucket, key, m.getErr)
	}
	data, ok := m.objects[bucket][key]
	if !ok {
		return nil, storage.NewObjectError("GetObject", bucket, key, storage.ErrObjectNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStorage) PutObject(_ context.Context, bucket string, req storage.PutObjectRequest) error {
	if err := req.Validate(); err != nil {
		return storage.NewObjectError("PutObject", bucket, req.Key, err)
	}
	data, err := io.ReadAll(req.Body)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.putErr != nil {
		return storage.NewObjectError("PutObject", bucket, req.Key, m.putErr)
	}
	objs, ok := m.objects[bucket]
	if !ok {
		return storage.NewBucketError("PutObject", bucket, storage.ErrBucketNotFound)
	}
	objs[req.Key] = data
	return nil
}

func (m *memStorage) DeleteObject(_ context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.objects[bucket], key)
	return nil
}

func (m *memStorage) RestoreObject(_ context.Context, bucket, key string, req storage.RestoreRequest) error {
	m.mu.Lock()
	if m.restoreErr != nil {
		m.mu.Unlock()
		return storage.NewObjectError("RestoreObject", bucket, key, m.restoreErr)
	}
	m.restores = append(m.restores, req)
	hook := m.onRestore
	m.mu.Unlock()

	if hook != nil {
		hook(key)
	}
	return nil
}

func (m *memStorage) SetHeaders(key string, obj storage.Object) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.headers[key] = obj
}

func (m *memStorage) SetEndpoint(endpoint string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.endpoint = "https://" + endpoint
}

func (m *memStorage) Endpoint() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.endpoint
}

func (m *memStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

// fakeFactory hands out fixed clients by provider name
type fakeFactory struct {
	clients map[string]storage.Storage
}

func (f *fakeFactory) GetStorageProvider(_ context.Context, name string) (storage.Storage, error) {
	c, ok := f.clients[name]
	if !ok {
		return nil, fmt.Errorf("provider '%s' is not configured", name)
	}
	return c, nil
}

type fakeResolver struct {
	endpoint string
	err      error

	region, constraint string
}

func (r *fakeResolver) Resolve(_ context.Context, region, constraint string) (string, error) {
	r.region, r.constraint = region, constraint
	return r.endpoint, r.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
