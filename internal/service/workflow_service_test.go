// File: internal/service/workflow_service_test.go
package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosctl/pkg/archive"
	"cosctl/pkg/endpoints"
	"cosctl/pkg/storage"
)

func newWorkflow(m *memStorage, resolver EndpointResolver) *WorkflowService {
	factory := &fakeFactory{clients: map[string]storage.Storage{"cos": m}}
	return NewWorkflowService(factory, resolver, WorkflowOptions{}, discardLogger())
}

func stepNames(r *Report) []string {
	names := make([]string, 0, len(r.Steps))
	for _, s := range r.Steps {
		names = append(names, s.Name)
	}
	return names
}

func TestNewWorkflowServiceDefaults(t *testing.T) {
	w := newWorkflow(newMemStorage(), nil)
	opts := w.Options()

	assert.Equal(t, "cos", opts.Provider)
	assert.Equal(t, 120*time.Second, opts.Timeout)
	assert.Equal(t, 2, opts.RestoreDays)
	assert.Equal(t, storage.TierBulk, opts.RestoreTier)
}

func TestRunStandard(t *testing.T) {
	m := newMemStorage(storage.Bucket{Name: "demo", LocationConstraint: "us-south-smart"})
	resolver := &fakeResolver{endpoint: "s3.us-south.cloud-object-storage.appdomain.cloud"}

	report, err := newWorkflow(m, resolver).RunStandard(context.Background(), "demo")
	require.NoError(t, err)
	assert.False(t, report.Failed())

	assert.Equal(t, []string{
		"describe bucket",
		"resolve endpoint",
		"put objects",
		"list objects",
		"get object",
		"head object",
		"delete object",
		"list objects",
	}, stepNames(report))

	assert.Equal(t, "us-south-smart", resolver.constraint)
	assert.Equal(t, "https://s3.us-south.cloud-object-storage.appdomain.cloud", report.Endpoint)
	assert.Equal(t, "3 objects", report.Steps[3].Detail)
	assert.Equal(t, "testObject1.txt", report.Steps[6].Detail)
	assert.Equal(t, "2 objects", report.Steps[7].Detail)

	list, err := m.ListObjects(context.Background(), "demo", "")
	require.NoError(t, err)
	require.Len(t, list.Objects, 2)
	assert.Equal(t, "testObject2", list.Objects[0].Key)
}

func TestRunStandardWithoutResolver(t *testing.T) {
	m := newMemStorage(storage.Bucket{Name: "demo"})

	report, err := newWorkflow(m, nil).RunStandard(context.Background(), "demo")
	require.NoError(t, err)
	assert.NotContains(t, stepNames(report), "resolve endpoint")
	assert.Empty(t, report.Endpoint)
}

func TestRunStandardEndpointFailureContinues(t *testing.T) {
	m := newMemStorage(storage.Bucket{Name: "demo", LocationConstraint: "mars-standard"})
	resolver := &fakeResolver{err: endpoints.ErrRegionNotFound}

	report, err := newWorkflow(m, resolver).RunStandard(context.Background(), "demo")
	require.NoError(t, err)
	assert.True(t, report.Failed())
	assert.ErrorIs(t, report.Steps[1].Err, endpoints.ErrRegionNotFound)
	assert.NotEmpty(t, report.Steps[1].Error)
	assert.Empty(t, m.Endpoint())
}

func TestRunStandardMissingBucket(t *testing.T) {
	m := newMemStorage()

	report, err := newWorkflow(m, nil).RunStandard(context.Background(), "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrBucketNotFound)
	assert.Contains(t, err.Error(), "describe bucket")
	assert.Len(t, report.Steps, 1)
}

func TestRunStandardGetFailureAborts(t *testing.T) {
	m := newMemStorage(storage.Bucket{Name: "demo"})
	m.getErr = storage.ErrObjectArchived

	report, err := newWorkflow(m, nil).RunStandard(context.Background(), "demo")
	assert.ErrorIs(t, err, storage.ErrObjectArchived)
	assert.Equal(t, "get object", report.Steps[len(report.Steps)-1].Name)
}

func TestRunArchiveRestoresArchivedObject(t *testing.T) {
	m := newMemStorage(storage.Bucket{Name: "vault"})
	m.getErr = storage.ErrObjectArchived
	m.SetHeaders("testObject1.txt", storage.Object{
		StorageClass:     archive.ArchivalStorageClass,
		TransitionHeader: `transition="ARCHIVE", date="Tue, 01 Oct 2024 00:00:00 GMT"`,
	})
	m.onRestore = func(key string) {
		m.SetHeaders(key, storage.Object{
			StorageClass:     archive.ArchivalStorageClass,
			TransitionHeader: `transition="ARCHIVE", date="Tue, 01 Oct 2024 00:00:00 GMT"`,
			RestoreHeader:    `ongoing-request="true"`,
		})
	}

	report, err := newWorkflow(m, nil).RunArchive(context.Background(), "vault")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"describe bucket",
		"put objects",
		"list objects",
		"get object",
		"head object",
		"archive status",
		"restore object",
		"archive status after restore",
		"delete object",
		"list objects",
	}, stepNames(report))

	assert.ErrorIs(t, report.Steps[3].Err, storage.ErrObjectArchived)
	assert.Equal(t, "state archive", report.Steps[5].Detail)

	require.Len(t, m.restores, 1)
	assert.Equal(t, storage.RestoreRequest{Days: 2, Tier: storage.TierBulk}, m.restores[0])

	require.NotNil(t, report.Archive)
	assert.Equal(t, archive.StateRestoring, report.Archive.Status.State)
}

func TestRunArchiveSkipsRestoreForNormalObject(t *testing.T) {
	m := newMemStorage(storage.Bucket{Name: "demo"})

	report, err := newWorkflow(m, nil).RunArchive(context.Background(), "demo")
	require.NoError(t, err)
	assert.NotContains(t, stepNames(report), "restore object")
	assert.Empty(t, m.restores)
	require.NotNil(t, report.Archive)
	assert.Equal(t, archive.StateNormal, report.Archive.Status.State)
}

func TestRunArchiveRestoreFailureAborts(t *testing.T) {
	m := newMemStorage(storage.Bucket{Name: "vault"})
	m.SetHeaders("testObject1.txt", storage.Object{StorageClass: archive.ArchivalStorageClass})
	m.restoreErr = storage.ErrRestoreInProgress

	_, err := newWorkflow(m, nil).RunArchive(context.Background(), "vault")
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrRestoreInProgress))
	assert.Contains(t, err.Error(), "restore object")
}

func TestRunUnknownWorkflow(t *testing.T) {
	_, err := newWorkflow(newMemStorage(), nil).Run(context.Background(), "nightly", "demo")
	assert.Error(t, err)
}

func TestRunUnconfiguredProvider(t *testing.T) {
	factory := &fakeFactory{clients: map[string]storage.Storage{}}
	w := NewWorkflowService(factory, nil, WorkflowOptions{Provider: "aws"}, discardLogger())

	report, err := w.Run(context.Background(), WorkflowStandard, "demo")
	require.Error(t, err)
	assert.Equal(t, "aws", report.Provider)
	assert.Empty(t, report.Steps)
}

func TestRunTimesOut(t *testing.T) {
	m := newMemStorage(storage.Bucket{Name: "demo"})
	factory := &fakeFactory{clients: map[string]storage.Storage{"cos": &slowStorage{memStorage: m}}}
	w := NewWorkflowService(factory, nil, WorkflowOptions{Timeout: 10 * time.Millisecond}, discardLogger())

	_, err := w.RunStandard(context.Background(), "demo")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "timed out")
}

// slowStorage blocks DescribeBucket until the context is done
type slowStorage struct {
	*memStorage
}

func (s *slowStorage) DescribeBucket(ctx context.Context, name string) (storage.Bucket, error) {
	<-ctx.Done()
	return storage.Bucket{}, ctx.Err()
}

func TestWithTimeout(t *testing.T) {
	w := newWorkflow(newMemStorage(), nil)

	short := w.WithTimeout(5 * time.Second)
	assert.Equal(t, 5*time.Second, short.Options().Timeout)
	assert.Equal(t, DefaultWorkflowTimeout, w.Options().Timeout, "original must keep its timeout")

	assert.Same(t, w, w.WithTimeout(0))
}
