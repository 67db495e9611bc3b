// File: internal/service/workflow_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"cosctl/pkg/archive"
	"cosctl/pkg/storage"
)

const (
	WorkflowStandard = "standard"
	WorkflowArchive  = "archive"

	DefaultWorkflowTimeout = 2 * time.Minute
	DefaultRestoreDays     = 2
)

// Objects uploaded by every workflow run
var sampleObjects = []struct {
	Key  string
	Body string
}{
	{"testObject1.txt", "Yayy!!! Your First Object uploaded into COS!!"},
	{"testObject2", "Yayy!!! Your Second Object uploaded into COS!"},
	{"testObject3", "Yayy!! Your Third Object uploaded into COS!"},
}

var sampleMetadata = map[string]string{"fileType": "sample"}

// EndpointResolver finds the service endpoint serving a bucket's location
type EndpointResolver interface {
	Resolve(ctx context.Context, region, locationConstraint string) (string, error)
}

type WorkflowOptions struct {
	Provider    string
	Timeout     time.Duration
	RestoreDays int
	RestoreTier string
}

type StepResult struct {
	Name   string `json:"name" yaml:"name"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
	Err    error  `json:"-" yaml:"-"`
}

type Report struct {
	Workflow string                 `json:"workflow" yaml:"workflow"`
	Provider string                 `json:"provider" yaml:"provider"`
	Bucket   string                 `json:"bucket" yaml:"bucket"`
	Endpoint string                 `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Steps    []StepResult           `json:"steps" yaml:"steps"`
	Archive  *storage.ArchiveStatus `json:"archive,omitempty" yaml:"archive,omitempty"`
}

// Failed reports whether any step, mandatory or not, returned an error
func (r *Report) Failed() bool {
	for _, s := range r.Steps {
		if s.Err != nil {
			return true
		}
	}
	return false
}

type WorkflowService struct {
	providerFactory ProviderFactory
	resolver        EndpointResolver
	opts            WorkflowOptions
	logger          *slog.Logger
}

// NewWorkflowService creates the service. A nil resolver keeps the client on its
// configured endpoint.
func NewWorkflowService(providerFactory ProviderFactory, resolver EndpointResolver, opts WorkflowOptions, logger *slog.Logger) *WorkflowService {
	if opts.Provider == "" {
		opts.Provider = "cos"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultWorkflowTimeout
	}
	if opts.RestoreDays <= 0 {
		opts.RestoreDays = DefaultRestoreDays
	}
	if opts.RestoreTier == "" {
		opts.RestoreTier = storage.TierBulk
	}
	return &WorkflowService{
		providerFactory: providerFactory,
		resolver:        resolver,
		opts:            opts,
		logger:          logger.With("service", "WorkflowService"),
	}
}

func (w *WorkflowService) Options() WorkflowOptions {
	return w.opts
}

// WithTimeout returns a copy of the service bounded by d instead of the configured timeout
func (w *WorkflowService) WithTimeout(d time.Duration) *WorkflowService {
	if d <= 0 {
		return w
	}
	cp := *w
	cp.opts.Timeout = d
	return &cp
}

// Run executes the named workflow against a bucket
func (w *WorkflowService) Run(ctx context.Context, workflow, bucketName string) (*Report, error) {
	switch workflow {
	case WorkflowStandard:
		return w.RunStandard(ctx, bucketName)
	case WorkflowArchive:
		return w.RunArchive(ctx, bucketName)
	default:
		return nil, fmt.Errorf("unknown workflow %q: expected %s or %s", workflow, WorkflowStandard, WorkflowArchive)
	}
}

// RunStandard uploads the sample objects, reads one back, heads it, deletes it and
// lists the bucket before and after
func (w *WorkflowService) RunStandard(ctx context.Context, bucketName string) (*Report, error) {
	return w.run(ctx, WorkflowStandard, bucketName, func(r *run, key string) error {
		if err := r.step("get object", func() (string, error) { return r.download(key) }); err != nil {
			return err
		}
		return r.step("head object", func() (string, error) { return r.head(key) })
	})
}

// RunArchive is RunStandard for buckets with an archive policy: the download may
// fail, and an archived object gets a restore request
func (w *WorkflowService) RunArchive(ctx context.Context, bucketName string) (*Report, error) {
	return w.run(ctx, WorkflowArchive, bucketName, func(r *run, key string) error {
		r.optional("get object", func() (string, error) { return r.download(key) })

		if err := r.step("head object", func() (string, error) { return r.head(key) }); err != nil {
			return err
		}

		status, err := r.archiveStatus("archive status", key)
		if err != nil {
			return err
		}
		if !status.Status.NeedsRestore() {
			return nil
		}

		req := storage.RestoreRequest{Days: w.opts.RestoreDays, Tier: w.opts.RestoreTier}
		if err := r.step("restore object", func() (string, error) {
			if err := r.client.RestoreObject(r.ctx, r.bucket, key, req); err != nil {
				return "", err
			}
			return fmt.Sprintf("%s restore for %d days requested", req.Tier, req.Days), nil
		}); err != nil {
			return err
		}

		_, err = r.archiveStatus("archive status after restore", key)
		return err
	})
}

func (w *WorkflowService) run(ctx context.Context, workflow, bucketName string, body func(r *run, key string) error) (*Report, error) {
	ctx, cancel := context.WithTimeout(ctx, w.opts.Timeout)
	defer cancel()

	logger := w.logger.With("workflow", workflow, "bucket", bucketName, "provider", w.opts.Provider)
	logger.Info("Starting workflow", "timeout", w.opts.Timeout)

	report := &Report{
		Workflow: workflow,
		Provider: w.opts.Provider,
		Bucket:   bucketName,
	}

	client, err := w.providerFactory.GetStorageProvider(ctx, w.opts.Provider)
	if err != nil {
		return report, fmt.Errorf("error initializing provider: %w", err)
	}
	defer client.Close()

	r := &run{
		ctx:    ctx,
		client: client,
		bucket: bucketName,
		report: report,
		logger: logger,
	}

	err = w.runSteps(r, body)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("workflow timed out after %s: %w", w.opts.Timeout, err)
		}
		logger.Error("Workflow failed", "error", err)
		return report, err
	}

	logger.Info("Workflow completed", "steps", len(report.Steps))
	return report, nil
}

func (w *WorkflowService) runSteps(r *run, body func(r *run, key string) error) error {
	var bucket storage.Bucket
	if err := r.step("describe bucket", func() (string, error) {
		var err error
		bucket, err = r.client.DescribeBucket(r.ctx, r.bucket)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("location %s", bucketLocation(bucket)), nil
	}); err != nil {
		return err
	}

	w.switchEndpoint(r, bucket)

	if err := r.step("put objects", func() (string, error) {
		if err := putAll(r.ctx, r.client, r.bucket, sampleRequests()); err != nil {
			return "", err
		}
		return fmt.Sprintf("%d objects uploaded", len(sampleObjects)), nil
	}); err != nil {
		return err
	}

	var listing storage.ObjectList
	if err := r.step("list objects", func() (string, error) {
		var err error
		listing, err = r.list()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d objects", len(listing.Objects)), nil
	}); err != nil {
		return err
	}
	if len(listing.Objects) == 0 {
		return fmt.Errorf("bucket %s is empty after upload", r.bucket)
	}
	key := listing.Objects[0].Key

	if err := body(r, key); err != nil {
		return err
	}

	if err := r.step("delete object", func() (string, error) {
		if err := r.client.DeleteObject(r.ctx, r.bucket, key); err != nil {
			return "", err
		}
		return key, nil
	}); err != nil {
		return err
	}

	return r.step("list objects", func() (string, error) {
		listing, err := r.list()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d objects", len(listing.Objects)), nil
	})
}

// switchEndpoint points the client at the bucket's regional endpoint when the
// catalog knows it. Failures leave the client on its current endpoint.
func (w *WorkflowService) switchEndpoint(r *run, bucket storage.Bucket) {
	setter, ok := r.client.(storage.EndpointSetter)
	if !ok || w.resolver == nil {
		return
	}

	r.optional("resolve endpoint", func() (string, error) {
		endpoint, err := w.resolver.Resolve(r.ctx, bucket.Location, bucket.LocationConstraint)
		if err != nil {
			return "", err
		}
		setter.SetEndpoint(endpoint)
		r.report.Endpoint = setter.Endpoint()
		return r.report.Endpoint, nil
	})
}

func sampleRequests() []storage.PutObjectRequest {
	reqs := make([]storage.PutObjectRequest, 0, len(sampleObjects))
	for _, o := range sampleObjects {
		metadata := make(map[string]string, len(sampleMetadata))
		for k, v := range sampleMetadata {
			metadata[k] = v
		}
		reqs = append(reqs, storage.PutObjectRequest{
			Key:           o.Key,
			Body:          strings.NewReader(o.Body),
			ContentLength: int64(len(o.Body)),
			ContentType:   "text/plain",
			Metadata:      metadata,
		})
	}
	return reqs
}

func bucketLocation(b storage.Bucket) string {
	if b.LocationConstraint != "" {
		return b.LocationConstraint
	}
	if b.Location != "" {
		return b.Location
	}
	return "unknown"
}

// run holds the state of a single workflow execution
type run struct {
	ctx    context.Context
	client storage.Storage
	bucket string
	report *Report
	logger *slog.Logger
}

// step runs fn, records it in the report and returns its error wrapped with the step name
func (r *run) step(name string, fn func() (string, error)) error {
	if err := r.record(name, fn); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// optional runs fn and records it; a failure is logged and the run continues
func (r *run) optional(name string, fn func() (string, error)) {
	if err := r.record(name, fn); err != nil {
		r.logger.Warn("Step failed, continuing", "step", name, "error", err)
	}
}

func (r *run) record(name string, fn func() (string, error)) error {
	r.logger.Debug("Running step", "step", name)

	detail, err := fn()
	result := StepResult{Name: name, Detail: detail, Err: err}
	if err != nil {
		result.Error = err.Error()
	} else {
		r.logger.Info("Step completed", "step", name, "detail", detail)
	}
	r.report.Steps = append(r.report.Steps, result)
	return err
}

func (r *run) list() (storage.ObjectList, error) {
	return r.client.ListObjects(r.ctx, r.bucket, "")
}

func (r *run) download(key string) (string, error) {
	body, err := r.client.GetObject(r.ctx, r.bucket, key)
	if err != nil {
		return "", err
	}
	defer body.Close()

	n, err := io.Copy(io.Discard, body)
	if err != nil {
		return "", fmt.Errorf("error reading object body: %w", err)
	}
	return fmt.Sprintf("%s (%s)", key, storage.FormatBytes(n)), nil
}

func (r *run) head(key string) (string, error) {
	obj, err := r.client.DescribeObject(r.ctx, r.bucket, key)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s, %s, storage class %s", key, storage.FormatBytes(obj.Size), obj.StorageClass), nil
}

func (r *run) archiveStatus(name, key string) (storage.ArchiveStatus, error) {
	var status storage.ArchiveStatus
	err := r.step(name, func() (string, error) {
		obj, err := r.client.DescribeObject(r.ctx, r.bucket, key)
		if err != nil {
			return "", err
		}
		status = storage.NewArchiveStatus(obj)
		logArchiveStatus(r.logger, status)
		return describeStatus(status.Status), nil
	})
	if err == nil {
		r.report.Archive = &status
	}
	return status, err
}

func describeStatus(s archive.Status) string {
	switch s.State {
	case archive.StateRestoring:
		return "state restoring"
	case archive.StateRestored:
		return fmt.Sprintf("state restored, available until %s", s.RestoreExpiryDate)
	default:
		return fmt.Sprintf("state %s", s.State)
	}
}
