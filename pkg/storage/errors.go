// File: pkg/storage/errors.go
package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Sentinel errors shared by all providers; check with errors.Is
var (
	ErrBucketNotFound    = errors.New("bucket not found")
	ErrObjectNotFound    = errors.New("object not found")
	ErrAccessDenied      = errors.New("access denied")
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotSupported      = errors.New("operation not supported by provider")
	ErrObjectArchived    = errors.New("object is archived and must be restored before download")
	ErrRestoreInProgress = errors.New("object restore already in progress")
)

// Error records a failed provider operation along with the bucket and key it targeted
type Error struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Bucket != "" && e.Key != "":
		return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	case e.Bucket != "":
		return fmt.Sprintf("%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewBucketError(op, bucket string, err error) error {
	return &Error{Op: op, Bucket: bucket, Err: err}
}

func NewObjectError(op, bucket, key string, err error) error {
	return &Error{Op: op, Bucket: bucket, Key: key, Err: err}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the request fields and reports failures as ErrInvalidInput
func (r PutObjectRequest) Validate() error {
	if r.Body == nil {
		return fmt.Errorf("%w: object body is required", ErrInvalidInput)
	}
	if err := getValidator().Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// Validate checks the request fields and reports failures as ErrInvalidInput
func (r RestoreRequest) Validate() error {
	if err := getValidator().Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// WithDefaults fills in the retrieval tier when it was left empty
func (r RestoreRequest) WithDefaults() RestoreRequest {
	if r.Tier == "" {
		r.Tier = TierBulk
	}
	return r
}
