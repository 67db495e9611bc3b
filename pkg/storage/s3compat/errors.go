// File: pkg/storage/s3compat/errors.go
package s3compat

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"

	"cosctl/pkg/storage"
)

// Service error codes mapped onto the shared storage sentinels
var errorCodes = map[string]error{
	"NoSuchBucket":             storage.ErrBucketNotFound,
	"NoSuchKey":                storage.ErrObjectNotFound,
	"NotFound":                 storage.ErrObjectNotFound,
	"AccessDenied":             storage.ErrAccessDenied,
	"Forbidden":                storage.ErrAccessDenied,
	"InvalidObjectState":       storage.ErrObjectArchived,
	"RestoreAlreadyInProgress": storage.ErrRestoreInProgress,
	"InvalidArgument":          storage.ErrInvalidInput,
	"InvalidBucketName":        storage.ErrInvalidInput,
}

// classify attaches the matching storage sentinel to an SDK error, if there is one
func classify(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if sentinel, ok := errorCodes[apiErr.ErrorCode()]; ok {
			return fmt.Errorf("%w: %w", sentinel, err)
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
