// File: pkg/archive/fields.go
package archive

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Header names carrying the raw archive fields on a HEAD response
const (
	HeaderTransition   = "x-ibm-transition"
	HeaderStorageClass = "x-amz-storage-class"
	HeaderRestore      = "x-amz-restore"
)

// ErrInvalidInput is returned when a field that must be text (or absent) holds another type
var ErrInvalidInput = errors.New("archive: invalid input")

// Field names accepted by ParseFields, matching the SDK's head-object output shape
const (
	FieldTransition   = "Transition"
	FieldStorageClass = "StorageClass"
	FieldRestore      = "Restore"
)

// FromHeaders extracts the archive fields from raw HTTP response headers
func FromHeaders(h http.Header) Metadata {
	return Metadata{
		Transition:   h.Get(HeaderTransition),
		StorageClass: h.Get(HeaderStorageClass),
		Restore:      h.Get(HeaderRestore),
	}
}

// ParseFields builds Metadata from a loosely typed field map, such as a head-object
// response saved as JSON. Keys are matched case-insensitively. A present field whose
// value is neither nil nor a string fails with ErrInvalidInput.
func ParseFields(fields map[string]any) (Metadata, error) {
	var md Metadata

	targets := map[string]*string{
		strings.ToLower(FieldTransition):   &md.Transition,
		strings.ToLower(FieldStorageClass): &md.StorageClass,
		strings.ToLower(FieldRestore):      &md.Restore,
	}

	for key, value := range fields {
		target, ok := targets[strings.ToLower(key)]
		if !ok || value == nil {
			continue
		}
		s, ok := value.(string)
		if !ok {
			return Metadata{}, fmt.Errorf("%w: field %q has type %T, want string", ErrInvalidInput, key, value)
		}
		*target = s
	}

	return md, nil
}
