// File: pkg/storage/model.go
package storage

import (
	"fmt"
	"io"
	"time"

	"cosctl/pkg/archive"
	"cosctl/pkg/common"
)

type Bucket struct {
	Name     string            `json:"name" yaml:"name"`
	Provider common.Provider   `json:"provider" yaml:"provider"`
	Location string            `json:"location,omitempty" yaml:"location,omitempty"`
	// Raw location constraint as reported by the service, e.g. "us-south-smart"
	LocationConstraint string    `json:"locationConstraint,omitempty" yaml:"locationConstraint,omitempty"`
	StorageClass       string    `json:"storageClass,omitempty" yaml:"storageClass,omitempty"`
	CreatedAt          time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
	// A value of -1 indicates that the usage is unknown or could not be retrieved
	UsageBytes int64             `json:"usageBytes" yaml:"usageBytes"`
	Labels     map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`

	LifecycleRules []LifecycleRule `json:"lifecycleRules,omitempty" yaml:"lifecycleRules,omitempty"`
	Versioning     *Versioning     `json:"versioning,omitempty" yaml:"versioning,omitempty"`
}

type Versioning struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

type LifecycleRule struct {
	ID        string             `json:"id,omitempty" yaml:"id,omitempty"`
	Action    string             `json:"action" yaml:"action"`
	Condition LifecycleCondition `json:"condition" yaml:"condition"`
}

type LifecycleCondition struct {
	Age                 int       `json:"age,omitempty" yaml:"age,omitempty"`
	CreatedBefore       time.Time `json:"createdBefore,omitempty" yaml:"createdBefore,omitempty"`
	Prefix              string    `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	MatchesStorageClass []string  `json:"matchesStorageClass,omitempty" yaml:"matchesStorageClass,omitempty"`
}

type Object struct {
	Key          string            `json:"key" yaml:"key"`
	Bucket       string            `json:"bucket" yaml:"bucket"`
	Provider     common.Provider   `json:"provider" yaml:"provider"`
	Size         int64             `json:"size" yaml:"size"`
	StorageClass string            `json:"storageClass,omitempty" yaml:"storageClass,omitempty"`
	LastModified time.Time         `json:"lastModified" yaml:"lastModified"`
	ETag         string            `json:"etag,omitempty" yaml:"etag,omitempty"`
	ContentType  string            `json:"contentType,omitempty" yaml:"contentType,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// Raw archive headers, only populated by DescribeObject
	TransitionHeader string `json:"transition,omitempty" yaml:"transition,omitempty"`
	RestoreHeader    string `json:"restore,omitempty" yaml:"restore,omitempty"`
}

// ArchiveMetadata returns the fields the archive decoder works on
func (o Object) ArchiveMetadata() archive.Metadata {
	return archive.Metadata{
		Transition:   o.TransitionHeader,
		StorageClass: o.StorageClass,
		Restore:      o.RestoreHeader,
	}
}

type ObjectList struct {
	BucketName     string   `json:"bucket" yaml:"bucket"`
	Prefix         string   `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Objects        []Object `json:"objects" yaml:"objects"`
	CommonPrefixes []string `json:"commonPrefixes,omitempty" yaml:"commonPrefixes,omitempty"`
}

type PutObjectRequest struct {
	Key           string            `validate:"required"`
	Body          io.Reader
	ContentLength int64 // 0 when unknown
	ContentType   string
	Metadata      map[string]string
}

// Retrieval tiers accepted by RestoreObject
const (
	TierBulk      = "Bulk"
	TierStandard  = "Standard"
	TierExpedited = "Expedited"
)

type RestoreRequest struct {
	// Number of days the restored copy stays available
	Days int    `validate:"min=1"`
	Tier string `validate:"omitempty,oneof=Bulk Standard Expedited"`
}

// ArchiveStatus bundles an object's decoded archive status with the raw fields it came from
type ArchiveStatus struct {
	Bucket       string         `json:"bucket" yaml:"bucket"`
	Key          string         `json:"key" yaml:"key"`
	StorageClass string         `json:"storageClass,omitempty" yaml:"storageClass,omitempty"`
	Status       archive.Status `json:"status" yaml:"status"`
}

// NewArchiveStatus decodes the archive headers of a described object
func NewArchiveStatus(obj Object) ArchiveStatus {
	return ArchiveStatus{
		Bucket:       obj.Bucket,
		Key:          obj.Key,
		StorageClass: obj.StorageClass,
		Status:       archive.Decode(obj.ArchiveMetadata()),
	}
}

func FormatBytes(bytes int64) string {
	if bytes < 0 {
		return "N/A"
	}
	if bytes == 0 {
		return "0 B"
	}

	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	sizes := []string{"KB", "MB", "GB", "TB", "PB", "EB"}
	if exp >= len(sizes) {
		return fmt.Sprintf("%d B", bytes)
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), sizes[exp])
}
