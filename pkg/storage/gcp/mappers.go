// File: pkg/storage/gcp/mappers.go
package gcp

import (
	"fmt"

	gcpstorage "cloud.google.com/go/storage"

	"cosctl/pkg/common"
	"cosctl/pkg/storage"
)

func mapLifecycleRules(rules []gcpstorage.LifecycleRule) []storage.LifecycleRule {
	if len(rules) == 0 {
		return nil
	}
	var result []storage.LifecycleRule
	for _, r := range rules {
		var actionStr string
		if r.Action.StorageClass != "" {
			actionStr = fmt.Sprintf("%s to %s", r.Action.Type, r.Action.StorageClass)
		} else {
			actionStr = r.Action.Type
		}

		var prefix string
		if len(r.Condition.MatchesPrefix) > 0 {
			prefix = r.Condition.MatchesPrefix[0]
		}

		result = append(result, storage.LifecycleRule{
			Action: actionStr,
			Condition: storage.LifecycleCondition{
				Age:                 int(r.Condition.AgeInDays),
				CreatedBefore:       r.Condition.CreatedBefore,
				Prefix:              prefix,
				MatchesStorageClass: r.Condition.MatchesStorageClasses,
			},
		})
	}
	return result
}

// Maps SDK object attributes to the domain model. Cloud Storage has no archive
// transition or restore headers, so those fields stay empty.
func mapObjectAttributes(attrs *gcpstorage.ObjectAttrs) storage.Object {
	if attrs == nil {
		return storage.Object{}
	}

	return storage.Object{
		Key:          attrs.Name,
		Bucket:       attrs.Bucket,
		Provider:     common.GCP,
		Size:         attrs.Size,
		StorageClass: attrs.StorageClass,
		LastModified: attrs.Updated,
		ETag:         attrs.Etag,
		ContentType:  attrs.ContentType,
		Metadata:     attrs.Metadata,
	}
}
