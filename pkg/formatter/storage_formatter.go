// File: pkg/formatter/storage_formatter.go
package formatter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"cosctl/pkg/archive"
	"cosctl/pkg/endpoints"
	"cosctl/pkg/storage"
)

type StorageFormatter struct{}

func NewStorageFormatter() *StorageFormatter {
	return &StorageFormatter{}
}

func (f *StorageFormatter) FormatBucketList(buckets []storage.Bucket) string {
	table := NewTable([]string{"BUCKET NAME", "PROVIDER", "LOCATION", "USAGE", "STORAGE CLASS", "CREATED"})

	for _, bucket := range buckets {
		table.AddRow([]string{
			bucket.Name,
			string(bucket.Provider),
			bucketLocation(bucket),
			storage.FormatBytes(bucket.UsageBytes),
			bucket.StorageClass,
			formatDate(bucket.CreatedAt, "2006-01-02"),
		})
	}

	return table.String()
}

func (f *StorageFormatter) FormatBucketDetails(bucket storage.Bucket) string {
	var sb strings.Builder

	sb.WriteString(FormatHeaderSection("Bucket: " + bucket.Name))
	sb.WriteString("\n\n")

	sb.WriteString(FormatSectionTitle("Overview"))
	sb.WriteString("\n")

	versioning := "Unknown"
	if bucket.Versioning != nil {
		versioning = "Disabled"
		if bucket.Versioning.Enabled {
			versioning = "Enabled"
		}
	}

	sb.WriteString(FormatKeyValues([][2]string{
		{"Provider", string(bucket.Provider)},
		{"Location / Region", bucket.Location},
		{"Location Constraint", bucket.LocationConstraint},
		{"Storage Class", bucket.StorageClass},
		{"Usage", storage.FormatBytes(bucket.UsageBytes)},
		{"Versioning", versioning},
		{"Created On", formatDate(bucket.CreatedAt, time.RFC1123)},
		{"Updated On", formatDate(bucket.UpdatedAt, time.RFC1123)},
	}))
	sb.WriteString("\n\n")

	if len(bucket.LifecycleRules) > 0 {
		sb.WriteString(FormatSectionTitle("Lifecycle Rules"))
		sb.WriteString("\n")
		rules := NewTable([]string{"ID", "Action", "Condition"})
		for _, r := range bucket.LifecycleRules {
			rules.AddRow([]string{r.ID, r.Action, formatCondition(r.Condition)})
		}
		sb.WriteString(rules.String())
		sb.WriteString("\n\n")
	}

	if len(bucket.Labels) > 0 {
		sb.WriteString(FormatSectionTitle("Labels"))
		sb.WriteString("\n")
		labels := NewTable([]string{"Key", "Value"})
		for _, k := range sortedKeys(bucket.Labels) {
			labels.AddRow([]string{k, bucket.Labels[k]})
		}
		sb.WriteString(labels.String())
		sb.WriteString("\n\n")
	}

	return sb.String()
}

func (f *StorageFormatter) FormatObjectList(list storage.ObjectList) string {
	table := NewTable([]string{"KEY", "SIZE", "STORAGE CLASS", "LAST MODIFIED"})

	for _, p := range list.CommonPrefixes {
		table.AddRow([]string{p, "-", "-", "-"})
	}
	for _, obj := range list.Objects {
		table.AddRow([]string{
			obj.Key,
			storage.FormatBytes(obj.Size),
			obj.StorageClass,
			formatDate(obj.LastModified, "2006-01-02 15:04:05"),
		})
	}

	return table.String()
}

func (f *StorageFormatter) FormatObjectDetails(obj storage.Object) string {
	var sb strings.Builder

	sb.WriteString(FormatHeaderSection("Object: " + obj.Key))
	sb.WriteString("\n\n")

	sb.WriteString(FormatSectionTitle("Overview"))
	sb.WriteString("\n")
	sb.WriteString(FormatKeyValues([][2]string{
		{"Bucket", obj.Bucket},
		{"Provider", string(obj.Provider)},
		{"Size", storage.FormatBytes(obj.Size)},
		{"Storage Class", obj.StorageClass},
		{"Content Type", obj.ContentType},
		{"ETag", obj.ETag},
		{"Last Modified", formatDate(obj.LastModified, time.RFC1123)},
	}))
	sb.WriteString("\n\n")

	sb.WriteString(FormatSectionTitle("Archive"))
	sb.WriteString("\n")
	sb.WriteString(FormatKeyValues(statusPairs(archive.Decode(obj.ArchiveMetadata()))))
	sb.WriteString("\n\n")

	if len(obj.Metadata) > 0 {
		sb.WriteString(FormatSectionTitle("Metadata"))
		sb.WriteString("\n")
		md := NewTable([]string{"Key", "Value"})
		for _, k := range sortedKeys(obj.Metadata) {
			md.AddRow([]string{k, obj.Metadata[k]})
		}
		sb.WriteString(md.String())
		sb.WriteString("\n\n")
	}

	return sb.String()
}

func (f *StorageFormatter) FormatArchiveStatus(status storage.ArchiveStatus) string {
	pairs := [][2]string{
		{"Bucket", status.Bucket},
		{"Object", status.Key},
		{"Storage Class", status.StorageClass},
	}
	return FormatKeyValues(append(pairs, statusPairs(status.Status)...))
}

// FormatDecodedStatus renders a status decoded from raw header values
func (f *StorageFormatter) FormatDecodedStatus(status archive.Status) string {
	return FormatKeyValues(statusPairs(status))
}

func (f *StorageFormatter) FormatRegions(regions []endpoints.RegionSummary) string {
	table := NewTable([]string{"GROUP", "REGION", "PUBLIC ENDPOINT"})
	for _, r := range regions {
		public := r.Public
		if public == "" {
			public = "-"
		}
		table.AddRow([]string{r.Group, r.Region, public})
	}
	return table.String()
}

func statusPairs(s archive.Status) [][2]string {
	return [][2]string{
		{"State", string(s.State)},
		{"Transition", orDash(s.TransitionState)},
		{"Transition Date", orDash(s.TransitionDate)},
		{"Ongoing Restore", strconv.FormatBool(s.OngoingRestore)},
		{"Restore Expiry", orDash(s.RestoreExpiryDate)},
	}
}

func formatCondition(c storage.LifecycleCondition) string {
	var parts []string
	if c.Age > 0 {
		parts = append(parts, fmt.Sprintf("age >= %dd", c.Age))
	}
	if !c.CreatedBefore.IsZero() {
		parts = append(parts, "created before "+c.CreatedBefore.Format("2006-01-02"))
	}
	if c.Prefix != "" {
		parts = append(parts, "prefix "+c.Prefix)
	}
	if len(c.MatchesStorageClass) > 0 {
		parts = append(parts, "class in "+strings.Join(c.MatchesStorageClass, ","))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "; ")
}

func bucketLocation(b storage.Bucket) string {
	if b.Location != "" {
		return b.Location
	}
	return b.LocationConstraint
}

func formatDate(t time.Time, layout string) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(layout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
