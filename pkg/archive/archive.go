// File: pkg/archive/archive.go

// Package archive decodes the lifecycle state of an object stored in an
// S3-compatible service from the transition and restore header text that the
// service returns on a HEAD request.
package archive

// ArchivalStorageClass is the storage class reported for objects in the archive tier
const ArchivalStorageClass = "GLACIER"

// State is the derived lifecycle state of an object
type State string

const (
	StateNormal    State = "normal"
	StateArchive   State = "archive"
	StateRestoring State = "restoring"
	StateRestored  State = "restored"
)

// Metadata holds the raw object fields the decoder reads. Empty strings mean the
// field was absent from the response.
type Metadata struct {
	Transition   string `json:"transition,omitempty" yaml:"transition,omitempty"`
	StorageClass string `json:"storageClass,omitempty" yaml:"storageClass,omitempty"`
	Restore      string `json:"restore,omitempty" yaml:"restore,omitempty"`
}

// Status is the normalized archive status of a single object
type Status struct {
	TransitionState   string `json:"transitionState,omitempty" yaml:"transitionState,omitempty"`
	TransitionDate    string `json:"transitionDate,omitempty" yaml:"transitionDate,omitempty"`
	OngoingRestore    bool   `json:"ongoingRestore" yaml:"ongoingRestore"`
	RestoreExpiryDate string `json:"restoreExpiryDate,omitempty" yaml:"restoreExpiryDate,omitempty"`
	State             State  `json:"state" yaml:"state"`
}

// IsArchival reports whether the storage class is the archive tier
func IsArchival(storageClass string) bool {
	return storageClass == ArchivalStorageClass
}

// Decode converts the raw metadata fields into a Status. Text that matches none of
// the known header grammars leaves the corresponding fields unset; it is never an error.
func Decode(md Metadata) Status {
	var status Status

	if res := transitionGrammars.match(md.Transition); res.matched {
		status.TransitionState = res.first
		status.TransitionDate = res.second
	}

	if IsArchival(md.StorageClass) {
		if res := restoreGrammars.match(md.Restore); res.matched {
			// Only the exact lowercase token counts; "True" or "1" do not
			status.OngoingRestore = res.first == "true"
			status.RestoreExpiryDate = res.second
		}
	}

	status.State = deriveState(md.StorageClass, status.OngoingRestore, status.RestoreExpiryDate)
	return status
}

func deriveState(storageClass string, ongoingRestore bool, restoreExpiryDate string) State {
	if !IsArchival(storageClass) {
		return StateNormal
	}
	switch {
	case ongoingRestore:
		return StateRestoring
	case restoreExpiryDate != "":
		return StateRestored
	default:
		return StateArchive
	}
}

// NeedsRestore reports whether the object must be restored before it can be downloaded
func (s Status) NeedsRestore() bool {
	return s.State == StateArchive
}

// Downloadable reports whether the object body can currently be fetched
func (s Status) Downloadable() bool {
	return s.State == StateNormal || s.State == StateRestored
}
