// File: pkg/archive/encode.go
package archive

import (
	"fmt"
	"strconv"
)

// Format selects one of the two header conventions the service is known to emit
type Format int

const (
	FormatQuoted Format = iota
	FormatColon
)

func (f Format) String() string {
	switch f {
	case FormatQuoted:
		return "quoted"
	case FormatColon:
		return "colon"
	default:
		return "Format(" + strconv.Itoa(int(f)) + ")"
	}
}

// EncodeTransition renders a transition header. An empty state yields an empty header.
func EncodeTransition(f Format, state, date string) string {
	if state == "" && date == "" {
		return ""
	}
	switch f {
	case FormatColon:
		if date == "" {
			return fmt.Sprintf("transition: %s", state)
		}
		return fmt.Sprintf("transition: %s date: %s", state, date)
	default:
		if date == "" {
			return fmt.Sprintf(`transition="%s"`, state)
		}
		return fmt.Sprintf(`transition="%s", date="%s"`, state, date)
	}
}

// EncodeRestore renders a restore header
func EncodeRestore(f Format, ongoing bool, expiryDate string) string {
	switch f {
	case FormatColon:
		if expiryDate == "" {
			return fmt.Sprintf("ongoing-request = %t", ongoing)
		}
		return fmt.Sprintf("ongoing-request = %t, expiry-date = %s", ongoing, expiryDate)
	default:
		if expiryDate == "" {
			return fmt.Sprintf(`ongoing-request="%t"`, ongoing)
		}
		return fmt.Sprintf(`ongoing-request="%t", expiry-date="%s"`, ongoing, expiryDate)
	}
}

// Encode renders a status back into raw metadata using the given header convention.
// Decoding the result yields the same status.
func Encode(s Status, storageClass string, f Format) Metadata {
	md := Metadata{
		Transition:   EncodeTransition(f, s.TransitionState, s.TransitionDate),
		StorageClass: storageClass,
	}
	if IsArchival(storageClass) {
		md.Restore = EncodeRestore(f, s.OngoingRestore, s.RestoreExpiryDate)
	}
	return md
}
