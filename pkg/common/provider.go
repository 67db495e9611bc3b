// File: pkg/common/provider.go
package common

type Provider string

const (
	COS Provider = "COS"
	AWS Provider = "AWS"
	GCP Provider = "GCP"
)
