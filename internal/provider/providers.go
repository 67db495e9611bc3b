// File: internal/provider/providers.go

// Package provider links every storage provider into the binary. Importing it
// runs each provider's init(), which registers the provider with the registry.
//
// To add a provider, implement it under pkg/storage/<name>, register it in its
// init() function and add the import here.
package provider

import (
	_ "cosctl/pkg/storage/aws"
	_ "cosctl/pkg/storage/cos"
	_ "cosctl/pkg/storage/gcp"
)
