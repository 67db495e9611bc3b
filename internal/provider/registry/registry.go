// File: internal/provider/registry/registry.go
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"cosctl/internal/config"
	"cosctl/pkg/storage"
)

// ProviderConfigCheck reports whether the configuration holds enough to build a client
type ProviderConfigCheck func(cfg *config.Config) bool

// ProviderInitializer builds a storage client from the configuration
type ProviderInitializer func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Storage, error)

type ProviderRegistration struct {
	ConfigCheck ProviderConfigCheck
	Initializer ProviderInitializer

	// Shown in help and error text
	Description string
	// Config keys that make the provider usable, e.g. "aws.region"
	RequiredKeys []string
}

// Info is the public view of a registration
type Info struct {
	Name         string
	Description  string
	RequiredKeys []string
}

var (
	providers = make(map[string]ProviderRegistration)
	mu        sync.RWMutex
)

// RegisterProvider is called from a provider package's init(). It panics on a
// duplicate name or a registration without ConfigCheck and Initializer.
func RegisterProvider(name string, registration ProviderRegistration) {
	mu.Lock()
	defer mu.Unlock()

	name = strings.ToLower(name)
	switch {
	case providers[name].Initializer != nil:
		panic(fmt.Sprintf("provider %s already registered", name))
	case registration.ConfigCheck == nil:
		panic(fmt.Sprintf("provider %s registration missing ConfigCheck", name))
	case registration.Initializer == nil:
		panic(fmt.Sprintf("provider %s registration missing Initializer", name))
	}

	providers[name] = registration
}

// GetSupportedProviders returns the registered provider names, sorted
func GetSupportedProviders() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func IsSupported(providerName string) bool {
	_, ok := GetRegistration(providerName)
	return ok
}

func GetRegistration(providerName string) (ProviderRegistration, bool) {
	mu.RLock()
	defer mu.RUnlock()

	registration, ok := providers[strings.ToLower(providerName)]
	return registration, ok
}

// GetAllRegistrations returns a copy of the registry
func GetAllRegistrations() map[string]ProviderRegistration {
	mu.RLock()
	defer mu.RUnlock()

	out := make(map[string]ProviderRegistration, len(providers))
	for k, v := range providers {
		out[k] = v
	}
	return out
}

// Describe lists every registered provider in name order
func Describe() []Info {
	all := GetAllRegistrations()
	infos := make([]Info, 0, len(all))
	for _, name := range GetSupportedProviders() {
		reg, ok := all[name]
		if !ok {
			continue
		}
		infos = append(infos, Info{Name: name, Description: reg.Description, RequiredKeys: reg.RequiredKeys})
	}
	return infos
}

// ConfigHint tells the user which keys make a provider usable
func ConfigHint(providerName string) string {
	name := strings.ToLower(providerName)
	reg, ok := GetRegistration(name)
	if !ok || len(reg.RequiredKeys) == 0 {
		return fmt.Sprintf("Use 'cosctl config set %s.<key> <value>' (see 'cosctl config list' for the supported keys)", name)
	}
	return fmt.Sprintf("Use 'cosctl config set <key> <value>' for %s", strings.Join(reg.RequiredKeys, " or "))
}
