// File: pkg/endpoints/fetch.go
package endpoints

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"
)

// DefaultURL is the public endpoint catalog of the object storage service
const DefaultURL = "https://control.cloud-object-storage.cloud.ibm.com/v2/endpoints"

// Limit on the catalog document size; the real one is a few tens of kilobytes
const maxCatalogBytes = 4 << 20

// Fetch downloads and parses the endpoint catalog
func Fetch(ctx context.Context, client *http.Client, url string) (*Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating endpoint catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching endpoint catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("error fetching endpoint catalog: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
	if err != nil {
		return nil, fmt.Errorf("error reading endpoint catalog: %w", err)
	}
	return Parse(data)
}

// Resolver fetches the catalog once and answers endpoint lookups from it
type Resolver struct {
	client *http.Client
	url    string
	logger *slog.Logger

	mu      sync.Mutex
	catalog *Catalog
}

func NewResolver(client *http.Client, url string, logger *slog.Logger) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	if url == "" {
		url = DefaultURL
	}
	return &Resolver{
		client: client,
		url:    url,
		logger: logger,
	}
}

// Catalog returns the cached catalog, fetching it on first use
func (r *Resolver) Catalog(ctx context.Context) (*Catalog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.catalog != nil {
		return r.catalog, nil
	}

	r.logger.Debug("Fetching endpoint catalog", "url", r.url)
	c, err := Fetch(ctx, r.client, r.url)
	if err != nil {
		return nil, err
	}
	r.catalog = c
	return c, nil
}

// Resolve returns the public endpoint for a bucket given its reported region and location constraint
func (r *Resolver) Resolve(ctx context.Context, region, locationConstraint string) (string, error) {
	c, err := r.Catalog(ctx)
	if err != nil {
		return "", err
	}

	bucketRegion := RegionFromLocation(region, locationConstraint)
	endpoint, err := c.FindBucketEndpoint(bucketRegion)
	if err != nil {
		return "", err
	}

	r.logger.Debug("Resolved bucket endpoint", "region", bucketRegion, "endpoint", endpoint)
	return endpoint, nil
}

func sortedKeys(m map[string]RegionEndpoints) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
