// File: pkg/endpoints/catalog.go

// Package endpoints fetches the object storage endpoint catalog and picks the
// endpoint that serves a given bucket's location.
package endpoints

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRegionNotFound   = errors.New("no endpoints listed for region")
	ErrNoPublicEndpoint = errors.New("region has no public endpoints")
)

// Resiliency groups in the order they are searched
const (
	CrossRegion = "cross-region"
	Regional    = "regional"
	SingleSite  = "single-site"
)

type Catalog struct {
	ServiceEndpoints ServiceEndpoints `json:"service-endpoints"`
}

type ServiceEndpoints struct {
	CrossRegion map[string]RegionEndpoints `json:"cross-region"`
	Regional    map[string]RegionEndpoints `json:"regional"`
	SingleSite  map[string]RegionEndpoints `json:"single-site"`
}

type RegionEndpoints struct {
	Public  Endpoints `json:"public"`
	Private Endpoints `json:"private"`
	Direct  Endpoints `json:"direct"`
}

type NamedEndpoint struct {
	Name string `json:"name" yaml:"name"`
	Host string `json:"host" yaml:"host"`
}

// Endpoints keeps the named endpoints in the order the catalog lists them; the
// first public endpoint of a region is the one used for its buckets
type Endpoints []NamedEndpoint

func (e *Endpoints) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*e = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("endpoints: expected object, got %v", tok)
	}

	var result Endpoints
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("endpoints: unexpected key %v", keyTok)
		}

		var host string
		if err := dec.Decode(&host); err != nil {
			return fmt.Errorf("endpoints: value for %q: %w", name, err)
		}
		result = append(result, NamedEndpoint{Name: name, Host: host})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*e = result
	return nil
}

// Parse decodes an endpoint catalog document
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("error parsing endpoint catalog: %w", err)
	}
	return &c, nil
}

// Lookup finds the endpoints for a region, searching cross-region, regional and
// then single-site groups. The group name is returned along with the endpoints.
func (c *Catalog) Lookup(region string) (RegionEndpoints, string, bool) {
	groups := []struct {
		name    string
		regions map[string]RegionEndpoints
	}{
		{CrossRegion, c.ServiceEndpoints.CrossRegion},
		{Regional, c.ServiceEndpoints.Regional},
		{SingleSite, c.ServiceEndpoints.SingleSite},
	}
	for _, g := range groups {
		if eps, ok := g.regions[region]; ok {
			return eps, g.name, true
		}
	}
	return RegionEndpoints{}, "", false
}

// FindBucketEndpoint returns the first public endpoint serving the region
func FindBucketEndpoint(region string, c *Catalog) (string, error) {
	return c.FindBucketEndpoint(region)
}

func (c *Catalog) FindBucketEndpoint(region string) (string, error) {
	eps, _, ok := c.Lookup(region)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrRegionNotFound, region)
	}
	if len(eps.Public) == 0 {
		return "", fmt.Errorf("%w: %q", ErrNoPublicEndpoint, region)
	}
	return eps.Public[0].Host, nil
}

// RegionFromLocation returns the region a bucket lives in. A region reported by the
// service wins; otherwise it is the location constraint without its trailing
// storage-class suffix, e.g. "us-south-smart" becomes "us-south".
func RegionFromLocation(region, locationConstraint string) string {
	if region != "" {
		return region
	}
	idx := strings.LastIndex(locationConstraint, "-")
	if idx < 0 {
		return ""
	}
	return locationConstraint[:idx]
}

// RegionSummary is one row of the catalog as shown by 'cosctl endpoints list'
type RegionSummary struct {
	Group  string `json:"group" yaml:"group"`
	Region string `json:"region" yaml:"region"`
	Public string `json:"public,omitempty" yaml:"public,omitempty"`
}

// Regions lists every region in the catalog with its first public endpoint
func (c *Catalog) Regions() []RegionSummary {
	var out []RegionSummary
	add := func(group string, regions map[string]RegionEndpoints) {
		for _, name := range sortedKeys(regions) {
			s := RegionSummary{Group: group, Region: name}
			if eps := regions[name]; len(eps.Public) > 0 {
				s.Public = eps.Public[0].Host
			}
			out = append(out, s)
		}
	}
	add(CrossRegion, c.ServiceEndpoints.CrossRegion)
	add(Regional, c.ServiceEndpoints.Regional)
	add(SingleSite, c.ServiceEndpoints.SingleSite)
	return out
}
