// File: pkg/endpoints/endpoints_test.go
package endpoints

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogJSON = `{
  "identity-endpoints": {"iam-token": "iam.cloud.ibm.com"},
  "service-endpoints": {
    "cross-region": {
      "us": {
        "public": {
          "us-geo": "s3.us.cloud-object-storage.appdomain.cloud",
          "Dallas": "s3.dal.us.cloud-object-storage.appdomain.cloud",
          "Washington": "s3.wdc.us.cloud-object-storage.appdomain.cloud"
        },
        "private": {"us-geo": "s3.private.us.cloud-object-storage.appdomain.cloud"}
      }
    },
    "regional": {
      "us-south": {
        "public": {"us-south": "s3.us-south.cloud-object-storage.appdomain.cloud"},
        "private": {"us-south": "s3.private.us-south.cloud-object-storage.appdomain.cloud"}
      },
      "eu-de": {
        "public": {},
        "private": {"eu-de": "s3.private.eu-de.cloud-object-storage.appdomain.cloud"}
      }
    },
    "single-site": {
      "ams03": {
        "public": {"ams03": "s3.ams03.cloud-object-storage.appdomain.cloud"}
      }
    }
  }
}`

func TestParsePreservesOrder(t *testing.T) {
	c, err := Parse([]byte(catalogJSON))
	require.NoError(t, err)

	us := c.ServiceEndpoints.CrossRegion["us"]
	require.Len(t, us.Public, 3)
	assert.Equal(t, "us-geo", us.Public[0].Name)
	assert.Equal(t, "Dallas", us.Public[1].Name)
	assert.Equal(t, "Washington", us.Public[2].Name)
	assert.Len(t, us.Private, 1)
	assert.Empty(t, us.Direct)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte(`{"service-endpoints": {"regional": {"x": {"public": ["a"]}}}}`))
	assert.Error(t, err)
}

func TestFindBucketEndpoint(t *testing.T) {
	c, err := Parse([]byte(catalogJSON))
	require.NoError(t, err)

	tests := []struct {
		name    string
		region  string
		want    string
		wantErr error
	}{
		{"cross region first public", "us", "s3.us.cloud-object-storage.appdomain.cloud", nil},
		{"regional", "us-south", "s3.us-south.cloud-object-storage.appdomain.cloud", nil},
		{"single site", "ams03", "s3.ams03.cloud-object-storage.appdomain.cloud", nil},
		{"no public endpoints", "eu-de", "", ErrNoPublicEndpoint},
		{"unknown region", "mars-1", "", ErrRegionNotFound},
		{"empty region", "", "", ErrRegionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindBucketEndpoint(tt.region, c)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookupSearchOrder(t *testing.T) {
	c := &Catalog{ServiceEndpoints: ServiceEndpoints{
		CrossRegion: map[string]RegionEndpoints{"eu": {Public: Endpoints{{Name: "eu-geo", Host: "cross"}}}},
		Regional:    map[string]RegionEndpoints{"eu": {Public: Endpoints{{Name: "eu", Host: "regional"}}}},
	}}

	_, group, ok := c.Lookup("eu")
	require.True(t, ok)
	assert.Equal(t, CrossRegion, group)

	got, err := c.FindBucketEndpoint("eu")
	require.NoError(t, err)
	assert.Equal(t, "cross", got)
}

func TestRegionFromLocation(t *testing.T) {
	tests := []struct {
		region     string
		constraint string
		want       string
	}{
		{"", "us-south-smart", "us-south"},
		{"", "us-standard", "us"},
		{"", "ams03-cold", "ams03"},
		{"", "nodash", ""},
		{"", "", ""},
		{"eu-de", "us-south-smart", "eu-de"},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			assert.Equal(t, tt.want, RegionFromLocation(tt.region, tt.constraint))
		})
	}
}

func TestRegions(t *testing.T) {
	c, err := Parse([]byte(catalogJSON))
	require.NoError(t, err)

	regions := c.Regions()
	require.Len(t, regions, 4)
	assert.Equal(t, RegionSummary{Group: CrossRegion, Region: "us", Public: "s3.us.cloud-object-storage.appdomain.cloud"}, regions[0])
	assert.Equal(t, RegionSummary{Group: Regional, Region: "eu-de"}, regions[1])
	assert.Equal(t, "us-south", regions[2].Region)
	assert.Equal(t, SingleSite, regions[3].Group)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(catalogJSON))
	}))
	defer srv.Close()

	c, err := Fetch(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, c.ServiceEndpoints.Regional, "us-south")
}

func TestFetchNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), srv.Client(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestResolverCachesCatalog(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(catalogJSON))
	}))
	defer srv.Close()

	r := NewResolver(srv.Client(), srv.URL, slog.New(slog.DiscardHandler))

	endpoint, err := r.Resolve(context.Background(), "", "us-south-smart")
	require.NoError(t, err)
	assert.Equal(t, "s3.us-south.cloud-object-storage.appdomain.cloud", endpoint)

	endpoint, err = r.Resolve(context.Background(), "us", "")
	require.NoError(t, err)
	assert.Equal(t, "s3.us.cloud-object-storage.appdomain.cloud", endpoint)

	assert.Equal(t, int32(1), calls.Load())
}
