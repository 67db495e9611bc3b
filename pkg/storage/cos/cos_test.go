// File: pkg/storage/cos/cos_test.go
package cos

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosctl/internal/config"
	"cosctl/internal/provider/registry"
	"cosctl/pkg/common"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func iamHandler(t *testing.T, calls *atomic.Int32, token string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, apiKeyGrantType, r.PostForm.Get("grant_type"))
		assert.Equal(t, "my-api-key", r.PostForm.Get("apikey"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   3600,
		})
	}
}

func TestTokenSourceCachesToken(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(iamHandler(t, &calls, "tok-1"))
	defer srv.Close()

	ts := newTokenSource(srv.URL, "my-api-key", srv.Client())

	for i := 0; i < 3; i++ {
		tok, err := ts.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok-1", tok)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestTokenSourceRefreshesBeforeExpiry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(iamHandler(t, &calls, "tok"))
	defer srv.Close()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ts := newTokenSource(srv.URL, "my-api-key", srv.Client())
	ts.now = func() time.Time { return now }

	_, err := ts.Token(context.Background())
	require.NoError(t, err)

	now = now.Add(time.Hour - 2*tokenExpiryMargin)
	_, err = ts.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	now = now.Add(tokenExpiryMargin + time.Second)
	_, err = ts.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestTokenSourceConcurrentCallersShareRefresh(t *testing.T) {
	var calls atomic.Int32
	inner := iamHandler(t, &calls, "tok")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		inner(w, r)
	}))
	defer srv.Close()

	ts := newTokenSource(srv.URL, "my-api-key", srv.Client())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := ts.Token(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "tok", tok)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestTokenSourceErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"iam error body", http.StatusBadRequest, `{"errorCode":"BXNIM0415E","errorMessage":"Provided API key could not be found."}`, "BXNIM0415E"},
		{"plain failure", http.StatusInternalServerError, `oops`, "status 500"},
		{"missing token", http.StatusOK, `{"expires_in":3600}`, "did not contain an access token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			ts := newTokenSource(srv.URL, "my-api-key", srv.Client())
			_, err := ts.Token(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewClientMissingCredentials(t *testing.T) {
	_, err := NewCOSStorage(Options{UseHMAC: true, AccessKeyID: "id"}, discardLogger())
	assert.ErrorIs(t, err, ErrHMACRequired)

	_, err = NewCOSStorage(Options{}, discardLogger())
	assert.ErrorIs(t, err, ErrAPIKeyRequired)
}

// fakeService answers IAM token requests and records the S3 requests it receives
type fakeService struct {
	mu      sync.Mutex
	headers []http.Header
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/identity/token" {
		_ = json.NewEncoder(w).Encode(tokenResponse{AccessToken: "iam-token", ExpiresIn: 3600})
		return
	}

	f.mu.Lock()
	f.headers = append(f.headers, r.Header.Clone())
	f.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func TestIAMRequestsCarryBearerToken(t *testing.T) {
	fake := &fakeService{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	s, err := NewCOSStorage(Options{
		Endpoint:           srv.URL,
		APIKey:             "my-api-key",
		ResourceInstanceID: "crn:v1:bluemix:public:cloud-object-storage:global:a/123::",
		IAMURL:             srv.URL + "/identity/token",
		HTTPClient:         srv.Client(),
		UsePathStyle:       true,
	}, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, common.COS, s.ProviderName())

	require.NoError(t, s.DeleteObject(context.Background(), "bucket", "key"))

	require.Len(t, fake.headers, 1)
	assert.Equal(t, "Bearer iam-token", fake.headers[0].Get(authorizationHeader))
	assert.Equal(t, "crn:v1:bluemix:public:cloud-object-storage:global:a/123::", fake.headers[0].Get(serviceInstanceIDHeader))
}

func TestHMACRequestsAreSigned(t *testing.T) {
	fake := &fakeService{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	s, err := NewCOSStorage(Options{
		Endpoint:        srv.URL,
		UseHMAC:         true,
		AccessKeyID:     "access",
		SecretAccessKey: "secret",
		HTTPClient:      srv.Client(),
		UsePathStyle:    true,
	}, discardLogger())
	require.NoError(t, err)

	require.NoError(t, s.DeleteObject(context.Background(), "bucket", "key"))

	require.Len(t, fake.headers, 1)
	auth := fake.headers[0].Get(authorizationHeader)
	assert.True(t, strings.HasPrefix(auth, "AWS4-HMAC-SHA256"), auth)
	assert.Contains(t, auth, "Credential=access/")
	assert.Empty(t, fake.headers[0].Get(serviceInstanceIDHeader))
}

func TestRegistration(t *testing.T) {
	reg, ok := registry.GetRegistration("cos")
	require.True(t, ok)

	assert.False(t, reg.ConfigCheck(&config.Config{}))
	assert.True(t, reg.ConfigCheck(&config.Config{COS: config.COSConfig{APIKey: "key"}}))
	assert.False(t, reg.ConfigCheck(&config.Config{COS: config.COSConfig{UseHMAC: true, APIKey: "key"}}))
}

func TestInitializeAddsConfigHint(t *testing.T) {
	_, err := initialize(context.Background(), &config.Config{COS: config.COSConfig{UseHMAC: true}}, discardLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHMACRequired)
	assert.Contains(t, err.Error(), "cos.access_key_id")
}
