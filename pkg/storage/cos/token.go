// File: pkg/storage/cos/token.go
package cos

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultIAMURL is the token endpoint API keys are exchanged at
const DefaultIAMURL = "https://iam.cloud.ibm.com/identity/token"

const (
	apiKeyGrantType = "urn:ibm:params:oauth:grant-type:apikey"

	// Tokens are refreshed this long before they expire
	tokenExpiryMargin = 60 * time.Second
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Expiration  int64  `json:"expiration"`
}

type iamError struct {
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// tokenSource exchanges an API key for IAM bearer tokens and caches them until
// shortly before they expire
type tokenSource struct {
	url    string
	apiKey string
	client *http.Client
	now    func() time.Time

	group singleflight.Group

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func newTokenSource(iamURL, apiKey string, client *http.Client) *tokenSource {
	if iamURL == "" {
		iamURL = DefaultIAMURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &tokenSource{
		url:    iamURL,
		apiKey: apiKey,
		client: client,
		now:    time.Now,
	}
}

// Token returns a valid access token. Concurrent callers share a single refresh.
func (t *tokenSource) Token(ctx context.Context) (string, error) {
	if tok, ok := t.cached(); ok {
		return tok, nil
	}

	v, err, _ := t.group.Do("token", func() (interface{}, error) {
		if tok, ok := t.cached(); ok {
			return tok, nil
		}
		return t.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (t *tokenSource) cached() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token == "" || !t.now().Before(t.expiry.Add(-tokenExpiryMargin)) {
		return "", false
	}
	return t.token, true
}

func (t *tokenSource) refresh(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type": {apiKeyGrantType},
		"apikey":     {t.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("error creating IAM token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error requesting IAM token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("error reading IAM token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ie iamError
		if json.Unmarshal(body, &ie) == nil && ie.ErrorMessage != "" {
			return "", fmt.Errorf("IAM token request failed (%d): %s: %s", resp.StatusCode, ie.ErrorCode, ie.ErrorMessage)
		}
		return "", fmt.Errorf("IAM token request failed with status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("error decoding IAM token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("IAM token response did not contain an access token")
	}

	now := t.now()
	var expiry time.Time
	switch {
	case tr.ExpiresIn > 0:
		expiry = now.Add(time.Duration(tr.ExpiresIn) * time.Second)
	case tr.Expiration > 0:
		expiry = time.Unix(tr.Expiration, 0)
	default:
		expiry = now
	}

	t.mu.Lock()
	t.token = tr.AccessToken
	t.expiry = expiry
	t.mu.Unlock()

	return tr.AccessToken, nil
}
