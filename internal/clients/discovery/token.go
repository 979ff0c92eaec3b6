package discovery

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

// tokenCache holds the provider bearer token for one client instance. Token
// state is never package-global; each client owns its own cache with explicit
// expiry, refreshed lazily with a safety margin before the provider cutoff.
type tokenCache struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time

	// margin subtracted from the provider expiry so a token is never used
	// right at its deadline.
	margin time.Duration

	group singleflight.Group
}

func newTokenCache(margin time.Duration) *tokenCache {
	if margin <= 0 {
		margin = time.Minute
	}
	return &tokenCache{margin: margin}
}

func (tc *tokenCache) cached() (string, bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.token == "" || time.Now().After(tc.expiresAt) {
		return "", false
	}
	return tc.token, true
}

func (tc *tokenCache) store(token string, ttl time.Duration) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.token = token
	tc.expiresAt = time.Now().Add(ttl - tc.margin)
}

func (tc *tokenCache) invalidate() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.token = ""
	tc.expiresAt = time.Time{}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// get returns a valid token, exchanging credentials when the cached one is
// missing or stale. Concurrent callers share one refresh via singleflight.
func (tc *tokenCache) get(ctx context.Context, httpc *http.Client, authURL, clientID, clientSecret string) (string, error) {
	if tok, ok := tc.cached(); ok {
		return tok, nil
	}
	v, err, _ := tc.group.Do("token", func() (interface{}, error) {
		// Re-check under the flight: another caller may have refreshed.
		if tok, ok := tc.cached(); ok {
			return tok, nil
		}
		form := url.Values{}
		form.Set("grant_type", "client_credentials")
		form.Set("client_id", clientID)
		form.Set("client_secret", clientSecret)

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, authURL, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := httpc.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("token exchange status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
		var tr tokenResponse
		if err := json.Unmarshal(body, &tr); err != nil {
			return nil, fmt.Errorf("token exchange decode: %w", err)
		}
		if tr.AccessToken == "" {
			return nil, fmt.Errorf("token exchange returned empty token")
		}
		ttl := time.Duration(tr.ExpiresIn) * time.Second
		if ttl <= tc.margin {
			ttl = tc.margin + time.Minute
		}
		tc.store(tr.AccessToken, ttl)
		return tr.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
