package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tierfolio/tierfolio-backend/internal/pkg/envutil"
	apperrors "github.com/tierfolio/tierfolio-backend/internal/pkg/errors"
	"github.com/tierfolio/tierfolio-backend/internal/pkg/httpx"
	"github.com/tierfolio/tierfolio-backend/internal/pkg/logger"
)

// Candidate is one externally discovered item. The core treats the provider
// as opaque; Origin names it for display and audit only.
type Candidate struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image,omitempty"`
	Origin      string `json:"origin,omitempty"`
}

// Client is the discovery-service contract consumed by the pool builder.
// Every method is best-effort: callers must tolerate errors and timeouts.
type Client interface {
	Search(ctx context.Context, query, domainHint string, limit int) ([]Candidate, error)
}

// SearchCache is an optional read-through cache in front of Search.
type SearchCache interface {
	Get(ctx context.Context, key string) ([]Candidate, bool)
	Set(ctx context.Context, key string, candidates []Candidate)
}

type Config struct {
	BaseURL      string
	AuthURL      string
	ClientID     string
	ClientSecret string
	Origin       string
	Timeout      time.Duration
	MaxRetries   int
	TokenMargin  time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		BaseURL:      envutil.String("DISCOVERY_BASE_URL", ""),
		AuthURL:      envutil.String("DISCOVERY_AUTH_URL", ""),
		ClientID:     envutil.String("DISCOVERY_CLIENT_ID", ""),
		ClientSecret: envutil.String("DISCOVERY_CLIENT_SECRET", ""),
		Origin:       envutil.String("DISCOVERY_ORIGIN", "discovery"),
		Timeout:      envutil.Seconds("DISCOVERY_TIMEOUT_SECONDS", 10*time.Second),
		MaxRetries:   envutil.Int("DISCOVERY_MAX_RETRIES", 2),
		TokenMargin:  envutil.Seconds("DISCOVERY_TOKEN_MARGIN_SECONDS", time.Minute),
	}
}

type client struct {
	log    *logger.Logger
	cfg    Config
	httpc  *http.Client
	tokens *tokenCache
	cache  SearchCache
}

func NewFromEnv(log *logger.Logger, cache SearchCache) (Client, error) {
	return New(log, ConfigFromEnv(), cache)
}

// New builds a discovery client. cache may be nil.
func New(log *logger.Logger, cfg Config, cache SearchCache) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("missing DISCOVERY_BASE_URL")
	}
	if cfg.AuthURL != "" && (cfg.ClientID == "" || cfg.ClientSecret == "") {
		return nil, fmt.Errorf("missing DISCOVERY_CLIENT_ID / DISCOVERY_CLIENT_SECRET (required when DISCOVERY_AUTH_URL is set)")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &client{
		log:    log.With("client", "DiscoveryClient"),
		cfg:    cfg,
		httpc:  &http.Client{Timeout: cfg.Timeout},
		tokens: newTokenCache(cfg.TokenMargin),
		cache:  cache,
	}, nil
}

type statusError struct {
	code int
	body string

	// retryAfter carries the provider's Retry-After hint, zero when absent.
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("discovery status %d: %s", e.code, e.body)
}
func (e *statusError) HTTPStatusCode() int { return e.code }

func (c *client) Search(ctx context.Context, query, domainHint string, limit int) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" && domainHint == "" {
		return nil, fmt.Errorf("%w: empty query", apperrors.ErrInvalidArgument)
	}
	if limit <= 0 {
		limit = 20
	}

	cacheKey := fmt.Sprintf("discovery:%s:%s:%d", domainHint, strings.ToLower(query), limit)
	if c.cache != nil {
		if hits, ok := c.cache.Get(ctx, cacheKey); ok {
			return hits, nil
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := httpx.JitterSleep(time.Duration(attempt) * 500 * time.Millisecond)
			// A Retry-After hint from the provider overrides the backoff.
			var se *statusError
			if errors.As(lastErr, &se) && se.retryAfter > 0 {
				delay = se.retryAfter
			}
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", apperrors.ErrExternalService, ctx.Err())
			case <-time.After(delay):
			}
		}
		out, err := c.searchOnce(ctx, query, domainHint, limit)
		if err == nil {
			if c.cache != nil {
				c.cache.Set(ctx, cacheKey, out)
			}
			return out, nil
		}
		lastErr = err
		if !httpx.IsRetryableError(err) {
			break
		}
		c.log.Debug("discovery search retrying", "attempt", attempt+1, "error", err)
	}
	return nil, fmt.Errorf("%w: %v", apperrors.ErrExternalService, lastErr)
}

func (c *client) searchOnce(ctx context.Context, query, domainHint string, limit int) ([]Candidate, error) {
	u, err := url.Parse(c.cfg.BaseURL + "/search")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("limit", fmt.Sprintf("%d", limit))
	if domainHint != "" {
		q.Set("domain", domainHint)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	if c.cfg.AuthURL != "" {
		tok, err := c.tokens.get(ctx, c.httpc, c.cfg.AuthURL, c.cfg.ClientID, c.cfg.ClientSecret)
		if err != nil {
			return nil, fmt.Errorf("discovery token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))

	if resp.StatusCode == http.StatusUnauthorized {
		// Token may have been revoked ahead of its stated expiry.
		c.tokens.invalidate()
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{
			code:       resp.StatusCode,
			body:       strings.TrimSpace(string(body)),
			retryAfter: httpx.RetryAfterDuration(resp, 0, 30*time.Second),
		}
	}

	var payload struct {
		Results []Candidate `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("discovery decode: %w", err)
	}
	out := payload.Results
	for i := range out {
		if out[i].Origin == "" {
			out[i].Origin = c.cfg.Origin
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
