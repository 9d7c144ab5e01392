package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/worklane/worklane-cli/internal/core"
	"github.com/worklane/worklane-cli/internal/core/engine"
)

// DefaultBaseURL is the production Worklane API root.
const DefaultBaseURL = "https://api.worklane.com/api/v2"

// CacheStore persists API responses between runs.
type CacheStore interface {
	GetQueryCache(ctx context.Context, key string) (*core.CachedResponse, error)
	SetQueryCache(ctx context.Context, key, endpoint string, body []byte, ttl time.Duration) error
	InvalidateQueryCache(ctx context.Context, pattern string) (int64, error)
	SweepQueryCache(ctx context.Context, maxBytes int64, maxEntries int) (int64, error)
}

// Client calls the Worklane REST API with admission control and response
// caching. Reads consult the cache first; writes invalidate the cached
// reads they make stale and trigger a background sweep.
type Client struct {
	BaseURL        string
	AuthToken      string
	OrganizationID string
	Client         *http.Client
	Limiter        *engine.Limiter
	Cache          CacheStore
	CachePolicy    CachePolicy
	UseCache       bool
	Refresh        bool
	Logger         *zap.Logger
	ToolVersion    string
}

// APIError reports a non-success response from the Worklane API.
type APIError struct {
	StatusCode int
	Endpoint   string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("worklane api %s: %s (status %d)", e.Endpoint, e.Detail, e.StatusCode)
	}
	return fmt.Sprintf("worklane api %s: unexpected status %d", e.Endpoint, e.StatusCode)
}

// Get performs a GET against the API, consulting the response cache
// first. Cache failures degrade to a miss and never fail the call.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if c == nil {
		return nil, errors.New("api client is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	endpoint = normalizeEndpoint(endpoint)
	if endpoint == "" {
		return nil, errors.New("endpoint is required")
	}

	key := cacheKey(endpoint, c.OrganizationID, params)

	if c.UseCache && !c.Refresh && c.Cache != nil {
		cached, err := c.Cache.GetQueryCache(ctx, key)
		if err != nil {
			c.logger().Debug("response cache read failed",
				zap.String("endpoint", endpoint), zap.Error(err))
		} else if cached != nil {
			return cached.Body, nil
		}
	}

	body, err := c.dispatch(ctx, http.MethodGet, endpoint, params, nil)
	if err != nil {
		return nil, err
	}

	if c.UseCache && c.Cache != nil {
		if ttl := cacheTTL(c.CachePolicy, endpoint); ttl > 0 {
			if err := c.Cache.SetQueryCache(ctx, key, endpoint, body, ttl); err != nil {
				c.logger().Debug("response cache write failed",
					zap.String("endpoint", endpoint), zap.Error(err))
			} else {
				go c.sweep()
			}
		}
	}

	return body, nil
}

// Post performs a write and invalidates the cached reads it makes stale.
func (c *Client) Post(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	if c == nil {
		return nil, errors.New("api client is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	endpoint = normalizeEndpoint(endpoint)
	if endpoint == "" {
		return nil, errors.New("endpoint is required")
	}

	var encoded []byte
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", endpoint, err)
		}
		encoded = data
	}

	body, err := c.dispatch(ctx, http.MethodPost, endpoint, nil, encoded)
	if err != nil {
		return nil, err
	}

	c.invalidateAfterWrite(ctx, endpoint)

	return body, nil
}

// dispatch runs one logical call under admission control; throttled
// responses are retried by the limiter.
func (c *Client) dispatch(ctx context.Context, method, endpoint string, params url.Values, payload []byte) ([]byte, error) {
	class := engine.ClassForEndpoint(endpoint)

	var body []byte
	err := c.Limiter.Do(ctx, class, func(ctx context.Context) error {
		data, err := c.fetch(ctx, method, endpoint, params, payload)
		if err != nil {
			return err
		}
		body = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// fetch performs a single HTTP exchange.
func (c *Client) fetch(ctx context.Context, method, endpoint string, params url.Values, payload []byte) ([]byte, error) {
	base := c.baseURL()

	target := *base
	target.Path = strings.TrimSuffix(base.Path, "/") + endpoint
	if len(params) > 0 {
		target.RawQuery = params.Encode()
	}

	var reader io.Reader
	if len(payload) > 0 {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.api+json")
	req.Header.Set("X-Auth-Token", c.AuthToken)
	req.Header.Set("X-Organization-Id", c.OrganizationID)
	if len(payload) > 0 {
		req.Header.Set("Content-Type", "application/vnd.api+json")
	}
	if c.ToolVersion != "" {
		req.Header.Set("User-Agent", "worklane-cli/"+c.ToolVersion)
	}

	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", endpoint, err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &core.ThrottledError{RetryAfter: retryAfterHeader(resp)}
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		return data, nil
	default:
		return nil, &APIError{StatusCode: resp.StatusCode, Endpoint: endpoint, Detail: errorDetail(data)}
	}
}

func (c *Client) invalidateAfterWrite(ctx context.Context, endpoint string) {
	if c.Cache == nil {
		return
	}

	for _, pattern := range writeInvalidations(endpoint) {
		if _, err := c.Cache.InvalidateQueryCache(ctx, pattern); err != nil {
			c.logger().Debug("cache invalidation failed",
				zap.String("pattern", pattern), zap.Error(err))
		}
	}

	go c.sweep()
}

// sweep trims the response cache in the background; writers never wait.
func (c *Client) sweep() {
	if c == nil || c.Cache == nil {
		return
	}

	policy := cachePolicyWithDefaults(c.CachePolicy)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := c.Cache.SweepQueryCache(ctx, policy.MaxBytes, policy.MaxEntries); err != nil {
		c.logger().Debug("cache sweep failed", zap.Error(err))
	}
}

func (c *Client) baseURL() *url.URL {
	if c != nil && c.BaseURL != "" {
		if parsed, err := url.Parse(c.BaseURL); err == nil {
			return parsed
		}
	}
	parsed, _ := url.Parse(DefaultBaseURL)
	return parsed
}

func (c *Client) logger() *zap.Logger {
	if c != nil && c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return ""
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return endpoint
}

// retryAfterHeader reads Retry-After as either delay seconds or an
// HTTP-date.
func retryAfterHeader(resp *http.Response) time.Duration {
	if resp == nil || resp.Header == nil {
		return 0
	}

	retry := resp.Header.Get("Retry-After")
	if retry == "" {
		return 0
	}

	if seconds, err := time.ParseDuration(retry + "s"); err == nil {
		return seconds
	}
	if parsed, err := http.ParseTime(retry); err == nil {
		return time.Until(parsed)
	}

	return 0
}

func errorDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var payload struct {
		Errors []struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Errors) == 0 {
		return ""
	}

	if payload.Errors[0].Detail != "" {
		return payload.Errors[0].Detail
	}
	return payload.Errors[0].Title
}
