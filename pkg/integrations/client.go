package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/simplecmr/pkg/cache"
	cmrerrors "github.com/matzehuels/simplecmr/pkg/errors"
	"github.com/matzehuels/simplecmr/pkg/observability"
)

// Client provides shared HTTP functionality for API clients: request
// construction, status mapping and response caching. Requests are never
// retried.
//
// All methods are safe for concurrent use if the cache backend is.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
	headers   map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default outbound HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithKeyer replaces the default cache keyer.
func WithKeyer(k cache.Keyer) Option {
	return func(c *Client) {
		if k != nil {
			c.keyer = k
		}
	}
}

// NewClient creates a Client caching responses in backend under namespace
// for cacheTTL. A nil backend disables caching. Headers, which may be nil,
// are applied to every request.
func NewClient(backend cache.Cache, namespace string, cacheTTL time.Duration, headers map[string]string, opts ...Option) *Client {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	c := &Client{
		http:      NewHTTPClient(),
		cache:     backend,
		keyer:     cache.NewDefaultKeyer(),
		namespace: namespace,
		ttl:       cacheTTL,
		headers:   headers,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HTTP returns the underlying HTTP client.
func (c *Client) HTTP() *http.Client { return c.http }

// Get performs a GET of endpoint with params and JSON-decodes the body into
// v. Raw response bodies are cached by full request URL; if refresh is true
// the cache is bypassed (but still updated on success). A body that is not
// valid JSON is never cached.
//
// Failures are returned as *errors.RequestError carrying the request URL.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values, refresh bool, v any) error {
	full := endpoint
	if len(params) > 0 {
		full += "?" + params.Encode()
	}
	body, err := c.Cached(ctx, full, refresh, func() ([]byte, error) {
		data, err := c.fetch(ctx, full)
		if err != nil {
			return nil, err
		}
		if !json.Valid(data) {
			return nil, fmt.Errorf("decode %s: invalid JSON response body", full)
		}
		return data, nil
	})
	if err != nil {
		return err
	}
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", full, err)
	}
	return nil
}

// Cached returns the cached body for rawURL or calls fetch and caches its
// result. Cache backend errors are treated as misses.
func (c *Client) Cached(ctx context.Context, rawURL string, refresh bool, fetch func() ([]byte, error)) ([]byte, error) {
	key := c.keyer.HTTPKey(c.namespace, rawURL)
	hooks := observability.Cache()

	if !refresh {
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			hooks.OnCacheHit(ctx, c.namespace)
			return data, nil
		}
		hooks.OnCacheMiss(ctx, c.namespace)
	}

	data, err := fetch()
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err == nil {
		hooks.OnCacheSet(ctx, c.namespace, len(data))
	}
	return data, nil
}

func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &cmrerrors.RequestError{URL: rawURL, Cause: err}
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &cmrerrors.RequestError{URL: rawURL, Cause: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()

	if err := checkStatus(rawURL, resp.StatusCode); err != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &cmrerrors.RequestError{URL: rawURL, StatusCode: resp.StatusCode, Cause: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	return data, nil
}

func checkStatus(rawURL string, code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return &cmrerrors.RequestError{URL: rawURL, StatusCode: code, Cause: ErrNotFound}
	case code >= 500:
		return &cmrerrors.RequestError{URL: rawURL, StatusCode: code, Cause: ErrNetwork}
	default:
		return &cmrerrors.RequestError{URL: rawURL, StatusCode: code}
	}
}
