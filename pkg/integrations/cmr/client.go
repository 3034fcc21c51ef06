package cmr

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/simplecmr/pkg/buildinfo"
	"github.com/matzehuels/simplecmr/pkg/cache"
	"github.com/matzehuels/simplecmr/pkg/errors"
	"github.com/matzehuels/simplecmr/pkg/integrations"
	"github.com/matzehuels/simplecmr/pkg/observability"
)

const (
	DefaultBaseURL = "https://cmr.earthdata.nasa.gov/search"     // Production CMR
	UATBaseURL     = "https://cmr.uat.earthdata.nasa.gov/search" // User acceptance testing CMR
	Format         = "umm_json_v1_4"                             // Response format suffix
	DefaultTTL     = time.Hour                                   // Default response cache lifetime
)

// Resource names a searchable CMR resource.
type Resource string

const (
	ResourceCollections Resource = "collections"
	ResourceGranules    Resource = "granules"
)

// ParseResource converts a resource name, returning an INVALID_INPUT error
// for anything other than "collections" or "granules".
func ParseResource(s string) (Resource, error) {
	switch r := Resource(s); r {
	case ResourceCollections, ResourceGranules:
		return r, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown resource %q, want collections or granules", s)
}

// Fields returns the allow-list projected for the resource.
func (r Resource) Fields() []string {
	if r == ResourceCollections {
		return CollectionFields
	}
	return GranuleFields
}

// Client searches the CMR API. Responses are cached through the embedded
// integrations.Client.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
	logger  *log.Logger
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	baseURL string
	http    *http.Client
	keyer   cache.Keyer
	logger  *log.Logger
}

// WithBaseURL points the client at another CMR deployment, such as
// UATBaseURL or a test server.
func WithBaseURL(u string) Option {
	return func(c *clientConfig) { c.baseURL = u }
}

// WithHTTPClient replaces the outbound HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *clientConfig) { c.http = h }
}

// WithKeyer replaces the cache keyer.
func WithKeyer(k cache.Keyer) Option {
	return func(c *clientConfig) { c.keyer = k }
}

// WithLogger sets the logger for request diagnostics. Nil discards them.
func WithLogger(l *log.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

// NewClient creates a CMR client caching responses in backend for
// cacheTTL. A nil backend disables caching.
func NewClient(backend cache.Cache, cacheTTL time.Duration, opts ...Option) *Client {
	cfg := clientConfig{baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.New(io.Discard)
	}
	headers := map[string]string{
		"Accept":     "application/json",
		"User-Agent": buildinfo.UserAgent(),
	}
	return &Client{
		Client: integrations.NewClient(backend, "cmr:", cacheTTL, headers,
			integrations.WithHTTPClient(cfg.http), integrations.WithKeyer(cfg.keyer)),
		baseURL: cfg.baseURL,
		logger:  cfg.logger,
	}
}

// BaseURL returns the search endpoint root.
func (c *Client) BaseURL() string { return c.baseURL }

// Endpoint returns the search URL for a resource.
func (c *Client) Endpoint(r Resource) string {
	return c.baseURL + "/" + string(r) + "." + Format
}

// Search sends a single GET for resource with the query parameters and
// returns the decoded response, which may have zero items.
//
// If refresh is true the response cache is bypassed. Failures are
// *errors.RequestError values carrying the request URL and status; they
// are never retried.
func (c *Client) Search(ctx context.Context, r Resource, q *Query, refresh bool) (*Response, error) {
	if _, err := ParseResource(string(r)); err != nil {
		return nil, err
	}
	if q == nil {
		q = &Query{}
	}
	hooks := observability.Search()
	hooks.OnSearchStart(ctx, string(r))
	start := time.Now()

	endpoint := c.Endpoint(r)
	c.logger.Debug("search", "url", endpoint, "params", q.Encode())

	var resp Response
	err := c.Get(ctx, endpoint, q.Params, refresh, &resp)
	hooks.OnSearchComplete(ctx, string(r), len(resp.Items), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("search complete", "resource", r, "hits", resp.Hits, "items", len(resp.Items), "took_ms", resp.Took)
	return &resp, nil
}

// Collections searches collections and projects them onto
// CollectionFields. Zero results are an EMPTY_RESULT error.
func (c *Client) Collections(ctx context.Context, q *Query, refresh bool) (Records, error) {
	resp, err := c.Search(ctx, ResourceCollections, q, refresh)
	if err != nil {
		return nil, err
	}
	return Project(resp, CollectionFields)
}

// Granules searches granules and projects them onto GranuleFields. Zero
// results are an EMPTY_RESULT error.
func (c *Client) Granules(ctx context.Context, q *Query, refresh bool) (Records, error) {
	resp, err := c.Search(ctx, ResourceGranules, q, refresh)
	if err != nil {
		return nil, err
	}
	return Project(resp, GranuleFields)
}
