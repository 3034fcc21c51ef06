package observability

import (
	"context"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus implements every hook interface by recording Prometheus
// metrics on the registerer it was built with.
type Prometheus struct {
	searches       *prometheus.CounterVec
	searchDuration *prometheus.HistogramVec
	searchItems    *prometheus.CounterVec
	cacheResults   *prometheus.CounterVec
	cacheBytes     *prometheus.CounterVec
	fetches        *prometheus.CounterVec
	fetchBytes     prometheus.Counter
	fetchDuration  prometheus.Histogram
}

// NewPrometheus registers the simplecmr metrics on reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simplecmr_searches_total",
			Help: "CMR search requests by resource and outcome.",
		}, []string{"resource", "outcome"}),
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "simplecmr_search_duration_seconds",
			Help:    "Duration of CMR search requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		}, []string{"resource"}),
		searchItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simplecmr_search_items_total",
			Help: "Items returned by CMR searches.",
		}, []string{"resource"}),
		cacheResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simplecmr_cache_results_total",
			Help: "Response cache lookups by namespace and outcome.",
		}, []string{"namespace", "outcome"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simplecmr_cache_written_bytes_total",
			Help: "Bytes written to the response cache.",
		}, []string{"namespace"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simplecmr_fetches_total",
			Help: "Granule downloads by host and outcome.",
		}, []string{"host", "outcome"}),
		fetchBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simplecmr_fetch_bytes_total",
			Help: "Bytes written by granule downloads.",
		}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "simplecmr_fetch_duration_seconds",
			Help:    "Duration of granule downloads in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 14),
		}),
	}
	reg.MustRegister(
		p.searches, p.searchDuration, p.searchItems,
		p.cacheResults, p.cacheBytes,
		p.fetches, p.fetchBytes, p.fetchDuration,
	)
	return p
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// OnSearchStart implements SearchHooks.
func (p *Prometheus) OnSearchStart(context.Context, string) {}

// OnSearchComplete implements SearchHooks.
func (p *Prometheus) OnSearchComplete(_ context.Context, resource string, items int, d time.Duration, err error) {
	p.searches.WithLabelValues(resource, outcome(err)).Inc()
	p.searchDuration.WithLabelValues(resource).Observe(d.Seconds())
	if items > 0 {
		p.searchItems.WithLabelValues(resource).Add(float64(items))
	}
}

// OnCacheHit implements CacheHooks.
func (p *Prometheus) OnCacheHit(_ context.Context, ns string) {
	p.cacheResults.WithLabelValues(ns, "hit").Inc()
}

// OnCacheMiss implements CacheHooks.
func (p *Prometheus) OnCacheMiss(_ context.Context, ns string) {
	p.cacheResults.WithLabelValues(ns, "miss").Inc()
}

// OnCacheSet implements CacheHooks.
func (p *Prometheus) OnCacheSet(_ context.Context, ns string, size int) {
	p.cacheBytes.WithLabelValues(ns).Add(float64(size))
}

// OnFetchStart implements FetchHooks.
func (p *Prometheus) OnFetchStart(context.Context, string) {}

// OnFetchComplete implements FetchHooks.
func (p *Prometheus) OnFetchComplete(_ context.Context, rawURL string, n int64, d time.Duration, err error) {
	host := "unknown"
	if u, perr := url.Parse(rawURL); perr == nil && u.Host != "" {
		host = u.Host
	}
	p.fetches.WithLabelValues(host, outcome(err)).Inc()
	p.fetchDuration.Observe(d.Seconds())
	if n > 0 {
		p.fetchBytes.Add(float64(n))
	}
}

var (
	_ SearchHooks = (*Prometheus)(nil)
	_ CacheHooks  = (*Prometheus)(nil)
	_ FetchHooks  = (*Prometheus)(nil)
)
