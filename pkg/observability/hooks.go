// Package observability provides hooks for metrics and logging.
//
// Library packages emit events through small hook interfaces; the CLI or
// server decides at startup whether anything listens. The defaults are
// no-ops, so the library never depends on a metrics backend being present.
//
// Register hooks once at startup:
//
//	hooks := observability.NewPrometheus(prometheus.NewRegistry())
//	observability.SetSearchHooks(hooks)
//	observability.SetCacheHooks(hooks)
//	observability.SetFetchHooks(hooks)
//
// Libraries call hooks to emit events:
//
//	observability.Search().OnSearchStart(ctx, "granules")
//	observability.Search().OnSearchComplete(ctx, "granules", 5, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// SearchHooks receives events from CMR search requests.
type SearchHooks interface {
	OnSearchStart(ctx context.Context, resource string)
	OnSearchComplete(ctx context.Context, resource string, items int, duration time.Duration, err error)
}

// CacheHooks receives events from response cache lookups.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, namespace string)
	OnCacheMiss(ctx context.Context, namespace string)
	OnCacheSet(ctx context.Context, namespace string, size int)
}

// FetchHooks receives events from granule downloads.
type FetchHooks interface {
	OnFetchStart(ctx context.Context, url string)
	OnFetchComplete(ctx context.Context, url string, bytes int64, duration time.Duration, err error)
}

// NoopSearchHooks is a no-op implementation of SearchHooks.
type NoopSearchHooks struct{}

func (NoopSearchHooks) OnSearchStart(context.Context, string) {}
func (NoopSearchHooks) OnSearchComplete(context.Context, string, int, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopFetchHooks is a no-op implementation of FetchHooks.
type NoopFetchHooks struct{}

func (NoopFetchHooks) OnFetchStart(context.Context, string) {}
func (NoopFetchHooks) OnFetchComplete(context.Context, string, int64, time.Duration, error) {
}

var (
	searchHooks SearchHooks = NoopSearchHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	fetchHooks  FetchHooks  = NoopFetchHooks{}
	hooksMu     sync.RWMutex
)

// SetSearchHooks registers custom search hooks. Nil is ignored.
func SetSearchHooks(h SearchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		searchHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetFetchHooks registers custom fetch hooks. Nil is ignored.
func SetFetchHooks(h FetchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		fetchHooks = h
	}
}

// Search returns the registered search hooks.
func Search() SearchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return searchHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Fetch returns the registered fetch hooks.
func Fetch() FetchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return fetchHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	searchHooks = NoopSearchHooks{}
	cacheHooks = NoopCacheHooks{}
	fetchHooks = NoopFetchHooks{}
}
