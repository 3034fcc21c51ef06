// Package cache provides pluggable storage for cached CMR search responses.
//
// All backends implement [Cache], a byte-oriented key/value store with a
// per-entry TTL:
//
//   - [FileCache]: JSON entry files under a directory (CLI default)
//   - [MemoryCache]: size-bounded in-process LRU with expiry
//   - [RedisCache]: shared Redis instance, for the proxy server
//   - [NullCache]: never stores anything (--no-cache)
//
// Keys are produced by a [Keyer] so that different CMR environments never
// share entries.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads under string keys.
//
// Get reports a miss as (nil, false, nil); an error is reserved for backend
// failures. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// NullCache is a no-op cache that never stores anything.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache { return NullCache{} }

// Get always returns a cache miss.
func (NullCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete does nothing.
func (NullCache) Delete(context.Context, string) error { return nil }

// Close does nothing.
func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
