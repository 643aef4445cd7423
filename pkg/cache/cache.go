// Package cache stores pipeline results keyed by content hashes.
//
// The pipeline caches two things: graph documents built from a JSON input
// (keyed by the input hash and layout options) and rendered artifacts such
// as DOT, SVG or text trees (keyed by the graph hash and format).
//
// Backends:
//   - [NullCache]: caching disabled
//   - [FileCache]: one file per entry under the XDG cache directory (CLI)
//   - [RedisCache]: shared cache for the HTTP server
//
// Keys come from a [Keyer]; wrap one in [NewScopedKeyer] to namespace keys.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/jsonflow/pkg/observability"
)

// Cache is a byte-oriented key/value cache with per-entry expiry.
type Cache interface {
	// Get returns the cached data and whether it was found. A miss is not
	// an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A non-positive ttl stores without expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Lookup is Get with a miss reported as ErrCacheMiss.
func Lookup(ctx context.Context, c Cache, key string) ([]byte, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCacheMiss
	}
	return data, nil
}

// GetOrCompute returns the cached entry for key or computes, stores and
// returns it. keyType labels the lookup in observability hooks. A failing
// cache read falls back to computing; a failing write is retried with
// backoff when the error is retryable and otherwise ignored.
func GetOrCompute(ctx context.Context, c Cache, keyType, key string, ttl time.Duration, compute func() ([]byte, error)) ([]byte, bool, error) {
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, keyType)
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, keyType)

	data, err := compute()
	if err != nil {
		return nil, false, err
	}
	if err := RetryWithBackoff(ctx, func() error { return c.Set(ctx, key, data, ttl) }); err == nil {
		observability.Cache().OnCacheSet(ctx, keyType, len(data))
	}
	return data, false, nil
}
