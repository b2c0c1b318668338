// Package cachemanager provides the generic caches used to memoize parsed
// template files between catalog opens.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a keyed cache with per-entry TTL.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits   uint64
	Misses uint64
	Items  int
}
