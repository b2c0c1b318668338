package cachemanager

import (
	"context"
	"sync"
	"time"
)

// ReadThroughCache memoizes fn for versioned sources such as template
// files. Each Get names the source and the key of its current version; the
// cache remembers the latest key per source so a newer version evicts the
// older one and Forget can drop a source without knowing its version.
// Errors are never cached.
type ReadThroughCache[K ~string, V any, I any] struct {
	cache CacheManager[K, V]
	fn    func(ctx context.Context, input I) (V, error)
	skip  bool

	mu     sync.Mutex
	latest map[string]K
}

// NewReadThroughCache wraps cache with the loader fn. With skip set every
// Get calls fn and nothing is stored.
func NewReadThroughCache[K ~string, V any, I any](
	cache CacheManager[K, V],
	fn func(ctx context.Context, input I) (V, error),
	skip bool,
) *ReadThroughCache[K, V, I] {
	return &ReadThroughCache[K, V, I]{
		cache:  cache,
		fn:     fn,
		skip:   skip,
		latest: make(map[string]K),
	}
}

// Get returns the value cached under key, loading it from input on a miss.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, source string, key K, input I, ttl time.Duration) (V, error) {
	if r.skip {
		return r.fn(ctx, input)
	}

	r.mu.Lock()
	prev, seen := r.latest[source]
	r.latest[source] = key
	r.mu.Unlock()
	if seen && prev != key {
		_ = r.cache.Delete(ctx, prev)
	}

	if value, ok := r.cache.Get(ctx, key); ok {
		return value, nil
	}
	value, err := r.fn(ctx, input)
	if err != nil {
		return value, err
	}
	r.cache.Set(ctx, key, value, ttl)
	return value, nil
}

// Forget drops whatever is cached for sources.
func (r *ReadThroughCache[K, V, I]) Forget(ctx context.Context, sources ...string) error {
	r.mu.Lock()
	keys := make([]K, 0, len(sources))
	for _, s := range sources {
		if k, ok := r.latest[s]; ok {
			keys = append(keys, k)
			delete(r.latest, s)
		}
	}
	r.mu.Unlock()

	if len(keys) == 0 {
		return nil
	}
	return r.cache.Delete(ctx, keys...)
}

// ForgetAll drops every source this cache has served.
func (r *ReadThroughCache[K, V, I]) ForgetAll(ctx context.Context) error {
	r.mu.Lock()
	keys := make([]K, 0, len(r.latest))
	for _, k := range r.latest {
		keys = append(keys, k)
	}
	clear(r.latest)
	r.mu.Unlock()

	if len(keys) == 0 {
		return nil
	}
	return r.cache.Delete(ctx, keys...)
}
