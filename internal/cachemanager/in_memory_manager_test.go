package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type parsedFile struct {
	Path  string
	Count int
}

func TestInMemoryCacheManager_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCacheManager[string, *parsedFile]("templates", DefaultExpiration, DefaultCleanupInterval)

	_, ok := c.Get(ctx, "missing")
	require.False(t, ok)

	c.Set(ctx, "a.json", &parsedFile{Path: "a.json", Count: 2}, time.Minute)
	got, ok := c.Get(ctx, "a.json")
	require.True(t, ok)
	require.Equal(t, 2, got.Count)

	stats := c.Stats()
	require.Equal(t, uint64(1), stats.Hits)
	require.Equal(t, uint64(1), stats.Misses)
	require.Equal(t, 1, stats.Items)
}

func TestInMemoryCacheManager_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCacheManager[string, int]("templates", DefaultExpiration, DefaultCleanupInterval)

	c.Set(ctx, "k", 1, time.Millisecond)
	require.Eventually(t, func() bool {
		_, ok := c.Get(ctx, "k")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestInMemoryCacheManager_DeleteAndFlush(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCacheManager[string, int]("templates", DefaultExpiration, DefaultCleanupInterval)

	c.Set(ctx, "a", 1, time.Minute)
	c.Set(ctx, "b", 2, time.Minute)
	c.Set(ctx, "c", 3, time.Minute)

	require.NoError(t, c.Delete(ctx, "a"))
	_, ok := c.Get(ctx, "a")
	require.False(t, ok)

	require.NoError(t, c.Flush(ctx))
	require.Equal(t, 0, c.Stats().Items)
}
