package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCacheManager struct {
	mock.Mock
}

func (m *mockCacheManager) Get(ctx context.Context, key string) (int, bool) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Bool(1)
}

func (m *mockCacheManager) Set(ctx context.Context, key string, value int, ttl time.Duration) {
	m.Called(ctx, key, value, ttl)
}

func (m *mockCacheManager) Delete(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *mockCacheManager) Flush(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func loaderReturning(v int, err error) func(context.Context, string) (int, error) {
	return func(context.Context, string) (int, error) { return v, err }
}

func TestReadThroughCache_SkipCallsLoader(t *testing.T) {
	cache := &mockCacheManager{}
	calls := 0
	r := NewReadThroughCache[string, int, string](cache, func(context.Context, string) (int, error) {
		calls++
		return 5, nil
	}, true)

	v, err := r.Get(context.Background(), "a.json", "a.json|1", "in", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 5, v)
	require.Equal(t, 1, calls)
	cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	require.NoError(t, r.ForgetAll(context.Background()))
}

func TestReadThroughCache_HitSkipsLoader(t *testing.T) {
	cache := &mockCacheManager{}
	cache.On("Get", mock.Anything, "a.json|1").Return(9, true).Once()

	r := NewReadThroughCache[string, int, string](cache, func(context.Context, string) (int, error) {
		t.Fatal("loader must not run on a hit")
		return 0, nil
	}, false)

	v, err := r.Get(context.Background(), "a.json", "a.json|1", "in", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 9, v)
	cache.AssertExpectations(t)
}

func TestReadThroughCache_MissStoresValue(t *testing.T) {
	cache := &mockCacheManager{}
	cache.On("Get", mock.Anything, "a.json|1").Return(0, false).Once()
	cache.On("Set", mock.Anything, "a.json|1", 3, time.Minute).Once()

	r := NewReadThroughCache[string, int, string](cache, loaderReturning(3, nil), false)

	v, err := r.Get(context.Background(), "a.json", "a.json|1", "in", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 3, v)
	cache.AssertExpectations(t)
}

func TestReadThroughCache_ErrorsAreNotCached(t *testing.T) {
	cache := &mockCacheManager{}
	cache.On("Get", mock.Anything, "a.json|1").Return(0, false).Once()

	boom := errors.New("parse failed")
	r := NewReadThroughCache[string, int, string](cache, loaderReturning(0, boom), false)

	_, err := r.Get(context.Background(), "a.json", "a.json|1", "in", time.Minute)
	require.ErrorIs(t, err, boom)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReadThroughCache_NewVersionEvictsOld(t *testing.T) {
	cache := &mockCacheManager{}
	cache.On("Get", mock.Anything, mock.Anything).Return(0, false)
	cache.On("Set", mock.Anything, mock.Anything, 1, time.Minute)
	cache.On("Delete", mock.Anything, []string{"a.json|1"}).Return(nil).Once()

	r := NewReadThroughCache[string, int, string](cache, loaderReturning(1, nil), false)
	ctx := context.Background()

	_, err := r.Get(ctx, "a.json", "a.json|1", "in", time.Minute)
	require.NoError(t, err)
	_, err = r.Get(ctx, "a.json", "a.json|1", "in", time.Minute)
	require.NoError(t, err)
	cache.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

	_, err = r.Get(ctx, "a.json", "a.json|2", "in", time.Minute)
	require.NoError(t, err)
	cache.AssertExpectations(t)
}

func TestReadThroughCache_Forget(t *testing.T) {
	cache := &mockCacheManager{}
	cache.On("Get", mock.Anything, mock.Anything).Return(7, true)
	cache.On("Delete", mock.Anything, []string{"a.json|1"}).Return(nil).Once()
	cache.On("Delete", mock.Anything, []string{"b.json|4"}).Return(nil).Once()

	r := NewReadThroughCache[string, int, string](cache, loaderReturning(0, nil), false)
	ctx := context.Background()
	_, _ = r.Get(ctx, "a.json", "a.json|1", "in", time.Minute)
	_, _ = r.Get(ctx, "b.json", "b.json|4", "in", time.Minute)

	require.NoError(t, r.Forget(ctx, "a.json", "missing.json"))
	require.NoError(t, r.Forget(ctx, "a.json"), "forgetting twice is a no-op")
	require.NoError(t, r.ForgetAll(ctx))
	require.NoError(t, r.ForgetAll(ctx))
	cache.AssertExpectations(t)
}
