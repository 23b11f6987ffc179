package cache_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vidsage/internal/cache"
	"vidsage/internal/config"
	"vidsage/internal/domain"
	"vidsage/internal/index"
)

func newStore(capacity, ttlSeconds int) *cache.Store {
	return cache.NewStore(&config.CacheConfig{
		Capacity:   capacity,
		TTLSeconds: ttlSeconds,
	}, nil)
}

func testEntry(videoID string) *cache.Entry {
	ix, err := index.Build(
		[]domain.Chunk{{ID: 0, Text: "chunk"}},
		[][]float64{{1, 0}},
	)
	if err != nil {
		panic(err)
	}
	return cache.NewEntry(videoID, &domain.Transcript{VideoID: videoID}, ix)
}

func TestStore_GetOrBuild(t *testing.T) {
	t.Run("should build on first call and reuse afterwards", func(t *testing.T) {
		store := newStore(8, 3600)
		calls := 0

		first, err := store.GetOrBuild(context.Background(), "vid-1", func(context.Context) (*cache.Entry, error) {
			calls++
			return testEntry("vid-1"), nil
		})
		require.NoError(t, err)

		second, err := store.GetOrBuild(context.Background(), "vid-1", func(context.Context) (*cache.Entry, error) {
			calls++
			return testEntry("vid-1"), nil
		})
		require.NoError(t, err)

		require.Equal(t, 1, calls)
		require.Same(t, first, second)
	})

	t.Run("should run builder exactly once for concurrent callers", func(t *testing.T) {
		store := newStore(8, 3600)

		var calls atomic.Int64
		release := make(chan struct{})
		build := func(context.Context) (*cache.Entry, error) {
			calls.Add(1)
			<-release
			return testEntry("vid-1"), nil
		}

		const workers = 16
		results := make([]*cache.Entry, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				entry, err := store.GetOrBuild(context.Background(), "vid-1", build)
				require.NoError(t, err)
				results[i] = entry
			}()
		}

		// Give every goroutine a chance to join the flight, then release it.
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		require.Equal(t, int64(1), calls.Load())
		for _, entry := range results {
			require.Same(t, results[0], entry)
		}
	})

	t.Run("should not memoize failures", func(t *testing.T) {
		store := newStore(8, 3600)
		calls := 0

		_, err := store.GetOrBuild(context.Background(), "vid-1", func(context.Context) (*cache.Entry, error) {
			calls++
			return nil, errors.New("fetch failed")
		})
		require.Error(t, err)

		entry, err := store.GetOrBuild(context.Background(), "vid-1", func(context.Context) (*cache.Entry, error) {
			calls++
			return testEntry("vid-1"), nil
		})
		require.NoError(t, err)
		require.NotNil(t, entry)
		require.Equal(t, 2, calls)
	})

	t.Run("should share a single failure across concurrent callers", func(t *testing.T) {
		store := newStore(8, 3600)

		var calls atomic.Int64
		release := make(chan struct{})
		buildErr := errors.New("provider down")
		build := func(context.Context) (*cache.Entry, error) {
			calls.Add(1)
			<-release
			return nil, buildErr
		}

		const workers = 8
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.GetOrBuild(context.Background(), "vid-1", build)
				require.ErrorIs(t, err, buildErr)
			}()
		}

		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		require.Equal(t, int64(1), calls.Load())
		require.Equal(t, 0, store.Len())
	})
}

func TestStore_Eviction(t *testing.T) {
	t.Run("should evict least recently used entries over capacity", func(t *testing.T) {
		store := newStore(2, 3600)

		for i := 0; i < 3; i++ {
			videoID := fmt.Sprintf("vid-%d", i)
			_, err := store.GetOrBuild(context.Background(), videoID, func(context.Context) (*cache.Entry, error) {
				return testEntry(videoID), nil
			})
			require.NoError(t, err)
			// Distinct access times so LRU order is well-defined.
			time.Sleep(2 * time.Millisecond)
		}

		require.Equal(t, 2, store.Len())
		require.Nil(t, store.Get("vid-0"))
		require.NotNil(t, store.Get("vid-1"))
		require.NotNil(t, store.Get("vid-2"))
	})

	t.Run("should expire entries past their ttl", func(t *testing.T) {
		store := newStore(8, 1)

		_, err := store.GetOrBuild(context.Background(), "vid-1", func(context.Context) (*cache.Entry, error) {
			return testEntry("vid-1"), nil
		})
		require.NoError(t, err)

		time.Sleep(1100 * time.Millisecond)
		require.Nil(t, store.Get("vid-1"))
	})
}

func TestStore_Summaries(t *testing.T) {
	t.Run("should store and return summaries per language", func(t *testing.T) {
		store := newStore(8, 3600)
		ctx := context.Background()

		_, err := store.GetOrBuild(ctx, "vid-1", func(context.Context) (*cache.Entry, error) {
			return testEntry("vid-1"), nil
		})
		require.NoError(t, err)

		_, ok := store.Summary("vid-1", "English")
		require.False(t, ok)

		store.PutSummary(ctx, "vid-1", "English", "five key points")
		store.PutSummary(ctx, "vid-1", "Hindi", "पाँच मुख्य बिंदु")

		english, ok := store.Summary("vid-1", "English")
		require.True(t, ok)
		require.Equal(t, "five key points", english)

		hindi, ok := store.Summary("vid-1", "Hindi")
		require.True(t, ok)
		require.Equal(t, "पाँच मुख्य बिंदु", hindi)
	})

	t.Run("should ignore summaries for unknown videos", func(t *testing.T) {
		store := newStore(8, 3600)

		store.PutSummary(context.Background(), "missing", "English", "text")
		_, ok := store.Summary("missing", "English")
		require.False(t, ok)
	})
}

func TestStore_Reset(t *testing.T) {
	store := newStore(8, 3600)
	ctx := context.Background()

	_, err := store.GetOrBuild(ctx, "vid-1", func(context.Context) (*cache.Entry, error) {
		return testEntry("vid-1"), nil
	})
	require.NoError(t, err)
	require.NotNil(t, store.Get("vid-1"))

	store.Reset(ctx, "vid-1")
	require.Nil(t, store.Get("vid-1"))

	// A rebuild after reset runs the builder again.
	calls := 0
	_, err = store.GetOrBuild(ctx, "vid-1", func(context.Context) (*cache.Entry, error) {
		calls++
		return testEntry("vid-1"), nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}
