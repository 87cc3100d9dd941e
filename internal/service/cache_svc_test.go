package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheService_DisabledIsNoop(t *testing.T) {
	c := NewCacheService("", 0, zerolog.Nop())
	ctx := context.Background()

	assert.Nil(t, c.Client())
	assert.Equal(t, DefaultScoreCacheTTL, c.TTL())
	require.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}))

	data, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, c.Invalidate(ctx, "k"))
	require.NoError(t, c.Close())
}

func TestCacheService_InvalidURLDisablesCache(t *testing.T) {
	c := NewCacheService("not a url", time.Minute, zerolog.Nop())
	assert.Nil(t, c.Client())
}

func TestGetOrCompute_DisabledCacheAlwaysComputes(t *testing.T) {
	c := NewCacheServiceWithClient(nil, time.Minute, zerolog.Nop())
	var calls int32

	for i := 0; i < 3; i++ {
		got, err := GetOrCompute(context.Background(), c, "scores:test", func(context.Context) ([]int, error) {
			atomic.AddInt32(&calls, 1)
			return []int{1, 2, 3}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, got)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetOrCompute_PropagatesComputeError(t *testing.T) {
	c := NewCacheServiceWithClient(nil, time.Minute, zerolog.Nop())
	boom := errors.New("db down")

	got, err := GetOrCompute(context.Background(), c, "scores:err", func(context.Context) ([]int, error) {
		return nil, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Nil(t, got)
}

func TestGetOrCompute_CollapsesConcurrentMisses(t *testing.T) {
	c := NewCacheServiceWithClient(nil, time.Minute, zerolog.Nop())
	var calls int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := GetOrCompute(context.Background(), c, "scores:shared", func(context.Context) (string, error) {
				atomic.AddInt32(&calls, 1)
				<-release
				return "done", nil
			})
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	// Let every goroutine reach the in-flight call before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(5))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
	for _, r := range results {
		assert.Equal(t, "done", r)
	}
}

func TestScoreCacheKey(t *testing.T) {
	a := ScoreCacheKey("emulators", "game-1", "")
	b := ScoreCacheKey("emulators", "game-1", "")
	c := ScoreCacheKey("emulators", "", "game-1")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "scores:emulators:"))
}
