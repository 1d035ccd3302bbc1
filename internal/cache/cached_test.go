package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCached_HitSkipsGetter(t *testing.T) {
	c := newTestCache(t, testConfig())
	c.Set("k", 7)

	v, err := c.Cached(context.Background(), "k", func(ctx context.Context) (int, error) {
		t.Fatal("getter must not run on a hit")
		return 0, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestCached_MissComputesAndStores(t *testing.T) {
	c := newTestCache(t, testConfig())

	calls := 0
	getter := func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	}

	v, err := c.Cached(context.Background(), "k", getter)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = c.Cached(context.Background(), "k", getter)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)
}

func TestCachedWithTTL_UsesGivenTTL(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, testConfig(), WithClock(clock.Now))

	_, err := c.CachedWithTTL(context.Background(), "k", time.Second, func(ctx context.Context) (int, error) {
		return 1, nil
	})
	require.NoError(t, err)

	clock.Advance(2 * time.Second)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCached_GetterErrorIsNotStored(t *testing.T) {
	c := newTestCache(t, testConfig())
	boom := errors.New("database unavailable")

	_, err := c.Cached(context.Background(), "k", func(ctx context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}

func TestCached_PassesContextToGetter(t *testing.T) {
	c := newTestCache(t, testConfig())
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")

	_, err := c.Cached(ctx, "k", func(ctx context.Context) (int, error) {
		assert.Equal(t, "req-1", ctx.Value(ctxKey{}))
		return 1, nil
	})
	require.NoError(t, err)
}

func TestCached_GetterRunsWithoutLock(t *testing.T) {
	c := newTestCache(t, testConfig())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Cached(context.Background(), "outer", func(ctx context.Context) (int, error) {
			// Would deadlock if the cache lock were held here.
			c.Set("inner", 1)
			_, _ = c.Get("inner")
			return 2, nil
		})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("getter blocked on the cache lock")
	}
}

func TestCached_ConcurrentMissesEachCallGetter(t *testing.T) {
	c := newTestCache(t, testConfig())

	var calls atomic.Int32
	var inGetter sync.WaitGroup
	inGetter.Add(2)
	getter := func(ctx context.Context) (int, error) {
		calls.Add(1)
		inGetter.Done()
		inGetter.Wait()
		return 9, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Cached(context.Background(), "k", getter)
			assert.NoError(t, err)
			assert.Equal(t, 9, v)
		}()
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("concurrent misses were coalesced")
	}
	assert.Equal(t, int32(2), calls.Load())
}
