package cache

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sweepConfig(interval time.Duration) Config {
	return Config{
		DefaultTTL:      time.Minute,
		MaxSize:         100,
		CleanupInterval: interval,
	}
}

func TestStartStop_Idempotent(t *testing.T) {
	c := newTestCache(t, sweepConfig(10*time.Millisecond))

	c.Stop()
	assert.False(t, c.Running())

	c.Start()
	c.Start()
	assert.True(t, c.Running())

	c.Stop()
	c.Stop()
	assert.False(t, c.Running())
}

func TestStart_AfterStopRestartsSweeper(t *testing.T) {
	c := newTestCache(t, sweepConfig(5*time.Millisecond))

	c.Start()
	c.Stop()
	c.Start()

	c.SetWithTTL("a", 1, time.Millisecond)
	assert.Eventually(t, func() bool {
		return c.Len() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestSweeper_RemovesExpiredWithoutReads(t *testing.T) {
	rec := newCountingRecorder()
	c := newTestCache(t, sweepConfig(10*time.Millisecond), WithRecorder(rec))

	c.SetWithTTL("short", 1, 20*time.Millisecond)
	c.SetWithTTL("long", 2, time.Hour)
	c.Start()

	assert.Eventually(t, func() bool {
		return c.Len() == 1
	}, time.Second, 5*time.Millisecond)

	rec.mu.Lock()
	assert.Equal(t, 1, rec.expired[ExpiredSweep])
	rec.mu.Unlock()

	// The sweep does not count as traffic.
	stats := c.Stats()
	assert.Zero(t, stats.Hits)
	assert.Zero(t, stats.Misses)

	v, ok := c.Get("long")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestSweeper_DoesNotRunWhileStopped(t *testing.T) {
	c := newTestCache(t, sweepConfig(5*time.Millisecond))

	c.SetWithTTL("a", 1, time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, c.Len(), "no sweep before Start")

	c.Start()
	c.Stop()
	c.SetWithTTL("b", 1, time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	c.mu.Lock()
	_, ok := c.entries["b"]
	c.mu.Unlock()
	assert.True(t, ok, "no sweep after Stop")
}

func TestSweeper_SurvivesFailedSweep(t *testing.T) {
	rec := newCountingRecorder()
	rec.panicSweeps = 1

	var (
		mu     sync.Mutex
		errs   []error
		failed atomic.Int32
	)
	handler := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
		failed.Add(1)
	}

	c := newTestCache(t, sweepConfig(5*time.Millisecond), WithRecorder(rec), WithErrorHandler(handler))
	c.Start()

	assert.Eventually(t, func() bool {
		return failed.Load() == 1 && rec.sweepCount() >= 3
	}, time.Second, 5*time.Millisecond)
	assert.True(t, c.Running())

	mu.Lock()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "recorder unavailable")
	mu.Unlock()

	// Later sweeps still reclaim entries.
	c.SetWithTTL("a", 1, time.Millisecond)
	assert.Eventually(t, func() bool {
		return c.Len() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestStop_WaitsForSweeperExit(t *testing.T) {
	rec := newCountingRecorder()
	c := newTestCache(t, sweepConfig(time.Millisecond), WithRecorder(rec))

	c.Start()
	assert.Eventually(t, func() bool {
		return rec.sweepCount() > 0
	}, time.Second, time.Millisecond)

	c.Stop()
	after := rec.sweepCount()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, rec.sweepCount())
}

func TestStop_ConcurrentCallers(t *testing.T) {
	c := newTestCache(t, sweepConfig(time.Millisecond))
	c.Start()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Stop()
		}()
		go func() {
			defer wg.Done()
			c.Set("k", 1)
		}()
	}
	wg.Wait()

	assert.False(t, c.Running())
}
