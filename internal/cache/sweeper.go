package cache

import (
	"context"
	"fmt"
	"time"
)

// Start launches the background sweeper. Calling Start on a running cache
// is a no-op.
func (c *TTLCache[V]) Start() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if c.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	go c.sweepLoop(ctx, done)

	c.logger.Info("Cache cleanup task started",
		"event_type", "cache_started",
		"cleanup_interval", c.cleanupInterval.String(),
	)
}

// Stop cancels the sweeper and waits for it to exit. Calling Stop on a
// stopped cache is a no-op.
func (c *TTLCache[V]) Stop() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if c.cancel == nil {
		return
	}

	c.cancel()
	<-c.done
	c.cancel = nil
	c.done = nil

	c.logger.Info("Cache cleanup task stopped", "event_type", "cache_stopped")
}

// Running reports whether the sweeper is active.
func (c *TTLCache[V]) Running() bool {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	return c.cancel != nil
}

func (c *TTLCache[V]) sweepLoop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A tick and a cancellation can be ready together.
			if ctx.Err() != nil {
				return
			}
			c.sweep()
		}
	}
}

// sweep runs one cleanup pass. Failures are logged and reported but never
// stop the loop.
func (c *TTLCache[V]) sweep() {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("cache sweep failed: %v", r)
			c.logger.Error("Cache cleanup error",
				"event_type", "cache_cleanup_error",
				"error", err,
			)
			if c.onError != nil {
				c.onError(err)
			}
		}
	}()

	start := time.Now()
	removed, remaining := c.removeExpired()
	c.recorder.RecordSweep(removed, time.Since(start))

	if removed > 0 {
		c.recorder.RecordExpiration(removed, ExpiredSweep)
		c.logger.Debug("Cleaned up expired cache entries",
			"event_type", "cache_cleanup",
			"removed_count", removed,
			"remaining_count", remaining,
		)
	}
}

func (c *TTLCache[V]) removeExpired() (removed, remaining int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.entries {
		if e.IsExpired(now) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed, len(c.entries)
}
