package cache

import (
	"context"
	"time"
)

// Getter computes a value on a cache miss.
type Getter[V any] func(ctx context.Context) (V, error)

// Cached returns the value under key, computing and storing it with the
// default TTL on a miss. See CachedWithTTL.
func (c *TTLCache[V]) Cached(ctx context.Context, key string, getter Getter[V]) (V, error) {
	return c.CachedWithTTL(ctx, key, 0, getter)
}

// CachedWithTTL returns the value under key or, on a miss, calls getter,
// stores its result with ttl and returns it. A getter error is returned as
// is and nothing is stored.
//
// Concurrent misses on the same key each call getter; use a Loader when
// computation must be coalesced.
func (c *TTLCache[V]) CachedWithTTL(ctx context.Context, key string, ttl time.Duration, getter Getter[V]) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := getter(ctx)
	if err != nil {
		var zero V
		return zero, err
	}

	c.SetWithTTL(key, v, ttl)
	return v, nil
}
