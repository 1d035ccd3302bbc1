package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader is a read-through helper that runs at most one getter per key at a
// time. Callers that miss while a load for the same key is in flight wait
// for and share its result.
type Loader[V any] struct {
	cache Cache[V]
	ttl   time.Duration
	group singleflight.Group
}

// NewLoader wraps c. A zero ttl uses the cache default.
func NewLoader[V any](c Cache[V], ttl time.Duration) *Loader[V] {
	return &Loader[V]{cache: c, ttl: ttl}
}

// Load returns the cached value or the result of a single shared getter call.
// The getter runs with the context of the caller that started the load.
func (l *Loader[V]) Load(ctx context.Context, key string, getter Getter[V]) (V, error) {
	if v, ok := l.cache.Get(key); ok {
		return v, nil
	}

	res, err, _ := l.group.Do(key, func() (any, error) {
		v, err := getter(ctx)
		if err != nil {
			return nil, err
		}
		l.cache.SetWithTTL(key, v, l.ttl)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	v, _ := res.(V)
	return v, nil
}
