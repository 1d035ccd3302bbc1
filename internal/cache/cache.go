package cache

import (
	"time"
)

// Cache defines the interface for caching operations.
type Cache[V any] interface {
	// Get retrieves a value from the cache by key.
	// The second result is false if the key is not found or has expired.
	Get(key string) (V, bool)

	// SetWithTTL stores a value in the cache with the given key and TTL.
	// A zero TTL selects the cache's default.
	SetWithTTL(key string, value V, ttl time.Duration)

	// Delete removes a value from the cache by key and reports whether it was present.
	Delete(key string) bool
}

// Recorder receives cache events for instrumentation.
type Recorder interface {
	RecordLookup(hit bool)
	RecordEviction(count int)
	RecordExpiration(count int, reason string)
	RecordSweep(removed int, duration time.Duration)
}

// Expiration reasons passed to Recorder.RecordExpiration.
const (
	ExpiredLazy  = "lazy"
	ExpiredSweep = "sweep"
)

type nopRecorder struct{}

func (nopRecorder) RecordLookup(bool)              {}
func (nopRecorder) RecordEviction(int)             {}
func (nopRecorder) RecordExpiration(int, string)   {}
func (nopRecorder) RecordSweep(int, time.Duration) {}
