package cache

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"strings"
	"sync"
	"time"
)

// Stats is a point-in-time view of cache counters.
type Stats struct {
	Hits     uint64  `json:"hits"`
	Misses   uint64  `json:"misses"`
	Size     int     `json:"size"`
	MaxSize  int     `json:"max_size"`
	HitRatio float64 `json:"hit_ratio"`
}

// TTLCache is a process-local key-value store with per-entry expiry,
// batch eviction at capacity and an optional background sweeper.
//
// Every read and write of the entry map and the hit/miss counters happens
// under mu. The sweeper lifecycle has its own lock so Stop can wait for the
// sweeper goroutine without blocking cache traffic.
type TTLCache[V any] struct {
	mu      sync.Mutex
	entries map[string]*Entry[V]
	hits    uint64
	misses  uint64
	seq     uint64

	defaultTTL      time.Duration
	maxSize         int
	cleanupInterval time.Duration

	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time
	onError  func(error)

	lifecycle sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
}

// New creates a stopped cache. Call Start to enable the background sweep;
// Get/Set/Delete work regardless.
func New[V any](cfg Config, opts ...Option) (*TTLCache[V], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	s := settings{
		logger:   slog.Default(),
		recorder: nopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}

	return &TTLCache[V]{
		entries:         make(map[string]*Entry[V]),
		defaultTTL:      cfg.DefaultTTL,
		maxSize:         cfg.MaxSize,
		cleanupInterval: cfg.CleanupInterval,
		logger:          s.logger,
		recorder:        s.recorder,
		now:             s.now,
		onError:         s.onError,
	}, nil
}

// Get returns the value stored under key. Expired entries are removed on
// access and reported as misses. A hit does not extend the entry's lifetime.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	var zero V

	c.mu.Lock()
	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		c.mu.Unlock()
		c.recorder.RecordLookup(false)
		return zero, false
	}

	if entry.IsExpired(c.now()) {
		delete(c.entries, key)
		c.misses++
		c.mu.Unlock()
		c.recorder.RecordExpiration(1, ExpiredLazy)
		c.recorder.RecordLookup(false)
		return zero, false
	}

	c.hits++
	c.mu.Unlock()
	c.recorder.RecordLookup(true)
	return entry.Value, true
}

// Set stores value under key with the default TTL.
func (c *TTLCache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, 0)
}

// SetWithTTL stores value under key. A zero ttl selects the default TTL and
// a negative ttl stores an entry that is already expired.
//
// When the cache is at capacity the oldest tenth of the entries (at least
// one) is evicted first. Overwriting a key gives it a fresh creation time.
func (c *TTLCache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	evicted := 0
	if len(c.entries) >= c.maxSize {
		evicted = c.evictOldestLocked()
	}
	c.seq++
	c.entries[key] = newEntry(value, c.now(), ttl, c.seq)
	c.mu.Unlock()

	if evicted > 0 {
		c.recorder.RecordEviction(evicted)
		c.logger.Debug("Evicted oldest cache entries",
			"event_type", "cache_eviction",
			"evicted_count", evicted,
		)
	}
}

// evictOldestLocked removes max(1, len/10) entries ordered by creation time,
// then insertion sequence. The caller must hold c.mu.
func (c *TTLCache[V]) evictOldestLocked() int {
	if len(c.entries) == 0 {
		return 0
	}

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		ea, eb := c.entries[a], c.entries[b]
		switch {
		case ea.olderThan(eb):
			return -1
		case eb.olderThan(ea):
			return 1
		default:
			return strings.Compare(a, b)
		}
	})

	count := max(1, len(keys)/10)
	for _, k := range keys[:count] {
		delete(c.entries, k)
	}
	return count
}

// Delete removes key and reports whether it was present.
func (c *TTLCache[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	return true
}

// InvalidatePattern removes every key starting with prefix and returns how
// many were removed.
func (c *TTLCache[V]) InvalidatePattern(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Clear drops all entries. Hit and miss counters are kept.
func (c *TTLCache[V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*Entry[V])
	c.mu.Unlock()

	c.logger.Info("Cache cleared", "event_type", "cache_cleared")
}

// Len returns the number of stored entries, including expired ones that
// have not been reclaimed yet.
func (c *TTLCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the current counters.
func (c *TTLCache[V]) Stats() Stats {
	c.mu.Lock()
	hits, misses, size := c.hits, c.misses, len(c.entries)
	c.mu.Unlock()

	var ratio float64
	if total := hits + misses; total > 0 {
		ratio = math.Round(float64(hits)/float64(total)*10000) / 10000
	}

	return Stats{
		Hits:     hits,
		Misses:   misses,
		Size:     size,
		MaxSize:  c.maxSize,
		HitRatio: ratio,
	}
}
