package cache

import "time"

// Entry is a single cached value. It is never mutated after creation;
// overwriting a key replaces the entry.
type Entry[V any] struct {
	Value     V
	CreatedAt time.Time
	ExpiresAt time.Time

	// seq orders entries created at the same instant.
	seq uint64
}

func newEntry[V any](value V, now time.Time, ttl time.Duration, seq uint64) *Entry[V] {
	return &Entry[V]{
		Value:     value,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		seq:       seq,
	}
}

// IsExpired reports whether the entry is logically absent at now.
func (e *Entry[V]) IsExpired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// olderThan reports whether e should be evicted before other.
func (e *Entry[V]) olderThan(other *Entry[V]) bool {
	if !e.CreatedAt.Equal(other.CreatedAt) {
		return e.CreatedAt.Before(other.CreatedAt)
	}
	return e.seq < other.seq
}
