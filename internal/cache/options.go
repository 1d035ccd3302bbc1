package cache

import (
	"log/slog"
	"time"

	apperrors "github.com/resumeingestor/ingestor/internal/errors"
)

// Config holds the construction-time settings of a TTLCache.
type Config struct {
	DefaultTTL      time.Duration
	MaxSize         int
	CleanupInterval time.Duration
}

// DefaultConfig mirrors the service defaults: 5 minute TTL, 1000 entries, 1 minute sweep.
func DefaultConfig() Config {
	return Config{
		DefaultTTL:      5 * time.Minute,
		MaxSize:         1000,
		CleanupInterval: time.Minute,
	}
}

func (c Config) validate() error {
	if c.DefaultTTL <= 0 {
		return apperrors.NewConfigError("cache default TTL must be positive", "CACHE_INVALID_TTL", nil)
	}
	if c.MaxSize <= 0 {
		return apperrors.NewConfigError("cache max size must be positive", "CACHE_INVALID_MAX_SIZE", nil)
	}
	if c.CleanupInterval <= 0 {
		return apperrors.NewConfigError("cache cleanup interval must be positive", "CACHE_INVALID_CLEANUP_INTERVAL", nil)
	}
	return nil
}

type settings struct {
	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time
	onError  func(error)
}

// Option configures optional collaborators of a TTLCache.
type Option func(*settings)

// WithLogger sets the logger used for lifecycle and sweep events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder sets the instrumentation sink.
func WithRecorder(r Recorder) Option {
	return func(s *settings) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithErrorHandler registers a callback for background sweep failures.
// It is called after the failure has been logged.
func WithErrorHandler(fn func(error)) Option {
	return func(s *settings) {
		s.onError = fn
	}
}
