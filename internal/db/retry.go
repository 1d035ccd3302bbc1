package db

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RetryConfig controls how startup database work is retried while the
// database is still coming up.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	Timeout       time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   5,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		Timeout:       10 * time.Second,
	}
}

// IsTransient reports whether err looks like the database being unreachable
// rather than a query or schema problem.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 08: connection exception, 57P03: cannot_connect_now
		return strings.HasPrefix(pgErr.Code, "08") || pgErr.Code == "57P03"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") || strings.Contains(msg, "connection reset")
}

// WithRetry runs op until it succeeds, fails with a non-transient error or
// runs out of attempts. Delays grow by BackoffFactor up to MaxDelay with up
// to 10% jitter.
func WithRetry(ctx context.Context, cfg RetryConfig, op func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		err := op(attemptCtx)
		cancel()

		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == cfg.MaxAttempts || !IsTransient(err) {
			break
		}

		delay := time.Duration(float64(cfg.InitialDelay) * math.Pow(cfg.BackoffFactor, float64(attempt-1)))
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
		if jitter := int64(delay) / 10; jitter > 0 {
			delay += time.Duration(rand.Int63n(jitter))
		}

		slog.WarnContext(ctx, "Database not ready, retrying",
			"attempt", attempt,
			"delay_ms", delay.Milliseconds(),
			"error", err,
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}

// Prepare waits for the database to accept connections and applies Schema.
func Prepare(ctx context.Context, pool *pgxpool.Pool, cfg RetryConfig) error {
	return WithRetry(ctx, cfg, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return err
		}
		return Migrate(ctx, pool)
	})
}
