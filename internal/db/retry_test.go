package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	return cfg
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"connection refused", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), true},
		{"admin shutdown class", &pgconn.PgError{Code: "08006"}, true},
		{"starting up", fmt.Errorf("ping: %w", &pgconn.PgError{Code: "57P03"}), true},
		{"syntax error", &pgconn.PgError{Code: "42601"}, false},
		{"plain", errors.New("permission denied for table resumes"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsTransient(tt.err))
		})
	}
}

func TestWithRetry_RecoversFromTransientErrors(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), fastRetry(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_StopsOnPermanentError(t *testing.T) {
	attempts := 0
	permanent := &pgconn.PgError{Code: "42P07", Message: "relation already exists"}
	err := WithRetry(context.Background(), fastRetry(), func(ctx context.Context) error {
		attempts++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func TestWithRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	cfg := fastRetry()
	cfg.MaxAttempts = 3

	attempts := 0
	err := WithRetry(context.Background(), cfg, func(ctx context.Context) error {
		attempts++
		return errors.New("connection reset by peer")
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	cfg := fastRetry()
	cfg.InitialDelay = time.Second
	cfg.MaxDelay = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := WithRetry(ctx, cfg, func(ctx context.Context) error {
		return errors.New("connection refused")
	})

	assert.ErrorIs(t, err, context.Canceled)
}
