// Package resume stores parsed resumes in Postgres and serves reads
// through the in-process TTL cache.
package resume

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned by a Repository when no row matches.
var ErrNotFound = errors.New("resume not found")

// Resume is one stored version of a user's parsed resume. An empty Version
// is the user's unversioned upload.
type Resume struct {
	ID        string          `json:"id"`
	UserID    int64           `json:"user_id"`
	Version   string          `json:"version"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Repository is the persistent store behind Service.
type Repository interface {
	// GetByUserID returns the resume stored under version. An empty version
	// returns the user's most recently updated resume.
	GetByUserID(ctx context.Context, userID int64, version string) (Resume, error)
	// Upsert inserts or replaces the resume for (userID, version).
	Upsert(ctx context.Context, userID int64, version string, data json.RawMessage) (Resume, error)
}
