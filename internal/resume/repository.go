package resume

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DBTX is the subset of pgxpool.Pool the repository needs.
type DBTX interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const getByUserID = `
SELECT id, user_id, version, data, created_at, updated_at
FROM resumes
WHERE user_id = $1 AND ($2 = '' OR version = $2)
ORDER BY updated_at DESC
LIMIT 1`

const upsert = `
INSERT INTO resumes (id, user_id, version, data)
VALUES ($1, $2, $3, $4::jsonb)
ON CONFLICT (user_id, version) DO UPDATE
SET data = EXCLUDED.data, updated_at = now()
RETURNING id, user_id, version, data, created_at, updated_at`

// PgRepository is a Repository backed by the resumes table.
type PgRepository struct {
	db DBTX
}

func NewPgRepository(db DBTX) *PgRepository {
	return &PgRepository{db: db}
}

func (r *PgRepository) GetByUserID(ctx context.Context, userID int64, version string) (Resume, error) {
	res, err := scanResume(r.db.QueryRow(ctx, getByUserID, userID, version))
	if errors.Is(err, pgx.ErrNoRows) {
		return Resume{}, ErrNotFound
	}
	return res, err
}

func (r *PgRepository) Upsert(ctx context.Context, userID int64, version string, data json.RawMessage) (Resume, error) {
	// The id is only used on insert, conflicts keep the existing one.
	return scanResume(r.db.QueryRow(ctx, upsert, uuid.New().String(), userID, version, string(data)))
}

func scanResume(row pgx.Row) (Resume, error) {
	var (
		res  Resume
		data []byte
	)
	if err := row.Scan(&res.ID, &res.UserID, &res.Version, &data, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return Resume{}, err
	}
	res.Data = json.RawMessage(data)
	return res, nil
}
