package resume

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/resumeingestor/ingestor/internal/cache"
	apperrors "github.com/resumeingestor/ingestor/internal/errors"
	"github.com/resumeingestor/ingestor/internal/metrics"
	"github.com/resumeingestor/ingestor/internal/telemetry"
)

const keyPrefix = "resume"

// Service reads resumes through a TTLCache and keeps it coherent on writes.
type Service struct {
	repo   Repository
	cache  *cache.TTLCache[Resume]
	loader *cache.Loader[Resume]
	logger *slog.Logger
}

// NewService builds a Service. With singleFlight set, concurrent misses on
// the same resume share one repository read.
func NewService(repo Repository, c *cache.TTLCache[Resume], singleFlight bool, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{repo: repo, cache: c, logger: logger}
	if singleFlight {
		s.loader = cache.NewLoader[Resume](c, 0)
	}
	return s
}

// Key is the cache key for a user's resume version.
func Key(userID int64, version string) string {
	return cache.PrefixedKey(keyPrefix, userID, version)
}

// Get returns the resume for (userID, version). An empty version returns
// the latest one.
func (s *Service) Get(ctx context.Context, userID int64, version string) (Resume, error) {
	ctx, span := telemetry.Tracer("resume").Start(ctx, "resume.get")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("resume.user_id", userID),
		attribute.String("resume.version", version),
	)

	start := time.Now()
	getter := func(ctx context.Context) (Resume, error) {
		return s.load(ctx, userID, version)
	}

	var (
		res Resume
		err error
	)
	key := Key(userID, version)
	if s.loader != nil {
		res, err = s.loader.Load(ctx, key, getter)
	} else {
		res, err = s.cache.Cached(ctx, key, getter)
	}

	metrics.RecordResumeLookup(ctx, lookupStatus(err), time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Resume{}, err
	}
	return res, nil
}

func (s *Service) load(ctx context.Context, userID int64, version string) (Resume, error) {
	res, err := s.repo.GetByUserID(ctx, userID, version)
	switch {
	case errors.Is(err, ErrNotFound):
		return Resume{}, apperrors.NewNotFoundError("Resume not found", "RESUME_NOT_FOUND", "Upload a resume for this user first.")
	case err != nil:
		s.logger.ErrorContext(ctx, "Failed to load resume", "user_id", userID, "version", version, "error", err)
		return Resume{}, apperrors.NewDatabaseError("Failed to load resume", "RESUME_LOAD_FAILED", err)
	}
	return res, nil
}

// Save upserts the resume and drops the cached copies that could now be
// stale: the written version and the user's latest.
func (s *Service) Save(ctx context.Context, userID int64, version string, data json.RawMessage) (Resume, error) {
	ctx, span := telemetry.Tracer("resume").Start(ctx, "resume.save")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("resume.user_id", userID),
		attribute.String("resume.version", version),
	)

	if len(data) == 0 || !json.Valid(data) {
		metrics.RecordResumeWrite(ctx, "invalid")
		return Resume{}, apperrors.NewValidationError("Resume data must be valid JSON", "RESUME_INVALID_DATA", "Send the parsed resume as a JSON object.")
	}

	res, err := s.repo.Upsert(ctx, userID, version, data)
	if err != nil {
		metrics.RecordResumeWrite(ctx, "error")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.ErrorContext(ctx, "Failed to save resume", "user_id", userID, "version", version, "error", err)
		return Resume{}, apperrors.NewDatabaseError("Failed to save resume", "RESUME_SAVE_FAILED", err)
	}

	s.cache.Delete(Key(userID, version))
	if version != "" {
		s.cache.Delete(Key(userID, ""))
	}

	metrics.RecordResumeWrite(ctx, "ok")
	s.logger.InfoContext(ctx, "Resume saved", "user_id", userID, "version", version, "resume_id", res.ID)
	return res, nil
}

func lookupStatus(err error) string {
	if err == nil {
		return "ok"
	}
	if appErr, ok := apperrors.AsAppError(err); ok && appErr.Type == apperrors.ErrorTypeNotFound {
		return "not_found"
	}
	return "error"
}
