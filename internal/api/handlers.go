package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/resumeingestor/ingestor/internal/cache"
	"github.com/resumeingestor/ingestor/internal/config"
	apperrors "github.com/resumeingestor/ingestor/internal/errors"
	"github.com/resumeingestor/ingestor/internal/middleware"
	"github.com/resumeingestor/ingestor/internal/resume"
)

// ResumeService is the resume read/write path used by the handlers.
type ResumeService interface {
	Get(ctx context.Context, userID int64, version string) (resume.Resume, error)
	Save(ctx context.Context, userID int64, version string, data json.RawMessage) (resume.Resume, error)
}

// CacheAdmin is the cache surface exposed to operators.
type CacheAdmin interface {
	Stats() cache.Stats
	Delete(key string) bool
	InvalidatePattern(prefix string) int
	Clear()
}

type Server struct {
	cfg     *config.Config
	resumes ResumeService
	cache   CacheAdmin
}

func NewServer(cfg *config.Config, resumes ResumeService, c CacheAdmin) *Server {
	return &Server{
		cfg:     cfg,
		resumes: resumes,
		cache:   c,
	}
}

type SaveResumeRequest struct {
	Version string          `json:"version"`
	Data    json.RawMessage `json:"data"`
}

type InvalidateRequest struct {
	Prefix string `json:"prefix"`
}

type InvalidateResponse struct {
	Removed int `json:"removed"`
}

type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) HandleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Stats())
}

func (s *Server) HandleGetResume(w http.ResponseWriter, r *http.Request) {
	userID, err := s.authorizedUserID(r)
	if err != nil {
		apperrors.WriteJSON(w, err)
		return
	}

	res, err := s.resumes.Get(r.Context(), userID, r.URL.Query().Get("version"))
	if err != nil {
		apperrors.WriteJSON(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) HandleSaveResume(w http.ResponseWriter, r *http.Request) {
	userID, err := s.authorizedUserID(r)
	if err != nil {
		apperrors.WriteJSON(w, err)
		return
	}

	var req SaveResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteJSON(w, apperrors.NewValidationError("Invalid request body", "INVALID_BODY", "Send {\"version\": ..., \"data\": {...}}."))
		return
	}

	res, err := s.resumes.Save(r.Context(), userID, req.Version, req.Data)
	if err != nil {
		apperrors.WriteJSON(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) HandleInvalidateCache(w http.ResponseWriter, r *http.Request) {
	var req InvalidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteJSON(w, apperrors.NewValidationError("Invalid request body", "INVALID_BODY", "Send {\"prefix\": \"...\"}."))
		return
	}
	if req.Prefix == "" {
		apperrors.WriteJSON(w, apperrors.NewValidationError("prefix is required", "CACHE_PREFIX_REQUIRED", "Use DELETE /admin/cache to drop every entry."))
		return
	}

	writeJSON(w, http.StatusOK, InvalidateResponse{Removed: s.cache.InvalidatePattern(req.Prefix)})
}

func (s *Server) HandleDeleteCacheKey(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	writeJSON(w, http.StatusOK, DeleteResponse{Deleted: s.cache.Delete(key)})
}

// HandleEvictResume drops the cached copy of one resume version.
func (s *Server) HandleEvictResume(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		apperrors.WriteJSON(w, err)
		return
	}
	deleted := s.cache.Delete(resume.Key(userID, r.URL.Query().Get("version")))
	writeJSON(w, http.StatusOK, DeleteResponse{Deleted: deleted})
}

func (s *Server) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	s.cache.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// authorizedUserID returns the {userID} path parameter once the caller is
// known to be that user or an admin.
func (s *Server) authorizedUserID(r *http.Request) (int64, error) {
	subject, ok := middleware.GetUserID(r.Context())
	if !ok {
		return 0, apperrors.NewUnauthorizedError("Unauthorized", "AUTH_REQUIRED")
	}

	userID, err := parseUserID(r)
	if err != nil {
		return 0, err
	}

	if subject != strconv.FormatInt(userID, 10) && middleware.GetRole(r.Context()) != middleware.RoleAdmin {
		return 0, apperrors.NewForbiddenError("Cannot access another user's resume", "RESUME_FORBIDDEN")
	}
	return userID, nil
}

func parseUserID(r *http.Request) (int64, error) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("userID must be an integer", "INVALID_USER_ID", "")
	}
	return userID, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
