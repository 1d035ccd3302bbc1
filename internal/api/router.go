package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/riandyrn/otelchi"
	otelchimetric "github.com/riandyrn/otelchi/metric"
	"go.opentelemetry.io/otel"

	"github.com/resumeingestor/ingestor/internal/middleware"
	"github.com/resumeingestor/ingestor/internal/sentry"
)

// NewRouter wires the HTTP surface.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Use(otelchi.Middleware(s.cfg.ServiceName,
		otelchi.WithChiRoutes(r),
		otelchi.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}),
	))

	// HTTP metrics
	metricCfg := otelchimetric.NewBaseConfig(s.cfg.ServiceName, otelchimetric.WithMeterProvider(otel.GetMeterProvider()))
	r.Use(otelchimetric.NewRequestDurationMillis(metricCfg))
	r.Use(otelchimetric.NewRequestInFlight(metricCfg))
	r.Use(otelchimetric.NewResponseSizeBytes(metricCfg))

	r.Use(middleware.RequestLogger)
	r.Use(sentry.HTTPMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, "X-Process-Time"},
		AllowCredentials: true,
	}))

	r.Get("/health", s.HandleHealth)
	r.Get("/metrics/cache", s.HandleCacheStats)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(s.cfg))
		r.Get("/api/resumes/{userID}", s.HandleGetResume)
		r.Put("/api/resumes/{userID}", s.HandleSaveResume)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(s.cfg))
		r.Use(middleware.RequireRole(middleware.RoleAdmin))
		r.Post("/admin/cache/invalidate", s.HandleInvalidateCache)
		r.Delete("/admin/cache/{key}", s.HandleDeleteCacheKey)
		r.Delete("/admin/cache", s.HandleClearCache)
		r.Delete("/admin/resumes/{userID}/cache", s.HandleEvictResume)
	})

	return r
}
