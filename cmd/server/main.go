package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"golang.org/x/sync/errgroup"

	"github.com/resumeingestor/ingestor/internal/api"
	"github.com/resumeingestor/ingestor/internal/cache"
	"github.com/resumeingestor/ingestor/internal/config"
	"github.com/resumeingestor/ingestor/internal/db"
	"github.com/resumeingestor/ingestor/internal/logger"
	"github.com/resumeingestor/ingestor/internal/metrics"
	"github.com/resumeingestor/ingestor/internal/resume"
	"github.com/resumeingestor/ingestor/internal/sentry"
	"github.com/resumeingestor/ingestor/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func main() {
	defer sentry.Recover()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize telemetry
	shutdownTelemetry, err := telemetry.InitTelemetry(ctx, telemetry.Options{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Env:            cfg.Env,
		Endpoint:       cfg.OtelExporterOTLPEndpoint,
		Headers:        cfg.OTLPHeaders(),
	})
	if err != nil {
		slog.Warn("Failed to init telemetry", "error", err)
		shutdownTelemetry = func(context.Context) error { return nil }
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			slog.Warn("Telemetry shutdown failed", "error", err)
		}
	}()

	// Initialize Sentry
	if err := sentry.Init(cfg.SentryDSN, cfg.Env, cfg.ServiceName, cfg.ServiceVersion); err != nil {
		slog.Warn("Failed to init sentry", "error", err)
	}
	if cfg.SentryDSN != "" {
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize business metrics
	if err := metrics.Init(); err != nil {
		slog.Warn("Failed to init business metrics", "error", err)
	}

	// Initialize logger with OTel support
	logger := logger.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	// Database connection
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseTracing)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.Prepare(ctx, pool, db.DefaultRetryConfig()); err != nil {
		log.Fatalf("Failed to prepare database: %v", err)
	}

	// Resume cache
	cacheMetrics, err := metrics.NewCacheMetrics("resumes")
	if err != nil {
		slog.Warn("Failed to init cache metrics", "error", err)
	}
	resumeCache, err := cache.New[resume.Resume](cache.Config{
		DefaultTTL:      cfg.Cache.DefaultTTL(),
		MaxSize:         cfg.Cache.MaxSize,
		CleanupInterval: cfg.Cache.CleanupInterval(),
	},
		cache.WithLogger(logger.With("cache", "resumes")),
		cache.WithRecorder(cacheMetrics),
		cache.WithErrorHandler(sentry.ErrorReporter("cache")),
	)
	if err != nil {
		log.Fatalf("Failed to create cache: %v", err)
	}
	if err := cacheMetrics.ObserveSize(resumeCache.Len); err != nil {
		slog.Warn("Failed to register cache size gauge", "error", err)
	}
	resumeCache.Start()
	defer resumeCache.Stop()

	resumes := resume.NewService(resume.NewPgRepository(pool), resumeCache, cfg.Cache.SingleFlight, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(api.NewServer(cfg, resumes, resumeCache)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server failed", "error", err)
	}
}
