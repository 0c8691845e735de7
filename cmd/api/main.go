// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

// Command api is the entry point for the Trailhead HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables (.env honored in dev).
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire token service, mailer, stores, services, and handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/trailhead-app/trailhead/internal/api"
	"github.com/trailhead-app/trailhead/internal/core/review"
	"github.com/trailhead-app/trailhead/internal/core/tour"
	"github.com/trailhead-app/trailhead/internal/platform/config"
	"github.com/trailhead-app/trailhead/internal/platform/constants"
	"github.com/trailhead-app/trailhead/internal/platform/email"
	"github.com/trailhead-app/trailhead/internal/platform/migration"
	pgstore "github.com/trailhead-app/trailhead/internal/platform/postgres"
	redisstore "github.com/trailhead-app/trailhead/internal/platform/redis"
	"github.com/trailhead-app/trailhead/internal/platform/respond"
	"github.com/trailhead-app/trailhead/internal/platform/sec"
	"github.com/trailhead-app/trailhead/internal/users/auth"
	"github.com/trailhead-app/trailhead/internal/users/identity"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "trailhead"))
	slog.SetDefault(log)

	log.Info("[Trailhead] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	// A local .env is a development convenience. In production the variables
	// come from the orchestrator, so a missing file is not an error.
	if err := godotenv.Load(); err == nil {
		log.Info("dotenv_loaded")
	}

	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "trailhead"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	respond.SetDevelopmentMode(cfg.IsDevelopment())

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Token Service & Mailer ─────────────────────────────────────────
	tokens := sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer, cfg.JWTLifetime, nil)

	var mailer email.Sender
	if cfg.SMTPHost != "" {
		mailer = email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailFrom)
	} else {
		// No SMTP configured: deliver to the log so the reset flow stays
		// exercisable in development.
		mailer = email.NewLogSender(log)
	}

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	identityStore := identity.NewPostgresStore(pool)
	identityService := identity.NewService(identityStore)
	identityHandler := identity.NewHandler(identityService, identityStore)

	throttle := auth.NewThrottle(rdb)
	authService := auth.NewService(identityStore, tokens, mailer, throttle, nil)
	guard := auth.NewGuard(tokens, identityStore)
	authHandler := auth.NewHandler(authService, guard, cfg.IsProduction())

	reviewStore := review.NewPostgresStore(pool)
	reviewHandler := review.NewHandler(reviewStore)

	tourStore := tour.NewPostgresStore(pool)
	tourHandler := tour.NewHandler(tourStore, reviewStore)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Identity:  identityHandler,
		Tour:      tourHandler,
		Review:    reviewHandler,
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, guard, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
