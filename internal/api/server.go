// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/trailhead-app/trailhead/internal/core/review"
	"github.com/trailhead-app/trailhead/internal/core/tour"
	"github.com/trailhead-app/trailhead/internal/platform/config"
	"github.com/trailhead-app/trailhead/internal/platform/constants"
	"github.com/trailhead-app/trailhead/internal/platform/middleware"
	"github.com/trailhead-app/trailhead/internal/platform/sec"
	"github.com/trailhead-app/trailhead/internal/users/auth"
	"github.com/trailhead-app/trailhead/internal/users/identity"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles the credential lifecycle (signup, login, password reset).
	Auth *auth.Handler

	// Identity handles profiles and the admin account CRUD.
	Identity *identity.Handler

	// Tour handles the public catalogue and its content management.
	Tour *tour.Handler

	// Review handles tour reviews, flat and nested under tours.
	Review *review.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, guard *auth.Guard, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Access Control
	editors := guard.RestrictTo(sec.RoleAdmin, sec.RoleLeadGuide)
	customers := guard.RestrictTo(sec.RoleUser)
	moderators := guard.RestrictTo(sec.RoleUser, sec.RoleAdmin)
	admins := guard.RestrictTo(sec.RoleAdmin)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())
		api.Mount("/users", h.Identity.Routes(guard.Protect, admins))

		tours := h.Tour.Routes(guard.OptionalIdentify, guard.Protect, editors)
		tours.Mount("/{tourID}/reviews", h.Review.NestedRoutes(guard.Protect, customers))
		api.Mount("/tours", tours)

		api.Mount("/reviews", h.Review.Routes(guard.Protect, customers, moderators))
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
