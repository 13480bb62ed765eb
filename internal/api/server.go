// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api serves the guide and DVR views over read-only JSON endpoints.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ManuGH/dvrguide/internal/cache"
	"github.com/ManuGH/dvrguide/internal/config"
	"github.com/ManuGH/dvrguide/internal/control/middleware"
	"github.com/ManuGH/dvrguide/internal/control/read"
	"github.com/ManuGH/dvrguide/internal/health"
	"github.com/ManuGH/dvrguide/internal/log"
	"github.com/ManuGH/dvrguide/internal/snapshot"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

// logoBacklogLimit degrades readiness when this many logo ids wait.
const logoBacklogLimit = 1000

// Snapshot is the data the server reads. *snapshot.Store satisfies it.
type Snapshot interface {
	read.GuideSource
	Current() *snapshot.Data
}

// Deps are the collaborators of a Server.
type Deps struct {
	Snapshot Snapshot
	Logos    *read.LogoResolver
	// Cache stores rendered views when cfg.Cache.TTL is positive.
	Cache cache.Cache
	// Clock defaults to the wall clock.
	Clock read.Clock
}

// Server owns the HTTP surface.
type Server struct {
	cfg    config.AppConfig
	src    Snapshot
	logos  *read.LogoResolver
	cache  cache.Cache
	clock  read.Clock
	prefs  read.Prefs
	health *health.Manager
	logger zerolog.Logger
}

// New builds a server from a validated config.
func New(cfg config.AppConfig, deps Deps) (*Server, error) {
	if deps.Snapshot == nil {
		return nil, errors.New("api: snapshot is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = read.RealClock{}
	}
	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.SnapshotChecker{Source: deps.Snapshot, MaxAge: cfg.Snapshot.MaxAge})
	if deps.Logos != nil {
		hm.RegisterChecker(health.BacklogChecker{Component: "logos", Queue: deps.Logos, Limit: logoBacklogLimit})
	}
	if p, ok := deps.Cache.(health.Pinger); ok {
		hm.RegisterChecker(health.PingChecker{Component: "cache", Target: p})
	}
	return &Server{
		cfg:    cfg,
		src:    deps.Snapshot,
		logos:  deps.Logos,
		cache:  deps.Cache,
		clock:  clock,
		prefs:  PrefsFromConfig(cfg),
		health: hm,
		logger: log.WithComponent("api"),
	}, nil
}

// PrefsFromConfig maps the viewer and guide sections onto read preferences.
func PrefsFromConfig(cfg config.AppConfig) read.Prefs {
	return read.Prefs{
		Location:  cfg.Location(),
		Formatter: cfg.Formatter(),
		Layout:    cfg.Layout(),
		LookBack:  cfg.Guide.LookBack,
		LookAhead: cfg.Guide.LookAhead,
	}
}

// Handler returns the router with all routes and middleware applied.
func (s *Server) Handler() http.Handler {
	tracing := ""
	if s.cfg.Telemetry.Enabled {
		tracing = "dvrguide"
	}
	r := middleware.NewRouter(middleware.StackConfig{
		EnableCORS:            len(s.cfg.AllowedOrigins) > 0,
		AllowedOrigins:        s.cfg.AllowedOrigins,
		EnableSecurityHeaders: true,
		EnableMetrics:         true,
		TracingService:        tracing,
		EnableLogging:         true,
		RateLimitRPM:          s.cfg.RateLimit.RequestsPerMinute,
	})

	r.Get("/healthz", s.health.ServeReady)
	r.Get("/livez", s.health.ServeHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/openapi.yaml", handleOpenAPI)
		r.Get("/guide", s.cached("guide", s.handleGuide))
		r.Get("/dvr", s.cached("dvr", s.handleDvr))
		r.Get("/dvr/series", s.cached("series", s.handleSeries))
		r.Get("/dvr/rules/{id}", s.cached("rule", s.handleRule))
		r.Get("/dvr/rules/{id}/occurrences", s.cached("rule_occurrences", s.handleRuleOccurrences))
		r.Get("/logos", s.handleLogos)
		r.Post("/logos/prefetch", s.handleLogoPrefetch)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().
			Str(log.FieldEvent, "api.listening").
			Str("addr", ln.Addr().String()).
			Msg("http server listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info().Str(log.FieldEvent, "api.shutdown").Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
