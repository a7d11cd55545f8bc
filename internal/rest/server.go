// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-seaccess.
//
// go-seaccess is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package rest exposes the access gate to its host over HTTP: check,
// cache invalidation, policy dump/reload, health probes and metrics.
package rest

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jeremyhahn/go-seaccess/pkg/health"
	"github.com/jeremyhahn/go-seaccess/pkg/logging"
	"github.com/jeremyhahn/go-seaccess/pkg/metrics"
	"github.com/jeremyhahn/go-seaccess/pkg/ratelimit"
	"github.com/jeremyhahn/go-seaccess/pkg/seaccess"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the REST API server.
type Server struct {
	server   *http.Server
	handlers *HandlerContext
	logger   *logging.Logger
	limiter  *ratelimit.Limiter
}

// Config holds the REST server configuration.
type Config struct {
	// Host is the listen address (default: all interfaces)
	Host string

	// Port is the HTTP port to listen on (default: 8450)
	Port int

	// Controller is the access decision engine (required)
	Controller *seaccess.Controller

	// Checker is the health checker (optional, created if nil)
	Checker *health.Checker

	// Logger is the logging instance (optional, defaults to logging.DefaultLogger)
	Logger *logging.Logger

	// Limiter is the request rate limiter (optional, disabled if nil)
	Limiter *ratelimit.Limiter

	// Version is the API version string
	Version string

	// ReadTimeout is the maximum duration for reading the entire request
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes
	WriteTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request
	IdleTimeout time.Duration
}

// NewServer creates a new REST API server.
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Controller == nil {
		return nil, fmt.Errorf("controller is required")
	}

	if cfg.Port == 0 {
		cfg.Port = 8450
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 15 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}

	log := cfg.Logger
	if log == nil {
		log = logging.DefaultLogger()
	}

	checker := cfg.Checker
	if checker == nil {
		checker = health.NewChecker()
	}

	limiter := cfg.Limiter
	if limiter == nil {
		limiter = ratelimit.New(nil)
	}

	server := &Server{
		handlers: NewHandlerContext(cfg.Controller, checker, cfg.Version),
		logger:   log,
		limiter:  limiter,
	}

	router := server.setupRouter()

	server.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return server, nil
}

// setupRouter configures the chi router with all routes and middleware.
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(s.RecoveryMiddleware())
	r.Use(s.LoggingMiddleware())
	r.Use(metrics.HTTPMiddleware)
	r.Use(ratelimit.Middleware(s.limiter))

	// Health probes (no rate limit concerns at this traffic level)
	r.Get("/health", s.handlers.HealthHandler)
	r.Head("/health", s.handlers.HealthHandler)
	r.Get("/health/live", s.handlers.LivenessHandler)
	r.Get("/health/ready", s.handlers.ReadinessHandler)
	r.Get("/health/startup", s.handlers.StartupHandler)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/check", s.handlers.CheckHandler)
		r.Post("/cache/invalidate", s.handlers.InvalidateCacheHandler)
		r.Get("/policy", s.handlers.PolicyDumpHandler)
		r.Post("/policy/reload", s.handlers.PolicyReloadHandler)
	})

	return r
}

// Handler returns the configured HTTP handler for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving in a background goroutine.
func (s *Server) Start() error {
	s.logger.Infof("REST API listening on %s", s.server.Addr)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("REST server error: %v", err)
		}
	}()
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	s.limiter.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// SetupSignalHandler returns a context cancelled on SIGINT or SIGTERM.
func SetupSignalHandler() context.Context {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx
}
