// Package server exposes the scanner over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/oddsync/arbscan/internal/domain"
	"github.com/oddsync/arbscan/internal/server/handler"
	"github.com/oddsync/arbscan/internal/server/middleware"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled

	// RateLimiter enables per-client request limiting when Redis is
	// configured; nil disables it.
	RateLimiter domain.RateLimiter
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health        *handler.HealthHandler
	Scan          *handler.ScanHandler
	Opportunities *handler.OpportunityHandler
	Settings      *handler.SettingsHandler
}

// Server is the headless HTTP API server for the arbitrage scanner.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (logging, CORS, auth).
func NewServer(cfg Config, handlers Handlers, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check (no auth required).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Scan endpoints.
	mux.HandleFunc("GET /api/scan", handlers.Scan.RunScan)
	mux.HandleFunc("GET /api/scans", handlers.Opportunities.ListScans)
	mux.HandleFunc("GET /api/scans/{id}/snapshots", handlers.Opportunities.ListSnapshots)
	mux.HandleFunc("GET /api/scans/{id}/snapshots/{source}", handlers.Opportunities.GetSnapshot)
	mux.HandleFunc("GET /api/opportunities/{id}", handlers.Opportunities.GetOpportunity)

	// Settings endpoints.
	mux.HandleFunc("GET /api/settings", handlers.Settings.GetSettings)
	mux.HandleFunc("PUT /api/settings", handlers.Settings.UpdateSettings)
	mux.HandleFunc("POST /api/settings/validate-key", handlers.Settings.ValidateKey)

	// Build the middleware chain.
	var h http.Handler = mux

	// Apply rate limiting when a limiter is configured.
	if cfg.RateLimiter != nil {
		h = middleware.RateLimit(cfg.RateLimiter, 60, time.Minute)(h)
	}

	// Apply auth middleware (skips if APIKey is empty).
	h = middleware.Auth(cfg.APIKey)(h)

	// Apply request logging middleware.
	h = middleware.Logging(logger)(h)

	// Apply CORS middleware.
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // a scan can take a while upstream
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
