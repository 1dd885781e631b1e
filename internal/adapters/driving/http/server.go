// Package http exposes the document question-answering services as a REST API.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/docucortex/internal/core/ports/driven"
	"github.com/custodia-labs/docucortex/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	AppName        string
	Version        string
	MaxUploadBytes int64
	RequestTimeout time.Duration
	CORSOrigins    []string
	Swagger        bool
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8000,
		AppName:        "DocuCortex",
		Version:        "dev",
		MaxUploadBytes: 20 << 20,
		RequestTimeout: 2 * time.Minute,
		CORSOrigins:    []string{"*"},
		Swagger:        true,
	}
}

// Services groups what the server needs. Tokens, Gatherer and Checks are optional.
type Services struct {
	Chat      driving.ChatService
	Documents driving.DocumentService
	Analysis  driving.AnalysisService

	// Tokens enables bearer auth on /api/v1 when set.
	Tokens driven.TokenService

	// Gatherer backs /metrics.
	Gatherer prometheus.Gatherer

	// Checks are pinged by /ready, keyed by component name.
	Checks map[string]Pinger
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	cfg        Config
	svc        Services
	logger     *slog.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, svc Services, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router: http.NewServeMux(),
		cfg:    cfg,
		svc:    svc,
		logger: logger,
	}

	// WriteTimeout must outlast the per-request deadline so timeouts surface as JSON errors
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	api := func(h http.HandlerFunc) http.Handler {
		var handler http.Handler = h
		if s.cfg.RequestTimeout > 0 {
			handler = NewTimeoutMiddleware(s.cfg.RequestTimeout).Handler(handler)
		}
		if s.svc.Tokens != nil {
			handler = NewAuthMiddleware(s.svc.Tokens).Authenticate(handler)
		}
		return handler
	}

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	if s.svc.Gatherer != nil {
		s.router.Handle("GET /metrics", promhttp.HandlerFor(s.svc.Gatherer, promhttp.HandlerOpts{}))
	}
	if s.cfg.Swagger {
		s.router.HandleFunc("GET /swagger/doc.json", s.handleSwagger)
	}

	// Document endpoints
	s.router.Handle("POST /api/v1/documents", api(s.handleUploadDocument))
	s.router.Handle("GET /api/v1/documents/{id}/summary", api(s.handleGetSummary))

	// Chat endpoint
	s.router.Handle("POST /api/v1/chat", api(s.handleChat))
}

// Handler returns the router wrapped in the global middleware chain.
// Recovery is outermost so panics in any other layer are caught.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = NewCORSMiddleware(s.cfg.CORSOrigins).Handler(h)
	h = NewLoggingMiddleware(s.logger).Handler(h)
	h = NewRecoveryMiddleware(s.logger).Handler(h)
	return h
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
