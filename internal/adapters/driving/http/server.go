package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/custodia-labs/sercha-auth/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-auth/internal/observability"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	authService driving.AuthService
	userService driving.UserService

	// Infrastructure
	store   Pinger // credential store health check
	metrics *observability.Metrics
	logger  *slog.Logger

	// Auth transport settings
	cookieName        string
	setCookie         bool
	allowRegistration bool
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string

	// CookieName is the cookie set on sign-in and read by the auth middleware
	CookieName        string
	SetCookie         bool
	AllowRegistration bool
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:              "0.0.0.0",
		Port:              8080,
		Version:           "dev",
		CookieName:        "jwt",
		SetCookie:         true,
		AllowRegistration: true,
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	authService driving.AuthService,
	userService driving.UserService,
	store Pinger,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "jwt"
	}

	s := &Server{
		router:            http.NewServeMux(),
		version:           cfg.Version,
		authService:       authService,
		userService:       userService,
		store:             store,
		metrics:           metrics,
		logger:            logger.With("component", "http"),
		cookieName:        cfg.CookieName,
		setCookie:         cfg.SetCookie,
		allowRegistration: cfg.AllowRegistration,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.authService, s.metrics, s.logger)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)
	if s.metrics != nil {
		s.router.Handle("GET /metrics", s.metrics.Handler())
	}

	// Auth endpoints (public)
	s.router.HandleFunc("POST /api/v1/auth/signin", s.handleSignIn)
	s.router.HandleFunc("POST /api/v1/users", s.handleRegister)

	// User endpoints (authenticated)
	s.router.Handle("GET /api/v1/me",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetMe)))
}

// Handler returns the router wrapped in the server middleware chain
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	if s.metrics != nil {
		h = observability.HTTPMetricsMiddleware(s.metrics)(h)
	}
	h = NewLoggingMiddleware(s.logger).Handler(h)
	h = NewRecoveryMiddleware(s.logger).Handler(h)
	return h
}

// Start serves until the server is shut down. A graceful shutdown is not an
// error.
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
