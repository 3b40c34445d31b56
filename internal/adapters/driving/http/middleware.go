package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/custodia-labs/sercha-auth/internal/core/domain"
	"github.com/custodia-labs/sercha-auth/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-auth/internal/observability"
)

// Context keys
type contextKey string

const identityContextKey contextKey = "identity"

// requestSource exposes an *http.Request as a domain.TokenSource
type requestSource struct {
	r *http.Request
}

func (s requestSource) AuthorizationHeader() string {
	return s.r.Header.Get("Authorization")
}

func (s requestSource) Cookie(name string) string {
	c, err := s.r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// AuthMiddleware authenticates requests carrying a bearer token or auth cookie
type AuthMiddleware struct {
	authService driving.AuthService
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware. metrics may be nil.
func NewAuthMiddleware(authService driving.AuthService, metrics *observability.Metrics, logger *slog.Logger) *AuthMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		authService: authService,
		metrics:     metrics,
		logger:      logger,
	}
}

// Authenticate validates the request token and adds the caller's identity to
// the request context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := m.authService.Authenticate(r.Context(), requestSource{r: r})
		m.metrics.RecordTokenVerification(err)
		if err != nil {
			reason, ok := domain.ReasonOf(err)
			if !ok {
				m.logger.ErrorContext(r.Context(), "authentication unavailable", "error", err)
				writeError(w, http.StatusServiceUnavailable, "authentication unavailable")
				return
			}

			w.Header().Set("WWW-Authenticate", `Bearer realm="sercha"`)
			switch reason {
			case domain.ReasonExpired:
				writeError(w, http.StatusUnauthorized, "token expired")
			case domain.ReasonInvalidCredentials:
				writeError(w, http.StatusUnauthorized, "invalid credentials")
			default:
				writeError(w, http.StatusUnauthorized, "invalid token")
			}
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetIdentity retrieves the authenticated identity from request context
func GetIdentity(ctx context.Context) *domain.Identity {
	if ctx == nil {
		return nil
	}
	identity, ok := ctx.Value(identityContextKey).(*domain.Identity)
	if !ok {
		return nil
	}
	return identity
}

// Logging middleware

// LoggingMiddleware logs HTTP requests
type LoggingMiddleware struct {
	logger *slog.Logger
}

// NewLoggingMiddleware creates a new LoggingMiddleware
func NewLoggingMiddleware(logger *slog.Logger) *LoggingMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingMiddleware{logger: logger}
}

// Handler wraps an http.Handler with request logging
func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		m.logger.InfoContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration", time.Since(start),
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Recovery middleware

// RecoveryMiddleware recovers from panics
type RecoveryMiddleware struct {
	logger *slog.Logger
}

// NewRecoveryMiddleware creates a new RecoveryMiddleware
func NewRecoveryMiddleware(logger *slog.Logger) *RecoveryMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecoveryMiddleware{logger: logger}
}

// Handler wraps an http.Handler with panic recovery
func (m *RecoveryMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				m.logger.ErrorContext(r.Context(), "panic recovered", "panic", err, "path", r.URL.Path)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
