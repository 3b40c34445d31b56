package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/sercha-auth/internal/core/domain"
)

// Outcome labels besides the rejection reasons
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Auth metrics
	SignInTotal             *prometheus.CounterVec
	TokenVerificationsTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		SignInTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sercha_auth_signin_total",
				Help: "Total number of sign-in attempts by outcome",
			},
			[]string{"outcome"},
		),
		TokenVerificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sercha_auth_token_verifications_total",
				Help: "Total number of token verifications by outcome",
			},
			[]string{"outcome"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sercha_auth_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sercha_auth_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		registry: registry,
	}

	// Register all metrics
	registry.MustRegister(
		m.SignInTotal,
		m.TokenVerificationsTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}

// Outcome maps a verification result to its metric label: success, the
// rejection reason, or error for infrastructure failures.
func Outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	if reason, ok := domain.ReasonOf(err); ok {
		return string(reason)
	}
	return OutcomeError
}

// RecordSignIn counts a sign-in attempt. Safe on a nil receiver.
func (m *Metrics) RecordSignIn(err error) {
	if m == nil {
		return
	}
	m.SignInTotal.WithLabelValues(Outcome(err)).Inc()
}

// RecordTokenVerification counts a token verification. Safe on a nil receiver.
func (m *Metrics) RecordTokenVerification(err error) {
	if m == nil {
		return
	}
	m.TokenVerificationsTotal.WithLabelValues(Outcome(err)).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// HTTPMetricsMiddleware records request counts and latency. The path label is
// the matched route pattern so that IDs in URLs do not explode cardinality.
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			path := r.Pattern
			if path == "" {
				path = "unmatched"
			}

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rw.statusCode)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}
