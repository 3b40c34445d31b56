package observability

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/custodia-labs/sercha-auth/internal/core/domain"
)

func TestNewMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	if metrics.SignInTotal == nil {
		t.Error("SignInTotal is nil")
	}
	if metrics.TokenVerificationsTotal == nil {
		t.Error("TokenVerificationsTotal is nil")
	}
	if metrics.HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal is nil")
	}
	if metrics.HTTPRequestDuration == nil {
		t.Error("HTTPRequestDuration is nil")
	}
}

func TestNewMetrics_DoubleRegistrationPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewMetrics(registry)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	NewMetrics(registry)
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: "success"},
		{name: "invalid credentials", err: domain.ErrInvalidCredentials, want: "invalid_credentials"},
		{name: "expired", err: domain.ErrTokenExpired, want: "expired"},
		{name: "malformed", err: domain.ErrTokenInvalid, want: "malformed_or_unsigned"},
		{name: "wrapped rejection", err: fmt.Errorf("ctx: %w", domain.ErrTokenExpired), want: "expired"},
		{name: "infrastructure", err: errors.New("db down"), want: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Outcome(tt.err); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestRecordSignIn(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())

	metrics.RecordSignIn(nil)
	metrics.RecordSignIn(domain.ErrInvalidCredentials)
	metrics.RecordSignIn(domain.ErrInvalidCredentials)
	metrics.RecordSignIn(errors.New("timeout"))

	if v := testutil.ToFloat64(metrics.SignInTotal.WithLabelValues("success")); v != 1 {
		t.Errorf("expected 1 success, got %v", v)
	}
	if v := testutil.ToFloat64(metrics.SignInTotal.WithLabelValues("invalid_credentials")); v != 2 {
		t.Errorf("expected 2 rejections, got %v", v)
	}
	if v := testutil.ToFloat64(metrics.SignInTotal.WithLabelValues("error")); v != 1 {
		t.Errorf("expected 1 error, got %v", v)
	}
}

func TestRecordTokenVerification(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())

	metrics.RecordTokenVerification(domain.ErrTokenExpired)
	metrics.RecordTokenVerification(nil)

	if v := testutil.ToFloat64(metrics.TokenVerificationsTotal.WithLabelValues("expired")); v != 1 {
		t.Errorf("expected 1 expired, got %v", v)
	}
	if v := testutil.ToFloat64(metrics.TokenVerificationsTotal.WithLabelValues("success")); v != 1 {
		t.Errorf("expected 1 success, got %v", v)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var metrics *Metrics
	metrics.RecordSignIn(nil)
	metrics.RecordTokenVerification(domain.ErrTokenInvalid)
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := HTTPMetricsMiddleware(metrics)(mux)

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/items/"+id, nil))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	if v := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "GET /api/v1/items/{id}", "418")); v != 3 {
		t.Errorf("expected 3 requests on pattern, got %v", v)
	}
	if v := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")); v != 1 {
		t.Errorf("expected 1 unmatched request, got %v", v)
	}
	if n := testutil.CollectAndCount(metrics.HTTPRequestDuration); n != 2 {
		t.Errorf("expected 2 duration series, got %d", n)
	}
}

func TestHandler(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	metrics.RecordSignIn(nil)

	server := httptest.NewServer(metrics.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("failed to scrape: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `sercha_auth_signin_total{outcome="success"} 1`) {
		t.Errorf("expected sign-in counter in exposition, got:\n%s", body)
	}
}
