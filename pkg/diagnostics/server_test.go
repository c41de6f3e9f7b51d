package diagnostics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewHTTPMetrics(reg)
	require.NoError(t, err, "failed to register metrics")

	m.Observe(http.MethodGet, "/customer/list", "200", 15*time.Millisecond)

	verifier := func(user, password string) bool {
		return user == "admin" && password == "secret"
	}
	h := Handler(reg, verifier)

	t.Log("health is public")
	{
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	t.Log("metrics require credentials")
	{
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	t.Log("metrics with wrong credentials")
	{
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		req.SetBasicAuth("admin", "wrong")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	t.Log("metrics are exposed to authorized client")
	{
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		req.SetBasicAuth("admin", "secret")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		body := rec.Body.String()
		require.True(t, strings.Contains(body, `customers_http_requests_total{method="GET",route="/customer/list",status="200"} 1`), "request counter must be exposed")
		require.Contains(t, body, "customers_http_request_duration_seconds_bucket")
	}
}

func TestHandlerWithoutVerifier(t *testing.T) {
	h := Handler(prometheus.NewRegistry(), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code, "metrics must be public without verifier")
}

func TestDuplicateMetricsRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewHTTPMetrics(reg)
	require.NoError(t, err)

	_, err = NewHTTPMetrics(reg)
	require.Error(t, err, "metrics are registered twice but no error raised")
}
