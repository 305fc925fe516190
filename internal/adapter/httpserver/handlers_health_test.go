package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/founderswall/internal/platform/version"
)

func TestReadiness_AllChecksPass(t *testing.T) {
	srv := newTestServer(t, &mockAppService{}, withHealthChecks(
		HealthCheck{Name: "postgres", Check: func(context.Context) error { return nil }},
		HealthCheck{Name: "redis", Check: func(context.Context) error { return nil }},
	))

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready","checks":{"postgres":"ok","redis":"ok"}}`, rec.Body.String())
}

func TestReadiness_OneCheckFails(t *testing.T) {
	srv := newTestServer(t, &mockAppService{}, withHealthChecks(
		HealthCheck{Name: "postgres", Check: func(context.Context) error { return nil }},
		HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }},
	))

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unhealthy","checks":{"postgres":"ok","redis":"connection refused"}}`, rec.Body.String())
}

func TestStartup_UsesSameChecks(t *testing.T) {
	srv := newTestServer(t, &mockAppService{}, withHealthChecks(
		HealthCheck{Name: "postgres", Check: func(context.Context) error { return errors.New("down") }},
	))

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/health/startup", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLiveness(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "uptime")
}

func TestVersion(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, version.Version, decodeJSON(t, rec)["version"])
}

func TestMetricsEndpoint(t *testing.T) {
	t.Run("served when configured", func(t *testing.T) {
		srv := newTestServer(t, &mockAppService{}, func(s *Server) {
			s.metricsHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("founderswall_up 1\n"))
			})
		})

		rec := serve(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "founderswall_up 1")
	})

	t.Run("absent otherwise", func(t *testing.T) {
		srv := newTestServer(t, &mockAppService{})

		rec := serve(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
