package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobus-platform/autobus/internal/audit"
	"github.com/autobus-platform/autobus/internal/readiness"
)

func TestLivenessAlwaysHealthy(t *testing.T) {
	h := NewHealthHandler(nil)
	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadinessReportsFailingCheck(t *testing.T) {
	checks := map[string]readiness.CheckFunc{
		"datastore": func(ctx context.Context) error { return nil },
		"cache":     func(ctx context.Context) error { return errors.New("connection refused") },
	}
	h := NewHealthHandler(checks)
	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "ok", resp.Checks["datastore"])
	assert.Contains(t, resp.Checks["cache"], "connection refused")
}

func TestRouterServesAuthRoutes(t *testing.T) {
	router := NewRouter(RouterConfig{
		Registry: &fakeRegistry{},
		Audit:    &audit.Recorder{},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signout", nil)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
