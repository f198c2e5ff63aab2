// Package httpapi serves the application's HTTP surface.
//
// The route handlers here are glue: they parse requests, delegate to
// the injected capabilities and translate sentinel errors into
// responses. Business rules live behind the capabilities.
package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/autobus-platform/autobus/internal/accounts"
	"github.com/autobus-platform/autobus/internal/audit"
	"github.com/autobus-platform/autobus/internal/logger"
	"github.com/autobus-platform/autobus/internal/metrics"
	"github.com/autobus-platform/autobus/internal/readiness"
)

// RouterConfig carries the capabilities the router wires into handlers.
type RouterConfig struct {
	Registry accounts.Registry
	Audit    audit.Logger

	// HealthChecks are the named dependency checks run by the
	// readiness endpoint.
	HealthChecks map[string]readiness.CheckFunc

	// RequestTimeout bounds each request. Zero means 30 seconds.
	RequestTimeout time.Duration
}

// NewRouter creates and configures the chi router with all middleware
// and routes.
//
// Routes:
//   - GET  /health              - Liveness probe
//   - GET  /health/ready        - Readiness probe
//   - GET  /metrics             - Prometheus metrics (when enabled)
//   - POST /api/v1/auth/signup  - Account registration
//   - POST /api/v1/auth/signin  - Credential authentication
//   - POST /api/v1/auth/signout - Session termination
func NewRouter(cfg RouterConfig) http.Handler {
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	healthHandler := NewHealthHandler(cfg.HealthChecks)
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	if metrics.IsEnabled() {
		r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
	}

	authHandler := NewAuthHandler(cfg.Registry, cfg.Audit)
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/signin", authHandler.Signin)
			r.Post("/signout", authHandler.Signout)
		})
	})

	return r
}

// requestLogger logs requests using the internal logger. Healthcheck
// requests complete at DEBUG level to reduce noise.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logArgs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		}
		if isHealthPath(r.URL.Path) {
			logger.Debug("request completed", logArgs...)
		} else {
			logger.Info("request completed", logArgs...)
		}
	})
}

func isHealthPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/health/")
}
