package httpapi

import (
	"net/http"
	"time"

	"github.com/autobus-platform/autobus/internal/readiness"
)

// healthResponse is the body of the health endpoints.
type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	checks map[string]readiness.CheckFunc
}

// NewHealthHandler creates a health handler running the given named
// dependency checks on readiness probes.
func NewHealthHandler(checks map[string]readiness.CheckFunc) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Liveness handles GET /health. It reports the process is up without
// touching any dependency.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	WriteJSONOK(w, healthResponse{Status: "healthy", Timestamp: time.Now().UTC()})
}

// Readiness handles GET /health/ready. It runs every dependency check
// once and reports 503 when any fails.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	results := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check(r.Context()); err != nil {
			results[name] = err.Error()
			healthy = false
		} else {
			results[name] = "ok"
		}
	}

	resp := healthResponse{Status: "healthy", Timestamp: time.Now().UTC(), Checks: results}
	if !healthy {
		resp.Status = "unhealthy"
		WriteJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	WriteJSONOK(w, resp)
}
