package infra

import (
	"net/http"
	"time"

	"github.com/mandalnilabja/vecway/internal/transport/http/handler/shared"
	"github.com/mandalnilabja/vecway/internal/version"
)

// RootStatus returns JSON status and version information at /.
func (h *Handlers) RootStatus(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	shared.WriteJSON(w, map[string]any{
		"name":    "vecway",
		"version": version.Version,
		"status":  "running",
		"api":     "/v1",
		"admin":   "/api/admin",
		"metrics": "/metrics",
	}, http.StatusOK)
}

// HealthCheck handler returns the application health status.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, map[string]any{
		"status": "active",
		"app":    "vecway",
		"uptime": time.Since(h.StartTime).Round(time.Second).String(),
	}, http.StatusOK)
}
