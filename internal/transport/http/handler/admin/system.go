package admin

import (
	"net/http"
	"runtime"
	"time"

	"github.com/mandalnilabja/vecway/internal/storage"
	"github.com/mandalnilabja/vecway/internal/transport/http/handler/shared"
	"github.com/mandalnilabja/vecway/internal/version"
)

// AdminInfo handles GET /api/admin/info.
func (h *Handlers) AdminInfo(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.StartTime)

	stats := map[string]any{}
	if totals, _, err := h.cachedStats("info", storage.StatsFilter{}); err == nil {
		stats["total_requests"] = totals.TotalRequests
		stats["total_tokens"] = totals.TotalTokens
		stats["error_count"] = totals.ErrorCount
	} else {
		h.Logger.Warn("usage totals unavailable", "error", err)
	}

	shared.WriteJSON(w, map[string]any{
		"version":     version.Version,
		"go_version":  runtime.Version(),
		"uptime":      uptime.Round(time.Second).String(),
		"uptime_secs": int64(uptime.Seconds()),
		"data_dir":    h.Info.DataDir,
		"backend": map[string]any{
			"provider": h.Info.Provider,
			"url":      h.Info.BackendURL,
			"models":   h.Info.Models,
		},
		"stats": stats,
	}, http.StatusOK)
}
