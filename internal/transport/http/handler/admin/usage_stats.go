package admin

import (
	"net/http"
	"time"

	"github.com/mandalnilabja/vecway/internal/storage"
	"github.com/mandalnilabja/vecway/internal/transport/http/handler/shared"
	"github.com/mandalnilabja/vecway/internal/types"
)

const dateLayout = "2006-01-02"

// GetUsageStats handles GET /api/admin/usage.
func (h *Handlers) GetUsageStats(w http.ResponseWriter, r *http.Request) {
	filter, err := parseStatsFilter(r)
	if err != nil {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest(err.Error()))
		return
	}

	stats, hit, err := h.cachedStats("usage?"+r.URL.Query().Encode(), filter)
	if err != nil {
		h.Logger.Error("failed to get usage stats", "error", err)
		types.WriteError(w, http.StatusInternalServerError, types.ErrServer("Failed to get usage stats: "+err.Error()))
		return
	}

	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	shared.WriteJSON(w, stats, http.StatusOK)
}

// GetDailyUsage handles GET /api/admin/usage/daily. The range defaults to
// the last 30 days.
func (h *Handlers) GetDailyUsage(w http.ResponseWriter, r *http.Request) {
	startDate := r.URL.Query().Get("start_date")
	endDate := r.URL.Query().Get("end_date")

	if startDate == "" {
		startDate = time.Now().AddDate(0, 0, -30).Format(dateLayout)
	}
	if endDate == "" {
		endDate = time.Now().Format(dateLayout)
	}
	for _, d := range []string{startDate, endDate} {
		if _, err := time.Parse(dateLayout, d); err != nil {
			types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest(errInvalidDate.Error()))
			return
		}
	}

	usage, err := h.Storage.GetDailyUsage(startDate, endDate)
	if err != nil {
		h.Logger.Error("failed to get daily usage", "error", err)
		types.WriteError(w, http.StatusInternalServerError, types.ErrServer("Failed to get daily usage: "+err.Error()))
		return
	}
	if usage == nil {
		usage = []*storage.DailyUsage{}
	}

	shared.WriteJSON(w, map[string]any{
		"daily_usage": usage,
		"start_date":  startDate,
		"end_date":    endDate,
	}, http.StatusOK)
}

// parseStatsFilter creates a StatsFilter from query parameters.
func parseStatsFilter(r *http.Request) (storage.StatsFilter, error) {
	q := r.URL.Query()
	filter := storage.StatsFilter{Model: q.Get("model")}

	start, err := parseDate(q.Get("start_date"))
	if err != nil {
		return filter, err
	}
	end, err := parseDate(q.Get("end_date"))
	if err != nil {
		return filter, err
	}
	filter.StartDate, filter.EndDate = start, end
	return filter, nil
}

// parseDate parses an optional YYYY-MM-DD value.
func parseDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, errInvalidDate
	}
	return &t, nil
}
