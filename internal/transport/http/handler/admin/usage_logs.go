package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/mandalnilabja/vecway/internal/storage"
	"github.com/mandalnilabja/vecway/internal/transport/http/handler/shared"
	"github.com/mandalnilabja/vecway/internal/types"
)

var errInvalidDate = errors.New("invalid date format, use YYYY-MM-DD")

const (
	defaultLogLimit = 50
	maxLogLimit     = 1000
)

// GetRequestLogs handles GET /api/admin/logs.
func (h *Handlers) GetRequestLogs(w http.ResponseWriter, r *http.Request) {
	filter, err := parseLogFilter(r)
	if err != nil {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest(err.Error()))
		return
	}

	logs, err := h.Storage.GetRequestLogs(filter)
	if err != nil {
		h.Logger.Error("failed to get request logs", "error", err)
		types.WriteError(w, http.StatusInternalServerError, types.ErrServer("Failed to get request logs: "+err.Error()))
		return
	}
	if logs == nil {
		logs = []*storage.RequestLog{}
	}

	shared.WriteJSON(w, map[string]any{
		"logs":   logs,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	}, http.StatusOK)
}

// DeleteRequestLogs handles DELETE /api/admin/logs?before_date=YYYY-MM-DD.
func (h *Handlers) DeleteRequestLogs(w http.ResponseWriter, r *http.Request) {
	beforeDate := r.URL.Query().Get("before_date")
	if beforeDate == "" {
		types.WriteError(w, http.StatusBadRequest,
			types.NewAPIErrorWithParam("before_date query parameter is required (format: YYYY-MM-DD)", types.ErrorTypeInvalidRequest, "before_date"))
		return
	}

	deleted, err := h.Storage.DeleteRequestLogs(beforeDate)
	if errors.Is(err, storage.ErrInvalidInput) {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest(errInvalidDate.Error()))
		return
	}
	if err != nil {
		h.Logger.Error("failed to delete request logs", "error", err)
		types.WriteError(w, http.StatusInternalServerError, types.ErrServer("Failed to delete logs: "+err.Error()))
		return
	}

	h.Logger.Info("request logs deleted", "before_date", beforeDate, "deleted", deleted)
	shared.WriteJSON(w, map[string]any{
		"deleted_count": deleted,
		"before_date":   beforeDate,
	}, http.StatusOK)
}

// parseLogFilter creates a LogFilter from query parameters.
func parseLogFilter(r *http.Request) (storage.LogFilter, error) {
	q := r.URL.Query()
	filter := storage.LogFilter{
		Model:    q.Get("model"),
		Provider: q.Get("provider"),
		Outcome:  q.Get("outcome"),
		Limit:    defaultLogLimit,
	}

	if v := q.Get("status_code"); v != "" {
		code, err := strconv.Atoi(v)
		if err != nil {
			return filter, errors.New("status_code must be an integer")
		}
		filter.StatusCode = &code
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			return filter, errors.New("limit must be a positive integer")
		}
		filter.Limit = min(limit, maxLogLimit)
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return filter, errors.New("offset must be a non-negative integer")
		}
		filter.Offset = offset
	}

	start, err := parseDate(q.Get("start_date"))
	if err != nil {
		return filter, err
	}
	end, err := parseDate(q.Get("end_date"))
	if err != nil {
		return filter, err
	}
	if end != nil {
		// Inclusive: everything before the next midnight
		next := end.AddDate(0, 0, 1).Add(-1)
		end = &next
	}
	filter.StartDate, filter.EndDate = start, end

	return filter, nil
}
