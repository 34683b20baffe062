package proxy

import (
	"time"

	"github.com/google/uuid"
	"github.com/mandalnilabja/vecway/internal/storage"
)

// logCompletion stores the request log and adds it to the daily usage
// aggregate. Token counts are local estimates; the backend reports none.
func (h *Handlers) logCompletion(c *completion, duration time.Duration) {
	prompt, completionTokens := h.countTokens(c)

	entry := &storage.RequestLog{
		ID:               uuid.New().String(),
		RequestID:        c.requestID,
		Model:            c.req.Model,
		BackendModel:     c.backendModel,
		Provider:         h.Provider.Name(),
		PromptTokens:     prompt,
		CompletionTokens: completionTokens,
		TotalTokens:      prompt + completionTokens,
		IsStreaming:      c.req.IsStreaming(),
		StatusCode:       c.status,
		Outcome:          string(c.outcome),
		ErrorMessage:     c.errMsg,
		DurationMs:       duration.Milliseconds(),
		CreatedAt:        time.Now().UTC(),
	}
	if entry.RequestID == "" {
		entry.RequestID = entry.ID
	}

	if err := h.Storage.LogRequest(entry); err != nil {
		h.Logger.Warn("failed to store request log", "request_id", entry.RequestID, "error", err)
	}

	errorCount := 0
	if entry.IsError() {
		errorCount = 1
	}

	usage := &storage.DailyUsage{
		Date:             entry.CreatedAt.Format("2006-01-02"),
		Model:            entry.Model,
		RequestCount:     1,
		PromptTokens:     entry.PromptTokens,
		CompletionTokens: entry.CompletionTokens,
		TotalTokens:      entry.TotalTokens,
		ErrorCount:       errorCount,
	}
	if err := h.Storage.UpdateDailyUsage(usage); err != nil {
		h.Logger.Warn("failed to update daily usage", "request_id", entry.RequestID, "error", err)
	}
}

// countTokens returns zeros when no tokenizer is configured or the
// encoding cannot be loaded.
func (h *Handlers) countTokens(c *completion) (int, int) {
	if h.Tokenizer == nil {
		return 0, 0
	}
	promptTokens, err := h.Tokenizer.CountRequest(c.req)
	if err != nil {
		h.Logger.Debug("prompt token count failed", "error", err)
		promptTokens = 0
	}
	completionTokens, err := h.Tokenizer.CountTokens(c.reply.String(), c.req.Model)
	if err != nil {
		h.Logger.Debug("completion token count failed", "error", err)
		completionTokens = 0
	}
	return promptTokens, completionTokens
}
