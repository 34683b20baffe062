package models

import "time"

// RequestLog represents one proxied chat completion
type RequestLog struct {
	ID               string    `json:"id"`
	RequestID        string    `json:"request_id"`
	Model            string    `json:"model"`         // caller-facing alias
	BackendModel     string    `json:"backend_model"` // name sent to the backend
	Provider         string    `json:"provider"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens"`
	IsStreaming      bool      `json:"is_streaming"`
	StatusCode       int       `json:"status_code"`
	Outcome          string    `json:"outcome"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	DurationMs       int64     `json:"duration_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

// IsError reports whether the request ended without a complete reply.
func (l *RequestLog) IsError() bool {
	if l.StatusCode >= 400 {
		return true
	}
	switch l.Outcome {
	case "", "completed":
		return false
	default:
		return true
	}
}

// LogFilter contains parameters for filtering request logs
type LogFilter struct {
	Model      string
	Provider   string
	Outcome    string
	StatusCode *int
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
	Offset     int
}
