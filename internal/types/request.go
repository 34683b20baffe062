package types

import "strings"

// ChatCompletionRequest represents an OpenAI chat completion request.
// Sampling fields are accepted for client compatibility; the backend has no
// equivalent controls, so they are not forwarded.
type ChatCompletionRequest struct {
	// Required fields
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`

	// Streaming
	Stream bool `json:"stream,omitempty"`

	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	User        string   `json:"user,omitempty"`
}

// IsStreaming returns true if this is a streaming request.
func (r *ChatCompletionRequest) IsStreaming() bool {
	return r.Stream
}

// Prompt flattens the conversation into the single text turn the backend
// accepts: one "User: ..." or "Assistant: ..." line per message, in order.
// Any role other than user is labelled Assistant.
func (r *ChatCompletionRequest) Prompt() string {
	lines := make([]string, 0, len(r.Messages))
	for _, msg := range r.Messages {
		label := "Assistant"
		if msg.Role == RoleUser {
			label = "User"
		}
		lines = append(lines, label+": "+msg.Content.String())
	}
	return strings.Join(lines, "\n")
}
