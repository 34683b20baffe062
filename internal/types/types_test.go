package types

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestContentUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"string content", `{"role":"user","content":"Hi"}`, "Hi"},
		{"text parts", `{"role":"user","content":[{"type":"text","text":"Hel"},{"type":"image_url","image_url":{"url":"http://x"}},{"type":"text","text":"lo"}]}`, "Hello"},
		{"null content", `{"role":"assistant","content":null}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var msg Message
			if err := json.Unmarshal([]byte(tt.json), &msg); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if got := msg.Content.String(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPrompt(t *testing.T) {
	req := &ChatCompletionRequest{
		Messages: []Message{
			NewTextMessage(RoleUser, "Hi"),
			NewTextMessage(RoleAssistant, "Hello!"),
			NewTextMessage(RoleSystem, "Be brief"),
			NewTextMessage(RoleUser, "How are you?"),
		},
	}

	want := "User: Hi\nAssistant: Hello!\nAssistant: Be brief\nUser: How are you?"
	if got := req.Prompt(); got != want {
		t.Errorf("expected\n%q\ngot\n%q", want, got)
	}
}

func TestPrompt_Empty(t *testing.T) {
	req := &ChatCompletionRequest{}
	if got := req.Prompt(); got != "" {
		t.Errorf("expected empty prompt, got %q", got)
	}
}

func TestFormatSSE(t *testing.T) {
	got := string(FormatSSE([]byte(`{"a":1}`)))
	if got != "data: {\"a\":1}\n\n" {
		t.Errorf("unexpected SSE framing: %q", got)
	}
}

func TestChunkUsageIsNull(t *testing.T) {
	data, err := json.Marshal(ChatCompletionChunk{Object: ObjectChatCompletionChunk})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"usage":null`) {
		t.Errorf("expected explicit null usage, got %s", data)
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusForbidden, ErrPermission("Invalid APP_SECRET"))

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}

	var body APIError
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Error.Type != ErrorTypePermission || body.Error.Message != "Invalid APP_SECRET" {
		t.Errorf("unexpected error body: %+v", body.Error)
	}
}
