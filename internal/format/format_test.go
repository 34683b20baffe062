package format

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mandalnilabja/vecway/internal/types"
)

func fixed() *Formatter {
	n := 0
	return New("openai",
		WithClock(func() time.Time { return time.Unix(1700000000, 0) }),
		WithIDGenerator(func() string {
			n++
			return "chatcmpl-" + strings.Repeat("x", n)
		}),
	)
}

func TestStreamChunk(t *testing.T) {
	f := fixed()

	tests := []struct {
		name       string
		text       string
		final      bool
		wantFinish string
	}{
		{"content chunk", "Hel", false, ""},
		{"final chunk", "", true, types.FinishReasonStop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := f.StreamChunk(tt.text, "GPT-4o", tt.final)

			if c.Object != types.ObjectChatCompletionChunk {
				t.Errorf("expected object %q, got %q", types.ObjectChatCompletionChunk, c.Object)
			}
			if c.Created != 1700000000 {
				t.Errorf("unexpected created %d", c.Created)
			}
			if c.Model != "GPT-4o" {
				t.Errorf("unexpected model %q", c.Model)
			}
			if len(c.Choices) != 1 {
				t.Fatalf("expected 1 choice, got %d", len(c.Choices))
			}
			choice := c.Choices[0]
			if choice.Delta.Content != tt.text || choice.Delta.Role != types.RoleAssistant {
				t.Errorf("unexpected delta %+v", choice.Delta)
			}
			if choice.IsFinalChunk() != tt.final {
				t.Errorf("expected final=%v", tt.final)
			}
			if choice.GetFinishReason() != tt.wantFinish {
				t.Errorf("expected finish %q, got %q", tt.wantFinish, choice.GetFinishReason())
			}
		})
	}
}

func TestStreamChunk_UniqueIDs(t *testing.T) {
	f := New("openai")
	a := f.StreamChunk("a", "m", false)
	b := f.StreamChunk("b", "m", false)
	if a.ID == b.ID {
		t.Errorf("expected distinct ids, both %q", a.ID)
	}
	if !strings.HasPrefix(a.ID, "chatcmpl-") {
		t.Errorf("expected chatcmpl- prefix, got %q", a.ID)
	}
}

func TestFullResponse(t *testing.T) {
	resp := fixed().FullResponse("Hello", "GPT-4o")

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded["object"] != "chat.completion" {
		t.Errorf("unexpected object %v", decoded["object"])
	}
	if v, ok := decoded["usage"]; !ok || v != nil {
		t.Errorf("expected usage null, got %v (present=%v)", v, ok)
	}

	choice := decoded["choices"].([]any)[0].(map[string]any)
	if choice["finish_reason"] != "stop" {
		t.Errorf("expected finish_reason stop, got %v", choice["finish_reason"])
	}
	if _, ok := choice["delta"]; ok {
		t.Error("full response must not carry delta")
	}
	msg := choice["message"].(map[string]any)
	if msg["content"] != "Hello" || msg["role"] != "assistant" {
		t.Errorf("unexpected message %v", msg)
	}
}

func TestEncodeSSE(t *testing.T) {
	f := fixed()
	data, err := f.EncodeSSE(f.StreamChunk("Hi", "GPT-4", false))
	if err != nil {
		t.Fatalf("EncodeSSE failed: %v", err)
	}

	s := string(data)
	if !strings.HasPrefix(s, "data: {") || !strings.HasSuffix(s, "}\n\n") {
		t.Fatalf("unexpected framing: %q", s)
	}

	var chunk map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSuffix(strings.TrimPrefix(s, "data: "), "\n\n")), &chunk); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	choice := chunk["choices"].([]any)[0].(map[string]any)
	if choice["finish_reason"] != nil {
		t.Errorf("expected null finish_reason, got %v", choice["finish_reason"])
	}
}

func TestModelList(t *testing.T) {
	list := fixed().ModelList([]string{"gpt-4o", "GPT-4o", "gpt-4o", "claude-3-opus"})

	if list.Object != "list" {
		t.Errorf("unexpected object %q", list.Object)
	}
	want := []string{"GPT-4o", "claude-3-opus", "gpt-4o"}
	if len(list.Data) != len(want) {
		t.Fatalf("expected %d models, got %d", len(want), len(list.Data))
	}
	for i, id := range want {
		m := list.Data[i]
		if m.ID != id || m.Object != "model" || m.OwnedBy != "openai" || m.Created != 1700000000 {
			t.Errorf("entry %d: unexpected %+v", i, m)
		}
	}
}
