// Package format shapes backend text into OpenAI chat-completion objects.
// It performs no I/O.
package format

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mandalnilabja/vecway/internal/types"
)

// ErrorContent is sent as the final chunk when a stream fails after the
// response has been committed.
const ErrorContent = "Error occurred during response generation"

// Formatter builds response objects. The zero value is not usable; use New.
type Formatter struct {
	ownedBy string
	now     func() time.Time
	newID   func() string
}

// Option customizes a Formatter.
type Option func(*Formatter)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(f *Formatter) { f.now = now }
}

// WithIDGenerator overrides the completion id source.
func WithIDGenerator(newID func() string) Option {
	return func(f *Formatter) { f.newID = newID }
}

// New creates a Formatter reporting ownedBy in model listings.
func New(ownedBy string, opts ...Option) *Formatter {
	f := &Formatter{
		ownedBy: ownedBy,
		now:     time.Now,
		newID:   func() string { return "chatcmpl-" + uuid.New().String() },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// StreamChunk wraps one text increment. The final chunk carries
// finish_reason "stop"; all others carry null.
func (f *Formatter) StreamChunk(text, model string, final bool) *types.ChatCompletionChunk {
	var finish *string
	if final {
		reason := types.FinishReasonStop
		finish = &reason
	}

	return &types.ChatCompletionChunk{
		ID:      f.newID(),
		Object:  types.ObjectChatCompletionChunk,
		Created: f.now().Unix(),
		Model:   model,
		Choices: []types.ChunkChoice{{
			Index:        0,
			Delta:        types.Delta{Role: types.RoleAssistant, Content: text},
			FinishReason: finish,
		}},
	}
}

// FullResponse wraps the aggregated text of a non-streaming request.
func (f *Formatter) FullResponse(text, model string) *types.ChatCompletionResponse {
	return &types.ChatCompletionResponse{
		ID:      f.newID(),
		Object:  types.ObjectChatCompletion,
		Created: f.now().Unix(),
		Model:   model,
		Choices: []types.Choice{{
			Index:        0,
			Message:      types.NewTextMessage(types.RoleAssistant, text),
			FinishReason: types.FinishReasonStop,
		}},
	}
}

// EncodeSSE renders a chunk as a single "data: {...}\n\n" event.
func (f *Formatter) EncodeSSE(chunk *types.ChatCompletionChunk) ([]byte, error) {
	data, err := json.Marshal(chunk)
	if err != nil {
		return nil, err
	}
	return types.FormatSSE(data), nil
}

// ModelList lists every caller-facing alias once, sorted by id.
func (f *Formatter) ModelList(aliases []string) *types.ModelList {
	ids := dedupe(aliases)
	sort.Strings(ids)

	created := f.now().Unix()
	data := make([]types.Model, 0, len(ids))
	for _, id := range ids {
		data = append(data, f.Model(id, created))
	}
	return &types.ModelList{Object: types.ObjectList, Data: data}
}

// Model describes a single alias.
func (f *Formatter) Model(id string, created int64) types.Model {
	return types.Model{
		ID:      id,
		Object:  types.ObjectModel,
		Created: created,
		OwnedBy: f.ownedBy,
	}
}

// Now returns the formatter's current time in unix seconds.
func (f *Formatter) Now() int64 {
	return f.now().Unix()
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
