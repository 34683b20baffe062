package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mandalnilabja/vecway/internal/format"
	"github.com/mandalnilabja/vecway/internal/observability"
	"github.com/mandalnilabja/vecway/internal/provider"
	"github.com/mandalnilabja/vecway/internal/transport/http/handler/shared"
	"github.com/mandalnilabja/vecway/internal/transport/http/middleware"
	"github.com/mandalnilabja/vecway/internal/types"
)

// maxBodyBytes caps the request body size.
const maxBodyBytes = 10 << 20

// completion tracks one request from validation to its log entry.
type completion struct {
	requestID    string
	req          *types.ChatCompletionRequest
	backendModel string
	start        time.Time

	reply   strings.Builder
	status  int
	outcome types.Outcome
	errMsg  string
}

// ChatCompletions handles POST /v1/chat/completions. Each request opens its
// own backend session, sends the flattened conversation as a single turn
// and relays the reply, streamed as SSE or buffered into one response.
func (h *Handlers) ChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req types.ChatCompletionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("Invalid request format: "+err.Error()))
		return
	}

	logger := h.Logger.With("request_id", middleware.GetRequestID(r.Context()), "model", req.Model)

	backendModel, err := h.Router.Resolve(req.Model)
	if err != nil {
		var notAllowed *provider.ModelNotAllowedError
		if errors.As(err, &notAllowed) {
			logger.Warn("model not allowed")
			types.WriteError(w, http.StatusBadRequest, types.NewAPIErrorWithParam(err.Error(), types.ErrorTypeInvalidRequest, "model"))
			return
		}
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest(err.Error()))
		return
	}

	if len(req.Messages) == 0 {
		types.WriteError(w, http.StatusBadRequest,
			types.NewAPIErrorWithParam("messages must contain at least one message", types.ErrorTypeInvalidRequest, "messages"))
		return
	}

	logger.Info("chat completion requested", "backend_model", backendModel, "stream", req.IsStreaming(), "messages", len(req.Messages))

	c := &completion{
		requestID:    middleware.GetRequestID(r.Context()),
		req:          &req,
		backendModel: backendModel,
		start:        time.Now(),
	}
	logger = logger.With("backend_model", backendModel)

	if req.IsStreaming() {
		h.stream(w, r, c, logger)
	} else {
		h.buffered(w, r, c, logger)
	}

	h.finish(c, logger)
}

// buffered collects the whole reply and writes one chat.completion object.
func (h *Handlers) buffered(w http.ResponseWriter, r *http.Request, c *completion, logger *slog.Logger) {
	ctx := r.Context()

	session, err := h.Provider.Open(ctx)
	if err != nil {
		h.failBuffered(w, c, err, logger)
		return
	}
	defer session.Close()

	if _, err := session.SendTurn(ctx, c.req.Prompt(), c.backendModel); err != nil {
		h.failBuffered(w, c, err, logger)
		return
	}

	for text := range session.Contents(ctx) {
		c.reply.WriteString(text)
	}
	c.outcome = session.Outcome()
	c.status = http.StatusOK

	shared.WriteJSON(w, h.Formatter.FullResponse(c.reply.String(), c.backendModel), http.StatusOK)
}

func (h *Handlers) failBuffered(w http.ResponseWriter, c *completion, err error, logger *slog.Logger) {
	logger.Error("error communicating with backend", "error", err)
	c.status = http.StatusInternalServerError
	c.outcome = types.OutcomeFailed
	c.errMsg = err.Error()
	types.WriteError(w, http.StatusInternalServerError, types.ErrServer("Error communicating with Vecmul: "+err.Error()))
}

// stream relays each increment as an SSE chunk. Once headers are sent every
// path ends with exactly one final chunk and [DONE], unless the client left.
func (h *Handlers) stream(w http.ResponseWriter, r *http.Request, c *completion, logger *slog.Logger) {
	ctx := r.Context()
	rc := http.NewResponseController(w)

	observability.StreamingConnections.Inc()
	defer observability.StreamingConnections.Dec()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	c.status = http.StatusOK

	sse := &sseWriter{w: w, rc: rc, formatter: h.Formatter, model: c.backendModel}

	session, err := h.Provider.Open(ctx)
	if err != nil {
		h.failStream(sse, c, err, logger)
		return
	}
	defer session.Close()

	if _, err := session.SendTurn(ctx, c.req.Prompt(), c.backendModel); err != nil {
		h.failStream(sse, c, err, logger)
		return
	}

	for text := range session.Contents(ctx) {
		c.reply.WriteString(text)
		if err := sse.chunk(text, false); err != nil {
			logger.Info("client stopped reading", "error", err)
			break
		}
	}
	c.outcome = session.Outcome()

	if sse.err != nil || ctx.Err() != nil {
		return
	}
	if err := sse.finish(""); err != nil {
		logger.Info("client stopped reading", "error", err)
	}
}

func (h *Handlers) failStream(sse *sseWriter, c *completion, err error, logger *slog.Logger) {
	logger.Error("error in stream generation", "error", err)
	c.outcome = types.OutcomeFailed
	c.errMsg = err.Error()
	_ = sse.finish(format.ErrorContent)
}

// sseWriter writes chunks and remembers the first write failure.
type sseWriter struct {
	w         http.ResponseWriter
	rc        *http.ResponseController
	formatter *format.Formatter
	model     string
	err       error
}

func (s *sseWriter) chunk(text string, final bool) error {
	if s.err != nil {
		return s.err
	}
	data, err := s.formatter.EncodeSSE(s.formatter.StreamChunk(text, s.model, final))
	if err != nil {
		s.err = err
		return err
	}
	return s.write(data)
}

// finish sends the final chunk with finish_reason "stop" followed by [DONE].
func (s *sseWriter) finish(text string) error {
	if err := s.chunk(text, true); err != nil {
		return err
	}
	return s.write([]byte(types.SSEDone))
}

func (s *sseWriter) write(data []byte) error {
	if s.err != nil {
		return s.err
	}
	if _, err := s.w.Write(data); err != nil {
		s.err = err
		return err
	}
	if err := s.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		s.err = err
		return err
	}
	return nil
}

// finish records metrics and, when storage is configured, persists the
// request log after the response has been written.
func (h *Handlers) finish(c *completion, logger *slog.Logger) {
	duration := time.Since(c.start)
	stream := strconv.FormatBool(c.req.IsStreaming())

	observability.CompletionsTotal.WithLabelValues(c.backendModel, stream, string(c.outcome)).Inc()

	level := slog.LevelInfo
	if c.outcome != types.OutcomeCompleted {
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, "chat completion finished",
		"outcome", c.outcome,
		"status", c.status,
		"reply_chars", c.reply.Len(),
		"duration_ms", duration.Milliseconds(),
	)

	if h.Storage == nil {
		return
	}
	h.pending.Go(func() { h.logCompletion(c, duration) })
}
