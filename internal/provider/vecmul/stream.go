package vecmul

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"

	"github.com/gorilla/websocket"
	"github.com/mandalnilabja/vecway/internal/observability"
	"github.com/mandalnilabja/vecway/internal/types"
)

// maxLoggedFrame caps how much of an undecodable frame ends up in the log.
const maxLoggedFrame = 512

// frameReader is the receive half of a WebSocket connection.
type frameReader interface {
	ReadMessage() (messageType int, p []byte, err error)
}

// filterContents reads frames one at a time and yields assistant text until
// a terminal frame or a receive error:
//
//	AI_STREAM_MESSAGE (assistant)  yield text, continue
//	ERROR                          log, end (backend_error)
//	NEW_CHAT_CREATED               end (completed)
//	HELLO, RELATED_LINKS, other    skip
//	undecodable                    log, skip
//	close / deadline               end (disconnected)
//	anything else                  log, end (failed)
//
// Receive errors never escape: the caller only sees the sequence end.
func filterContents(ctx context.Context, r frameReader, logger *slog.Logger, yield func(string) bool) types.Outcome {
	for {
		_, data, err := r.ReadMessage()
		if err != nil {
			return classifyReadError(ctx, err, logger)
		}

		frame, err := DecodeFrame(data)
		if err != nil {
			observability.BackendFramesTotal.WithLabelValues("malformed").Inc()
			logger.Warn("skipping undecodable backend frame", "error", err, "frame", truncate(data))
			continue
		}
		observability.BackendFramesTotal.WithLabelValues(frameLabel(frame.Type)).Inc()

		switch frame.Kind {
		case KindAssistantContent:
			if !yield(frame.Text) {
				return types.OutcomeAbandoned
			}
		case KindError:
			logger.Error("backend reported an error", "frame", truncate(data))
			return types.OutcomeBackendError
		case KindNewChatCreated:
			return types.OutcomeCompleted
		default:
			logger.Debug("skipping backend frame", "frame_type", frame.Type)
		}
	}
}

// classifyReadError maps a receive failure to a terminal outcome.
func classifyReadError(ctx context.Context, err error, logger *slog.Logger) types.Outcome {
	if ctx.Err() != nil {
		logger.Info("backend stream canceled", "error", ctx.Err())
		return types.OutcomeCanceled
	}

	var closeErr *websocket.CloseError
	var netErr net.Error
	switch {
	case errors.As(err, &closeErr):
		logger.Warn("backend connection closed", "code", closeErr.Code, "text", closeErr.Text)
		return types.OutcomeDisconnected
	case errors.As(err, &netErr) && netErr.Timeout():
		logger.Warn("backend heartbeat lost", "error", err)
		return types.OutcomeDisconnected
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, net.ErrClosed):
		logger.Warn("backend connection closed", "error", err)
		return types.OutcomeDisconnected
	default:
		logger.Error("unexpected error receiving backend frame", "error", err)
		return types.OutcomeFailed
	}
}

// frameLabel keeps metric cardinality bounded: unknown types collapse to "other".
func frameLabel(frameType string) string {
	switch frameType {
	case FrameHello, FrameAIStreamMessage, FrameRelatedLinks, FrameError, FrameNewChatCreated:
		return frameType
	default:
		return "other"
	}
}

func truncate(data []byte) string {
	if len(data) > maxLoggedFrame {
		return string(data[:maxLoggedFrame]) + "..."
	}
	return string(data)
}
