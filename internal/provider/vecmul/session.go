package vecmul

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mandalnilabja/vecway/internal/config"
	"github.com/mandalnilabja/vecway/internal/observability"
	"github.com/mandalnilabja/vecway/internal/types"
)

// ErrSessionClosed is returned when sending on a closed session.
var ErrSessionClosed = errors.New("session closed")

const (
	writeWait = 10 * time.Second
	closeWait = time.Second
)

// Session is one backend WebSocket connection carrying a single chat turn.
type Session struct {
	conn         *websocket.Conn
	logger       *slog.Logger
	language     string
	spaceName    string
	pingInterval time.Duration
	pingTimeout  time.Duration

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
	stopWatch func() bool
	consumed  atomic.Bool

	mu            sync.Mutex
	outcome       types.Outcome
	correlationID string
}

func newSession(ctx context.Context, conn *websocket.Conn, cfg config.Backend, logger *slog.Logger) *Session {
	s := &Session{
		conn:         conn,
		logger:       logger,
		language:     cfg.Language,
		spaceName:    cfg.SpaceName,
		pingInterval: cfg.PingInterval,
		pingTimeout:  cfg.PingTimeout,
		done:         make(chan struct{}),
		outcome:      types.OutcomePending,
	}

	// A pong or any frame proves the peer alive; without either the read
	// deadline expires and the stream ends as disconnected.
	s.extendDeadline()
	conn.SetPongHandler(func(string) error {
		s.extendDeadline()
		return nil
	})

	observability.BackendSessionsActive.Inc()
	go s.heartbeat()

	// An already-canceled ctx runs the callback at once; mu holds Close
	// off until stopWatch is assigned.
	s.mu.Lock()
	s.stopWatch = context.AfterFunc(ctx, func() { _ = s.Close() })
	s.mu.Unlock()

	return s
}

// SendTurn writes the CHAT frame for prompt and returns its root message id.
func (s *Session) SendTurn(ctx context.Context, prompt, model string) (string, error) {
	select {
	case <-s.done:
		return "", ErrSessionClosed
	default:
	}

	rootMsgID := uuid.New().String()
	data, err := json.Marshal(newChatFrame(prompt, rootMsgID, model, s.language, s.spaceName))
	if err != nil {
		return "", fmt.Errorf("encode chat frame: %w", err)
	}

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = s.conn.SetWriteDeadline(deadline)

	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return "", fmt.Errorf("send chat turn: %w", err)
	}

	s.mu.Lock()
	s.correlationID = rootMsgID
	s.mu.Unlock()

	s.logger.Debug("chat turn sent", "correlation_id", rootMsgID, "model", model, "prompt_chars", len(prompt))
	return rootMsgID, nil
}

// Contents returns the assistant text of the reply. See filterContents for
// the terminal conditions. Only the first range over the sequence reads
// from the connection; later ones yield nothing.
func (s *Session) Contents(ctx context.Context) iter.Seq[string] {
	return func(yield func(string) bool) {
		if !s.consumed.CompareAndSwap(false, true) {
			return
		}

		s.mu.Lock()
		logger := s.logger.With("correlation_id", s.correlationID)
		s.mu.Unlock()

		outcome := filterContents(ctx, s, logger, yield)

		s.mu.Lock()
		s.outcome = outcome
		s.mu.Unlock()
		observability.BackendOutcomesTotal.WithLabelValues(string(outcome)).Inc()
	}
}

// Outcome reports why the content stream ended.
func (s *Session) Outcome() types.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// Close sends a close frame, stops the heartbeat and closes the socket.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)

		s.mu.Lock()
		stop := s.stopWatch
		s.mu.Unlock()
		if stop != nil {
			stop()
		}

		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeWait))
		s.closeErr = s.conn.Close()
		observability.BackendSessionsActive.Dec()
	})
	return s.closeErr
}

// ReadMessage reads the next frame and counts it as a sign of life.
func (s *Session) ReadMessage() (int, []byte, error) {
	messageType, data, err := s.conn.ReadMessage()
	if err == nil {
		s.extendDeadline()
	}
	return messageType, data, err
}

func (s *Session) extendDeadline() {
	_ = s.conn.SetReadDeadline(time.Now().Add(s.pingInterval + s.pingTimeout))
}

// heartbeat pings the backend every pingInterval until the session closes.
func (s *Session) heartbeat() {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.pingTimeout)); err != nil {
				s.logger.Debug("backend ping failed", "error", err)
				return
			}
		}
	}
}
