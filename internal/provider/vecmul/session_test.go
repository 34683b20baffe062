package vecmul

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mandalnilabja/vecway/internal/config"
	"github.com/mandalnilabja/vecway/internal/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// fakeBackend accepts one chat turn per connection, then runs script.
type fakeBackend struct {
	srv     *httptest.Server
	headers chan http.Header
	turns   chan []byte
}

func newFakeBackend(t *testing.T, script func(conn *websocket.Conn)) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{
		headers: make(chan http.Header, 1),
		turns:   make(chan []byte, 1),
	}
	fb.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.headers <- r.Header.Clone()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_, turn, err := conn.ReadMessage()
		if err != nil {
			return
		}
		fb.turns <- turn
		script(conn)
	}))
	t.Cleanup(fb.srv.Close)
	return fb
}

func (fb *fakeBackend) config() config.Backend {
	return config.Backend{
		URL:              "ws" + strings.TrimPrefix(fb.srv.URL, "http"),
		Origin:           config.DefaultBackendOrigin,
		UserAgent:        config.DefaultUserAgent,
		AcceptLanguage:   config.DefaultAcceptLanguage,
		AcceptEncoding:   config.DefaultAcceptEncoding,
		Language:         config.DefaultLanguage,
		SpaceName:        config.DefaultSpaceName,
		PingInterval:     50 * time.Millisecond,
		PingTimeout:      200 * time.Millisecond,
		HandshakeTimeout: time.Second,
	}
}

func writeJSON(t *testing.T, conn *websocket.Conn, frames ...string) {
	for _, f := range frames {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
			t.Errorf("fake backend write failed: %v", err)
			return
		}
	}
}

// drain keeps reading so pings are answered, until the client goes away.
func drain(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func collect(ctx context.Context, s types.Session) []string {
	var out []string
	for text := range s.Contents(ctx) {
		out = append(out, text)
	}
	return out
}

func TestSession_CompleteTurn(t *testing.T) {
	fb := newFakeBackend(t, func(conn *websocket.Conn) {
		writeJSON(t, conn,
			`{"type":"HELLO"}`,
			`{"type":"AI_STREAM_MESSAGE","data":{"role":"assistant","content":"Hel"}}`,
			`{"type":"AI_STREAM_MESSAGE","data":{"role":"assistant","content":"lo"}}`,
			`{"type":"RELATED_LINKS","data":[]}`,
			`{"type":"NEW_CHAT_CREATED","data":{}}`,
		)
		drain(conn)
	})

	p := New(fb.config(), discardLogger())
	ctx := context.Background()

	session, err := p.Open(ctx)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer session.Close()

	id, err := session.SendTurn(ctx, "User: Hi", "GPT-4o")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	got := collect(ctx, session)
	if !slices.Equal(got, []string{"Hel", "lo"}) {
		t.Errorf("unexpected contents %q", got)
	}
	if session.Outcome() != types.OutcomeCompleted {
		t.Errorf("expected completed, got %q", session.Outcome())
	}

	var turn struct {
		Type      string         `json:"type"`
		SpaceName string         `json:"spaceName"`
		Message   map[string]any `json:"message"`
	}
	if err := json.Unmarshal(<-fb.turns, &turn); err != nil {
		t.Fatalf("turn is not JSON: %v", err)
	}
	if turn.Type != "CHAT" || turn.SpaceName != config.DefaultSpaceName {
		t.Errorf("unexpected envelope %+v", turn)
	}
	if turn.Message["content"] != "User: Hi" || turn.Message["model"] != "GPT-4o" {
		t.Errorf("unexpected message %v", turn.Message)
	}
	if turn.Message["rootMsgId"] != id {
		t.Errorf("expected rootMsgId %q, got %v", id, turn.Message["rootMsgId"])
	}

	// The sequence is single-use.
	if again := collect(ctx, session); len(again) != 0 {
		t.Errorf("expected second range to be empty, got %q", again)
	}
}

func TestSession_HandshakeHeaders(t *testing.T) {
	fb := newFakeBackend(t, drain)

	p := New(fb.config(), discardLogger())
	session, err := p.Open(context.Background())
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer session.Close()

	h := <-fb.headers
	want := map[string]string{
		"Origin":          config.DefaultBackendOrigin,
		"User-Agent":      config.DefaultUserAgent,
		"Accept-Language": config.DefaultAcceptLanguage,
		"Cache-Control":   "no-cache",
		"Pragma":          "no-cache",
	}
	for key, value := range want {
		if got := h.Get(key); got != value {
			t.Errorf("%s: expected %q, got %q", key, value, got)
		}
	}
	if h.Get("Sec-WebSocket-Key") == "" {
		t.Error("expected a Sec-WebSocket-Key")
	}
	if !strings.Contains(h.Get("Sec-WebSocket-Extensions"), "permessage-deflate") {
		t.Errorf("expected permessage-deflate offer, got %q", h.Get("Sec-WebSocket-Extensions"))
	}
}

func TestSession_FreshKeyPerConnection(t *testing.T) {
	fb := newFakeBackend(t, drain)
	p := New(fb.config(), discardLogger())

	keys := map[string]bool{}
	for range 2 {
		session, err := p.Open(context.Background())
		if err != nil {
			t.Fatalf("open failed: %v", err)
		}
		keys[(<-fb.headers).Get("Sec-WebSocket-Key")] = true
		session.Close()
	}
	if len(keys) != 2 {
		t.Errorf("expected distinct keys, got %v", keys)
	}
}

func TestSession_BackendClosesConnection(t *testing.T) {
	fb := newFakeBackend(t, func(conn *websocket.Conn) {
		writeJSON(t, conn, `{"type":"AI_STREAM_MESSAGE","data":{"role":"assistant","content":"part"}}`)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "restart"), time.Now().Add(time.Second))
	})

	p := New(fb.config(), discardLogger())
	ctx := context.Background()
	session, err := p.Open(ctx)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer session.Close()

	if _, err := session.SendTurn(ctx, "User: Hi", "GPT-4o"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	got := collect(ctx, session)
	if !slices.Equal(got, []string{"part"}) {
		t.Errorf("unexpected contents %q", got)
	}
	if session.Outcome() != types.OutcomeDisconnected {
		t.Errorf("expected disconnected, got %q", session.Outcome())
	}
}

func TestSession_HeartbeatLost(t *testing.T) {
	release := make(chan struct{})
	fb := newFakeBackend(t, func(conn *websocket.Conn) {
		// Stop reading so pings go unanswered.
		<-release
	})
	defer close(release)

	p := New(fb.config(), discardLogger())
	ctx := context.Background()
	session, err := p.Open(ctx)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer session.Close()

	if _, err := session.SendTurn(ctx, "User: Hi", "GPT-4o"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	start := time.Now()
	got := collect(ctx, session)
	if len(got) != 0 {
		t.Errorf("expected no contents, got %q", got)
	}
	if session.Outcome() != types.OutcomeDisconnected {
		t.Errorf("expected disconnected, got %q", session.Outcome())
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("heartbeat loss took %v to detect", elapsed)
	}
}

func TestSession_ContextCanceled(t *testing.T) {
	fb := newFakeBackend(t, func(conn *websocket.Conn) {
		writeJSON(t, conn, `{"type":"AI_STREAM_MESSAGE","data":{"role":"assistant","content":"first"}}`)
		drain(conn)
	})

	p := New(fb.config(), discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session, err := p.Open(ctx)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer session.Close()

	if _, err := session.SendTurn(ctx, "User: Hi", "GPT-4o"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	var got []string
	for text := range session.Contents(ctx) {
		got = append(got, text)
		cancel()
	}
	if !slices.Equal(got, []string{"first"}) {
		t.Errorf("unexpected contents %q", got)
	}
	if session.Outcome() != types.OutcomeCanceled {
		t.Errorf("expected canceled, got %q", session.Outcome())
	}
}

func TestSession_AlreadyCanceledContext(t *testing.T) {
	fb := newFakeBackend(t, drain)
	cfg := fb.config()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := range 20 {
		conn, _, err := websocket.DefaultDialer.Dial(cfg.URL, nil)
		if err != nil {
			t.Fatalf("dial %d failed: %v", i, err)
		}
		<-fb.headers

		s := newSession(ctx, conn, cfg, discardLogger())
		select {
		case <-s.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("session %d not closed by canceled context", i)
		}
		if _, err := s.SendTurn(context.Background(), "User: Hi", "GPT-4o"); !errors.Is(err, ErrSessionClosed) {
			t.Errorf("expected ErrSessionClosed, got %v", err)
		}
		if err := s.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			t.Errorf("unexpected close error: %v", err)
		}
	}
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	fb := newFakeBackend(t, drain)
	p := New(fb.config(), discardLogger())

	session, err := p.Open(context.Background())
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	first := session.Close()
	second := session.Close()
	if first != second {
		t.Errorf("expected repeated Close to return %v, got %v", first, second)
	}

	if _, err := session.SendTurn(context.Background(), "User: Hi", "GPT-4o"); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed, got %v", err)
	}
}

func TestProvider_OpenRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	cfg := config.Backend{
		URL:              "ws" + strings.TrimPrefix(srv.URL, "http"),
		PingInterval:     time.Second,
		PingTimeout:      time.Second,
		HandshakeTimeout: time.Second,
	}
	_, err := New(cfg, discardLogger()).Open(context.Background())

	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected *ConnectionError, got %T (%v)", err, err)
	}
	if connErr.StatusCode != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", connErr.StatusCode)
	}
	if !errors.Is(err, websocket.ErrBadHandshake) {
		t.Errorf("expected wrapped ErrBadHandshake, got %v", connErr.Err)
	}
}

func TestProvider_OpenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	cfg := config.Backend{URL: url, PingInterval: time.Second, PingTimeout: time.Second, HandshakeTimeout: time.Second}
	_, err := New(cfg, discardLogger()).Open(context.Background())

	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected *ConnectionError, got %T (%v)", err, err)
	}
	if connErr.StatusCode != 0 {
		t.Errorf("expected no status, got %d", connErr.StatusCode)
	}
}

func TestProvider_Name(t *testing.T) {
	if got := New(config.Backend{}, nil).Name(); got != "vecmul" {
		t.Errorf("expected vecmul, got %q", got)
	}
}
