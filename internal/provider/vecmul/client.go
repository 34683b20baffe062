// Package vecmul implements the Vecmul WebSocket chat backend.
package vecmul

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/mandalnilabja/vecway/internal/config"
	"github.com/mandalnilabja/vecway/internal/observability"
	"github.com/mandalnilabja/vecway/internal/types"
)

// ConnectionError is returned when the WebSocket handshake cannot complete.
type ConnectionError struct {
	URL        string
	StatusCode int // set when the server answered the upgrade with an HTTP status
	Err        error
}

func (e *ConnectionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("connect to %s: handshake rejected with status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("connect to %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Provider opens one WebSocket session per chat request.
type Provider struct {
	cfg    config.Backend
	dialer *websocket.Dialer
	logger *slog.Logger
}

// New creates a Vecmul provider for the configured endpoint.
func New(cfg config.Backend, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		cfg: cfg,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
			// Negotiates permessage-deflate like the browser client.
			EnableCompression: true,
		},
		logger: logger.With("provider", "vecmul"),
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "vecmul"
}

// Open dials the backend. The session is closed when ctx is done, in
// addition to explicit Close calls.
func (p *Provider) Open(ctx context.Context) (types.Session, error) {
	conn, resp, err := p.dialer.DialContext(ctx, p.cfg.URL, p.handshakeHeaders())
	if err != nil {
		observability.BackendDialsTotal.WithLabelValues("error").Inc()
		cerr := &ConnectionError{URL: p.cfg.URL, Err: err}
		if resp != nil {
			cerr.StatusCode = resp.StatusCode
			_ = resp.Body.Close()
		}
		p.logger.Error("backend connection failed", "error", cerr)
		return nil, cerr
	}
	observability.BackendDialsTotal.WithLabelValues("ok").Inc()

	return newSession(ctx, conn, p.cfg, p.logger), nil
}

// handshakeHeaders returns the browser-like header set the backend expects.
// Sec-WebSocket-Key is generated fresh by the dialer on every connection.
func (p *Provider) handshakeHeaders() http.Header {
	h := http.Header{}
	h.Set("Accept-Encoding", p.cfg.AcceptEncoding)
	h.Set("Accept-Language", p.cfg.AcceptLanguage)
	h.Set("Cache-Control", "no-cache")
	h.Set("Pragma", "no-cache")
	h.Set("Origin", p.cfg.Origin)
	h.Set("User-Agent", p.cfg.UserAgent)
	return h
}
