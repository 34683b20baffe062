// Package proxy serves the OpenAI-compatible /v1 endpoints on top of a
// session-per-request chat backend.
package proxy

import (
	"log/slog"
	"sync"

	"github.com/mandalnilabja/vecway/internal/format"
	"github.com/mandalnilabja/vecway/internal/provider"
	"github.com/mandalnilabja/vecway/internal/storage"
	"github.com/mandalnilabja/vecway/internal/tokenizer"
	"github.com/mandalnilabja/vecway/internal/types"
)

// Handlers holds the dependencies for proxy HTTP handlers.
// Storage and Tokenizer are optional; without Storage nothing is persisted.
type Handlers struct {
	Provider  types.Provider
	Router    *provider.Router
	Formatter *format.Formatter
	Storage   storage.Storage
	Tokenizer tokenizer.Tokenizer
	Logger    *slog.Logger

	// pending tracks request log writes still in flight.
	pending sync.WaitGroup
}

// New creates a new instance of proxy handlers.
func New(prov types.Provider, router *provider.Router, formatter *format.Formatter,
	store storage.Storage, tok tokenizer.Tokenizer, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		Provider:  prov,
		Router:    router,
		Formatter: formatter,
		Storage:   store,
		Tokenizer: tok,
		Logger:    logger,
	}
}

// Wait blocks until every pending request log write has finished. Call it
// after the server has stopped and before closing storage.
func (h *Handlers) Wait() {
	h.pending.Wait()
}
