// Package handler composes the HTTP handler groups.
package handler

import (
	"time"

	"github.com/mandalnilabja/vecway/internal/transport/http/handler/admin"
	"github.com/mandalnilabja/vecway/internal/transport/http/handler/infra"
	"github.com/mandalnilabja/vecway/internal/transport/http/handler/proxy"
)

// Repo composes all domain-specific handlers. Admin is nil when the
// request log is disabled.
type Repo struct {
	Admin *admin.Handlers
	Proxy *proxy.Handlers
	Infra *infra.Handlers
}

// NewRepo creates a new instance of the composed handler repository.
func NewRepo(proxyHandlers *proxy.Handlers, adminHandlers *admin.Handlers, startTime time.Time) *Repo {
	return &Repo{
		Admin: adminHandlers,
		Proxy: proxyHandlers,
		Infra: infra.New(startTime),
	}
}
