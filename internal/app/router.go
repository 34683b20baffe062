package app

import (
	"log/slog"
	"net/http"

	"github.com/mandalnilabja/vecway/internal/observability"
	"github.com/mandalnilabja/vecway/internal/transport/http/handler"
	"github.com/mandalnilabja/vecway/internal/transport/http/middleware"
	"github.com/mandalnilabja/vecway/internal/transport/http/middleware/auth"
	"github.com/mandalnilabja/vecway/internal/transport/http/middleware/ratelimit"
)

// RouterOptions configures the HTTP router behavior.
type RouterOptions struct {
	Logger *slog.Logger
	// AppSecret is the bearer token required on /v1 and /api/admin routes.
	AppSecret string
	// Limiter throttles /v1 routes per client IP. Nil disables limiting.
	Limiter *ratelimit.Limiter
}

// NewRouter creates and configures the HTTP router with all application routes.
// Returns an http.Handler with middleware applied.
func NewRouter(repo *handler.Repo, opts *RouterOptions) http.Handler {
	mux := http.NewServeMux()

	// Public routes (no auth)
	mux.HandleFunc("GET /api/health", repo.Infra.HealthCheck)
	mux.Handle("GET /metrics", observability.Handler())

	secretAuth := auth.SharedSecret(opts.AppSecret)
	withAuth := func(h http.HandlerFunc) http.Handler {
		var next http.Handler = h
		if opts.Limiter != nil {
			next = ratelimit.Middleware(opts.Limiter)(next)
		}
		return secretAuth(next)
	}

	// Proxy routes
	mux.Handle("POST /v1/chat/completions", withAuth(repo.Proxy.ChatCompletions))
	mux.Handle("GET /v1/models", withAuth(repo.Proxy.ListModels))
	mux.Handle("GET /v1/models/{model}", withAuth(repo.Proxy.GetModel))

	if repo.Admin != nil {
		registerAdminRoutes(mux, repo, secretAuth)
	}

	mux.HandleFunc("GET /", repo.Infra.RootStatus)

	// Apply middleware chain (order: inner to outer)
	var h http.Handler = observability.MetricsMiddleware(mux)

	if opts.Logger != nil {
		h = middleware.RequestLogger(opts.Logger)(h)
	}
	h = middleware.RequestID(h)
	h = middleware.CORS(h)

	return h
}

// registerAdminRoutes adds the usage and request log routes.
func registerAdminRoutes(mux *http.ServeMux, repo *handler.Repo, secretAuth func(http.Handler) http.Handler) {
	withAuth := func(h http.HandlerFunc) http.Handler {
		return secretAuth(h)
	}

	mux.Handle("GET /api/admin/usage", withAuth(repo.Admin.GetUsageStats))
	mux.Handle("GET /api/admin/usage/daily", withAuth(repo.Admin.GetDailyUsage))
	mux.Handle("GET /api/admin/logs", withAuth(repo.Admin.GetRequestLogs))
	mux.Handle("DELETE /api/admin/logs", withAuth(repo.Admin.DeleteRequestLogs))
	mux.Handle("GET /api/admin/info", withAuth(repo.Admin.AdminInfo))
}
