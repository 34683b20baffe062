package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mandalnilabja/vecway/internal/app"
	"github.com/mandalnilabja/vecway/internal/config"
	"github.com/mandalnilabja/vecway/internal/format"
	"github.com/mandalnilabja/vecway/internal/provider"
	"github.com/mandalnilabja/vecway/internal/provider/vecmul"
	"github.com/mandalnilabja/vecway/internal/storage"
	"github.com/mandalnilabja/vecway/internal/tokenizer"
	"github.com/mandalnilabja/vecway/internal/transport/http/handler"
	"github.com/mandalnilabja/vecway/internal/transport/http/handler/admin"
	"github.com/mandalnilabja/vecway/internal/transport/http/handler/proxy"
	"github.com/mandalnilabja/vecway/internal/transport/http/middleware/ratelimit"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "vecway: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	if err := config.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := config.EnsureConfigFile(); err != nil {
		return fmt.Errorf("create config file: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := setupLogger(cfg.LogLevel)
	printStartupBanner(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startTime := time.Now()
	router := provider.NewRouter(cfg.Models)
	prov := vecmul.New(cfg.Backend, logger)

	var store storage.Storage
	var adminHandlers *admin.Handlers
	if cfg.EnableRequestLog {
		store, err = storage.NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer store.Close()

		statsCache, err := admin.NewStatsCache()
		if err != nil {
			return fmt.Errorf("create stats cache: %w", err)
		}
		defer statsCache.Close()

		adminHandlers = admin.New(store, statsCache, startTime, admin.Info{
			Provider:   prov.Name(),
			BackendURL: cfg.Backend.URL,
			Models:     len(router.Aliases()),
			DataDir:    config.DataDir(),
		}, logger)
	}

	proxyHandlers := proxy.New(prov, router, format.New(cfg.OwnedBy), store, tokenizer.New(), logger)
	// Deferred after store.Close, so pending log writes land first
	defer proxyHandlers.Wait()
	repo := handler.NewRepo(proxyHandlers, adminHandlers, startTime)

	var limiter *ratelimit.Limiter
	if cfg.RateLimit > 0 {
		limiter = ratelimit.New(cfg.RateLimit)
		go sweepLimiter(ctx, limiter)
	}

	srv := app.NewServer(cfg, app.NewRouter(repo, &app.RouterOptions{
		Logger:    logger,
		AppSecret: cfg.AppSecret,
		Limiter:   limiter,
	}), logger)

	if err := srv.Start(ctx); err != nil {
		logger.Error("server stopped", "error", err)
		return err
	}
	logger.Info("server stopped")
	return nil
}

// sweepLimiter drops idle rate limit buckets until ctx is done.
func sweepLimiter(ctx context.Context, limiter *ratelimit.Limiter) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Sweep()
		}
	}
}
