// Package admin serves the read-mostly admin API over the request log.
package admin

import (
	"log/slog"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/mandalnilabja/vecway/internal/storage"
)

// statsTTL bounds how stale cached usage totals may be.
const statsTTL = 30 * time.Second

// Handlers holds the dependencies for admin HTTP handlers.
type Handlers struct {
	Storage    storage.Storage
	StatsCache *ristretto.Cache[string, *storage.UsageStats]
	StartTime  time.Time
	Info       Info
	Logger     *slog.Logger
}

// Info is the static part of GET /api/admin/info.
type Info struct {
	Provider   string
	BackendURL string
	Models     int
	DataDir    string
}

// New creates a new instance of admin handlers. cache may be nil.
func New(store storage.Storage, cache *ristretto.Cache[string, *storage.UsageStats],
	startTime time.Time, info Info, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		Storage:    store,
		StatsCache: cache,
		StartTime:  startTime,
		Info:       info,
		Logger:     logger,
	}
}

// NewStatsCache creates the cache used for usage totals.
func NewStatsCache() (*ristretto.Cache[string, *storage.UsageStats], error) {
	return ristretto.NewCache(&ristretto.Config[string, *storage.UsageStats]{
		NumCounters:        1e4,
		MaxCost:            1 << 10,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
}

// cachedStats returns usage totals for filter, reading through the cache.
func (h *Handlers) cachedStats(key string, filter storage.StatsFilter) (*storage.UsageStats, bool, error) {
	if h.StatsCache != nil {
		if stats, ok := h.StatsCache.Get(key); ok {
			return stats, true, nil
		}
	}

	stats, err := h.Storage.GetUsageStats(filter)
	if err != nil {
		return nil, false, err
	}

	if h.StatsCache != nil {
		h.StatsCache.SetWithTTL(key, stats, 1, statsTTL)
	}
	return stats, false, nil
}
