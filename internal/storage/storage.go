// Package storage provides the storage interface and implementations.
package storage

import (
	"github.com/mandalnilabja/vecway/internal/storage/models"
	"github.com/mandalnilabja/vecway/internal/storage/sqlite"
)

// Re-export types from models package for convenience
type (
	RequestLog  = models.RequestLog
	LogFilter   = models.LogFilter
	DailyUsage  = models.DailyUsage
	ModelStats  = models.ModelStats
	UsageStats  = models.UsageStats
	StatsFilter = models.StatsFilter
)

// Re-export errors from sqlite package
var (
	ErrInvalidInput  = sqlite.ErrInvalidInput
	ErrStorageClosed = sqlite.ErrStorageClosed
)

// Storage defines the interface for persistent data storage
type Storage interface {
	// Request logging operations
	LogRequest(log *models.RequestLog) error
	GetRequestLogs(filter models.LogFilter) ([]*models.RequestLog, error)
	DeleteRequestLogs(olderThan string) (int64, error)

	// Usage statistics operations
	GetUsageStats(filter models.StatsFilter) (*models.UsageStats, error)
	GetDailyUsage(startDate, endDate string) ([]*models.DailyUsage, error)
	UpdateDailyUsage(usage *models.DailyUsage) error

	// Maintenance operations
	Close() error
}

// NewSQLiteStorage creates a new SQLite storage instance
// This is the main factory function for creating storage
func NewSQLiteStorage(dbPath string) (Storage, error) {
	return sqlite.New(dbPath)
}
