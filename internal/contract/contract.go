// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/coverspot/schema"
)

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetReportStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking report runs and consultant scores.
type HistoryStore interface {
	// BeginRun creates a new report run and returns its unique ID
	BeginRun(startTime time.Time, recordSetVersion string, configParams map[string]any) (int64, error)

	// EndRun updates the report run with completion data
	EndRun(runID int64, endTime time.Time, totalConsultants, includedConsultants int) error

	// RecordConsultantScore stores the derived metrics of one consultant for a run
	RecordConsultantScore(runID int64, score schema.ConsultantScore) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllReportRuns returns every recorded run, oldest first
	GetAllReportRuns() ([]schema.ReportRunRecord, error)

	// GetAllConsultantScores returns every recorded consultant score, ordered by run
	GetAllConsultantScores() ([]schema.ConsultantScoreRecord, error)

	// Close closes the underlying connection
	Close() error
}

// OutputWriter renders results in the configured output format.
// This allows the runner to be tested without touching stdout.
type OutputWriter interface {
	WriteReport(report *schema.Report, cfg *Config, duration time.Duration) error
	WriteSegments(report *schema.Report, cfg *Config, duration time.Duration) error
	WriteRanked(list schema.RankedList, cfg *Config, duration time.Duration) error
	WriteSweep(results []schema.DimensionSegments, cfg *Config, duration time.Duration) error
	WriteCatalog(catalog schema.FilterCatalog, cfg *Config) error
}
