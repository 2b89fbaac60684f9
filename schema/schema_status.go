package schema

import "time"

// CacheStatus represents the status of the report cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// HistoryStatus represents the status of the report history store.
type HistoryStatus struct {
	Backend                string           `json:"backend"`
	Connected              bool             `json:"connected"`
	TotalRuns              int              `json:"total_runs"`
	LastRunID              int64            `json:"last_run_id"`
	LastRunTime            time.Time        `json:"last_run_time"`
	OldestRunTime          time.Time        `json:"oldest_run_time"`
	TotalConsultantsScored int              `json:"total_consultants_scored"`
	TableSizes             map[string]int64 `json:"table_sizes"`
}

// ReportRunRecord represents a row from the coverspot_report_runs table.
type ReportRunRecord struct {
	RunID               int64
	StartTime           time.Time
	EndTime             *time.Time
	RunDurationMs       *int32
	TotalConsultants    int32
	IncludedConsultants int32
	RecordSetVersion    string
	ConfigParams        *string
}

// ConsultantScore is the per-consultant outcome stored for a history run.
type ConsultantScore struct {
	RecordIndex              int
	FullName                 string
	Email                    string
	Department               string
	Team                     string
	Lead                     string
	SinceRatio               *float64
	BeforeRatio              *float64
	OngoingAgeMonths         *int
	AnomalyScore             float64
	AnomalyFlag              bool
	AnomalyReasons           string
	LowCoverage              bool
	AvailabilityInconsistent bool
	ScoreLabel               string
}

// ConsultantScoreRecord represents a row from the coverspot_consultant_scores table.
type ConsultantScoreRecord struct {
	RunID        int64
	AnalysisTime time.Time
	ConsultantScore
}
