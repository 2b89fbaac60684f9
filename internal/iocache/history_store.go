package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/coverspot/internal/contract"
	"github.com/huangsam/coverspot/schema"
)

const (
	reportRunsTable       = "coverspot_report_runs"
	consultantScoresTable = "coverspot_consultant_scores"
)

// HistoryStoreImpl records report runs and the consultant scores they produced.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore opens the backend and creates the history tables when missing.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDatabase(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{reportRunsTable, getCreateReportRunsQuery(backend)},
		{consultantScoresTable, getCreateConsultantScoresQuery(backend)},
	}
	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

func getCreateReportRunsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(reportRunsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_consultants INT NOT NULL DEFAULT 0,
				included_consultants INT NOT NULL DEFAULT 0,
				record_set_version VARCHAR(64) NOT NULL,
				config_params TEXT
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_consultants INT NOT NULL DEFAULT 0,
				included_consultants INT NOT NULL DEFAULT 0,
				record_set_version TEXT NOT NULL,
				config_params TEXT
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_consultants INTEGER NOT NULL DEFAULT 0,
				included_consultants INTEGER NOT NULL DEFAULT 0,
				record_set_version TEXT NOT NULL,
				config_params TEXT
			);
		`, quoted)
	}
}

func getCreateConsultantScoresQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(consultantScoresTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				record_index INT NOT NULL,
				analysis_time DATETIME(6) NOT NULL,
				full_name VARCHAR(255) NOT NULL,
				email VARCHAR(255) NOT NULL,
				department VARCHAR(255) NOT NULL,
				team VARCHAR(255) NOT NULL,
				lead_name VARCHAR(255) NOT NULL,
				since_ratio DOUBLE,
				before_ratio DOUBLE,
				ongoing_age_months INT,
				anomaly_score DOUBLE NOT NULL,
				anomaly_flag BOOLEAN NOT NULL,
				anomaly_reasons VARCHAR(255) NOT NULL,
				low_coverage BOOLEAN NOT NULL,
				availability_inconsistent BOOLEAN NOT NULL,
				score_label VARCHAR(50) NOT NULL,
				PRIMARY KEY (run_id, record_index)
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				record_index INT NOT NULL,
				analysis_time TIMESTAMPTZ NOT NULL,
				full_name TEXT NOT NULL,
				email TEXT NOT NULL,
				department TEXT NOT NULL,
				team TEXT NOT NULL,
				lead_name TEXT NOT NULL,
				since_ratio DOUBLE PRECISION,
				before_ratio DOUBLE PRECISION,
				ongoing_age_months INT,
				anomaly_score DOUBLE PRECISION NOT NULL,
				anomaly_flag BOOLEAN NOT NULL,
				anomaly_reasons TEXT NOT NULL,
				low_coverage BOOLEAN NOT NULL,
				availability_inconsistent BOOLEAN NOT NULL,
				score_label TEXT NOT NULL,
				PRIMARY KEY (run_id, record_index)
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				record_index INTEGER NOT NULL,
				analysis_time TEXT NOT NULL,
				full_name TEXT NOT NULL,
				email TEXT NOT NULL,
				department TEXT NOT NULL,
				team TEXT NOT NULL,
				lead_name TEXT NOT NULL,
				since_ratio REAL,
				before_ratio REAL,
				ongoing_age_months INTEGER,
				anomaly_score REAL NOT NULL,
				anomaly_flag INTEGER NOT NULL,
				anomaly_reasons TEXT NOT NULL,
				low_coverage INTEGER NOT NULL,
				availability_inconsistent INTEGER NOT NULL,
				score_label TEXT NOT NULL,
				PRIMARY KEY (run_id, record_index)
			);
		`, quoted)
	}
}

// BeginRun creates a report run and returns its ID. The none backend returns 0.
func (hs *HistoryStoreImpl) BeginRun(startTime time.Time, recordSetVersion string, configParams map[string]any) (int64, error) {
	if hs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quoted := quoteTableName(reportRunsTable, hs.backend)
	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, record_set_version, config_params) VALUES ($1, $2, $3) RETURNING run_id`, quoted)
		err = hs.db.QueryRow(query, startTime, recordSetVersion, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, record_set_version, config_params) VALUES (?, ?, ?)`, quoted)
		var result sql.Result
		result, err = hs.db.Exec(query, formatTime(startTime, hs.backend), recordSetVersion, string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert report run: %w", err)
	}
	return runID, nil
}

// EndRun stores the completion time, duration and consultant counts of a run.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, totalConsultants, includedConsultants int) error {
	if hs.db == nil {
		return nil
	}

	quoted := quoteTableName(reportRunsTable, hs.backend)
	start := newTimeScanner(hs.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quoted, placeholder(hs.backend, 1))
	if err := hs.db.QueryRow(query, runID).Scan(start.target()); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	startTime, err := start.value()
	if err != nil {
		return err
	}

	update := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_consultants = %s, included_consultants = %s WHERE run_id = %s`,
		quoted,
		placeholder(hs.backend, 1), placeholder(hs.backend, 2), placeholder(hs.backend, 3),
		placeholder(hs.backend, 4), placeholder(hs.backend, 5))
	durationMs := endTime.Sub(startTime).Milliseconds()
	if _, err := hs.db.Exec(update, formatTime(endTime, hs.backend), durationMs, totalConsultants, includedConsultants, runID); err != nil {
		return fmt.Errorf("failed to update report run: %w", err)
	}
	return nil
}

// RecordConsultantScore stores one consultant's derived metrics for a run.
func (hs *HistoryStoreImpl) RecordConsultantScore(runID int64, score schema.ConsultantScore) error {
	if hs.db == nil {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, record_index, analysis_time, full_name, email, department, team, lead_name,
		                since_ratio, before_ratio, ongoing_age_months, anomaly_score, anomaly_flag,
		                anomaly_reasons, low_coverage, availability_inconsistent, score_label)
		VALUES (%s)
	`, quoteTableName(consultantScoresTable, hs.backend), placeholderList(hs.backend, 17))

	_, err := hs.db.Exec(query,
		runID, score.RecordIndex, formatTime(time.Now(), hs.backend),
		score.FullName, score.Email, score.Department, score.Team, score.Lead,
		score.SinceRatio, score.BeforeRatio, score.OngoingAgeMonths,
		score.AnomalyScore, score.AnomalyFlag, score.AnomalyReasons,
		score.LowCoverage, score.AvailabilityInconsistent, score.ScoreLabel,
	)
	if err != nil {
		return fmt.Errorf("failed to insert consultant score: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns run counts, the run time range and row counts per table.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.db == nil {
		return status, nil
	}

	runs := quoteTableName(reportRunsTable, hs.backend)
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		last := newTimeScanner(hs.backend)
		row := hs.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", runs))
		if err := row.Scan(&status.LastRunID, last.target()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		lastTime, err := last.value()
		if err != nil {
			return status, err
		}
		status.LastRunTime = lastTime

		oldest := newTimeScanner(hs.backend)
		row = hs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runs))
		if err := row.Scan(oldest.target()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		oldestTime, err := oldest.value()
		if err != nil {
			return status, err
		}
		status.OldestRunTime = oldestTime

		row = hs.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(included_consultants), 0) FROM %s", runs))
		if err := row.Scan(&status.TotalConsultantsScored); err != nil {
			return status, fmt.Errorf("failed to get total consultants scored: %w", err)
		}
	}

	for _, table := range []string{reportRunsTable, consultantScoresTable} {
		var count int64
		if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllReportRuns retrieves every report run ordered by ID.
func (hs *HistoryStoreImpl) GetAllReportRuns() ([]schema.ReportRunRecord, error) {
	if hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, total_consultants,
		included_consultants, record_set_version, config_params FROM %s ORDER BY run_id`,
		quoteTableName(reportRunsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query report runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ReportRunRecord
	for rows.Next() {
		var record schema.ReportRunRecord
		start := newTimeScanner(hs.backend)
		var endText sql.NullString
		var endNative sql.NullTime
		var endTarget any = &endNative
		if hs.backend == schema.SQLiteBackend {
			endTarget = &endText
		}

		if err := rows.Scan(&record.RunID, start.target(), endTarget, &record.RunDurationMs,
			&record.TotalConsultants, &record.IncludedConsultants, &record.RecordSetVersion, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan report run: %w", err)
		}
		if record.StartTime, err = start.value(); err != nil {
			return nil, err
		}
		switch {
		case endText.Valid:
			endTime, err := time.Parse(time.RFC3339Nano, endText.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse end_time: %w", err)
			}
			record.EndTime = &endTime
		case endNative.Valid:
			endTime := endNative.Time
			record.EndTime = &endTime
		}

		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report runs: %w", err)
	}
	return results, nil
}

// GetAllConsultantScores retrieves every stored consultant score ordered by run and record.
func (hs *HistoryStoreImpl) GetAllConsultantScores() ([]schema.ConsultantScoreRecord, error) {
	if hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, record_index, analysis_time, full_name, email, department, team, lead_name,
		since_ratio, before_ratio, ongoing_age_months, anomaly_score, anomaly_flag,
		anomaly_reasons, low_coverage, availability_inconsistent, score_label
		FROM %s ORDER BY run_id, record_index`, quoteTableName(consultantScoresTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query consultant scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ConsultantScoreRecord
	for rows.Next() {
		var record schema.ConsultantScoreRecord
		at := newTimeScanner(hs.backend)
		s := &record.ConsultantScore
		if err := rows.Scan(&record.RunID, &s.RecordIndex, at.target(), &s.FullName, &s.Email,
			&s.Department, &s.Team, &s.Lead, &s.SinceRatio, &s.BeforeRatio, &s.OngoingAgeMonths,
			&s.AnomalyScore, &s.AnomalyFlag, &s.AnomalyReasons, &s.LowCoverage,
			&s.AvailabilityInconsistent, &s.ScoreLabel); err != nil {
			return nil, fmt.Errorf("failed to scan consultant score: %w", err)
		}
		if record.AnalysisTime, err = at.value(); err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating consultant scores: %w", err)
	}
	return results, nil
}
