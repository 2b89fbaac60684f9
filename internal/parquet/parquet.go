// Package parquet exports report history and ranked consultants to Parquet
// files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/coverspot/schema"
	"github.com/parquet-go/parquet-go"
)

// ReportRun maps to the coverspot_report_runs table.
type ReportRun struct {
	RunID int64 `parquet:"run_id,snappy"`

	StartTime time.Time  `parquet:"start_time,snappy"`
	EndTime   *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is unset for runs that never finished
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	TotalConsultants    int32 `parquet:"total_consultants,snappy"`
	IncludedConsultants int32 `parquet:"included_consultants,snappy"`

	// RecordSetVersion identifies the input content the run evaluated
	RecordSetVersion string `parquet:"record_set_version,snappy"`

	// ConfigParams is the JSON-encoded filter and run configuration
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// ConsultantScoreRow maps to the coverspot_consultant_scores table.
type ConsultantScoreRow struct {
	RunID        int64     `parquet:"run_id,snappy"`
	RecordIndex  int32     `parquet:"record_index,snappy"`
	AnalysisTime time.Time `parquet:"analysis_time,snappy"`

	FullName   string `parquet:"full_name,snappy"`
	Email      string `parquet:"email,snappy"`
	Department string `parquet:"department,snappy"`
	Team       string `parquet:"team,snappy"`
	Lead       string `parquet:"lead,snappy"`

	SinceRatio       *float64 `parquet:"since_ratio,optional,snappy"`
	BeforeRatio      *float64 `parquet:"before_ratio,optional,snappy"`
	OngoingAgeMonths *int32   `parquet:"ongoing_age_months,optional,snappy"`

	AnomalyScore             float64 `parquet:"anomaly_score,snappy"`
	AnomalyFlag              bool    `parquet:"anomaly_flag,snappy"`
	AnomalyReasons           string  `parquet:"anomaly_reasons,snappy"`
	LowCoverage              bool    `parquet:"low_coverage,snappy"`
	AvailabilityInconsistent bool    `parquet:"availability_inconsistent,snappy"`
	ScoreLabel               string  `parquet:"score_label,snappy"`
}

// RankedConsultantRow is one entry of a ranked list written by --output parquet.
type RankedConsultantRow struct {
	Rank       int32      `parquet:"rank,snappy"`
	FullName   string     `parquet:"full_name,snappy"`
	EntryDate  *time.Time `parquet:"entry_date,optional,snappy"`
	URL        string     `parquet:"url,snappy"`
	Department string     `parquet:"department,snappy"`
	Team       string     `parquet:"team,snappy"`
	Lead       string     `parquet:"lead,snappy"`

	TotalEngagements int32    `parquet:"total_engagements,snappy"`
	SinceRatio       *float64 `parquet:"since_ratio,optional,snappy"`
	BeforeRatio      *float64 `parquet:"before_ratio,optional,snappy"`
	OngoingAgeMonths *int32   `parquet:"ongoing_age_months,optional,snappy"`

	AnomalyScore   float64 `parquet:"anomaly_score,snappy"`
	Label          string  `parquet:"label,snappy"`
	AnomalyReasons string  `parquet:"anomaly_reasons,snappy"`
}

// SegmentRow is one Top-N segment written by --output parquet.
type SegmentRow struct {
	Dimension    string  `parquet:"dimension,snappy"`
	SegmentValue string  `parquet:"segment_value,snappy"`
	Count        int32   `parquet:"count,snappy"`
	LowCount     int32   `parquet:"low_count,snappy"`
	LowRate      float64 `parquet:"low_rate,snappy"`
}

// WriteRows writes rows to w using the schema inferred from T's struct tags.
func WriteRows[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// writeFile creates outputPath and writes rows into it.
func writeFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := WriteRows(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// WriteReportRunsParquet writes report runs to a Parquet file.
func WriteReportRunsParquet(data []ReportRun, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteConsultantScoresParquet writes consultant scores to a Parquet file.
func WriteConsultantScoresParquet(data []ConsultantScoreRow, outputPath string) error {
	return writeFile(data, outputPath)
}

// ConvertReportRunRecords converts stored runs for Parquet export.
func ConvertReportRunRecords(records []schema.ReportRunRecord) []ReportRun {
	result := make([]ReportRun, len(records))
	for i, record := range records {
		result[i] = ReportRun{
			RunID:               record.RunID,
			StartTime:           record.StartTime,
			EndTime:             record.EndTime,
			RunDurationMs:       record.RunDurationMs,
			TotalConsultants:    record.TotalConsultants,
			IncludedConsultants: record.IncludedConsultants,
			RecordSetVersion:    record.RecordSetVersion,
			ConfigParams:        record.ConfigParams,
		}
	}
	return result
}

// ConvertConsultantScoreRecords converts stored consultant scores for Parquet export.
func ConvertConsultantScoreRecords(records []schema.ConsultantScoreRecord) []ConsultantScoreRow {
	result := make([]ConsultantScoreRow, len(records))
	for i, record := range records {
		result[i] = ConsultantScoreRow{
			RunID:                    record.RunID,
			RecordIndex:              int32(record.RecordIndex),
			AnalysisTime:             record.AnalysisTime,
			FullName:                 record.FullName,
			Email:                    record.Email,
			Department:               record.Department,
			Team:                     record.Team,
			Lead:                     record.Lead,
			SinceRatio:               record.SinceRatio,
			BeforeRatio:              record.BeforeRatio,
			OngoingAgeMonths:         int32Ptr(record.OngoingAgeMonths),
			AnomalyScore:             record.AnomalyScore,
			AnomalyFlag:              record.AnomalyFlag,
			AnomalyReasons:           record.AnomalyReasons,
			LowCoverage:              record.LowCoverage,
			AvailabilityInconsistent: record.AvailabilityInconsistent,
			ScoreLabel:               record.ScoreLabel,
		}
	}
	return result
}

// ConvertRankedList converts ranked entries for Parquet output.
func ConvertRankedList(list schema.RankedList) []RankedConsultantRow {
	result := make([]RankedConsultantRow, len(list))
	for i, entry := range list {
		result[i] = RankedConsultantRow{
			Rank:             int32(entry.Rank),
			FullName:         entry.Record.FullName,
			EntryDate:        entry.Record.EntryDate,
			URL:              entry.Record.URL,
			Department:       entry.Record.Department,
			Team:             entry.Record.Team,
			Lead:             entry.Record.Lead,
			TotalEngagements: int32(entry.Record.TotalEngagements),
			SinceRatio:       entry.Metrics.SelectedRatioSince,
			BeforeRatio:      entry.Metrics.SelectedRatioBefore,
			OngoingAgeMonths: int32Ptr(entry.Metrics.OngoingAgeMonths),
			AnomalyScore:     entry.Metrics.AnomalyScore,
			Label:            entry.Label,
			AnomalyReasons:   schema.JoinReasons(entry.Metrics.AnomalyReasons),
		}
	}
	return result
}

// ConvertSegments converts Top-N segments of one dimension for Parquet output.
func ConvertSegments(dim schema.SegmentDimension, segments []schema.SegmentAggregate) []SegmentRow {
	result := make([]SegmentRow, len(segments))
	for i, s := range segments {
		result[i] = SegmentRow{
			Dimension:    string(dim),
			SegmentValue: s.SegmentValue,
			Count:        int32(s.Count),
			LowCount:     int32(s.LowCount),
			LowRate:      s.LowRate,
		}
	}
	return result
}

func int32Ptr(v *int) *int32 {
	if v == nil {
		return nil
	}
	n := int32(*v)
	return &n
}
