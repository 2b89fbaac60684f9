package parquet

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/coverspot/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{
			name:  "report runs",
			model: new(ReportRun),
			columns: []string{
				"run_id", "start_time", "end_time", "run_duration_ms",
				"total_consultants", "included_consultants", "record_set_version", "config_params",
			},
		},
		{
			name:  "consultant scores",
			model: new(ConsultantScoreRow),
			columns: []string{
				"run_id", "record_index", "analysis_time", "full_name", "email", "department",
				"team", "lead", "since_ratio", "before_ratio", "ongoing_age_months",
				"anomaly_score", "anomaly_flag", "anomaly_reasons", "low_coverage",
				"availability_inconsistent", "score_label",
			},
		},
		{
			name:  "ranked consultants",
			model: new(RankedConsultantRow),
			columns: []string{
				"rank", "full_name", "entry_date", "url", "department", "team", "lead",
				"total_engagements", "since_ratio", "before_ratio", "ongoing_age_months",
				"anomaly_score", "label", "anomaly_reasons",
			},
		},
		{
			name:    "segments",
			model:   new(SegmentRow),
			columns: []string{"dimension", "segment_value", "count", "low_count", "low_rate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			require.NotNil(t, s)
			assert.Len(t, s.Fields(), len(tt.columns))
			for _, col := range tt.columns {
				_, ok := s.Lookup(col)
				assert.True(t, ok, "column %s should exist in schema", col)
			}
		})
	}
}

func sampleRuns() []ReportRun {
	start := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)
	duration := int32(1500)
	params := `{"metric":"Weighted","dimension":"Department"}`
	return []ReportRun{
		{
			RunID:               1,
			StartTime:           start,
			EndTime:             &end,
			RunDurationMs:       &duration,
			TotalConsultants:    5,
			IncludedConsultants: 4,
			RecordSetVersion:    "b1c2",
			ConfigParams:        &params,
		},
		{
			RunID:            2,
			StartTime:        start.Add(time.Hour),
			RecordSetVersion: "b1c2",
		},
	}
}

func TestWriteReportRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")
	data := sampleRuns()

	require.NoError(t, WriteReportRunsParquet(data, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[ReportRun](file)
	defer func() { _ = reader.Close() }()

	got := make([]ReportRun, reader.NumRows())
	n, err := reader.Read(got)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, len(data), n)

	assert.Equal(t, int64(1), got[0].RunID)
	assert.Equal(t, int32(4), got[0].IncludedConsultants)
	require.NotNil(t, got[0].EndTime)
	assert.WithinDuration(t, *data[0].EndTime, *got[0].EndTime, time.Nanosecond)
	require.NotNil(t, got[0].RunDurationMs)
	assert.Equal(t, int32(1500), *got[0].RunDurationMs)
	assert.Equal(t, *data[0].ConfigParams, *got[0].ConfigParams)

	assert.Nil(t, got[1].EndTime)
	assert.Nil(t, got[1].RunDurationMs)
	assert.Nil(t, got[1].ConfigParams)
}

func TestWriteConsultantScoresParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "scores.parquet")
	records := []schema.ConsultantScoreRecord{
		{
			RunID:        1,
			AnalysisTime: time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC),
			ConsultantScore: schema.ConsultantScore{
				RecordIndex:      3,
				FullName:         "Ada Lovelace",
				Department:       "Engineering",
				SinceRatio:       schema.Float64Ptr(0.2),
				OngoingAgeMonths: schema.IntPtr(30),
				AnomalyScore:     50,
				AnomalyFlag:      true,
				AnomalyReasons:   "low-coverage-stale",
				LowCoverage:      true,
				ScoreLabel:       schema.HighValue,
			},
		},
	}

	rows := ConvertConsultantScoreRecords(records)
	require.NoError(t, WriteConsultantScoresParquet(rows, outputPath))

	got, err := parquet.ReadFile[ConsultantScoreRow](outputPath)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int32(3), got[0].RecordIndex)
	assert.Equal(t, "Ada Lovelace", got[0].FullName)
	require.NotNil(t, got[0].OngoingAgeMonths)
	assert.Equal(t, int32(30), *got[0].OngoingAgeMonths)
	assert.Nil(t, got[0].BeforeRatio)
	assert.True(t, got[0].AnomalyFlag)
}

func TestWriteRowsToBuffer(t *testing.T) {
	list := schema.RankedList{
		{
			Rank:  1,
			Label: schema.CriticalValue,
			Record: schema.ConsultantRecord{
				FullName:         "Bo Berg",
				URL:              "https://example.com/bo",
				Department:       "Sales",
				TotalEngagements: 7,
				EntryDate:        schema.DatePtr(2020, time.March, 1),
			},
			Metrics: schema.DerivedRecordMetrics{
				SelectedRatioSince: schema.Float64Ptr(0.1),
				AnomalyScore:       80,
				AnomalyReasons:     []schema.AnomalyReason{schema.LowCoverageStale, schema.TimelineInverted},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRows(&buf, ConvertRankedList(list)))

	got, err := parquet.Read[RankedConsultantRow](bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int32(1), got[0].Rank)
	assert.Equal(t, "low-coverage-stale|timeline-inverted", got[0].AnomalyReasons)
	assert.Nil(t, got[0].OngoingAgeMonths)
	require.NotNil(t, got[0].EntryDate)
	assert.True(t, got[0].EntryDate.Equal(*schema.DatePtr(2020, time.March, 1)))
}

func TestConvertSegments(t *testing.T) {
	rows := ConvertSegments(schema.TeamDimension, []schema.SegmentAggregate{
		{SegmentValue: "Alpha", Count: 4, LowCount: 2, LowRate: 0.5},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, SegmentRow{Dimension: "Team", SegmentValue: "Alpha", Count: 4, LowCount: 2, LowRate: 0.5}, rows[0])
}
