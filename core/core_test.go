package core

import (
	"context"
	"testing"
	"time"

	"github.com/huangsam/coverspot/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testToday = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

func ratios(weighted, absolute float64) schema.CoverageFigures {
	return schema.CoverageFigures{
		WeightedRatio: schema.Float64Ptr(weighted),
		AbsoluteRatio: schema.Float64Ptr(absolute),
	}
}

// sampleRecords returns a small record set covering several segments.
func sampleRecords() []schema.ConsultantRecord {
	return []schema.ConsultantRecord{
		{
			FullName: "Ada", Department: "Engineering", Team: "Core", Lead: "Kim",
			IsAvailable: schema.AvailableYes,
			EntryDate:   schema.DatePtr(2021, 3, 1),
			SinceEntry:  ratios(0.9, 0.8), BeforeEntry: ratios(0.7, 0.6),
		},
		{
			FullName: "Bo", Department: "Engineering", Team: "Edge", Lead: "Kim",
			IsAvailable:                  schema.AvailableNo,
			EntryDate:                    schema.DatePtr(2019, 5, 1),
			OldestOngoingEngagementStart: schema.DatePtr(2021, 1, 10),
			SinceEntry:                   ratios(0.2, 0.4), BeforeEntry: ratios(0.1, 0.1),
		},
		{
			FullName: "Cy", Department: "Sales", Team: "North", Lead: "Lee",
			IsAvailable:                 schema.AvailableYes,
			EntryDate:                   schema.DatePtr(2022, 9, 1),
			EngagementsWithInvalidDates: 2,
			SinceEntry:                  ratios(0.45, 0.55),
		},
		{
			FullName: "Di", Department: "Sales", Team: "South", Lead: "Lee",
			EntryDate:  schema.DatePtr(2025, 1, 1),
			SinceEntry: ratios(0.1, 0.1),
		},
		{
			FullName: "Ed", Department: "Finance", Team: "Ledger", Lead: "Mo",
			IsAvailable: schema.AvailableYes,
		},
	}
}

// TestIsIncluded tests the inclusion predicate.
func TestIsIncluded(t *testing.T) {
	rec := sampleRecords()[0]

	tests := []struct {
		name     string
		mutate   func(fs *schema.FilterState)
		expected bool
	}{
		{"defaults include", func(*schema.FilterState) {}, true},
		{"matching department", func(fs *schema.FilterState) { fs.Department = "Engineering" }, true},
		{"other department", func(fs *schema.FilterState) { fs.Department = "Sales" }, false},
		{"case sensitive", func(fs *schema.FilterState) { fs.Team = "core" }, false},
		{"matching lead and team", func(fs *schema.FilterState) { fs.Lead = "Kim"; fs.Team = "Core" }, true},
		{"empty selection matches empty value", func(fs *schema.FilterState) { fs.Unit = "" }, true},
		{"availability yes", func(fs *schema.FilterState) { fs.Availability = "Yes" }, true},
		{"availability no", func(fs *schema.FilterState) { fs.Availability = "No" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := schema.DefaultFilterState()
			tt.mutate(&fs)
			assert.Equal(t, tt.expected, IsIncluded(&rec, fs, testToday))
		})
	}

	t.Run("entry date today is included", func(t *testing.T) {
		r := schema.ConsultantRecord{EntryDate: schema.DatePtr(2024, 7, 1)}
		later := testToday.Add(15 * time.Hour)
		assert.True(t, IsIncluded(&r, schema.DefaultFilterState(), later))
	})

	t.Run("unknown availability never matches a selection", func(t *testing.T) {
		r := schema.ConsultantRecord{}
		fs := schema.DefaultFilterState()
		fs.Availability = "Yes"
		assert.False(t, IsIncluded(&r, fs, testToday))
	})
}

// TestScenarioTimelineInverted tests work experience after entry.
func TestScenarioTimelineInverted(t *testing.T) {
	rec := schema.ConsultantRecord{
		EntryDate:           schema.DatePtr(2020, 1, 1),
		WorkExperienceSince: schema.DatePtr(2021, 1, 1),
		SinceEntry:          ratios(0.95, 0.95),
	}
	m := ComputeMetrics(0, &rec, schema.DefaultFilterState(), testToday)
	assert.True(t, m.AnomalyFlag)
	assert.Equal(t, []schema.AnomalyReason{schema.TimelineInverted}, m.AnomalyReasons)
	assert.InDelta(t, 10.0, m.AnomalyScore, 1e-9)
	assert.False(t, m.LowCoverageFlag)

	rec.WorkExperienceSince = schema.DatePtr(2020, 1, 1)
	m = ComputeMetrics(0, &rec, schema.DefaultFilterState(), testToday)
	assert.False(t, m.AnomalyFlag)
}

// TestScenarioStaleLowCoverage tests the low coverage branch triggered by age.
func TestScenarioStaleLowCoverage(t *testing.T) {
	rec := schema.ConsultantRecord{
		OldestOngoingEngagementStart: schema.DatePtr(2022, 1, 1),
		SinceEntry:                   schema.CoverageFigures{AbsoluteRatio: schema.Float64Ptr(0.2)},
	}
	fs := schema.DefaultFilterState()
	fs.MetricType = schema.AbsoluteMetric

	m := ComputeMetrics(0, &rec, fs, testToday)
	require.NotNil(t, m.OngoingAgeMonths)
	assert.Equal(t, 30, *m.OngoingAgeMonths)
	assert.True(t, m.AnomalyFlag)
	assert.True(t, m.HasReason(schema.LowCoverageStale))
	assert.False(t, m.HasReason(schema.LowCoverageInvalidDates))
	assert.InDelta(t, 50.0, m.AnomalyScore, 1e-9)
	assert.True(t, m.LowCoverageFlag)
}

// TestScenarioAvailabilityInconsistent tests contradictory availability entries.
func TestScenarioAvailabilityInconsistent(t *testing.T) {
	tests := []struct {
		name     string
		rec      schema.ConsultantRecord
		expected bool
	}{
		{"no with days", schema.ConsultantRecord{IsAvailable: schema.AvailableNo, AvailableDaysPerWeek: schema.Float64Ptr(3)}, true},
		{"no with from date", schema.ConsultantRecord{IsAvailable: schema.AvailableNo, AvailableFrom: schema.DatePtr(2024, 8, 1)}, true},
		{"no with comment", schema.ConsultantRecord{IsAvailable: schema.AvailableNo, AvailabilityComment: "part time"}, true},
		{"no with zero days", schema.ConsultantRecord{IsAvailable: schema.AvailableNo, AvailableDaysPerWeek: schema.Float64Ptr(0)}, false},
		{"no without details", schema.ConsultantRecord{IsAvailable: schema.AvailableNo}, false},
		{"yes with days", schema.ConsultantRecord{IsAvailable: schema.AvailableYes, AvailableDaysPerWeek: schema.Float64Ptr(3)}, false},
		{"unknown with comment", schema.ConsultantRecord{AvailabilityComment: "?"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ComputeMetrics(0, &tt.rec, schema.DefaultFilterState(), testToday)
			assert.Equal(t, tt.expected, m.AvailabilityInconsistent)
		})
	}
}

// TestScenarioFutureEntryExcluded tests the entry date guard.
func TestScenarioFutureEntryExcluded(t *testing.T) {
	rec := schema.ConsultantRecord{
		Department: "Sales",
		EntryDate:  schema.DatePtr(2024, 7, 2),
	}
	fs := schema.DefaultFilterState()
	assert.False(t, IsIncluded(&rec, fs, testToday))

	fs.Department = "Sales"
	assert.False(t, IsIncluded(&rec, fs, testToday))
	assert.False(t, ComputeMetrics(0, &rec, fs, testToday).Included)
}

// TestComputeMetrics tests the remaining derived metric rules.
func TestComputeMetrics(t *testing.T) {
	t.Run("ongoing age undefined without start", func(t *testing.T) {
		m := ComputeMetrics(0, &schema.ConsultantRecord{}, schema.DefaultFilterState(), testToday)
		assert.Nil(t, m.OngoingAgeMonths)
		assert.Nil(t, m.SelectedRatioSince)
		assert.Nil(t, m.SelectedRatioBefore)
		assert.Zero(t, m.AnomalyScore)
		assert.False(t, m.LowCoverageFlag)
	})

	t.Run("future start has zero age", func(t *testing.T) {
		rec := schema.ConsultantRecord{OldestOngoingEngagementStart: schema.DatePtr(2025, 1, 1)}
		m := ComputeMetrics(0, &rec, schema.DefaultFilterState(), testToday)
		require.NotNil(t, m.OngoingAgeMonths)
		assert.Equal(t, 0, *m.OngoingAgeMonths)
	})

	t.Run("invalid dates without low coverage is not an anomaly", func(t *testing.T) {
		rec := schema.ConsultantRecord{EngagementsWithInvalidDates: 3, SinceEntry: ratios(0.8, 0.8)}
		m := ComputeMetrics(0, &rec, schema.DefaultFilterState(), testToday)
		assert.False(t, m.AnomalyFlag)
		assert.InDelta(t, 20.0, m.AnomalyScore, 1e-9)
	})

	t.Run("invalid dates without a ratio is not an anomaly", func(t *testing.T) {
		rec := schema.ConsultantRecord{EngagementsWithInvalidDates: 1}
		m := ComputeMetrics(0, &rec, schema.DefaultFilterState(), testToday)
		assert.False(t, m.AnomalyFlag)
		assert.False(t, m.LowCoverageFlag)
	})

	t.Run("all branches", func(t *testing.T) {
		rec := schema.ConsultantRecord{
			EntryDate:                    schema.DatePtr(2020, 1, 1),
			WorkExperienceSince:          schema.DatePtr(2020, 6, 1),
			OldestOngoingEngagementStart: schema.DatePtr(2020, 2, 1),
			EngagementsWithInvalidDates:  1,
			SinceEntry:                   ratios(0, 0),
		}
		m := ComputeMetrics(7, &rec, schema.DefaultFilterState(), testToday)
		assert.Equal(t, 7, m.Index)
		assert.Equal(t, []schema.AnomalyReason{
			schema.LowCoverageStale, schema.LowCoverageInvalidDates, schema.TimelineInverted,
		}, m.AnomalyReasons)
		assert.InDelta(t, 100.0, m.AnomalyScore, 1e-9)
		assert.Equal(t, schema.CriticalValue, schema.GetPlainLabel(m.AnomalyScore))
	})

	t.Run("ratio at threshold is not low", func(t *testing.T) {
		rec := schema.ConsultantRecord{SinceEntry: ratios(0.5, 0.5), EngagementsWithInvalidDates: 1}
		m := ComputeMetrics(0, &rec, schema.DefaultFilterState(), testToday)
		assert.False(t, m.LowCoverageFlag)
		assert.False(t, m.AnomalyFlag)
		assert.InDelta(t, 20.0, m.AnomalyScore, 1e-9)
	})
}

// TestMetricTypeSelectsRatios tests that the selected ratios follow the metric type.
func TestMetricTypeSelectsRatios(t *testing.T) {
	for i, rec := range sampleRecords() {
		weighted := ComputeMetrics(i, &rec, schema.DefaultFilterState(), testToday)
		fs := schema.DefaultFilterState()
		fs.MetricType = schema.AbsoluteMetric
		absolute := ComputeMetrics(i, &rec, fs, testToday)

		assert.Equal(t, rec.SinceEntry.WeightedRatio, weighted.SelectedRatioSince)
		assert.Equal(t, rec.BeforeEntry.WeightedRatio, weighted.SelectedRatioBefore)
		assert.Equal(t, rec.SinceEntry.AbsoluteRatio, absolute.SelectedRatioSince)
		assert.Equal(t, rec.BeforeEntry.AbsoluteRatio, absolute.SelectedRatioBefore)

		for _, m := range []schema.DerivedRecordMetrics{weighted, absolute} {
			defined := m.SelectedRatioSince != nil
			assert.Equal(t, defined && *m.SelectedRatioSince < 0.5, m.LowCoverageFlag)
		}
	}
}

// TestInvalidDatesMonotonic tests that invalid dates never lower the score or clear the flag.
func TestInvalidDatesMonotonic(t *testing.T) {
	for i, rec := range sampleRecords() {
		rec.EngagementsWithInvalidDates = 0
		before := ComputeMetrics(i, &rec, schema.DefaultFilterState(), testToday)
		rec.EngagementsWithInvalidDates = 1
		after := ComputeMetrics(i, &rec, schema.DefaultFilterState(), testToday)

		assert.GreaterOrEqual(t, after.AnomalyScore, before.AnomalyScore)
		if before.AnomalyFlag {
			assert.True(t, after.AnomalyFlag)
		}
	}
}

// TestEvaluate tests a full evaluation pass.
func TestEvaluate(t *testing.T) {
	records := sampleRecords()
	fs := schema.DefaultFilterState()

	eval, err := Evaluate(context.Background(), records, fs, testToday, 0)
	require.NoError(t, err)

	assert.Equal(t, 4, eval.IncludedCount)
	assert.Len(t, eval.Metrics, len(records))
	assert.False(t, eval.Metrics[3].Included)

	require.Len(t, eval.Ranked, 4)
	assert.Equal(t, "Bo", eval.Ranked[0].Record.FullName)
	for i := 1; i < len(eval.Ranked); i++ {
		assert.GreaterOrEqual(t, eval.Ranked[i-1].Metrics.AnomalyScore, eval.Ranked[i].Metrics.AnomalyScore)
	}
	for _, e := range eval.Ranked {
		assert.True(t, e.Metrics.Included)
	}

	require.Len(t, eval.Segments, 3)
	assert.Equal(t, "Sales", eval.Segments[0].SegmentValue)
	assert.Equal(t, 1, eval.Segments[0].Count)
	assert.InDelta(t, 1.0, eval.Segments[0].LowRate, 1e-9)
	assert.Equal(t, "Engineering", eval.Segments[1].SegmentValue)
	assert.InDelta(t, 0.5, eval.Segments[1].LowRate, 1e-9)
	assert.Equal(t, "Finance", eval.Segments[2].SegmentValue)
	for i := 1; i < len(eval.Segments); i++ {
		assert.GreaterOrEqual(t, eval.Segments[i-1].LowRate, eval.Segments[i].LowRate)
	}

	t.Run("idempotent", func(t *testing.T) {
		again, err := Evaluate(context.Background(), records, fs, testToday, 0)
		require.NoError(t, err)
		assert.Equal(t, eval.Segments, again.Segments)
		assert.Equal(t, eval.Ranked, again.Ranked)
	})

	t.Run("segment limit", func(t *testing.T) {
		limited, err := Evaluate(context.Background(), records, fs.WithDimension(schema.TeamDimension), testToday, 2)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(limited.Segments), 2)
	})

	t.Run("invalid dimension", func(t *testing.T) {
		_, err := Evaluate(context.Background(), records, fs.WithDimension("Region"), testToday, 0)
		assert.ErrorContains(t, err, "invalid segment dimension 'Region'")
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Evaluate(ctx, records, fs, testToday, 0)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("no included records", func(t *testing.T) {
		none := fs
		none.Department = "Nowhere"
		empty, err := Evaluate(context.Background(), records, none, testToday, 0)
		require.NoError(t, err)
		assert.Zero(t, empty.IncludedCount)
		assert.Empty(t, empty.Segments)
		assert.Empty(t, empty.Ranked)
	})
}

// TestTopSegmentsAndRankedList tests the standalone wrappers.
func TestTopSegmentsAndRankedList(t *testing.T) {
	records := sampleRecords()
	fs := schema.DefaultFilterState().WithDimension(schema.LeadDimension)

	segments, err := TopSegments(records, fs, testToday, 10)
	require.NoError(t, err)
	require.Len(t, segments, 3)
	assert.Equal(t, "Lee", segments[0].SegmentValue)
	assert.Equal(t, "Kim", segments[1].SegmentValue)

	ranked, err := RankedList(records, fs, testToday)
	require.NoError(t, err)
	first, ok := ranked.At(1)
	require.True(t, ok)
	assert.Equal(t, 1, first.Rank)
	_, ok = ranked.At(len(ranked) + 1)
	assert.False(t, ok)

	_, err = RankedList(records, schema.FilterState{MetricType: "Median"}, testToday)
	assert.ErrorContains(t, err, "invalid metric type 'Median'")
}

// TestBuildReport tests KPIs and bands over included records.
func TestBuildReport(t *testing.T) {
	set := &schema.RecordSet{Version: "v1", Source: "export.xlsx", Records: sampleRecords()}

	report, err := BuildReport(context.Background(), set, schema.DefaultFilterState(), testToday, 10)
	require.NoError(t, err)

	assert.Equal(t, "v1", report.RecordSetVersion)
	assert.Equal(t, 5, report.TotalRecords)
	assert.Equal(t, testToday, report.AsOf)

	kpi := report.KPIs
	assert.Equal(t, 4, kpi.ConsultantCount)
	require.NotNil(t, kpi.MedianWeightedSince)
	assert.InDelta(t, 0.45, *kpi.MedianWeightedSince, 1e-9)
	require.NotNil(t, kpi.MedianWeightedBefore)
	assert.InDelta(t, 0.4, *kpi.MedianWeightedBefore, 1e-9)
	assert.Equal(t, 1, kpi.StaleEngagementCount)
	assert.Equal(t, 1, kpi.InvalidDatesCount)
	assert.Equal(t, 2, kpi.AnomalyCount)
	assert.Equal(t, 2, kpi.LowCoverageCount)
	assert.Zero(t, kpi.AvailabilityInconsistentCount)

	assert.Equal(t, []schema.BandCount{
		{Band: "<30%", Count: 1}, {Band: "30-49%", Count: 1}, {Band: "50-79%", Count: 0}, {Band: ">=80%", Count: 1},
	}, report.Bands.SinceCoverage)
	assert.Equal(t, []schema.BandCount{
		{Band: "<12m", Count: 0}, {Band: "12-24m", Count: 0}, {Band: ">=24m", Count: 1},
	}, report.Bands.OngoingAge)
}
