package core

import (
	"math"
	"testing"
	"time"

	"github.com/huangsam/coverspot/schema"
)

// FuzzComputeMetrics fuzzes ComputeMetrics with random ratios, counters and dates.
func FuzzComputeMetrics(f *testing.F) {
	f.Add(0.2, 0.4, 0, int64(-900), int64(0), int64(0), true)
	f.Add(0.9, 0.1, 3, int64(30), int64(-400), int64(-800), false)
	f.Add(-1.0, 2.0, 1, int64(0), int64(5), int64(-5), true)

	today := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	f.Fuzz(func(t *testing.T, weighted, absolute float64, invalid int, startDays, entryDays, workDays int64, absoluteMetric bool) {
		if math.IsNaN(weighted) || math.IsNaN(absolute) || math.IsInf(weighted, 0) || math.IsInf(absolute, 0) {
			t.Skip()
		}
		if invalid < 0 {
			invalid = -invalid
		}
		day := func(offset int64) *time.Time {
			d := today.AddDate(0, 0, int(offset%20000))
			return &d
		}
		rec := schema.ConsultantRecord{
			EntryDate:                    day(entryDays),
			WorkExperienceSince:          day(workDays),
			OldestOngoingEngagementStart: day(startDays),
			EngagementsWithInvalidDates:  invalid,
			SinceEntry:                   ratios(weighted, absolute),
		}
		fs := schema.DefaultFilterState()
		if absoluteMetric {
			fs.MetricType = schema.AbsoluteMetric
		}

		m := ComputeMetrics(0, &rec, fs, today)
		if m.AnomalyScore < 0 {
			t.Errorf("negative score %f", m.AnomalyScore)
		}
		if m.LowCoverageFlag != (*m.SelectedRatioSince < 0.5) {
			t.Errorf("low coverage flag %v for ratio %f", m.LowCoverageFlag, *m.SelectedRatioSince)
		}
		if m.AnomalyFlag != (len(m.AnomalyReasons) > 0) {
			t.Errorf("flag %v disagrees with reasons %v", m.AnomalyFlag, m.AnomalyReasons)
		}
		if m.OngoingAgeMonths == nil || *m.OngoingAgeMonths < 0 {
			t.Errorf("unexpected ongoing age %v", m.OngoingAgeMonths)
		}
	})
}
