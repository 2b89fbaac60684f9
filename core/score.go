package core

import (
	"time"

	"github.com/huangsam/coverspot/core/algo"
	"github.com/huangsam/coverspot/schema"
)

// Anomaly score weights.
const (
	coverageGapWeight  = 100.0 // points per unit of ratio below the threshold
	staleWeight        = 20.0
	invalidDatesWeight = 20.0
	timelineWeight     = 10.0
)

// ComputeMetrics derives the per-record metrics for one filter state.
// It is total: missing inputs yield nil metrics or zero contributions, never an error.
func ComputeMetrics(index int, rec *schema.ConsultantRecord, fs schema.FilterState, today time.Time) schema.DerivedRecordMetrics {
	today = schema.DateOf(today)
	m := schema.DerivedRecordMetrics{
		Index:               index,
		Included:            IsIncluded(rec, fs, today),
		SelectedRatioSince:  rec.SinceEntry.Ratio(fs.MetricType),
		SelectedRatioBefore: rec.BeforeEntry.Ratio(fs.MetricType),
		OngoingAgeMonths:    ongoingAgeMonths(rec.OldestOngoingEngagementStart, today),
	}
	m.AvailabilityInconsistent = availabilityInconsistent(rec)

	ratio := m.SelectedRatioSince
	lowCoverage := ratio != nil && *ratio < schema.LowCoverageThreshold
	stale := m.OngoingAgeMonths != nil && *m.OngoingAgeMonths >= schema.StaleEngagementMonths
	invalidDates := rec.EngagementsWithInvalidDates > 0
	inverted := timelineInverted(rec)

	if lowCoverage && stale {
		m.AnomalyReasons = append(m.AnomalyReasons, schema.LowCoverageStale)
	}
	if lowCoverage && invalidDates {
		m.AnomalyReasons = append(m.AnomalyReasons, schema.LowCoverageInvalidDates)
	}
	if inverted {
		m.AnomalyReasons = append(m.AnomalyReasons, schema.TimelineInverted)
	}
	m.AnomalyFlag = len(m.AnomalyReasons) > 0
	m.LowCoverageFlag = lowCoverage

	var score float64
	if ratio != nil {
		score += max(0, (schema.LowCoverageThreshold-*ratio)*coverageGapWeight)
	}
	if stale {
		score += staleWeight
	}
	if invalidDates {
		score += invalidDatesWeight
	}
	if inverted {
		score += timelineWeight
	}
	m.AnomalyScore = score

	return m
}

// ongoingAgeMonths returns nil without a start date and 0 for a start in the future.
func ongoingAgeMonths(start *time.Time, today time.Time) *int {
	if start == nil {
		return nil
	}
	months := 0
	if d := schema.DateOf(*start); !d.After(today) {
		months = algo.CompletedMonths(d, today)
	}
	return &months
}

// availabilityInconsistent flags a consultant marked unavailable who still has availability details.
func availabilityInconsistent(rec *schema.ConsultantRecord) bool {
	if rec.IsAvailable != schema.AvailableNo {
		return false
	}
	return rec.AvailableFrom != nil ||
		(rec.AvailableDaysPerWeek != nil && *rec.AvailableDaysPerWeek > 0) ||
		rec.AvailabilityComment != ""
}

// timelineInverted reports work experience starting after the entry date.
func timelineInverted(rec *schema.ConsultantRecord) bool {
	if rec.WorkExperienceSince == nil || rec.EntryDate == nil {
		return false
	}
	return schema.DateOf(*rec.WorkExperienceSince).After(schema.DateOf(*rec.EntryDate))
}
