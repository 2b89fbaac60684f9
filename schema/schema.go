// Package schema has the data types shared by the core, ingestion and output layers.
package schema

import "time"

// DerivedRecordMetrics holds the metrics computed for one record under one FilterState.
// Undefined quantities are nil, never zero.
type DerivedRecordMetrics struct {
	Index                    int             `json:"index"`
	Included                 bool            `json:"included"`
	SelectedRatioSince       *float64        `json:"selected_ratio_since"`
	SelectedRatioBefore      *float64        `json:"selected_ratio_before"`
	OngoingAgeMonths         *int            `json:"ongoing_age_months"`
	AvailabilityInconsistent bool            `json:"availability_inconsistent"`
	AnomalyFlag              bool            `json:"anomaly_flag"`
	AnomalyReasons           []AnomalyReason `json:"anomaly_reasons,omitempty"`
	AnomalyScore             float64         `json:"anomaly_score"`
	LowCoverageFlag          bool            `json:"low_coverage_flag"`
}

// HasReason reports whether the given anomaly reason was triggered.
func (m DerivedRecordMetrics) HasReason(reason AnomalyReason) bool {
	for _, r := range m.AnomalyReasons {
		if r == reason {
			return true
		}
	}
	return false
}

// SegmentAggregate is one row of the Top-N segment table.
type SegmentAggregate struct {
	SegmentValue string  `json:"segment_value"`
	Count        int     `json:"count"`
	LowCount     int     `json:"low_count"`
	LowRate      float64 `json:"low_rate"`
}

// RankedEntry pairs an included record with its metrics and rank position.
type RankedEntry struct {
	Rank    int                  `json:"rank"`
	Label   string               `json:"label"`
	Record  ConsultantRecord     `json:"record"`
	Metrics DerivedRecordMetrics `json:"metrics"`
}

// RankedList is the worst-first ordering of included records.
type RankedList []RankedEntry

// At returns the k-th entry (1-based).
func (l RankedList) At(k int) (RankedEntry, bool) {
	if k < 1 || k > len(l) {
		return RankedEntry{}, false
	}
	return l[k-1], true
}

// Evaluation is the complete result of one evaluation pass.
type Evaluation struct {
	IncludedCount int                    `json:"included_count"`
	Metrics       []DerivedRecordMetrics `json:"metrics"`
	Segments      []SegmentAggregate     `json:"segments"`
	Ranked        RankedList             `json:"ranked"`
}

// KPISummary holds the headline figures over included records.
type KPISummary struct {
	ConsultantCount               int      `json:"consultant_count"`
	MedianWeightedSince           *float64 `json:"median_weighted_since"`
	MedianAbsoluteSince           *float64 `json:"median_absolute_since"`
	MedianWeightedBefore          *float64 `json:"median_weighted_before"`
	MedianAbsoluteBefore          *float64 `json:"median_absolute_before"`
	StaleEngagementCount          int      `json:"stale_engagement_count"`
	InvalidDatesCount             int      `json:"invalid_dates_count"`
	AnomalyCount                  int      `json:"anomaly_count"`
	LowCoverageCount              int      `json:"low_coverage_count"`
	AvailabilityInconsistentCount int      `json:"availability_inconsistent_count"`
}

// BandCount is the number of included records falling into one band.
type BandCount struct {
	Band  string `json:"band"`
	Count int    `json:"count"`
}

// BandSummary holds the coverage and engagement-age distributions.
type BandSummary struct {
	SinceCoverage  []BandCount `json:"since_coverage"`
	BeforeCoverage []BandCount `json:"before_coverage"`
	OngoingAge     []BandCount `json:"ongoing_age"`
}

// Report is the full dashboard model for one FilterState.
type Report struct {
	RecordSetVersion string      `json:"record_set_version"`
	Source           string      `json:"source"`
	TotalRecords     int         `json:"total_records"`
	AsOf             time.Time   `json:"as_of"`
	Filter           FilterState `json:"filter"`
	KPIs             KPISummary  `json:"kpis"`
	Bands            BandSummary `json:"bands"`
	Evaluation       *Evaluation `json:"evaluation"`
}

// DimensionSegments holds the Top-N segments for one dimension of a sweep.
type DimensionSegments struct {
	Dimension     SegmentDimension   `json:"dimension"`
	IncludedCount int                `json:"included_count"`
	Segments      []SegmentAggregate `json:"segments"`
}

// FilterCatalog lists the selectable values per filter, each starting with All.
type FilterCatalog struct {
	MetricTypes       []MetricType                  `json:"metric_types"`
	SegmentDimensions []SegmentDimension            `json:"segment_dimensions"`
	Values            map[SegmentDimension][]string `json:"values"`
	Availability      []string                      `json:"availability"`
}
