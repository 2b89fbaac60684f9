package algo

import (
	"sort"

	"github.com/huangsam/coverspot/schema"
)

// RankConsultants orders the included records by anomaly score, highest first.
// Ties keep the original record order, so the result is reproducible and every
// position maps to exactly one record. metrics must be aligned with records.
func RankConsultants(records []schema.ConsultantRecord, metrics []schema.DerivedRecordMetrics) schema.RankedList {
	ranked := make(schema.RankedList, 0, len(records))
	for i := range metrics {
		if !metrics[i].Included {
			continue
		}
		ranked = append(ranked, schema.RankedEntry{
			Record:  records[metrics[i].Index],
			Metrics: metrics[i],
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Metrics.AnomalyScore > ranked[j].Metrics.AnomalyScore
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
		ranked[i].Label = schema.GetPlainLabel(ranked[i].Metrics.AnomalyScore)
	}
	return ranked
}

// RankSegments sorts segments by low-coverage rate, highest first.
// The input order is the tie-break, so callers pass segments in catalog order.
func RankSegments(segments []schema.SegmentAggregate, limit int) []schema.SegmentAggregate {
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].LowRate > segments[j].LowRate
	})
	if limit > 0 && len(segments) > limit {
		return segments[:limit]
	}
	return segments
}
