// Package core has the evaluation logic for filtering, scoring and ranking consultant records.
// It works on in-memory records only and never touches storage or the network.
package core

import (
	"context"
	"time"

	"github.com/huangsam/coverspot/core/agg"
	"github.com/huangsam/coverspot/core/algo"
	"github.com/huangsam/coverspot/schema"
)

// DefaultSegmentLimit is the Top-N size used when the caller passes n <= 0.
const DefaultSegmentLimit = 10

// Evaluate runs one full pass over the records for a filter state.
// Metrics covers every record in input order; segments and the ranked list
// only consider included records. Cancellation is checked between records.
func Evaluate(ctx context.Context, records []schema.ConsultantRecord, fs schema.FilterState, today time.Time, n int) (*schema.Evaluation, error) {
	if err := fs.Validate(); err != nil {
		return nil, err
	}
	metrics, included, err := computeAll(ctx, records, fs, today)
	if err != nil {
		return nil, err
	}
	return &schema.Evaluation{
		IncludedCount: included,
		Metrics:       metrics,
		Segments:      agg.TopSegments(records, metrics, fs.SegmentDimension, segmentLimit(n)),
		Ranked:        algo.RankConsultants(records, metrics),
	}, nil
}

// TopSegments returns the segments of the selected dimension with the highest low-coverage rate.
func TopSegments(records []schema.ConsultantRecord, fs schema.FilterState, today time.Time, n int) ([]schema.SegmentAggregate, error) {
	if err := fs.Validate(); err != nil {
		return nil, err
	}
	metrics, _, err := computeAll(context.Background(), records, fs, today)
	if err != nil {
		return nil, err
	}
	return agg.TopSegments(records, metrics, fs.SegmentDimension, segmentLimit(n)), nil
}

// computeAll derives metrics for every record and counts the included ones.
func computeAll(ctx context.Context, records []schema.ConsultantRecord, fs schema.FilterState, today time.Time) ([]schema.DerivedRecordMetrics, int, error) {
	today = schema.DateOf(today)
	metrics := make([]schema.DerivedRecordMetrics, len(records))
	included := 0
	for i := range records {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		metrics[i] = ComputeMetrics(i, &records[i], fs, today)
		if metrics[i].Included {
			included++
		}
	}
	return metrics, included, nil
}

func segmentLimit(n int) int {
	if n <= 0 {
		return DefaultSegmentLimit
	}
	return n
}
