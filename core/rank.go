package core

import (
	"context"
	"time"

	"github.com/huangsam/coverspot/core/algo"
	"github.com/huangsam/coverspot/schema"
)

// RankedList returns the included records worst-first by anomaly score.
// Equal scores keep their original record order.
func RankedList(records []schema.ConsultantRecord, fs schema.FilterState, today time.Time) (schema.RankedList, error) {
	if err := fs.Validate(); err != nil {
		return nil, err
	}
	metrics, _, err := computeAll(context.Background(), records, fs, today)
	if err != nil {
		return nil, err
	}
	return algo.RankConsultants(records, metrics), nil
}
