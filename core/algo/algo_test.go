package algo

import (
	"testing"
	"time"

	"github.com/huangsam/coverspot/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TestCompletedMonths tests whole calendar month counting.
func TestCompletedMonths(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		expected int
	}{
		{"same day", date(2024, 3, 10), date(2024, 3, 10), 0},
		{"one day short of a month", date(2024, 1, 15), date(2024, 2, 14), 0},
		{"exactly one month", date(2024, 1, 15), date(2024, 2, 15), 1},
		{"end of month into shorter month", date(2024, 1, 31), date(2024, 2, 29), 0},
		{"across year boundary", date(2023, 11, 20), date(2024, 2, 20), 3},
		{"two years and a half", date(2022, 1, 1), date(2024, 7, 1), 30},
		{"just under two years", date(2022, 6, 2), date(2024, 6, 1), 23},
		{"end before start", date(2024, 6, 1), date(2024, 1, 1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CompletedMonths(tt.start, tt.end))
		})
	}
}

// TestMedian tests that undefined values are skipped.
func TestMedian(t *testing.T) {
	f := schema.Float64Ptr

	assert.Nil(t, Median(nil))
	assert.Nil(t, Median([]*float64{nil, nil}))

	odd := Median([]*float64{f(0.9), nil, f(0.1), f(0.5)})
	require.NotNil(t, odd)
	assert.InDelta(t, 0.5, *odd, 1e-9)

	even := Median([]*float64{f(0.2), f(0.4), nil, f(0.8), f(0.6)})
	require.NotNil(t, even)
	assert.InDelta(t, 0.5, *even, 1e-9)
}

// TestRankConsultants tests ordering, tie-breaks and exclusion.
func TestRankConsultants(t *testing.T) {
	records := []schema.ConsultantRecord{
		{FullName: "A"}, {FullName: "B"}, {FullName: "C"}, {FullName: "D"}, {FullName: "E"},
	}
	metrics := []schema.DerivedRecordMetrics{
		{Index: 0, Included: true, AnomalyScore: 10},
		{Index: 1, Included: true, AnomalyScore: 70},
		{Index: 2, Included: false, AnomalyScore: 99},
		{Index: 3, Included: true, AnomalyScore: 10},
		{Index: 4, Included: true, AnomalyScore: 45},
	}

	ranked := RankConsultants(records, metrics)
	require.Len(t, ranked, 4)

	names := make([]string, len(ranked))
	for i, e := range ranked {
		names[i] = e.Record.FullName
		assert.Equal(t, i+1, e.Rank)
	}
	assert.Equal(t, []string{"B", "E", "A", "D"}, names)
	assert.Equal(t, schema.CriticalValue, ranked[0].Label)
	assert.Equal(t, schema.HighValue, ranked[1].Label)
	assert.Equal(t, schema.LowValue, ranked[3].Label)

	third, ok := ranked.At(3)
	require.True(t, ok)
	assert.Equal(t, "A", third.Record.FullName)

	_, ok = ranked.At(0)
	assert.False(t, ok)
	_, ok = ranked.At(5)
	assert.False(t, ok)
}

// TestRankSegments tests descending rate with catalog-order tie-breaks.
func TestRankSegments(t *testing.T) {
	segments := []schema.SegmentAggregate{
		{SegmentValue: "Alpha", Count: 10, LowCount: 6, LowRate: 0.6},
		{SegmentValue: "Beta", Count: 4, LowCount: 4, LowRate: 1.0},
		{SegmentValue: "Gamma", Count: 5, LowCount: 3, LowRate: 0.6},
		{SegmentValue: "Delta", Count: 2, LowCount: 0, LowRate: 0},
	}

	ranked := RankSegments(segments, 3)
	require.Len(t, ranked, 3)
	assert.Equal(t, "Beta", ranked[0].SegmentValue)
	assert.Equal(t, "Alpha", ranked[1].SegmentValue)
	assert.Equal(t, "Gamma", ranked[2].SegmentValue)

	assert.Len(t, RankSegments(nil, 10), 0)
}
