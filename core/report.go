package core

import (
	"context"
	"time"

	"github.com/huangsam/coverspot/core/algo"
	"github.com/huangsam/coverspot/schema"
)

// Band labels in display order.
var (
	coverageBands = []string{"<30%", "30-49%", "50-79%", ">=80%"}
	ageBands      = []string{"<12m", "12-24m", ">=24m"}
)

// BuildReport evaluates a record set and adds the headline KPIs and band distributions.
func BuildReport(ctx context.Context, set *schema.RecordSet, fs schema.FilterState, today time.Time, n int) (*schema.Report, error) {
	today = schema.DateOf(today)
	eval, err := Evaluate(ctx, set.Records, fs, today, n)
	if err != nil {
		return nil, err
	}
	return &schema.Report{
		RecordSetVersion: set.Version,
		Source:           set.Source,
		TotalRecords:     len(set.Records),
		AsOf:             today,
		Filter:           fs,
		KPIs:             computeKPIs(set.Records, eval.Metrics),
		Bands:            computeBands(eval.Metrics),
		Evaluation:       eval,
	}, nil
}

// computeKPIs summarizes the included records.
// Medians use the raw ratios of both metric types, skipping undefined values.
func computeKPIs(records []schema.ConsultantRecord, metrics []schema.DerivedRecordMetrics) schema.KPISummary {
	var kpi schema.KPISummary
	var wSince, aSince, wBefore, aBefore []*float64
	for _, m := range metrics {
		if !m.Included {
			continue
		}
		rec := &records[m.Index]
		kpi.ConsultantCount++
		wSince = append(wSince, rec.SinceEntry.WeightedRatio)
		aSince = append(aSince, rec.SinceEntry.AbsoluteRatio)
		wBefore = append(wBefore, rec.BeforeEntry.WeightedRatio)
		aBefore = append(aBefore, rec.BeforeEntry.AbsoluteRatio)

		if m.OngoingAgeMonths != nil && *m.OngoingAgeMonths >= schema.StaleEngagementMonths {
			kpi.StaleEngagementCount++
		}
		if rec.EngagementsWithInvalidDates > 0 {
			kpi.InvalidDatesCount++
		}
		if m.AnomalyFlag {
			kpi.AnomalyCount++
		}
		if m.LowCoverageFlag {
			kpi.LowCoverageCount++
		}
		if m.AvailabilityInconsistent {
			kpi.AvailabilityInconsistentCount++
		}
	}
	kpi.MedianWeightedSince = algo.Median(wSince)
	kpi.MedianAbsoluteSince = algo.Median(aSince)
	kpi.MedianWeightedBefore = algo.Median(wBefore)
	kpi.MedianAbsoluteBefore = algo.Median(aBefore)
	return kpi
}

// computeBands buckets the selected ratios and ongoing ages of included records.
// Undefined values fall into no band.
func computeBands(metrics []schema.DerivedRecordMetrics) schema.BandSummary {
	since := make([]int, len(coverageBands))
	before := make([]int, len(coverageBands))
	age := make([]int, len(ageBands))
	for _, m := range metrics {
		if !m.Included {
			continue
		}
		if m.SelectedRatioSince != nil {
			since[coverageBandIndex(*m.SelectedRatioSince)]++
		}
		if m.SelectedRatioBefore != nil {
			before[coverageBandIndex(*m.SelectedRatioBefore)]++
		}
		if m.OngoingAgeMonths != nil {
			age[ageBandIndex(*m.OngoingAgeMonths)]++
		}
	}
	return schema.BandSummary{
		SinceCoverage:  toBandCounts(coverageBands, since),
		BeforeCoverage: toBandCounts(coverageBands, before),
		OngoingAge:     toBandCounts(ageBands, age),
	}
}

func coverageBandIndex(r float64) int {
	switch {
	case r < 0.3:
		return 0
	case r < 0.5:
		return 1
	case r < 0.8:
		return 2
	default:
		return 3
	}
}

func ageBandIndex(months int) int {
	switch {
	case months < 12:
		return 0
	case months < schema.StaleEngagementMonths:
		return 1
	default:
		return 2
	}
}

func toBandCounts(labels []string, counts []int) []schema.BandCount {
	out := make([]schema.BandCount, len(labels))
	for i, l := range labels {
		out[i] = schema.BandCount{Band: l, Count: counts[i]}
	}
	return out
}
