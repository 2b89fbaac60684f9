package runner

import (
	"context"
	"time"

	"github.com/huangsam/coverspot/internal/contract"
	"github.com/huangsam/coverspot/schema"
)

// beginTracking opens a history run when a history store is configured.
// Failures only warn; the report is still produced.
func beginTracking(ctx context.Context, cfg *contract.Config, set *schema.RecordSet, store contract.HistoryStore) context.Context {
	if store == nil {
		return ctx
	}
	configParams := map[string]any{
		"input":         cfg.InputPath,
		"as_of":         cfg.AsOf.Format(contract.DateFormat),
		"metric":        string(cfg.Filter.MetricType),
		"dimension":     string(cfg.Filter.SegmentDimension),
		"department":    cfg.Filter.Department,
		"team":          cfg.Filter.Team,
		"unit":          cfg.Filter.Unit,
		"legal_entity":  cfg.Filter.LegalEntity,
		"location":      cfg.Filter.Location,
		"lead":          cfg.Filter.Lead,
		"available":     cfg.Filter.Availability,
		"segment_limit": cfg.SegmentLimit,
	}
	runID, err := store.BeginRun(time.Now(), set.Version, configParams)
	if err != nil {
		contract.LogWarn("History tracking initialization failed", err)
		return ctx
	}
	if runID > 0 {
		ctx = withRunID(ctx, runID)
	}
	return ctx
}

// finishTracking stores the score of every included consultant and closes the run.
func finishTracking(ctx context.Context, report *schema.Report, store contract.HistoryStore) {
	runID, ok := getRunID(ctx)
	if store == nil || !ok {
		return
	}
	for _, entry := range report.Evaluation.Ranked {
		if err := store.RecordConsultantScore(runID, toConsultantScore(entry)); err != nil {
			contract.LogWarn("Failed to record score for "+entry.Record.FullName, err)
		}
	}
	if err := store.EndRun(runID, time.Now(), report.TotalRecords, report.Evaluation.IncludedCount); err != nil {
		contract.LogWarn("Failed to finalize history tracking", err)
	}
}

func toConsultantScore(entry schema.RankedEntry) schema.ConsultantScore {
	return schema.ConsultantScore{
		RecordIndex:              entry.Metrics.Index,
		FullName:                 entry.Record.FullName,
		Email:                    entry.Record.Email,
		Department:               entry.Record.Department,
		Team:                     entry.Record.Team,
		Lead:                     entry.Record.Lead,
		SinceRatio:               entry.Metrics.SelectedRatioSince,
		BeforeRatio:              entry.Metrics.SelectedRatioBefore,
		OngoingAgeMonths:         entry.Metrics.OngoingAgeMonths,
		AnomalyScore:             entry.Metrics.AnomalyScore,
		AnomalyFlag:              entry.Metrics.AnomalyFlag,
		AnomalyReasons:           schema.JoinReasons(entry.Metrics.AnomalyReasons),
		LowCoverage:              entry.Metrics.LowCoverageFlag,
		AvailabilityInconsistent: entry.Metrics.AvailabilityInconsistent,
		ScoreLabel:               entry.Label,
	}
}
