package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/coverspot/internal/contract"
	"github.com/huangsam/coverspot/internal/parquet"
)

// ExportHistory writes the report runs and consultant scores of store to
// <outputFile>.report_runs.parquet and <outputFile>.consultant_scores.parquet.
func ExportHistory(w io.Writer, store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history tracking is not enabled. Set --history-backend to export")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no report history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total report runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total consultant scores: %d\n", status.TableSizes[consultantScoresTable])

	runs, err := store.GetAllReportRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve report runs: %w", err)
	}
	scores, err := store.GetAllConsultantScores()
	if err != nil {
		return fmt.Errorf("failed to retrieve consultant scores: %w", err)
	}

	runRows := parquet.ConvertReportRunRecords(runs)
	runsFile := outputFile + ".report_runs.parquet"
	if err := parquet.WriteReportRunsParquet(runRows, runsFile); err != nil {
		return fmt.Errorf("failed to write report runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d report runs to: %s\n", len(runRows), runsFile)

	scoreRows := parquet.ConvertConsultantScoreRecords(scores)
	scoresFile := outputFile + ".consultant_scores.parquet"
	if err := parquet.WriteConsultantScoresParquet(scoreRows, scoresFile); err != nil {
		return fmt.Errorf("failed to write consultant scores: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d consultant scores to: %s\n", len(scoreRows), scoresFile)

	return nil
}
