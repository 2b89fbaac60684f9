// Package runner wires ingestion, evaluation, persistence and output together
// for the CLI commands and the MCP tools.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/coverspot/core/agg"
	"github.com/huangsam/coverspot/internal/contract"
	"github.com/huangsam/coverspot/internal/ingest"
	"github.com/huangsam/coverspot/schema"
	"golang.org/x/sync/errgroup"
)

// ExecutorFunc defines the function signature shared by the report commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, ow contract.OutputWriter) error

// maxWarningsShown caps how many malformed-cell warnings are echoed to stderr.
const maxWarningsShown = 5

// ExecuteReport evaluates the input and writes the full report.
func ExecuteReport(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, ow contract.OutputWriter) error {
	start := time.Now()
	report, err := GetReportResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return ow.WriteReport(report, cfg, time.Since(start))
}

// ExecuteSegments evaluates the input and writes only the Top-N segment table.
func ExecuteSegments(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, ow contract.OutputWriter) error {
	start := time.Now()
	report, err := evaluate(ctx, cfg, mgr, false)
	if err != nil {
		return err
	}
	return ow.WriteSegments(report, cfg, time.Since(start))
}

// ExecuteRanked evaluates the input and writes the ranked consultants.
// A rank in the config selects that single position instead of the top list.
func ExecuteRanked(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, ow contract.OutputWriter) error {
	start := time.Now()
	list, err := GetRankedResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return ow.WriteRanked(list, cfg, time.Since(start))
}

// ExecuteSweep evaluates every segment dimension and writes their Top-N segments.
func ExecuteSweep(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, ow contract.OutputWriter) error {
	start := time.Now()
	results, err := GetSweepResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return ow.WriteSweep(results, cfg, time.Since(start))
}

// ExecuteCatalog writes the selectable filter values of the input.
func ExecuteCatalog(ctx context.Context, cfg *contract.Config, _ contract.CacheManager, ow contract.OutputWriter) error {
	catalog, err := GetCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	return ow.WriteCatalog(catalog, cfg)
}

// GetReportResults evaluates the input and records the run in the history store.
func GetReportResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.Report, error) {
	return evaluate(ctx, cfg, mgr, true)
}

// GetSegmentResults returns the Top-N segments of the configured dimension.
func GetSegmentResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.DimensionSegments, error) {
	report, err := evaluate(ctx, cfg, mgr, false)
	if err != nil {
		return schema.DimensionSegments{}, err
	}
	return schema.DimensionSegments{
		Dimension:     report.Filter.SegmentDimension,
		IncludedCount: report.Evaluation.IncludedCount,
		Segments:      report.Evaluation.Segments,
	}, nil
}

// GetRankedResults returns the ranked list limited by the config, or the single
// entry at cfg.Rank when it is set.
func GetRankedResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.RankedList, error) {
	report, err := evaluate(ctx, cfg, mgr, false)
	if err != nil {
		return nil, err
	}
	return selectRanked(report.Evaluation.Ranked, cfg.Rank, cfg.ResultLimit)
}

// GetSweepResults evaluates each segment dimension concurrently with the
// current filters and returns the results in catalog order.
func GetSweepResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.DimensionSegments, error) {
	set, err := loadRecordSet(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store := reportStore(mgr)

	results := make([]schema.DimensionSegments, len(schema.AllSegmentDimensions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for i, dim := range schema.AllSegmentDimensions {
		g.Go(func() error {
			report, err := cachedReport(gctx, set, cfg.Filter.WithDimension(dim), cfg.AsOf, cfg.SegmentLimit, store)
			if err != nil {
				return fmt.Errorf("sweep failed for %s: %w", dim, err)
			}
			results[i] = schema.DimensionSegments{
				Dimension:     dim,
				IncludedCount: report.Evaluation.IncludedCount,
				Segments:      report.Evaluation.Segments,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// GetCatalog loads the input and lists the selectable filter values.
func GetCatalog(ctx context.Context, cfg *contract.Config) (schema.FilterCatalog, error) {
	set, err := loadRecordSet(ctx, cfg)
	if err != nil {
		return schema.FilterCatalog{}, err
	}
	return agg.BuildFilterCatalog(set.Records), nil
}

// evaluate loads the input and builds the report through the cache.
func evaluate(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, track bool) (*schema.Report, error) {
	set, err := loadRecordSet(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var history contract.HistoryStore
	if track {
		history = historyStore(mgr)
		ctx = beginTracking(ctx, cfg, set, history)
	}

	report, err := cachedReport(ctx, set, cfg.Filter, cfg.AsOf, cfg.SegmentLimit, reportStore(mgr))
	if err != nil {
		return nil, err
	}

	if track {
		finishTracking(ctx, report, history)
	}
	return report, nil
}

// loadRecordSet reads the input file, prints the header and echoes cell warnings.
func loadRecordSet(ctx context.Context, cfg *contract.Config) (*schema.RecordSet, error) {
	set, err := ingest.Load(cfg.InputPath, cfg.Sheet)
	if err != nil {
		return nil, err
	}
	if !shouldSuppressHeader(ctx) {
		contract.LogReportHeader(headerWriter(cfg), cfg, set)
		logWarnings(os.Stderr, set.Warnings)
	}
	return set, nil
}

// selectRanked applies the rank lookup or the result limit.
func selectRanked(list schema.RankedList, rank, limit int) (schema.RankedList, error) {
	if rank > 0 {
		entry, ok := list.At(rank)
		if !ok {
			return nil, fmt.Errorf("rank %d is out of range (%d consultants ranked)", rank, len(list))
		}
		return schema.RankedList{entry}, nil
	}
	return schema.TopRanked(list, limit), nil
}

// headerWriter keeps machine-readable stdout clean.
func headerWriter(cfg *contract.Config) io.Writer {
	if cfg.Output == schema.TextOut && cfg.OutputFile == "" {
		return os.Stdout
	}
	return os.Stderr
}

func logWarnings(w io.Writer, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "Warn: %d malformed cells were treated as empty\n", len(warnings))
	for _, warning := range warnings[:min(len(warnings), maxWarningsShown)] {
		_, _ = fmt.Fprintf(w, "  %s\n", warning)
	}
	if len(warnings) > maxWarningsShown {
		_, _ = fmt.Fprintf(w, "  ... and %d more\n", len(warnings)-maxWarningsShown)
	}
}

func reportStore(mgr contract.CacheManager) contract.CacheStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetReportStore()
}

func historyStore(mgr contract.CacheManager) contract.HistoryStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetHistoryStore()
}
