// Package outwriter renders reports, rankings and catalogs as text tables, JSON, CSV or Parquet.
package outwriter

import (
	"os"
	"time"

	"github.com/huangsam/coverspot/internal/contract"
	"github.com/huangsam/coverspot/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the runner.
type OutWriter struct{}

var _ contract.OutputWriter = &OutWriter{} // Compile-time check

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteReport prints the full report using the configured output format.
func (ow *OutWriter) WriteReport(report *schema.Report, cfg *contract.Config, duration time.Duration) error {
	return WriteReportResults(report, cfg, duration)
}

// WriteSegments prints the Top-N segments using the configured output format.
func (ow *OutWriter) WriteSegments(report *schema.Report, cfg *contract.Config, duration time.Duration) error {
	return WriteSegmentResults(report, cfg, duration)
}

// WriteRanked prints ranked consultants using the configured output format.
func (ow *OutWriter) WriteRanked(list schema.RankedList, cfg *contract.Config, duration time.Duration) error {
	return WriteRankedResults(list, cfg, duration)
}

// WriteSweep prints the Top-N segments of every dimension using the configured output format.
func (ow *OutWriter) WriteSweep(results []schema.DimensionSegments, cfg *contract.Config, duration time.Duration) error {
	return WriteSweepResults(results, cfg, duration)
}

// WriteCatalog prints the selectable filter values using the configured output format.
func (ow *OutWriter) WriteCatalog(catalog schema.FilterCatalog, cfg *contract.Config) error {
	return WriteCatalogResults(catalog, cfg)
}

// Width bounds for the name column of ranked tables.
const (
	minNameWidth = 15
	maxNameWidth = 40
)

// GetMaxTableNameWidth calculates the maximum width for consultant names in table output
// based on terminal width and the fixed columns of the ranked table.
func GetMaxTableNameWidth(cfg *contract.Config) int {
	termWidth := cfg.Width

	if termWidth <= 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank + Department + Team + Since + Before + Age + Score + Label + Reasons
	baseWidth := 100

	available := termWidth - baseWidth
	if available < minNameWidth {
		return minNameWidth
	}
	if available > maxNameWidth {
		return maxNameWidth
	}
	return available
}
