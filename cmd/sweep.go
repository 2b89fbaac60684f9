package cmd

import (
	"github.com/huangsam/coverspot/internal/contract"
	"github.com/huangsam/coverspot/internal/runner"
	"github.com/spf13/cobra"
)

// sweepCmd evaluates the top segments of every dimension.
var sweepCmd = &cobra.Command{
	Use:   "sweep [input-file]",
	Short: "Show the top segments of every dimension",
	Long: `Evaluate the same filter state once per segment dimension.

Dimensions are evaluated concurrently with up to --workers evaluations at once.
The output lists the dimensions in a fixed order.

Examples:
  # Compare every dimension at a glance
  coverspot sweep consultants.xlsx

  # Export all segments to parquet for further analysis
  coverspot sweep consultants.xlsx --output parquet --output-file segments.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runner.ExecuteSweep(rootCtx, cfg, cacheManager, outputWriter); err != nil {
			contract.LogFatal("Cannot sweep dimensions", err)
		}
	},
}
