package cmd

import (
	"github.com/huangsam/coverspot/internal/contract"
	"github.com/huangsam/coverspot/internal/runner"
	"github.com/spf13/cobra"
)

// rankedCmd lists consultants by anomaly score.
var rankedCmd = &cobra.Command{
	Use:   "ranked [input-file]",
	Short: "Rank consultants by anomaly score",
	Long: `Rank the included consultants by anomaly score, highest first.

The score combines low coverage, stale ongoing engagements, invalid dates and
inverted timelines. Each row carries the reasons behind its score.

Examples:
  # Top 10 consultants that need attention
  coverspot ranked consultants.xlsx --limit 10

  # Only available consultants, absolute metric
  coverspot ranked consultants.xlsx --available Yes --metric Absolute

  # Drill into the consultant at rank 3
  coverspot ranked consultants.xlsx --rank 3`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runner.ExecuteRanked(rootCtx, cfg, cacheManager, outputWriter); err != nil {
			contract.LogFatal("Cannot rank consultants", err)
		}
	},
}
