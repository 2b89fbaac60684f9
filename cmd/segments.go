package cmd

import (
	"github.com/huangsam/coverspot/internal/contract"
	"github.com/huangsam/coverspot/internal/runner"
	"github.com/spf13/cobra"
)

// segmentsCmd lists the segments with the highest low-coverage rate.
var segmentsCmd = &cobra.Command{
	Use:   "segments [input-file]",
	Short: "Show the segments with the highest low-coverage rate",
	Long: `Group the included consultants by one dimension and rank the groups.

Each segment shows how many consultants it holds, how many of them are below
the coverage threshold, and the resulting low-coverage rate.

Examples:
  # Top teams by low-coverage rate
  coverspot segments consultants.xlsx --dimension Team

  # Top 3 locations of one legal entity
  coverspot segments consultants.xlsx --dimension Location --legal-entity "Acme GmbH" --segment-limit 3`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runner.ExecuteSegments(rootCtx, cfg, cacheManager, outputWriter); err != nil {
			contract.LogFatal("Cannot evaluate segments", err)
		}
	},
}
