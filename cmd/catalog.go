package cmd

import (
	"github.com/huangsam/coverspot/internal/contract"
	"github.com/huangsam/coverspot/internal/runner"
	"github.com/spf13/cobra"
)

// catalogCmd lists the values each filter accepts.
var catalogCmd = &cobra.Command{
	Use:   "catalog [input-file]",
	Short: "List the distinct values of every filter",
	Long: `Print the sorted distinct values of department, team, unit, legal entity,
location and lead found in the export.

Examples:
  coverspot catalog consultants.xlsx
  coverspot catalog consultants.csv --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runner.ExecuteCatalog(rootCtx, cfg, cacheManager, outputWriter); err != nil {
			contract.LogFatal("Cannot list filter values", err)
		}
	},
}
