package cmd

import (
	"github.com/huangsam/coverspot/internal/contract"
	"github.com/huangsam/coverspot/internal/runner"
	"github.com/spf13/cobra"
)

// reportCmd evaluates the full report for one filter state.
var reportCmd = &cobra.Command{
	Use:   "report [input-file]",
	Short: "Evaluate KPIs, segments and ranked consultants in one pass",
	Long: `Evaluate the consultant export and print the complete report.

The report contains:
- KPI counts (anomalies, low coverage, stale engagements, invalid dates)
- Ratio and age bands
- Top segments of the selected dimension
- Consultants ranked by anomaly score

Examples:
  # Evaluate an Excel export as of today
  coverspot report consultants.xlsx

  # Restrict to one department and pin the evaluation date
  coverspot report consultants.xlsx --department Engineering --as-of 2024-07-01

  # Full report as JSON
  coverspot report consultants.csv --output json --output-file report.json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runner.ExecuteReport(rootCtx, cfg, cacheManager, outputWriter); err != nil {
			contract.LogFatal("Cannot evaluate report", err)
		}
	},
}
