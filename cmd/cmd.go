// Package cmd defines the command-line interface for coverspot.
package cmd

import (
	"github.com/huangsam/coverspot/internal/contract"
	"github.com/huangsam/coverspot/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(segmentsCmd)
	rootCmd.AddCommand(rankedCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("input", "i", "", "Path to the consultant export (.xlsx or .csv)")
	rootCmd.PersistentFlags().String("sheet", "", "Worksheet to read from an Excel export (default: first sheet)")
	rootCmd.PersistentFlags().String("as-of", "", "Evaluation date in YYYY-MM-DD (default: today)")
	rootCmd.PersistentFlags().String("metric", string(schema.WeightedMetric), "Coverage metric: Weighted or Absolute")
	rootCmd.PersistentFlags().String("dimension", string(schema.DepartmentDimension), "Segment dimension: Department, Team, Unit, Legal entity, Location or Lead")
	rootCmd.PersistentFlags().String("department", "", "Only include this department")
	rootCmd.PersistentFlags().String("team", "", "Only include this team")
	rootCmd.PersistentFlags().String("unit", "", "Only include this unit")
	rootCmd.PersistentFlags().String("legal-entity", "", "Only include this legal entity")
	rootCmd.PersistentFlags().String("location", "", "Only include this location")
	rootCmd.PersistentFlags().String("lead", "", "Only include consultants of this lead")
	rootCmd.PersistentFlags().String("available", schema.AllValue, "Availability filter: All, Yes or No")
	rootCmd.PersistentFlags().Int("segment-limit", contract.DefaultSegmentLimit, "Number of segments to display")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of ranked consultants to display")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("history-backend", "", "History tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for history tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("emoji", "no", "Enable emojis in output headers (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of rankedCmd to Viper
	rankedCmd.Flags().Int("rank", 0, "Show only the consultant at this 1-based rank")
	if err := viper.BindPFlags(rankedCmd.Flags()); err != nil {
		contract.LogFatal("Error binding ranked flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
