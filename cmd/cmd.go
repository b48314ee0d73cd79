// Package cmd defines the command-line interface for metricsagg.
package cmd

import (
	"github.com/huangsam/metricsagg/internal/contract"
	"github.com/huangsam/metricsagg/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("root", "", "Root directory whose subdirectories are project folders")
	rootCmd.PersistentFlags().String("output", string(schema.CSVOut), "Output format: csv or json or text or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Path to write output to ('-' for stdout)")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Fixed decimal places for values (-1 = shortest form)")
	rootCmd.PersistentFlags().String("exclude", "", "Comma-separated list of folder patterns to ignore")
	rootCmd.PersistentFlags().Bool("keep-going", false, "Skip folders whose reports fail to parse instead of aborting")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log per-folder and per-file progress")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored status lines (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("history-backend", "", "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for run history (file path for sqlite)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of historyExportCmd to Viper
	historyExportCmd.Flags().String("output-dir", "", "Directory to write runs.parquet and folder_metrics.parquet into")
	if err := viper.BindPFlags(historyExportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history export flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
