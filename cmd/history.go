package cmd

import (
	"fmt"

	"github.com/huangsam/metricsagg/internal/contract"
	"github.com/huangsam/metricsagg/internal/iocache"
	"github.com/huangsam/metricsagg/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historySetup loads the minimal configuration needed for history operations.
// History commands need no root directory or output format.
func historySetup(initStores bool) error {
	if err := loadConfig(); err != nil {
		return err
	}
	if err := contract.ProcessHistoryConfig(cfg, input); err != nil {
		return err
	}
	if !initStores {
		return nil
	}
	if err := iocache.InitStores(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("failed to initialize run history: %w", err)
	}
	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup(true)
}

// historyConfigOnlyWrapper skips store initialization so that migrations can
// run on a fresh database and clearing never holds the SQLite file open.
func historyConfigOnlyWrapper(_ *cobra.Command, _ []string) error {
	return historySetup(false)
}

// historyDBFilePath returns the SQLite file holding run history.
func historyDBFilePath() string {
	if cfg.HistoryBackend == schema.SQLiteBackend && cfg.HistoryDBConnect != "" {
		return cfg.HistoryDBConnect
	}
	return iocache.GetHistoryDBFilePath()
}

// historyCmd focused on run history management.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recorded summarize runs and exports",
	Long: `Manage the run history written by 'summarize' when --history-backend is set.

Each recorded run stores:
- Run metadata (root path, settings, timestamps, duration, folder count)
- Every folder's flattened metric values

Supported backends: SQLite (~/.metricsagg_history.db by default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show run history statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all recorded runs
  migrate - Run database schema migrations

Examples:
  # Check history status
  metricsagg history status --history-backend sqlite

  # Export for analysis in pandas/DuckDB
  metricsagg history export --history-backend sqlite --output-dir history`,
}

// historyClearCmd clears the run history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded runs",
	Long: `Delete all recorded runs and folder metrics.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the history and migration tables

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  metricsagg history export --history-backend sqlite --output-dir backup
  metricsagg history clear --history-backend sqlite`,
	PreRunE: historyConfigOnlyWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearHistory(cfg.HistoryBackend, historyDBFilePath(), cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("Run history cleared successfully.")
	},
}

// historyStatusCmd shows run history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics and connection details",
	Long: `Show the backend, connection status, number of recorded runs, the last and
oldest run timestamps and the row count of each history table.

Examples:
  metricsagg history status --history-backend sqlite`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetHistoryStore()
		if store == nil {
			iocache.PrintHistoryStatus(schema.HistoryStatus{Backend: string(cfg.HistoryBackend)})
			return
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run history status", err)
		}
		iocache.PrintHistoryStatus(status)
	},
}

// historyExportCmd exports run history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all recorded runs to Parquet files in --output-dir:
- runs.parquet - one row per summarize run
- folder_metrics.parquet - one row per folder and metric of every run

Examples:
  metricsagg history export --history-backend sqlite --output-dir history
  duckdb -c "SELECT * FROM read_parquet('history/folder_metrics.parquet') LIMIT 10"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		outputDir := viper.GetString("output-dir")
		if err := iocache.ExecuteHistoryExport(iocache.Manager.GetHistoryStore(), outputDir); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the run history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  metricsagg history migrate --history-backend sqlite

  # Rollback to initial state
  metricsagg history migrate --history-backend sqlite --target-version 0`,
	PreRunE: historyConfigOnlyWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
