package iocache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/huangsam/metricsagg/internal/contract"
	"github.com/huangsam/metricsagg/internal/parquet"
)

// Export file names written into the output directory.
const (
	runsExportFile          = "runs.parquet"
	folderMetricsExportFile = "folder_metrics.parquet"
)

// ExecuteHistoryExport exports the run history to Parquet files in outputDir.
func ExecuteHistoryExport(store contract.HistoryStore, outputDir string) error {
	if outputDir == "" {
		return errors.New("--output-dir is required for export command")
	}
	if store == nil {
		return errors.New("run history is not enabled. Set --history-backend to export")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run history found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total folder metric records: %d\n", status.TableSizes[folderMetricsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	folderMetrics, err := store.GetAllFolderMetrics()
	if err != nil {
		return fmt.Errorf("failed to retrieve folder metrics: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	parquetRuns := parquet.ConvertRunRecords(runs)
	runsFile := filepath.Join(outputDir, runsExportFile)
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	parquetFolderMetrics := parquet.ConvertFolderMetricRecords(folderMetrics)
	folderMetricsFile := filepath.Join(outputDir, folderMetricsExportFile)
	if err := parquet.WriteFolderMetricsParquet(parquetFolderMetrics, folderMetricsFile); err != nil {
		return fmt.Errorf("failed to write folder metrics: %w", err)
	}
	fmt.Printf("Exported %d folder metric records to: %s\n", len(parquetFolderMetrics), folderMetricsFile)

	return nil
}
