// Package parquet provides data structures and functions for exporting
// summary tables and run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/metricsagg/schema"
	"github.com/parquet-go/parquet-go"
)

// SummaryCell is one folder/metric value of a summary table in long format.
type SummaryCell struct {
	// Folder is the project folder name
	Folder string `parquet:"folder,snappy,dict"`

	// SourceFile is the analyzer file the metric came from (empty for unknown keys)
	SourceFile string `parquet:"source_file,snappy,dict"`

	// Category is test or non_test (empty for unknown keys)
	Category string `parquet:"category,snappy,dict"`

	// Metric is the metric name as reported by the analyzer
	Metric string `parquet:"metric,snappy,dict"`

	// Value is the averaged metric value
	Value float64 `parquet:"value,snappy"`
}

// Run represents a single summarize run with metadata.
// This struct maps to the metricsagg_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// RootPath is the directory whose folders were summarized
	RootPath string `parquet:"root_path,snappy"`

	// TotalFolders is the number of folder rows produced by this run
	TotalFolders int32 `parquet:"total_folders,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// FolderMetric represents one recorded folder cell of a run.
// This struct maps to the metricsagg_folder_metrics database table.
type FolderMetric struct {
	RunID       int64   `parquet:"run_id,snappy"`
	Folder      string  `parquet:"folder,snappy,dict"`
	MetricKey   string  `parquet:"metric_key,snappy,dict"`
	MetricValue float64 `parquet:"metric_value,snappy"`
}

// WriteSummaryCells writes summary cells to w as a Parquet stream.
func WriteSummaryCells(w io.Writer, data []SummaryCell) error {
	return writeRows(w, data)
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeFile(outputPath, data)
}

// WriteFolderMetricsParquet writes a slice of FolderMetric structs to a Parquet file.
func WriteFolderMetricsParquet(data []FolderMetric, outputPath string) error {
	return writeFile(outputPath, data)
}

// writeFile creates outputPath and writes data to it.
func writeFile[T any](outputPath string, data []T) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writeRows(file, data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// writeRows encodes data with a schema inferred from T's struct tags.
// The footer is only written on Close, so its error is returned too.
func writeRows[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertSummaryTable flattens a summary table into long-format Parquet rows.
func ConvertSummaryTable(table schema.SummaryTable) []SummaryCell {
	cells := table.Cells()
	result := make([]SummaryCell, len(cells))
	for i, cell := range cells {
		result[i] = SummaryCell{
			Folder:     cell.Folder,
			SourceFile: string(cell.Source),
			Category:   string(cell.Category),
			Metric:     cell.Metric,
			Value:      cell.Value,
		}
	}
	return result
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			RootPath:      record.RootPath,
			TotalFolders:  record.TotalFolders,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertFolderMetricRecords converts schema.FolderMetricRecord to FolderMetric for Parquet export.
func ConvertFolderMetricRecords(records []schema.FolderMetricRecord) []FolderMetric {
	result := make([]FolderMetric, len(records))
	for i, record := range records {
		result[i] = FolderMetric{
			RunID:       record.RunID,
			Folder:      record.Folder,
			MetricKey:   record.MetricKey,
			MetricValue: record.MetricValue,
		}
	}
	return result
}
