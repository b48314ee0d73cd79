// Package schema has configs, models and constants for all parts of metricsagg.
package schema

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// MetricRecord maps metric names to their averaged value for one category
// of one source file within one project folder.
type MetricRecord map[string]float64

// ExtractResult is the output of a single extractor: one MetricRecord per category.
type ExtractResult map[Category]MetricRecord

// FolderReport maps "{source_file}_{category}_{metric}" keys to values for one folder.
type FolderReport map[string]float64

// SummaryRow is one data row of the summary table.
type SummaryRow struct {
	Folder string       `json:"folder"`
	Values FolderReport `json:"metrics"`
}

// SummaryTable is the flattened, folder-per-row result of an aggregation run.
// Columns holds the sorted union of metric keys, without the leading folder column.
type SummaryTable struct {
	Columns []string     `json:"columns"`
	Rows    []SummaryRow `json:"rows"`
}

// SummaryCell is a single folder/metric value in long format.
type SummaryCell struct {
	Folder   string
	Source   SourceFile
	Category Category
	Metric   string
	Value    float64
}

// FlattenKey builds the composite column name for a metric.
func FlattenKey(source SourceFile, category Category, metric string) string {
	return fmt.Sprintf("%s_%s_%s", source, category, metric)
}

// Header returns the full header row including the leading folder column.
func (t SummaryTable) Header() []string {
	header := make([]string, 0, len(t.Columns)+1)
	header = append(header, FolderColumn)
	return append(header, t.Columns...)
}

// Cells returns every populated cell of the table in long format, in row order.
func (t SummaryTable) Cells() []SummaryCell {
	var cells []SummaryCell
	for _, row := range t.Rows {
		cells = append(cells, row.Values.Cells(row.Folder)...)
	}
	return cells
}

// Cells expands a folder report back into long-format cells, sorted by key.
// Keys are split using the known source file and category names.
func (r FolderReport) Cells(folder string) []SummaryCell {
	keys := slices.Sorted(maps.Keys(r))
	cells := make([]SummaryCell, 0, len(keys))
	for _, key := range keys {
		source, category, metric := SplitKey(key)
		cells = append(cells, SummaryCell{
			Folder:   folder,
			Source:   source,
			Category: category,
			Metric:   metric,
			Value:    r[key],
		})
	}
	return cells
}

// SplitKey reverses FlattenKey. Unknown prefixes return the whole key as the metric.
func SplitKey(key string) (SourceFile, Category, string) {
	for _, source := range AllSourceFiles {
		rest, ok := strings.CutPrefix(key, string(source)+"_")
		if !ok {
			continue
		}
		for _, category := range AllCategories {
			if metric, ok := strings.CutPrefix(rest, string(category)+"_"); ok && metric != "" {
				return source, category, metric
			}
		}
	}
	return "", "", key
}

// RunRecord represents a recorded aggregation run.
type RunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	RootPath      string
	TotalFolders  int32
	ConfigParams  *string
}

// FolderMetricRecord represents one recorded folder/metric cell of a run.
type FolderMetricRecord struct {
	RunID       int64
	Folder      string
	MetricKey   string
	MetricValue float64
}

// HistoryStatus holds status information about the run history store.
type HistoryStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int64            `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalFolders  int64            `json:"total_folders"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}
