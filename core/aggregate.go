package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/huangsam/metricsagg/core/extract"
	"github.com/huangsam/metricsagg/internal/contract"
	"github.com/huangsam/metricsagg/schema"
)

// AggregateFolder runs every known extractor against the analyzer files in dir
// and merges their results into one flattened report. Absent files contribute
// no keys.
func AggregateFolder(ctx context.Context, dir string) (schema.FolderReport, error) {
	report := schema.FolderReport{}
	for _, source := range schema.AllSourceFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(dir, string(source))
		result, err := extract.File(source, path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		contract.Logger.Debug("Extracted metrics", "file", path)
		Flatten(report, source, result)
	}
	return report, nil
}

// Flatten merges an extractor result into report under
// "{source}_{category}_{metric}" keys.
func Flatten(report schema.FolderReport, source schema.SourceFile, result schema.ExtractResult) {
	for category, record := range result {
		for metric, value := range record {
			report[schema.FlattenKey(source, category, metric)] = value
		}
	}
}

// BuildSummaryTable unions the keys of every row into a sorted column list.
// Row order is kept as given.
func BuildSummaryTable(rows []schema.SummaryRow) schema.SummaryTable {
	seen := make(map[string]struct{})
	var columns []string
	for _, row := range rows {
		for key := range row.Values {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			columns = append(columns, key)
		}
	}
	slices.Sort(columns)
	if rows == nil {
		rows = []schema.SummaryRow{}
	}
	return schema.SummaryTable{Columns: columns, Rows: rows}
}

// Summarize discovers the project folders under cfg.RootPath, aggregates each one
// in name order, and builds the summary table. Any extractor failure aborts the
// run unless cfg.KeepGoing is set, in which case the failing folder is dropped.
// When store is non-nil the run and its folder cells are recorded.
func Summarize(ctx context.Context, cfg *contract.Config, store contract.HistoryStore) (schema.SummaryTable, error) {
	folders, err := DiscoverFolders(cfg.RootPath, cfg.Excludes)
	if err != nil {
		return schema.SummaryTable{}, err
	}
	contract.Logger.Debug("Discovered folders", "root", cfg.RootPath, "count", len(folders))

	run := beginRun(store, cfg)

	rows := make([]schema.SummaryRow, 0, len(folders))
	for _, folder := range folders {
		report, err := AggregateFolder(ctx, filepath.Join(cfg.RootPath, folder))
		if err != nil {
			if cfg.KeepGoing && ctx.Err() == nil {
				contract.LogWarn(fmt.Sprintf("Skipping folder %s", folder), err)
				continue
			}
			return schema.SummaryTable{}, fmt.Errorf("folder %s: %w", folder, err)
		}
		rows = append(rows, schema.SummaryRow{Folder: folder, Values: report})
		run.recordFolder(folder, report)
	}

	run.end(len(rows))
	return BuildSummaryTable(rows), nil
}
