package parquet

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/metricsagg/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{"summary cell", new(SummaryCell), []string{"folder", "source_file", "category", "metric", "value"}},
		{"run", new(Run), []string{"run_id", "start_time", "end_time", "run_duration_ms", "root_path", "total_folders", "config_params"}},
		{"folder metric", new(FolderMetric), []string{"run_id", "folder", "metric_key", "metric_value"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			require.NotNil(t, s)
			for _, colName := range tt.columns {
				_, ok := s.Lookup(colName)
				assert.True(t, ok, "Column %s should exist in schema", colName)
			}
		})
	}
}

func readAll[T any](t *testing.T, r io.ReaderAt) []T {
	t.Helper()
	reader := parquet.NewGenericReader[T](r)
	defer reader.Close()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestConvertSummaryTable(t *testing.T) {
	table := schema.SummaryTable{
		Columns: []string{"complexity.json_test_total_methods", "custom"},
		Rows: []schema.SummaryRow{
			{Folder: "A", Values: schema.FolderReport{"complexity.json_test_total_methods": 3, "custom": 1}},
			{Folder: "B", Values: schema.FolderReport{}},
		},
	}

	cells := ConvertSummaryTable(table)
	require.Len(t, cells, 2)
	assert.Equal(t, SummaryCell{
		Folder: "A", SourceFile: "complexity.json", Category: "test", Metric: "total_methods", Value: 3,
	}, cells[0])
	assert.Equal(t, SummaryCell{Folder: "A", Metric: "custom", Value: 1}, cells[1])
}

func TestWriteSummaryCells(t *testing.T) {
	data := []SummaryCell{
		{Folder: "A", SourceFile: "raw_metrics.json", Category: "non_test", Metric: "loc", Value: 40},
		{Folder: "B", SourceFile: "lizard_report.xml", Category: "test", Metric: "CCN", Value: 2.5},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummaryCells(&buf, data))
	assert.Greater(t, buf.Len(), 0)

	assert.Equal(t, data, readAll[SummaryCell](t, bytes.NewReader(buf.Bytes())))
}

func TestWriteRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)
	duration := int32(1500)
	params := `{"output":"csv"}`
	data := []Run{
		{RunID: 1, StartTime: start, EndTime: &end, RunDurationMs: &duration, RootPath: "/data", TotalFolders: 4, ConfigParams: &params},
		{RunID: 2, StartTime: start, RootPath: "/data"},
	}

	require.NoError(t, WriteRunsParquet(data, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	readData := readAll[Run](t, file)
	require.Len(t, readData, 2)

	assert.Equal(t, int64(1), readData[0].RunID)
	assert.Equal(t, "/data", readData[0].RootPath)
	assert.Equal(t, int32(4), readData[0].TotalFolders)
	require.NotNil(t, readData[0].EndTime)
	assert.WithinDuration(t, end, *readData[0].EndTime, time.Nanosecond)
	require.NotNil(t, readData[0].RunDurationMs)
	assert.Equal(t, duration, *readData[0].RunDurationMs)
	require.NotNil(t, readData[0].ConfigParams)
	assert.Equal(t, params, *readData[0].ConfigParams)

	// Nullable fields stay nil for an unfinished run
	assert.Nil(t, readData[1].EndTime)
	assert.Nil(t, readData[1].RunDurationMs)
	assert.Nil(t, readData[1].ConfigParams)
}

func TestWriteFolderMetricsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "folder_metrics.parquet")
	data := ConvertFolderMetricRecords([]schema.FolderMetricRecord{
		{RunID: 1, Folder: "A", MetricKey: "raw_metrics.json_test_loc", MetricValue: 10},
		{RunID: 1, Folder: "B", MetricKey: "halstead.json_non_test_volume", MetricValue: 12.5},
	})

	require.NoError(t, WriteFolderMetricsParquet(data, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	assert.Equal(t, data, readAll[FolderMetric](t, file))
}

func TestWriteFolderMetricsParquet_EmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteFolderMetricsParquet([]FolderMetric{}, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestWriteRunsParquet_InvalidPath(t *testing.T) {
	err := WriteRunsParquet(nil, filepath.Join(t.TempDir(), "missing", "runs.parquet"))
	assert.Error(t, err)
}

func TestConvertRunRecords(t *testing.T) {
	start := time.Now()
	records := []schema.RunRecord{{RunID: 9, StartTime: start, RootPath: "/r", TotalFolders: 2}}
	runs := ConvertRunRecords(records)
	require.Len(t, runs, 1)
	assert.Equal(t, int64(9), runs[0].RunID)
	assert.Equal(t, "/r", runs[0].RootPath)
	assert.Equal(t, int32(2), runs[0].TotalFolders)
	assert.Equal(t, start, runs[0].StartTime)
}
