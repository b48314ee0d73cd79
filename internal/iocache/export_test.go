package iocache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/metricsagg/internal/parquet"
	"github.com/huangsam/metricsagg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pq "github.com/parquet-go/parquet-go"
)

func TestExecuteHistoryExport(t *testing.T) {
	store := newSQLiteStore(t)
	start := time.Now()
	runID, err := store.BeginRun(start, "/repo", map[string]any{"output": "json"})
	require.NoError(t, err)
	require.NoError(t, store.RecordFolder(runID, "A", schema.FolderReport{"x": 1, "y": 2}))
	require.NoError(t, store.EndRun(runID, start.Add(time.Second), 1))

	outDir := filepath.Join(t.TempDir(), "export")
	require.NoError(t, ExecuteHistoryExport(store, outDir))

	runs, err := pq.ReadFile[parquet.Run](filepath.Join(outDir, runsExportFile))
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].RunID)
	assert.Equal(t, "/repo", runs[0].RootPath)

	metrics, err := pq.ReadFile[parquet.FolderMetric](filepath.Join(outDir, folderMetricsExportFile))
	require.NoError(t, err)
	assert.Len(t, metrics, 2)
}

func TestExecuteHistoryExport_Errors(t *testing.T) {
	t.Run("missing output dir", func(t *testing.T) {
		assert.ErrorContains(t, ExecuteHistoryExport(&MockHistoryStore{}, ""), "--output-dir is required")
	})

	t.Run("history disabled", func(t *testing.T) {
		assert.ErrorContains(t, ExecuteHistoryExport(nil, t.TempDir()), "not enabled")
	})

	t.Run("no runs", func(t *testing.T) {
		store := &MockHistoryStore{}
		store.On("GetStatus").Return(schema.HistoryStatus{Backend: "sqlite", Connected: true}, nil)

		outDir := filepath.Join(t.TempDir(), "out")
		assert.ErrorContains(t, ExecuteHistoryExport(store, outDir), "no run history")
		_, err := os.Stat(outDir)
		assert.True(t, os.IsNotExist(err))
		store.AssertExpectations(t)
	})

	t.Run("status failure", func(t *testing.T) {
		store := &MockHistoryStore{}
		store.On("GetStatus").Return(schema.HistoryStatus{}, errors.New("connection refused"))
		assert.ErrorContains(t, ExecuteHistoryExport(store, t.TempDir()), "connection refused")
	})

	t.Run("query failure", func(t *testing.T) {
		store := &MockHistoryStore{}
		store.On("GetStatus").Return(schema.HistoryStatus{TotalRuns: 1}, nil)
		store.On("GetAllRuns").Return(nil, errors.New("table missing"))
		assert.ErrorContains(t, ExecuteHistoryExport(store, t.TempDir()), "failed to retrieve runs")
	})
}
