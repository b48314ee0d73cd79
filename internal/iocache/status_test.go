package iocache

import (
	"bytes"
	"testing"
	"time"

	"github.com/huangsam/metricsagg/schema"
	"github.com/stretchr/testify/assert"
)

func TestWriteHistoryStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   schema.HistoryStatus
		contains []string
		excludes []string
	}{
		{
			name:     "disconnected",
			status:   schema.HistoryStatus{Backend: "none"},
			contains: []string{"History Backend: none", "Connected: false"},
			excludes: []string{"Total Runs"},
		},
		{
			name:     "empty",
			status:   schema.HistoryStatus{Backend: "sqlite", Connected: true, TableSizes: map[string]int64{runsTable: 0}},
			contains: []string{"Total Runs: 0", "Table Sizes:", "metricsagg_runs: 0 rows"},
			excludes: []string{"Last Run ID"},
		},
		{
			name: "with runs",
			status: schema.HistoryStatus{
				Backend:       "sqlite",
				Connected:     true,
				TotalRuns:     3,
				LastRunID:     3,
				LastRunTime:   time.Now(),
				OldestRunTime: time.Now().Add(-time.Hour),
				TotalFolders:  9,
				TableSizes:    map[string]int64{runsTable: 3, folderMetricsTable: 27},
			},
			contains: []string{"Last Run ID: 3", "Total Folders Recorded: 9", "metricsagg_folder_metrics: 27 rows"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			writeHistoryStatus(&buf, tt.status)
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestMockHistoryManager(t *testing.T) {
	store := &MockHistoryStore{}
	mgr := &MockHistoryManager{}
	mgr.On("GetHistoryStore").Return(store)
	assert.Same(t, store, mgr.GetHistoryStore())

	empty := &MockHistoryManager{}
	empty.On("GetHistoryStore").Return(nil)
	assert.Nil(t, empty.GetHistoryStore())
}
