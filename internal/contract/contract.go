// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/metricsagg/schema"
)

// HistoryManager defines the interface for reaching the run history store.
// This allows the history layer to be mocked for testing.
type HistoryManager interface {
	GetHistoryStore() HistoryStore
}

// HistoryStore defines the interface for tracking summarize runs and their folder cells.
type HistoryStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, rootPath string, configParams map[string]any) (int64, error)

	// RecordFolder stores every flattened cell of one folder report
	RecordFolder(runID int64, folder string, report schema.FolderReport) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalFolders int) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every recorded run, oldest first
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllFolderMetrics returns every recorded folder cell
	GetAllFolderMetrics() ([]schema.FolderMetricRecord, error)

	// Close closes the underlying connection
	Close() error
}
