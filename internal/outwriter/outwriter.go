// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/metricsagg/internal/contract"
	"github.com/huangsam/metricsagg/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteSummary prints the summary table using the configured output format.
func (ow *OutWriter) WriteSummary(table schema.SummaryTable, cfg *contract.Config, duration time.Duration) error {
	return PrintSummary(table, cfg, duration)
}
