// Package core has core logic for discovering project folders, aggregating
// their analyzer metrics and producing the summary table.
package core

import (
	"context"
	"time"

	"github.com/huangsam/metricsagg/internal/contract"
	"github.com/huangsam/metricsagg/internal/outwriter"
)

// ExecuteSummarize aggregates every project folder under the configured root and
// writes the summary using the configured output format.
// It serves as the main entry point for the 'summarize' command.
func ExecuteSummarize(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	start := time.Now()

	var store contract.HistoryStore
	if mgr != nil && cfg.HistoryEnabled() {
		store = mgr.GetHistoryStore()
	}

	table, err := Summarize(ctx, cfg, store)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteSummary(table, cfg, time.Since(start))
}
