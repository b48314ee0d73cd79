package core

import (
	"time"

	"github.com/huangsam/metricsagg/internal/contract"
	"github.com/huangsam/metricsagg/schema"
)

// historyRun tracks one summarize run in the history store. Tracking failures
// are logged and never fail the run.
type historyRun struct {
	store contract.HistoryStore
	id    int64
}

// beginRun starts tracking when a store is configured. The returned run is a
// no-op if store is nil or the run could not be created.
func beginRun(store contract.HistoryStore, cfg *contract.Config) *historyRun {
	if store == nil {
		return &historyRun{}
	}
	id, err := store.BeginRun(time.Now(), cfg.RootPath, cfg.Params())
	if err != nil {
		contract.LogWarn("History tracking initialization failed", err)
		return &historyRun{}
	}
	return &historyRun{store: store, id: id}
}

func (r *historyRun) active() bool {
	return r.store != nil && r.id > 0
}

func (r *historyRun) recordFolder(folder string, report schema.FolderReport) {
	if !r.active() {
		return
	}
	if err := r.store.RecordFolder(r.id, folder, report); err != nil {
		logTrackingError("RecordFolder", folder, err)
	}
}

func (r *historyRun) end(totalFolders int) {
	if !r.active() {
		return
	}
	if err := r.store.EndRun(r.id, time.Now(), totalFolders); err != nil {
		logTrackingError("EndRun", "", err)
	}
}

// logTrackingError logs history tracking errors without failing the run.
func logTrackingError(operation, folder string, err error) {
	contract.Logger.Warn("History tracking failed", "operation", operation, "folder", folder, "err", err)
}
