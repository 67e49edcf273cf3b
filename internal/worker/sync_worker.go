package worker

// sync_worker.go
// Executes sync-cycle jobs from QueueSync: pull the canonical remote
// snapshot, swap it into the local store, push unsynced local sales.

import (
	"context"
	"encoding/json"

	"github.com/azmi-amirullah/minimarket-pos/internal/dto"

	"github.com/rs/zerolog/log"
)

// Syncer is implemented by the sync service. Declared here so the worker
// package does not import the service package (which imports this one).
type Syncer interface {
	Sync(ctx context.Context) (*dto.SyncResult, error)
}

type SyncWorker struct {
	syncer Syncer
}

func NewSyncWorker(syncer Syncer) *SyncWorker {
	return &SyncWorker{syncer: syncer}
}

// Process runs one full sync cycle. Sync errors are returned so the pool
// retries the job; a cycle is idempotent, so retries are safe.
func (w *SyncWorker) Process(ctx context.Context, _ json.RawMessage) error {
	result, err := w.syncer.Sync(ctx)
	if err != nil {
		return err
	}
	log.Info().
		Int("pulled_products", result.PulledProducts).
		Int("pulled_batches", result.PulledBatches).
		Int("pulled_sales", result.PulledSales).
		Int("pushed_sales", result.PushedSales).
		Msg("sync_worker: cycle completed")
	return nil
}
