package worker

// sync_cron.go
// Background goroutine that periodically enqueues a sync job so the local
// store converges with the remote snapshot even when no one triggers a
// manual sync. Uses the Circuit Breaker state to avoid queueing work while
// the remote is known to be down.

import (
	"context"
	"time"

	"github.com/azmi-amirullah/minimarket-pos/internal/infra"

	"github.com/rs/zerolog/log"
)

// SyncCronConfig holds the dependencies for the periodic sync goroutine.
type SyncCronConfig struct {
	Dispatcher *Dispatcher
	CB         *infra.CircuitBreaker
	Interval   time.Duration
}

// StartSyncCron launches a goroutine that enqueues a sync job on every tick.
// It respects the context for graceful shutdown.
func StartSyncCron(ctx context.Context, cfg SyncCronConfig) {
	if cfg.Interval <= 0 {
		log.Info().Msg("sync_cron: disabled (no interval configured)")
		return
	}

	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("sync_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("sync_cron: shutting down")
				return
			case <-ticker.C:
				if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
					log.Debug().Msg("sync_cron: circuit breaker is open, skipping tick")
					continue
				}
				if err := cfg.Dispatcher.EnqueueSync(ctx); err != nil {
					log.Error().Err(err).Msg("sync_cron: failed to enqueue sync job")
				}
			}
		}
	}()
}
