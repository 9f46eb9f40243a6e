package worker

// retry_cron.go
// Background goroutine that periodically re-attempts delivery of PENDENTE
// sync intents whose next_retry_at is due (or that never got enqueued, e.g.
// the process died between commit and LPush). Skips ticks while the circuit
// breaker is open to avoid hammering a downed Omie.

import (
	"context"
	"time"

	"github.com/BistroPdv/bistro-api/internal/infra"
	"github.com/BistroPdv/bistro-api/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	SyncRepo repository.SyncIntentRepository
	Worker   *PdvSyncWorker
	CB       *infra.CircuitBreaker
}

// StartRetryCron launches a background goroutine that ticks every 30s and
// re-attempts due intents. It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	intents, err := cfg.SyncRepo.ListDue(ctx, time.Now(), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query due intents")
		return
	}
	if len(intents) == 0 {
		return
	}

	log.Info().Int("count", len(intents)).Msg("retry_cron: processing due sync intents")

	for i := range intents {
		// The breaker may have tripped mid-batch
		if cfg.CB.State() == infra.CBOpen {
			log.Debug().Msg("retry_cron: circuit breaker opened mid-batch, stopping")
			return
		}
		cfg.Worker.Attempt(ctx, &intents[i])
	}
}
