package worker

// pdv_sync_worker.go
// Processes PDV sync jobs from QueuePdvSync: loads the outbox intent, calls
// Omie AdicionarPedido through the circuit breaker and records the outcome.
// Failures are rescheduled with exponential backoff; after MaxSyncTentativas
// the intent is marked FALHOU and parked in the DLQ.

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/BistroPdv/bistro-api/internal/infra"
	"github.com/BistroPdv/bistro-api/internal/model"
	"github.com/BistroPdv/bistro-api/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	MaxSyncTentativas = 3
	syncBackoffBase   = 30 * time.Second
)

// PdvSyncWorker forwards pedidos to the Omie PDV.
type PdvSyncWorker struct {
	omieClient *infra.OmieClient
	cb         *infra.CircuitBreaker
	syncRepo   repository.SyncIntentRepository
	pedidoRepo repository.PedidoRepository
	catalogo   repository.CatalogoRepository
	rdb        *redis.Client
}

func NewPdvSyncWorker(
	omieClient *infra.OmieClient,
	cb *infra.CircuitBreaker,
	syncRepo repository.SyncIntentRepository,
	pedidoRepo repository.PedidoRepository,
	catalogo repository.CatalogoRepository,
	rdb *redis.Client,
) *PdvSyncWorker {
	return &PdvSyncWorker{
		omieClient: omieClient,
		cb:         cb,
		syncRepo:   syncRepo,
		pedidoRepo: pedidoRepo,
		catalogo:   catalogo,
		rdb:        rdb,
	}
}

// Process handles a single pdv_sync job. Re-delivery is safe: an intent that
// is no longer PENDENTE is skipped.
func (w *PdvSyncWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload PdvSyncJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("pdv_sync_worker: invalid payload")
		return
	}
	intentID, err := uuid.Parse(payload.IntentID)
	if err != nil {
		log.Error().Str("intent_id", payload.IntentID).Msg("pdv_sync_worker: invalid intent_id")
		return
	}

	intent, err := w.syncRepo.FindByID(ctx, intentID)
	if err != nil {
		log.Error().Err(err).Str("intent_id", payload.IntentID).Msg("pdv_sync_worker: intent not found")
		return
	}
	if intent.Status != model.SyncPendente {
		log.Debug().Str("intent_id", payload.IntentID).Str("status", intent.Status).Msg("pdv_sync_worker: intent already settled, skipping")
		return
	}

	w.Attempt(ctx, intent)
}

// Attempt runs one delivery attempt for a PENDENTE intent. Shared with the
// retry cron so both paths apply the same backoff and DLQ rules.
func (w *PdvSyncWorker) Attempt(ctx context.Context, intent *model.PdvSyncIntent) {
	rest, err := w.catalogo.FindRestaurante(ctx, intent.RestaurantCnpj)
	if err != nil {
		log.Error().Err(err).Str("cnpj", intent.RestaurantCnpj).Msg("pdv_sync_worker: restaurante lookup failed")
		w.handleFailure(ctx, intent, err)
		return
	}
	if rest.OmieKey == nil || rest.OmieSecret == nil {
		w.fail(ctx, intent, "restaurante sem credenciais Omie configuradas")
		return
	}

	var data model.PdvSyncPayload
	if err := json.Unmarshal(intent.Payload, &data); err != nil {
		// A payload that cannot be parsed will never succeed; no retry.
		w.fail(ctx, intent, fmt.Sprintf("payload inválido: %v", err))
		return
	}

	pedido := infra.OmiePedido{
		CodigoPedidoIntegracao: data.PedidoID,
		QuantidadeItens:        len(data.Itens),
		Itens:                  make([]infra.OmiePedidoItem, 0, len(data.Itens)),
	}
	for _, item := range data.Itens {
		pedido.Itens = append(pedido.Itens, infra.OmiePedidoItem{
			CodigoProduto: item.CodigoProduto,
			Quantidade:    item.Quantidade,
		})
	}

	var resp *infra.OmiePedidoResponse
	cbErr := w.cb.Execute(func() error {
		r, err := w.omieClient.AdicionarPedido(ctx, infra.OmieCredentials{
			AppKey:    *rest.OmieKey,
			AppSecret: *rest.OmieSecret,
		}, pedido)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if cbErr != nil {
		log.Warn().Err(cbErr).Str("intent_id", intent.ID.String()).Int("tentativas", intent.Tentativas).Msg("pdv_sync_worker: omie call failed")
		w.handleFailure(ctx, intent, cbErr)
		return
	}

	if err := w.syncRepo.MarkEnviado(ctx, intent.ID); err != nil {
		log.Error().Err(err).Str("intent_id", intent.ID.String()).Msg("pdv_sync_worker: mark enviado failed")
		return
	}
	cod := strconv.FormatInt(resp.CodigoPedido, 10)
	if err := w.pedidoRepo.SetPdvCod(ctx, intent.PedidoID, cod); err != nil {
		log.Error().Err(err).Str("pedido_id", intent.PedidoID.String()).Msg("pdv_sync_worker: set pdv_cod_pedido failed")
		return
	}
	log.Info().
		Str("intent_id", intent.ID.String()).
		Str("pedido_id", intent.PedidoID.String()).
		Str("pdv_cod", cod).
		Msg("pdv_sync_worker: pedido synced")
}

// handleFailure reschedules the intent or, after the last allowed attempt,
// parks it in the DLQ. Backoff doubles per attempt: 30s, 60s.
func (w *PdvSyncWorker) handleFailure(ctx context.Context, intent *model.PdvSyncIntent, cause error) {
	tentativas := intent.Tentativas + 1
	if tentativas >= MaxSyncTentativas {
		w.fail(ctx, intent, fmt.Sprintf("esgotou %d tentativas: %v", tentativas, cause))
		return
	}
	nextRetry := time.Now().Add(computeSyncBackoff(tentativas))
	if err := w.syncRepo.ScheduleRetry(ctx, intent.ID, tentativas, nextRetry, cause.Error()); err != nil {
		log.Error().Err(err).Str("intent_id", intent.ID.String()).Msg("pdv_sync_worker: schedule retry failed")
	}
}

func (w *PdvSyncWorker) fail(ctx context.Context, intent *model.PdvSyncIntent, reason string) {
	if err := w.syncRepo.MarkFalhou(ctx, intent.ID, reason); err != nil {
		log.Error().Err(err).Str("intent_id", intent.ID.String()).Msg("pdv_sync_worker: mark falhou failed")
		return
	}
	SendToDLQ(ctx, w.rdb, QueuePdvSync, "pdv_sync", intent.Payload, reason, intent.Tentativas+1)
}

// computeSyncBackoff returns the wait before the given (1-based) retry:
// 30s after the first failure, 60s after the second.
func computeSyncBackoff(tentativas int) time.Duration {
	d := syncBackoffBase
	for i := 1; i < tentativas; i++ {
		d *= 2
	}
	return d
}
