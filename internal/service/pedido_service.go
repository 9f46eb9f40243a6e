package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/BistroPdv/bistro-api/internal/apierror"
	"github.com/BistroPdv/bistro-api/internal/dto"
	"github.com/BistroPdv/bistro-api/internal/model"
	"github.com/BistroPdv/bistro-api/internal/repository"
	"github.com/BistroPdv/bistro-api/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type PedidoService interface {
	Create(ctx context.Context, cnpj string, userID uuid.UUID, req dto.CreatePedidoRequest) (*dto.PedidoResponse, error)
	Update(ctx context.Context, cnpj string, id uuid.UUID, req dto.UpdatePedidoRequest) (*dto.PedidoResponse, error)
	Finalizar(ctx context.Context, cnpj string, id, userID uuid.UUID, req dto.FinalizarPedidoRequest) (*dto.PedidoResponse, error)
	FindAll(ctx context.Context, cnpj string, q dto.PaginationQuery) (*dto.PaginatedResponse, error)
	FindOne(ctx context.Context, cnpj string, id uuid.UUID, prodImage bool) (*dto.PedidoResponse, error)
	FindByMesa(ctx context.Context, cnpj string, mesaID uuid.UUID, q dto.FindByMesaQuery) (*dto.PaginatedResponse, error)
	Delete(ctx context.Context, cnpj string, id uuid.UUID) error
}

type pedidoService struct {
	repo       repository.PedidoRepository
	caixaRepo  repository.CaixaRepository
	catalogo   repository.CatalogoRepository
	payments   repository.PaymentRepository
	syncRepo   repository.SyncIntentRepository
	dispatcher *worker.Dispatcher
}

func NewPedidoService(
	repo repository.PedidoRepository,
	caixaRepo repository.CaixaRepository,
	catalogo repository.CatalogoRepository,
	payments repository.PaymentRepository,
	syncRepo repository.SyncIntentRepository,
	dispatcher *worker.Dispatcher,
) PedidoService {
	return &pedidoService{
		repo:       repo,
		caixaRepo:  caixaRepo,
		catalogo:   catalogo,
		payments:   payments,
		syncRepo:   syncRepo,
		dispatcher: dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Create ────────────────────────────────────────────────────────────────────
// The pedido, its lines, their adicionais, the CREATED history event and (for
// OMIE-integrated tenants) the sync intent are committed in ONE transaction.
// Lines are inserted sequentially: each generated line id is needed before
// its adicionais can be inserted. Adicional prices are persisted exactly as
// sent — the catalog is never consulted, freezing the price at sale time.

func (s *pedidoService) Create(ctx context.Context, cnpj string, userID uuid.UUID, req dto.CreatePedidoRequest) (*dto.PedidoResponse, error) {
	pedido := model.Pedido{
		RestaurantCnpj: cnpj,
		Status:         model.PedidoAberto, // caller-supplied status is ignored on create
		TipoPedido:     "COUNTER",
		UserID:         &userID,
	}
	if req.TipoPedido != nil {
		pedido.TipoPedido = *req.TipoPedido
	}
	var err error
	if pedido.MesaID, err = parseOptionalUUID(req.MesaID, "mesaId"); err != nil {
		return nil, err
	}
	if pedido.ComandaID, err = parseOptionalUUID(req.ComandaID, "comandaId"); err != nil {
		return nil, err
	}
	if pedido.CaixaID, err = parseOptionalUUID(req.CaixaID, "caixaId"); err != nil {
		return nil, err
	}

	syncEnabled := s.pdvSyncEnabled(ctx, cnpj)
	var intentID *uuid.UUID

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, &pedido); err != nil {
			return err
		}
		if err := s.repo.CreateHistory(ctx, tx, &model.HistoryPedido{
			PedidoID: pedido.ID,
			Type:     model.HistoryCreated,
		}); err != nil {
			return err
		}
		if err := s.createProdutos(ctx, tx, pedido.ID, req.Produtos); err != nil {
			return err
		}

		if syncEnabled {
			intent, err := s.buildSyncIntent(cnpj, pedido.ID, req.Produtos)
			if err != nil {
				return err
			}
			if intent != nil {
				if err := s.syncRepo.Create(ctx, tx, intent); err != nil {
					return err
				}
				intentID = &intent.ID
			}
		}
		return nil
	})
	if txErr != nil {
		var apiErr *apierror.Error
		if errors.As(txErr, &apiErr) {
			return nil, apiErr
		}
		log.Error().Err(txErr).Str("cnpj", cnpj).Msg("pedido: create failed")
		return nil, apierror.Internal()
	}

	// Best effort: the intent row guarantees the retry cron re-enqueues if
	// this push is lost. Never fails the request.
	if intentID != nil && s.dispatcher != nil {
		if err := s.dispatcher.EnqueuePdvSync(ctx, *intentID); err != nil {
			log.Warn().Err(err).Str("intent_id", intentID.String()).Msg("pedido: pdv sync enqueue failed, retry cron will pick it up")
		}
	}

	return s.FindOne(ctx, cnpj, pedido.ID, false)
}

func (s *pedidoService) createProdutos(ctx context.Context, tx *gorm.DB, pedidoID uuid.UUID, produtos []dto.ProdutoPedidoRequest) error {
	for _, p := range produtos {
		produtoID, err := uuid.Parse(p.ProdutoID)
		if err != nil {
			return apierror.Validation("ID do produto deve ser um UUID válido")
		}
		linha := model.PedidoProduto{
			PedidoID:   pedidoID,
			ProdutoID:  produtoID,
			ExternoID:  p.ExternoID,
			Quantidade: p.Quantidade,
			Obs:        p.Obs,
			Status:     model.ProdutoAguardando,
		}
		if p.Status != nil {
			linha.Status = *p.Status
		}
		if err := s.repo.CreateProduto(ctx, tx, &linha); err != nil {
			return err
		}

		if len(p.Adicionais) == 0 {
			continue
		}
		adicionais := make([]model.PedidoProdutoAdicional, 0, len(p.Adicionais))
		for _, a := range p.Adicionais {
			adicionalID, err := uuid.Parse(a.ID)
			if err != nil {
				return apierror.Validation("ID do adicional deve ser um UUID válido")
			}
			adicionais = append(adicionais, model.PedidoProdutoAdicional{
				PedidoProdutoID: linha.ID,
				AdicionalID:     adicionalID,
				Quantidade:      a.Quantidade,
				Preco:           a.Preco, // frozen at sale time
			})
		}
		if err := s.repo.CreateAdicionais(ctx, tx, adicionais); err != nil {
			return err
		}
	}
	return nil
}

func (s *pedidoService) pdvSyncEnabled(ctx context.Context, cnpj string) bool {
	rest, err := s.catalogo.FindRestaurante(ctx, cnpj)
	if err != nil {
		log.Warn().Err(err).Str("cnpj", cnpj).Msg("pedido: restaurante lookup failed, skipping pdv sync")
		return false
	}
	return rest.PdvIntegration == "OMIE"
}

// buildSyncIntent serializes the forwardable lines (those carrying an
// externoId) into the outbox payload. Returns nil when nothing can be synced.
func (s *pedidoService) buildSyncIntent(cnpj string, pedidoID uuid.UUID, produtos []dto.ProdutoPedidoRequest) (*model.PdvSyncIntent, error) {
	itens := make([]model.PdvSyncItem, 0, len(produtos))
	for _, p := range produtos {
		if p.ExternoID == nil || *p.ExternoID == "" {
			continue
		}
		itens = append(itens, model.PdvSyncItem{
			CodigoProduto: *p.ExternoID,
			Quantidade:    p.Quantidade,
		})
	}
	if len(itens) == 0 {
		return nil, nil
	}
	payload, err := json.Marshal(model.PdvSyncPayload{PedidoID: pedidoID.String(), Itens: itens})
	if err != nil {
		return nil, err
	}
	return &model.PdvSyncIntent{
		PedidoID:       pedidoID,
		RestaurantCnpj: cnpj,
		Payload:        payload,
		Status:         model.SyncPendente,
	}, nil
}

// ── Update ────────────────────────────────────────────────────────────────────
// Header patch plus an explicit tagged line-item operation: "append" (the
// default) adds the submitted lines to the ticket, "replace" removes the
// current lines first. A non-empty item set appends an UPDATED history event.

func (s *pedidoService) Update(ctx context.Context, cnpj string, id uuid.UUID, req dto.UpdatePedidoRequest) (*dto.PedidoResponse, error) {
	pedido, err := s.repo.FindByID(ctx, cnpj, id, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Pedido não encontrado")
		}
		return nil, apierror.Internal()
	}

	if req.Status != nil {
		if *req.Status == model.PedidoCancelado {
			motivo := req.MotivoCancelamento
			if motivo == nil {
				motivo = pedido.MotivoCancelamento
			}
			if motivo == nil || *motivo == "" {
				return nil, apierror.Validation("Motivo do cancelamento é obrigatório ao cancelar um pedido")
			}
		}
		pedido.Status = *req.Status
	}
	if req.PdvCodPedido != nil {
		pedido.PdvCodPedido = req.PdvCodPedido
	}
	if req.MotivoCancelamento != nil {
		pedido.MotivoCancelamento = req.MotivoCancelamento
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, pedido); err != nil {
			return err
		}
		if len(req.Produtos) == 0 {
			return nil
		}
		if req.ItensOp == dto.ItensOpReplace {
			if err := s.repo.DeleteProdutos(ctx, tx, pedido.ID); err != nil {
				return err
			}
		}
		if err := s.createProdutos(ctx, tx, pedido.ID, req.Produtos); err != nil {
			return err
		}
		return s.repo.CreateHistory(ctx, tx, &model.HistoryPedido{
			PedidoID: pedido.ID,
			Type:     model.HistoryUpdated,
		})
	})
	if txErr != nil {
		var apiErr *apierror.Error
		if errors.As(txErr, &apiErr) {
			return nil, apiErr
		}
		log.Error().Err(txErr).Str("pedido_id", id.String()).Msg("pedido: update failed")
		return nil, apierror.Internal()
	}

	return s.FindOne(ctx, cnpj, id, false)
}

// ── Finalizar ─────────────────────────────────────────────────────────────────
// PATCH semantics: links the pedido to an open caixa and the closing user,
// records the payments and flips the status to FINALIZADO.

func (s *pedidoService) Finalizar(ctx context.Context, cnpj string, id, userID uuid.UUID, req dto.FinalizarPedidoRequest) (*dto.PedidoResponse, error) {
	pedido, err := s.repo.FindByID(ctx, cnpj, id, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Pedido não encontrado")
		}
		return nil, apierror.Internal()
	}

	caixaID, err := uuid.Parse(req.CaixaID)
	if err != nil {
		return nil, apierror.Validation("ID do caixa deve ser um UUID válido")
	}
	caixa, err := s.caixaRepo.FindByID(ctx, cnpj, caixaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Caixa não encontrado")
		}
		return nil, apierror.Internal()
	}
	if !caixa.Status {
		return nil, apierror.NotAllowed("Caixa não está aberto")
	}

	pedido.Status = model.PedidoFinalizado
	pedido.CaixaID = &caixa.ID
	pedido.UserID = &userID

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, pedido); err != nil {
			return err
		}
		for _, p := range req.Payments {
			methodID, err := uuid.Parse(p.PaymentMethodID)
			if err != nil {
				return apierror.Validation("ID do método de pagamento deve ser um UUID válido")
			}
			payment := model.Payment{
				PedidoID:        pedido.ID,
				PaymentMethodID: methodID,
				RestaurantCnpj:  cnpj,
				Valor:           p.Valor,
				Troco:           p.Troco,
			}
			if err := s.payments.Create(ctx, tx, &payment); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		var apiErr *apierror.Error
		if errors.As(txErr, &apiErr) {
			return nil, apiErr
		}
		log.Error().Err(txErr).Str("pedido_id", id.String()).Msg("pedido: finalizar failed")
		return nil, apierror.Internal()
	}

	return s.FindOne(ctx, cnpj, id, false)
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *pedidoService) FindAll(ctx context.Context, cnpj string, q dto.PaginationQuery) (*dto.PaginatedResponse, error) {
	q.Normalize()
	pedidos, total, err := s.repo.List(ctx, cnpj, q)
	if err != nil {
		log.Error().Err(err).Str("cnpj", cnpj).Msg("pedido: list failed")
		return nil, apierror.Internal()
	}
	data := make([]dto.PedidoResponse, 0, len(pedidos))
	for i := range pedidos {
		data = append(data, *pedidoToResponse(&pedidos[i]))
	}
	return &dto.PaginatedResponse{Data: data, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

func (s *pedidoService) FindOne(ctx context.Context, cnpj string, id uuid.UUID, prodImage bool) (*dto.PedidoResponse, error) {
	pedido, err := s.repo.FindByID(ctx, cnpj, id, prodImage)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Pedido não encontrado")
		}
		return nil, apierror.Internal()
	}
	return pedidoToResponse(pedido), nil
}

func (s *pedidoService) FindByMesa(ctx context.Context, cnpj string, mesaID uuid.UUID, q dto.FindByMesaQuery) (*dto.PaginatedResponse, error) {
	if _, err := s.catalogo.FindMesa(ctx, cnpj, mesaID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Mesa não encontrada")
		}
		return nil, apierror.Internal()
	}

	var comandaID *uuid.UUID
	if q.ComandaID != "" {
		parsed, err := uuid.Parse(q.ComandaID)
		if err != nil {
			return nil, apierror.Validation("ID da comanda deve ser um UUID válido")
		}
		comandaID = &parsed
	}

	q.Normalize()
	pedidos, total, err := s.repo.ListByMesa(ctx, cnpj, mesaID, comandaID, q.Status, q.ProdImage, q.PaginationQuery)
	if err != nil {
		log.Error().Err(err).Str("mesa_id", mesaID.String()).Msg("pedido: list by mesa failed")
		return nil, apierror.Internal()
	}
	data := make([]dto.PedidoResponse, 0, len(pedidos))
	for i := range pedidos {
		data = append(data, *pedidoToResponse(&pedidos[i]))
	}
	return &dto.PaginatedResponse{Data: data, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

func (s *pedidoService) Delete(ctx context.Context, cnpj string, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, cnpj, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("Pedido não encontrado")
		}
		return apierror.Internal()
	}
	return nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func parseOptionalUUID(s *string, field string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, apierror.Validation("Campo " + field + " deve ser um UUID válido")
	}
	return &id, nil
}

func pedidoToResponse(p *model.Pedido) *dto.PedidoResponse {
	resp := &dto.PedidoResponse{
		ID:                 p.ID.String(),
		Status:             p.Status,
		TipoPedido:         p.TipoPedido,
		PdvCodPedido:       p.PdvCodPedido,
		MotivoCancelamento: p.MotivoCancelamento,
		Produtos:           make([]dto.ProdutoPedidoResponse, 0, len(p.Produtos)),
		CreatedAt:          p.CreatedAt.Format(time.RFC3339),
	}
	if p.MesaID != nil {
		id := p.MesaID.String()
		resp.MesaID = &id
	}
	if p.Mesa != nil {
		numero := p.Mesa.Numero
		resp.MesaNumero = &numero
	}
	if p.ComandaID != nil {
		id := p.ComandaID.String()
		resp.ComandaID = &id
	}
	if p.CaixaID != nil {
		id := p.CaixaID.String()
		resp.CaixaID = &id
	}

	for _, linha := range p.Produtos {
		item := dto.ProdutoPedidoResponse{
			ProdutoID:  linha.ProdutoID.String(),
			Obs:        linha.Obs,
			Quantidade: linha.Quantidade,
			Status:     linha.Status,
			Adicionais: make([]dto.AdicionalPedidoResponse, 0, len(linha.Adicionais)),
		}
		if linha.Produto != nil {
			item.Nome = linha.Produto.Nome
			item.Preco = linha.Produto.Preco
			item.Codigo = linha.Produto.Codigo
			item.Imagem = linha.Produto.Imagem
		}
		for _, a := range linha.Adicionais {
			ad := dto.AdicionalPedidoResponse{
				AdicionalID: a.AdicionalID.String(),
				Quantidade:  a.Quantidade,
				Preco:       a.Preco,
			}
			if a.Adicional != nil {
				ad.Nome = a.Adicional.Nome
				ad.CodIntegra = a.Adicional.CodIntegra
			}
			item.Adicionais = append(item.Adicionais, ad)
		}
		resp.Produtos = append(resp.Produtos, item)
	}

	for _, pay := range p.Payments {
		resp.Payments = append(resp.Payments, paymentToResponse(&pay))
	}
	return resp
}
