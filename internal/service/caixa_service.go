package service

import (
	"context"
	"errors"
	"time"

	"github.com/BistroPdv/bistro-api/internal/apierror"
	"github.com/BistroPdv/bistro-api/internal/dto"
	"github.com/BistroPdv/bistro-api/internal/model"
	"github.com/BistroPdv/bistro-api/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CaixaService interface {
	Abrir(ctx context.Context, cnpj string, userID uuid.UUID, req dto.AbrirCaixaRequest) (*dto.CaixaResponse, error)
	FindAll(ctx context.Context, cnpj string, q dto.PaginationQuery) (*dto.PaginatedResponse, error)
	FindOne(ctx context.Context, cnpj string, id uuid.UUID) (*dto.CaixaResponse, error)
	FindOpen(ctx context.Context, cnpj string, userID uuid.UUID) (*dto.CaixaResponse, error)
	RegistrarMovimentacao(ctx context.Context, cnpj string, caixaID uuid.UUID, req dto.MovimentacaoRequest) (*dto.MovimentacaoResponse, error)
	AtualizarMovimentacao(ctx context.Context, cnpj string, caixaID, movID uuid.UUID, req dto.UpdateMovimentacaoRequest) (*dto.MovimentacaoResponse, error)
	Fechar(ctx context.Context, cnpj string, caixaID uuid.UUID, req dto.FecharCaixaRequest) (*dto.FechamentoResponse, error)
	Delete(ctx context.Context, cnpj string, id uuid.UUID) error
}

type caixaService struct {
	repo       repository.CaixaRepository
	pedidoRepo repository.PedidoRepository
}

func NewCaixaService(repo repository.CaixaRepository, pedidoRepo repository.PedidoRepository) CaixaService {
	return &caixaService{repo: repo, pedidoRepo: pedidoRepo}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

// Abrir creates a new open session for the user and records the opening float
// as the first ABERTURA movement. The application check gives a friendly
// message; the partial unique index is what actually holds under concurrency,
// surfacing here as a duplicated-key error.
func (s *caixaService) Abrir(ctx context.Context, cnpj string, userID uuid.UUID, req dto.AbrirCaixaRequest) (*dto.CaixaResponse, error) {
	open, err := s.repo.FindOpenByUser(ctx, cnpj, userID)
	if err != nil {
		log.Error().Err(err).Str("cnpj", cnpj).Msg("caixa: open lookup failed")
		return nil, apierror.Internal()
	}
	if open != nil {
		return nil, apierror.AlreadyExists("Usuário já possui um caixa aberto")
	}

	caixa := model.Caixa{
		RestaurantCnpj: cnpj,
		UserID:         userID,
		Status:         true,
	}
	if err := s.repo.Create(ctx, &caixa); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.AlreadyExists("Usuário já possui um caixa aberto")
		}
		log.Error().Err(err).Str("cnpj", cnpj).Msg("caixa: create failed")
		return nil, apierror.Internal()
	}

	abertura := model.CaixaMovimentacao{
		CaixaID: caixa.ID,
		Tipo:    model.MovAbertura,
		Valor:   req.ValorAbertura,
		Obs:     req.Obs,
	}
	if err := s.repo.CreateMovimentacao(ctx, &abertura); err != nil {
		log.Error().Err(err).Str("caixa_id", caixa.ID.String()).Msg("caixa: abertura movement failed")
		return nil, apierror.Internal()
	}

	return s.FindOne(ctx, cnpj, caixa.ID)
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *caixaService) FindAll(ctx context.Context, cnpj string, q dto.PaginationQuery) (*dto.PaginatedResponse, error) {
	q.Normalize()
	caixas, total, err := s.repo.List(ctx, cnpj, q.Page, q.Limit)
	if err != nil {
		log.Error().Err(err).Str("cnpj", cnpj).Msg("caixa: list failed")
		return nil, apierror.Internal()
	}
	data := make([]dto.CaixaResponse, 0, len(caixas))
	for i := range caixas {
		data = append(data, *caixaToResponse(&caixas[i]))
	}
	return &dto.PaginatedResponse{Data: data, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

func (s *caixaService) FindOne(ctx context.Context, cnpj string, id uuid.UUID) (*dto.CaixaResponse, error) {
	caixa, err := s.repo.FindByID(ctx, cnpj, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Caixa não encontrado")
		}
		return nil, apierror.Internal()
	}
	return caixaToResponse(caixa), nil
}

func (s *caixaService) FindOpen(ctx context.Context, cnpj string, userID uuid.UUID) (*dto.CaixaResponse, error) {
	caixa, err := s.repo.FindOpenByUser(ctx, cnpj, userID)
	if err != nil {
		log.Error().Err(err).Str("cnpj", cnpj).Msg("caixa: open lookup failed")
		return nil, apierror.Internal()
	}
	if caixa == nil {
		return nil, apierror.NotFound("Nenhum caixa aberto para este usuário")
	}
	return caixaToResponse(caixa), nil
}

// ── Movimentações ─────────────────────────────────────────────────────────────

func (s *caixaService) RegistrarMovimentacao(ctx context.Context, cnpj string, caixaID uuid.UUID, req dto.MovimentacaoRequest) (*dto.MovimentacaoResponse, error) {
	caixa, err := s.repo.FindByID(ctx, cnpj, caixaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Caixa não encontrado")
		}
		return nil, apierror.Internal()
	}
	if !caixa.Status {
		return nil, apierror.NotAllowed("Caixa não está aberto")
	}
	if req.Tipo == model.MovAbertura {
		for _, m := range caixa.Movimentacoes {
			if m.Tipo == model.MovAbertura {
				return nil, apierror.NotAllowed("Caixa já possui movimentação de abertura")
			}
		}
	}

	mov := model.CaixaMovimentacao{
		CaixaID: caixa.ID,
		Tipo:    req.Tipo,
		Valor:   req.Valor,
		Obs:     req.Obs,
	}
	if err := s.repo.CreateMovimentacao(ctx, &mov); err != nil {
		log.Error().Err(err).Str("caixa_id", caixaID.String()).Msg("caixa: movement create failed")
		return nil, apierror.Internal()
	}
	resp := movimentacaoToResponse(&mov)
	return &resp, nil
}

func (s *caixaService) AtualizarMovimentacao(ctx context.Context, cnpj string, caixaID, movID uuid.UUID, req dto.UpdateMovimentacaoRequest) (*dto.MovimentacaoResponse, error) {
	caixa, err := s.repo.FindByID(ctx, cnpj, caixaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Caixa não encontrado")
		}
		return nil, apierror.Internal()
	}
	// The ledger freezes at close; otherwise the fechamento snapshot and
	// the reconciliation recompute could disagree.
	if !caixa.Status {
		return nil, apierror.NotAllowed("Caixa já está fechado")
	}
	mov, err := s.repo.FindMovimentacao(ctx, caixaID, movID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Movimentação não encontrada")
		}
		return nil, apierror.Internal()
	}

	if req.Valor != nil {
		mov.Valor = *req.Valor
	}
	if req.Obs != nil {
		mov.Obs = req.Obs
	}
	if err := s.repo.UpdateMovimentacao(ctx, mov); err != nil {
		log.Error().Err(err).Str("mov_id", movID.String()).Msg("caixa: movement update failed")
		return nil, apierror.Internal()
	}
	resp := movimentacaoToResponse(mov)
	return &resp, nil
}

// ── Fechar ────────────────────────────────────────────────────────────────────

// Fechar computes the close snapshot and flips the session atomically:
//   - totalMoment: signed sum of the session ledger (ABERTURA and ENTRADA
//     add, SANGRIA and SAIDA subtract)
//   - totalMethods: gross sum of payments of the session's pedidos
//   - totalChange: sum of the change given on those payments
//
// The declared per-method counts come from the request and are stored as-is.
func (s *caixaService) Fechar(ctx context.Context, cnpj string, caixaID uuid.UUID, req dto.FecharCaixaRequest) (*dto.FechamentoResponse, error) {
	caixa, err := s.repo.FindByID(ctx, cnpj, caixaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Caixa não encontrado")
		}
		return nil, apierror.Internal()
	}
	if !caixa.Status {
		return nil, apierror.NotAllowed("Caixa já está fechado")
	}

	movs, err := s.repo.ListMovimentacoes(ctx, caixaID)
	if err != nil {
		log.Error().Err(err).Str("caixa_id", caixaID.String()).Msg("caixa: movement list failed")
		return nil, apierror.Internal()
	}
	totalMoment := somaMovimentacoes(movs)

	pedidos, err := s.pedidoRepo.ListByCaixa(ctx, cnpj, caixaID)
	if err != nil {
		log.Error().Err(err).Str("caixa_id", caixaID.String()).Msg("caixa: pedido list failed")
		return nil, apierror.Internal()
	}
	totalMethods := decimal.Zero
	totalChange := decimal.Zero
	for i := range pedidos {
		for _, p := range pedidos[i].Payments {
			totalMethods = totalMethods.Add(p.Valor)
			if p.Troco != nil {
				totalChange = totalChange.Add(*p.Troco)
			}
		}
	}

	fechamento := model.CaixaFechamento{
		CaixaID:      caixa.ID,
		TotalMoment:  totalMoment,
		TotalMethods: totalMethods,
		TotalChange:  totalChange,
		Metodos:      make([]model.CaixaFechamentoMetodo, 0, len(req.Methods)),
	}
	for _, m := range req.Methods {
		methodID, err := uuid.Parse(m.ID)
		if err != nil {
			return nil, apierror.Validation("ID do método de pagamento deve ser um UUID válido")
		}
		fechamento.Metodos = append(fechamento.Metodos, model.CaixaFechamentoMetodo{
			PaymentMethodID: methodID,
			Valor:           m.Valor,
		})
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateFechamento(ctx, tx, &fechamento); err != nil {
			return err
		}
		return s.repo.SetStatus(ctx, tx, caixa.ID, false)
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrDuplicatedKey) {
			return nil, apierror.NotAllowed("Caixa já está fechado")
		}
		log.Error().Err(txErr).Str("caixa_id", caixaID.String()).Msg("caixa: fechamento failed")
		return nil, apierror.Internal()
	}

	return fechamentoToResponse(&fechamento), nil
}

func (s *caixaService) Delete(ctx context.Context, cnpj string, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, cnpj, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("Caixa não encontrado")
		}
		return apierror.Internal()
	}
	return nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// somaMovimentacoes applies the sign convention of the session ledger. Close
// and reconciliation both go through here so the two can never disagree.
func somaMovimentacoes(movs []model.CaixaMovimentacao) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movs {
		switch m.Tipo {
		case model.MovAbertura, model.MovEntrada:
			total = total.Add(m.Valor)
		case model.MovSangria, model.MovSaida:
			total = total.Sub(m.Valor)
		}
	}
	return total
}

func caixaToResponse(c *model.Caixa) *dto.CaixaResponse {
	resp := &dto.CaixaResponse{
		ID:            c.ID.String(),
		Status:        c.Status,
		Movimentacoes: make([]dto.MovimentacaoResponse, 0, len(c.Movimentacoes)),
		CreatedAt:     c.CreatedAt.Format(time.RFC3339),
	}
	if c.User != nil {
		resp.User = dto.CaixaUserResponse{ID: c.User.ID.String(), Nome: c.User.Nome}
	} else {
		resp.User = dto.CaixaUserResponse{ID: c.UserID.String()}
	}
	for i := range c.Movimentacoes {
		resp.Movimentacoes = append(resp.Movimentacoes, movimentacaoToResponse(&c.Movimentacoes[i]))
	}
	return resp
}

func movimentacaoToResponse(m *model.CaixaMovimentacao) dto.MovimentacaoResponse {
	return dto.MovimentacaoResponse{
		ID:        m.ID.String(),
		Tipo:      m.Tipo,
		Valor:     m.Valor,
		Obs:       m.Obs,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

func fechamentoToResponse(f *model.CaixaFechamento) *dto.FechamentoResponse {
	resp := &dto.FechamentoResponse{
		ID:           f.ID.String(),
		CaixaID:      f.CaixaID.String(),
		TotalMoment:  f.TotalMoment,
		TotalMethods: f.TotalMethods,
		TotalChange:  f.TotalChange,
		Metodos:      make([]dto.FechamentoMetodoResponse, 0, len(f.Metodos)),
		CreatedAt:    f.CreatedAt.Format(time.RFC3339),
	}
	for _, m := range f.Metodos {
		resp.Metodos = append(resp.Metodos, dto.FechamentoMetodoResponse{
			PaymentMethodID: m.PaymentMethodID.String(),
			Valor:           m.Valor,
		})
	}
	return resp
}
