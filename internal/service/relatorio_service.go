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

type RelatorioService interface {
	Fechamento(ctx context.Context, cnpj string, caixaID uuid.UUID) (*dto.RelatorioFechamentoResponse, error)
}

type relatorioService struct {
	caixaRepo  repository.CaixaRepository
	pedidoRepo repository.PedidoRepository
}

// NewRelatorioService builds the report service. Method names and types come
// preloaded on the fechamento rows, so no catalog access is needed here.
func NewRelatorioService(caixaRepo repository.CaixaRepository, pedidoRepo repository.PedidoRepository) RelatorioService {
	return &relatorioService{caixaRepo: caixaRepo, pedidoRepo: pedidoRepo}
}

// Fechamento builds the declared-versus-actual reconciliation of a closed
// caixa. Pure read: every total is recomputed from the stored rows, so
// re-running the report always yields the same numbers, and the ledger sum
// must match the totalMoment snapshot taken at close time.
//
// The two failure modes get distinct messages so the operator knows whether
// the caixa is missing or merely still open.
func (s *relatorioService) Fechamento(ctx context.Context, cnpj string, caixaID uuid.UUID) (*dto.RelatorioFechamentoResponse, error) {
	caixa, err := s.caixaRepo.FindByID(ctx, cnpj, caixaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.BadRequest("Caixa não encontrado")
		}
		return nil, apierror.Internal()
	}

	fechamento, err := s.caixaRepo.FindFechamento(ctx, caixaID)
	if err != nil {
		log.Error().Err(err).Str("caixa_id", caixaID.String()).Msg("relatorio: fechamento lookup failed")
		return nil, apierror.Internal()
	}
	if fechamento == nil {
		return nil, apierror.BadRequest("Caixa não foi fechado ainda")
	}

	pedidos, err := s.pedidoRepo.ListByCaixa(ctx, cnpj, caixaID)
	if err != nil {
		log.Error().Err(err).Str("caixa_id", caixaID.String()).Msg("relatorio: pedido list failed")
		return nil, apierror.Internal()
	}

	// Actual takings per payment method, plus the per-sale rows.
	vendidoPorMetodo := make(map[uuid.UUID]decimal.Decimal)
	totalVendas := decimal.Zero
	totalTroco := decimal.Zero
	vendas := make([]dto.VendaReconciliacao, 0, len(pedidos))
	for i := range pedidos {
		p := &pedidos[i]
		venda := dto.VendaReconciliacao{
			ID:         p.ID.String(),
			Status:     p.Status,
			TipoPedido: p.TipoPedido,
			CreatedAt:  p.CreatedAt.Format(time.RFC3339),
			Total:      decimal.Zero,
			Troco:      decimal.Zero,
			Payments:   make([]dto.PaymentResponse, 0, len(p.Payments)),
		}
		for j := range p.Payments {
			pay := &p.Payments[j]
			venda.Total = venda.Total.Add(pay.Valor)
			if pay.Troco != nil {
				venda.Troco = venda.Troco.Add(*pay.Troco)
			}
			venda.Payments = append(venda.Payments, paymentToResponse(pay))
			vendidoPorMetodo[pay.PaymentMethodID] = vendidoPorMetodo[pay.PaymentMethodID].Add(pay.Valor)
		}
		totalVendas = totalVendas.Add(venda.Total)
		totalTroco = totalTroco.Add(venda.Troco)
		vendas = append(vendas, venda)
	}

	// Independent recompute of the ledger, same sign rule as the close.
	movs, err := s.caixaRepo.ListMovimentacoes(ctx, caixaID)
	if err != nil {
		log.Error().Err(err).Str("caixa_id", caixaID.String()).Msg("relatorio: movement list failed")
		return nil, apierror.Internal()
	}
	totalMovimentacoes := somaMovimentacoes(movs)
	movimentacoes := make([]dto.MovimentacaoResponse, 0, len(movs))
	for i := range movs {
		movimentacoes = append(movimentacoes, movimentacaoToResponse(&movs[i]))
	}

	// One reconciliation row per declared method. Diferenca is
	// valorInformado minus valorReal: positive means staff counted more
	// than the system registered.
	metodos := make([]dto.MetodoReconciliacao, 0, len(fechamento.Metodos))
	totalInformado := decimal.Zero
	totalReal := decimal.Zero
	for _, m := range fechamento.Metodos {
		real := vendidoPorMetodo[m.PaymentMethodID]
		row := dto.MetodoReconciliacao{
			ID:             m.PaymentMethodID.String(),
			ValorInformado: m.Valor,
			ValorReal:      real,
			Diferenca:      m.Valor.Sub(real),
		}
		if m.MetodoPagamento != nil {
			row.Nome = m.MetodoPagamento.Name
			row.Tipo = m.MetodoPagamento.Type
			if m.MetodoPagamento.Description != nil {
				row.Descricao = *m.MetodoPagamento.Description
			}
		}
		metodos = append(metodos, row)
		totalInformado = totalInformado.Add(m.Valor)
		totalReal = totalReal.Add(real)
	}

	return &dto.RelatorioFechamentoResponse{
		Caixa: dto.CaixaResumoResponse{
			ID:        caixa.ID.String(),
			Status:    caixa.Status,
			CreatedAt: caixa.CreatedAt.Format(time.RFC3339),
			User:      caixaUserResumo(caixa),
		},
		Vendas:        vendas,
		Movimentacoes: movimentacoes,
		Fechamento: dto.FechamentoReconciliacao{
			ID:               fechamento.ID.String(),
			TotalMoment:      fechamento.TotalMoment,
			TotalMethods:     fechamento.TotalMethods,
			TotalChange:      fechamento.TotalChange,
			CreatedAt:        fechamento.CreatedAt.Format(time.RFC3339),
			MetodosPagamento: metodos,
		},
		Resumo: dto.ResumoReconciliacao{
			TotalVendas:        totalVendas,
			TotalMovimentacoes: totalMovimentacoes,
			TotalTroco:         totalTroco,
			TotalInformado:     totalInformado,
			TotalReal:          totalReal,
			DiferencaTotal:     totalInformado.Sub(totalReal),
		},
	}, nil
}

func caixaUserResumo(c *model.Caixa) dto.CaixaUserResponse {
	if c.User != nil {
		return dto.CaixaUserResponse{ID: c.User.ID.String(), Nome: c.User.Nome}
	}
	return dto.CaixaUserResponse{ID: c.UserID.String()}
}
