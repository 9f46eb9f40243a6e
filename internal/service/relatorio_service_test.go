package service

import (
	"context"
	"testing"

	"github.com/BistroPdv/bistro-api/internal/apierror"
	"github.com/BistroPdv/bistro-api/internal/dto"
	"github.com/BistroPdv/bistro-api/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type relatorioFixture struct {
	svc      RelatorioService
	caixaSvc CaixaService
	caixas   *fakeCaixaRepo
	pedidos  *fakePedidoRepo
	payments *fakePaymentRepo
	catalogo *fakeCatalogoRepo
}

func newRelatorioFixture() *relatorioFixture {
	caixas := newFakeCaixaRepo()
	pedidos := newFakePedidoRepo()
	catalogo := newFakeCatalogoRepo()
	caixas.catalogo = catalogo
	return &relatorioFixture{
		svc:      NewRelatorioService(caixas, pedidos),
		caixaSvc: NewCaixaService(caixas, pedidos),
		caixas:   caixas,
		pedidos:  pedidos,
		payments: newFakePaymentRepo(pedidos),
		catalogo: catalogo,
	}
}

func (f *relatorioFixture) novoMetodo(nome, tipo string) uuid.UUID {
	m := &model.MetodoPagamento{ID: uuid.New(), Name: nome, Type: tipo, RestaurantCnpj: cnpjA}
	f.catalogo.metodos[m.ID] = m
	return m.ID
}

func TestRelatorioCaixaInexistente(t *testing.T) {
	f := newRelatorioFixture()

	_, err := f.svc.Fechamento(context.Background(), cnpjA, uuid.New())
	require.Error(t, err)
	apiErr, ok := err.(*apierror.Error)
	require.True(t, ok)
	assert.Equal(t, "Caixa não encontrado", apiErr.Message)
}

func TestRelatorioCaixaAindaAberto(t *testing.T) {
	f := newRelatorioFixture()

	aberto, err := f.caixaSvc.Abrir(context.Background(), cnpjA, uuid.New(), dto.AbrirCaixaRequest{ValorAbertura: dec("40.00")})
	require.NoError(t, err)

	_, err = f.svc.Fechamento(context.Background(), cnpjA, uuid.MustParse(aberto.ID))
	require.Error(t, err)
	apiErr, ok := err.(*apierror.Error)
	require.True(t, ok)
	assert.Equal(t, "Caixa não foi fechado ainda", apiErr.Message)
}

func TestRelatorioReconciliaDeclaradoContraApurado(t *testing.T) {
	f := newRelatorioFixture()
	userID := uuid.New()

	dinheiro := f.novoMetodo("Dinheiro", "CASH")
	cartao := f.novoMetodo("Cartão", "CARD")

	aberto, err := f.caixaSvc.Abrir(context.Background(), cnpjA, userID, dto.AbrirCaixaRequest{ValorAbertura: dec("100.00")})
	require.NoError(t, err)
	caixaID := uuid.MustParse(aberto.ID)

	_, err = f.caixaSvc.RegistrarMovimentacao(context.Background(), cnpjA, caixaID, dto.MovimentacaoRequest{Tipo: model.MovSangria, Valor: dec("20.00")})
	require.NoError(t, err)

	// Two finalized sales: 50 in cash (change 5) and 30 on card.
	venda1 := &model.Pedido{RestaurantCnpj: cnpjA, Status: model.PedidoFinalizado, CaixaID: &caixaID}
	require.NoError(t, f.pedidos.Create(context.Background(), nil, venda1))
	troco := dec("5.00")
	require.NoError(t, f.payments.Create(context.Background(), nil, &model.Payment{
		PedidoID: venda1.ID, PaymentMethodID: dinheiro, RestaurantCnpj: cnpjA,
		Valor: dec("50.00"), Troco: &troco,
	}))

	venda2 := &model.Pedido{RestaurantCnpj: cnpjA, Status: model.PedidoFinalizado, CaixaID: &caixaID}
	require.NoError(t, f.pedidos.Create(context.Background(), nil, venda2))
	require.NoError(t, f.payments.Create(context.Background(), nil, &model.Payment{
		PedidoID: venda2.ID, PaymentMethodID: cartao, RestaurantCnpj: cnpjA,
		Valor: dec("30.00"),
	}))

	// Staff declares 48 in cash (2 short) and 30 on card (exact).
	_, err = f.caixaSvc.Fechar(context.Background(), cnpjA, caixaID, dto.FecharCaixaRequest{
		Methods: []dto.FechamentoMetodoRequest{
			{ID: dinheiro.String(), Valor: dec("48.00")},
			{ID: cartao.String(), Valor: dec("30.00")},
		},
	})
	require.NoError(t, err)

	rel, err := f.svc.Fechamento(context.Background(), cnpjA, caixaID)
	require.NoError(t, err)

	assert.False(t, rel.Caixa.Status)
	assert.Len(t, rel.Vendas, 2)
	assert.Len(t, rel.Movimentacoes, 2)

	// The ledger recompute must agree with the snapshot taken at close.
	assert.True(t, rel.Resumo.TotalMovimentacoes.Equal(rel.Fechamento.TotalMoment))
	assert.True(t, rel.Fechamento.TotalMoment.Equal(dec("80.00"))) // 100 − 20

	assert.True(t, rel.Resumo.TotalVendas.Equal(dec("80.00")))
	assert.True(t, rel.Resumo.TotalTroco.Equal(dec("5.00")))
	assert.True(t, rel.Resumo.TotalInformado.Equal(dec("78.00")))
	assert.True(t, rel.Resumo.TotalReal.Equal(dec("80.00")))
	assert.True(t, rel.Resumo.DiferencaTotal.Equal(dec("-2.00")))

	require.Len(t, rel.Fechamento.MetodosPagamento, 2)
	porNome := make(map[string]dto.MetodoReconciliacao)
	for _, m := range rel.Fechamento.MetodosPagamento {
		porNome[m.Nome] = m
	}
	caixaDinheiro := porNome["Dinheiro"]
	assert.True(t, caixaDinheiro.ValorInformado.Equal(dec("48.00")))
	assert.True(t, caixaDinheiro.ValorReal.Equal(dec("50.00")))
	assert.True(t, caixaDinheiro.Diferenca.Equal(dec("-2.00")))

	caixaCartao := porNome["Cartão"]
	assert.True(t, caixaCartao.Diferenca.IsZero())
}

func TestRelatorioEhIdempotente(t *testing.T) {
	f := newRelatorioFixture()
	userID := uuid.New()
	dinheiro := f.novoMetodo("Dinheiro", "CASH")

	aberto, err := f.caixaSvc.Abrir(context.Background(), cnpjA, userID, dto.AbrirCaixaRequest{ValorAbertura: dec("10.00")})
	require.NoError(t, err)
	caixaID := uuid.MustParse(aberto.ID)

	_, err = f.caixaSvc.Fechar(context.Background(), cnpjA, caixaID, dto.FecharCaixaRequest{
		Methods: []dto.FechamentoMetodoRequest{{ID: dinheiro.String(), Valor: dec("10.00")}},
	})
	require.NoError(t, err)

	primeiro, err := f.svc.Fechamento(context.Background(), cnpjA, caixaID)
	require.NoError(t, err)
	segundo, err := f.svc.Fechamento(context.Background(), cnpjA, caixaID)
	require.NoError(t, err)

	assert.Equal(t, primeiro, segundo)
}
