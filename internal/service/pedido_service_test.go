package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/BistroPdv/bistro-api/internal/apierror"
	"github.com/BistroPdv/bistro-api/internal/dto"
	"github.com/BistroPdv/bistro-api/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	cnpjA = "11222333000144"
	cnpjB = "99888777000166"
)

type pedidoFixture struct {
	svc      PedidoService
	pedidos  *fakePedidoRepo
	caixas   *fakeCaixaRepo
	catalogo *fakeCatalogoRepo
	payments *fakePaymentRepo
	sync     *fakeSyncRepo
}

func newPedidoFixture() *pedidoFixture {
	pedidos := newFakePedidoRepo()
	caixas := newFakeCaixaRepo()
	catalogo := newFakeCatalogoRepo()
	payments := newFakePaymentRepo(pedidos)
	sync := newFakeSyncRepo()
	return &pedidoFixture{
		svc:      NewPedidoService(pedidos, caixas, catalogo, payments, sync, nil),
		pedidos:  pedidos,
		caixas:   caixas,
		catalogo: catalogo,
		payments: payments,
		sync:     sync,
	}
}

func strPtr(s string) *string { return &s }

func umProduto() dto.ProdutoPedidoRequest {
	return dto.ProdutoPedidoRequest{
		ProdutoID:  uuid.NewString(),
		Quantidade: 2,
	}
}

func TestCreatePedidoForcaStatusAberto(t *testing.T) {
	f := newPedidoFixture()

	resp, err := f.svc.Create(context.Background(), cnpjA, uuid.New(), dto.CreatePedidoRequest{
		Produtos: []dto.ProdutoPedidoRequest{umProduto()},
	})
	require.NoError(t, err)

	assert.Equal(t, model.PedidoAberto, resp.Status)
	assert.Equal(t, "COUNTER", resp.TipoPedido)
	assert.Len(t, resp.Produtos, 1)

	require.Len(t, f.pedidos.historico, 1)
	assert.Equal(t, model.HistoryCreated, f.pedidos.historico[0].Type)
}

func TestCreatePedidoCongelaPrecoDoAdicional(t *testing.T) {
	f := newPedidoFixture()

	precoNoMomento := decimal.RequireFromString("9.90")
	produto := umProduto()
	produto.Adicionais = []dto.AdicionalPedidoRequest{{
		ID:         uuid.NewString(),
		Quantidade: 1,
		Preco:      precoNoMomento,
	}}

	_, err := f.svc.Create(context.Background(), cnpjA, uuid.New(), dto.CreatePedidoRequest{
		Produtos: []dto.ProdutoPedidoRequest{produto},
	})
	require.NoError(t, err)

	// The persisted price is exactly what was sent; the catalog price (which
	// may have changed since) is never consulted.
	require.Len(t, f.pedidos.adicionais, 1)
	assert.True(t, f.pedidos.adicionais[0].Preco.Equal(precoNoMomento))
}

func TestCreatePedidoGeraIntentParaTenantOmie(t *testing.T) {
	f := newPedidoFixture()
	f.catalogo.restaurantes[cnpjA] = &model.Restaurante{
		Cnpj:           cnpjA,
		PdvIntegration: "OMIE",
		OmieKey:        strPtr("key"),
		OmieSecret:     strPtr("secret"),
	}

	produto := umProduto()
	produto.ExternoID = strPtr("4455")

	resp, err := f.svc.Create(context.Background(), cnpjA, uuid.New(), dto.CreatePedidoRequest{
		Produtos: []dto.ProdutoPedidoRequest{produto},
	})
	require.NoError(t, err)

	require.Len(t, f.sync.intents, 1)
	for _, intent := range f.sync.intents {
		assert.Equal(t, model.SyncPendente, intent.Status)
		assert.Equal(t, resp.ID, intent.PedidoID.String())

		var payload model.PdvSyncPayload
		require.NoError(t, json.Unmarshal(intent.Payload, &payload))
		require.Len(t, payload.Itens, 1)
		assert.Equal(t, "4455", payload.Itens[0].CodigoProduto)
		assert.Equal(t, 2, payload.Itens[0].Quantidade)
	}
}

func TestCreatePedidoSemIntegracaoNaoGeraIntent(t *testing.T) {
	f := newPedidoFixture()
	f.catalogo.restaurantes[cnpjA] = &model.Restaurante{Cnpj: cnpjA}

	_, err := f.svc.Create(context.Background(), cnpjA, uuid.New(), dto.CreatePedidoRequest{
		Produtos: []dto.ProdutoPedidoRequest{umProduto()},
	})
	require.NoError(t, err)
	assert.Empty(t, f.sync.intents)
}

func TestCreatePedidoOmieSemExternoIDNaoGeraIntent(t *testing.T) {
	f := newPedidoFixture()
	f.catalogo.restaurantes[cnpjA] = &model.Restaurante{Cnpj: cnpjA, PdvIntegration: "OMIE"}

	_, err := f.svc.Create(context.Background(), cnpjA, uuid.New(), dto.CreatePedidoRequest{
		Produtos: []dto.ProdutoPedidoRequest{umProduto()},
	})
	require.NoError(t, err)
	assert.Empty(t, f.sync.intents)
}

func TestUpdatePedidoAppendMantemLinhasExistentes(t *testing.T) {
	f := newPedidoFixture()

	created, err := f.svc.Create(context.Background(), cnpjA, uuid.New(), dto.CreatePedidoRequest{
		Produtos: []dto.ProdutoPedidoRequest{umProduto()},
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	updated, err := f.svc.Update(context.Background(), cnpjA, id, dto.UpdatePedidoRequest{
		Produtos: []dto.ProdutoPedidoRequest{umProduto()},
	})
	require.NoError(t, err)

	assert.Len(t, updated.Produtos, 2)
	// CREATED on open plus UPDATED on item change
	require.Len(t, f.pedidos.historico, 2)
	assert.Equal(t, model.HistoryUpdated, f.pedidos.historico[1].Type)
}

func TestUpdatePedidoReplaceSubstituiLinhas(t *testing.T) {
	f := newPedidoFixture()

	created, err := f.svc.Create(context.Background(), cnpjA, uuid.New(), dto.CreatePedidoRequest{
		Produtos: []dto.ProdutoPedidoRequest{umProduto(), umProduto()},
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	novoProduto := umProduto()
	updated, err := f.svc.Update(context.Background(), cnpjA, id, dto.UpdatePedidoRequest{
		ItensOp:  dto.ItensOpReplace,
		Produtos: []dto.ProdutoPedidoRequest{novoProduto},
	})
	require.NoError(t, err)

	require.Len(t, updated.Produtos, 1)
	assert.Equal(t, novoProduto.ProdutoID, updated.Produtos[0].ProdutoID)
}

func TestUpdatePedidoSomenteCabecalhoNaoGeraHistorico(t *testing.T) {
	f := newPedidoFixture()

	created, err := f.svc.Create(context.Background(), cnpjA, uuid.New(), dto.CreatePedidoRequest{
		Produtos: []dto.ProdutoPedidoRequest{umProduto()},
	})
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), cnpjA, uuid.MustParse(created.ID), dto.UpdatePedidoRequest{
		PdvCodPedido: strPtr("777"),
	})
	require.NoError(t, err)

	assert.Len(t, f.pedidos.historico, 1) // only the CREATED event
}

func TestCancelamentoExigeMotivo(t *testing.T) {
	f := newPedidoFixture()

	created, err := f.svc.Create(context.Background(), cnpjA, uuid.New(), dto.CreatePedidoRequest{
		Produtos: []dto.ProdutoPedidoRequest{umProduto()},
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	_, err = f.svc.Update(context.Background(), cnpjA, id, dto.UpdatePedidoRequest{
		Status: strPtr(model.PedidoCancelado),
	})
	require.Error(t, err)
	apiErr, ok := err.(*apierror.Error)
	require.True(t, ok)
	assert.Equal(t, apierror.CodeValidation, apiErr.Code)

	updated, err := f.svc.Update(context.Background(), cnpjA, id, dto.UpdatePedidoRequest{
		Status:             strPtr(model.PedidoCancelado),
		MotivoCancelamento: strPtr("cliente desistiu"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.PedidoCancelado, updated.Status)
}

func TestFinalizarPedidoComCaixaAberto(t *testing.T) {
	f := newPedidoFixture()
	userID := uuid.New()

	caixa := &model.Caixa{RestaurantCnpj: cnpjA, UserID: userID, Status: true}
	require.NoError(t, f.caixas.Create(context.Background(), caixa))

	created, err := f.svc.Create(context.Background(), cnpjA, userID, dto.CreatePedidoRequest{
		Produtos: []dto.ProdutoPedidoRequest{umProduto()},
	})
	require.NoError(t, err)

	troco := decimal.RequireFromString("5.00")
	resp, err := f.svc.Finalizar(context.Background(), cnpjA, uuid.MustParse(created.ID), userID, dto.FinalizarPedidoRequest{
		CaixaID: caixa.ID.String(),
		Payments: []dto.CreatePaymentRequest{{
			PaymentMethodID: uuid.NewString(),
			Valor:           decimal.RequireFromString("55.00"),
			Troco:           &troco,
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, model.PedidoFinalizado, resp.Status)
	require.NotNil(t, resp.CaixaID)
	assert.Equal(t, caixa.ID.String(), *resp.CaixaID)
	require.Len(t, resp.Payments, 1)
	assert.True(t, resp.Payments[0].Valor.Equal(decimal.RequireFromString("55.00")))
}

func TestFinalizarPedidoComCaixaFechadoFalha(t *testing.T) {
	f := newPedidoFixture()
	userID := uuid.New()

	caixa := &model.Caixa{RestaurantCnpj: cnpjA, UserID: userID, Status: false}
	require.NoError(t, f.caixas.Create(context.Background(), caixa))

	created, err := f.svc.Create(context.Background(), cnpjA, userID, dto.CreatePedidoRequest{
		Produtos: []dto.ProdutoPedidoRequest{umProduto()},
	})
	require.NoError(t, err)

	_, err = f.svc.Finalizar(context.Background(), cnpjA, uuid.MustParse(created.ID), userID, dto.FinalizarPedidoRequest{
		CaixaID: caixa.ID.String(),
	})
	require.Error(t, err)
	apiErr, ok := err.(*apierror.Error)
	require.True(t, ok)
	assert.Equal(t, apierror.CodeOperationNotAllowed, apiErr.Code)
}

func TestFindOneIsolaTenant(t *testing.T) {
	f := newPedidoFixture()

	created, err := f.svc.Create(context.Background(), cnpjA, uuid.New(), dto.CreatePedidoRequest{
		Produtos: []dto.ProdutoPedidoRequest{umProduto()},
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	_, err = f.svc.FindOne(context.Background(), cnpjB, id, false)
	require.Error(t, err)
	apiErr, ok := err.(*apierror.Error)
	require.True(t, ok)
	assert.Equal(t, apierror.CodeNotFound, apiErr.Code)
}

func TestDeletePedidoEsconderDasLeituras(t *testing.T) {
	f := newPedidoFixture()

	created, err := f.svc.Create(context.Background(), cnpjA, uuid.New(), dto.CreatePedidoRequest{
		Produtos: []dto.ProdutoPedidoRequest{umProduto()},
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	require.NoError(t, f.svc.Delete(context.Background(), cnpjA, id))

	_, err = f.svc.FindOne(context.Background(), cnpjA, id, false)
	require.Error(t, err)

	list, err := f.svc.FindAll(context.Background(), cnpjA, dto.PaginationQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, list.Total)

	// A second delete hits nothing.
	err = f.svc.Delete(context.Background(), cnpjA, id)
	require.Error(t, err)
	apiErr, ok := err.(*apierror.Error)
	require.True(t, ok)
	assert.Equal(t, apierror.CodeNotFound, apiErr.Code)
}

func TestFindByMesaValidaMesa(t *testing.T) {
	f := newPedidoFixture()

	_, err := f.svc.FindByMesa(context.Background(), cnpjA, uuid.New(), dto.FindByMesaQuery{})
	require.Error(t, err)
	apiErr, ok := err.(*apierror.Error)
	require.True(t, ok)
	assert.Equal(t, apierror.CodeNotFound, apiErr.Code)
	assert.Equal(t, "Mesa não encontrada", apiErr.Message)
}

func TestFindByMesaFiltraPorStatus(t *testing.T) {
	f := newPedidoFixture()
	mesa := &model.Mesa{ID: uuid.New(), Numero: 7, RestaurantCnpj: cnpjA}
	f.catalogo.mesas[mesa.ID] = mesa

	mesaID := mesa.ID.String()
	_, err := f.svc.Create(context.Background(), cnpjA, uuid.New(), dto.CreatePedidoRequest{
		MesaID:   &mesaID,
		Produtos: []dto.ProdutoPedidoRequest{umProduto()},
	})
	require.NoError(t, err)

	abertos, err := f.svc.FindByMesa(context.Background(), cnpjA, mesa.ID, dto.FindByMesaQuery{Status: model.PedidoAberto})
	require.NoError(t, err)
	assert.EqualValues(t, 1, abertos.Total)

	finalizados, err := f.svc.FindByMesa(context.Background(), cnpjA, mesa.ID, dto.FindByMesaQuery{Status: model.PedidoFinalizado})
	require.NoError(t, err)
	assert.EqualValues(t, 0, finalizados.Total)
}

func TestFindByMesaRepassaProdImage(t *testing.T) {
	f := newPedidoFixture()
	mesa := &model.Mesa{ID: uuid.New(), Numero: 3, RestaurantCnpj: cnpjA}
	f.catalogo.mesas[mesa.ID] = mesa

	_, err := f.svc.FindByMesa(context.Background(), cnpjA, mesa.ID, dto.FindByMesaQuery{ProdImage: true})
	require.NoError(t, err)
	assert.True(t, f.pedidos.listByMesaProdImage)

	_, err = f.svc.FindByMesa(context.Background(), cnpjA, mesa.ID, dto.FindByMesaQuery{})
	require.NoError(t, err)
	assert.False(t, f.pedidos.listByMesaProdImage)
}
