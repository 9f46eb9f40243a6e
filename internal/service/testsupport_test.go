package service

// In-memory repository fakes for unit-testing the services without a
// database. The fakes mimic the contracts the GORM implementations honor:
// gorm.ErrRecordNotFound for missing rows, gorm.ErrDuplicatedKey where a
// unique index would fire, and (nil, nil) for absent-but-not-error lookups.

import (
	"context"
	"strings"
	"time"

	"github.com/BistroPdv/bistro-api/internal/dto"
	"github.com/BistroPdv/bistro-api/internal/model"
	"github.com/BistroPdv/bistro-api/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── Pedido ────────────────────────────────────────────────────────────────────

type fakePedidoRepo struct {
	pedidos    map[uuid.UUID]*model.Pedido
	produtos   []*model.PedidoProduto
	adicionais []*model.PedidoProdutoAdicional
	historico  []model.HistoryPedido

	// records the flag of the last ListByMesa call
	listByMesaProdImage bool
}

var _ repository.PedidoRepository = (*fakePedidoRepo)(nil)

func newFakePedidoRepo() *fakePedidoRepo {
	return &fakePedidoRepo{pedidos: make(map[uuid.UUID]*model.Pedido)}
}

func (r *fakePedidoRepo) DB() *gorm.DB { return nil }

func (r *fakePedidoRepo) Create(_ context.Context, _ *gorm.DB, p *model.Pedido) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	r.pedidos[p.ID] = p
	return nil
}

func (r *fakePedidoRepo) CreateProduto(_ context.Context, _ *gorm.DB, pp *model.PedidoProduto) error {
	pp.ID = uuid.New()
	r.produtos = append(r.produtos, pp)
	return nil
}

func (r *fakePedidoRepo) CreateAdicionais(_ context.Context, _ *gorm.DB, adicionais []model.PedidoProdutoAdicional) error {
	for i := range adicionais {
		a := adicionais[i]
		a.ID = uuid.New()
		r.adicionais = append(r.adicionais, &a)
	}
	return nil
}

func (r *fakePedidoRepo) CreateHistory(_ context.Context, _ *gorm.DB, h *model.HistoryPedido) error {
	h.ID = uuid.New()
	h.CreatedAt = time.Now()
	r.historico = append(r.historico, *h)
	return nil
}

func (r *fakePedidoRepo) DeleteProdutos(_ context.Context, _ *gorm.DB, pedidoID uuid.UUID) error {
	kept := r.produtos[:0]
	removed := make(map[uuid.UUID]bool)
	for _, pp := range r.produtos {
		if pp.PedidoID == pedidoID {
			removed[pp.ID] = true
			continue
		}
		kept = append(kept, pp)
	}
	r.produtos = kept

	keptAd := r.adicionais[:0]
	for _, a := range r.adicionais {
		if !removed[a.PedidoProdutoID] {
			keptAd = append(keptAd, a)
		}
	}
	r.adicionais = keptAd
	return nil
}

func (r *fakePedidoRepo) attachTree(p *model.Pedido) {
	p.Produtos = nil
	for _, pp := range r.produtos {
		if pp.PedidoID != p.ID {
			continue
		}
		linha := *pp
		linha.Adicionais = nil
		for _, a := range r.adicionais {
			if a.PedidoProdutoID == pp.ID {
				linha.Adicionais = append(linha.Adicionais, *a)
			}
		}
		p.Produtos = append(p.Produtos, linha)
	}
}

func (r *fakePedidoRepo) FindByID(_ context.Context, cnpj string, id uuid.UUID, _ bool) (*model.Pedido, error) {
	p, ok := r.pedidos[id]
	if !ok || p.RestaurantCnpj != cnpj || p.Deleted {
		return nil, gorm.ErrRecordNotFound
	}
	r.attachTree(p)
	return p, nil
}

func (r *fakePedidoRepo) List(_ context.Context, cnpj string, q dto.PaginationQuery) ([]model.Pedido, int64, error) {
	var out []model.Pedido
	for _, p := range r.pedidos {
		if p.RestaurantCnpj != cnpj || p.Deleted {
			continue
		}
		if q.Search != "" && !strings.Contains(p.Status, strings.ToUpper(q.Search)) {
			continue
		}
		r.attachTree(p)
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *fakePedidoRepo) ListByMesa(_ context.Context, cnpj string, mesaID uuid.UUID, comandaID *uuid.UUID, status string, prodImage bool, _ dto.PaginationQuery) ([]model.Pedido, int64, error) {
	r.listByMesaProdImage = prodImage
	var out []model.Pedido
	for _, p := range r.pedidos {
		if p.RestaurantCnpj != cnpj || p.Deleted || p.MesaID == nil || *p.MesaID != mesaID {
			continue
		}
		if comandaID != nil && (p.ComandaID == nil || *p.ComandaID != *comandaID) {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		r.attachTree(p)
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *fakePedidoRepo) ListByCaixa(_ context.Context, cnpj string, caixaID uuid.UUID) ([]model.Pedido, error) {
	var out []model.Pedido
	for _, p := range r.pedidos {
		if p.RestaurantCnpj != cnpj || p.Deleted || p.CaixaID == nil || *p.CaixaID != caixaID {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakePedidoRepo) Update(_ context.Context, _ *gorm.DB, p *model.Pedido) error {
	r.pedidos[p.ID] = p
	return nil
}

func (r *fakePedidoRepo) SetPdvCod(_ context.Context, id uuid.UUID, cod string) error {
	p, ok := r.pedidos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.PdvCodPedido = &cod
	return nil
}

func (r *fakePedidoRepo) SoftDelete(_ context.Context, cnpj string, id uuid.UUID) error {
	p, ok := r.pedidos[id]
	if !ok || p.RestaurantCnpj != cnpj || p.Deleted {
		return gorm.ErrRecordNotFound
	}
	p.Deleted = true
	return nil
}

// ── Caixa ─────────────────────────────────────────────────────────────────────

type fakeCaixaRepo struct {
	caixas      map[uuid.UUID]*model.Caixa
	movs        []*model.CaixaMovimentacao
	fechamentos map[uuid.UUID]*model.CaixaFechamento
	catalogo    *fakeCatalogoRepo
}

var _ repository.CaixaRepository = (*fakeCaixaRepo)(nil)

func newFakeCaixaRepo() *fakeCaixaRepo {
	return &fakeCaixaRepo{
		caixas:      make(map[uuid.UUID]*model.Caixa),
		fechamentos: make(map[uuid.UUID]*model.CaixaFechamento),
	}
}

func (r *fakeCaixaRepo) DB() *gorm.DB { return nil }

func (r *fakeCaixaRepo) Create(_ context.Context, c *model.Caixa) error {
	// The partial unique index: one open, non-deleted caixa per user+tenant.
	for _, existing := range r.caixas {
		if existing.UserID == c.UserID && existing.RestaurantCnpj == c.RestaurantCnpj &&
			existing.Status && !existing.Deleted {
			return gorm.ErrDuplicatedKey
		}
	}
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	r.caixas[c.ID] = c
	return nil
}

func (r *fakeCaixaRepo) attachMovs(c *model.Caixa) {
	c.Movimentacoes = nil
	for _, m := range r.movs {
		if m.CaixaID == c.ID {
			c.Movimentacoes = append(c.Movimentacoes, *m)
		}
	}
}

func (r *fakeCaixaRepo) FindByID(_ context.Context, cnpj string, id uuid.UUID) (*model.Caixa, error) {
	c, ok := r.caixas[id]
	if !ok || c.RestaurantCnpj != cnpj || c.Deleted {
		return nil, gorm.ErrRecordNotFound
	}
	r.attachMovs(c)
	return c, nil
}

func (r *fakeCaixaRepo) FindOpenByUser(_ context.Context, cnpj string, userID uuid.UUID) (*model.Caixa, error) {
	for _, c := range r.caixas {
		if c.UserID == userID && c.RestaurantCnpj == cnpj && c.Status && !c.Deleted {
			r.attachMovs(c)
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCaixaRepo) List(_ context.Context, cnpj string, _, _ int) ([]model.Caixa, int64, error) {
	var out []model.Caixa
	for _, c := range r.caixas {
		if c.RestaurantCnpj != cnpj || c.Deleted {
			continue
		}
		r.attachMovs(c)
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *fakeCaixaRepo) SetStatus(_ context.Context, _ *gorm.DB, id uuid.UUID, open bool) error {
	c, ok := r.caixas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Status = open
	return nil
}

func (r *fakeCaixaRepo) SoftDelete(_ context.Context, cnpj string, id uuid.UUID) error {
	c, ok := r.caixas[id]
	if !ok || c.RestaurantCnpj != cnpj {
		return gorm.ErrRecordNotFound
	}
	c.Deleted = true
	return nil
}

func (r *fakeCaixaRepo) CreateMovimentacao(_ context.Context, m *model.CaixaMovimentacao) error {
	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	r.movs = append(r.movs, m)
	return nil
}

func (r *fakeCaixaRepo) UpdateMovimentacao(_ context.Context, m *model.CaixaMovimentacao) error {
	for i, existing := range r.movs {
		if existing.ID == m.ID {
			r.movs[i] = m
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeCaixaRepo) FindMovimentacao(_ context.Context, caixaID, movID uuid.UUID) (*model.CaixaMovimentacao, error) {
	for _, m := range r.movs {
		if m.ID == movID && m.CaixaID == caixaID {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCaixaRepo) ListMovimentacoes(_ context.Context, caixaID uuid.UUID) ([]model.CaixaMovimentacao, error) {
	var out []model.CaixaMovimentacao
	for _, m := range r.movs {
		if m.CaixaID == caixaID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeCaixaRepo) CreateFechamento(_ context.Context, _ *gorm.DB, f *model.CaixaFechamento) error {
	if _, exists := r.fechamentos[f.CaixaID]; exists {
		return gorm.ErrDuplicatedKey
	}
	f.ID = uuid.New()
	f.CreatedAt = time.Now()
	for i := range f.Metodos {
		f.Metodos[i].ID = uuid.New()
		f.Metodos[i].FechamentoID = f.ID
	}
	r.fechamentos[f.CaixaID] = f
	return nil
}

func (r *fakeCaixaRepo) FindFechamento(_ context.Context, caixaID uuid.UUID) (*model.CaixaFechamento, error) {
	f, ok := r.fechamentos[caixaID]
	if !ok {
		return nil, nil
	}
	if r.catalogo != nil {
		for i := range f.Metodos {
			if m, ok := r.catalogo.metodos[f.Metodos[i].PaymentMethodID]; ok {
				f.Metodos[i].MetodoPagamento = m
			}
		}
	}
	return f, nil
}

// ── Catálogo ──────────────────────────────────────────────────────────────────

type fakeCatalogoRepo struct {
	restaurantes map[string]*model.Restaurante
	mesas        map[uuid.UUID]*model.Mesa
	metodos      map[uuid.UUID]*model.MetodoPagamento
}

var _ repository.CatalogoRepository = (*fakeCatalogoRepo)(nil)

func newFakeCatalogoRepo() *fakeCatalogoRepo {
	return &fakeCatalogoRepo{
		restaurantes: make(map[string]*model.Restaurante),
		mesas:        make(map[uuid.UUID]*model.Mesa),
		metodos:      make(map[uuid.UUID]*model.MetodoPagamento),
	}
}

func (r *fakeCatalogoRepo) FindRestaurante(_ context.Context, cnpj string) (*model.Restaurante, error) {
	rest, ok := r.restaurantes[cnpj]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rest, nil
}

func (r *fakeCatalogoRepo) FindMesa(_ context.Context, cnpj string, id uuid.UUID) (*model.Mesa, error) {
	mesa, ok := r.mesas[id]
	if !ok || mesa.RestaurantCnpj != cnpj {
		return nil, gorm.ErrRecordNotFound
	}
	return mesa, nil
}

// ── Payment ───────────────────────────────────────────────────────────────────

// fakePaymentRepo keeps the pedido's Payments slice in sync so ListByCaixa
// sees payments created through Finalizar, like the Preload does in SQL.
type fakePaymentRepo struct {
	payments map[uuid.UUID]*model.Payment
	pedidos  *fakePedidoRepo
}

var _ repository.PaymentRepository = (*fakePaymentRepo)(nil)

func newFakePaymentRepo(pedidos *fakePedidoRepo) *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uuid.UUID]*model.Payment), pedidos: pedidos}
}

func (r *fakePaymentRepo) Create(_ context.Context, _ *gorm.DB, p *model.Payment) error {
	p.ID = uuid.New()
	r.payments[p.ID] = p
	if r.pedidos != nil {
		if pedido, ok := r.pedidos.pedidos[p.PedidoID]; ok {
			pedido.Payments = append(pedido.Payments, *p)
		}
	}
	return nil
}

func (r *fakePaymentRepo) FindByID(_ context.Context, cnpj string, id uuid.UUID) (*model.Payment, error) {
	p, ok := r.payments[id]
	if !ok || p.RestaurantCnpj != cnpj || p.Deleted {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *fakePaymentRepo) List(_ context.Context, cnpj string, q dto.PaymentListQuery) ([]model.Payment, int64, error) {
	var out []model.Payment
	for _, p := range r.payments {
		if p.RestaurantCnpj != cnpj || p.Deleted {
			continue
		}
		if q.PedidoID != "" && p.PedidoID.String() != q.PedidoID {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *fakePaymentRepo) Update(_ context.Context, p *model.Payment) error {
	r.payments[p.ID] = p
	return nil
}

// ── Sync intents ──────────────────────────────────────────────────────────────

type fakeSyncRepo struct {
	intents map[uuid.UUID]*model.PdvSyncIntent
}

var _ repository.SyncIntentRepository = (*fakeSyncRepo)(nil)

func newFakeSyncRepo() *fakeSyncRepo {
	return &fakeSyncRepo{intents: make(map[uuid.UUID]*model.PdvSyncIntent)}
}

func (r *fakeSyncRepo) Create(_ context.Context, _ *gorm.DB, i *model.PdvSyncIntent) error {
	i.ID = uuid.New()
	i.CreatedAt = time.Now()
	if i.Status == "" {
		i.Status = model.SyncPendente
	}
	r.intents[i.ID] = i
	return nil
}

func (r *fakeSyncRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PdvSyncIntent, error) {
	i, ok := r.intents[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return i, nil
}

func (r *fakeSyncRepo) MarkEnviado(_ context.Context, id uuid.UUID) error {
	i, ok := r.intents[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	i.Status = model.SyncEnviado
	i.NextRetryAt = nil
	i.LastError = nil
	return nil
}

func (r *fakeSyncRepo) ScheduleRetry(_ context.Context, id uuid.UUID, tentativas int, nextRetryAt time.Time, lastError string) error {
	i, ok := r.intents[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	i.Tentativas = tentativas
	i.NextRetryAt = &nextRetryAt
	i.LastError = &lastError
	return nil
}

func (r *fakeSyncRepo) MarkFalhou(_ context.Context, id uuid.UUID, lastError string) error {
	i, ok := r.intents[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	i.Status = model.SyncFalhou
	i.NextRetryAt = nil
	i.LastError = &lastError
	return nil
}

func (r *fakeSyncRepo) ListDue(_ context.Context, now time.Time, limit int) ([]model.PdvSyncIntent, error) {
	var out []model.PdvSyncIntent
	for _, i := range r.intents {
		if i.Status != model.SyncPendente {
			continue
		}
		if i.NextRetryAt != nil && i.NextRetryAt.After(now) {
			continue
		}
		out = append(out, *i)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}
