package repository

import (
	"context"

	"github.com/BistroPdv/bistro-api/internal/dto"
	"github.com/BistroPdv/bistro-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PedidoRepository interface {
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
	Create(ctx context.Context, tx *gorm.DB, p *model.Pedido) error
	CreateProduto(ctx context.Context, tx *gorm.DB, pp *model.PedidoProduto) error
	CreateAdicionais(ctx context.Context, tx *gorm.DB, adicionais []model.PedidoProdutoAdicional) error
	CreateHistory(ctx context.Context, tx *gorm.DB, h *model.HistoryPedido) error
	DeleteProdutos(ctx context.Context, tx *gorm.DB, pedidoID uuid.UUID) error
	FindByID(ctx context.Context, cnpj string, id uuid.UUID, prodImage bool) (*model.Pedido, error)
	List(ctx context.Context, cnpj string, q dto.PaginationQuery) ([]model.Pedido, int64, error)
	ListByMesa(ctx context.Context, cnpj string, mesaID uuid.UUID, comandaID *uuid.UUID, status string, prodImage bool, q dto.PaginationQuery) ([]model.Pedido, int64, error)
	ListByCaixa(ctx context.Context, cnpj string, caixaID uuid.UUID) ([]model.Pedido, error)
	Update(ctx context.Context, tx *gorm.DB, p *model.Pedido) error
	SetPdvCod(ctx context.Context, id uuid.UUID, cod string) error
	SoftDelete(ctx context.Context, cnpj string, id uuid.UUID) error
}

type pedidoRepo struct{ db *gorm.DB }

func NewPedidoRepository(db *gorm.DB) PedidoRepository { return &pedidoRepo{db: db} }

func (r *pedidoRepo) DB() *gorm.DB { return r.db }

func (r *pedidoRepo) Create(ctx context.Context, tx *gorm.DB, p *model.Pedido) error {
	return tx.WithContext(ctx).Create(p).Error
}

func (r *pedidoRepo) CreateProduto(ctx context.Context, tx *gorm.DB, pp *model.PedidoProduto) error {
	return tx.WithContext(ctx).Create(pp).Error
}

func (r *pedidoRepo) CreateAdicionais(ctx context.Context, tx *gorm.DB, adicionais []model.PedidoProdutoAdicional) error {
	if len(adicionais) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&adicionais).Error
}

func (r *pedidoRepo) CreateHistory(ctx context.Context, tx *gorm.DB, h *model.HistoryPedido) error {
	return tx.WithContext(ctx).Create(h).Error
}

func (r *pedidoRepo) DeleteProdutos(ctx context.Context, tx *gorm.DB, pedidoID uuid.UUID) error {
	return tx.WithContext(ctx).Where("pedido_id = ?", pedidoID).Delete(&model.PedidoProduto{}).Error
}

// preloadTree loads the full aggregate. Product images are heavy base64
// columns, so they are omitted unless the caller asks for them.
func (r *pedidoRepo) preloadTree(q *gorm.DB, prodImage bool) *gorm.DB {
	produtoCols := "id, nome, descricao, preco, codigo, externo_id, ativo, restaurant_cnpj"
	if prodImage {
		produtoCols += ", imagem"
	}
	return q.
		Preload("Mesa").
		Preload("Produtos").
		Preload("Produtos.Produto", func(db *gorm.DB) *gorm.DB { return db.Select(produtoCols) }).
		Preload("Produtos.Adicionais").
		Preload("Produtos.Adicionais.Adicional").
		Preload("Payments", "deleted = false").
		Preload("Historico")
}

func (r *pedidoRepo) FindByID(ctx context.Context, cnpj string, id uuid.UUID, prodImage bool) (*model.Pedido, error) {
	var p model.Pedido
	err := r.preloadTree(r.db.WithContext(ctx), prodImage).
		Where("id = ? AND restaurant_cnpj = ?", id, cnpj).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pedidoRepo) List(ctx context.Context, cnpj string, q dto.PaginationQuery) ([]model.Pedido, int64, error) {
	var pedidos []model.Pedido
	var total int64

	base := r.db.WithContext(ctx).Model(&model.Pedido{}).
		Where("restaurant_cnpj = ? AND deleted = false", cnpj)
	if q.Search != "" {
		base = base.Where("status ILIKE ? OR pdv_cod_pedido ILIKE ?", "%"+q.Search+"%", "%"+q.Search+"%")
	}

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.preloadTree(base, false).
		Order("created_at DESC").
		Offset(q.Offset()).Limit(q.Limit).
		Find(&pedidos).Error
	return pedidos, total, err
}

func (r *pedidoRepo) ListByMesa(ctx context.Context, cnpj string, mesaID uuid.UUID, comandaID *uuid.UUID, status string, prodImage bool, q dto.PaginationQuery) ([]model.Pedido, int64, error) {
	var pedidos []model.Pedido
	var total int64

	base := r.db.WithContext(ctx).Model(&model.Pedido{}).
		Where("restaurant_cnpj = ? AND deleted = false", cnpj)

	// comanda and mesa are mutually exclusive filter branches
	if comandaID != nil {
		base = base.Where("comanda_id = ?", *comandaID)
	} else {
		base = base.Where("mesa_id = ?", mesaID)
	}
	if status != "" {
		base = base.Where("status = ?", status)
	}

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.preloadTree(base, prodImage).
		Order("created_at DESC").
		Offset(q.Offset()).Limit(q.Limit).
		Find(&pedidos).Error
	return pedidos, total, err
}

func (r *pedidoRepo) ListByCaixa(ctx context.Context, cnpj string, caixaID uuid.UUID) ([]model.Pedido, error) {
	var pedidos []model.Pedido
	err := r.db.WithContext(ctx).
		Preload("Payments", "deleted = false").
		Where("caixa_id = ? AND restaurant_cnpj = ? AND deleted = false", caixaID, cnpj).
		Order("created_at ASC").
		Find(&pedidos).Error
	return pedidos, err
}

func (r *pedidoRepo) Update(ctx context.Context, tx *gorm.DB, p *model.Pedido) error {
	return tx.WithContext(ctx).Save(p).Error
}

func (r *pedidoRepo) SetPdvCod(ctx context.Context, id uuid.UUID, cod string) error {
	return r.db.WithContext(ctx).Model(&model.Pedido{}).
		Where("id = ?", id).
		Update("pdv_cod_pedido", cod).Error
}

func (r *pedidoRepo) SoftDelete(ctx context.Context, cnpj string, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Pedido{}).
		Where("id = ? AND restaurant_cnpj = ?", id, cnpj).
		Update("deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
