package repository

import (
	"context"
	"errors"

	"github.com/BistroPdv/bistro-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CaixaRepository interface {
	DB() *gorm.DB
	Create(ctx context.Context, c *model.Caixa) error
	FindByID(ctx context.Context, cnpj string, id uuid.UUID) (*model.Caixa, error)
	FindOpenByUser(ctx context.Context, cnpj string, userID uuid.UUID) (*model.Caixa, error)
	List(ctx context.Context, cnpj string, page, limit int) ([]model.Caixa, int64, error)
	SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, open bool) error
	SoftDelete(ctx context.Context, cnpj string, id uuid.UUID) error
	CreateMovimentacao(ctx context.Context, m *model.CaixaMovimentacao) error
	UpdateMovimentacao(ctx context.Context, m *model.CaixaMovimentacao) error
	FindMovimentacao(ctx context.Context, caixaID, movID uuid.UUID) (*model.CaixaMovimentacao, error)
	ListMovimentacoes(ctx context.Context, caixaID uuid.UUID) ([]model.CaixaMovimentacao, error)
	CreateFechamento(ctx context.Context, tx *gorm.DB, f *model.CaixaFechamento) error
	FindFechamento(ctx context.Context, caixaID uuid.UUID) (*model.CaixaFechamento, error)
}

type caixaRepo struct{ db *gorm.DB }

func NewCaixaRepository(db *gorm.DB) CaixaRepository { return &caixaRepo{db: db} }

func (r *caixaRepo) DB() *gorm.DB { return r.db }

func (r *caixaRepo) Create(ctx context.Context, c *model.Caixa) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *caixaRepo) FindByID(ctx context.Context, cnpj string, id uuid.UUID) (*model.Caixa, error) {
	var c model.Caixa
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Movimentacoes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ? AND restaurant_cnpj = ? AND deleted = false", id, cnpj).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindOpenByUser returns (nil, nil) when the user has no open caixa.
func (r *caixaRepo) FindOpenByUser(ctx context.Context, cnpj string, userID uuid.UUID) (*model.Caixa, error) {
	var c model.Caixa
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Movimentacoes").
		Where("user_id = ? AND restaurant_cnpj = ? AND status = true AND deleted = false", userID, cnpj).
		Order("created_at DESC").
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *caixaRepo) List(ctx context.Context, cnpj string, page, limit int) ([]model.Caixa, int64, error) {
	var caixas []model.Caixa
	var total int64

	base := r.db.WithContext(ctx).Model(&model.Caixa{}).
		Where("restaurant_cnpj = ? AND deleted = false", cnpj)

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base.Preload("User").Preload("Movimentacoes").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&caixas).Error
	return caixas, total, err
}

func (r *caixaRepo) SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, open bool) error {
	return tx.WithContext(ctx).Model(&model.Caixa{}).
		Where("id = ?", id).
		Update("status", open).Error
}

func (r *caixaRepo) SoftDelete(ctx context.Context, cnpj string, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Caixa{}).
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

func (r *caixaRepo) CreateMovimentacao(ctx context.Context, m *model.CaixaMovimentacao) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *caixaRepo) UpdateMovimentacao(ctx context.Context, m *model.CaixaMovimentacao) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *caixaRepo) FindMovimentacao(ctx context.Context, caixaID, movID uuid.UUID) (*model.CaixaMovimentacao, error) {
	var m model.CaixaMovimentacao
	err := r.db.WithContext(ctx).
		Where("id = ? AND caixa_id = ?", movID, caixaID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *caixaRepo) ListMovimentacoes(ctx context.Context, caixaID uuid.UUID) ([]model.CaixaMovimentacao, error) {
	var movs []model.CaixaMovimentacao
	err := r.db.WithContext(ctx).
		Where("caixa_id = ?", caixaID).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}

func (r *caixaRepo) CreateFechamento(ctx context.Context, tx *gorm.DB, f *model.CaixaFechamento) error {
	return tx.WithContext(ctx).Create(f).Error
}

// FindFechamento returns (nil, nil) when the caixa was never closed.
func (r *caixaRepo) FindFechamento(ctx context.Context, caixaID uuid.UUID) (*model.CaixaFechamento, error) {
	var f model.CaixaFechamento
	err := r.db.WithContext(ctx).
		Preload("Metodos").
		Preload("Metodos.MetodoPagamento").
		Where("caixa_id = ?", caixaID).
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}
