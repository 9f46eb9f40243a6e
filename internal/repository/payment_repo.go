package repository

import (
	"context"

	"github.com/BistroPdv/bistro-api/internal/dto"
	"github.com/BistroPdv/bistro-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, p *model.Payment) error
	FindByID(ctx context.Context, cnpj string, id uuid.UUID) (*model.Payment, error)
	List(ctx context.Context, cnpj string, q dto.PaymentListQuery) ([]model.Payment, int64, error)
	Update(ctx context.Context, p *model.Payment) error
}

type paymentRepo struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) PaymentRepository { return &paymentRepo{db: db} }

func (r *paymentRepo) Create(ctx context.Context, tx *gorm.DB, p *model.Payment) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(p).Error
}

func (r *paymentRepo) FindByID(ctx context.Context, cnpj string, id uuid.UUID) (*model.Payment, error) {
	var p model.Payment
	err := r.db.WithContext(ctx).
		Where("id = ? AND restaurant_cnpj = ? AND deleted = false", id, cnpj).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepo) List(ctx context.Context, cnpj string, q dto.PaymentListQuery) ([]model.Payment, int64, error) {
	var payments []model.Payment
	var total int64

	base := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("restaurant_cnpj = ? AND deleted = false", cnpj)
	if q.PedidoID != "" {
		base = base.Where("pedido_id = ?", q.PedidoID)
	}

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base.Order("created_at ASC").
		Offset(q.Offset()).Limit(q.Limit).
		Find(&payments).Error
	return payments, total, err
}

func (r *paymentRepo) Update(ctx context.Context, p *model.Payment) error {
	return r.db.WithContext(ctx).Save(p).Error
}
