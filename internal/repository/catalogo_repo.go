package repository

import (
	"context"

	"github.com/BistroPdv/bistro-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogoRepository is the read-only view over the catalog collaborators
// the order/caixa core depends on: tenant lookup (PDV integration and
// credentials) and mesa validation.
type CatalogoRepository interface {
	FindRestaurante(ctx context.Context, cnpj string) (*model.Restaurante, error)
	FindMesa(ctx context.Context, cnpj string, id uuid.UUID) (*model.Mesa, error)
}

type catalogoRepo struct{ db *gorm.DB }

func NewCatalogoRepository(db *gorm.DB) CatalogoRepository { return &catalogoRepo{db: db} }

func (r *catalogoRepo) FindRestaurante(ctx context.Context, cnpj string) (*model.Restaurante, error) {
	var rest model.Restaurante
	err := r.db.WithContext(ctx).Where("cnpj = ?", cnpj).First(&rest).Error
	if err != nil {
		return nil, err
	}
	return &rest, nil
}

func (r *catalogoRepo) FindMesa(ctx context.Context, cnpj string, id uuid.UUID) (*model.Mesa, error) {
	var mesa model.Mesa
	err := r.db.WithContext(ctx).
		Where("id = ? AND restaurant_cnpj = ?", id, cnpj).
		First(&mesa).Error
	if err != nil {
		return nil, err
	}
	return &mesa, nil
}
