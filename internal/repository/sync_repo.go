package repository

import (
	"context"
	"time"

	"github.com/BistroPdv/bistro-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SyncIntentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, i *model.PdvSyncIntent) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PdvSyncIntent, error)
	MarkEnviado(ctx context.Context, id uuid.UUID) error
	ScheduleRetry(ctx context.Context, id uuid.UUID, tentativas int, nextRetryAt time.Time, lastError string) error
	MarkFalhou(ctx context.Context, id uuid.UUID, lastError string) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]model.PdvSyncIntent, error)
}

type syncIntentRepo struct{ db *gorm.DB }

func NewSyncIntentRepository(db *gorm.DB) SyncIntentRepository { return &syncIntentRepo{db: db} }

func (r *syncIntentRepo) Create(ctx context.Context, tx *gorm.DB, i *model.PdvSyncIntent) error {
	return tx.WithContext(ctx).Create(i).Error
}

func (r *syncIntentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PdvSyncIntent, error) {
	var i model.PdvSyncIntent
	if err := r.db.WithContext(ctx).First(&i, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *syncIntentRepo) MarkEnviado(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.PdvSyncIntent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        model.SyncEnviado,
			"next_retry_at": nil,
			"last_error":    nil,
		}).Error
}

func (r *syncIntentRepo) ScheduleRetry(ctx context.Context, id uuid.UUID, tentativas int, nextRetryAt time.Time, lastError string) error {
	return r.db.WithContext(ctx).Model(&model.PdvSyncIntent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"tentativas":    tentativas,
			"next_retry_at": nextRetryAt,
			"last_error":    lastError,
		}).Error
}

func (r *syncIntentRepo) MarkFalhou(ctx context.Context, id uuid.UUID, lastError string) error {
	return r.db.WithContext(ctx).Model(&model.PdvSyncIntent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        model.SyncFalhou,
			"next_retry_at": nil,
			"last_error":    lastError,
		}).Error
}

// ListDue feeds the retry cron: PENDENTE intents whose next attempt is due
// (or that were never scheduled, covering a lost enqueue after commit).
func (r *syncIntentRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]model.PdvSyncIntent, error) {
	var intents []model.PdvSyncIntent
	err := r.db.WithContext(ctx).
		Where("status = ? AND (next_retry_at IS NULL OR next_retry_at <= ?)", model.SyncPendente, now).
		Order("created_at ASC").
		Limit(limit).
		Find(&intents).Error
	return intents, err
}
