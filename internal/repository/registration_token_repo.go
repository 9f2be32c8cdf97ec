package repository

import (
	"context"
	"time"

	"beautyhub-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RegistrationTokenRepository interface {
	Create(ctx context.Context, token *model.RegistrationToken) error
	FindByToken(ctx context.Context, token string) (*model.RegistrationToken, error)
	MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type registrationTokenRepository struct {
	db *gorm.DB
}

func NewRegistrationTokenRepository(db *gorm.DB) RegistrationTokenRepository {
	return &registrationTokenRepository{db: db}
}

func (r *registrationTokenRepository) Create(ctx context.Context, token *model.RegistrationToken) error {
	return GetDB(ctx, r.db).Create(token).Error
}

func (r *registrationTokenRepository) FindByToken(ctx context.Context, token string) (*model.RegistrationToken, error) {
	var rt model.RegistrationToken
	if err := GetDB(ctx, r.db).Preload("Salon").Where("token = ?", token).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *registrationTokenRepository) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	return GetDB(ctx, r.db).Model(&model.RegistrationToken{}).
		Where("id = ?", id).
		Update("used_at", usedAt).Error
}

// DeleteExpired prunes unredeemed tokens past their expiry. Redeemed tokens
// stay for the audit trail.
func (r *registrationTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := GetDB(ctx, r.db).
		Where("used_at IS NULL AND expires_at < ?", before).
		Delete(&model.RegistrationToken{})
	return res.RowsAffected, res.Error
}
