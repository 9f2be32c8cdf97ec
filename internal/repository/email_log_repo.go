package repository

import (
	"context"
	"time"

	"beautyhub-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmailLogRepository interface {
	Create(ctx context.Context, entry *model.EmailLog) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.EmailLog, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status, errorMessage string) (bool, error)
	IncrementRetry(ctx context.Context, id uuid.UUID, nextRetryAt time.Time) (bool, error)
	DueForRetry(ctx context.Context, now time.Time) ([]model.EmailLog, error)
	ByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]model.EmailLog, error)
	List(ctx context.Context, status, emailType string, page, limit int) ([]model.EmailLog, int64, error)
}

type emailLogRepository struct {
	db *gorm.DB
}

func NewEmailLogRepository(db *gorm.DB) EmailLogRepository {
	return &emailLogRepository{db: db}
}

func (r *emailLogRepository) Create(ctx context.Context, entry *model.EmailLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *emailLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.EmailLog, error) {
	var entry model.EmailLog
	if err := GetDB(ctx, r.db).First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateStatus transitions an entry's status. Marking an entry sent also
// stamps sent_at and clears the retry schedule; the entry keeps its
// retry_count as a record of how many attempts it took.
func (r *emailLogRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status, errorMessage string) (bool, error) {
	updates := map[string]interface{}{
		"status":        status,
		"error_message": errorMessage,
	}
	if status == model.EmailStatusSent {
		updates["sent_at"] = time.Now()
		updates["next_retry_at"] = nil
	}

	res := GetDB(ctx, r.db).Model(&model.EmailLog{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// IncrementRetry bumps retry_count by one and stamps the next retry slot.
// The caller computes nextRetryAt from the count it last read; concurrent
// increments of the same row are last-writer-wins.
func (r *emailLogRepository) IncrementRetry(ctx context.Context, id uuid.UUID, nextRetryAt time.Time) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.EmailLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"retry_count":   gorm.Expr("retry_count + 1"),
			"next_retry_at": nextRetryAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DueForRetry returns failed entries whose retry slot has come due. Entries
// that exhausted their retries stay out of the result even when a stale
// next_retry_at is in the past.
func (r *emailLogRepository) DueForRetry(ctx context.Context, now time.Time) ([]model.EmailLog, error) {
	var entries []model.EmailLog
	if err := GetDB(ctx, r.db).
		Where("status = ? AND retry_count < ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?",
			model.EmailStatusFailed, model.MaxEmailRetries, now).
		Order("next_retry_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *emailLogRepository) ByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]model.EmailLog, error) {
	var entries []model.EmailLog
	if err := GetDB(ctx, r.db).
		Where("related_entity_type = ? AND related_entity_id = ?", entityType, entityID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *emailLogRepository) List(ctx context.Context, status, emailType string, page, limit int) ([]model.EmailLog, int64, error) {
	var entries []model.EmailLog
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.EmailLog{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if emailType != "" {
		query = query.Where("email_type = ?", emailType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Model(&model.EmailLog{})
	if status != "" {
		fetchQuery = fetchQuery.Where("status = ?", status)
	}
	if emailType != "" {
		fetchQuery = fetchQuery.Where("email_type = ?", emailType)
	}
	if err := fetchQuery.Order("created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
