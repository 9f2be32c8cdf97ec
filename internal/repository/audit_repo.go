package repository

import (
	"context"

	"beautyhub-backend/internal/model"

	"gorm.io/gorm"
)

// AuditRepository is the write side of the audit trail. Entries are appended
// inside the same transaction as the mutation they describe, so a rolled-back
// workflow leaves no trace. Reads live in service.AuditService.
type AuditRepository interface {
	Log(ctx context.Context, entry *model.AuditLog) error
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Log(ctx context.Context, entry *model.AuditLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}
