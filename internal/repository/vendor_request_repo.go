package repository

import (
	"context"

	"beautyhub-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VendorRequestRepository interface {
	Create(ctx context.Context, req *model.VendorRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.VendorRequest, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.VendorRequest, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.VendorRequest, error)
	List(ctx context.Context, status string, page, limit int) ([]model.VendorRequest, int64, error)
	ListBySubmitter(ctx context.Context, submitterID uuid.UUID, page, limit int) ([]model.VendorRequest, int64, error)
	Update(ctx context.Context, req *model.VendorRequest) error
}

type vendorRequestRepository struct {
	db *gorm.DB
}

func NewVendorRequestRepository(db *gorm.DB) VendorRequestRepository {
	return &vendorRequestRepository{db: db}
}

func (r *vendorRequestRepository) Create(ctx context.Context, req *model.VendorRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *vendorRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.VendorRequest, error) {
	var req model.VendorRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// FindByIDForUpdate loads the request under a row lock so two reviewers
// deciding the same request serialize instead of both seeing pending.
// Only meaningful inside a transaction.
func (r *vendorRequestRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.VendorRequest, error) {
	var req model.VendorRequest
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *vendorRequestRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.VendorRequest, error) {
	var req model.VendorRequest
	if err := GetDB(ctx, r.db).Preload("Submitter").Preload("Reviewer").First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *vendorRequestRepository) List(ctx context.Context, status string, page, limit int) ([]model.VendorRequest, int64, error) {
	var requests []model.VendorRequest
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.VendorRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Preload("Submitter").Preload("Reviewer")
	if status != "" {
		fetchQuery = fetchQuery.Where("status = ?", status)
	}
	if err := fetchQuery.Order("created_at DESC").Offset(offset).Limit(limit).Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *vendorRequestRepository) ListBySubmitter(ctx context.Context, submitterID uuid.UUID, page, limit int) ([]model.VendorRequest, int64, error) {
	var requests []model.VendorRequest
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.VendorRequest{}).Where("submitted_by = ?", submitterID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Reviewer").
		Where("submitted_by = ?", submitterID).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *vendorRequestRepository) Update(ctx context.Context, req *model.VendorRequest) error {
	return GetDB(ctx, r.db).Save(req).Error
}
