package repository

import (
	"context"
	"time"

	"beautyhub-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	FindByIDWithBooking(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	Update(ctx context.Context, payment *model.Payment) error
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.Payment, error)
	ListBySalon(ctx context.Context, salonID uuid.UUID, status string, page, limit int) ([]model.Payment, int64, error)
	CompletedTotalBetween(ctx context.Context, start, end time.Time) (string, int64, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Create(payment).Error
}

func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	if err := GetDB(ctx, r.db).First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByIDWithBooking(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	if err := GetDB(ctx, r.db).
		Preload("Booking").
		Preload("Booking.User").
		Preload("Booking.Salon").
		First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Save(payment).Error
}

func (r *paymentRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	if err := GetDB(ctx, r.db).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) ListBySalon(ctx context.Context, salonID uuid.UUID, status string, page, limit int) ([]model.Payment, int64, error) {
	var payments []model.Payment
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Payment{}).
		Joins("JOIN bookings ON bookings.id = payments.booking_id").
		Where("bookings.salon_id = ?", salonID)
	if status != "" {
		query = query.Where("payments.status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Preload("Booking").
		Joins("JOIN bookings ON bookings.id = payments.booking_id").
		Where("bookings.salon_id = ?", salonID)
	if status != "" {
		fetchQuery = fetchQuery.Where("payments.status = ?", status)
	}
	if err := fetchQuery.Order("payments.created_at DESC").Offset(offset).Limit(limit).Find(&payments).Error; err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

// CompletedTotalBetween sums completed payment amounts inside [start, end).
// The sum comes back as text so the caller can parse it into a decimal
// without a float round trip.
func (r *paymentRepository) CompletedTotalBetween(ctx context.Context, start, end time.Time) (string, int64, error) {
	var result struct {
		Total string
		Count int64
	}
	err := GetDB(ctx, r.db).Model(&model.Payment{}).
		Select("COALESCE(CAST(SUM(amount) AS TEXT), '0') as total, COUNT(*) as count").
		Where("status = ? AND created_at >= ? AND created_at < ?", model.PaymentStatusCompleted, start, end).
		Scan(&result).Error
	if err != nil {
		return "0", 0, err
	}
	return result.Total, result.Count, nil
}
