package repository

import (
	"context"
	"time"

	"beautyhub-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Booking, int64, error)
	ListBySalon(ctx context.Context, salonID uuid.UUID, status string, page, limit int) ([]model.Booking, int64, error)
	ConfirmedBetween(ctx context.Context, start, end time.Time) ([]model.Booking, error)
	CountBySalon(ctx context.Context, salonID uuid.UUID) (int64, error)

	AddCartItem(ctx context.Context, item *model.UserCart) error
	ListCart(ctx context.Context, userID uuid.UUID) ([]model.UserCart, error)
	RemoveCartItem(ctx context.Context, userID, serviceID uuid.UUID) error
	ClearCartForSalon(ctx context.Context, userID, salonID uuid.UUID) error

	CreateReminderLog(ctx context.Context, entry *model.ReminderLog) error
	ListReminderLogs(ctx context.Context, bookingID uuid.UUID) ([]model.ReminderLog, error)
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return GetDB(ctx, r.db).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var booking model.Booking
	if err := GetDB(ctx, r.db).First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var booking model.Booking
	if err := GetDB(ctx, r.db).
		Preload("Salon").
		Preload("Service").
		Preload("User").
		First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.Booking{}).Where("id = ?", id).Update("status", status).Error
}

func (r *bookingRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Booking, int64, error) {
	var bookings []model.Booking
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Booking{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.
		Preload("Salon").
		Preload("Service").
		Where("user_id = ?", userID).
		Order("starts_at DESC").
		Offset(offset).Limit(limit).
		Find(&bookings).Error; err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

func (r *bookingRepository) ListBySalon(ctx context.Context, salonID uuid.UUID, status string, page, limit int) ([]model.Booking, int64, error) {
	var bookings []model.Booking
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Booking{}).Where("salon_id = ?", salonID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Preload("Service").Preload("User").Where("salon_id = ?", salonID)
	if status != "" {
		fetchQuery = fetchQuery.Where("status = ?", status)
	}
	if err := fetchQuery.Order("starts_at DESC").Offset(offset).Limit(limit).Find(&bookings).Error; err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

// ConfirmedBetween returns confirmed bookings starting inside [start, end),
// with salon and customer loaded. Used by the reminder sweep.
func (r *bookingRepository) ConfirmedBetween(ctx context.Context, start, end time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := GetDB(ctx, r.db).
		Preload("Salon").
		Preload("Service").
		Preload("User").
		Where("status = ? AND starts_at >= ? AND starts_at < ?", model.BookingStatusConfirmed, start, end).
		Order("starts_at ASC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) CountBySalon(ctx context.Context, salonID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Booking{}).Where("salon_id = ?", salonID).Count(&count).Error
	return count, err
}

func (r *bookingRepository) AddCartItem(ctx context.Context, item *model.UserCart) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *bookingRepository) ListCart(ctx context.Context, userID uuid.UUID) ([]model.UserCart, error) {
	var items []model.UserCart
	if err := GetDB(ctx, r.db).
		Preload("Service").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *bookingRepository) RemoveCartItem(ctx context.Context, userID, serviceID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("user_id = ? AND service_id = ?", userID, serviceID).
		Delete(&model.UserCart{}).Error
}

// ClearCartForSalon removes every cart row the user holds for one salon.
// Runs inside the booking-creation transaction.
func (r *bookingRepository) ClearCartForSalon(ctx context.Context, userID, salonID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("user_id = ? AND salon_id = ?", userID, salonID).
		Delete(&model.UserCart{}).Error
}

func (r *bookingRepository) CreateReminderLog(ctx context.Context, entry *model.ReminderLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *bookingRepository) ListReminderLogs(ctx context.Context, bookingID uuid.UUID) ([]model.ReminderLog, error) {
	var logs []model.ReminderLog
	if err := GetDB(ctx, r.db).
		Where("booking_id = ?", bookingID).
		Order("sent_at DESC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
