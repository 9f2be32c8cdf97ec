package repository

import (
	"context"
	"fmt"
	"time"

	"beautyhub-backend/internal/model"

	"gorm.io/gorm"
)

type StatisticsRepository interface {
	CountVendorRequestsByStatus(ctx context.Context, status string) (int64, error)
	CountSalonsByStatus(ctx context.Context, status string) (int64, error)
	CountUnclaimedSalons(ctx context.Context) (int64, error)
	CountBookingsBetween(ctx context.Context, start, end time.Time) (int64, error)
	CountEmailLogsByStatus(ctx context.Context, status string) (int64, error)
	GetTopSalons(ctx context.Context, start, end time.Time, limit int) ([]model.SalonRanking, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) CountVendorRequestsByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.VendorRequest{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *statisticsRepository) CountSalonsByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Salon{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// CountUnclaimedSalons counts approved salons whose registration link has not
// been redeemed yet.
func (r *statisticsRepository) CountUnclaimedSalons(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Salon{}).Where("owner_id IS NULL").Count(&count).Error
	return count, err
}

func (r *statisticsRepository) CountBookingsBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Booking{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error
	return count, err
}

func (r *statisticsRepository) CountEmailLogsByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.EmailLog{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *statisticsRepository) GetTopSalons(ctx context.Context, start, end time.Time, limit int) ([]model.SalonRanking, error) {
	var rankings []model.SalonRanking
	if err := r.db.WithContext(ctx).Table("bookings").
		Select("salons.id as salon_id, salons.name as salon_name, COUNT(DISTINCT bookings.id) as total_bookings, COALESCE(CAST(SUM(CASE WHEN payments.status = 'completed' THEN payments.amount ELSE 0 END) AS TEXT), '0') as total_revenue").
		Joins("JOIN salons ON salons.id = bookings.salon_id").
		Joins("LEFT JOIN payments ON payments.booking_id = bookings.id").
		Where("bookings.created_at >= ? AND bookings.created_at < ?", start, end).
		Group("salons.id, salons.name").
		Order("total_bookings DESC").
		Limit(limit).
		Scan(&rankings).Error; err != nil {
		return nil, fmt.Errorf("failed to query top salons: %w", err)
	}
	return rankings, nil
}
