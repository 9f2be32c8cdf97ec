package service

import (
	"context"
	"fmt"
	"time"

	"beautyhub-backend/internal/model"
	"beautyhub-backend/internal/repository"

	"github.com/shopspring/decimal"
)

const topSalonsLimit = 5

type StatisticsService interface {
	GetStatistics(ctx context.Context, startDate, endDate time.Time) (model.DashboardStatistics, error)
}

type statisticsService struct {
	statsRepo   repository.StatisticsRepository
	paymentRepo repository.PaymentRepository
}

func NewStatisticsService(statsRepo repository.StatisticsRepository, paymentRepo repository.PaymentRepository) StatisticsService {
	return &statisticsService{statsRepo: statsRepo, paymentRepo: paymentRepo}
}

// GetStatistics aggregates marketplace metrics bounding bookings and payments into time brackets
func (s *statisticsService) GetStatistics(ctx context.Context, startDate, endDate time.Time) (model.DashboardStatistics, error) {
	var response model.DashboardStatistics
	response.TimeRangeStartDate = startDate
	response.TimeRangeEndDate = endDate

	var err error
	if response.PendingVendorRequests, err = s.statsRepo.CountVendorRequestsByStatus(ctx, model.VendorStatusPending); err != nil {
		return response, fmt.Errorf("failed to count pending vendor requests: %w", err)
	}
	if response.ApprovedVendorRequests, err = s.statsRepo.CountVendorRequestsByStatus(ctx, model.VendorStatusApproved); err != nil {
		return response, fmt.Errorf("failed to count approved vendor requests: %w", err)
	}
	if response.RejectedVendorRequests, err = s.statsRepo.CountVendorRequestsByStatus(ctx, model.VendorStatusRejected); err != nil {
		return response, fmt.Errorf("failed to count rejected vendor requests: %w", err)
	}

	if response.ApprovedSalons, err = s.statsRepo.CountSalonsByStatus(ctx, model.VendorStatusApproved); err != nil {
		return response, fmt.Errorf("failed to count approved salons: %w", err)
	}
	if response.UnclaimedSalons, err = s.statsRepo.CountUnclaimedSalons(ctx); err != nil {
		return response, fmt.Errorf("failed to count unclaimed salons: %w", err)
	}

	if response.TotalBookings, err = s.statsRepo.CountBookingsBetween(ctx, startDate, endDate); err != nil {
		return response, fmt.Errorf("failed to count bookings: %w", err)
	}

	totalText, completedCount, err := s.paymentRepo.CompletedTotalBetween(ctx, startDate, endDate)
	if err != nil {
		return response, fmt.Errorf("failed to sum payments: %w", err)
	}
	total, parseErr := decimal.NewFromString(totalText)
	if parseErr != nil {
		total = decimal.Zero
	}
	response.TotalRevenue = total.StringFixed(2)
	response.CompletedPayments = completedCount

	if response.EmailsSent, err = s.statsRepo.CountEmailLogsByStatus(ctx, model.EmailStatusSent); err != nil {
		return response, fmt.Errorf("failed to count sent emails: %w", err)
	}
	if response.EmailsFailed, err = s.statsRepo.CountEmailLogsByStatus(ctx, model.EmailStatusFailed); err != nil {
		return response, fmt.Errorf("failed to count failed emails: %w", err)
	}
	if response.EmailsPending, err = s.statsRepo.CountEmailLogsByStatus(ctx, model.EmailStatusPending); err != nil {
		return response, fmt.Errorf("failed to count pending emails: %w", err)
	}

	topSalons, err := s.statsRepo.GetTopSalons(ctx, startDate, endDate, topSalonsLimit)
	if err != nil {
		return response, err
	}
	response.TopSalons = topSalons

	return response, nil
}
