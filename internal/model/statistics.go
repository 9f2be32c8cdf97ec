package model

import (
	"time"

	"github.com/google/uuid"
)

// DashboardStatistics aggregates marketplace health metrics for the admin dashboard
type DashboardStatistics struct {
	PendingVendorRequests  int64          `json:"pending_vendor_requests"`
	ApprovedVendorRequests int64          `json:"approved_vendor_requests"`
	RejectedVendorRequests int64          `json:"rejected_vendor_requests"`
	ApprovedSalons         int64          `json:"approved_salons"`
	UnclaimedSalons        int64          `json:"unclaimed_salons"`
	TotalBookings          int64          `json:"total_bookings"`
	TotalRevenue           string         `json:"total_revenue"`
	CompletedPayments      int64          `json:"completed_payments"`
	EmailsSent             int64          `json:"emails_sent"`
	EmailsFailed           int64          `json:"emails_failed"`
	EmailsPending          int64          `json:"emails_pending"`
	TopSalons              []SalonRanking `json:"top_salons"`
	TimeRangeStartDate     time.Time      `json:"time_range_start_date"`
	TimeRangeEndDate       time.Time      `json:"time_range_end_date"`
}

// SalonRanking represents a ranked salon based on accumulated bookings and revenue
type SalonRanking struct {
	SalonID       uuid.UUID `gorm:"column:salon_id" json:"salon_id"`
	SalonName     string    `gorm:"column:salon_name" json:"salon_name"`
	TotalBookings int64     `gorm:"column:total_bookings" json:"total_bookings"`
	TotalRevenue  string    `gorm:"column:total_revenue" json:"total_revenue"`
}
