package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"beautyhub-backend/internal/model"
	"beautyhub-backend/internal/repository"
	"beautyhub-backend/internal/testutil/sendermock"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// openTestDB opens an in-memory sqlite database with the full schema.
// The pool is pinned to a single connection so every query, transactional
// or not, sees the same in-memory database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.VendorRequest{},
		&model.Salon{},
		&model.SalonService{},
		&model.Review{},
		&model.RegistrationToken{},
		&model.Booking{},
		&model.UserCart{},
		&model.Payment{},
		&model.ReminderLog{},
		&model.EmailLog{},
		&model.AuditLog{},
	))
	return db
}

// writeEmailTemplates lays out the five template files the notification
// service expects, with just enough markup to exercise the payload fields.
func writeEmailTemplates(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"vendor_approval.html":      `<p>Hi {{.OwnerName}}, {{.BusinessName}} is approved. Register at {{.RegistrationURL}} before {{.ExpiresAt}}.</p>`,
		"vendor_rejection.html":     `<p>Hi {{.SubmitterName}}, {{.BusinessName}} was rejected: {{.Reason}}</p>`,
		"welcome.html":              `<p>Welcome {{.Username}}. Log in at {{.LoginURL}}.</p>`,
		"booking_confirmation.html": `<p>Hi {{.CustomerName}}, booked {{.ServiceName}} at {{.SalonName}} on {{.StartsAt}}.</p>`,
		"payment_receipt.html":      `<p>Hi {{.CustomerName}}, received {{.Amount}} {{.Currency}} via {{.Method}} for {{.SalonName}}.</p>`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func newTestNotifier(t *testing.T, db *gorm.DB, email *sendermock.Email) NotificationService {
	t.Helper()

	notifier, err := NewNotificationService(repository.NewEmailLogRepository(db), email, writeEmailTemplates(t), zap.NewNop())
	require.NoError(t, err)
	return notifier
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) *model.User {
	t.Helper()

	user := &model.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedSalon(t *testing.T, db *gorm.DB, name, status string, ownerID *uuid.UUID) *model.Salon {
	t.Helper()

	salon := &model.Salon{
		Name:    name,
		Status:  status,
		OwnerID: ownerID,
		Email:   "contact@example.com",
		City:    "Hanoi",
	}
	require.NoError(t, db.Create(salon).Error)
	return salon
}

func seedSalonService(t *testing.T, db *gorm.DB, salonID uuid.UUID, name string, durationMinutes int, active bool) *model.SalonService {
	t.Helper()

	svc := &model.SalonService{
		SalonID:         salonID,
		Name:            name,
		Price:           decimal.NewFromInt(40),
		DurationMinutes: durationMinutes,
		IsActive:        active,
	}
	require.NoError(t, db.Create(svc).Error)
	return svc
}

func seedBooking(t *testing.T, db *gorm.DB, salonID, userID uuid.UUID, serviceID *uuid.UUID, status string, startsAt time.Time) *model.Booking {
	t.Helper()

	booking := &model.Booking{
		SalonID:   salonID,
		UserID:    userID,
		ServiceID: serviceID,
		StartsAt:  startsAt,
		EndsAt:    startsAt.Add(time.Hour),
		Status:    status,
	}
	require.NoError(t, db.Create(booking).Error)
	return booking
}

func countAuditEntries(t *testing.T, db *gorm.DB, action string) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&model.AuditLog{}).Where("action = ?", action).Count(&count).Error)
	return count
}

func emailLogsFor(t *testing.T, db *gorm.DB, recipient string) []model.EmailLog {
	t.Helper()

	var entries []model.EmailLog
	require.NoError(t, db.Where("recipient_email = ?", recipient).Order("created_at ASC").Find(&entries).Error)
	return entries
}

func testCtx() context.Context { return context.Background() }
