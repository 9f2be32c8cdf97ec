package repository

import (
	"context"
	"testing"
	"time"

	"beautyhub-backend/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// openTestDB gives each test an isolated in-memory database. The pool is
// pinned to one connection; every pooled connection to :memory: would
// otherwise see its own empty database.
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

func seedEmailLog(t *testing.T, db *gorm.DB, entry model.EmailLog) model.EmailLog {
	t.Helper()
	if entry.RecipientEmail == "" {
		entry.RecipientEmail = "someone@example.com"
	}
	if entry.EmailType == "" {
		entry.EmailType = model.EmailTypeWelcome
	}
	if entry.Status == "" {
		entry.Status = model.EmailStatusPending
	}
	require.NoError(t, db.Create(&entry).Error)
	return entry
}

func TestEmailLogUpdateStatus(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewEmailLogRepository(db)

	t.Run("marking sent stamps sent_at and clears the schedule", func(t *testing.T) {
		next := time.Now().Add(10 * time.Minute)
		entry := seedEmailLog(t, db, model.EmailLog{
			Status:      model.EmailStatusFailed,
			RetryCount:  2,
			NextRetryAt: &next,
		})

		ok, err := repo.UpdateStatus(ctx, entry.ID, model.EmailStatusSent, "")
		require.NoError(t, err)
		assert.True(t, ok)

		reread, err := repo.FindByID(ctx, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, model.EmailStatusSent, reread.Status)
		assert.NotNil(t, reread.SentAt)
		assert.Nil(t, reread.NextRetryAt)
		assert.Equal(t, 2, reread.RetryCount)
	})

	t.Run("marking failed keeps the schedule untouched", func(t *testing.T) {
		next := time.Now().Add(10 * time.Minute)
		entry := seedEmailLog(t, db, model.EmailLog{
			Status:      model.EmailStatusPending,
			NextRetryAt: &next,
		})

		ok, err := repo.UpdateStatus(ctx, entry.ID, model.EmailStatusFailed, "smtp down")
		require.NoError(t, err)
		assert.True(t, ok)

		reread, err := repo.FindByID(ctx, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, "smtp down", reread.ErrorMessage)
		assert.Nil(t, reread.SentAt)
		assert.NotNil(t, reread.NextRetryAt)
	})

	t.Run("a missing id reports no rows", func(t *testing.T) {
		ok, err := repo.UpdateStatus(ctx, uuid.New(), model.EmailStatusSent, "")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestEmailLogDueForRetry(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewEmailLogRepository(db)
	now := time.Now()

	older := now.Add(-30 * time.Minute)
	newer := now.Add(-10 * time.Minute)
	future := now.Add(30 * time.Minute)

	second := seedEmailLog(t, db, model.EmailLog{Status: model.EmailStatusFailed, RetryCount: 1, NextRetryAt: &newer})
	first := seedEmailLog(t, db, model.EmailLog{Status: model.EmailStatusFailed, RetryCount: 0, NextRetryAt: &older})
	seedEmailLog(t, db, model.EmailLog{Status: model.EmailStatusFailed, RetryCount: model.MaxEmailRetries, NextRetryAt: &older})
	seedEmailLog(t, db, model.EmailLog{Status: model.EmailStatusFailed, RetryCount: 1, NextRetryAt: &future})
	seedEmailLog(t, db, model.EmailLog{Status: model.EmailStatusSent, RetryCount: 1, NextRetryAt: &older})
	seedEmailLog(t, db, model.EmailLog{Status: model.EmailStatusFailed, RetryCount: 1})

	due, err := repo.DueForRetry(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, first.ID, due[0].ID)
	assert.Equal(t, second.ID, due[1].ID)
}

func TestEmailLogIncrementRetry(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewEmailLogRepository(db)

	entry := seedEmailLog(t, db, model.EmailLog{Status: model.EmailStatusFailed, RetryCount: 1})
	next := time.Now().Add(15 * time.Minute)

	ok, err := repo.IncrementRetry(ctx, entry.ID, next)
	require.NoError(t, err)
	assert.True(t, ok)

	reread, err := repo.FindByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reread.RetryCount)
	require.NotNil(t, reread.NextRetryAt)
	assert.WithinDuration(t, next, *reread.NextRetryAt, time.Second)

	ok, err = repo.IncrementRetry(ctx, uuid.New(), next)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmailLogByEntity(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewEmailLogRepository(db)
	requestID := uuid.New()

	older := seedEmailLog(t, db, model.EmailLog{
		RelatedEntityType: model.EntityVendorRequest,
		RelatedEntityID:   &requestID,
		CreatedAt:         time.Now().Add(-10 * time.Minute),
	})
	newer := seedEmailLog(t, db, model.EmailLog{
		RelatedEntityType: model.EntityVendorRequest,
		RelatedEntityID:   &requestID,
		CreatedAt:         time.Now(),
	})
	seedEmailLog(t, db, model.EmailLog{
		RelatedEntityType: model.EntitySalon,
		RelatedEntityID:   &requestID,
	})

	entries, err := repo.ByEntity(ctx, model.EntityVendorRequest, requestID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, newer.ID, entries[0].ID)
	assert.Equal(t, older.ID, entries[1].ID)
}

func TestEmailLogList(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewEmailLogRepository(db)

	for i := 0; i < 3; i++ {
		seedEmailLog(t, db, model.EmailLog{Status: model.EmailStatusSent, EmailType: model.EmailTypeWelcome})
	}
	seedEmailLog(t, db, model.EmailLog{Status: model.EmailStatusFailed, EmailType: model.EmailTypeWelcome})
	seedEmailLog(t, db, model.EmailLog{Status: model.EmailStatusFailed, EmailType: model.EmailTypePaymentReceipt})

	t.Run("status filter", func(t *testing.T) {
		entries, total, err := repo.List(ctx, model.EmailStatusFailed, "", 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, entries, 2)
	})

	t.Run("type and status combine", func(t *testing.T) {
		entries, total, err := repo.List(ctx, model.EmailStatusFailed, model.EmailTypePaymentReceipt, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Len(t, entries, 1)
	})

	t.Run("pagination keeps the full count", func(t *testing.T) {
		entries, total, err := repo.List(ctx, "", "", 1, 2)
		require.NoError(t, err)
		assert.EqualValues(t, 5, total)
		assert.Len(t, entries, 2)

		entries, total, err = repo.List(ctx, "", "", 3, 2)
		require.NoError(t, err)
		assert.EqualValues(t, 5, total)
		assert.Len(t, entries, 1)
	})
}
