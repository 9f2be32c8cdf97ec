package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"beautyhub-backend/internal/model"
	"beautyhub-backend/internal/sender"
	"beautyhub-backend/internal/testutil/sendermock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestBackoffMinutes(t *testing.T) {
	cases := []struct {
		retryCount int
		want       int
	}{
		{retryCount: 0, want: 5},
		{retryCount: 1, want: 15},
		{retryCount: 2, want: 60},
		{retryCount: 3, want: 60},
		{retryCount: 9, want: 60},
		{retryCount: -1, want: 5},
	}
	for _, tc := range cases {
		if got := backoffMinutes(tc.retryCount); got != tc.want {
			t.Errorf("backoffMinutes(%d) = %d, want %d", tc.retryCount, got, tc.want)
		}
	}
}

func TestSendRecordsOutcome(t *testing.T) {
	ctx := testCtx()

	t.Run("successful delivery is logged as sent", func(t *testing.T) {
		db := openTestDB(t)
		var gotBody string
		email := &sendermock.Email{
			SendEmailFn: func(_ context.Context, _, _, body string) (sender.SendResult, error) {
				gotBody = body
				return sender.SendResult{MessageID: "m1", SentAt: time.Now()}, nil
			},
		}
		notifier := newTestNotifier(t, db, email)

		logID := notifier.Send(ctx, model.EmailTypeWelcome, "sam@example.com", "Welcome to BeautyHub",
			map[string]interface{}{"Username": "sam", "LoginURL": "https://app.example.com/login"}, nil)
		require.NotNil(t, logID)

		entry, err := notifier.GetLog(ctx, *logID)
		require.NoError(t, err)
		assert.Equal(t, model.EmailStatusSent, entry.Status)
		assert.Equal(t, "sam@example.com", entry.RecipientEmail)
		assert.Equal(t, "Welcome to BeautyHub", entry.Subject)
		assert.Equal(t, 0, entry.RetryCount)
		assert.Nil(t, entry.NextRetryAt)
		require.NotNil(t, entry.SentAt)
		assert.Contains(t, entry.EmailData, "sam")
		assert.Contains(t, gotBody, "Welcome sam")
	})

	t.Run("failed delivery is queued for retry", func(t *testing.T) {
		db := openTestDB(t)
		email := &sendermock.Email{
			SendEmailFn: func(context.Context, string, string, string) (sender.SendResult, error) {
				return sender.SendResult{}, errors.New("smtp down")
			},
		}
		notifier := newTestNotifier(t, db, email)

		logID := notifier.Send(ctx, model.EmailTypeWelcome, "sam@example.com", "Welcome to BeautyHub",
			map[string]interface{}{"Username": "sam", "LoginURL": "https://app.example.com/login"}, nil)
		require.NotNil(t, logID)

		entry, err := notifier.GetLog(ctx, *logID)
		require.NoError(t, err)
		assert.Equal(t, model.EmailStatusFailed, entry.Status)
		assert.Equal(t, "smtp down", entry.ErrorMessage)
		assert.Nil(t, entry.SentAt)
		require.NotNil(t, entry.NextRetryAt)
		assert.WithinDuration(t, time.Now().Add(5*time.Minute), *entry.NextRetryAt, 10*time.Second)
	})

	t.Run("unknown email type fails at render but is still logged", func(t *testing.T) {
		db := openTestDB(t)
		notifier := newTestNotifier(t, db, &sendermock.Email{})

		logID := notifier.Send(ctx, "password_reset", "sam@example.com", "Reset", nil, nil)
		require.NotNil(t, logID)

		entry, err := notifier.GetLog(ctx, *logID)
		require.NoError(t, err)
		assert.Equal(t, model.EmailStatusFailed, entry.Status)
		assert.Contains(t, entry.ErrorMessage, "no template registered")
	})

	t.Run("invalid recipient is refused entirely", func(t *testing.T) {
		db := openTestDB(t)
		notifier := newTestNotifier(t, db, &sendermock.Email{})

		logID := notifier.Send(ctx, model.EmailTypeWelcome, "not-an-address", "Welcome",
			map[string]interface{}{"Username": "sam", "LoginURL": "x"}, nil)
		assert.Nil(t, logID)

		_, total, err := notifier.ListLogs(ctx, EmailLogFilter{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 0, total)
	})

	t.Run("entity back-reference is stored and queryable", func(t *testing.T) {
		db := openTestDB(t)
		notifier := newTestNotifier(t, db, &sendermock.Email{})
		bookingID := uuid.New()

		logID := notifier.Send(ctx, model.EmailTypeWelcome, "sam@example.com", "Welcome",
			map[string]interface{}{"Username": "sam", "LoginURL": "x"},
			&RelatedEntity{Type: model.EntityBooking, ID: bookingID})
		require.NotNil(t, logID)

		entries, err := notifier.LogsByEntity(ctx, model.EntityBooking, bookingID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, *logID, entries[0].ID)
		assert.Equal(t, model.EntityBooking, entries[0].RelatedEntityType)
	})
}

func TestLogAttemptValidation(t *testing.T) {
	ctx := testCtx()
	db := openTestDB(t)
	notifier := newTestNotifier(t, db, &sendermock.Email{})

	t.Run("unknown status is refused", func(t *testing.T) {
		logID := notifier.LogAttempt(ctx, LogAttemptParams{
			Recipient: "sam@example.com",
			EmailType: model.EmailTypeWelcome,
			Status:    "queued",
		})
		assert.Nil(t, logID)
	})

	t.Run("negative retry count is refused", func(t *testing.T) {
		logID := notifier.LogAttempt(ctx, LogAttemptParams{
			Recipient:  "sam@example.com",
			EmailType:  model.EmailTypeWelcome,
			Status:     model.EmailStatusFailed,
			RetryCount: -1,
		})
		assert.Nil(t, logID)
	})

	t.Run("a failure at the retry cap is terminal", func(t *testing.T) {
		logID := notifier.LogAttempt(ctx, LogAttemptParams{
			Recipient:  "sam@example.com",
			EmailType:  model.EmailTypeWelcome,
			Status:     model.EmailStatusFailed,
			RetryCount: model.MaxEmailRetries,
		})
		require.NotNil(t, logID)

		entry, err := notifier.GetLog(ctx, *logID)
		require.NoError(t, err)
		assert.Equal(t, model.EmailStatusFailed, entry.Status)
		assert.Nil(t, entry.NextRetryAt)
	})
}

func TestIncrementRetryWalksTheSchedule(t *testing.T) {
	ctx := testCtx()
	db := openTestDB(t)
	notifier := newTestNotifier(t, db, &sendermock.Email{})

	logID := notifier.LogAttempt(ctx, LogAttemptParams{
		Recipient: "sam@example.com",
		EmailType: model.EmailTypeWelcome,
		Status:    model.EmailStatusFailed,
	})
	require.NotNil(t, logID)

	require.True(t, notifier.IncrementRetry(ctx, *logID))
	entry, err := notifier.GetLog(ctx, *logID)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.RetryCount)
	require.NotNil(t, entry.NextRetryAt)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), *entry.NextRetryAt, 10*time.Second)

	require.True(t, notifier.IncrementRetry(ctx, *logID))
	entry, err = notifier.GetLog(ctx, *logID)
	require.NoError(t, err)
	assert.Equal(t, 2, entry.RetryCount)
	require.NotNil(t, entry.NextRetryAt)
	assert.WithinDuration(t, time.Now().Add(60*time.Minute), *entry.NextRetryAt, 10*time.Second)

	assert.False(t, notifier.IncrementRetry(ctx, uuid.New()))
}

func TestProcessDueRetries(t *testing.T) {
	ctx := testCtx()
	past := time.Now().Add(-5 * time.Minute)

	seedEntry := func(t *testing.T, db *gorm.DB, recipient string, retryCount int, nextRetryAt *time.Time) uuid.UUID {
		t.Helper()
		entry := model.EmailLog{
			RecipientEmail: recipient,
			EmailType:      model.EmailTypeWelcome,
			Subject:        "Welcome to BeautyHub",
			Status:         model.EmailStatusFailed,
			RetryCount:     retryCount,
			NextRetryAt:    nextRetryAt,
			EmailData:      `{"Username":"sam","LoginURL":"https://app.example.com/login"}`,
		}
		require.NoError(t, db.Create(&entry).Error)
		return entry.ID
	}

	t.Run("due entry is resent and marked sent", func(t *testing.T) {
		db := openTestDB(t)
		var recipients []string
		email := &sendermock.Email{
			SendEmailFn: func(_ context.Context, to, _, _ string) (sender.SendResult, error) {
				recipients = append(recipients, to)
				return sender.SendResult{MessageID: "m1", SentAt: time.Now()}, nil
			},
		}
		notifier := newTestNotifier(t, db, email)
		dueID := seedEntry(t, db, "due@example.com", 1, &past)

		notifier.ProcessDueRetries(ctx)

		assert.Equal(t, []string{"due@example.com"}, recipients)
		entry, err := notifier.GetLog(ctx, dueID)
		require.NoError(t, err)
		assert.Equal(t, model.EmailStatusSent, entry.Status)
		assert.NotNil(t, entry.SentAt)
		assert.Nil(t, entry.NextRetryAt)
		assert.Equal(t, 1, entry.RetryCount)
	})

	t.Run("failed attempt bumps the count and reschedules", func(t *testing.T) {
		db := openTestDB(t)
		email := &sendermock.Email{
			SendEmailFn: func(context.Context, string, string, string) (sender.SendResult, error) {
				return sender.SendResult{}, errors.New("relay down")
			},
		}
		notifier := newTestNotifier(t, db, email)
		dueID := seedEntry(t, db, "due@example.com", 1, &past)

		notifier.ProcessDueRetries(ctx)

		entry, err := notifier.GetLog(ctx, dueID)
		require.NoError(t, err)
		assert.Equal(t, model.EmailStatusFailed, entry.Status)
		assert.Equal(t, "relay down", entry.ErrorMessage)
		assert.Equal(t, 2, entry.RetryCount)
		require.NotNil(t, entry.NextRetryAt)
		assert.WithinDuration(t, time.Now().Add(60*time.Minute), *entry.NextRetryAt, 10*time.Second)
	})

	t.Run("exhausted and not-yet-due entries are left alone", func(t *testing.T) {
		db := openTestDB(t)
		var calls int
		email := &sendermock.Email{
			SendEmailFn: func(context.Context, string, string, string) (sender.SendResult, error) {
				calls++
				return sender.SendResult{}, nil
			},
		}
		notifier := newTestNotifier(t, db, email)
		future := time.Now().Add(time.Hour)
		seedEntry(t, db, "exhausted@example.com", model.MaxEmailRetries, &past)
		seedEntry(t, db, "later@example.com", 0, &future)
		seedEntry(t, db, "unscheduled@example.com", 0, nil)

		notifier.ProcessDueRetries(ctx)
		assert.Equal(t, 0, calls)
	})
}

func TestResendManualOverride(t *testing.T) {
	ctx := testCtx()

	seedTerminal := func(t *testing.T, db *gorm.DB) uuid.UUID {
		t.Helper()
		entry := model.EmailLog{
			RecipientEmail: "owner@example.com",
			EmailType:      model.EmailTypeWelcome,
			Subject:        "Welcome to BeautyHub",
			Status:         model.EmailStatusFailed,
			RetryCount:     model.MaxEmailRetries,
			EmailData:      `{"Username":"sam","LoginURL":"https://app.example.com/login"}`,
		}
		require.NoError(t, db.Create(&entry).Error)
		return entry.ID
	}

	t.Run("resend revives a terminal entry without spending a retry", func(t *testing.T) {
		db := openTestDB(t)
		notifier := newTestNotifier(t, db, &sendermock.Email{})
		entryID := seedTerminal(t, db)

		entry, err := notifier.Resend(ctx, entryID)
		require.NoError(t, err)
		assert.Equal(t, model.EmailStatusSent, entry.Status)
		assert.NotNil(t, entry.SentAt)
		assert.Equal(t, model.MaxEmailRetries, entry.RetryCount)
	})

	t.Run("resend failure keeps the entry failed with the new error", func(t *testing.T) {
		db := openTestDB(t)
		email := &sendermock.Email{
			SendEmailFn: func(context.Context, string, string, string) (sender.SendResult, error) {
				return sender.SendResult{}, errors.New("still unreachable")
			},
		}
		notifier := newTestNotifier(t, db, email)
		entryID := seedTerminal(t, db)

		entry, err := notifier.Resend(ctx, entryID)
		require.NoError(t, err)
		assert.Equal(t, model.EmailStatusFailed, entry.Status)
		assert.Equal(t, "still unreachable", entry.ErrorMessage)
	})

	t.Run("unknown entry errors", func(t *testing.T) {
		db := openTestDB(t)
		notifier := newTestNotifier(t, db, &sendermock.Email{})

		_, err := notifier.Resend(ctx, uuid.New())
		assert.Error(t, err)
	})
}
