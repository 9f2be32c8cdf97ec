package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"beautyhub-backend/internal/model"
	"beautyhub-backend/internal/repository"
	"beautyhub-backend/internal/sender"
	"beautyhub-backend/internal/testutil/sendermock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// tomorrowWindowStart mirrors the reminder sweep's day boundary.
func tomorrowWindowStart() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
}

func seedPhone(t *testing.T, db *gorm.DB, user *model.User, phone string) {
	t.Helper()
	require.NoError(t, db.Model(user).Update("phone", phone).Error)
	user.Phone = phone
}

func TestSendDailyReminders(t *testing.T) {
	ctx := testCtx()

	t.Run("routes by phone format and skips unreachable customers", func(t *testing.T) {
		db := openTestDB(t)
		type call struct{ channel, to, body string }
		var calls []call
		messenger := &sendermock.Messenger{
			SendSMSFn: func(_ context.Context, to, body string) (sender.SendResult, error) {
				calls = append(calls, call{"sms", to, body})
				return sender.SendResult{MessageID: "sms-1", SentAt: time.Now()}, nil
			},
			SendWhatsAppFn: func(_ context.Context, to, body string) (sender.SendResult, error) {
				calls = append(calls, call{"whatsapp", to, body})
				return sender.SendResult{MessageID: "wa-1", SentAt: time.Now()}, nil
			},
		}
		svc := NewReminderService(repository.NewBookingRepository(db), messenger, zap.NewNop())

		salon := seedSalon(t, db, "Lotus Spa", model.VendorStatusApproved, nil)
		manicure := seedSalonService(t, db, salon.ID, "Gel Manicure", 45, true)
		lan := seedUser(t, db, "lan", model.RoleCustomer)
		seedPhone(t, db, lan, "+15551234567")
		minh := seedUser(t, db, "minh", model.RoleCustomer)
		seedPhone(t, db, minh, "0812345678")
		ghost := seedUser(t, db, "ghost", model.RoleCustomer)

		start := tomorrowWindowStart()
		seedBooking(t, db, salon.ID, lan.ID, &manicure.ID, model.BookingStatusConfirmed, start.Add(10*time.Hour))
		seedBooking(t, db, salon.ID, minh.ID, &manicure.ID, model.BookingStatusConfirmed, start.Add(14*time.Hour))
		seedBooking(t, db, salon.ID, ghost.ID, &manicure.ID, model.BookingStatusConfirmed, start.Add(15*time.Hour))
		// outside the sweep: tomorrow but unconfirmed, and confirmed but today
		seedBooking(t, db, salon.ID, lan.ID, &manicure.ID, model.BookingStatusPending, start.Add(16*time.Hour))
		seedBooking(t, db, salon.ID, minh.ID, &manicure.ID, model.BookingStatusConfirmed, start.Add(-time.Hour))

		svc.SendDailyReminders(ctx)

		require.Len(t, calls, 2)
		byChannel := map[string]call{}
		for _, c := range calls {
			byChannel[c.channel] = c
		}
		assert.Equal(t, "+15551234567", byChannel["whatsapp"].to)
		assert.Equal(t, "Hi lan, this is a reminder of your appointment at Lotus Spa (Gel Manicure) tomorrow at 10:00.", byChannel["whatsapp"].body)
		assert.Equal(t, "0812345678", byChannel["sms"].to)
		assert.Contains(t, byChannel["sms"].body, "tomorrow at 14:00")

		var logs []model.ReminderLog
		require.NoError(t, db.Find(&logs).Error)
		require.Len(t, logs, 2)
		for _, entry := range logs {
			assert.Equal(t, "sent", entry.Status)
			assert.Equal(t, salon.ID, entry.SalonID)
		}
	})

	t.Run("a failing send is logged and does not stop the batch", func(t *testing.T) {
		db := openTestDB(t)
		messenger := &sendermock.Messenger{
			SendSMSFn: func(context.Context, string, string) (sender.SendResult, error) {
				return sender.SendResult{}, errors.New("carrier rejected")
			},
		}
		svc := NewReminderService(repository.NewBookingRepository(db), messenger, zap.NewNop())

		salon := seedSalon(t, db, "Lotus Spa", model.VendorStatusApproved, nil)
		smsUser := seedUser(t, db, "minh", model.RoleCustomer)
		seedPhone(t, db, smsUser, "0812345678")
		waUser := seedUser(t, db, "lan", model.RoleCustomer)
		seedPhone(t, db, waUser, "+15551234567")

		start := tomorrowWindowStart()
		smsBooking := seedBooking(t, db, salon.ID, smsUser.ID, nil, model.BookingStatusConfirmed, start.Add(9*time.Hour))
		seedBooking(t, db, salon.ID, waUser.ID, nil, model.BookingStatusConfirmed, start.Add(11*time.Hour))

		svc.SendDailyReminders(ctx)

		var failedLog model.ReminderLog
		require.NoError(t, db.First(&failedLog, "booking_id = ?", smsBooking.ID).Error)
		assert.Equal(t, "failed", failedLog.Status)
		assert.Equal(t, "carrier rejected", failedLog.ErrorMessage)
		assert.Equal(t, model.ReminderChannelSMS, failedLog.Channel)
		assert.Contains(t, failedLog.Message, "Lotus Spa")

		var sentCount int64
		require.NoError(t, db.Model(&model.ReminderLog{}).Where("status = ?", "sent").Count(&sentCount).Error)
		assert.EqualValues(t, 1, sentCount)
	})

	t.Run("no messenger configured means a quiet no-op", func(t *testing.T) {
		db := openTestDB(t)
		svc := NewReminderService(repository.NewBookingRepository(db), nil, zap.NewNop())

		salon := seedSalon(t, db, "Lotus Spa", model.VendorStatusApproved, nil)
		customer := seedUser(t, db, "lan", model.RoleCustomer)
		seedPhone(t, db, customer, "+15551234567")
		seedBooking(t, db, salon.ID, customer.ID, nil, model.BookingStatusConfirmed, tomorrowWindowStart().Add(10*time.Hour))

		svc.SendDailyReminders(ctx)

		var count int64
		require.NoError(t, db.Model(&model.ReminderLog{}).Count(&count).Error)
		assert.EqualValues(t, 0, count)
	})
}

func TestListRemindersForBooking(t *testing.T) {
	ctx := testCtx()
	db := openTestDB(t)
	svc := NewReminderService(repository.NewBookingRepository(db), &sendermock.Messenger{}, zap.NewNop())

	salon := seedSalon(t, db, "Lotus Spa", model.VendorStatusApproved, nil)
	customer := seedUser(t, db, "lan", model.RoleCustomer)
	seedPhone(t, db, customer, "+15551234567")
	booking := seedBooking(t, db, salon.ID, customer.ID, nil, model.BookingStatusConfirmed, tomorrowWindowStart().Add(10*time.Hour))

	svc.SendDailyReminders(ctx)

	logs, err := svc.ListForBooking(ctx, booking.ID.String())
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, booking.ID, logs[0].BookingID)
	assert.Equal(t, model.ReminderChannelWhatsApp, logs[0].Channel)
	assert.Equal(t, "sent", logs[0].Status)

	_, err = svc.ListForBooking(ctx, "not-a-uuid")
	assert.Error(t, err)
}
