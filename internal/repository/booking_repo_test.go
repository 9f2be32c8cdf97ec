package repository

import (
	"context"
	"testing"
	"time"

	"beautyhub-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedRepoUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	user := model.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		Role:     model.RoleCustomer,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedRepoSalon(t *testing.T, db *gorm.DB, name, city string) *model.Salon {
	t.Helper()
	salon := model.Salon{
		Name:   name,
		Status: model.VendorStatusApproved,
		Email:  "contact@example.com",
		City:   city,
	}
	require.NoError(t, db.Create(&salon).Error)
	return &salon
}

func seedRepoService(t *testing.T, db *gorm.DB, salonID uuid.UUID, name string, active bool) *model.SalonService {
	t.Helper()
	svc := model.SalonService{
		SalonID:         salonID,
		Name:            name,
		Price:           decimal.NewFromInt(25),
		DurationMinutes: 30,
		IsActive:        active,
	}
	require.NoError(t, db.Create(&svc).Error)
	return &svc
}

func seedRepoBooking(t *testing.T, db *gorm.DB, salonID, userID uuid.UUID, status string, startsAt time.Time) *model.Booking {
	t.Helper()
	booking := model.Booking{
		SalonID:  salonID,
		UserID:   userID,
		StartsAt: startsAt,
		EndsAt:   startsAt.Add(time.Hour),
		Status:   status,
	}
	require.NoError(t, db.Create(&booking).Error)
	return &booking
}

func TestConfirmedBetween(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewBookingRepository(db)

	user := seedRepoUser(t, db, "lan")
	salon := seedRepoSalon(t, db, "Lotus Spa", "Hanoi")

	start := time.Now().Add(24 * time.Hour).Truncate(time.Minute)
	end := start.Add(24 * time.Hour)

	atStart := seedRepoBooking(t, db, salon.ID, user.ID, model.BookingStatusConfirmed, start)
	inside := seedRepoBooking(t, db, salon.ID, user.ID, model.BookingStatusConfirmed, start.Add(10*time.Hour))
	seedRepoBooking(t, db, salon.ID, user.ID, model.BookingStatusConfirmed, end)
	seedRepoBooking(t, db, salon.ID, user.ID, model.BookingStatusConfirmed, start.Add(-time.Hour))
	seedRepoBooking(t, db, salon.ID, user.ID, model.BookingStatusPending, start.Add(12*time.Hour))

	got, err := repo.ConfirmedBetween(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, atStart.ID, got[0].ID)
	assert.Equal(t, inside.ID, got[1].ID)
	require.NotNil(t, got[0].User)
	assert.Equal(t, "lan", got[0].User.Username)
	require.NotNil(t, got[0].Salon)
	assert.Equal(t, "Lotus Spa", got[0].Salon.Name)
}

func TestCountBySalon(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewBookingRepository(db)

	user := seedRepoUser(t, db, "lan")
	busy := seedRepoSalon(t, db, "Busy Spa", "Hanoi")
	quiet := seedRepoSalon(t, db, "Quiet Spa", "Hue")
	when := time.Now().Add(24 * time.Hour)

	seedRepoBooking(t, db, busy.ID, user.ID, model.BookingStatusCompleted, when)
	seedRepoBooking(t, db, busy.ID, user.ID, model.BookingStatusCancelled, when.Add(time.Hour))

	count, err := repo.CountBySalon(ctx, busy.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	count, err = repo.CountBySalon(ctx, quiet.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestCartStorage(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewBookingRepository(db)

	user := seedRepoUser(t, db, "lan")
	salonOne := seedRepoSalon(t, db, "Lotus Spa", "Hanoi")
	salonTwo := seedRepoSalon(t, db, "River Barbers", "Hue")
	manicure := seedRepoService(t, db, salonOne.ID, "Gel Manicure", true)
	pedicure := seedRepoService(t, db, salonOne.ID, "Pedicure", true)
	haircut := seedRepoService(t, db, salonTwo.ID, "Haircut", true)

	addItem := func(t *testing.T, salonID, serviceID uuid.UUID, createdAt time.Time) {
		t.Helper()
		require.NoError(t, repo.AddCartItem(ctx, &model.UserCart{
			UserID:    user.ID,
			SalonID:   salonID,
			ServiceID: serviceID,
			Quantity:  1,
			CreatedAt: createdAt,
		}))
	}

	now := time.Now()
	addItem(t, salonOne.ID, manicure.ID, now.Add(-10*time.Minute))
	addItem(t, salonOne.ID, pedicure.ID, now.Add(-5*time.Minute))
	addItem(t, salonTwo.ID, haircut.ID, now)

	t.Run("a service can only be carted once per user", func(t *testing.T) {
		err := repo.AddCartItem(ctx, &model.UserCart{
			UserID: user.ID, SalonID: salonOne.ID, ServiceID: manicure.ID, Quantity: 1,
		})
		assert.Error(t, err)
	})

	t.Run("listing is oldest first with services loaded", func(t *testing.T) {
		items, err := repo.ListCart(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, manicure.ID, items[0].ServiceID)
		require.NotNil(t, items[0].Service)
		assert.Equal(t, "Gel Manicure", items[0].Service.Name)
	})

	t.Run("clearing one salon leaves the other alone", func(t *testing.T) {
		require.NoError(t, repo.ClearCartForSalon(ctx, user.ID, salonOne.ID))
		items, err := repo.ListCart(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, haircut.ID, items[0].ServiceID)
	})

	t.Run("removal targets a single service", func(t *testing.T) {
		require.NoError(t, repo.RemoveCartItem(ctx, user.ID, haircut.ID))
		items, err := repo.ListCart(ctx, user.ID)
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestReminderLogs(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewBookingRepository(db)

	user := seedRepoUser(t, db, "lan")
	salon := seedRepoSalon(t, db, "Lotus Spa", "Hanoi")
	booking := seedRepoBooking(t, db, salon.ID, user.ID, model.BookingStatusConfirmed, time.Now().Add(24*time.Hour))

	earlier := time.Now().Add(-2 * time.Hour)
	later := time.Now().Add(-time.Hour)
	require.NoError(t, repo.CreateReminderLog(ctx, &model.ReminderLog{
		BookingID: booking.ID, SalonID: salon.ID, Channel: model.ReminderChannelSMS,
		Message: "first nudge", Status: "sent", SentAt: earlier,
	}))
	require.NoError(t, repo.CreateReminderLog(ctx, &model.ReminderLog{
		BookingID: booking.ID, SalonID: salon.ID, Channel: model.ReminderChannelWhatsApp,
		Message: "second nudge", Status: "sent", SentAt: later,
	}))

	logs, err := repo.ListReminderLogs(ctx, booking.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "second nudge", logs[0].Message)
	assert.Equal(t, "first nudge", logs[1].Message)
}
