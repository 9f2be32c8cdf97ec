package repository

import (
	"context"
	"testing"
	"time"

	"beautyhub-backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedToken(t *testing.T, db *gorm.DB, salonID uuid.UUID, token string, expiresAt time.Time, usedAt *time.Time) *model.RegistrationToken {
	t.Helper()
	rt := model.RegistrationToken{
		SalonID:   salonID,
		Email:     "owner@example.com",
		Token:     token,
		ExpiresAt: expiresAt,
		UsedAt:    usedAt,
	}
	require.NoError(t, db.Create(&rt).Error)
	return &rt
}

func TestRegistrationTokenFindByToken(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRegistrationTokenRepository(db)

	salon := seedRepoSalon(t, db, "Lotus Spa", "Hanoi")
	seedToken(t, db, salon.ID, "tok-alive", time.Now().Add(24*time.Hour), nil)

	t.Run("loads the salon alongside the token", func(t *testing.T) {
		found, err := repo.FindByToken(ctx, "tok-alive")
		require.NoError(t, err)
		assert.Equal(t, salon.ID, found.SalonID)
		require.NotNil(t, found.Salon)
		assert.Equal(t, "Lotus Spa", found.Salon.Name)
		assert.Nil(t, found.UsedAt)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := repo.FindByToken(ctx, "tok-never-issued")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestRegistrationTokenMarkUsed(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRegistrationTokenRepository(db)

	salon := seedRepoSalon(t, db, "Lotus Spa", "Hanoi")
	rt := seedToken(t, db, salon.ID, "tok-redeem", time.Now().Add(24*time.Hour), nil)

	usedAt := time.Now().Truncate(time.Second)
	require.NoError(t, repo.MarkUsed(ctx, rt.ID, usedAt))

	found, err := repo.FindByToken(ctx, "tok-redeem")
	require.NoError(t, err)
	require.NotNil(t, found.UsedAt)
	assert.WithinDuration(t, usedAt, *found.UsedAt, time.Second)
}

func TestRegistrationTokenDeleteExpired(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRegistrationTokenRepository(db)

	salon := seedRepoSalon(t, db, "Lotus Spa", "Hanoi")
	now := time.Now()
	redeemedAt := now.Add(-48 * time.Hour)

	seedToken(t, db, salon.ID, "tok-stale", now.Add(-time.Hour), nil)
	seedToken(t, db, salon.ID, "tok-redeemed", now.Add(-time.Hour), &redeemedAt)
	seedToken(t, db, salon.ID, "tok-fresh", now.Add(time.Hour), nil)

	deleted, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	var remaining []model.RegistrationToken
	require.NoError(t, db.Order("token ASC").Find(&remaining).Error)
	require.Len(t, remaining, 2)
	assert.Equal(t, "tok-fresh", remaining[0].Token)
	assert.Equal(t, "tok-redeemed", remaining[1].Token)
}
