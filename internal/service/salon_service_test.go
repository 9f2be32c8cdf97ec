package service

import (
	"testing"
	"time"

	"beautyhub-backend/internal/model"
	"beautyhub-backend/internal/repository"
	"beautyhub-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type salonFixture struct {
	db  *gorm.DB
	svc SalonService
}

func newSalonFixture(t *testing.T) *salonFixture {
	t.Helper()

	db := openTestDB(t)
	svc := NewSalonService(
		repository.NewSalonRepository(db),
		repository.NewBookingRepository(db),
		repository.NewAuditRepository(db),
		repository.NewTransactionManager(db),
	)
	return &salonFixture{db: db, svc: svc}
}

func TestSalonVisibility(t *testing.T) {
	ctx := testCtx()
	f := newSalonFixture(t)
	owner := seedUser(t, f.db, "owner.mai", model.RoleSalonOwner)
	rm := seedUser(t, f.db, "rm.linh", model.RoleRelationshipManager)
	admin := seedUser(t, f.db, "admin", model.RoleAdmin)
	stranger := seedUser(t, f.db, "passerby", model.RoleCustomer)

	pending := seedSalon(t, f.db, "Pending Spa", model.VendorStatusPending, &owner.ID)
	require.NoError(t, f.db.Model(&model.Salon{}).
		Where("id = ?", pending.ID).Update("submitted_by", rm.ID).Error)
	approved := seedSalon(t, f.db, "Lotus Spa", model.VendorStatusApproved, &owner.ID)

	t.Run("unapproved salons are hidden from the public", func(t *testing.T) {
		_, err := f.svc.Get(ctx, pending.ID.String(), stranger.ID.String(), model.RoleCustomer)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("owner, submitter and admin still see them", func(t *testing.T) {
		for _, actor := range []struct {
			id   string
			role string
		}{
			{owner.ID.String(), model.RoleSalonOwner},
			{rm.ID.String(), model.RoleRelationshipManager},
			{admin.ID.String(), model.RoleAdmin},
		} {
			got, err := f.svc.Get(ctx, pending.ID.String(), actor.id, actor.role)
			require.NoError(t, err)
			assert.Equal(t, pending.ID, got.ID)
		}
	})

	t.Run("approved salons are public", func(t *testing.T) {
		got, err := f.svc.Get(ctx, approved.ID.String(), stranger.ID.String(), model.RoleCustomer)
		require.NoError(t, err)
		assert.Equal(t, "Lotus Spa", got.Name)
	})

	t.Run("the public directory never lists unapproved salons", func(t *testing.T) {
		items, total, err := f.svc.List(ctx, SalonFilter{Status: model.VendorStatusPending, Page: 1, Limit: 10}, model.RoleCustomer)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, items, 1)
		assert.Equal(t, model.VendorStatusApproved, items[0].Status)
	})

	t.Run("admins can filter by any status", func(t *testing.T) {
		_, total, err := f.svc.List(ctx, SalonFilter{Status: model.VendorStatusPending, Page: 1, Limit: 10}, model.RoleAdmin)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})

	t.Run("owners list their own salons", func(t *testing.T) {
		salons, err := f.svc.ListMine(ctx, owner.ID.String())
		require.NoError(t, err)
		assert.Len(t, salons, 2)
	})
}

func TestUpdateSalon(t *testing.T) {
	ctx := testCtx()
	f := newSalonFixture(t)
	owner := seedUser(t, f.db, "owner.mai", model.RoleSalonOwner)
	stranger := seedUser(t, f.db, "passerby", model.RoleCustomer)
	salon := seedSalon(t, f.db, "Lotus Spa", model.VendorStatusApproved, &owner.ID)

	t.Run("the owner can edit and the change is audited", func(t *testing.T) {
		name := "Lotus Spa & Nails"
		city := "Da Nang"
		got, err := f.svc.Update(ctx, salon.ID.String(), owner.ID.String(), model.RoleSalonOwner,
			UpdateSalonRequest{Name: &name, City: &city})
		require.NoError(t, err)
		assert.Equal(t, "Lotus Spa & Nails", got.Name)
		assert.Equal(t, "Da Nang", got.City)
		assert.EqualValues(t, 1, countAuditEntries(t, f.db, model.ActionUpdateSalon))
	})

	t.Run("the name cannot be blanked", func(t *testing.T) {
		empty := ""
		_, err := f.svc.Update(ctx, salon.ID.String(), owner.ID.String(), model.RoleSalonOwner,
			UpdateSalonRequest{Name: &empty})
		assert.EqualError(t, err, "name cannot be empty")
	})

	t.Run("a malformed contact email is refused", func(t *testing.T) {
		bad := "not-an-address"
		_, err := f.svc.Update(ctx, salon.ID.String(), owner.ID.String(), model.RoleSalonOwner,
			UpdateSalonRequest{Email: &bad})
		assert.EqualError(t, err, "invalid email format")
	})

	t.Run("strangers cannot edit", func(t *testing.T) {
		name := "Hijacked"
		_, err := f.svc.Update(ctx, salon.ID.String(), stranger.ID.String(), model.RoleCustomer,
			UpdateSalonRequest{Name: &name})
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})
}

func TestDeleteSalon(t *testing.T) {
	ctx := testCtx()
	f := newSalonFixture(t)
	admin := seedUser(t, f.db, "admin", model.RoleAdmin)
	customer := seedUser(t, f.db, "huong", model.RoleCustomer)

	t.Run("booking history blocks deletion", func(t *testing.T) {
		salon := seedSalon(t, f.db, "Busy Spa", model.VendorStatusApproved, nil)
		seedBooking(t, f.db, salon.ID, customer.ID, nil, model.BookingStatusCompleted, time.Now().Add(-48*time.Hour))

		err := f.svc.Delete(ctx, salon.ID.String(), admin.ID.String())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be deleted")
	})

	t.Run("a salon without bookings is removed and audited", func(t *testing.T) {
		salon := seedSalon(t, f.db, "Empty Spa", model.VendorStatusApproved, nil)

		require.NoError(t, f.svc.Delete(ctx, salon.ID.String(), admin.ID.String()))
		var count int64
		require.NoError(t, f.db.Model(&model.Salon{}).Where("id = ?", salon.ID).Count(&count).Error)
		assert.EqualValues(t, 0, count)
		assert.EqualValues(t, 1, countAuditEntries(t, f.db, model.ActionDeleteSalon))
	})
}

func TestManageServices(t *testing.T) {
	ctx := testCtx()
	f := newSalonFixture(t)
	owner := seedUser(t, f.db, "owner.mai", model.RoleSalonOwner)
	stranger := seedUser(t, f.db, "passerby", model.RoleCustomer)
	salon := seedSalon(t, f.db, "Lotus Spa", model.VendorStatusApproved, &owner.ID)
	other := seedSalon(t, f.db, "Other Spa", model.VendorStatusApproved, nil)

	t.Run("new services default to active with a 30 minute slot", func(t *testing.T) {
		svc, err := f.svc.AddService(ctx, salon.ID.String(), owner.ID.String(), model.RoleSalonOwner,
			ServicePayload{Name: "Gel Manicure", Price: "24.50"})
		require.NoError(t, err)
		assert.True(t, svc.IsActive)
		assert.Equal(t, 30, svc.DurationMinutes)
		assert.Equal(t, "24.5", svc.Price.String())
	})

	t.Run("price must parse and be non-negative", func(t *testing.T) {
		_, err := f.svc.AddService(ctx, salon.ID.String(), owner.ID.String(), model.RoleSalonOwner,
			ServicePayload{Name: "Freebie", Price: "-5"})
		assert.EqualError(t, err, "price must be a non-negative decimal")

		_, err = f.svc.AddService(ctx, salon.ID.String(), owner.ID.String(), model.RoleSalonOwner,
			ServicePayload{Name: "Mystery", Price: "abc"})
		assert.EqualError(t, err, "price must be a non-negative decimal")
	})

	t.Run("strangers cannot add services", func(t *testing.T) {
		_, err := f.svc.AddService(ctx, salon.ID.String(), stranger.ID.String(), model.RoleCustomer,
			ServicePayload{Name: "Sneaky", Price: "10"})
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("services can be deactivated in place", func(t *testing.T) {
		svc := seedSalonService(t, f.db, salon.ID, "Perm", 90, true)
		inactive := false
		updated, err := f.svc.UpdateService(ctx, salon.ID.String(), svc.ID.String(), owner.ID.String(), model.RoleSalonOwner,
			UpdateServicePayload{IsActive: &inactive})
		require.NoError(t, err)
		assert.False(t, updated.IsActive)
	})

	t.Run("another salon's service is out of reach", func(t *testing.T) {
		foreign := seedSalonService(t, f.db, other.ID, "Massage", 60, true)
		_, err := f.svc.UpdateService(ctx, salon.ID.String(), foreign.ID.String(), owner.ID.String(), model.RoleSalonOwner,
			UpdateServicePayload{})
		assert.ErrorIs(t, err, apperror.ErrNotFound)

		err = f.svc.RemoveService(ctx, salon.ID.String(), foreign.ID.String(), owner.ID.String(), model.RoleSalonOwner)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("removal deletes the service", func(t *testing.T) {
		svc := seedSalonService(t, f.db, salon.ID, "Short Lived", 15, true)
		require.NoError(t, f.svc.RemoveService(ctx, salon.ID.String(), svc.ID.String(), owner.ID.String(), model.RoleSalonOwner))

		var count int64
		require.NoError(t, f.db.Model(&model.SalonService{}).Where("id = ?", svc.ID).Count(&count).Error)
		assert.EqualValues(t, 0, count)
	})
}

func TestReviews(t *testing.T) {
	ctx := testCtx()
	f := newSalonFixture(t)
	first := seedUser(t, f.db, "huong", model.RoleCustomer)
	second := seedUser(t, f.db, "trang", model.RoleCustomer)
	salon := seedSalon(t, f.db, "Lotus Spa", model.VendorStatusApproved, nil)

	t.Run("each review refreshes the salon rating", func(t *testing.T) {
		_, err := f.svc.AddReview(ctx, salon.ID.String(), first.ID.String(), ReviewPayload{Rating: 5, Comment: "lovely"})
		require.NoError(t, err)
		_, err = f.svc.AddReview(ctx, salon.ID.String(), second.ID.String(), ReviewPayload{Rating: 4})
		require.NoError(t, err)

		var reread model.Salon
		require.NoError(t, f.db.First(&reread, "id = ?", salon.ID).Error)
		assert.InDelta(t, 4.5, reread.Rating, 0.001)
		assert.Equal(t, 2, reread.RatingCount)
	})

	t.Run("ratings outside 1..5 are refused", func(t *testing.T) {
		_, err := f.svc.AddReview(ctx, salon.ID.String(), first.ID.String(), ReviewPayload{Rating: 0})
		var verr *apperror.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "rating", verr.Field)

		_, err = f.svc.AddReview(ctx, salon.ID.String(), first.ID.String(), ReviewPayload{Rating: 6})
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("unapproved salons cannot be reviewed", func(t *testing.T) {
		hidden := seedSalon(t, f.db, "Pending Spa", model.VendorStatusPending, nil)
		_, err := f.svc.AddReview(ctx, hidden.ID.String(), first.ID.String(), ReviewPayload{Rating: 5})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("reviews page newest first", func(t *testing.T) {
		reviews, total, err := f.svc.ListReviews(ctx, salon.ID.String(), 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, reviews, 2)
	})
}

func TestDiscoveryValidation(t *testing.T) {
	ctx := testCtx()
	f := newSalonFixture(t)

	t.Run("nearby rejects impossible coordinates", func(t *testing.T) {
		_, err := f.svc.Nearby(ctx, NearbyQuery{Latitude: 95, Longitude: 105})
		var verr *apperror.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "latitude", verr.Field)

		_, err = f.svc.Nearby(ctx, NearbyQuery{Latitude: 21, Longitude: 200})
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "longitude", verr.Field)
	})

	t.Run("search needs a query term", func(t *testing.T) {
		_, err := f.svc.Search(ctx, SearchQuery{Query: ""})
		var verr *apperror.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "q", verr.Field)
	})

	t.Run("search bounds the rating floor", func(t *testing.T) {
		_, err := f.svc.Search(ctx, SearchQuery{Query: "spa", MinRating: 7})
		var verr *apperror.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "min_rating", verr.Field)
	})
}
