package service

import (
	"testing"
	"time"

	"beautyhub-backend/internal/model"
	"beautyhub-backend/internal/repository"
	"beautyhub-backend/internal/testutil/sendermock"
	"beautyhub-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type bookingFixture struct {
	db    *gorm.DB
	svc   BookingService
	email *sendermock.Email
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	db := openTestDB(t)
	email := &sendermock.Email{}
	svc := NewBookingService(
		repository.NewBookingRepository(db),
		repository.NewSalonRepository(db),
		repository.NewUserRepository(db),
		repository.NewAuditRepository(db),
		repository.NewTransactionManager(db),
		newTestNotifier(t, db, email),
		nil,
		zap.NewNop(),
	)
	return &bookingFixture{db: db, svc: svc, email: email}
}

func TestCreateBooking(t *testing.T) {
	ctx := testCtx()
	f := newBookingFixture(t)
	owner := seedUser(t, f.db, "owner.mai", model.RoleSalonOwner)
	customer := seedUser(t, f.db, "huong", model.RoleCustomer)
	salon := seedSalon(t, f.db, "Lotus Spa", model.VendorStatusApproved, &owner.ID)
	manicure := seedSalonService(t, f.db, salon.ID, "Gel Manicure", 45, true)
	tomorrow := time.Now().Add(24 * time.Hour)

	t.Run("booking defaults the end from the service duration", func(t *testing.T) {
		resp, err := f.svc.Create(ctx, customer.ID.String(), CreateBookingDTO{
			SalonID:   salon.ID.String(),
			ServiceID: manicure.ID.String(),
			StartsAt:  tomorrow,
			Notes:     "first visit",
		})
		require.NoError(t, err)
		assert.Equal(t, model.BookingStatusPending, resp.Status)
		assert.Equal(t, 45*time.Minute, resp.EndsAt.Sub(resp.StartsAt))
		assert.Equal(t, "Lotus Spa", resp.SalonName)
		assert.Equal(t, "Gel Manicure", resp.ServiceName)
		assert.EqualValues(t, 1, countAuditEntries(t, f.db, model.ActionCreateBooking))

		logs := emailLogsFor(t, f.db, customer.Email)
		require.Len(t, logs, 1)
		assert.Equal(t, model.EmailTypeBookingConfirmation, logs[0].EmailType)
		assert.Equal(t, "Booking received: Lotus Spa", logs[0].Subject)
	})

	t.Run("booking clears the cart for that salon only", func(t *testing.T) {
		other := seedSalon(t, f.db, "River Barbers", model.VendorStatusApproved, nil)
		haircut := seedSalonService(t, f.db, other.ID, "Haircut", 30, true)

		_, err := f.svc.AddCartItem(ctx, customer.ID.String(), AddCartItemDTO{ServiceID: manicure.ID.String()})
		require.NoError(t, err)
		_, err = f.svc.AddCartItem(ctx, customer.ID.String(), AddCartItemDTO{ServiceID: haircut.ID.String()})
		require.NoError(t, err)

		_, err = f.svc.Create(ctx, customer.ID.String(), CreateBookingDTO{
			SalonID:   salon.ID.String(),
			ServiceID: manicure.ID.String(),
			StartsAt:  tomorrow.Add(2 * time.Hour),
		})
		require.NoError(t, err)

		cart, err := f.svc.ListCart(ctx, customer.ID.String())
		require.NoError(t, err)
		require.Len(t, cart, 1)
		assert.Equal(t, other.ID, cart[0].SalonID)
	})

	t.Run("unapproved salons take no bookings", func(t *testing.T) {
		hidden := seedSalon(t, f.db, "Pending Spa", model.VendorStatusPending, nil)
		svc := seedSalonService(t, f.db, hidden.ID, "Facial", 60, true)

		_, err := f.svc.Create(ctx, customer.ID.String(), CreateBookingDTO{
			SalonID:   hidden.ID.String(),
			ServiceID: svc.ID.String(),
			StartsAt:  tomorrow,
		})
		var conflict *apperror.StateConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, model.VendorStatusPending, conflict.CurrentState)
	})

	t.Run("service must belong to the booked salon", func(t *testing.T) {
		other := seedSalon(t, f.db, "Other Spa", model.VendorStatusApproved, nil)
		foreign := seedSalonService(t, f.db, other.ID, "Massage", 60, true)

		_, err := f.svc.Create(ctx, customer.ID.String(), CreateBookingDTO{
			SalonID:   salon.ID.String(),
			ServiceID: foreign.ID.String(),
			StartsAt:  tomorrow,
		})
		var verr *apperror.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "service_id", verr.Field)
	})

	t.Run("inactive services cannot be booked", func(t *testing.T) {
		retired := seedSalonService(t, f.db, salon.ID, "Retired Perm", 60, false)

		_, err := f.svc.Create(ctx, customer.ID.String(), CreateBookingDTO{
			SalonID:   salon.ID.String(),
			ServiceID: retired.ID.String(),
			StartsAt:  tomorrow,
		})
		var verr *apperror.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "service_id", verr.Field)
	})

	t.Run("start must be in the future", func(t *testing.T) {
		_, err := f.svc.Create(ctx, customer.ID.String(), CreateBookingDTO{
			SalonID:   salon.ID.String(),
			ServiceID: manicure.ID.String(),
			StartsAt:  time.Now().Add(-time.Hour),
		})
		var verr *apperror.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "starts_at", verr.Field)
	})

	t.Run("explicit end must follow the start", func(t *testing.T) {
		_, err := f.svc.Create(ctx, customer.ID.String(), CreateBookingDTO{
			SalonID:   salon.ID.String(),
			ServiceID: manicure.ID.String(),
			StartsAt:  tomorrow,
			EndsAt:    tomorrow.Add(-30 * time.Minute),
		})
		var verr *apperror.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "ends_at", verr.Field)
	})

	t.Run("unknown salon", func(t *testing.T) {
		_, err := f.svc.Create(ctx, customer.ID.String(), CreateBookingDTO{
			SalonID:   uuid.NewString(),
			ServiceID: manicure.ID.String(),
			StartsAt:  tomorrow,
		})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestBookingStatusFlow(t *testing.T) {
	ctx := testCtx()
	f := newBookingFixture(t)
	owner := seedUser(t, f.db, "owner.mai", model.RoleSalonOwner)
	customer := seedUser(t, f.db, "huong", model.RoleCustomer)
	stranger := seedUser(t, f.db, "passerby", model.RoleCustomer)
	salon := seedSalon(t, f.db, "Lotus Spa", model.VendorStatusApproved, &owner.ID)
	manicure := seedSalonService(t, f.db, salon.ID, "Gel Manicure", 45, true)
	tomorrow := time.Now().Add(24 * time.Hour)

	newPending := func(t *testing.T) *model.Booking {
		t.Helper()
		return seedBooking(t, f.db, salon.ID, customer.ID, &manicure.ID, model.BookingStatusPending, tomorrow)
	}

	t.Run("the salon owner confirms a pending booking", func(t *testing.T) {
		booking := newPending(t)
		resp, err := f.svc.UpdateStatus(ctx, booking.ID.String(), owner.ID.String(), model.RoleSalonOwner, model.BookingStatusConfirmed)
		require.NoError(t, err)
		assert.Equal(t, model.BookingStatusConfirmed, resp.Status)
		assert.EqualValues(t, 1, countAuditEntries(t, f.db, model.ActionUpdateBooking))
	})

	t.Run("customers cannot confirm", func(t *testing.T) {
		booking := newPending(t)
		_, err := f.svc.UpdateStatus(ctx, booking.ID.String(), customer.ID.String(), model.RoleCustomer, model.BookingStatusConfirmed)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("pending cannot jump straight to completed", func(t *testing.T) {
		booking := newPending(t)
		_, err := f.svc.UpdateStatus(ctx, booking.ID.String(), owner.ID.String(), model.RoleSalonOwner, model.BookingStatusCompleted)
		var conflict *apperror.StateConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, model.BookingStatusPending, conflict.CurrentState)
	})

	t.Run("unknown target status", func(t *testing.T) {
		booking := newPending(t)
		_, err := f.svc.UpdateStatus(ctx, booking.ID.String(), owner.ID.String(), model.RoleSalonOwner, "paused")
		var verr *apperror.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "status", verr.Field)
	})

	t.Run("the customer cancels their own booking", func(t *testing.T) {
		booking := newPending(t)
		resp, err := f.svc.Cancel(ctx, booking.ID.String(), customer.ID.String(), model.RoleCustomer)
		require.NoError(t, err)
		assert.Equal(t, model.BookingStatusCancelled, resp.Status)
		assert.EqualValues(t, 1, countAuditEntries(t, f.db, model.ActionCancelBooking))
	})

	t.Run("strangers cannot cancel", func(t *testing.T) {
		booking := newPending(t)
		_, err := f.svc.Cancel(ctx, booking.ID.String(), stranger.ID.String(), model.RoleCustomer)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("cancelled is terminal", func(t *testing.T) {
		booking := seedBooking(t, f.db, salon.ID, customer.ID, &manicure.ID, model.BookingStatusCancelled, tomorrow)
		_, err := f.svc.UpdateStatus(ctx, booking.ID.String(), owner.ID.String(), model.RoleSalonOwner, model.BookingStatusConfirmed)
		var conflict *apperror.StateConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, model.BookingStatusCancelled, conflict.CurrentState)
	})

	t.Run("confirmed bookings can be marked no-show", func(t *testing.T) {
		booking := seedBooking(t, f.db, salon.ID, customer.ID, &manicure.ID, model.BookingStatusConfirmed, tomorrow)
		resp, err := f.svc.UpdateStatus(ctx, booking.ID.String(), owner.ID.String(), model.RoleSalonOwner, model.BookingStatusNoShow)
		require.NoError(t, err)
		assert.Equal(t, model.BookingStatusNoShow, resp.Status)
	})

	t.Run("confirmed bookings can be completed", func(t *testing.T) {
		booking := seedBooking(t, f.db, salon.ID, customer.ID, &manicure.ID, model.BookingStatusConfirmed, tomorrow)
		resp, err := f.svc.UpdateStatus(ctx, booking.ID.String(), owner.ID.String(), model.RoleSalonOwner, model.BookingStatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, model.BookingStatusCompleted, resp.Status)
	})
}

func TestBookingVisibility(t *testing.T) {
	ctx := testCtx()
	f := newBookingFixture(t)
	owner := seedUser(t, f.db, "owner.mai", model.RoleSalonOwner)
	customer := seedUser(t, f.db, "huong", model.RoleCustomer)
	stranger := seedUser(t, f.db, "passerby", model.RoleCustomer)
	admin := seedUser(t, f.db, "admin", model.RoleAdmin)
	salon := seedSalon(t, f.db, "Lotus Spa", model.VendorStatusApproved, &owner.ID)
	manicure := seedSalonService(t, f.db, salon.ID, "Gel Manicure", 45, true)
	booking := seedBooking(t, f.db, salon.ID, customer.ID, &manicure.ID, model.BookingStatusPending, time.Now().Add(24*time.Hour))

	t.Run("customer, owner and admin can see it", func(t *testing.T) {
		for _, actor := range []struct {
			id   uuid.UUID
			role string
		}{
			{customer.ID, model.RoleCustomer},
			{owner.ID, model.RoleSalonOwner},
			{admin.ID, model.RoleAdmin},
		} {
			got, err := f.svc.Get(ctx, booking.ID.String(), actor.id.String(), actor.role)
			require.NoError(t, err)
			assert.Equal(t, booking.ID, got.ID)
		}
	})

	t.Run("anyone else gets not found", func(t *testing.T) {
		_, err := f.svc.Get(ctx, booking.ID.String(), stranger.ID.String(), model.RoleCustomer)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("the salon schedule is owner-only", func(t *testing.T) {
		_, _, err := f.svc.ListForSalon(ctx, salon.ID.String(), stranger.ID.String(), model.RoleCustomer, "", 1, 10)
		assert.ErrorIs(t, err, apperror.ErrForbidden)

		_, total, err := f.svc.ListForSalon(ctx, salon.ID.String(), owner.ID.String(), model.RoleSalonOwner, "", 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})

	t.Run("customers list their own bookings", func(t *testing.T) {
		_, total, err := f.svc.ListMine(ctx, customer.ID.String(), 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)

		_, total, err = f.svc.ListMine(ctx, stranger.ID.String(), 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 0, total)
	})
}

func TestCart(t *testing.T) {
	ctx := testCtx()
	f := newBookingFixture(t)
	customer := seedUser(t, f.db, "huong", model.RoleCustomer)
	salon := seedSalon(t, f.db, "Lotus Spa", model.VendorStatusApproved, nil)
	manicure := seedSalonService(t, f.db, salon.ID, "Gel Manicure", 45, true)

	t.Run("quantity defaults to one", func(t *testing.T) {
		item, err := f.svc.AddCartItem(ctx, customer.ID.String(), AddCartItemDTO{ServiceID: manicure.ID.String()})
		require.NoError(t, err)
		assert.Equal(t, 1, item.Quantity)
		assert.Equal(t, "Gel Manicure", item.ServiceName)
	})

	t.Run("cart lists the service name", func(t *testing.T) {
		cart, err := f.svc.ListCart(ctx, customer.ID.String())
		require.NoError(t, err)
		require.Len(t, cart, 1)
		assert.Equal(t, "Gel Manicure", cart[0].ServiceName)
	})

	t.Run("inactive services cannot be carted", func(t *testing.T) {
		retired := seedSalonService(t, f.db, salon.ID, "Retired Perm", 60, false)
		_, err := f.svc.AddCartItem(ctx, customer.ID.String(), AddCartItemDTO{ServiceID: retired.ID.String()})
		var verr *apperror.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "service_id", verr.Field)
	})

	t.Run("services of hidden salons cannot be carted", func(t *testing.T) {
		hidden := seedSalon(t, f.db, "Pending Spa", model.VendorStatusPending, nil)
		facial := seedSalonService(t, f.db, hidden.ID, "Facial", 60, true)
		_, err := f.svc.AddCartItem(ctx, customer.ID.String(), AddCartItemDTO{ServiceID: facial.ID.String()})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("removal empties the cart", func(t *testing.T) {
		require.NoError(t, f.svc.RemoveCartItem(ctx, customer.ID.String(), manicure.ID.String()))
		cart, err := f.svc.ListCart(ctx, customer.ID.String())
		require.NoError(t, err)
		assert.Empty(t, cart)
	})
}
