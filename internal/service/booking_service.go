package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"beautyhub-backend/internal/model"
	"beautyhub-backend/internal/repository"
	ws "beautyhub-backend/internal/websocket"
	"beautyhub-backend/pkg/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// --- DTOs ---

type CreateBookingDTO struct {
	SalonID   string    `json:"salon_id" binding:"required"`
	ServiceID string    `json:"service_id" binding:"required"`
	StartsAt  time.Time `json:"starts_at" binding:"required"`
	EndsAt    time.Time `json:"ends_at"`
	Notes     string    `json:"notes"`
}

type AddCartItemDTO struct {
	ServiceID string `json:"service_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type BookingResponse struct {
	ID          uuid.UUID  `json:"id"`
	SalonID     uuid.UUID  `json:"salon_id"`
	SalonName   string     `json:"salon_name"`
	UserID      uuid.UUID  `json:"user_id"`
	UserName    string     `json:"user_name"`
	ServiceID   *uuid.UUID `json:"service_id"`
	ServiceName string     `json:"service_name"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      time.Time  `json:"ends_at"`
	Status      string     `json:"status"`
	Notes       string     `json:"notes"`
	CreatedAt   time.Time  `json:"created_at"`
}

type CartItemResponse struct {
	ID          uuid.UUID `json:"id"`
	SalonID     uuid.UUID `json:"salon_id"`
	ServiceID   uuid.UUID `json:"service_id"`
	ServiceName string    `json:"service_name"`
	Quantity    int       `json:"quantity"`
}

// --- Interface ---

type BookingService interface {
	Create(ctx context.Context, userID string, req CreateBookingDTO) (BookingResponse, error)
	Get(ctx context.Context, bookingID, actorID, actorRole string) (BookingResponse, error)
	ListMine(ctx context.Context, userID string, page, limit int) ([]BookingResponse, int64, error)
	ListForSalon(ctx context.Context, salonID, actorID, actorRole, status string, page, limit int) ([]BookingResponse, int64, error)
	UpdateStatus(ctx context.Context, bookingID, actorID, actorRole, newStatus string) (BookingResponse, error)
	Cancel(ctx context.Context, bookingID, actorID, actorRole string) (BookingResponse, error)

	AddCartItem(ctx context.Context, userID string, req AddCartItemDTO) (CartItemResponse, error)
	ListCart(ctx context.Context, userID string) ([]CartItemResponse, error)
	RemoveCartItem(ctx context.Context, userID, serviceID string) error
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	salonRepo   repository.SalonRepository
	userRepo    repository.UserRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	notifier    NotificationService
	hub         *ws.Hub
	logger      *zap.Logger
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	salonRepo repository.SalonRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier NotificationService,
	hub *ws.Hub,
	logger *zap.Logger,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		salonRepo:   salonRepo,
		userRepo:    userRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		notifier:    notifier,
		hub:         hub,
		logger:      logger,
	}
}

// Allowed status transitions. Anything absent is terminal.
var bookingTransitions = map[string][]string{
	model.BookingStatusPending:   {model.BookingStatusConfirmed, model.BookingStatusCancelled},
	model.BookingStatusConfirmed: {model.BookingStatusCompleted, model.BookingStatusCancelled, model.BookingStatusNoShow},
}

func canTransitionBooking(from, to string) bool {
	for _, allowed := range bookingTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// --- Implementation ---

// Create books a service at an approved salon. The booking insert and the
// customer's cart cleanup for that salon commit together; the confirmation
// email is best-effort after commit.
func (s *bookingService) Create(ctx context.Context, userID string, req CreateBookingDTO) (BookingResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return BookingResponse{}, fmt.Errorf("invalid user ID")
	}
	salonID, err := uuid.Parse(req.SalonID)
	if err != nil {
		return BookingResponse{}, fmt.Errorf("invalid salon ID")
	}
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return BookingResponse{}, fmt.Errorf("invalid service ID")
	}

	salon, err := s.salonRepo.FindByID(ctx, salonID)
	if err != nil {
		return BookingResponse{}, apperror.ErrNotFound
	}
	if salon.Status != model.VendorStatusApproved {
		return BookingResponse{}, apperror.NewStateConflict("salon", salon.Status)
	}

	svc, err := s.salonRepo.FindServiceByID(ctx, serviceID)
	if err != nil {
		return BookingResponse{}, apperror.ErrNotFound
	}
	if svc.SalonID != salonID {
		return BookingResponse{}, apperror.NewValidation("service_id", "does not belong to this salon")
	}
	if !svc.IsActive {
		return BookingResponse{}, apperror.NewValidation("service_id", "service is not active")
	}

	if req.StartsAt.Before(time.Now()) {
		return BookingResponse{}, apperror.NewValidation("starts_at", "must be in the future")
	}
	endsAt := req.EndsAt
	if endsAt.IsZero() {
		endsAt = req.StartsAt.Add(time.Duration(svc.DurationMinutes) * time.Minute)
	}
	if !endsAt.After(req.StartsAt) {
		return BookingResponse{}, apperror.NewValidation("ends_at", "must be after starts_at")
	}

	booking := model.Booking{
		SalonID:   salonID,
		UserID:    uid,
		ServiceID: &serviceID,
		StartsAt:  req.StartsAt,
		EndsAt:    endsAt,
		Status:    model.BookingStatusPending,
		Notes:     req.Notes,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.bookingRepo.Create(txCtx, &booking); createErr != nil {
			return fmt.Errorf("failed to create booking: %w", createErr)
		}
		if clearErr := s.bookingRepo.ClearCartForSalon(txCtx, uid, salonID); clearErr != nil {
			return fmt.Errorf("failed to clear cart: %w", clearErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"salon_id":   salonID.String(),
			"service_id": serviceID.String(),
			"starts_at":  req.StartsAt.Format(time.RFC3339),
		})
		entry := model.AuditLog{
			UserID:     &uid,
			Action:     model.ActionCreateBooking,
			EntityID:   booking.ID.String(),
			EntityName: salon.Name,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, &entry)
	})
	if err != nil {
		return BookingResponse{}, err
	}

	if customer, lookupErr := s.userRepo.GetByID(ctx, userID); lookupErr == nil {
		s.notifier.Send(ctx, model.EmailTypeBookingConfirmation, customer.Email,
			"Booking received: "+salon.Name,
			map[string]interface{}{
				"CustomerName": customer.Username,
				"SalonName":    salon.Name,
				"ServiceName":  svc.Name,
				"StartsAt":     booking.StartsAt.Format("January 2, 2006 15:04"),
			},
			&RelatedEntity{Type: model.EntityBooking, ID: booking.ID},
		)
	} else {
		s.logger.Warn("booking confirmation skipped, customer not loadable",
			zap.String("booking_id", booking.ID.String()),
			zap.Error(lookupErr),
		)
	}

	s.broadcastEvent("booking.created", map[string]interface{}{
		"booking_id": booking.ID.String(),
		"salon_id":   salonID.String(),
		"starts_at":  booking.StartsAt.Format(time.RFC3339),
	})

	return s.reloadBooking(ctx, booking.ID)
}

func (s *bookingService) Get(ctx context.Context, bookingID, actorID, actorRole string) (BookingResponse, error) {
	bid, err := uuid.Parse(bookingID)
	if err != nil {
		return BookingResponse{}, fmt.Errorf("invalid booking ID")
	}

	booking, err := s.bookingRepo.FindByIDWithRelations(ctx, bid)
	if err != nil {
		return BookingResponse{}, apperror.ErrNotFound
	}
	if !s.canSeeBooking(booking, actorID, actorRole) {
		return BookingResponse{}, apperror.ErrNotFound
	}

	return toBookingResponse(*booking), nil
}

func (s *bookingService) ListMine(ctx context.Context, userID string, page, limit int) ([]BookingResponse, int64, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid user ID")
	}

	bookings, total, err := s.bookingRepo.ListByUser(ctx, uid, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	result := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		result = append(result, toBookingResponse(b))
	}
	return result, total, nil
}

func (s *bookingService) ListForSalon(ctx context.Context, salonID, actorID, actorRole, status string, page, limit int) ([]BookingResponse, int64, error) {
	sid, err := uuid.Parse(salonID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid salon ID")
	}
	salon, err := s.salonRepo.FindByID(ctx, sid)
	if err != nil {
		return nil, 0, apperror.ErrNotFound
	}
	if !canManageSalon(salon, actorID, actorRole) {
		return nil, 0, apperror.ErrForbidden
	}

	bookings, total, err := s.bookingRepo.ListBySalon(ctx, sid, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list salon bookings: %w", err)
	}

	result := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		result = append(result, toBookingResponse(b))
	}
	return result, total, nil
}

// UpdateStatus moves a booking along its lifecycle. Salon-side states
// (confirmed, completed, no_show) need salon management rights; an attempt
// from a state that does not allow the move names that state.
func (s *bookingService) UpdateStatus(ctx context.Context, bookingID, actorID, actorRole, newStatus string) (BookingResponse, error) {
	switch newStatus {
	case model.BookingStatusConfirmed, model.BookingStatusCompleted, model.BookingStatusCancelled, model.BookingStatusNoShow:
	default:
		return BookingResponse{}, apperror.NewValidation("status", "unknown booking status")
	}

	bid, err := uuid.Parse(bookingID)
	if err != nil {
		return BookingResponse{}, fmt.Errorf("invalid booking ID")
	}

	booking, err := s.bookingRepo.FindByIDWithRelations(ctx, bid)
	if err != nil {
		return BookingResponse{}, apperror.ErrNotFound
	}

	if newStatus == model.BookingStatusCancelled {
		if !s.canCancel(booking, actorID, actorRole) {
			return BookingResponse{}, apperror.ErrForbidden
		}
	} else {
		if booking.Salon == nil || !canManageSalon(booking.Salon, actorID, actorRole) {
			return BookingResponse{}, apperror.ErrForbidden
		}
	}

	if !canTransitionBooking(booking.Status, newStatus) {
		return BookingResponse{}, apperror.NewStateConflict("booking", booking.Status)
	}

	actorUUID, _ := uuid.Parse(actorID)
	action := model.ActionUpdateBooking
	if newStatus == model.BookingStatusCancelled {
		action = model.ActionCancelBooking
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.bookingRepo.UpdateStatus(txCtx, bid, newStatus); updateErr != nil {
			return fmt.Errorf("failed to update booking status: %w", updateErr)
		}
		details, _ := json.Marshal(map[string]interface{}{
			"from": booking.Status,
			"to":   newStatus,
		})
		entry := model.AuditLog{
			UserID:   &actorUUID,
			Action:   action,
			EntityID: bid.String(),
			Details:  string(details),
		}
		return s.auditRepo.Log(txCtx, &entry)
	})
	if err != nil {
		return BookingResponse{}, err
	}

	s.broadcastEvent("booking."+newStatus, map[string]interface{}{
		"booking_id": bid.String(),
		"salon_id":   booking.SalonID.String(),
	})

	return s.reloadBooking(ctx, bid)
}

func (s *bookingService) Cancel(ctx context.Context, bookingID, actorID, actorRole string) (BookingResponse, error) {
	return s.UpdateStatus(ctx, bookingID, actorID, actorRole, model.BookingStatusCancelled)
}

func (s *bookingService) AddCartItem(ctx context.Context, userID string, req AddCartItemDTO) (CartItemResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return CartItemResponse{}, fmt.Errorf("invalid user ID")
	}
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return CartItemResponse{}, fmt.Errorf("invalid service ID")
	}

	svc, err := s.salonRepo.FindServiceByID(ctx, serviceID)
	if err != nil {
		return CartItemResponse{}, apperror.ErrNotFound
	}
	if !svc.IsActive {
		return CartItemResponse{}, apperror.NewValidation("service_id", "service is not active")
	}
	salon, err := s.salonRepo.FindByID(ctx, svc.SalonID)
	if err != nil {
		return CartItemResponse{}, apperror.ErrNotFound
	}
	if salon.Status != model.VendorStatusApproved {
		return CartItemResponse{}, apperror.ErrNotFound
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	item := model.UserCart{
		UserID:    uid,
		SalonID:   svc.SalonID,
		ServiceID: serviceID,
		Quantity:  quantity,
	}
	if err := s.bookingRepo.AddCartItem(ctx, &item); err != nil {
		return CartItemResponse{}, fmt.Errorf("failed to add cart item: %w", err)
	}

	return CartItemResponse{
		ID:          item.ID,
		SalonID:     item.SalonID,
		ServiceID:   item.ServiceID,
		ServiceName: svc.Name,
		Quantity:    item.Quantity,
	}, nil
}

func (s *bookingService) ListCart(ctx context.Context, userID string) ([]CartItemResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID")
	}

	items, err := s.bookingRepo.ListCart(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}

	result := make([]CartItemResponse, 0, len(items))
	for _, item := range items {
		resp := CartItemResponse{
			ID:        item.ID,
			SalonID:   item.SalonID,
			ServiceID: item.ServiceID,
			Quantity:  item.Quantity,
		}
		if item.Service != nil {
			resp.ServiceName = item.Service.Name
		}
		result = append(result, resp)
	}
	return result, nil
}

func (s *bookingService) RemoveCartItem(ctx context.Context, userID, serviceID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID")
	}
	svcID, err := uuid.Parse(serviceID)
	if err != nil {
		return fmt.Errorf("invalid service ID")
	}
	return s.bookingRepo.RemoveCartItem(ctx, uid, svcID)
}

// --- helpers ---

func (s *bookingService) canSeeBooking(booking *model.Booking, actorID, actorRole string) bool {
	if actorRole == model.RoleAdmin {
		return true
	}
	if booking.UserID.String() == actorID {
		return true
	}
	return booking.Salon != nil && booking.Salon.OwnerID != nil && booking.Salon.OwnerID.String() == actorID
}

func (s *bookingService) canCancel(booking *model.Booking, actorID, actorRole string) bool {
	if booking.UserID.String() == actorID {
		return true
	}
	if actorRole == model.RoleAdmin {
		return true
	}
	return booking.Salon != nil && booking.Salon.OwnerID != nil && booking.Salon.OwnerID.String() == actorID
}

func (s *bookingService) broadcastEvent(event string, payload map[string]interface{}) {
	if s.hub == nil {
		return
	}
	msg, err := json.Marshal(map[string]interface{}{
		"event": event,
		"data":  payload,
	})
	if err != nil {
		return
	}
	s.hub.Broadcast <- msg
}

func (s *bookingService) reloadBooking(ctx context.Context, id uuid.UUID) (BookingResponse, error) {
	booking, err := s.bookingRepo.FindByIDWithRelations(ctx, id)
	if err != nil {
		return BookingResponse{}, fmt.Errorf("failed to reload booking: %w", err)
	}
	return toBookingResponse(*booking), nil
}

func toBookingResponse(b model.Booking) BookingResponse {
	resp := BookingResponse{
		ID:        b.ID,
		SalonID:   b.SalonID,
		UserID:    b.UserID,
		ServiceID: b.ServiceID,
		StartsAt:  b.StartsAt,
		EndsAt:    b.EndsAt,
		Status:    b.Status,
		Notes:     b.Notes,
		CreatedAt: b.CreatedAt,
	}
	if b.Salon != nil {
		resp.SalonName = b.Salon.Name
	}
	if b.User != nil {
		resp.UserName = b.User.Username
	}
	if b.Service != nil {
		resp.ServiceName = b.Service.Name
	}
	return resp
}
