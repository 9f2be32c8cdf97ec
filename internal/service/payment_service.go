package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"beautyhub-backend/internal/model"
	"beautyhub-backend/internal/repository"
	"beautyhub-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// --- DTOs ---

type RecordPaymentDTO struct {
	BookingID      string `json:"booking_id" binding:"required"`
	Amount         string `json:"amount" binding:"required"`
	Currency       string `json:"currency"`
	Method         string `json:"method" binding:"required,oneof=cash card online"`
	TransactionRef string `json:"transaction_ref"`
	// Completed marks the payment settled on the spot (cash at the desk).
	Completed bool `json:"completed"`
}

type PaymentResponse struct {
	ID             uuid.UUID       `json:"id"`
	BookingID      uuid.UUID       `json:"booking_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Status         string          `json:"status"`
	Method         string          `json:"method"`
	TransactionRef string          `json:"transaction_ref"`
	PaidAt         *time.Time      `json:"paid_at"`
	CreatedAt      time.Time       `json:"created_at"`
}

// --- Interface ---

type PaymentService interface {
	Record(ctx context.Context, actorID, actorRole string, req RecordPaymentDTO) (PaymentResponse, error)
	Complete(ctx context.Context, paymentID, actorID, actorRole string) (PaymentResponse, error)
	Fail(ctx context.Context, paymentID, actorID, actorRole string) (PaymentResponse, error)
	Refund(ctx context.Context, paymentID, actorID, actorRole string) (PaymentResponse, error)
	Get(ctx context.Context, paymentID, actorID, actorRole string) (PaymentResponse, error)
	ListByBooking(ctx context.Context, bookingID, actorID, actorRole string) ([]PaymentResponse, error)
	ListBySalon(ctx context.Context, salonID, actorID, actorRole, status string, page, limit int) ([]PaymentResponse, int64, error)
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	bookingRepo repository.BookingRepository
	salonRepo   repository.SalonRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	notifier    NotificationService
	logger      *zap.Logger
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	bookingRepo repository.BookingRepository,
	salonRepo repository.SalonRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier NotificationService,
	logger *zap.Logger,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		bookingRepo: bookingRepo,
		salonRepo:   salonRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		notifier:    notifier,
		logger:      logger,
	}
}

// --- Implementation ---

// Record registers money against a booking. Only the salon side does this;
// marking it completed on the spot stamps paid_at and sends the receipt.
func (s *paymentService) Record(ctx context.Context, actorID, actorRole string, req RecordPaymentDTO) (PaymentResponse, error) {
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return PaymentResponse{}, fmt.Errorf("invalid booking ID")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return PaymentResponse{}, apperror.NewValidation("amount", "must be a positive decimal")
	}

	booking, err := s.bookingRepo.FindByIDWithRelations(ctx, bookingID)
	if err != nil {
		return PaymentResponse{}, apperror.ErrNotFound
	}
	if booking.Salon == nil || !canManageSalon(booking.Salon, actorID, actorRole) {
		return PaymentResponse{}, apperror.ErrForbidden
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	payment := model.Payment{
		BookingID:      bookingID,
		Amount:         amount,
		Currency:       currency,
		Status:         model.PaymentStatusPending,
		Method:         req.Method,
		TransactionRef: req.TransactionRef,
	}
	if req.Completed {
		now := time.Now()
		payment.Status = model.PaymentStatusCompleted
		payment.PaidAt = &now
	}

	actorUUID, _ := uuid.Parse(actorID)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.paymentRepo.Create(txCtx, &payment); createErr != nil {
			return fmt.Errorf("failed to record payment: %w", createErr)
		}
		details, _ := json.Marshal(map[string]interface{}{
			"booking_id": bookingID.String(),
			"amount":     amount.String(),
			"method":     req.Method,
			"status":     payment.Status,
		})
		entry := model.AuditLog{
			UserID:   &actorUUID,
			Action:   model.ActionRecordPayment,
			EntityID: payment.ID.String(),
			Details:  string(details),
		}
		return s.auditRepo.Log(txCtx, &entry)
	})
	if err != nil {
		return PaymentResponse{}, err
	}

	if payment.Status == model.PaymentStatusCompleted {
		s.sendReceipt(ctx, &payment, booking)
	}

	return toPaymentResponse(payment), nil
}

// Complete settles a pending payment, stamps paid_at, and sends the receipt.
func (s *paymentService) Complete(ctx context.Context, paymentID, actorID, actorRole string) (PaymentResponse, error) {
	return s.transition(ctx, paymentID, actorID, actorRole, model.PaymentStatusPending, model.PaymentStatusCompleted, model.ActionRecordPayment, true)
}

func (s *paymentService) Fail(ctx context.Context, paymentID, actorID, actorRole string) (PaymentResponse, error) {
	return s.transition(ctx, paymentID, actorID, actorRole, model.PaymentStatusPending, model.PaymentStatusFailed, model.ActionRecordPayment, false)
}

func (s *paymentService) Refund(ctx context.Context, paymentID, actorID, actorRole string) (PaymentResponse, error) {
	return s.transition(ctx, paymentID, actorID, actorRole, model.PaymentStatusCompleted, model.PaymentStatusRefunded, model.ActionRefundPayment, false)
}

func (s *paymentService) transition(ctx context.Context, paymentID, actorID, actorRole, fromStatus, toStatus, auditAction string, settle bool) (PaymentResponse, error) {
	pid, err := uuid.Parse(paymentID)
	if err != nil {
		return PaymentResponse{}, fmt.Errorf("invalid payment ID")
	}

	payment, err := s.paymentRepo.FindByIDWithBooking(ctx, pid)
	if err != nil {
		return PaymentResponse{}, apperror.ErrNotFound
	}
	if payment.Booking == nil || payment.Booking.Salon == nil || !canManageSalon(payment.Booking.Salon, actorID, actorRole) {
		return PaymentResponse{}, apperror.ErrForbidden
	}
	if payment.Status != fromStatus {
		return PaymentResponse{}, apperror.NewStateConflict("payment", payment.Status)
	}

	payment.Status = toStatus
	if settle {
		now := time.Now()
		payment.PaidAt = &now
	}

	actorUUID, _ := uuid.Parse(actorID)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if saveErr := s.paymentRepo.Update(txCtx, payment); saveErr != nil {
			return fmt.Errorf("failed to update payment: %w", saveErr)
		}
		details, _ := json.Marshal(map[string]interface{}{
			"from": fromStatus,
			"to":   toStatus,
		})
		entry := model.AuditLog{
			UserID:   &actorUUID,
			Action:   auditAction,
			EntityID: payment.ID.String(),
			Details:  string(details),
		}
		return s.auditRepo.Log(txCtx, &entry)
	})
	if err != nil {
		return PaymentResponse{}, err
	}

	if toStatus == model.PaymentStatusCompleted {
		s.sendReceipt(ctx, payment, payment.Booking)
	}

	return toPaymentResponse(*payment), nil
}

func (s *paymentService) Get(ctx context.Context, paymentID, actorID, actorRole string) (PaymentResponse, error) {
	pid, err := uuid.Parse(paymentID)
	if err != nil {
		return PaymentResponse{}, fmt.Errorf("invalid payment ID")
	}

	payment, err := s.paymentRepo.FindByIDWithBooking(ctx, pid)
	if err != nil {
		return PaymentResponse{}, apperror.ErrNotFound
	}
	if !s.canSeePayment(payment, actorID, actorRole) {
		return PaymentResponse{}, apperror.ErrNotFound
	}

	return toPaymentResponse(*payment), nil
}

func (s *paymentService) ListByBooking(ctx context.Context, bookingID, actorID, actorRole string) ([]PaymentResponse, error) {
	bid, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID")
	}

	booking, err := s.bookingRepo.FindByIDWithRelations(ctx, bid)
	if err != nil {
		return nil, apperror.ErrNotFound
	}
	isCustomer := booking.UserID.String() == actorID
	isSalonSide := booking.Salon != nil && canManageSalon(booking.Salon, actorID, actorRole)
	if !isCustomer && !isSalonSide {
		return nil, apperror.ErrForbidden
	}

	payments, err := s.paymentRepo.ListByBooking(ctx, bid)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	result := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		result = append(result, toPaymentResponse(p))
	}
	return result, nil
}

func (s *paymentService) ListBySalon(ctx context.Context, salonID, actorID, actorRole, status string, page, limit int) ([]PaymentResponse, int64, error) {
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

	payments, total, err := s.paymentRepo.ListBySalon(ctx, sid, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list salon payments: %w", err)
	}

	result := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		result = append(result, toPaymentResponse(p))
	}
	return result, total, nil
}

// --- helpers ---

func (s *paymentService) canSeePayment(payment *model.Payment, actorID, actorRole string) bool {
	if actorRole == model.RoleAdmin {
		return true
	}
	if payment.Booking == nil {
		return false
	}
	if payment.Booking.UserID.String() == actorID {
		return true
	}
	return payment.Booking.Salon != nil && payment.Booking.Salon.OwnerID != nil &&
		payment.Booking.Salon.OwnerID.String() == actorID
}

func (s *paymentService) sendReceipt(ctx context.Context, payment *model.Payment, booking *model.Booking) {
	if booking == nil || booking.User == nil {
		s.logger.Warn("payment receipt skipped, booking customer not loaded",
			zap.String("payment_id", payment.ID.String()))
		return
	}

	salonName := ""
	if booking.Salon != nil {
		salonName = booking.Salon.Name
	}

	s.notifier.Send(ctx, model.EmailTypePaymentReceipt, booking.User.Email,
		"Payment receipt",
		map[string]interface{}{
			"CustomerName": booking.User.Username,
			"SalonName":    salonName,
			"Amount":       payment.Amount.StringFixed(2),
			"Currency":     payment.Currency,
			"Method":       payment.Method,
		},
		&RelatedEntity{Type: model.EntityPayment, ID: payment.ID},
	)
}

func toPaymentResponse(p model.Payment) PaymentResponse {
	return PaymentResponse{
		ID:             p.ID,
		BookingID:      p.BookingID,
		Amount:         p.Amount,
		Currency:       p.Currency,
		Status:         p.Status,
		Method:         p.Method,
		TransactionRef: p.TransactionRef,
		PaidAt:         p.PaidAt,
		CreatedAt:      p.CreatedAt,
	}
}
