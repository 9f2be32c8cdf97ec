package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"beautyhub-backend/internal/model"
	"beautyhub-backend/internal/repository"
	"beautyhub-backend/internal/sender"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReminderLogResponse struct {
	ID           uuid.UUID `json:"id"`
	BookingID    uuid.UUID `json:"booking_id"`
	SalonID      uuid.UUID `json:"salon_id"`
	Channel      string    `json:"channel"`
	Message      string    `json:"message"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message"`
	SentAt       time.Time `json:"sent_at"`
}

// ReminderService nudges customers about tomorrow's confirmed bookings over
// SMS or WhatsApp and records every attempt.
type ReminderService interface {
	SendDailyReminders(ctx context.Context)
	ListForBooking(ctx context.Context, bookingID string) ([]ReminderLogResponse, error)
}

type reminderService struct {
	bookingRepo repository.BookingRepository
	messenger   sender.MessageSender
	logger      *zap.Logger
}

func NewReminderService(bookingRepo repository.BookingRepository, messenger sender.MessageSender, logger *zap.Logger) ReminderService {
	return &reminderService{
		bookingRepo: bookingRepo,
		messenger:   messenger,
		logger:      logger,
	}
}

// SendDailyReminders processes every confirmed booking starting tomorrow.
// Each send is logged individually; one failure never stops the batch.
func (s *reminderService) SendDailyReminders(ctx context.Context) {
	if s.messenger == nil {
		s.logger.Info("reminder run skipped, no message sender configured")
		return
	}

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	end := start.AddDate(0, 0, 1)

	bookings, err := s.bookingRepo.ConfirmedBetween(ctx, start, end)
	if err != nil {
		s.logger.Error("failed to fetch bookings for reminders", zap.Error(err))
		return
	}
	if len(bookings) == 0 {
		return
	}

	s.logger.Info("daily reminder run started", zap.Int("bookings", len(bookings)))

	var sent, failed, skipped int
	for i := range bookings {
		switch s.remind(ctx, &bookings[i]) {
		case reminderSent:
			sent++
		case reminderFailed:
			failed++
		default:
			skipped++
		}
	}

	s.logger.Info("daily reminder run finished",
		zap.Int("sent", sent),
		zap.Int("failed", failed),
		zap.Int("skipped", skipped),
	)
}

type reminderOutcome int

const (
	reminderSkipped reminderOutcome = iota
	reminderSent
	reminderFailed
)

func (s *reminderService) remind(ctx context.Context, booking *model.Booking) reminderOutcome {
	if booking.User == nil || booking.User.Phone == "" {
		return reminderSkipped
	}

	salonName := "your salon"
	if booking.Salon != nil {
		salonName = booking.Salon.Name
	}
	serviceName := ""
	if booking.Service != nil {
		serviceName = " (" + booking.Service.Name + ")"
	}

	message := fmt.Sprintf("Hi %s, this is a reminder of your appointment at %s%s tomorrow at %s.",
		booking.User.Username, salonName, serviceName, booking.StartsAt.Format("15:04"))

	// WhatsApp needs an E.164 number; anything else goes out as plain SMS.
	channel := model.ReminderChannelSMS
	var err error
	if strings.HasPrefix(booking.User.Phone, "+") {
		channel = model.ReminderChannelWhatsApp
		_, err = s.messenger.SendWhatsApp(ctx, booking.User.Phone, message)
	} else {
		_, err = s.messenger.SendSMS(ctx, booking.User.Phone, message)
	}

	status := "sent"
	errorMsg := ""
	if err != nil {
		s.logger.Warn("reminder send failed",
			zap.String("booking_id", booking.ID.String()),
			zap.String("channel", channel),
			zap.Error(err),
		)
		status = "failed"
		errorMsg = err.Error()
	}

	entry := model.ReminderLog{
		BookingID:    booking.ID,
		SalonID:      booking.SalonID,
		Channel:      channel,
		Message:      message,
		Status:       status,
		ErrorMessage: errorMsg,
		SentAt:       time.Now(),
	}
	if logErr := s.bookingRepo.CreateReminderLog(ctx, &entry); logErr != nil {
		s.logger.Error("failed to log reminder",
			zap.String("booking_id", booking.ID.String()),
			zap.Error(logErr),
		)
	}

	if err != nil {
		return reminderFailed
	}
	return reminderSent
}

func (s *reminderService) ListForBooking(ctx context.Context, bookingID string) ([]ReminderLogResponse, error) {
	bid, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID")
	}

	logs, err := s.bookingRepo.ListReminderLogs(ctx, bid)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminder logs: %w", err)
	}

	result := make([]ReminderLogResponse, 0, len(logs))
	for _, entry := range logs {
		result = append(result, ReminderLogResponse{
			ID:           entry.ID,
			BookingID:    entry.BookingID,
			SalonID:      entry.SalonID,
			Channel:      entry.Channel,
			Message:      entry.Message,
			Status:       entry.Status,
			ErrorMessage: entry.ErrorMessage,
			SentAt:       entry.SentAt,
		})
	}
	return result, nil
}
