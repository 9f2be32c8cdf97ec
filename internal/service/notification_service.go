package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/mail"
	"path/filepath"
	"time"

	"beautyhub-backend/internal/model"
	"beautyhub-backend/internal/repository"
	"beautyhub-backend/internal/sender"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Template file per email type, resolved against the templates directory.
var emailTemplateFiles = map[string]string{
	model.EmailTypeVendorApproval:      "vendor_approval.html",
	model.EmailTypeVendorRejection:     "vendor_rejection.html",
	model.EmailTypeWelcome:             "welcome.html",
	model.EmailTypeBookingConfirmation: "booking_confirmation.html",
	model.EmailTypePaymentReceipt:      "payment_receipt.html",
}

// backoffSchedule spaces out resend attempts, in minutes.
var backoffSchedule = [...]int{5, 15, 60}

// backoffMinutes returns the wait before the next attempt for an entry that
// has already failed retryCount times. Counts past the schedule stay on the
// last tier.
func backoffMinutes(retryCount int) int {
	if retryCount < 0 {
		retryCount = 0
	}
	if retryCount >= len(backoffSchedule) {
		return backoffSchedule[len(backoffSchedule)-1]
	}
	return backoffSchedule[retryCount]
}

// RelatedEntity is the optional (type, id) back-reference an email log entry
// carries to the record that triggered it.
type RelatedEntity struct {
	Type string
	ID   uuid.UUID
}

// LogAttemptParams captures one delivery outcome to be recorded.
type LogAttemptParams struct {
	Recipient    string
	EmailType    string
	Subject      string
	Status       string
	ErrorMessage string
	Entity       *RelatedEntity
	TemplateData map[string]interface{}
	RetryCount   int
}

type EmailLogFilter struct {
	Status    string
	EmailType string
	Page      int
	Limit     int
}

// NotificationService attempts delivery of templated emails and durably
// records every outcome. Logging failures never propagate to callers: the
// workflows being audited must not abort because their audit trail hiccuped.
type NotificationService interface {
	Send(ctx context.Context, emailType, recipient, subject string, data map[string]interface{}, entity *RelatedEntity) *uuid.UUID
	LogAttempt(ctx context.Context, p LogAttemptParams) *uuid.UUID
	UpdateStatus(ctx context.Context, id uuid.UUID, status, errorMessage string) bool
	IncrementRetry(ctx context.Context, id uuid.UUID) bool
	DueForRetry(ctx context.Context, now time.Time) ([]model.EmailLog, error)
	ProcessDueRetries(ctx context.Context)
	Resend(ctx context.Context, id uuid.UUID) (*model.EmailLog, error)
	LogsByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]model.EmailLog, error)
	ListLogs(ctx context.Context, filter EmailLogFilter) ([]model.EmailLog, int64, error)
	GetLog(ctx context.Context, id uuid.UUID) (*model.EmailLog, error)
}

type notificationService struct {
	repo      repository.EmailLogRepository
	sender    sender.EmailSender
	templates map[string]*template.Template
	logger    *zap.Logger
}

func NewNotificationService(repo repository.EmailLogRepository, emailSender sender.EmailSender, templatesDir string, logger *zap.Logger) (NotificationService, error) {
	tmpls := make(map[string]*template.Template)
	for emailType, file := range emailTemplateFiles {
		tmpl, err := template.ParseFiles(filepath.Join(templatesDir, file))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template for %s: %w", emailType, err)
		}
		tmpls[emailType] = tmpl
	}
	return &notificationService{
		repo:      repo,
		sender:    emailSender,
		templates: tmpls,
		logger:    logger,
	}, nil
}

// Send renders the template for emailType, attempts delivery, and records the
// outcome. Delivery failure is absorbed here: it is logged with a retry
// schedule and the sweep takes it from there. The returned id is nil when
// even the log write failed.
func (s *notificationService) Send(ctx context.Context, emailType, recipient, subject string, data map[string]interface{}, entity *RelatedEntity) *uuid.UUID {
	body, err := s.render(emailType, data)
	if err != nil {
		s.logger.Error("email render failed",
			zap.String("email_type", emailType),
			zap.String("recipient", recipient),
			zap.Error(err),
		)
		return s.LogAttempt(ctx, LogAttemptParams{
			Recipient:    recipient,
			EmailType:    emailType,
			Subject:      subject,
			Status:       model.EmailStatusFailed,
			ErrorMessage: err.Error(),
			Entity:       entity,
			TemplateData: data,
		})
	}

	_, sendErr := s.sender.SendEmail(ctx, recipient, subject, body)

	params := LogAttemptParams{
		Recipient:    recipient,
		EmailType:    emailType,
		Subject:      subject,
		Status:       model.EmailStatusSent,
		Entity:       entity,
		TemplateData: data,
	}
	if sendErr != nil {
		params.Status = model.EmailStatusFailed
		params.ErrorMessage = sendErr.Error()
		s.logger.Warn("email send failed, queued for retry",
			zap.String("email_type", emailType),
			zap.String("recipient", recipient),
			zap.Error(sendErr),
		)
	} else {
		s.logger.Info("email sent",
			zap.String("email_type", emailType),
			zap.String("recipient", recipient),
		)
	}

	return s.LogAttempt(ctx, params)
}

// LogAttempt persists one EmailLog entry. A failed entry below the retry cap
// gets its next retry slot from the backoff schedule; at the cap it is
// terminal and carries no next_retry_at. Returns nil if the entry could not
// be written.
func (s *notificationService) LogAttempt(ctx context.Context, p LogAttemptParams) *uuid.UUID {
	if _, err := mail.ParseAddress(p.Recipient); err != nil {
		s.logger.Warn("refusing to log attempt for invalid recipient",
			zap.String("recipient", p.Recipient),
			zap.String("email_type", p.EmailType),
		)
		return nil
	}
	switch p.Status {
	case model.EmailStatusPending, model.EmailStatusSent, model.EmailStatusFailed:
	default:
		s.logger.Warn("refusing to log attempt with unknown status", zap.String("status", p.Status))
		return nil
	}
	if p.RetryCount < 0 {
		s.logger.Warn("refusing to log attempt with negative retry count", zap.Int("retry_count", p.RetryCount))
		return nil
	}

	entry := model.EmailLog{
		RecipientEmail: p.Recipient,
		EmailType:      p.EmailType,
		Subject:        p.Subject,
		Status:         p.Status,
		ErrorMessage:   p.ErrorMessage,
		RetryCount:     p.RetryCount,
	}
	if p.Entity != nil {
		entry.RelatedEntityType = p.Entity.Type
		entityID := p.Entity.ID
		entry.RelatedEntityID = &entityID
	}
	if p.TemplateData != nil {
		raw, err := json.Marshal(p.TemplateData)
		if err == nil {
			entry.EmailData = string(raw)
		}
	}

	now := time.Now()
	switch p.Status {
	case model.EmailStatusSent:
		entry.SentAt = &now
	case model.EmailStatusFailed:
		if p.RetryCount < model.MaxEmailRetries {
			next := now.Add(time.Duration(backoffMinutes(p.RetryCount)) * time.Minute)
			entry.NextRetryAt = &next
		}
	}

	if err := s.repo.Create(ctx, &entry); err != nil {
		s.logger.Error("failed to write email log",
			zap.String("email_type", p.EmailType),
			zap.String("recipient", p.Recipient),
			zap.Error(err),
		)
		return nil
	}
	return &entry.ID
}

func (s *notificationService) UpdateStatus(ctx context.Context, id uuid.UUID, status, errorMessage string) bool {
	ok, err := s.repo.UpdateStatus(ctx, id, status, errorMessage)
	if err != nil {
		s.logger.Error("failed to update email log status", zap.String("id", id.String()), zap.Error(err))
		return false
	}
	return ok
}

// IncrementRetry bumps the entry's retry count and recomputes its next slot
// from the schedule. A plain read-modify-write: concurrent increments of the
// same entry are last-writer-wins, which is acceptable for a count that only
// paces resends.
func (s *notificationService) IncrementRetry(ctx context.Context, id uuid.UUID) bool {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to load email log for retry increment", zap.String("id", id.String()), zap.Error(err))
		return false
	}

	newCount := entry.RetryCount + 1
	nextAt := time.Now().Add(time.Duration(backoffMinutes(newCount)) * time.Minute)
	ok, err := s.repo.IncrementRetry(ctx, id, nextAt)
	if err != nil {
		s.logger.Error("failed to increment email log retry", zap.String("id", id.String()), zap.Error(err))
		return false
	}
	return ok
}

func (s *notificationService) DueForRetry(ctx context.Context, now time.Time) ([]model.EmailLog, error) {
	return s.repo.DueForRetry(ctx, now)
}

// ProcessDueRetries re-attempts every failed entry whose retry slot has come
// due, re-rendering from the stored template payload. Runs on a schedule.
func (s *notificationService) ProcessDueRetries(ctx context.Context) {
	entries, err := s.repo.DueForRetry(ctx, time.Now())
	if err != nil {
		s.logger.Error("retry sweep query failed", zap.Error(err))
		return
	}
	if len(entries) == 0 {
		return
	}

	s.logger.Info("retry sweep started", zap.Int("due", len(entries)))

	var sent, failed int
	for i := range entries {
		if s.retryEntry(ctx, &entries[i]) {
			sent++
		} else {
			failed++
		}
	}

	s.logger.Info("retry sweep finished", zap.Int("sent", sent), zap.Int("failed", failed))
}

func (s *notificationService) retryEntry(ctx context.Context, entry *model.EmailLog) bool {
	body, err := s.renderStored(entry)
	if err == nil {
		_, err = s.sender.SendEmail(ctx, entry.RecipientEmail, entry.Subject, body)
	}

	if err != nil {
		s.logger.Warn("retry attempt failed",
			zap.String("id", entry.ID.String()),
			zap.String("recipient", entry.RecipientEmail),
			zap.Int("retry_count", entry.RetryCount),
			zap.Error(err),
		)
		s.UpdateStatus(ctx, entry.ID, model.EmailStatusFailed, err.Error())
		s.IncrementRetry(ctx, entry.ID)
		return false
	}

	s.UpdateStatus(ctx, entry.ID, model.EmailStatusSent, "")
	return true
}

// Resend is the manual override for entries the automated sweep no longer
// touches, terminal ones included. It does not consume a retry slot.
func (s *notificationService) Resend(ctx context.Context, id uuid.UUID) (*model.EmailLog, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	body, err := s.renderStored(entry)
	if err != nil {
		return nil, err
	}

	if _, sendErr := s.sender.SendEmail(ctx, entry.RecipientEmail, entry.Subject, body); sendErr != nil {
		s.UpdateStatus(ctx, entry.ID, model.EmailStatusFailed, sendErr.Error())
		return s.repo.FindByID(ctx, id)
	}

	s.UpdateStatus(ctx, entry.ID, model.EmailStatusSent, "")
	return s.repo.FindByID(ctx, id)
}

func (s *notificationService) LogsByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]model.EmailLog, error) {
	return s.repo.ByEntity(ctx, entityType, entityID)
}

func (s *notificationService) ListLogs(ctx context.Context, filter EmailLogFilter) ([]model.EmailLog, int64, error) {
	return s.repo.List(ctx, filter.Status, filter.EmailType, filter.Page, filter.Limit)
}

func (s *notificationService) GetLog(ctx context.Context, id uuid.UUID) (*model.EmailLog, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *notificationService) render(emailType string, data map[string]interface{}) (string, error) {
	tmpl, ok := s.templates[emailType]
	if !ok {
		return "", fmt.Errorf("no template registered for email type %s", emailType)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template render failed: %w", err)
	}
	return buf.String(), nil
}

func (s *notificationService) renderStored(entry *model.EmailLog) (string, error) {
	data := map[string]interface{}{}
	if entry.EmailData != "" {
		if err := json.Unmarshal([]byte(entry.EmailData), &data); err != nil {
			return "", fmt.Errorf("stored email data unreadable: %w", err)
		}
	}
	return s.render(entry.EmailType, data)
}
