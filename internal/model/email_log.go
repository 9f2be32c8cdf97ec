package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmailStatus enum constants
const (
	EmailStatusPending = "pending"
	EmailStatusSent    = "sent"
	EmailStatusFailed  = "failed"
)

// EmailType enum constants
const (
	EmailTypeVendorApproval      = "vendor_approval"
	EmailTypeVendorRejection     = "vendor_rejection"
	EmailTypeWelcome             = "welcome"
	EmailTypeBookingConfirmation = "booking_confirmation"
	EmailTypePaymentReceipt      = "payment_receipt"
)

// RelatedEntity type constants, the weak polymorphic back-reference targets
const (
	EntityVendorRequest = "vendor_request"
	EntitySalon         = "salon"
	EntityBooking       = "booking"
	EntityPayment       = "payment"
)

// MaxEmailRetries caps automated resends; an entry at the cap is terminal
const MaxEmailRetries = 3

// EmailLog records one outbound notification attempt and its retry state.
// Entries are never deleted; they are the delivery audit trail.
// related_entity_type/related_entity_id form an intentionally weak reference
// (no FK) used only for audit lookup, never ownership.
type EmailLog struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RecipientEmail    string     `gorm:"type:varchar(255);not null;index" json:"recipient_email"`
	EmailType         string     `gorm:"type:varchar(50);not null;index" json:"email_type"`
	Subject           string     `gorm:"type:varchar(255)" json:"subject"`
	Status            string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ErrorMessage      string     `gorm:"type:text" json:"error_message"`
	RelatedEntityType string     `gorm:"type:varchar(50);index:idx_email_logs_entity" json:"related_entity_type"`
	RelatedEntityID   *uuid.UUID `gorm:"type:uuid;index:idx_email_logs_entity" json:"related_entity_id"`
	EmailData         string     `gorm:"type:jsonb" json:"email_data"` // serialized template payload, reused on retry
	RetryCount        int        `gorm:"type:int;not null;default:0" json:"retry_count"`
	NextRetryAt       *time.Time `gorm:"index" json:"next_retry_at"`
	SentAt            *time.Time `json:"sent_at"`
	CreatedAt         time.Time  `gorm:"index" json:"created_at"`
}

func (e *EmailLog) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
