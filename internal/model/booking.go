package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingStatus enum constants
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
	BookingStatusNoShow    = "no_show"
)

// Booking represents a customer appointment at a salon.
// The salon FK is RESTRICT: booking history blocks salon deletion.
type Booking struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	SalonID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"salon_id"`
	Salon     *Salon        `gorm:"foreignKey:SalonID;constraint:OnDelete:RESTRICT" json:"salon,omitempty"`
	UserID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ServiceID *uuid.UUID    `gorm:"type:uuid;index" json:"service_id"`
	Service   *SalonService `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	StartsAt  time.Time     `gorm:"not null;index" json:"starts_at"`
	EndsAt    time.Time     `gorm:"not null" json:"ends_at"`
	Status    string        `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Notes     string        `gorm:"type:text" json:"notes"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// UserCart holds a customer's staged service selections. Ephemeral data:
// the salon FK cascades so cart rows disappear with their salon.
type UserCart struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID     `gorm:"type:uuid;not null;index:idx_user_carts_user_service,unique" json:"user_id"`
	SalonID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"salon_id"`
	Salon     *Salon        `gorm:"foreignKey:SalonID;constraint:OnDelete:CASCADE" json:"-"`
	ServiceID uuid.UUID     `gorm:"type:uuid;not null;index:idx_user_carts_user_service,unique" json:"service_id"`
	Service   *SalonService `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Quantity  int           `gorm:"type:int;not null;default:1" json:"quantity"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (c *UserCart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ReminderChannel enum constants
const (
	ReminderChannelSMS      = "sms"
	ReminderChannelWhatsApp = "whatsapp"
)

// ReminderLog records each booking reminder send attempt (SMS/WhatsApp)
type ReminderLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID    uuid.UUID `gorm:"type:uuid;not null;index" json:"booking_id"`
	SalonID      uuid.UUID `gorm:"type:uuid;not null;index" json:"salon_id"`
	Channel      string    `gorm:"type:varchar(20);not null" json:"channel"` // sms, whatsapp
	Message      string    `gorm:"type:text" json:"message"`
	Status       string    `gorm:"type:varchar(20);not null" json:"status"` // sent, failed
	ErrorMessage string    `gorm:"type:text" json:"error_message"`
	SentAt       time.Time `json:"sent_at"`
}

func (r *ReminderLog) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
