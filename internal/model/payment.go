package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentStatus enum constants
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// PaymentMethod enum constants
const (
	PaymentMethodCash   = "cash"
	PaymentMethodCard   = "card"
	PaymentMethodOnline = "online"
)

// Payment tracks money collected against a booking. Only completed payments
// count toward revenue statistics.
type Payment struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"booking_id"`
	Booking        *Booking        `gorm:"foreignKey:BookingID;constraint:OnDelete:RESTRICT" json:"booking,omitempty"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency       string          `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	Status         string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Method         string          `gorm:"type:varchar(30)" json:"method"` // cash, card, online
	TransactionRef string          `gorm:"type:varchar(100)" json:"transaction_ref"`
	PaidAt         *time.Time      `json:"paid_at"` // stamped when status becomes completed
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
