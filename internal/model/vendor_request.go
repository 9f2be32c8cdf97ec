package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VendorStatus enum constants, shared by VendorRequest.Status and Salon.Status
const (
	VendorStatusDraft    = "draft"
	VendorStatusPending  = "pending"
	VendorStatusApproved = "approved"
	VendorStatusRejected = "rejected"
)

// VendorRequest represents a salon onboarding submission moving through review.
// Approval is the only path that creates a Salon; requests are never deleted.
type VendorRequest struct {
	ID           uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	BusinessName string              `gorm:"type:varchar(255);not null" json:"business_name"`
	Description  string              `gorm:"type:text" json:"description"`
	OwnerName    string              `gorm:"type:varchar(255)" json:"owner_name"`
	OwnerEmail   string              `gorm:"type:varchar(255);not null" json:"owner_email"` // approval email + registration token binding
	Phone        string              `gorm:"type:varchar(20)" json:"phone"`
	AddressLine  string              `gorm:"type:varchar(255)" json:"address_line"`
	City         string              `gorm:"type:varchar(100);index" json:"city"`
	State        string              `gorm:"type:varchar(100)" json:"state"`
	PostalCode   string              `gorm:"type:varchar(20)" json:"postal_code"`
	Country      string              `gorm:"type:varchar(100)" json:"country"`
	Latitude     decimal.NullDecimal `gorm:"type:decimal(10,7)" json:"latitude"`
	Longitude    decimal.NullDecimal `gorm:"type:decimal(10,7)" json:"longitude"`

	Status      string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	SubmittedBy *uuid.UUID `gorm:"type:uuid;index" json:"submitted_by"` // RM who filed the request
	Submitter   *User      `gorm:"foreignKey:SubmittedBy;constraint:OnDelete:SET NULL" json:"submitter,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at"` // stamped when the request enters pending

	// ReviewedBy/ReviewedAt are set together, only on approve or reject.
	ReviewedBy      *uuid.UUID `gorm:"type:uuid" json:"reviewed_by"`
	Reviewer        *User      `gorm:"foreignKey:ReviewedBy;constraint:OnDelete:SET NULL" json:"reviewer,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason"` // non-empty iff rejected

	SalonID *uuid.UUID `gorm:"type:uuid" json:"salon_id"` // set on approval

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (v *VendorRequest) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
