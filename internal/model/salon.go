package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Salon represents an onboarded business listing. Status mirrors the approval
// outcome; only approved salons are publicly visible. Salons are hard-deleted
// (admin only) so the bookings RESTRICT constraint can protect history.
type Salon struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null;index" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Status      string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	OwnerID *uuid.UUID `gorm:"type:uuid;index" json:"owner_id"` // nil until registration is completed
	Owner   *User      `gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL" json:"owner,omitempty"`

	SubmittedBy *uuid.UUID `gorm:"type:uuid" json:"submitted_by"`
	ReviewedBy  *uuid.UUID `gorm:"type:uuid" json:"reviewed_by"`
	SubmittedAt *time.Time `json:"submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at"`

	Email       string `gorm:"type:varchar(255)" json:"email"`
	Phone       string `gorm:"type:varchar(20)" json:"phone"`
	AddressLine string `gorm:"type:varchar(255)" json:"address_line"`
	City        string `gorm:"type:varchar(100);index" json:"city"`
	State       string `gorm:"type:varchar(100)" json:"state"`
	PostalCode  string `gorm:"type:varchar(20)" json:"postal_code"`
	Country     string `gorm:"type:varchar(100)" json:"country"`

	Latitude  decimal.NullDecimal `gorm:"type:decimal(10,7)" json:"latitude"`
	Longitude decimal.NullDecimal `gorm:"type:decimal(10,7)" json:"longitude"`

	LogoURL       string `gorm:"type:varchar(500)" json:"logo_url"`
	CoverImageURL string `gorm:"type:varchar(500)" json:"cover_image_url"`

	Rating      float64 `gorm:"type:decimal(3,2);default:0" json:"rating"` // average of review ratings
	RatingCount int     `gorm:"type:int;default:0" json:"rating_count"`

	Services []SalonService `gorm:"foreignKey:SalonID;constraint:OnDelete:CASCADE" json:"services,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Salon) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SalonService represents a bookable service offered by a salon
type SalonService struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SalonID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"salon_id"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name"`
	Description     string          `gorm:"type:text" json:"description"`
	Price           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	DurationMinutes int             `gorm:"type:int;not null;default:30" json:"duration_minutes"`
	IsActive        bool            `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (s *SalonService) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Review is a customer rating for a salon. Creating one recomputes the
// salon's average rating in the same transaction.
type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SalonID   uuid.UUID `gorm:"type:uuid;not null;index" json:"salon_id"`
	Salon     *Salon    `gorm:"foreignKey:SalonID;constraint:OnDelete:CASCADE" json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Rating    int       `gorm:"type:int;not null" json:"rating"` // 1..5
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
