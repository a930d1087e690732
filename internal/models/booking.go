package models

import (
	"time"

	"gorm.io/gorm"
)

// Booking is one requested service engagement. PaymentMethod and
// PaymentReference are nil until a gateway verification succeeds; they are
// set together, exactly once, by the paid transition.
type Booking struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	CustomerID       uint           `gorm:"not null;index" json:"customer_id"`
	ProviderID       uint           `gorm:"not null;index" json:"provider_id"`
	ServiceID        uint           `gorm:"not null;index" json:"service_id"`
	Title            string         `gorm:"size:255" json:"title"`
	Description      string         `gorm:"type:text" json:"description"`
	ScheduledAt      time.Time      `json:"scheduled_at"`
	DurationHours    float64        `gorm:"default:1" json:"duration_hours"`
	Location         string         `gorm:"size:255" json:"location"`
	TotalAmount      float64        `json:"total_amount"` // NPR
	Status           string         `gorm:"size:20;not null;index;default:'pending'" json:"status"`
	PaymentMethod    *string        `gorm:"size:20" json:"payment_method"`    // esewa | khalti
	PaymentReference *string        `gorm:"size:255" json:"payment_reference"` // gateway-issued
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	Customer User    `gorm:"foreignKey:CustomerID" json:"-"`
	Provider User    `gorm:"foreignKey:ProviderID" json:"-"`
	Service  Service `gorm:"foreignKey:ServiceID" json:"-"`
}

func (Booking) TableName() string {
	return "bookings"
}
