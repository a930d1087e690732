package models

import (
	"time"

	"gorm.io/gorm"
)

type Review struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	BookingID  uint           `gorm:"not null;uniqueIndex" json:"booking_id"` // one review per booking
	CustomerID uint           `gorm:"not null;index" json:"customer_id"`
	ProviderID uint           `gorm:"not null;index" json:"provider_id"`
	Rating     int            `gorm:"not null" json:"rating"` // 1..5
	Comment    string         `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Booking Booking `gorm:"foreignKey:BookingID" json:"-"`
}

func (Review) TableName() string {
	return "reviews"
}
