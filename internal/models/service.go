package models

import (
	"time"

	"gorm.io/gorm"
)

// Service is a catalog entry offered by a provider.
type Service struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ProviderID  uint           `gorm:"not null;index" json:"provider_id"`
	Category    string         `gorm:"size:50;not null;index" json:"category"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	BasePrice   float64        `json:"base_price"` // NPR
	Active      bool           `gorm:"default:true" json:"active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Provider User `gorm:"foreignKey:ProviderID" json:"-"`
}

func (Service) TableName() string {
	return "services"
}
