package models

import (
	"time"

	"gorm.io/gorm"
)

// ProviderProfile extends a provider user with marketplace-facing details.
type ProviderProfile struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"not null;uniqueIndex" json:"user_id"`
	Skills          string         `gorm:"type:text" json:"skills"` // JSON array
	HourlyRate      float64        `json:"hourly_rate"`
	ExperienceYears int            `json:"experience_years"`
	Description     string         `gorm:"type:text" json:"description"`
	Verified        bool           `gorm:"default:false" json:"verified"`
	RatingAvg       float64        `gorm:"default:0" json:"rating_avg"`
	RatingCount     int            `gorm:"default:0" json:"rating_count"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (ProviderProfile) TableName() string {
	return "provider_profiles"
}
