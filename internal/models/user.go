package models

import (
	"time"

	"sewago/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	FullName     string         `gorm:"size:255" json:"full_name"`
	Phone        string         `gorm:"size:20" json:"phone"`
	Location     string         `gorm:"size:255" json:"location"`
	Role         string         `gorm:"size:20;not null;index" json:"role"` // customer | provider
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	ProviderProfile *ProviderProfile `gorm:"foreignKey:UserID" json:"provider_profile,omitempty"`
}

func (u *User) IsProvider() bool { return u.Role == domain.RoleProvider }
func (u *User) IsCustomer() bool { return u.Role == domain.RoleCustomer }
