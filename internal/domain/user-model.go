package domain

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"size:255;not null" json:"name"`
	Email           string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash    string         `json:"-"`
	Role            string         `gorm:"type:varchar(20);not null;default:user" json:"role"`
	DeviceInfo      datatypes.JSON `json:"device_info,omitempty"`
	EmailVerifiedAt *time.Time     `json:"email_verified_at"`
	gorm.Model
}
