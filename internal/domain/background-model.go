package domain

import (
	"time"
)

type BackgroundImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:uidx_backgrounds_user;not null" json:"user_id"`
	Path      string    `gorm:"size:512;not null" json:"path"`
	MimeType  string    `gorm:"size:100" json:"mime_type"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
