package domain

import "time"

// PasswordReset is a single-use reset ticket. One live ticket per email;
// a new request replaces the previous one.
type PasswordReset struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;uniqueIndex:uidx_password_resets_email;not null" json:"email"`
	TokenHash string    `gorm:"size:64;not null" json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
