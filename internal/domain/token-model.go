package domain

import "time"

// AuthToken is an opaque bearer credential. Only the SHA-256 hash of the
// plaintext is stored; the plaintext leaves the service once, at issue
// time.
type AuthToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	Name      string     `gorm:"size:100" json:"name"`
	TokenHash string     `gorm:"size:64;uniqueIndex;not null" json:"-"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
