package dto

import "github.com/wavely/account-service/internal/domain"

// UpdateProfileRequest is a partial update: only non-nil fields are
// applied.
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
}

type ProfileResponse struct {
	User       *domain.User            `json:"user"`
	Avatar     *domain.Avatar          `json:"avatar"`
	Background *domain.BackgroundImage `json:"background"`
}
