package dto

import "encoding/json"

type RegisterRequest struct {
	Name                 string          `json:"name"`
	Email                string          `json:"email"`
	Password             string          `json:"password"`
	PasswordConfirmation string          `json:"password_confirmation"`
	Role                 string          `json:"role,omitempty"`
	DeviceInfo           json.RawMessage `json:"deviceInfo,omitempty"`
}

type LoginRequest struct {
	Email      string          `json:"email"`
	Password   string          `json:"password"`
	DeviceInfo json.RawMessage `json:"deviceInfo,omitempty"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token                string `json:"token"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type VerifyEmailRequest struct {
	ID   uint   `json:"id"`
	Hash string `json:"hash"`
}

type VerifyTokenRequest struct {
	Token string `json:"token"`
}

// AuthContext is the authenticated identity resolved once by the auth
// middleware and passed explicitly to service calls.
type AuthContext struct {
	UserID    uint
	Email     string
	TokenHash string
}
