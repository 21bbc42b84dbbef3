package dto

// Event keys published to the broker. The mail service consumes
// verify_email and reset_password; the rest are for audit listeners.
const (
	EventVerifyEmail   = "user.verify_email"
	EventResetPassword = "user.reset_password"
	EventPasswordReset = "user.password_reset"
	EventEmailVerified = "user.email_verified"
)

type VerifyEmailEvent struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Hash   string `json:"hash"`
}

type ResetPasswordEvent struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

type PasswordResetEvent struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
}

type EmailVerifiedEvent struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
}
