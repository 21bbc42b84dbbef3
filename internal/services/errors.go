package services

import "errors"

// Error variables
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email has already been taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrTokenNotFound      = errors.New("invalid token")
	ErrInvalidHash        = errors.New("invalid verification hash")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

// ValidationErrors carries field-level messages for 422 responses.
type ValidationErrors struct {
	Fields map[string][]string
}

func (e *ValidationErrors) Error() string {
	return "validation failed"
}

func (e *ValidationErrors) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationErrors) any() bool {
	return len(e.Fields) > 0
}

// AsValidation unwraps err into a *ValidationErrors, if it is one.
func AsValidation(err error) (*ValidationErrors, bool) {
	var v *ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
