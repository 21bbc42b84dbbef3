package services

import (
	"encoding/json"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/wavely/account-service/internal/domain"
	"github.com/wavely/account-service/internal/dto"
	"github.com/wavely/account-service/internal/helper"
	"github.com/wavely/account-service/internal/interfaces"
	"github.com/wavely/account-service/internal/logger"
	"github.com/wavely/account-service/internal/repository"
	"gorm.io/datatypes"
)

// Password-broker style status codes, surfaced in forgot/reset responses.
const (
	StatusLinkSent      = "passwords.sent"
	StatusInvalidUser   = "passwords.user"
	StatusSendFailed    = "passwords.send_failed"
	StatusPasswordReset = "passwords.reset"
	StatusInvalidToken  = "passwords.token"
)

const resetTokenTTL = 60 * time.Minute

type AuthService interface {
	Register(input dto.RegisterRequest) (*domain.User, string, error)
	Login(input dto.LoginRequest) (*domain.User, string, error)
	// Logout revokes exactly the presented token; other tokens stay valid.
	Logout(tokenHash string) error
	RefreshToken(auth dto.AuthContext) (string, error)
	ForgotPassword(email string) (string, error)
	ResetPassword(input dto.ResetPasswordRequest) (string, error)
	VerifyEmail(userID uint, hash string) error
	VerifyToken(plainToken string) (*domain.User, error)
}

type authService struct {
	repo     repository.UserRepository
	tokens   repository.TokenRepository
	resets   repository.PasswordResetRepository
	producer interfaces.ProducerHandler
	auth     helper.Auth
}

func NewAuthService(
	repo repository.UserRepository,
	tokens repository.TokenRepository,
	resets repository.PasswordResetRepository,
	producer interfaces.ProducerHandler,
	auth helper.Auth,
) AuthService {
	return &authService{
		repo:     repo,
		tokens:   tokens,
		resets:   resets,
		producer: producer,
		auth:     auth,
	}
}

func (s *authService) Register(input dto.RegisterRequest) (*domain.User, string, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	role := strings.TrimSpace(strings.ToLower(input.Role))

	v := &ValidationErrors{}
	if name == "" {
		v.add("name", "The name field is required.")
	} else if len(name) > 255 {
		v.add("name", "The name may not be greater than 255 characters.")
	}

	switch {
	case email == "":
		v.add("email", "The email field is required.")
	case len(email) > 255:
		v.add("email", "The email may not be greater than 255 characters.")
	default:
		if _, err := mail.ParseAddress(email); err != nil {
			v.add("email", "The email must be a valid email address.")
		} else if _, err := s.repo.FindUserByEmail(email); err == nil {
			v.add("email", "The email has already been taken.")
		}
	}

	switch {
	case input.Password == "":
		v.add("password", "The password field is required.")
	case len(input.Password) < 8:
		v.add("password", "The password must be at least 8 characters.")
	case input.Password != input.PasswordConfirmation:
		v.add("password", "The password confirmation does not match.")
	}

	if role == "" {
		role = domain.RoleUser
	} else if role != domain.RoleUser && role != domain.RoleAdmin {
		v.add("role", "The selected role is invalid.")
	}

	if v.any() {
		return nil, "", v
	}

	hashed, err := s.auth.HashPassword(input.Password)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
		DeviceInfo:   datatypes.JSON(input.DeviceInfo),
	}

	if _, err := s.repo.CreateUser(user); err != nil {
		// two racers can pass the pre-check; the unique index decides
		if helper.IsUniqueViolation(err, "") {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := s.issueToken(user.ID, "mobile_token")
	if err != nil {
		return nil, "", err
	}

	s.publish(dto.EventVerifyEmail, dto.VerifyEmailEvent{
		UserID: user.ID,
		Email:  user.Email,
		Hash:   s.auth.EmailVerificationHash(user.Email),
	})

	logger.Log.Infow("user registered", "user_id", user.ID, "role", user.Role)
	return user, token, nil
}

func (s *authService) Login(input dto.LoginRequest) (*domain.User, string, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := input.Password

	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.repo.FindUserByEmail(email)
	if err != nil {
		// same error whether the account exists or not
		return nil, "", ErrInvalidCredentials
	}

	if err := s.auth.VerifyPassword(password, user.PasswordHash); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	// replace, not merge, even when the client sent nothing
	user.DeviceInfo = datatypes.JSON(input.DeviceInfo)
	if err := s.repo.SaveUser(user); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user.ID, "mobile_token")
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (s *authService) Logout(tokenHash string) error {
	return s.tokens.DeleteByHash(tokenHash)
}

func (s *authService) RefreshToken(auth dto.AuthContext) (string, error) {
	plain, hash, err := s.auth.NewOpaqueToken()
	if err != nil {
		return "", err
	}

	newToken := &domain.AuthToken{
		UserID:    auth.UserID,
		Name:      "auth_token",
		TokenHash: hash,
	}
	if err := s.tokens.Rotate(auth.TokenHash, newToken); err != nil {
		return "", err
	}

	return plain, nil
}

func (s *authService) ForgotPassword(email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.repo.FindUserByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return StatusInvalidUser, nil
		}
		return "", err
	}

	plain, hash, err := s.auth.NewOpaqueToken()
	if err != nil {
		return "", err
	}
	exp := time.Now().Add(resetTokenTTL)

	if err := s.resets.UpsertTicket(&domain.PasswordReset{
		Email:     user.Email,
		TokenHash: hash,
		ExpiresAt: exp,
	}); err != nil {
		return "", err
	}

	// the reset mail is the whole point here, so a publish failure is a
	// dispatch failure, not a silent degrade
	payload, err := json.Marshal(dto.ResetPasswordEvent{
		UserID:    user.ID,
		Email:     user.Email,
		Token:     plain,
		ExpiresAt: exp.Format(time.RFC3339),
	})
	if err != nil {
		return "", err
	}
	if err := s.producer.PublishMessage([]byte(dto.EventResetPassword), payload); err != nil {
		logger.Log.Errorw("reset link dispatch failed", "err", err)
		return StatusSendFailed, nil
	}

	return StatusLinkSent, nil
}

func (s *authService) ResetPassword(input dto.ResetPasswordRequest) (string, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	token := strings.TrimSpace(input.Token)

	v := &ValidationErrors{}
	if token == "" {
		v.add("token", "The token field is required.")
	}
	switch {
	case email == "":
		v.add("email", "The email field is required.")
	default:
		if _, err := mail.ParseAddress(email); err != nil {
			v.add("email", "The email must be a valid email address.")
		}
	}
	switch {
	case input.Password == "":
		v.add("password", "The password field is required.")
	case len(input.Password) < 8:
		v.add("password", "The password must be at least 8 characters.")
	case input.Password != input.PasswordConfirmation:
		v.add("password", "The password confirmation does not match.")
	}
	if v.any() {
		return "", v
	}

	ticket, err := s.resets.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return StatusInvalidToken, nil
		}
		return "", err
	}
	if time.Now().After(ticket.ExpiresAt) {
		return StatusInvalidToken, nil
	}
	if s.auth.TokenHash(token) != ticket.TokenHash {
		return StatusInvalidToken, nil
	}

	user, err := s.repo.FindUserByEmail(email)
	if err != nil {
		return StatusInvalidToken, nil
	}

	hashed, err := s.auth.HashPassword(input.Password)
	if err != nil {
		return "", err
	}
	user.PasswordHash = hashed
	if err := s.repo.SaveUser(user); err != nil {
		return "", err
	}

	// single use
	if err := s.resets.DeleteByEmail(email); err != nil {
		return "", err
	}

	s.publish(dto.EventPasswordReset, dto.PasswordResetEvent{
		UserID: user.ID,
		Email:  user.Email,
	})

	logger.Log.Infow("password reset", "user_id", user.ID)
	return StatusPasswordReset, nil
}

func (s *authService) VerifyEmail(userID uint, hash string) error {
	user, err := s.repo.FindUserByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !s.auth.CheckVerificationHash(user.Email, hash) {
		return ErrInvalidHash
	}

	if user.EmailVerifiedAt != nil {
		// already verified, no second event
		return nil
	}

	now := time.Now()
	user.EmailVerifiedAt = &now
	if err := s.repo.SaveUser(user); err != nil {
		return err
	}

	s.publish(dto.EventEmailVerified, dto.EmailVerifiedEvent{
		UserID: user.ID,
		Email:  user.Email,
	})

	return nil
}

func (s *authService) VerifyToken(plainToken string) (*domain.User, error) {
	plainToken = strings.TrimSpace(plainToken)
	if plainToken == "" {
		return nil, ErrTokenNotFound
	}

	token, err := s.tokens.FindByHash(s.auth.TokenHash(plainToken))
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	user, err := s.repo.FindUserByID(token.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	return user, nil
}

func (s *authService) issueToken(userID uint, name string) (string, error) {
	plain, hash, err := s.auth.NewOpaqueToken()
	if err != nil {
		return "", err
	}

	if err := s.tokens.CreateToken(&domain.AuthToken{
		UserID:    userID,
		Name:      name,
		TokenHash: hash,
	}); err != nil {
		return "", err
	}

	return plain, nil
}

// publish sends a best-effort domain event.
func (s *authService) publish(key string, event any) {
	if s.producer == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("event marshal failed", "key", key, "err", err)
		return
	}
	if err := s.producer.PublishMessage([]byte(key), payload); err != nil {
		logger.Log.Errorw("event publish failed", "key", key, "err", err)
	}
}
