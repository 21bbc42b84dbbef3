package services

import (
	"encoding/json"
	"errors"
	"net/mail"
	"strings"

	"github.com/wavely/account-service/internal/domain"
	"github.com/wavely/account-service/internal/dto"
	"github.com/wavely/account-service/internal/helper"
	"github.com/wavely/account-service/internal/interfaces"
	"github.com/wavely/account-service/internal/logger"
	"github.com/wavely/account-service/internal/repository"
)

type ProfileService interface {
	GetProfile(userID uint) (*dto.ProfileResponse, error)
	UpdateProfile(userID uint, input dto.UpdateProfileRequest) (*domain.User, error)
	// DeleteAccount removes the user and everything it owns after the
	// current password has been re-entered correctly.
	DeleteAccount(userID uint, currentPassword string) error
}

type profileService struct {
	repo     repository.UserRepository
	media    repository.MediaRepository
	producer interfaces.ProducerHandler
	auth     helper.Auth
}

func NewProfileService(
	repo repository.UserRepository,
	media repository.MediaRepository,
	producer interfaces.ProducerHandler,
	auth helper.Auth,
) ProfileService {
	return &profileService{
		repo:     repo,
		media:    media,
		producer: producer,
		auth:     auth,
	}
}

func (s *profileService) GetProfile(userID uint) (*dto.ProfileResponse, error) {
	user, err := s.repo.FindUserByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	resp := &dto.ProfileResponse{User: user}

	avatar, err := s.media.FindAvatarByUserID(userID)
	if err != nil && !errors.Is(err, repository.ErrRecordNotFound) {
		return nil, err
	}
	resp.Avatar = avatar

	bg, err := s.media.FindBackgroundByUserID(userID)
	if err != nil && !errors.Is(err, repository.ErrRecordNotFound) {
		return nil, err
	}
	resp.Background = bg

	return resp, nil
}

func (s *profileService) UpdateProfile(userID uint, input dto.UpdateProfileRequest) (*domain.User, error) {
	user, err := s.repo.FindUserByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	v := &ValidationErrors{}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			v.add("name", "The name field is required.")
		} else if len(name) > 255 {
			v.add("name", "The name may not be greater than 255 characters.")
		} else {
			user.Name = name
		}
	}

	emailChanged := false
	if input.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*input.Email))
		switch {
		case email == "":
			v.add("email", "The email field is required.")
		case len(email) > 255:
			v.add("email", "The email may not be greater than 255 characters.")
		default:
			if _, err := mail.ParseAddress(email); err != nil {
				v.add("email", "The email must be a valid email address.")
			} else if email != user.Email {
				if _, err := s.repo.FindUserByEmail(email); err == nil {
					v.add("email", "The email has already been taken.")
				} else {
					user.Email = email
					emailChanged = true
				}
			}
		}
	}

	if v.any() {
		return nil, v
	}

	if emailChanged {
		// the new address has to be proven again
		user.EmailVerifiedAt = nil
	}

	if err := s.repo.SaveUser(user); err != nil {
		if helper.IsUniqueViolation(err, "") {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if emailChanged {
		s.publishVerifyEmail(user)
	}

	return user, nil
}

func (s *profileService) DeleteAccount(userID uint, currentPassword string) error {
	user, err := s.repo.FindUserByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.auth.VerifyPassword(currentPassword, user.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	if err := s.repo.DeleteUserCascade(userID); err != nil {
		return err
	}

	logger.Log.Infow("account deleted", "user_id", userID)
	return nil
}

func (s *profileService) publishVerifyEmail(user *domain.User) {
	if s.producer == nil {
		return
	}
	payload, err := json.Marshal(dto.VerifyEmailEvent{
		UserID: user.ID,
		Email:  user.Email,
		Hash:   s.auth.EmailVerificationHash(user.Email),
	})
	if err != nil {
		logger.Log.Errorw("event marshal failed", "err", err)
		return
	}
	if err := s.producer.PublishMessage([]byte(dto.EventVerifyEmail), payload); err != nil {
		logger.Log.Errorw("event publish failed", "key", dto.EventVerifyEmail, "err", err)
	}
}
