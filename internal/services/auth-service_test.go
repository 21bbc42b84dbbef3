package services_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavely/account-service/internal/domain"
	"github.com/wavely/account-service/internal/dto"
	"github.com/wavely/account-service/internal/helper"
	"github.com/wavely/account-service/internal/services"
)

func newAuthService(store *memStore, producer *fakeProducer) services.AuthService {
	return services.NewAuthService(store, store, store, producer, helper.SetupAuth())
}

func registerAnn(t *testing.T, svc services.AuthService) (*domain.User, string) {
	t.Helper()
	user, token, err := svc.Register(dto.RegisterRequest{
		Name:                 "Ann",
		Email:                "ann@x.com",
		Password:             "secret123",
		PasswordConfirmation: "secret123",
	})
	require.NoError(t, err)
	return user, token
}

func TestAuthService_Register(t *testing.T) {
	store := newMemStore()
	producer := newFakeProducer()
	svc := newAuthService(store, producer)

	user, token := registerAnn(t, svc)

	assert.Equal(t, "user", user.Role)
	assert.Equal(t, "ann@x.com", user.Email)
	assert.NotEmpty(t, token)
	assert.Nil(t, user.EmailVerifiedAt)

	events := producer.eventsWithKey(dto.EventVerifyEmail)
	require.Len(t, events, 1)
	var ev dto.VerifyEmailEvent
	require.NoError(t, json.Unmarshal(events[0].Value, &ev))
	assert.Equal(t, user.ID, ev.UserID)
	assert.NotEmpty(t, ev.Hash)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	store := newMemStore()
	svc := newAuthService(store, newFakeProducer())

	registerAnn(t, svc)

	_, _, err := svc.Register(dto.RegisterRequest{
		Name:                 "Ann Again",
		Email:                "Ann@X.com", // case-insensitive duplicate
		Password:             "secret123",
		PasswordConfirmation: "secret123",
	})
	require.Error(t, err)
	v, ok := services.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, v.Fields, "email")

	assert.Equal(t, 1, store.userCount())
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newAuthService(newMemStore(), newFakeProducer())

	tests := []struct {
		name  string
		input dto.RegisterRequest
		field string
	}{
		{
			name:  "missing name",
			input: dto.RegisterRequest{Email: "a@x.com", Password: "secret123", PasswordConfirmation: "secret123"},
			field: "name",
		},
		{
			name:  "invalid email",
			input: dto.RegisterRequest{Name: "A", Email: "not-an-email", Password: "secret123", PasswordConfirmation: "secret123"},
			field: "email",
		},
		{
			name:  "short password",
			input: dto.RegisterRequest{Name: "A", Email: "a@x.com", Password: "short", PasswordConfirmation: "short"},
			field: "password",
		},
		{
			name:  "confirmation mismatch",
			input: dto.RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret123", PasswordConfirmation: "different"},
			field: "password",
		},
		{
			name:  "unknown role",
			input: dto.RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret123", PasswordConfirmation: "secret123", Role: "superuser"},
			field: "role",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(tt.input)
			require.Error(t, err)
			v, ok := services.AsValidation(err)
			require.True(t, ok)
			assert.Contains(t, v.Fields, tt.field)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	store := newMemStore()
	svc := newAuthService(store, newFakeProducer())
	user, regToken := registerAnn(t, svc)

	// wrong password and unknown email produce the same error
	_, _, err := svc.Login(dto.LoginRequest{Email: "ann@x.com", Password: "wrongpass"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, _, err = svc.Login(dto.LoginRequest{Email: "ghost@x.com", Password: "secret123"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	device := json.RawMessage(`{"os":"ios","model":"16pro"}`)
	loggedIn, loginToken, err := svc.Login(dto.LoginRequest{
		Email:      "Ann@X.com",
		Password:   "secret123",
		DeviceInfo: device,
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEqual(t, regToken, loginToken)
	assert.JSONEq(t, string(device), string(loggedIn.DeviceInfo))

	// both tokens stay valid, multi-device
	assert.Equal(t, 2, store.tokenCountForUser(user.ID))
	_, err = svc.VerifyToken(regToken)
	assert.NoError(t, err)
	_, err = svc.VerifyToken(loginToken)
	assert.NoError(t, err)
}

func TestAuthService_Login_ReplacesDeviceInfoWithNull(t *testing.T) {
	store := newMemStore()
	svc := newAuthService(store, newFakeProducer())
	user, _ := registerAnn(t, svc)

	_, _, err := svc.Login(dto.LoginRequest{
		Email:      "ann@x.com",
		Password:   "secret123",
		DeviceInfo: json.RawMessage(`{"os":"android"}`),
	})
	require.NoError(t, err)

	// second login without device info wipes the stored one
	loggedIn, _, err := svc.Login(dto.LoginRequest{Email: "ann@x.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Empty(t, []byte(loggedIn.DeviceInfo))

	stored, err := store.FindUserByID(user.ID)
	require.NoError(t, err)
	assert.Empty(t, []byte(stored.DeviceInfo))
}

func TestAuthService_Logout(t *testing.T) {
	store := newMemStore()
	svc := newAuthService(store, newFakeProducer())
	user, regToken := registerAnn(t, svc)

	_, otherToken, err := svc.Login(dto.LoginRequest{Email: "ann@x.com", Password: "secret123"})
	require.NoError(t, err)

	auth := helper.SetupAuth()
	require.NoError(t, svc.Logout(auth.TokenHash(regToken)))

	_, err = svc.VerifyToken(regToken)
	assert.ErrorIs(t, err, services.ErrTokenNotFound)

	// the other session survives
	_, err = svc.VerifyToken(otherToken)
	assert.NoError(t, err)
	assert.Equal(t, 1, store.tokenCountForUser(user.ID))

	// revoking again is a no-op success
	assert.NoError(t, svc.Logout(auth.TokenHash(regToken)))
}

func TestAuthService_RefreshToken(t *testing.T) {
	store := newMemStore()
	svc := newAuthService(store, newFakeProducer())
	user, oldToken := registerAnn(t, svc)

	auth := helper.SetupAuth()
	newToken, err := svc.RefreshToken(dto.AuthContext{
		UserID:    user.ID,
		Email:     user.Email,
		TokenHash: auth.TokenHash(oldToken),
	})
	require.NoError(t, err)
	assert.NotEqual(t, oldToken, newToken)

	// old token is dead immediately, new one works
	_, err = svc.VerifyToken(oldToken)
	assert.ErrorIs(t, err, services.ErrTokenNotFound)
	resolved, err := svc.VerifyToken(newToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
	assert.Equal(t, 1, store.tokenCountForUser(user.ID))
}

func TestAuthService_ForgotPassword(t *testing.T) {
	store := newMemStore()
	producer := newFakeProducer()
	svc := newAuthService(store, producer)
	registerAnn(t, svc)

	status, err := svc.ForgotPassword("ghost@x.com")
	require.NoError(t, err)
	assert.Equal(t, services.StatusInvalidUser, status)

	status, err = svc.ForgotPassword("Ann@X.com")
	require.NoError(t, err)
	assert.Equal(t, services.StatusLinkSent, status)

	_, err = store.FindByEmail("ann@x.com")
	assert.NoError(t, err)

	events := producer.eventsWithKey(dto.EventResetPassword)
	require.Len(t, events, 1)
	var ev dto.ResetPasswordEvent
	require.NoError(t, json.Unmarshal(events[0].Value, &ev))
	assert.NotEmpty(t, ev.Token)
}

func TestAuthService_ForgotPassword_DispatchFailure(t *testing.T) {
	store := newMemStore()
	producer := newFakeProducer()
	producer.failKeys[dto.EventResetPassword] = true
	svc := newAuthService(store, producer)
	registerAnn(t, svc)

	status, err := svc.ForgotPassword("ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, services.StatusSendFailed, status)
}

func TestAuthService_ResetPassword(t *testing.T) {
	store := newMemStore()
	producer := newFakeProducer()
	svc := newAuthService(store, producer)
	registerAnn(t, svc)

	_, err := svc.ForgotPassword("ann@x.com")
	require.NoError(t, err)

	var ev dto.ResetPasswordEvent
	events := producer.eventsWithKey(dto.EventResetPassword)
	require.Len(t, events, 1)
	require.NoError(t, json.Unmarshal(events[0].Value, &ev))

	// wrong token is rejected
	status, err := svc.ResetPassword(dto.ResetPasswordRequest{
		Token:                "bogus-token",
		Email:                "ann@x.com",
		Password:             "newsecret1",
		PasswordConfirmation: "newsecret1",
	})
	require.NoError(t, err)
	assert.Equal(t, services.StatusInvalidToken, status)

	status, err = svc.ResetPassword(dto.ResetPasswordRequest{
		Token:                ev.Token,
		Email:                "ann@x.com",
		Password:             "newsecret1",
		PasswordConfirmation: "newsecret1",
	})
	require.NoError(t, err)
	assert.Equal(t, services.StatusPasswordReset, status)

	// old password no longer works, new one does
	_, _, err = svc.Login(dto.LoginRequest{Email: "ann@x.com", Password: "secret123"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	_, _, err = svc.Login(dto.LoginRequest{Email: "ann@x.com", Password: "newsecret1"})
	assert.NoError(t, err)

	// ticket is single use
	status, err = svc.ResetPassword(dto.ResetPasswordRequest{
		Token:                ev.Token,
		Email:                "ann@x.com",
		Password:             "anothersecret1",
		PasswordConfirmation: "anothersecret1",
	})
	require.NoError(t, err)
	assert.Equal(t, services.StatusInvalidToken, status)

	assert.Len(t, producer.eventsWithKey(dto.EventPasswordReset), 1)
}

func TestAuthService_ResetPassword_Expired(t *testing.T) {
	store := newMemStore()
	producer := newFakeProducer()
	svc := newAuthService(store, producer)
	registerAnn(t, svc)

	_, err := svc.ForgotPassword("ann@x.com")
	require.NoError(t, err)

	var ev dto.ResetPasswordEvent
	events := producer.eventsWithKey(dto.EventResetPassword)
	require.NoError(t, json.Unmarshal(events[0].Value, &ev))

	ticket, err := store.FindByEmail("ann@x.com")
	require.NoError(t, err)
	ticket.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, store.UpsertTicket(ticket))

	status, err := svc.ResetPassword(dto.ResetPasswordRequest{
		Token:                ev.Token,
		Email:                "ann@x.com",
		Password:             "newsecret1",
		PasswordConfirmation: "newsecret1",
	})
	require.NoError(t, err)
	assert.Equal(t, services.StatusInvalidToken, status)
}

func TestAuthService_VerifyEmail(t *testing.T) {
	store := newMemStore()
	producer := newFakeProducer()
	svc := newAuthService(store, producer)
	user, _ := registerAnn(t, svc)

	auth := helper.SetupAuth()
	hash := auth.EmailVerificationHash(user.Email)

	err := svc.VerifyEmail(999, hash)
	assert.ErrorIs(t, err, services.ErrUserNotFound)

	err = svc.VerifyEmail(user.ID, "deadbeef")
	assert.ErrorIs(t, err, services.ErrInvalidHash)

	require.NoError(t, svc.VerifyEmail(user.ID, hash))
	stored, err := store.FindUserByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.EmailVerifiedAt)

	// idempotent: second call succeeds without a second event
	require.NoError(t, svc.VerifyEmail(user.ID, hash))
	assert.Len(t, producer.eventsWithKey(dto.EventEmailVerified), 1)
}

func TestAuthService_VerifyToken(t *testing.T) {
	store := newMemStore()
	svc := newAuthService(store, newFakeProducer())
	user, token := registerAnn(t, svc)

	resolved, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	_, err = svc.VerifyToken("unknown")
	assert.ErrorIs(t, err, services.ErrTokenNotFound)

	_, err = svc.VerifyToken("")
	assert.ErrorIs(t, err, services.ErrTokenNotFound)
}
