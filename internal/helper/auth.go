package helper

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/wavely/account-service/internal/dto"
	"github.com/wavely/account-service/internal/helper/utils"
	"golang.org/x/crypto/bcrypt"
)

// Auth bundles password hashing and opaque-token generation. Tokens are
// random hex strings; only their SHA-256 hash is ever persisted.
type Auth struct{}

func SetupAuth() Auth {
	return Auth{}
}

func (a Auth) HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.New("failed to hash password")
	}
	return string(hashed), nil
}

func (a Auth) VerifyPassword(plain, hashed string) error {
	if err := bcrypt.CompareHashAndPassword(
		[]byte(hashed),
		[]byte(plain),
	); err != nil {
		return errors.New("invalid email or password")
	}
	return nil
}

// NewOpaqueToken mints a fresh bearer token. The first value is the
// plaintext handed to the client exactly once, the second the hash kept
// in the store.
func (a Auth) NewOpaqueToken() (plain string, hash string, err error) {
	plain, err = utils.RandomToken(32)
	if err != nil {
		return "", "", errors.New("failed to generate token")
	}
	return plain, utils.Sha256Hex(plain), nil
}

func (a Auth) TokenHash(plain string) string {
	return utils.Sha256Hex(plain)
}

// EmailVerificationHash derives the verification hash for an email
// address. Deterministic so the mail link and the verify endpoint agree.
func (a Auth) EmailVerificationHash(email string) string {
	return utils.Sha1Hex(strings.ToLower(strings.TrimSpace(email)))
}

// CheckVerificationHash compares in constant time.
func (a Auth) CheckVerificationHash(email, supplied string) bool {
	expected := a.EmailVerificationHash(email)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(supplied)) == 1
}

// BearerToken extracts the token from an Authorization header value.
// Accepts both "Bearer <token>" and a bare token.
func BearerToken(header string) (string, error) {
	token := strings.TrimSpace(header)
	if token == "" {
		return "", errors.New("missing token")
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		parts := strings.SplitN(token, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
			return "", errors.New("invalid token format")
		}
		token = strings.TrimSpace(parts[1])
	}
	return token, nil
}

func (a Auth) GetCurrentUser(ctx *fiber.Ctx) (dto.AuthContext, error) {
	u := ctx.Locals("auth")
	authCtx, ok := u.(dto.AuthContext)
	if !ok {
		return dto.AuthContext{}, errors.New("missing auth user in context")
	}
	return authCtx, nil
}
