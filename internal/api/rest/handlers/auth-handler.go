package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/wavely/account-service/internal/dto"
	"github.com/wavely/account-service/internal/helper"
	"github.com/wavely/account-service/internal/helper/utils"
	"github.com/wavely/account-service/internal/services"
)

type AuthHandler struct {
	svc  services.AuthService
	auth helper.Auth
}

func NewAuthHandler(svc services.AuthService, auth helper.Auth) *AuthHandler {
	return &AuthHandler{svc: svc, auth: auth}
}

func (h *AuthHandler) SetupRoutes(router fiber.Router, authRequired fiber.Handler) {
	auth := router.Group("/auth")

	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Post("/forgot-password", h.ForgotPassword)
	auth.Post("/reset-password", h.ResetPassword)
	auth.Post("/verify-email", h.VerifyEmail)
	auth.Post("/verify-token", h.VerifyToken)

	auth.Post("/logout", authRequired, h.Logout)
	auth.Post("/refresh-token", authRequired, h.RefreshToken)
}

func (h *AuthHandler) Register(ctx *fiber.Ctx) error {
	var requestBody dto.RegisterRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	user, token, err := h.svc.Register(requestBody)
	if err != nil {
		return renderAuthError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":  user,
		"token": token,
	})
}

func (h *AuthHandler) Login(ctx *fiber.Ctx) error {
	var requestBody dto.LoginRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	user, token, err := h.svc.Login(requestBody)
	if err != nil {
		return renderAuthError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"user":  user,
		"token": token,
	})
}

func (h *AuthHandler) Logout(ctx *fiber.Ctx) error {
	authCtx, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	if err := h.svc.Logout(authCtx.TokenHash); err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(fiber.Map{"message": "Logged out successfully."})
}

func (h *AuthHandler) RefreshToken(ctx *fiber.Ctx) error {
	authCtx, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	token, err := h.svc.RefreshToken(authCtx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(fiber.Map{
		"message": "Token refreshed.",
		"token":   token,
	})
}

func (h *AuthHandler) ForgotPassword(ctx *fiber.Ctx) error {
	var requestBody dto.ForgotPasswordRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid email")
	}

	status, err := h.svc.ForgotPassword(requestBody.Email)
	if err != nil {
		return renderAuthError(ctx, err)
	}

	httpStatus := fiber.StatusOK
	message := "Reset link sent."
	if status != services.StatusLinkSent {
		httpStatus = fiber.StatusBadRequest
		message = "Unable to send reset link."
	}

	return ctx.Status(httpStatus).JSON(fiber.Map{
		"message": message,
		"status":  status,
	})
}

func (h *AuthHandler) ResetPassword(ctx *fiber.Ctx) error {
	var requestBody dto.ResetPasswordRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	status, err := h.svc.ResetPassword(requestBody)
	if err != nil {
		return renderAuthError(ctx, err)
	}

	httpStatus := fiber.StatusOK
	message := "Password has been reset."
	if status != services.StatusPasswordReset {
		httpStatus = fiber.StatusBadRequest
		message = "Password reset failed."
	}

	return ctx.Status(httpStatus).JSON(fiber.Map{
		"message": message,
		"status":  status,
	})
}

func (h *AuthHandler) VerifyEmail(ctx *fiber.Ctx) error {
	var requestBody dto.VerifyEmailRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	if err := h.svc.VerifyEmail(requestBody.ID, requestBody.Hash); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return utils.ResponseError(ctx, fiber.StatusNotFound, "User not found.")
		case errors.Is(err, services.ErrInvalidHash):
			return utils.ResponseError(ctx, fiber.StatusForbidden, "Invalid verification hash.")
		default:
			return utils.ResponseError(ctx, fiber.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(fiber.Map{"message": "Email verified successfully."})
}

func (h *AuthHandler) VerifyToken(ctx *fiber.Ctx) error {
	var requestBody dto.VerifyTokenRequest
	if err := ctx.BodyParser(&requestBody); err != nil || requestBody.Token == "" {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide a token")
	}

	user, err := h.svc.VerifyToken(requestBody.Token)
	if err != nil {
		if errors.Is(err, services.ErrTokenNotFound) {
			return utils.ResponseError(ctx, fiber.StatusNotFound, "Invalid token.")
		}
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(fiber.Map{
		"message": "Token is valid.",
		"user":    user,
	})
}

// renderAuthError maps service errors to the JSON error surface shared
// by the auth and profile handlers.
func renderAuthError(ctx *fiber.Ctx, err error) error {
	if v, ok := services.AsValidation(err); ok {
		return utils.ResponseValidation(ctx, v.Fields)
	}
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		return utils.ResponseValidation(ctx, map[string][]string{
			"email": {"The email has already been taken."},
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		return utils.ResponseValidation(ctx, map[string][]string{
			"email": {"Invalid login credentials."},
		})
	case errors.Is(err, services.ErrUserNotFound):
		return utils.ResponseError(ctx, fiber.StatusNotFound, "User not found.")
	default:
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "internal server error")
	}
}
