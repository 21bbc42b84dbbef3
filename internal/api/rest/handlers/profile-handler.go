package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/wavely/account-service/internal/dto"
	"github.com/wavely/account-service/internal/helper"
	"github.com/wavely/account-service/internal/helper/utils"
	"github.com/wavely/account-service/internal/services"
)

type ProfileHandler struct {
	svc  services.ProfileService
	auth helper.Auth
}

func NewProfileHandler(svc services.ProfileService, auth helper.Auth) *ProfileHandler {
	return &ProfileHandler{svc: svc, auth: auth}
}

func (h *ProfileHandler) SetupRoutes(router fiber.Router, authRequired fiber.Handler) {
	router.Get("/profile", authRequired, h.GetProfile)
	router.Post("/profile/settings", authRequired, h.UpdateProfile)
	router.Post("/profile/delete-account", authRequired, h.DeleteAccount)
}

func (h *ProfileHandler) GetProfile(ctx *fiber.Ctx) error {
	authCtx, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	profile, err := h.svc.GetProfile(authCtx.UserID)
	if err != nil {
		return renderAuthError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"user":          profile.User,
		"avatar":        profile.Avatar,
		"background":    profile.Background,
		"notifications": nil,
		"settings":      nil,
	})
}

func (h *ProfileHandler) UpdateProfile(ctx *fiber.Ctx) error {
	authCtx, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	var requestBody dto.UpdateProfileRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	user, err := h.svc.UpdateProfile(authCtx.UserID, requestBody)
	if err != nil {
		return renderAuthError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"message": "Profile updated successfully.",
		"user":    user,
	})
}

func (h *ProfileHandler) DeleteAccount(ctx *fiber.Ctx) error {
	authCtx, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	var requestBody dto.DeleteAccountRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	if err := h.svc.DeleteAccount(authCtx.UserID, requestBody.Password); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return utils.ResponseValidation(ctx, map[string][]string{
				"password": {"The password is incorrect."},
			})
		}
		return renderAuthError(ctx, err)
	}

	return ctx.JSON(fiber.Map{"message": "Account deleted."})
}
