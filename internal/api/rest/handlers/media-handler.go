package handlers

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/wavely/account-service/internal/dto"
	"github.com/wavely/account-service/internal/helper"
	"github.com/wavely/account-service/internal/helper/utils"
	"github.com/wavely/account-service/internal/services"
	pkgutils "github.com/wavely/account-service/pkg/utils"
)

const uploadTimeout = 20 * time.Second

type MediaHandler struct {
	svc  services.MediaService
	auth helper.Auth
}

func NewMediaHandler(svc services.MediaService, auth helper.Auth) *MediaHandler {
	return &MediaHandler{svc: svc, auth: auth}
}

func (h *MediaHandler) SetupRoutes(router fiber.Router, authRequired fiber.Handler) {
	router.Post("/profile/update-avatar", authRequired, h.UpdateAvatar)
	router.Post("/update-background-image", authRequired, h.UpdateBackground)
}

func (h *MediaHandler) UpdateAvatar(ctx *fiber.Ctx) error {
	authCtx, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	upload, err := readMultipartImage(ctx, "avatar")
	if err != nil {
		return utils.ResponseValidation(ctx, map[string][]string{
			"avatar": {"The avatar must be an image no larger than 4096 kilobytes."},
		})
	}
	if desc := ctx.FormValue("description"); desc != "" {
		upload.Description = &desc
	}

	c, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	avatar, err := h.svc.UploadAvatar(c, authCtx.UserID, upload)
	if err != nil {
		return renderAuthError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"message": "Avatar updated successfully.",
		"avatar":  avatar.URL,
	})
}

func (h *MediaHandler) UpdateBackground(ctx *fiber.Ctx) error {
	authCtx, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "Unauthenticated.")
	}

	upload, err := readMultipartImage(ctx, "background")
	if err != nil {
		return utils.ResponseValidation(ctx, map[string][]string{
			"background": {"The background must be an image no larger than 4096 kilobytes."},
		})
	}

	c, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	bg, err := h.svc.UploadBackground(c, authCtx.UserID, upload)
	if err != nil {
		return renderAuthError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"message":    "Background image updated successfully.",
		"background": bg,
	})
}

func readMultipartImage(ctx *fiber.Ctx, field string) (dto.MediaUpload, error) {
	fileHeader, err := ctx.FormFile(field)
	if err != nil {
		return dto.MediaUpload{}, err
	}

	data, err := readFileHeader(fileHeader)
	if err != nil {
		return dto.MediaUpload{}, err
	}

	return dto.MediaUpload{
		Data:     data,
		Filename: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Size:     fileHeader.Size,
	}, nil
}

func readFileHeader(fileHeader *multipart.FileHeader) ([]byte, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return pkgutils.ReadAllLimit(f, services.MaxImageBytes)
}
