package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wavely/account-service/internal/dto"
	"github.com/wavely/account-service/internal/helper"
	"github.com/wavely/account-service/internal/repository"
)

// AuthMiddleware resolves the bearer token against the token store and
// puts the authenticated identity into Locals. Services receive it
// explicitly; nothing below the handlers reads request state.
func AuthMiddleware(
	auth helper.Auth,
	tokens repository.TokenRepository,
	users repository.UserRepository,
) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		plain, err := helper.BearerToken(ctx.Get("Authorization"))
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthenticated.",
			})
		}

		hash := auth.TokenHash(plain)
		token, err := tokens.FindByHash(hash)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthenticated.",
			})
		}

		user, err := users.FindUserByID(token.UserID)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthenticated.",
			})
		}

		ctx.Locals("userID", user.ID)
		ctx.Locals("auth", dto.AuthContext{
			UserID:    user.ID,
			Email:     user.Email,
			TokenHash: hash,
		})
		return ctx.Next()
	}
}
