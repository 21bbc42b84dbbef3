package utils

import "github.com/gofiber/fiber/v2"

func ResponseError(ctx *fiber.Ctx, status int, msg string) error {
	return ctx.Status(status).JSON(fiber.Map{
		"message": msg,
	})
}

// ResponseValidation renders field-level messages in the
// {"errors": {"field": ["msg", ...]}} shape.
func ResponseValidation(ctx *fiber.Ctx, fields map[string][]string) error {
	return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"errors": fields,
	})
}
