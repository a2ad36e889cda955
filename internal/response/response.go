// Package response writes JSON error bodies for the HTTP layer.
package response

import (
	"warehouse/internal/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

// Error answers with the status err's kind maps to. Internal causes are
// never exposed to the client.
func Error(c *fiber.Ctx, err error) error {
	appErr := apperrors.From(err)

	body := fiber.Map{"message": appErr.Message}
	switch appErr.Kind {
	case apperrors.KindValidation:
		if len(appErr.Fields) > 0 {
			body["errors"] = appErr.Fields
		}
	case apperrors.KindInsufficientStock:
		body["remaining"] = appErr.Remaining
	case apperrors.KindInvalidCredentials:
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	}

	return c.Status(appErr.Kind.HTTPStatus()).JSON(body)
}

// BadRequest answers 400 with message.
func BadRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": message})
}

// ErrorHandler is the app-wide fiber.ErrorHandler. Routing errors keep
// their status; everything else goes through Error.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
	}
	return Error(c, err)
}
