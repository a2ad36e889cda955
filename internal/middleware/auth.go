package middleware

import (
	"context"
	"strings"

	"warehouse/internal/apperrors"
	"warehouse/internal/models"
	"warehouse/internal/response"

	"github.com/gofiber/fiber/v2"
)

const userKey = "user"

// TokenResolver turns a bearer token into the identity it carries.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// AuthRequired is a Fiber middleware to check for a valid bearer token.
func AuthRequired(resolver TokenResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return response.Error(c, apperrors.ErrInvalidCredentials.WithMessage("Not authenticated"))
		}

		// Expected format: "Bearer <token>"
		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			return response.Error(c, apperrors.ErrInvalidCredentials)
		}

		user, err := resolver.Resolve(c.UserContext(), token)
		if err != nil {
			return response.Error(c, apperrors.ErrInvalidCredentials)
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

// CurrentUser returns the identity stored by AuthRequired, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}
