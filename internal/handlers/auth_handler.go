package handlers

import (
	"warehouse/internal/apperrors"
	"warehouse/internal/middleware"
	"warehouse/internal/models"
	"warehouse/internal/response"
	"warehouse/internal/services"
	"warehouse/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService services.Authenticator
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService services.Authenticator) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validation.New(),
	}
}

// RegisterRoutes registers the authentication routes. authRequired guards
// the routes that need a resolved caller.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/sign-up", h.HandleSignUp)
	authRoutes.Post("/sign-in", h.HandleSignIn)
	authRoutes.Get("/user", authRequired, h.HandleCurrentUser)
}

// HandleSignUp registers a user and answers with a token.
func (h *AuthHandler) HandleSignUp(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	token, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		return response.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(token)
}

// HandleSignIn accepts JSON or form-encoded credentials and issues a token.
func (h *AuthHandler) HandleSignIn(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return response.Error(c, apperrors.Validation(validation.FieldErrors(err)))
	}

	token, err := h.authService.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return response.Error(c, err)
	}
	return c.JSON(token)
}

// HandleCurrentUser returns the caller's identity.
func (h *AuthHandler) HandleCurrentUser(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return response.Error(c, apperrors.ErrInvalidCredentials)
	}
	return c.JSON(user)
}
