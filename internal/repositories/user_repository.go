package repositories

import (
	"context"

	"warehouse/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create inserts user, generating its ID. A taken username or email
	// yields ErrDuplicate.
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
