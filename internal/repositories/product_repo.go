package repositories

import (
	"context"

	"warehouse/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// GetByID returns the product regardless of its quantity.
	GetByID(ctx context.Context, id string) (*models.Product, error)
	// Create inserts product, generating its ID. A (title, user_id) collision
	// yields ErrDuplicate.
	Create(ctx context.Context, product *models.Product) error
	// Update writes the mutable fields of product.
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	// DecreaseQuantity atomically subtracts amount from the stock of product
	// id if at least amount units remain and returns the product as stored
	// afterwards. Fails with ErrNotFound or *InsufficientStockError.
	DecreaseQuantity(ctx context.Context, id string, amount int) (*models.Product, error)
	// Transaction runs fn against a repository bound to a single transaction,
	// committing when fn returns nil and rolling back otherwise.
	Transaction(ctx context.Context, fn func(repo ProductRepository) error) error
}
