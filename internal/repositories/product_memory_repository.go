package repositories

import (
	"context"
	"sync"

	"warehouse/internal/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// Transactions hold the repository lock for their whole duration and are
// therefore serializable.
type MemoryProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &product, nil
}

// Create adds a new product.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.titleTaken(product.Title, product.UserID, "") {
		return ErrDuplicate
	}
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MemoryProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[product.ID]
	if !ok {
		return ErrNotFound
	}
	if r.titleTaken(product.Title, stored.UserID, stored.ID) {
		return ErrDuplicate
	}
	stored.Title = product.Title
	stored.Price = product.Price
	stored.Quantity = product.Quantity
	stored.Description = product.Description
	r.products[product.ID] = stored
	return nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.products, id)
	return nil
}

// DecreaseQuantity checks and decrements the stock under the write lock.
func (r *MemoryProductRepository) DecreaseQuantity(_ context.Context, id string, amount int) (*models.Product, error) {
	if amount <= 0 {
		return nil, errors.Errorf("invalid decrease amount %d", amount)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	if product.Quantity < amount {
		return nil, &InsufficientStockError{Available: product.Quantity, Requested: amount}
	}
	product.Quantity -= amount
	r.products[id] = product
	return &product, nil
}

// Transaction runs fn against a staged copy and publishes it only if fn
// succeeds.
func (r *MemoryProductRepository) Transaction(_ context.Context, fn func(repo ProductRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	staged := &MemoryProductRepository{products: make(map[string]models.Product, len(r.products))}
	for id, p := range r.products {
		staged.products[id] = p
	}
	if err := fn(staged); err != nil {
		return err
	}
	r.products = staged.products
	return nil
}

// titleTaken must be called with r.mu held.
func (r *MemoryProductRepository) titleTaken(title, userID, exceptID string) bool {
	for id, p := range r.products {
		if id != exceptID && p.UserID == userID && p.Title == title {
			return true
		}
	}
	return false
}
