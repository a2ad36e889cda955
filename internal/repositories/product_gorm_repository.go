package repositories

import (
	"context"

	"warehouse/internal/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "failed to get product by ID %s", id)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return errors.Wrap(err, "failed to create product")
	}
	return nil
}

// Update writes the mutable columns of product. Owner and ID never change.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"title":       product.Title,
			"price":       product.Price,
			"quantity":    product.Quantity,
			"description": product.Description,
		})
	if res.Error != nil {
		if isDuplicate(res.Error) {
			return ErrDuplicate
		}
		return errors.Wrap(res.Error, "failed to update product")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to delete product")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DecreaseQuantity runs a single conditional UPDATE, so concurrent buyers can
// never drive the stock below zero. The follow-up read happens in the same
// transaction and only distinguishes the failure cause.
func (r *GORMProductRepository) DecreaseQuantity(ctx context.Context, id string, amount int) (*models.Product, error) {
	if amount <= 0 {
		return nil, errors.Errorf("invalid decrease amount %d", amount)
	}

	var product models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).
			Where("id = ? AND quantity >= ?", id, amount).
			UpdateColumn("quantity", gorm.Expr("quantity - ?", amount))
		if res.Error != nil {
			return errors.Wrapf(res.Error, "failed to decrease quantity of product %s", id)
		}

		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return errors.Wrapf(err, "failed to reload product %s", id)
		}
		if res.RowsAffected == 0 {
			return &InsufficientStockError{Available: product.Quantity, Requested: amount}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Transaction runs fn with a repository bound to a database transaction.
func (r *GORMProductRepository) Transaction(ctx context.Context, fn func(repo ProductRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GORMProductRepository{db: tx})
	})
}
