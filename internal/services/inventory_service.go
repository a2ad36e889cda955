package services

import (
	"context"
	"time"

	"warehouse/internal/apperrors"
	"warehouse/internal/auth"
	"warehouse/internal/models"
	"warehouse/internal/repositories"
	"warehouse/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Inventory is the set of product operations available to an
// authenticated caller.
type Inventory interface {
	Fetch(ctx context.Context, caller *models.User, id string) (*models.Product, error)
	Create(ctx context.Context, caller *models.User, in models.ProductInput) (*models.Product, error)
	Update(ctx context.Context, caller *models.User, id string, patch models.ProductUpdate) (*models.Product, error)
	Delete(ctx context.Context, caller *models.User, id string) error
	Decrease(ctx context.Context, caller *models.User, id string, req models.PurchaseRequest) (*models.Product, error)
}

// InventoryService handles business logic for products.
type InventoryService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	validate  *validator.Validate
	log       *zap.Logger
	now       func() time.Time
}

// NewInventoryService creates a new InventoryService. publisher may be nil,
// in which case no purchase events are emitted.
func NewInventoryService(repo repositories.ProductRepository, publisher EventPublisher, log *zap.Logger) *InventoryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &InventoryService{
		repo:      repo,
		publisher: publisher,
		validate:  validation.New(),
		log:       log,
		now:       time.Now,
	}
}

// Fetch returns a product that is still in stock.
func (s *InventoryService) Fetch(ctx context.Context, caller *models.User, id string) (*models.Product, error) {
	if err := authorize(caller, auth.ActionFetch, "Viewing product is forbidden"); err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if product.Quantity == 0 {
		return nil, apperrors.ErrNotFound
	}
	return product, nil
}

// Create lists a new product owned by the calling seller.
func (s *InventoryService) Create(ctx context.Context, caller *models.User, in models.ProductInput) (*models.Product, error) {
	if err := authorize(caller, auth.ActionCreate, "Adding product is forbidden"); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, apperrors.Validation(validation.FieldErrors(err))
	}

	product := in.NewProduct(caller.ID)
	if err := s.repo.Create(ctx, product); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.ErrDuplicateProduct
		}
		return nil, translate(err)
	}
	return product, nil
}

// Update applies patch to a product owned by the caller.
func (s *InventoryService) Update(ctx context.Context, caller *models.User, id string, patch models.ProductUpdate) (*models.Product, error) {
	const denied = "Updating product is forbidden"
	if err := authorize(caller, auth.ActionUpdate, denied); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(patch); err != nil {
		return nil, apperrors.Validation(validation.FieldErrors(err))
	}

	var updated *models.Product
	err := s.repo.Transaction(ctx, func(tx repositories.ProductRepository) error {
		product, err := ownedProduct(ctx, tx, caller, id, denied)
		if err != nil {
			return err
		}
		patch.Apply(product)
		if err := tx.Update(ctx, product); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return apperrors.ErrDuplicateProduct
			}
			return err
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return updated, nil
}

// Delete removes a product owned by the caller.
func (s *InventoryService) Delete(ctx context.Context, caller *models.User, id string) error {
	const denied = "Deleting product is forbidden"
	if err := authorize(caller, auth.ActionDelete, denied); err != nil {
		return err
	}

	err := s.repo.Transaction(ctx, func(tx repositories.ProductRepository) error {
		if _, err := ownedProduct(ctx, tx, caller, id, denied); err != nil {
			return err
		}
		return tx.Delete(ctx, id)
	})
	if err != nil {
		return translate(err)
	}
	return nil
}

// Decrease buys req.Quantity units of a product and returns a receipt: the
// product with Quantity set to the purchased amount.
func (s *InventoryService) Decrease(ctx context.Context, caller *models.User, id string, req models.PurchaseRequest) (*models.Product, error) {
	if err := authorize(caller, auth.ActionDecrease, "Buying product is forbidden"); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Validation(validation.FieldErrors(err))
	}

	product, err := s.repo.DecreaseQuantity(ctx, id, req.Quantity)
	if err != nil {
		return nil, translate(err)
	}

	s.publishPurchase(caller, product, req.Quantity)

	receipt := *product
	receipt.Quantity = req.Quantity
	return &receipt, nil
}

// publishPurchase emits the event for a committed purchase. A broker
// failure does not undo the purchase.
func (s *InventoryService) publishPurchase(buyer *models.User, product *models.Product, quantity int) {
	if s.publisher == nil {
		return
	}
	event := models.PurchaseEvent{
		ProductID:   product.ID,
		SellerID:    product.UserID,
		BuyerID:     buyer.ID,
		Title:       product.Title,
		Price:       product.Price,
		Quantity:    quantity,
		Remaining:   product.Quantity,
		PurchasedAt: s.now().UTC(),
	}
	if err := s.publisher.PublishPurchase(event); err != nil {
		s.log.Warn("Failed to publish purchase event",
			zap.String("product_id", product.ID),
			zap.String("buyer_id", buyer.ID),
			zap.Error(err),
		)
	}
}

func authorize(caller *models.User, action auth.Action, denied string) error {
	if caller == nil {
		return apperrors.ErrInvalidCredentials
	}
	if !auth.Permits(caller, action) {
		return apperrors.ErrForbidden.WithMessage(denied)
	}
	return nil
}

// ownedProduct loads a product regardless of its stock and checks that the
// caller owns it.
func ownedProduct(ctx context.Context, repo repositories.ProductRepository, caller *models.User, id, denied string) (*models.Product, error) {
	product, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.UserID != caller.ID {
		return nil, apperrors.ErrForbidden.WithMessage(denied)
	}
	return product, nil
}

// translate maps repository failures to application errors.
func translate(err error) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	var stock *repositories.InsufficientStockError
	if errors.As(err, &stock) {
		return apperrors.InsufficientStock(stock.Available)
	}
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return apperrors.ErrNotFound
	case errors.Is(err, repositories.ErrDuplicate):
		return apperrors.ErrConflict
	default:
		return apperrors.Internal(err)
	}
}
