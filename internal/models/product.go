package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price is a fixed-point amount with two fractional digits.
type Price struct {
	decimal.Decimal
}

// NewPrice parses a decimal string such as "100.00".
func NewPrice(value string) (Price, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Price{}, err
	}
	return Price{Decimal: d}, nil
}

// MustPrice is NewPrice for constants and tests.
func MustPrice(value string) Price {
	p, err := NewPrice(value)
	if err != nil {
		panic(err)
	}
	return p
}

// MarshalJSON renders the price as a JSON number with two decimals.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.StringFixed(2)), nil
}

// Product represents a product listed by a seller.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title       string    `json:"title" gorm:"size:20;not null;uniqueIndex:unique_title_user"`
	Price       Price     `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity    int       `json:"quantity" gorm:"not null;default:0;check:chk_products_quantity,quantity >= 0"`
	Description *string   `json:"description" gorm:"size:100"`
	UserID      string    `json:"user_id" gorm:"type:varchar(36);not null;index;uniqueIndex:unique_title_user"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// ProductInput is the payload for listing a new product.
type ProductInput struct {
	Title       string  `json:"title" validate:"required,min=1,max=20"`
	Price       *Price  `json:"price" validate:"required,money"`
	Quantity    *int    `json:"quantity" validate:"required,gte=0,lte=65535"`
	Description *string `json:"description" validate:"omitempty,max=100"`
}

// NewProduct builds the product a seller lists from a validated input.
func (in ProductInput) NewProduct(ownerID string) *Product {
	p := &Product{
		Title:       in.Title,
		Description: in.Description,
		UserID:      ownerID,
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Quantity != nil {
		p.Quantity = *in.Quantity
	}
	return p
}

// ProductUpdate enumerates the fields a seller may change. Nil fields are
// left untouched; ID and UserID are deliberately absent.
type ProductUpdate struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=20"`
	Price       *Price  `json:"price" validate:"omitempty,money"`
	Quantity    *int    `json:"quantity" validate:"omitempty,gte=0,lte=65535"`
	Description *string `json:"description" validate:"omitempty,max=100"`
}

// Apply copies the supplied fields onto p.
func (u ProductUpdate) Apply(p *Product) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Quantity != nil {
		p.Quantity = *u.Quantity
	}
	if u.Description != nil {
		p.Description = u.Description
	}
}

// PurchaseRequest is the payload for buying units of a product.
type PurchaseRequest struct {
	Quantity int `json:"quantity" validate:"gt=0,lte=65535"`
}

// PurchaseEvent is published after a purchase has been committed.
type PurchaseEvent struct {
	ProductID   string    `json:"product_id"`
	SellerID    string    `json:"seller_id"`
	BuyerID     string    `json:"buyer_id"`
	Title       string    `json:"title"`
	Price       Price     `json:"price"`
	Quantity    int       `json:"quantity"`
	Remaining   int       `json:"remaining"`
	PurchasedAt time.Time `json:"purchased_at"`
}
