package repositories

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when no row matches.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a uniqueness constraint is violated.
	ErrDuplicate = errors.New("duplicate record")
)

// InsufficientStockError is returned by DecreaseQuantity when the product
// holds fewer units than requested. Nothing is written in that case.
type InsufficientStockError struct {
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock (requested: %d, available: %d)", e.Requested, e.Available)
}
