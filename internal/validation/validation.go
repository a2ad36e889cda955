// Package validation configures the struct validator shared by the services
// and the configuration loader.
package validation

import (
	"errors"
	"fmt"
	"reflect"

	"warehouse/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var maxPrice = decimal.New(1, 8)

// New returns a validator that understands models.Price and the "money" tag.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if p, ok := field.Interface().(models.Price); ok {
			return p.String()
		}
		return nil
	}, models.Price{})
	// Only fails on a programming error in the tag name.
	_ = v.RegisterValidation("money", validateMoney)
	_ = v.RegisterValidation("bcryptlen", validateBcryptLen)
	return v
}

// maxBcryptBytes is the longest input bcrypt accepts.
const maxBcryptBytes = 72

// validateBcryptLen bounds the byte length, not the rune count, of a password.
func validateBcryptLen(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= maxBcryptBytes
}

// validateMoney accepts non-negative amounts below 10^8 with at most two
// fractional digits, matching a DECIMAL(10,2) column.
func validateMoney(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	if d.IsNegative() || d.GreaterThanOrEqual(maxPrice) {
		return false
	}
	return d.Exponent() >= -2 || d.Equal(d.Round(2))
}

// FieldErrors flattens validator errors into field -> message. It returns nil
// when err is not a validation error.
func FieldErrors(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	messages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		messages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return messages
}
