package validation_test

import (
	"strings"
	"testing"

	"warehouse/internal/models"
	"warehouse/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productInput(title, price string, quantity int) models.ProductInput {
	p := models.MustPrice(price)
	return models.ProductInput{Title: title, Price: &p, Quantity: &quantity}
}

func TestValidate_ProductInput(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Struct(productInput("apple", "100.00", 10)))
	assert.NoError(t, v.Struct(productInput("pear", "0", 0)))

	cases := map[string]models.ProductInput{
		"Price":    productInput("apple", "1.005", 1),
		"Quantity": productInput("apple", "1.00", -1),
		"Title":    productInput("a-title-longer-than-twenty", "1.00", 1),
	}
	for field, in := range cases {
		err := v.Struct(in)
		require.Error(t, err, field)
		assert.Contains(t, validation.FieldErrors(err), field)
	}
}

func TestValidate_MoneyBounds(t *testing.T) {
	v := validation.New()

	assert.Error(t, v.Struct(productInput("apple", "-0.01", 1)))
	assert.Error(t, v.Struct(productInput("apple", "100000000", 1)))
	assert.NoError(t, v.Struct(productInput("apple", "99999999.99", 1)))
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	v := validation.New()

	err := v.Struct(models.ProductInput{Title: "apple"})
	require.Error(t, err)
	fields := validation.FieldErrors(err)
	assert.Contains(t, fields, "Price")
	assert.Contains(t, fields, "Quantity")
}

func TestValidate_ProductUpdateSkipsNilFields(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Struct(models.ProductUpdate{}))

	bad := models.MustPrice("2.345")
	assert.Error(t, v.Struct(models.ProductUpdate{Price: &bad}))
}

func TestValidate_RegisterRequest(t *testing.T) {
	v := validation.New()

	ok := models.RegisterRequest{Username: "user1", Email: "user1@example.com", Category: models.CategorySeller, Password: "secret"}
	assert.NoError(t, v.Struct(ok))

	bad := ok
	bad.Category = "admin"
	err := v.Struct(bad)
	require.Error(t, err)
	assert.Contains(t, validation.FieldErrors(err), "Category")
}

func TestValidate_PasswordByteLength(t *testing.T) {
	v := validation.New()
	req := models.RegisterRequest{Username: "user1", Email: "user1@example.com", Category: models.CategoryBuyer}

	req.Password = strings.Repeat("p", 72)
	assert.NoError(t, v.Struct(req))

	req.Password = strings.Repeat("p", 73)
	err := v.Struct(req)
	require.Error(t, err)
	assert.Equal(t, "Field 'Password' failed on the 'bcryptlen' tag", validation.FieldErrors(err)["Password"])

	// 30 runes, 90 bytes.
	req.Password = strings.Repeat("€", 30)
	assert.Error(t, v.Struct(req))
}

func TestFieldErrors_NonValidationError(t *testing.T) {
	assert.Nil(t, validation.FieldErrors(assert.AnError))
}
