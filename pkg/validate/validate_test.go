package validate_test

import (
	"testing"

	"github.com/shashiranjanraj/bazaar/pkg/validate"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type registerInput struct {
	Name                 string `json:"name"                  validate:"required,max=255"`
	Email                string `json:"email"                 validate:"required,email,max=255"`
	Password             string `json:"password"              validate:"required,min=6,confirmed"`
	PasswordConfirmation string `json:"password_confirmation"`
	Role                 string `json:"role"                  validate:"required,in=admin,shop_owner,seller,buyer"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(registerInput{
		Name:                 "Sam Seller",
		Email:                "sam@example.com",
		Password:             "secret123",
		PasswordConfirmation: "secret123",
		Role:                 "seller",
	})
	assert.False(t, validate.HasErrors(errs), "%v", errs)
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(registerInput{})
	assert.Equal(t, "The name field is required.", errs["name"])
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
	assert.Contains(t, errs, "role")
}

func TestInRuleKeepsListTogether(t *testing.T) {
	type in struct {
		Role string `json:"role" validate:"required,in=admin,shop_owner,max=10"`
	}
	assert.Empty(t, validate.Struct(in{Role: "shop_owner"}))
	assert.Equal(t, "The selected role is invalid.", validate.Struct(in{Role: "buyer"})["role"])
}

func TestConfirmed(t *testing.T) {
	errs := validate.Struct(registerInput{
		Name: "x", Email: "x@example.com", Role: "buyer",
		Password: "secret123", PasswordConfirmation: "secret124",
	})
	assert.Equal(t, "The password confirmation does not match.", errs["password"])
}

type productPatch struct {
	Name   *string          `json:"name"   validate:"sometimes,required,max=5"`
	Price  *decimal.Decimal `json:"price"  validate:"sometimes,gte=0"`
	Stock  *int             `json:"stock"  validate:"sometimes,gte=0"`
	Rating *decimal.Decimal `json:"rating" validate:"nullable,between=0,5"`
	SKU    *string          `json:"product_id" validate:"nullable,max=3"`
}

func TestSometimesSkipsAbsentPointers(t *testing.T) {
	assert.Empty(t, validate.Struct(productPatch{}))
}

func TestPointersAreDereferenced(t *testing.T) {
	name := "too long"
	neg := decimal.RequireFromString("-0.01")
	stock := -1
	rating := decimal.RequireFromString("5.1")
	sku := "ABCD"

	errs := validate.Struct(productPatch{Name: &name, Price: &neg, Stock: &stock, Rating: &rating, SKU: &sku})

	assert.Equal(t, "The name must not be greater than 5 characters.", errs["name"])
	assert.Equal(t, "The price must be greater than or equal to 0.", errs["price"])
	assert.Equal(t, "The stock must be greater than or equal to 0.", errs["stock"])
	assert.Equal(t, "The rating must be between 0 and 5.", errs["rating"])
	assert.Contains(t, errs, "product_id")
}

func TestZeroPriceIsPresent(t *testing.T) {
	type in struct {
		Price *decimal.Decimal `json:"price" validate:"required,gte=0"`
	}
	zero := decimal.Zero
	assert.Empty(t, validate.Struct(in{Price: &zero}))
	assert.Equal(t, "The price field is required.", validate.Struct(in{})["price"])
}

func TestNullableBlankString(t *testing.T) {
	type in struct {
		Image *string `json:"image" validate:"nullable,max=3"`
	}
	blank := ""
	assert.Empty(t, validate.Struct(in{Image: &blank}))
}
