package product

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for catalog operations.
var (
	ErrNotFound        = errors.New("product not found")
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
)

// DuplicateKeyError indicates a draft reuses an existing product key.
type DuplicateKeyError struct {
	Key int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("product key %d already in use", e.Key)
}

// InsufficientStockError indicates a deduction larger than the current stock.
type InsufficientStockError struct {
	Key       int
	Stock     int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: have %d, need %d", e.Key, e.Stock, e.Requested)
}

// InvalidDraftError indicates a product draft failed validation.
type InvalidDraftError struct {
	Field  string
	Reason string
}

func (e *InvalidDraftError) Error() string {
	return fmt.Sprintf("invalid product %s: %s", e.Field, e.Reason)
}

// Product is a catalog item. Identity is the caller-assigned key.
// JSON field names match the legacy persisted records.
type Product struct {
	Key   int             `json:"clave"`
	Name  string          `json:"nombre"`
	Price decimal.Decimal `json:"precio"`
	Stock int             `json:"stock"`
}

// Draft is the validated input for registering a new product.
type Draft struct {
	Key   int
	Name  string
	Price decimal.Decimal
	Stock int
}

// Validate checks the draft's fields. Numeric fields must already be parsed;
// boundary layers are responsible for rejecting non-numeric input.
func (d Draft) Validate() error {
	if d.Key <= 0 {
		return &InvalidDraftError{Field: "key", Reason: "must be a positive integer"}
	}
	if d.Name == "" {
		return &InvalidDraftError{Field: "name", Reason: "must not be empty"}
	}
	if d.Price.IsNegative() {
		return &InvalidDraftError{Field: "price", Reason: "must not be negative"}
	}
	if d.Stock < 0 {
		return &InvalidDraftError{Field: "stock", Reason: "must not be negative"}
	}
	return nil
}

// Patch holds optional field updates for an existing product.
// Nil fields are left unchanged.
type Patch struct {
	Name  *string
	Price *decimal.Decimal
	Stock *int
}
