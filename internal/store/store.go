// Package store provides interfaces for catalog storage operations.
package store

import (
	"context"
	"time"
)

// Product represents a product row. Code is the caller-facing business key;
// ID is the surrogate identifier assigned by the store.
type Product struct {
	ID    int64
	Code  string
	Name  string
	Brand string
	Model string
	Stock int32
}

// PriceEntry represents an immutable historical price point for a product.
type PriceEntry struct {
	ID        int64
	ProductID int64
	Timestamp time.Time
	Price     float64
}

// Contact represents a persisted contact-form submission.
type Contact struct {
	ID      int64
	Name    string
	Email   string
	Message string
}

// CreateProductParams holds the caller-supplied fields for a new product.
type CreateProductParams struct {
	Code  string
	Name  string
	Brand string
	Model string
	Stock int32
}

// UpdateProductParams holds the replacement fields for an existing product.
// Every field is overwritten; the row is addressed by its current code.
type UpdateProductParams struct {
	Code  string
	Name  string
	Brand string
	Model string
	Stock int32
}

// AppendPriceParams holds the fields for a new price history entry.
type AppendPriceParams struct {
	ProductID int64
	Timestamp time.Time
	Price     float64
}

// CreateContactParams holds the fields for a new contact submission.
type CreateContactParams struct {
	Name    string
	Email   string
	Message string
}

// CatalogStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations
// (e.g., in-memory, database).
type CatalogStore interface {
	// CreateProduct persists a new product and returns it with its assigned ID.
	// Returns ErrProductCodeExists if the code is already taken.
	CreateProduct(ctx context.Context, params CreateProductParams) (*Product, error)

	// FindByCode retrieves a single product by its business code.
	// Returns ErrProductNotFound if no product exists with the given code.
	FindByCode(ctx context.Context, code string) (*Product, error)

	// FindByID retrieves a single product by its surrogate identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*Product, error)

	// FindAll returns products in insertion order with pagination.
	// Returns an empty slice if no products exist in the requested window.
	FindAll(ctx context.Context, offset, limit int32) ([]Product, error)

	// Update overwrites every field of the product addressed by code.
	// Returns ErrProductNotFound if no product exists with the given code,
	// ErrProductCodeExists if the replacement code is already taken.
	Update(ctx context.Context, code string, params UpdateProductParams) (*Product, error)

	// DeleteByCode removes a product by its code. The reported boolean is
	// false when no row matched; deletion of a missing product is not an error.
	// Price history rows cascade with the product.
	DeleteByCode(ctx context.Context, code string) (bool, error)
}

// PriceHistoryStore is an interface for price history storage operations.
type PriceHistoryStore interface {
	// Append inserts a new price history entry. The store does not pre-check
	// the parent product; a foreign key violation surfaces as ErrProductNotFound.
	Append(ctx context.Context, params AppendPriceParams) (*PriceEntry, error)

	// ListByProduct returns all entries for a product in insertion order.
	// Returns an empty slice when the product has no history or does not exist.
	ListByProduct(ctx context.Context, productID int64) ([]PriceEntry, error)
}

// ContactStore is an interface for contact submission storage operations.
type ContactStore interface {
	// CreateContact persists a contact submission and returns it with its assigned ID.
	CreateContact(ctx context.Context, params CreateContactParams) (*Contact, error)
}
