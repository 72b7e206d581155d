// Package service provides the implementation of catalog business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ferrors "github.com/ferremas/backend/internal/errors"
	"github.com/ferremas/backend/internal/store"
)

// CatalogService defines the operations of the catalog, price history and
// contact-form surface. It abstracts the underlying business logic and data access.
type CatalogService interface {
	// CreateProduct adds a new product to the catalog.
	// Returns ErrProductCodeExists if the code is already taken.
	CreateProduct(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// FindByCode retrieves a single product by its business code.
	// Returns ErrProductNotFound if no product exists with the given code.
	FindByCode(ctx context.Context, code string) (*ProductDto, error)

	// FindAll returns products in insertion order with pagination.
	// Returns an empty slice if no products exist in the requested window.
	FindAll(ctx context.Context, offset, limit int32) ([]ProductDto, error)

	// Update replaces every field of the product addressed by code.
	// The code carried in the payload is authoritative: supplying a different
	// code renames the product, subject to the uniqueness constraint.
	// Returns ErrProductNotFound if no product exists with the given code.
	Update(ctx context.Context, code string, product ProductCreateDto) (*ProductDto, error)

	// DeleteByCode removes a product and its price history.
	// Returns ErrProductNotFound if no product exists with the given code.
	DeleteByCode(ctx context.Context, code string) error

	// AddPrice appends a price history entry to an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID;
	// in that case nothing is inserted.
	AddPrice(ctx context.Context, productID int64, price PriceCreateDto) (*PriceEntryDto, error)

	// ListPrices returns the price history of a product in insertion order.
	// An unknown product ID yields an empty slice, not an error.
	ListPrices(ctx context.Context, productID int64) ([]PriceEntryDto, error)

	// SubmitContact persists a contact-form submission and echoes it back.
	SubmitContact(ctx context.Context, contact ContactCreateDto) (*ContactDto, error)
}

// Service implements CatalogService over the storage interfaces.
type Service struct {
	catalog  store.CatalogStore
	prices   store.PriceHistoryStore
	contacts store.ContactStore
}

// NewService creates a new CatalogService with the provided stores.
func NewService(catalog store.CatalogStore, prices store.PriceHistoryStore, contacts store.ContactStore) *Service {
	return &Service{
		catalog:  catalog,
		prices:   prices,
		contacts: contacts,
	}
}

// ProductCreateDto represents the payload for creating or replacing a product.
type ProductCreateDto struct {
	Code  string `json:"code"  validate:"required,max=64"`
	Name  string `json:"name"  validate:"required,max=200"`
	Brand string `json:"brand" validate:"max=100"`
	Model string `json:"model" validate:"max=100"`
	Stock int32  `json:"stock" validate:"gte=0"`
}

// ProductDto represents a product as returned to callers.
type ProductDto struct {
	ID    int64  `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Brand string `json:"brand"`
	Model string `json:"model"`
	Stock int32  `json:"stock"`
}

// PriceCreateDto represents the payload for appending a price history entry.
// Price is a pointer so that a missing field is rejected while an explicit
// zero is accepted. Timestamp is optional and defaults to the insertion time.
type PriceCreateDto struct {
	Price     *float64   `json:"price"     validate:"required,gte=0"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// PriceEntryDto represents a price history entry as returned to callers.
type PriceEntryDto struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

// ContactCreateDto represents the payload for a contact-form submission.
type ContactCreateDto struct {
	Name    string `json:"name"    validate:"required,max=200"`
	Email   string `json:"email"   validate:"required,email"`
	Message string `json:"message" validate:"required"`
}

// ContactDto represents a persisted contact submission echoed back to the caller.
type ContactDto struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// CreateProduct pre-checks the code for a friendly conflict message, then
// delegates to the store. The unique index remains the backstop: a concurrent
// create racing past the pre-check still comes back as ErrProductCodeExists.
func (s *Service) CreateProduct(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	_, err := s.catalog.FindByCode(ctx, product.Code)
	if err == nil {
		return nil, ferrors.ErrProductCodeExists
	}
	if !errors.Is(err, ferrors.ErrProductNotFound) {
		return nil, fmt.Errorf("failed to check product code %q: %w", product.Code, err)
	}

	created, err := s.catalog.CreateProduct(ctx, store.CreateProductParams{
		Code:  product.Code,
		Name:  product.Name,
		Brand: product.Brand,
		Model: product.Model,
		Stock: product.Stock,
	})
	if err != nil {
		if errors.Is(err, ferrors.ErrProductCodeExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return toProductDto(created), nil
}

// FindByCode retrieves a product by its business code.
func (s *Service) FindByCode(ctx context.Context, code string) (*ProductDto, error) {
	product, err := s.catalog.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by code %q: %w", code, err)
	}
	return toProductDto(product), nil
}

// FindAll retrieves a page of products in insertion order.
func (s *Service) FindAll(ctx context.Context, offset, limit int32) ([]ProductDto, error) {
	products, err := s.catalog.FindAll(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	productDTOs := make([]ProductDto, len(products))
	for i, item := range products {
		productDTOs[i] = *toProductDto(&item)
	}
	return productDTOs, nil
}

// Update replaces every field of the product addressed by code.
func (s *Service) Update(ctx context.Context, code string, product ProductCreateDto) (*ProductDto, error) {
	updated, err := s.catalog.Update(ctx, code, store.UpdateProductParams{
		Code:  product.Code,
		Name:  product.Name,
		Brand: product.Brand,
		Model: product.Model,
		Stock: product.Stock,
	})
	if err != nil {
		if errors.Is(err, ferrors.ErrProductNotFound) || errors.Is(err, ferrors.ErrProductCodeExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update product %q: %w", code, err)
	}
	return toProductDto(updated), nil
}

// DeleteByCode removes a product and its price history.
func (s *Service) DeleteByCode(ctx context.Context, code string) error {
	deleted, err := s.catalog.DeleteByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to delete product %q: %w", code, err)
	}
	if !deleted {
		return ferrors.ErrProductNotFound
	}
	return nil
}

// AddPrice resolves the product by its surrogate ID before appending, so an
// unknown product fails with ErrProductNotFound and no row is inserted.
func (s *Service) AddPrice(ctx context.Context, productID int64, price PriceCreateDto) (*PriceEntryDto, error) {
	if price.Price == nil {
		return nil, fmt.Errorf("price is required")
	}
	if _, err := s.catalog.FindByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("failed to resolve product %d: %w", productID, err)
	}

	params := store.AppendPriceParams{
		ProductID: productID,
		Price:     *price.Price,
	}
	if price.Timestamp != nil {
		params.Timestamp = *price.Timestamp
	}
	entry, err := s.prices.Append(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to append price for product %d: %w", productID, err)
	}
	return toPriceEntryDto(entry), nil
}

// ListPrices returns the price history of a product. Existence of the product
// is deliberately not checked: an unknown ID yields an empty slice.
func (s *Service) ListPrices(ctx context.Context, productID int64) ([]PriceEntryDto, error) {
	entries, err := s.prices.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prices for product %d: %w", productID, err)
	}
	entryDTOs := make([]PriceEntryDto, len(entries))
	for i, item := range entries {
		entryDTOs[i] = *toPriceEntryDto(&item)
	}
	return entryDTOs, nil
}

// SubmitContact persists a contact submission. Email format is validated at
// the transport boundary before this method is reached.
func (s *Service) SubmitContact(ctx context.Context, contact ContactCreateDto) (*ContactDto, error) {
	created, err := s.contacts.CreateContact(ctx, store.CreateContactParams{
		Name:    contact.Name,
		Email:   contact.Email,
		Message: contact.Message,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return &ContactDto{
		ID:      created.ID,
		Name:    created.Name,
		Email:   created.Email,
		Message: created.Message,
	}, nil
}

// toProductDto converts a store.Product to a ProductDto.
func toProductDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:    product.ID,
		Code:  product.Code,
		Name:  product.Name,
		Brand: product.Brand,
		Model: product.Model,
		Stock: product.Stock,
	}
}

// toPriceEntryDto converts a store.PriceEntry to a PriceEntryDto.
func toPriceEntryDto(entry *store.PriceEntry) *PriceEntryDto {
	return &PriceEntryDto{
		ID:        entry.ID,
		ProductID: entry.ProductID,
		Timestamp: entry.Timestamp,
		Price:     entry.Price,
	}
}
