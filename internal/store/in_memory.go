package store

import (
	"context"
	"sync"
	"time"

	ferrors "github.com/ferremas/backend/internal/errors"
)

// inMemory implements CatalogStore, PriceHistoryStore and ContactStore using
// in-memory slices. It mirrors the database constraints (unique code, foreign
// key with cascade delete) so that service and handler tests observe the same
// outcomes as against PostgreSQL.
type inMemory struct {
	mu            sync.RWMutex
	products      []Product
	prices        []PriceEntry
	contacts      []Contact
	nextProductID int64
	nextPriceID   int64
	nextContactID int64
}

// NewInMemoryStore creates a new in-memory store.
func NewInMemoryStore() *inMemory {
	return &inMemory{
		nextProductID: 1,
		nextPriceID:   1,
		nextContactID: 1,
	}
}

// CreateProduct persists a new product and returns it with its assigned ID.
func (s *inMemory) CreateProduct(_ context.Context, params CreateProductParams) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.products {
		if p.Code == params.Code {
			return nil, ferrors.ErrProductCodeExists
		}
	}
	product := Product{
		ID:    s.nextProductID,
		Code:  params.Code,
		Name:  params.Name,
		Brand: params.Brand,
		Model: params.Model,
		Stock: params.Stock,
	}
	s.nextProductID++
	s.products = append(s.products, product)
	return &product, nil
}

// FindByCode retrieves a product by its business code.
func (s *inMemory) FindByCode(_ context.Context, code string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.Code == code {
			found := p
			return &found, nil
		}
	}
	return nil, ferrors.ErrProductNotFound
}

// FindByID retrieves a product by its surrogate identifier.
func (s *inMemory) FindByID(_ context.Context, id int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, ferrors.ErrProductNotFound
}

// FindAll returns products in insertion order with pagination.
func (s *inMemory) FindAll(_ context.Context, offset, limit int32) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if int(offset) >= len(s.products) {
		return []Product{}, nil
	}
	end := int(offset) + int(limit)
	if end > len(s.products) {
		end = len(s.products)
	}
	page := make([]Product, end-int(offset))
	copy(page, s.products[offset:end])
	return page, nil
}

// Update overwrites every field of the product addressed by code.
func (s *inMemory) Update(_ context.Context, code string, params UpdateProductParams) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, p := range s.products {
		if p.Code == code {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ferrors.ErrProductNotFound
	}
	if params.Code != code {
		for _, p := range s.products {
			if p.Code == params.Code {
				return nil, ferrors.ErrProductCodeExists
			}
		}
	}
	s.products[idx].Code = params.Code
	s.products[idx].Name = params.Name
	s.products[idx].Brand = params.Brand
	s.products[idx].Model = params.Model
	s.products[idx].Stock = params.Stock
	updated := s.products[idx]
	return &updated, nil
}

// DeleteByCode removes a product and cascades to its price history.
func (s *inMemory) DeleteByCode(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.products {
		if p.Code == code {
			id := p.ID
			s.products = append(s.products[:i], s.products[i+1:]...)
			kept := s.prices[:0]
			for _, e := range s.prices {
				if e.ProductID != id {
					kept = append(kept, e)
				}
			}
			s.prices = kept
			return true, nil
		}
	}
	return false, nil
}

// Append inserts a new price history entry, enforcing the parent foreign key.
func (s *inMemory) Append(_ context.Context, params AppendPriceParams) (*PriceEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parentExists := false
	for _, p := range s.products {
		if p.ID == params.ProductID {
			parentExists = true
			break
		}
	}
	if !parentExists {
		return nil, ferrors.ErrProductNotFound
	}
	ts := params.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	entry := PriceEntry{
		ID:        s.nextPriceID,
		ProductID: params.ProductID,
		Timestamp: ts,
		Price:     params.Price,
	}
	s.nextPriceID++
	s.prices = append(s.prices, entry)
	return &entry, nil
}

// ListByProduct returns all price entries for a product in insertion order.
func (s *inMemory) ListByProduct(_ context.Context, productID int64) ([]PriceEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]PriceEntry, 0)
	for _, e := range s.prices {
		if e.ProductID == productID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// CreateContact persists a contact submission.
func (s *inMemory) CreateContact(_ context.Context, params CreateContactParams) (*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contact := Contact{
		ID:      s.nextContactID,
		Name:    params.Name,
		Email:   params.Email,
		Message: params.Message,
	}
	s.nextContactID++
	s.contacts = append(s.contacts, contact)
	return &contact, nil
}
