package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	ferrors "github.com/ferremas/backend/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL error codes surfaced by the constraints on products and price_history.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// PgStore implements CatalogStore, PriceHistoryStore and ContactStore
// using PostgreSQL as the data store. Every operation is a single statement,
// committed fully or not at all; the unique index on products.code and the
// foreign key on price_history.product_id are the authoritative guards
// against concurrent writers.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new PgStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

const productColumns = "id, code, name, brand, model, stock"

// CreateProduct persists a new product and returns it with its assigned ID.
// Returns ErrProductCodeExists if the code is already taken.
func (p *PgStore) CreateProduct(ctx context.Context, params CreateProductParams) (*Product, error) {
	row := p.db.QueryRow(ctx,
		`INSERT INTO products (code, name, brand, model, stock)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+productColumns,
		params.Code, params.Name, params.Brand, params.Model, params.Stock)

	product, err := scanProduct(row)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return nil, ferrors.ErrProductCodeExists
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// FindByCode retrieves a product by its business code.
// Returns ErrProductNotFound if no product exists with the given code.
func (p *PgStore) FindByCode(ctx context.Context, code string) (*Product, error) {
	row := p.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE code = $1`, code)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ferrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by code: %w", err)
	}
	return product, nil
}

// FindByID retrieves a product by its surrogate identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id int64) (*Product, error) {
	row := p.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ferrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// FindAll retrieves products in insertion order with pagination support.
// It returns a slice of products, which may be empty if the window is past the end.
func (p *PgStore) FindAll(ctx context.Context, offset, limit int32) ([]Product, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY id OFFSET $1 LIMIT $2`,
		offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0, limit)
	for rows.Next() {
		var pr Product
		if err := rows.Scan(&pr.ID, &pr.Code, &pr.Name, &pr.Brand, &pr.Model, &pr.Stock); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate product rows: %w", err)
	}
	return products, nil
}

// Update overwrites every field of the product addressed by code.
// Returns ErrProductNotFound if no product exists with the given code,
// ErrProductCodeExists if the replacement code collides with another row.
func (p *PgStore) Update(ctx context.Context, code string, params UpdateProductParams) (*Product, error) {
	row := p.db.QueryRow(ctx,
		`UPDATE products
		 SET code = $2, name = $3, brand = $4, model = $5, stock = $6
		 WHERE code = $1
		 RETURNING `+productColumns,
		code, params.Code, params.Name, params.Brand, params.Model, params.Stock)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ferrors.ErrProductNotFound
		}
		if isPgError(err, pgUniqueViolation) {
			return nil, ferrors.ErrProductCodeExists
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// DeleteByCode removes a product by its code. Returns false when no row matched.
// The foreign key on price_history cascades, so history rows go with the product.
func (p *PgStore) DeleteByCode(ctx context.Context, code string) (bool, error) {
	tag, err := p.db.Exec(ctx, `DELETE FROM products WHERE code = $1`, code)
	if err != nil {
		return false, fmt.Errorf("failed to delete product by code: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Append inserts a new price history entry.
// A foreign key violation surfaces as ErrProductNotFound.
func (p *PgStore) Append(ctx context.Context, params AppendPriceParams) (*PriceEntry, error) {
	ts := params.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	row := p.db.QueryRow(ctx,
		`INSERT INTO price_history (product_id, ts, price)
		 VALUES ($1, $2, $3)
		 RETURNING id, product_id, ts, price`,
		params.ProductID, ts, params.Price)

	var entry PriceEntry
	if err := row.Scan(&entry.ID, &entry.ProductID, &entry.Timestamp, &entry.Price); err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return nil, ferrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to append price entry: %w", err)
	}
	return &entry, nil
}

// ListByProduct returns all price entries for a product in insertion order.
// The result is an empty slice when the product has no history or does not exist.
func (p *PgStore) ListByProduct(ctx context.Context, productID int64) ([]PriceEntry, error) {
	rows, err := p.db.Query(ctx,
		`SELECT id, product_id, ts, price FROM price_history WHERE product_id = $1 ORDER BY id`,
		productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list price entries: %w", err)
	}
	defer rows.Close()

	entries := make([]PriceEntry, 0)
	for rows.Next() {
		var e PriceEntry
		if err := rows.Scan(&e.ID, &e.ProductID, &e.Timestamp, &e.Price); err != nil {
			return nil, fmt.Errorf("failed to scan price entry row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate price entry rows: %w", err)
	}
	return entries, nil
}

// CreateContact persists a contact submission and returns it with its assigned ID.
func (p *PgStore) CreateContact(ctx context.Context, params CreateContactParams) (*Contact, error) {
	row := p.db.QueryRow(ctx,
		`INSERT INTO contacts (name, email, message)
		 VALUES ($1, $2, $3)
		 RETURNING id, name, email, message`,
		params.Name, params.Email, params.Message)

	var c Contact
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Message); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return &c, nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	if err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Brand, &p.Model, &p.Stock); err != nil {
		return nil, err
	}
	return &p, nil
}

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
