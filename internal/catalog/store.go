package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"medcabinet/m/domain"
)

// Store owns the product catalog.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewStore constructs a Store over an open database handle.
func NewStore(db *sqlx.DB, log *zap.Logger) *Store {
	return &Store{db: db, logger: log}
}

// AddProduct inserts a new catalog entry. Barcode and name are required and
// the barcode must not already be present.
func (s *Store) AddProduct(ctx context.Context, barcode, name, description string) error {
	if barcode == "" || name == "" {
		return fmt.Errorf("%w: barcode and name are required", domain.ErrValidation)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO product (barcode, name, description) VALUES (?, ?, ?) ON CONFLICT(barcode) DO NOTHING`,
		barcode, name, description)
	if err != nil {
		return fmt.Errorf("failed to insert product %q: %w", barcode, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to insert product %q: %w", barcode, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateKey, barcode)
	}

	s.logger.Info("product added", zap.String("barcode", barcode), zap.String("name", name))
	return nil
}

// DeleteProduct removes a catalog entry. Unknown barcodes are ignored.
// Batches recorded against the barcode are left untouched.
func (s *Store) DeleteProduct(ctx context.Context, barcode string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM product WHERE barcode = ?`, barcode)
	if err != nil {
		return fmt.Errorf("failed to delete product %q: %w", barcode, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.logger.Info("product deleted", zap.String("barcode", barcode))
	}
	return nil
}

// LookupProduct returns the catalog entry for barcode or domain.ErrNotFound.
func (s *Store) LookupProduct(ctx context.Context, barcode string) (domain.Product, error) {
	var p domain.Product
	err := s.db.GetContext(ctx, &p, `SELECT barcode, COALESCE(name, '') AS name, COALESCE(description, '') AS description FROM product WHERE barcode = ?`, barcode)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("%w: %q", domain.ErrNotFound, barcode)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to look up product %q: %w", barcode, err)
	}
	return p, nil
}

// ListProducts returns the whole catalog ordered by name.
func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products := []domain.Product{}
	err := s.db.SelectContext(ctx, &products,
		`SELECT barcode, COALESCE(name, '') AS name, COALESCE(description, '') AS description FROM product ORDER BY name ASC, barcode ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// CountProducts returns the catalog size.
func (s *Store) CountProducts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM product`); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}
