package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"shelfscan/internal/domain"
	"shelfscan/internal/port"
)

type productRepo struct {
	db *sqlx.DB
}

// NewProductRepo creates a new PostgreSQL-backed ProductRepository.
func NewProductRepo(db *sqlx.DB) port.ProductRepository {
	return &productRepo{db: db}
}

// UpsertBatch inserts or replaces products keyed by catalog number. Optional
// fields persist as NULL so an omitted field reads back as omitted.
func (r *productRepo) UpsertBatch(ctx context.Context, products []domain.CanonicalProduct) error {
	if len(products) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("productRepo.UpsertBatch begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO products
		(catalog_number, barcode, description, short_name, quantity, unit_price,
		 sale_price, line_total, min_stock, max_stock, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (catalog_number) DO UPDATE SET
		 barcode = EXCLUDED.barcode,
		 description = EXCLUDED.description,
		 short_name = EXCLUDED.short_name,
		 quantity = EXCLUDED.quantity,
		 unit_price = EXCLUDED.unit_price,
		 sale_price = EXCLUDED.sale_price,
		 line_total = EXCLUDED.line_total,
		 min_stock = COALESCE(EXCLUDED.min_stock, products.min_stock),
		 max_stock = COALESCE(EXCLUDED.max_stock, products.max_stock),
		 updated_at = now()`

	for i := range products {
		p := &products[i]
		if _, err := tx.ExecContext(ctx, query,
			p.CatalogNumber, p.Barcode, p.Description, p.ShortName, p.Quantity,
			p.UnitPrice, p.SalePrice, p.LineTotal, p.MinStock, p.MaxStock); err != nil {
			return fmt.Errorf("productRepo.UpsertBatch %s: %w", p.CatalogNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("productRepo.UpsertBatch commit: %w", err)
	}
	return nil
}

func (r *productRepo) GetByCatalogNumber(ctx context.Context, catalogNumber string) (*domain.CanonicalProduct, error) {
	var p domain.CanonicalProduct
	err := r.db.GetContext(ctx, &p,
		`SELECT catalog_number, barcode, description, short_name, quantity, unit_price,
		        sale_price, line_total, min_stock, max_stock
		 FROM products WHERE catalog_number = $1`, catalogNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("productRepo.GetByCatalogNumber: %w", err)
	}
	return &p, nil
}

// UnitPricesByCatalog returns the recorded unit price for each catalog
// number that exists. Unknown numbers are simply absent from the map.
func (r *productRepo) UnitPricesByCatalog(ctx context.Context, catalogNumbers []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(catalogNumbers))
	if len(catalogNumbers) == 0 {
		return prices, nil
	}

	query, args, err := sqlx.In(
		"SELECT catalog_number, unit_price FROM products WHERE catalog_number IN (?)",
		catalogNumbers)
	if err != nil {
		return nil, fmt.Errorf("productRepo.UnitPricesByCatalog: %w", err)
	}
	query = r.db.Rebind(query)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("productRepo.UnitPricesByCatalog: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var catalogNumber string
		var unitPrice float64
		if err := rows.Scan(&catalogNumber, &unitPrice); err != nil {
			return nil, fmt.Errorf("productRepo.UnitPricesByCatalog scan: %w", err)
		}
		prices[catalogNumber] = unitPrice
	}
	return prices, rows.Err()
}

func (r *productRepo) List(ctx context.Context, offset, limit int) ([]domain.CanonicalProduct, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM products"); err != nil {
		return nil, 0, fmt.Errorf("productRepo.List count: %w", err)
	}

	var products []domain.CanonicalProduct
	err := r.db.SelectContext(ctx, &products,
		`SELECT catalog_number, barcode, description, short_name, quantity, unit_price,
		        sale_price, line_total, min_stock, max_stock
		 FROM products ORDER BY description LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("productRepo.List: %w", err)
	}
	return products, total, nil
}
