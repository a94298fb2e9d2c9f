package port

import (
	"context"

	"github.com/google/uuid"

	"shelfscan/internal/domain"
)

// ProductRepository is the catalog store the pipeline writes normalized
// products into and reads prior unit prices from.
type ProductRepository interface {
	UpsertBatch(ctx context.Context, products []domain.CanonicalProduct) error
	GetByCatalogNumber(ctx context.Context, catalogNumber string) (*domain.CanonicalProduct, error)
	UnitPricesByCatalog(ctx context.Context, catalogNumbers []string) (map[string]float64, error)
	List(ctx context.Context, offset, limit int) ([]domain.CanonicalProduct, int, error)
}

// ScanRepository persists invoice scans across their lifecycle.
type ScanRepository interface {
	Create(ctx context.Context, scan *domain.Scan) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Scan, error)
	Update(ctx context.Context, scan *domain.Scan) error
	// ClaimQueued atomically moves up to limit queued scans to processing
	// and returns them.
	ClaimQueued(ctx context.Context, limit int) ([]domain.Scan, error)
}
