package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"shelfscan/internal/domain"
	"shelfscan/internal/port"
)

type scanRepo struct {
	db *sqlx.DB
}

// NewScanRepo creates a new PostgreSQL-backed ScanRepository.
func NewScanRepo(db *sqlx.DB) port.ScanRepository {
	return &scanRepo{db: db}
}

func (r *scanRepo) Create(ctx context.Context, scan *domain.Scan) error {
	now := time.Now().UTC()
	scan.CreatedAt = now
	scan.UpdatedAt = now

	query := `INSERT INTO scans
		(id, status, image_key, content_type, supplier_name, invoice_number,
		 invoice_date, total_amount, payment_method, products, discrepancies,
		 scan_error, attempts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.db.ExecContext(ctx, query,
		scan.ID, scan.Status, scan.ImageKey, scan.ContentType, scan.SupplierName,
		scan.InvoiceNumber, scan.InvoiceDate, scan.TotalAmount, scan.PaymentMethod,
		scan.Products, scan.Discrepancies, scan.ScanError, scan.Attempts,
		scan.CreatedAt, scan.UpdatedAt)
	if err != nil {
		return fmt.Errorf("scanRepo.Create: %w", err)
	}
	return nil
}

func (r *scanRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Scan, error) {
	var scan domain.Scan
	err := r.db.GetContext(ctx, &scan, "SELECT * FROM scans WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrScanNotFound
		}
		return nil, fmt.Errorf("scanRepo.GetByID: %w", err)
	}
	return &scan, nil
}

func (r *scanRepo) Update(ctx context.Context, scan *domain.Scan) error {
	scan.UpdatedAt = time.Now().UTC()

	query := `UPDATE scans SET
		status = $1, supplier_name = $2, invoice_number = $3, invoice_date = $4,
		total_amount = $5, payment_method = $6, products = $7, discrepancies = $8,
		scan_error = $9, attempts = $10, updated_at = $11
		WHERE id = $12`

	result, err := r.db.ExecContext(ctx, query,
		scan.Status, scan.SupplierName, scan.InvoiceNumber, scan.InvoiceDate,
		scan.TotalAmount, scan.PaymentMethod, scan.Products, scan.Discrepancies,
		scan.ScanError, scan.Attempts, scan.UpdatedAt, scan.ID)
	if err != nil {
		return fmt.Errorf("scanRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrScanNotFound
	}
	return nil
}

// ClaimQueued flips up to limit queued scans to processing in one statement.
// FOR UPDATE SKIP LOCKED keeps concurrent workers from claiming the same scan.
func (r *scanRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.Scan, error) {
	query := `UPDATE scans SET status = $1, updated_at = now()
		WHERE id IN (
			SELECT id FROM scans WHERE status = $2
			ORDER BY created_at LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`

	var scans []domain.Scan
	err := r.db.SelectContext(ctx, &scans, query,
		domain.ScanStatusProcessing, domain.ScanStatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("scanRepo.ClaimQueued: %w", err)
	}
	return scans, nil
}
