package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CanonicalProduct is the normalized, persistence-ready form of one extracted
// line item. Optional fields are pointers: absent means the provider did not
// report the field, which is distinct from a zero value.
type CanonicalProduct struct {
	CatalogNumber string   `db:"catalog_number" json:"catalogNumber"`
	Barcode       *string  `db:"barcode" json:"barcode,omitempty"`
	Description   string   `db:"description" json:"description"`
	ShortName     *string  `db:"short_name" json:"shortName,omitempty"`
	Quantity      float64  `db:"quantity" json:"quantity"`
	UnitPrice     float64  `db:"unit_price" json:"unitPrice"`
	SalePrice     *float64 `db:"sale_price" json:"salePrice,omitempty"`
	LineTotal     float64  `db:"line_total" json:"lineTotal"`
	MinStock      *float64 `db:"min_stock" json:"minStock,omitempty"`
	MaxStock      *float64 `db:"max_stock" json:"maxStock,omitempty"`
}

// InvoiceSummary is the normalized invoice header.
type InvoiceSummary struct {
	SupplierName  *string    `json:"supplierName,omitempty"`
	InvoiceNumber *string    `json:"invoiceNumber,omitempty"`
	TotalAmount   *float64   `json:"totalAmount,omitempty"`
	InvoiceDate   *time.Time `json:"invoiceDate,omitempty"`
	PaymentMethod *string    `json:"paymentMethod,omitempty"`
}

// PriceDiscrepancy pairs a catalog item's previously recorded unit price with
// the newly extracted one. The ID is the catalog number.
type PriceDiscrepancy struct {
	ID            string  `json:"id"`
	Description   string  `json:"description"`
	ExistingPrice float64 `json:"existingPrice"`
	NewPrice      float64 `json:"newPrice"`
}

// Scan represents one uploaded invoice photo moving through the pipeline.
// Products and Discrepancies are stored as JSONB snapshots so a pending
// review survives a restart.
type Scan struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	Status        ScanStatus      `db:"status" json:"status"`
	ImageKey      string          `db:"image_key" json:"image_key"`
	ContentType   string          `db:"content_type" json:"content_type"`
	SupplierName  *string         `db:"supplier_name" json:"supplier_name,omitempty"`
	InvoiceNumber *string         `db:"invoice_number" json:"invoice_number,omitempty"`
	InvoiceDate   *time.Time      `db:"invoice_date" json:"invoice_date,omitempty"`
	TotalAmount   *float64        `db:"total_amount" json:"total_amount,omitempty"`
	PaymentMethod *string         `db:"payment_method" json:"payment_method,omitempty"`
	Products      json.RawMessage `db:"products" json:"products,omitempty"`
	Discrepancies json.RawMessage `db:"discrepancies" json:"discrepancies,omitempty"`
	ScanError     string          `db:"scan_error" json:"scan_error,omitempty"`
	Attempts      int             `db:"attempts" json:"attempts"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// ExtractedProducts decodes the stored product snapshot.
func (s *Scan) ExtractedProducts() ([]CanonicalProduct, error) {
	if len(s.Products) == 0 {
		return nil, nil
	}
	var products []CanonicalProduct
	if err := json.Unmarshal(s.Products, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// PendingDiscrepancies decodes the stored discrepancy snapshot.
func (s *Scan) PendingDiscrepancies() ([]PriceDiscrepancy, error) {
	if len(s.Discrepancies) == 0 {
		return nil, nil
	}
	var discrepancies []PriceDiscrepancy
	if err := json.Unmarshal(s.Discrepancies, &discrepancies); err != nil {
		return nil, err
	}
	return discrepancies, nil
}
