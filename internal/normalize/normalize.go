// Package normalize converts validated raw extraction records into canonical
// business records, computing derived fields.
package normalize

import (
	"strings"
	"time"

	"shelfscan/internal/domain"
	"shelfscan/internal/extract"
)

// DescriptionPlaceholder backfills products the provider returned without any
// usable description. The canonical description is never empty.
const DescriptionPlaceholder = "Unnamed product"

// Product maps one validated raw line to its canonical form.
//
// Unit price prefers the provider's explicit purchase price. Otherwise it is
// derived from the line total: lineTotal/quantity, or lineTotal itself when
// quantity is zero. The line total is authoritative and never recomputed from
// unitPrice*quantity; provider rounding makes printed totals the trustworthy
// source.
func Product(line *extract.RawLine) domain.CanonicalProduct {
	p := domain.CanonicalProduct{
		CatalogNumber: strings.TrimSpace(line.CatalogNumber),
		Barcode:       trimmedOrNil(line.Barcode),
		ShortName:     trimmedOrNil(line.ShortName),
		Quantity:      line.Quantity,
		SalePrice:     line.SalePrice,
		LineTotal:     line.LineTotal,
	}

	switch {
	case line.PurchasePrice != nil:
		p.UnitPrice = *line.PurchasePrice
	case line.Quantity > 0:
		p.UnitPrice = line.LineTotal / line.Quantity
	default:
		p.UnitPrice = line.LineTotal
	}

	p.Description = description(line)
	return p
}

// Products maps a batch of raw lines, preserving order.
func Products(lines []extract.RawLine) []domain.CanonicalProduct {
	products := make([]domain.CanonicalProduct, 0, len(lines))
	for i := range lines {
		products = append(products, Product(&lines[i]))
	}
	return products
}

// Header maps raw invoice header data to its canonical summary. A date that
// parses as neither ISO 8601 nor DD/MM/YYYY is dropped rather than failing
// normalization.
func Header(h *extract.RawHeader) domain.InvoiceSummary {
	if h == nil {
		return domain.InvoiceSummary{}
	}
	summary := domain.InvoiceSummary{
		SupplierName:  trimmedOrNil(h.SupplierName),
		InvoiceNumber: trimmedOrNil(h.InvoiceNumber),
		TotalAmount:   h.TotalAmount,
		PaymentMethod: trimmedOrNil(h.PaymentMethod),
	}
	if h.InvoiceDate != nil {
		if d, ok := ParseInvoiceDate(*h.InvoiceDate); ok {
			summary.InvoiceDate = &d
		}
	}
	return summary
}

// invoiceDateLayouts are tried in order. Slash dates are always read as
// day/month, including two-digit years; the source data follows DD/MM/YYYY
// conventions and the ambiguity is resolved in that direction on purpose.
var invoiceDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"02/01/2006",
	"2/1/2006",
	"02/01/06",
	"2/1/06",
}

// ParseInvoiceDate parses a free-form invoice date string. The second return
// value is false when no accepted layout matches.
func ParseInvoiceDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range invoiceDateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// description prefers the explicit description, then the short name, then
// the placeholder. The raw product name is kept out of the chain: it is the
// document's long-form label, not a catalog description.
func description(line *extract.RawLine) string {
	if d := trimmedOrNil(line.Description); d != nil {
		return *d
	}
	if s := trimmedOrNil(line.ShortName); s != nil {
		return *s
	}
	return DescriptionPlaceholder
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
