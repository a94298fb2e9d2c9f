package normalize_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelfscan/internal/extract"
	"shelfscan/internal/normalize"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func TestProduct_UnitPriceFromPurchasePrice(t *testing.T) {
	line := &extract.RawLine{
		ProductName:   "Olive Oil 1L",
		CatalogNumber: "OO-100",
		Quantity:      12,
		PurchasePrice: f64Ptr(8.5),
		LineTotal:     102,
	}

	p := normalize.Product(line)
	assert.Equal(t, 8.5, p.UnitPrice)
	assert.Equal(t, 102.0, p.LineTotal)
}

func TestProduct_UnitPriceDerivedFromLineTotal(t *testing.T) {
	line := &extract.RawLine{
		ProductName:   "Flour 1kg",
		CatalogNumber: "FL-205",
		Quantity:      30,
		LineTotal:     96,
	}

	p := normalize.Product(line)
	assert.InDelta(t, 3.2, p.UnitPrice, 1e-9)
}

func TestProduct_ZeroQuantityUsesLineTotal(t *testing.T) {
	line := &extract.RawLine{
		ProductName:   "Delivery fee",
		CatalogNumber: "SVC-1",
		Quantity:      0,
		LineTotal:     45,
	}

	p := normalize.Product(line)
	assert.Equal(t, 45.0, p.UnitPrice)
}

func TestProduct_LineTotalNeverRecomputed(t *testing.T) {
	// The printed total wins even when unitPrice*quantity disagrees due to
	// provider rounding.
	line := &extract.RawLine{
		ProductName:   "Napkins",
		CatalogNumber: "NP-3",
		Quantity:      3,
		PurchasePrice: f64Ptr(3.33),
		LineTotal:     10,
	}

	p := normalize.Product(line)
	assert.Equal(t, 3.33, p.UnitPrice)
	assert.Equal(t, 10.0, p.LineTotal)
}

func TestProduct_DescriptionFallbacks(t *testing.T) {
	tests := []struct {
		name string
		line extract.RawLine
		want string
	}{
		{
			name: "explicit description wins",
			line: extract.RawLine{ProductName: "Oil", Description: strPtr("Extra virgin olive oil"), ShortName: strPtr("EVOO")},
			want: "Extra virgin olive oil",
		},
		{
			name: "short name second, even with a product name present",
			line: extract.RawLine{ProductName: "Olive Oil Extra Virgin 1 Liter Bottle", ShortName: strPtr("OO 1L")},
			want: "OO 1L",
		},
		{
			name: "placeholder when nothing usable",
			line: extract.RawLine{ProductName: "Olive Oil 1L", Description: strPtr("   ")},
			want: normalize.DescriptionPlaceholder,
		},
		{
			name: "blank short name falls through to placeholder",
			line: extract.RawLine{ProductName: "Oil", ShortName: strPtr("  ")},
			want: normalize.DescriptionPlaceholder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := normalize.Product(&tt.line)
			assert.Equal(t, tt.want, p.Description)
		})
	}
}

func TestProduct_TrimsOptionalStrings(t *testing.T) {
	line := &extract.RawLine{
		ProductName:   "Oil",
		CatalogNumber: " OO-100 ",
		Barcode:       strPtr(" 7290001234567 "),
		ShortName:     strPtr("  "),
		Quantity:      1,
		LineTotal:     10,
	}

	p := normalize.Product(line)
	assert.Equal(t, "OO-100", p.CatalogNumber)
	require.NotNil(t, p.Barcode)
	assert.Equal(t, "7290001234567", *p.Barcode)
	assert.Nil(t, p.ShortName)
}

func TestProducts_PreservesOrder(t *testing.T) {
	lines := []extract.RawLine{
		{ProductName: "A", CatalogNumber: "A-1", Quantity: 1, LineTotal: 1},
		{ProductName: "B", CatalogNumber: "B-2", Quantity: 1, LineTotal: 2},
		{ProductName: "C", CatalogNumber: "C-3", Quantity: 1, LineTotal: 3},
	}

	products := normalize.Products(lines)
	require.Len(t, products, 3)
	assert.Equal(t, "A-1", products[0].CatalogNumber)
	assert.Equal(t, "B-2", products[1].CatalogNumber)
	assert.Equal(t, "C-3", products[2].CatalogNumber)
}

func TestHeader_NilHeader(t *testing.T) {
	summary := normalize.Header(nil)
	assert.Nil(t, summary.SupplierName)
	assert.Nil(t, summary.InvoiceDate)
}

func TestHeader_DropsUnparseableDate(t *testing.T) {
	h := &extract.RawHeader{
		SupplierName: strPtr("Acme Wholesale"),
		InvoiceDate:  strPtr("next Tuesday"),
	}

	summary := normalize.Header(h)
	require.NotNil(t, summary.SupplierName)
	assert.Nil(t, summary.InvoiceDate)
}

func TestParseInvoiceDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-03-15", "2024-03-15", true},
		{"2024-03-15T10:30:00Z", "2024-03-15", true},
		// Slash dates read as day/month.
		{"15/03/2024", "2024-03-15", true},
		{"5/3/2024", "2024-03-05", true},
		{"15/03/24", "2024-03-15", true},
		{" 2024-03-15 ", "2024-03-15", true},
		{"", "", false},
		{"next Tuesday", "", false},
		{"2024/03/15", "", false},
		{"31/02/2024", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, ok := normalize.ParseInvoiceDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, d.Format("2006-01-02"))
				assert.Equal(t, time.UTC, d.Location())
			}
		})
	}
}
