package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"shelfscan/internal/domain"
)

// BOM is the UTF-8 byte order mark, written first for Excel compatibility on
// Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// csvColumns defines the CSV header row.
var csvColumns = []string{
	"Catalog Number",
	"Barcode",
	"Description",
	"Short Name",
	"Quantity",
	"Unit Price",
	"Sale Price",
	"Line Total",
	"Min Stock",
	"Max Stock",
}

// CSVWriter wraps csv.Writer for exporting the product catalog.
type CSVWriter struct {
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{csv: csv.NewWriter(w)}
}

// WriteHeader writes the column header row.
func (w *CSVWriter) WriteHeader() error {
	return w.csv.Write(csvColumns)
}

// WriteProducts converts a batch of products to CSV rows and writes them.
func (w *CSVWriter) WriteProducts(products []domain.CanonicalProduct) error {
	for i := range products {
		if err := w.csv.Write(productToRow(&products[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *CSVWriter) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}

func productToRow(p *domain.CanonicalProduct) []string {
	return []string{
		p.CatalogNumber,
		strOrEmpty(p.Barcode),
		p.Description,
		strOrEmpty(p.ShortName),
		formatFloat(p.Quantity),
		formatFloat(p.UnitPrice),
		floatOrEmpty(p.SalePrice),
		formatFloat(p.LineTotal),
		floatOrEmpty(p.MinStock),
		floatOrEmpty(p.MaxStock),
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatOrEmpty(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}
