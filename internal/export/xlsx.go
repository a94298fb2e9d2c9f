package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"shelfscan/internal/domain"
)

const sheetName = "Products"

// ProductsXLSX renders the product catalog as an XLSX workbook and returns
// its bytes.
func ProductsXLSX(products []domain.CanonicalProduct) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if index, _ := f.GetSheetIndex(sheetName); index == -1 {
		if _, err := f.NewSheet(sheetName); err != nil {
			return nil, fmt.Errorf("creating sheet: %w", err)
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(activeIndex)
	// The default sheet excelize creates is not needed.
	_ = f.DeleteSheet("Sheet1")

	for i, h := range csvColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	row := 2
	for i := range products {
		p := &products[i]
		values := []any{
			p.CatalogNumber,
			strOrEmpty(p.Barcode),
			p.Description,
			strOrEmpty(p.ShortName),
			p.Quantity,
			p.UnitPrice,
			floatValueOrNil(p.SalePrice),
			p.LineTotal,
			floatValueOrNil(p.MinStock),
			floatValueOrNil(p.MaxStock),
		}
		for col, v := range values {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func floatValueOrNil(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
