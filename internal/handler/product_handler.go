package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shelfscan/internal/domain"
	"shelfscan/internal/export"
	"shelfscan/internal/port"
)

// exportPageSize is the batch size used when streaming the catalog export.
const exportPageSize = 500

// ProductHandler handles product catalog endpoints.
type ProductHandler struct {
	productRepo port.ProductRepository
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productRepo port.ProductRepository) *ProductHandler {
	return &ProductHandler{productRepo: productRepo}
}

// List handles GET /api/v1/products
func (h *ProductHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	products, total, err := h.productRepo.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, products, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByCatalogNumber handles GET /api/v1/products/:catalogNumber
func (h *ProductHandler) GetByCatalogNumber(c *gin.Context) {
	product, err := h.productRepo.GetByCatalogNumber(c.Request.Context(), c.Param("catalogNumber"))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, product)
}

// Export handles GET /api/v1/products/export?format=csv|xlsx
func (h *ProductHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	switch format {
	case "csv":
		h.exportCSV(c)
	case "xlsx":
		h.exportXLSX(c)
	default:
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be 'csv' or 'xlsx'")
	}
}

func (h *ProductHandler) exportCSV(c *gin.Context) {
	filename := fmt.Sprintf("products_%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if _, err := c.Writer.Write(export.BOM); err != nil {
		return
	}

	w := export.NewCSVWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		return
	}

	offset := 0
	for {
		products, _, err := h.productRepo.List(c.Request.Context(), offset, exportPageSize)
		if err != nil {
			// Headers are already sent, so the best we can do is stop.
			return
		}
		if len(products) == 0 {
			break
		}
		if err := w.WriteProducts(products); err != nil {
			return
		}
		if len(products) < exportPageSize {
			break
		}
		offset += exportPageSize
	}

	_ = w.Flush()
}

func (h *ProductHandler) exportXLSX(c *gin.Context) {
	var all []domain.CanonicalProduct
	offset := 0
	for {
		products, _, err := h.productRepo.List(c.Request.Context(), offset, exportPageSize)
		if err != nil {
			HandleError(c, err)
			return
		}
		all = append(all, products...)
		if len(products) < exportPageSize {
			break
		}
		offset += exportPageSize
	}

	data, err := export.ProductsXLSX(all)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("products_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
