package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shelfscan/internal/domain"
	"shelfscan/internal/service"
)

// ScanHandler handles invoice scan endpoints.
type ScanHandler struct {
	scanService service.ScanService
}

// NewScanHandler creates a new ScanHandler.
func NewScanHandler(scanService service.ScanService) *ScanHandler {
	return &ScanHandler{scanService: scanService}
}

// Create handles POST /api/v1/scans
func (h *ScanHandler) Create(c *gin.Context) {
	var req struct {
		Invoice string `json:"invoice" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invoice data URI is required")
		return
	}

	scan, err := h.scanService.Upload(c.Request.Context(), req.Invoice)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, scan)
}

// GetByID handles GET /api/v1/scans/:id
func (h *ScanHandler) GetByID(c *gin.Context) {
	scanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid scan ID")
		return
	}

	scan, err := h.scanService.GetByID(c.Request.Context(), scanID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, scan)
}

// Resolve handles POST /api/v1/scans/:id/resolution
func (h *ScanHandler) Resolve(c *gin.Context) {
	scanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid scan ID")
		return
	}

	var req struct {
		Confirm      bool                            `json:"confirm"`
		BulkDecision *domain.PriceDecision           `json:"bulk_decision"`
		Decisions    map[string]domain.PriceDecision `json:"decisions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "request body is required")
		return
	}

	if req.BulkDecision != nil && !req.BulkDecision.IsValid() {
		RespondError(c, http.StatusBadRequest, "INVALID_DECISION", "bulk_decision must be 'keep_existing' or 'adopt_new'")
		return
	}

	scan, err := h.scanService.Resolve(c.Request.Context(), scanID, service.ResolveRequest{
		Confirm:      req.Confirm,
		BulkDecision: req.BulkDecision,
		Decisions:    req.Decisions,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, scan)
}

// ExtractHeader handles POST /api/v1/scans/header
func (h *ScanHandler) ExtractHeader(c *gin.Context) {
	var req struct {
		Invoice string `json:"invoice" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invoice data URI is required")
		return
	}

	summary, err := h.scanService.ExtractHeader(c.Request.Context(), req.Invoice)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, summary)
}
