package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shelfscan/internal/domain"
	"shelfscan/internal/extract"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var schemaErr *extract.SchemaError
	switch {
	case errors.Is(err, domain.ErrEmptyPayload):
		return http.StatusBadRequest, "EMPTY_PAYLOAD", "no image data provided"
	case errors.Is(err, domain.ErrInvalidDataURI):
		return http.StatusBadRequest, "INVALID_DATA_URI", "invoice image must be a base64 data URI"
	case errors.Is(err, domain.ErrUnsupportedImageType):
		return http.StatusBadRequest, "UNSUPPORTED_IMAGE_TYPE", "unsupported image type; allowed: jpeg, png, webp"
	case errors.Is(err, domain.ErrScanNotFound):
		return http.StatusNotFound, "SCAN_NOT_FOUND", "scan not found"
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found"
	case errors.Is(err, domain.ErrScanNotPending):
		return http.StatusConflict, "SCAN_NOT_PENDING", "scan is not awaiting price review"
	case errors.Is(err, domain.ErrInvalidDecision):
		return http.StatusBadRequest, "INVALID_DECISION", "decision must be 'keep_existing' or 'adopt_new'"
	case errors.Is(err, extract.ErrRetryExhausted):
		return http.StatusServiceUnavailable, "EXTRACTION_UNAVAILABLE", "The scan service is temporarily unavailable. Please try again later."
	case errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity, "EXTRACTION_INVALID", "could not extract a valid invoice from the image"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}

// parsePagination reads offset/limit query parameters with sane bounds.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return offset, limit
}
