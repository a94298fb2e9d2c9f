package handler_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"shelfscan/internal/domain"
	"shelfscan/internal/extract"
	"shelfscan/internal/handler"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"empty payload", domain.ErrEmptyPayload, http.StatusBadRequest, "EMPTY_PAYLOAD"},
		{"invalid data uri", domain.ErrInvalidDataURI, http.StatusBadRequest, "INVALID_DATA_URI"},
		{"unsupported image type", domain.ErrUnsupportedImageType, http.StatusBadRequest, "UNSUPPORTED_IMAGE_TYPE"},
		{"scan not found", domain.ErrScanNotFound, http.StatusNotFound, "SCAN_NOT_FOUND"},
		{"product not found", domain.ErrProductNotFound, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
		{"scan not pending", domain.ErrScanNotPending, http.StatusConflict, "SCAN_NOT_PENDING"},
		{"invalid decision", domain.ErrInvalidDecision, http.StatusBadRequest, "INVALID_DECISION"},
		{"retry exhausted", extract.ErrRetryExhausted, http.StatusServiceUnavailable, "EXTRACTION_UNAVAILABLE"},
		{"schema violation", &extract.SchemaError{Fields: []string{"/line_items"}}, http.StatusUnprocessableEntity, "EXTRACTION_INVALID"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, msg := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestMapDomainError_WrappedSentinels(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), domain.ErrScanNotPending)
	status, code, _ := handler.MapDomainError(wrapped)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "SCAN_NOT_PENDING", code)
}

func TestMapDomainError_RetryExhaustedMessageTellsUserToRetry(t *testing.T) {
	_, _, msg := handler.MapDomainError(extract.ErrRetryExhausted)
	assert.Contains(t, msg, "try again later")
}
