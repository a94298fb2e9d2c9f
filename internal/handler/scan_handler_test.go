package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shelfscan/internal/domain"
	"shelfscan/internal/handler"
	"shelfscan/internal/service"
	"shelfscan/mocks"
)

func setupScanRouter(svc service.ScanService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewScanHandler(svc)
	r := gin.New()
	r.POST("/api/v1/scans", h.Create)
	r.GET("/api/v1/scans/:id", h.GetByID)
	r.POST("/api/v1/scans/:id/resolution", h.Resolve)
	r.POST("/api/v1/scans/header", h.ExtractHeader)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestScanHandler_Create(t *testing.T) {
	svc := new(mocks.MockScanService)
	scan := &domain.Scan{ID: uuid.New(), Status: domain.ScanStatusQueued}
	svc.On("Upload", mock.Anything, "data:image/jpeg;base64,aW1n").Return(scan, nil).Once()

	r := setupScanRouter(svc)
	w := doJSON(t, r, http.MethodPost, "/api/v1/scans", gin.H{"invoice": "data:image/jpeg;base64,aW1n"})

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	svc.AssertExpectations(t)
}

func TestScanHandler_CreateMissingInvoice(t *testing.T) {
	svc := new(mocks.MockScanService)
	r := setupScanRouter(svc)

	w := doJSON(t, r, http.MethodPost, "/api/v1/scans", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestScanHandler_CreateUnsupportedType(t *testing.T) {
	svc := new(mocks.MockScanService)
	svc.On("Upload", mock.Anything, mock.AnythingOfType("string")).
		Return(nil, domain.ErrUnsupportedImageType).Once()

	r := setupScanRouter(svc)
	w := doJSON(t, r, http.MethodPost, "/api/v1/scans", gin.H{"invoice": "data:image/gif;base64,aW1n"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNSUPPORTED_IMAGE_TYPE", resp.Error.Code)
}

func TestScanHandler_GetByID_InvalidID(t *testing.T) {
	svc := new(mocks.MockScanService)
	r := setupScanRouter(svc)

	w := doJSON(t, r, http.MethodGet, "/api/v1/scans/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScanHandler_GetByID_NotFound(t *testing.T) {
	svc := new(mocks.MockScanService)
	id := uuid.New()
	svc.On("GetByID", mock.Anything, id).Return(nil, domain.ErrScanNotFound).Once()

	r := setupScanRouter(svc)
	w := doJSON(t, r, http.MethodGet, "/api/v1/scans/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScanHandler_Resolve(t *testing.T) {
	svc := new(mocks.MockScanService)
	id := uuid.New()
	resolved := &domain.Scan{ID: id, Status: domain.ScanStatusCompleted}

	svc.On("Resolve", mock.Anything, id, mock.MatchedBy(func(req service.ResolveRequest) bool {
		return req.Confirm && req.Decisions["OO-100"] == domain.DecisionAdoptNew
	})).Return(resolved, nil).Once()

	r := setupScanRouter(svc)
	w := doJSON(t, r, http.MethodPost, "/api/v1/scans/"+id.String()+"/resolution", gin.H{
		"confirm":   true,
		"decisions": gin.H{"OO-100": "adopt_new"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestScanHandler_ResolveInvalidBulkDecision(t *testing.T) {
	svc := new(mocks.MockScanService)
	id := uuid.New()

	r := setupScanRouter(svc)
	w := doJSON(t, r, http.MethodPost, "/api/v1/scans/"+id.String()+"/resolution", gin.H{
		"confirm":       true,
		"bulk_decision": "split_the_difference",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything)
}

func TestScanHandler_ResolveNotPending(t *testing.T) {
	svc := new(mocks.MockScanService)
	id := uuid.New()
	svc.On("Resolve", mock.Anything, id, mock.Anything).Return(nil, domain.ErrScanNotPending).Once()

	r := setupScanRouter(svc)
	w := doJSON(t, r, http.MethodPost, "/api/v1/scans/"+id.String()+"/resolution", gin.H{"confirm": true})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestScanHandler_ExtractHeader(t *testing.T) {
	svc := new(mocks.MockScanService)
	supplier := "Acme Wholesale"
	svc.On("ExtractHeader", mock.Anything, mock.AnythingOfType("string")).
		Return(&domain.InvoiceSummary{SupplierName: &supplier}, nil).Once()

	r := setupScanRouter(svc)
	w := doJSON(t, r, http.MethodPost, "/api/v1/scans/header", gin.H{"invoice": "data:image/jpeg;base64,aW1n"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Acme Wholesale")
}
