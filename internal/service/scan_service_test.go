package service_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shelfscan/internal/config"
	"shelfscan/internal/domain"
	"shelfscan/internal/extract"
	"shelfscan/internal/pipeline"
	"shelfscan/internal/port"
	"shelfscan/internal/service"
	"shelfscan/mocks"
)

type serviceFixture struct {
	scanRepo    *mocks.MockScanRepo
	productRepo *mocks.MockProductRepo
	storage     *mocks.MockObjectStorage
	alerts      *mocks.MockAlertSender
	extractor   *mocks.MockVisionExtractor
	svc         service.ScanService
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		scanRepo:    new(mocks.MockScanRepo),
		productRepo: new(mocks.MockProductRepo),
		storage:     new(mocks.MockObjectStorage),
		alerts:      new(mocks.MockAlertSender),
		extractor:   new(mocks.MockVisionExtractor),
	}
	sleep := func(context.Context, time.Duration) error { return nil }
	controller := extract.NewControllerWithSleep(f.extractor, 3, time.Millisecond, sleep)
	pipe := pipeline.New(controller)
	f.svc = service.NewScanService(f.scanRepo, f.productRepo, f.storage, f.alerts, pipe, &config.S3Config{Bucket: "test-bucket"})
	return f
}

func imageDataURI() string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("fake image"))
}

func TestUpload_QueuesScan(t *testing.T) {
	f := newServiceFixture()
	f.storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "test-bucket" && in.ContentType == "image/jpeg"
	})).Return(&port.UploadOutput{Location: "s3://test-bucket/scans/x.jpg"}, nil).Once()
	f.scanRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Scan")).Return(nil).Once()

	scan, err := f.svc.Upload(context.Background(), imageDataURI())
	require.NoError(t, err)
	assert.Equal(t, domain.ScanStatusQueued, scan.Status)
	assert.Equal(t, "image/jpeg", scan.ContentType)
	assert.Contains(t, scan.ImageKey, "scans/")
	f.storage.AssertExpectations(t)
	f.scanRepo.AssertExpectations(t)
}

func TestUpload_RejectsInvalidPayloadBeforeStorage(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.Upload(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrEmptyPayload)

	_, err = f.svc.Upload(context.Background(), "data:application/pdf;base64,aGVsbG8=")
	assert.ErrorIs(t, err, domain.ErrUnsupportedImageType)

	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestProcessScan_CompletesWithoutDiscrepancies(t *testing.T) {
	f := newServiceFixture()
	scan := &domain.Scan{ID: uuid.New(), Status: domain.ScanStatusProcessing, ImageKey: "scans/x.jpg", ContentType: "image/jpeg", Attempts: 1}

	response := json.RawMessage(`{
		"header": {"supplier_name": "Acme Wholesale"},
		"line_items": [
			{"product_name": "Olive Oil 1L", "catalog_number": "OO-100", "quantity": 12, "line_total": 102}
		]
	}`)

	f.storage.On("Download", mock.Anything, "test-bucket", "scans/x.jpg").Return([]byte("fake image"), nil).Once()
	f.extractor.On("Extract", mock.Anything, mock.Anything).Return(response, nil).Once()
	f.productRepo.On("UnitPricesByCatalog", mock.Anything, []string{"OO-100"}).
		Return(map[string]float64{}, nil).Once()
	f.productRepo.On("UpsertBatch", mock.Anything, mock.MatchedBy(func(products []domain.CanonicalProduct) bool {
		return len(products) == 1 && products[0].CatalogNumber == "OO-100"
	})).Return(nil).Once()
	f.scanRepo.On("Update", mock.Anything, scan).Return(nil).Once()

	f.svc.ProcessScan(context.Background(), scan)

	assert.Equal(t, domain.ScanStatusCompleted, scan.Status)
	require.NotNil(t, scan.SupplierName)
	assert.Equal(t, "Acme Wholesale", *scan.SupplierName)
	f.productRepo.AssertExpectations(t)
	f.alerts.AssertNotCalled(t, "SendPriceReviewAlert", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessScan_PendingReviewOnDiscrepancy(t *testing.T) {
	f := newServiceFixture()
	scan := &domain.Scan{ID: uuid.New(), Status: domain.ScanStatusProcessing, ImageKey: "scans/x.jpg", ContentType: "image/jpeg", Attempts: 1}

	response := json.RawMessage(`{
		"line_items": [
			{"product_name": "Olive Oil 1L", "catalog_number": "OO-100", "quantity": 12, "line_total": 102}
		]
	}`)

	f.storage.On("Download", mock.Anything, "test-bucket", "scans/x.jpg").Return([]byte("fake image"), nil).Once()
	f.extractor.On("Extract", mock.Anything, mock.Anything).Return(response, nil).Once()
	f.productRepo.On("UnitPricesByCatalog", mock.Anything, []string{"OO-100"}).
		Return(map[string]float64{"OO-100": 7.90}, nil).Once()
	f.scanRepo.On("Update", mock.Anything, scan).Return(nil).Once()
	f.alerts.On("SendPriceReviewAlert", mock.Anything, scan.ID, 1).Return(nil).Once()

	f.svc.ProcessScan(context.Background(), scan)

	assert.Equal(t, domain.ScanStatusPendingReview, scan.Status)

	discrepancies, err := scan.PendingDiscrepancies()
	require.NoError(t, err)
	require.Len(t, discrepancies, 1)
	assert.Equal(t, "OO-100", discrepancies[0].ID)
	assert.Equal(t, 7.90, discrepancies[0].ExistingPrice)
	assert.InDelta(t, 8.5, discrepancies[0].NewPrice, 1e-9)

	// No catalog write until a human decides.
	f.productRepo.AssertNotCalled(t, "UpsertBatch", mock.Anything, mock.Anything)
	f.alerts.AssertExpectations(t)
}

func TestProcessScan_TransientExhaustionFailsWithRetryMessage(t *testing.T) {
	f := newServiceFixture()
	scan := &domain.Scan{ID: uuid.New(), Status: domain.ScanStatusProcessing, ImageKey: "scans/x.jpg", ContentType: "image/jpeg", Attempts: 1}

	rateLimited := &extract.ProviderError{Provider: "gemini", StatusCode: http.StatusTooManyRequests, Err: errors.New("quota")}

	f.storage.On("Download", mock.Anything, "test-bucket", "scans/x.jpg").Return([]byte("fake image"), nil).Once()
	f.extractor.On("Extract", mock.Anything, mock.Anything).Return(nil, rateLimited)
	f.scanRepo.On("Update", mock.Anything, scan).Return(nil).Once()

	f.svc.ProcessScan(context.Background(), scan)

	assert.Equal(t, domain.ScanStatusFailed, scan.Status)
	assert.Contains(t, scan.ScanError, "temporarily unavailable")
	f.extractor.AssertNumberOfCalls(t, "Extract", 3)
}

func TestProcessScan_SchemaFailureMessage(t *testing.T) {
	f := newServiceFixture()
	scan := &domain.Scan{ID: uuid.New(), Status: domain.ScanStatusProcessing, ImageKey: "scans/x.jpg", ContentType: "image/jpeg", Attempts: 1}

	f.storage.On("Download", mock.Anything, "test-bucket", "scans/x.jpg").Return([]byte("fake image"), nil).Once()
	f.extractor.On("Extract", mock.Anything, mock.Anything).
		Return(json.RawMessage(`{"unexpected": true}`), nil)
	f.scanRepo.On("Update", mock.Anything, scan).Return(nil).Once()

	f.svc.ProcessScan(context.Background(), scan)

	assert.Equal(t, domain.ScanStatusFailed, scan.Status)
	assert.Contains(t, scan.ScanError, "Scan error:")
	f.extractor.AssertNumberOfCalls(t, "Extract", 1)
}

func pendingScan(t *testing.T) *domain.Scan {
	t.Helper()
	products := []domain.CanonicalProduct{
		{CatalogNumber: "OO-100", Description: "Olive Oil 1L", Quantity: 12, UnitPrice: 8.5, LineTotal: 102},
		{CatalogNumber: "FL-205", Description: "Flour 1kg", Quantity: 30, UnitPrice: 3.2, LineTotal: 96},
	}
	discrepancies := []domain.PriceDiscrepancy{
		{ID: "OO-100", Description: "Olive Oil 1L", ExistingPrice: 7.90, NewPrice: 8.5},
	}
	productsJSON, err := json.Marshal(products)
	require.NoError(t, err)
	discrepanciesJSON, err := json.Marshal(discrepancies)
	require.NoError(t, err)

	return &domain.Scan{
		ID:            uuid.New(),
		Status:        domain.ScanStatusPendingReview,
		ImageKey:      "scans/x.jpg",
		ContentType:   "image/jpeg",
		Products:      productsJSON,
		Discrepancies: discrepanciesJSON,
	}
}

func TestResolve_ConfirmAdoptNew(t *testing.T) {
	f := newServiceFixture()
	scan := pendingScan(t)

	f.scanRepo.On("GetByID", mock.Anything, scan.ID).Return(scan, nil).Once()
	f.productRepo.On("UpsertBatch", mock.Anything, mock.MatchedBy(func(products []domain.CanonicalProduct) bool {
		return len(products) == 2 && products[0].UnitPrice == 8.5
	})).Return(nil).Once()
	f.scanRepo.On("Update", mock.Anything, scan).Return(nil).Once()

	adopt := domain.DecisionAdoptNew
	updated, err := f.svc.Resolve(context.Background(), scan.ID, service.ResolveRequest{
		Confirm:      true,
		BulkDecision: &adopt,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ScanStatusCompleted, updated.Status)
	f.productRepo.AssertExpectations(t)
}

func TestResolve_ConfirmDefaultKeepsExisting(t *testing.T) {
	f := newServiceFixture()
	scan := pendingScan(t)

	f.scanRepo.On("GetByID", mock.Anything, scan.ID).Return(scan, nil).Once()
	f.productRepo.On("UpsertBatch", mock.Anything, mock.MatchedBy(func(products []domain.CanonicalProduct) bool {
		// Discrepant item reverts to the prior price; the rest pass through.
		return len(products) == 2 && products[0].UnitPrice == 7.90 && products[1].UnitPrice == 3.2
	})).Return(nil).Once()
	f.scanRepo.On("Update", mock.Anything, scan).Return(nil).Once()

	_, err := f.svc.Resolve(context.Background(), scan.ID, service.ResolveRequest{Confirm: true})
	require.NoError(t, err)
	f.productRepo.AssertExpectations(t)
}

func TestResolve_PerItemDecision(t *testing.T) {
	f := newServiceFixture()
	scan := pendingScan(t)

	f.scanRepo.On("GetByID", mock.Anything, scan.ID).Return(scan, nil).Once()
	f.productRepo.On("UpsertBatch", mock.Anything, mock.MatchedBy(func(products []domain.CanonicalProduct) bool {
		return products[0].UnitPrice == 8.5
	})).Return(nil).Once()
	f.scanRepo.On("Update", mock.Anything, scan).Return(nil).Once()

	_, err := f.svc.Resolve(context.Background(), scan.ID, service.ResolveRequest{
		Confirm:   true,
		Decisions: map[string]domain.PriceDecision{"OO-100": domain.DecisionAdoptNew},
	})
	require.NoError(t, err)
	f.productRepo.AssertExpectations(t)
}

func TestResolve_CancelWritesNothing(t *testing.T) {
	f := newServiceFixture()
	scan := pendingScan(t)

	f.scanRepo.On("GetByID", mock.Anything, scan.ID).Return(scan, nil).Once()
	f.scanRepo.On("Update", mock.Anything, scan).Return(nil).Once()

	updated, err := f.svc.Resolve(context.Background(), scan.ID, service.ResolveRequest{Confirm: false})
	require.NoError(t, err)
	assert.Equal(t, domain.ScanStatusCancelled, updated.Status)
	f.productRepo.AssertNotCalled(t, "UpsertBatch", mock.Anything, mock.Anything)
}

func TestResolve_RejectsNonPendingScan(t *testing.T) {
	f := newServiceFixture()
	scan := pendingScan(t)
	scan.Status = domain.ScanStatusCompleted

	f.scanRepo.On("GetByID", mock.Anything, scan.ID).Return(scan, nil).Once()

	_, err := f.svc.Resolve(context.Background(), scan.ID, service.ResolveRequest{Confirm: true})
	assert.ErrorIs(t, err, domain.ErrScanNotPending)
}

func TestResolve_InvalidDecision(t *testing.T) {
	f := newServiceFixture()
	scan := pendingScan(t)

	f.scanRepo.On("GetByID", mock.Anything, scan.ID).Return(scan, nil).Once()

	_, err := f.svc.Resolve(context.Background(), scan.ID, service.ResolveRequest{
		Confirm:   true,
		Decisions: map[string]domain.PriceDecision{"OO-100": "average_them"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDecision)
	f.productRepo.AssertNotCalled(t, "UpsertBatch", mock.Anything, mock.Anything)
}
