package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path"

	"github.com/google/uuid"

	"shelfscan/internal/config"
	"shelfscan/internal/domain"
	"shelfscan/internal/extract"
	"shelfscan/internal/pipeline"
	"shelfscan/internal/port"
	"shelfscan/internal/reconcile"
)

// ResolveRequest carries the human decision for a pending scan. Either a
// bulk decision or per-item decisions; Confirm=false abandons the session.
type ResolveRequest struct {
	Confirm      bool
	BulkDecision *domain.PriceDecision
	Decisions    map[string]domain.PriceDecision
}

// ScanService owns the scan lifecycle from upload to resolved catalog write.
type ScanService interface {
	Upload(ctx context.Context, invoiceDataURI string) (*domain.Scan, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Scan, error)
	ExtractHeader(ctx context.Context, invoiceDataURI string) (*domain.InvoiceSummary, error)
	// ProcessScan runs the pipeline for one claimed scan. The scan must
	// already be in processing status with Attempts incremented.
	ProcessScan(ctx context.Context, scan *domain.Scan)
	Resolve(ctx context.Context, id uuid.UUID, req ResolveRequest) (*domain.Scan, error)
}

type scanService struct {
	scanRepo    port.ScanRepository
	productRepo port.ProductRepository
	storage     port.ObjectStorage
	alerts      port.AlertSender
	pipe        *pipeline.Pipeline
	bucket      string
}

// NewScanService creates a new ScanService implementation.
func NewScanService(
	scanRepo port.ScanRepository,
	productRepo port.ProductRepository,
	storage port.ObjectStorage,
	alerts port.AlertSender,
	pipe *pipeline.Pipeline,
	s3cfg *config.S3Config,
) ScanService {
	return &scanService{
		scanRepo:    scanRepo,
		productRepo: productRepo,
		storage:     storage,
		alerts:      alerts,
		pipe:        pipe,
		bucket:      s3cfg.Bucket,
	}
}

var extByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Upload validates the payload, archives the image, and queues a scan for
// the worker.
func (s *scanService) Upload(ctx context.Context, invoiceDataURI string) (*domain.Scan, error) {
	contentType, imageBytes, err := pipeline.ParseDataURI(invoiceDataURI)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	key := path.Join("scans", id.String()+extByContentType[contentType])

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.bucket,
		Key:         key,
		Body:        bytes.NewReader(imageBytes),
		ContentType: contentType,
	}); err != nil {
		return nil, fmt.Errorf("archiving scan image: %w", err)
	}

	scan := &domain.Scan{
		ID:          id,
		Status:      domain.ScanStatusQueued,
		ImageKey:    key,
		ContentType: contentType,
	}
	if err := s.scanRepo.Create(ctx, scan); err != nil {
		return nil, err
	}

	log.Printf("scanService: scan %s queued (%d bytes, %s)", id, len(imageBytes), contentType)
	return scan, nil
}

func (s *scanService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Scan, error) {
	return s.scanRepo.GetByID(ctx, id)
}

// ExtractHeader runs header-only extraction synchronously; nothing is
// persisted.
func (s *scanService) ExtractHeader(ctx context.Context, invoiceDataURI string) (*domain.InvoiceSummary, error) {
	return s.pipe.ExtractHeader(ctx, invoiceDataURI)
}

// ProcessScan performs the core pipeline run: image download, extraction
// with retries, normalization, prior-price lookup, and reconciliation setup.
func (s *scanService) ProcessScan(ctx context.Context, scan *domain.Scan) {
	imageBytes, err := s.storage.Download(ctx, s.bucket, scan.ImageKey)
	if err != nil {
		s.failScan(ctx, scan, fmt.Sprintf("downloading scan image: %v", err))
		return
	}

	dataURI := fmt.Sprintf("data:%s;base64,%s", scan.ContentType, base64.StdEncoding.EncodeToString(imageBytes))

	result, err := s.pipe.ExtractProducts(ctx, dataURI)
	if err != nil {
		s.failScan(ctx, scan, userFacingError(err))
		return
	}

	scan.SupplierName = result.Summary.SupplierName
	scan.InvoiceNumber = result.Summary.InvoiceNumber
	scan.InvoiceDate = result.Summary.InvoiceDate
	scan.TotalAmount = result.Summary.TotalAmount
	scan.PaymentMethod = result.Summary.PaymentMethod

	productsJSON, err := json.Marshal(result.Products)
	if err != nil {
		s.failScan(ctx, scan, fmt.Sprintf("encoding products: %v", err))
		return
	}
	scan.Products = productsJSON

	catalogNumbers := make([]string, 0, len(result.Products))
	for i := range result.Products {
		catalogNumbers = append(catalogNumbers, result.Products[i].CatalogNumber)
	}
	priorPrices, err := s.productRepo.UnitPricesByCatalog(ctx, catalogNumbers)
	if err != nil {
		s.failScan(ctx, scan, fmt.Sprintf("looking up prior prices: %v", err))
		return
	}

	session := reconcile.NewSession(result.Products, priorPrices)
	if !session.HasDiscrepancies() {
		if err := s.productRepo.UpsertBatch(ctx, session.Confirm()); err != nil {
			s.failScan(ctx, scan, fmt.Sprintf("saving products: %v", err))
			return
		}
		scan.Status = domain.ScanStatusCompleted
		scan.ScanError = ""
		if err := s.scanRepo.Update(ctx, scan); err != nil {
			log.Printf("scanService: updating completed scan %s: %v", scan.ID, err)
		}
		log.Printf("scanService: scan %s completed, %d products saved", scan.ID, len(result.Products))
		return
	}

	discrepancies := session.Discrepancies()
	discrepanciesJSON, err := json.Marshal(discrepancies)
	if err != nil {
		s.failScan(ctx, scan, fmt.Sprintf("encoding discrepancies: %v", err))
		return
	}
	scan.Discrepancies = discrepanciesJSON
	scan.Status = domain.ScanStatusPendingReview
	scan.ScanError = ""
	if err := s.scanRepo.Update(ctx, scan); err != nil {
		log.Printf("scanService: updating pending scan %s: %v", scan.ID, err)
		return
	}

	if err := s.alerts.SendPriceReviewAlert(ctx, scan.ID, len(discrepancies)); err != nil {
		log.Printf("scanService: sending review alert for scan %s: %v", scan.ID, err)
	}
	log.Printf("scanService: scan %s awaiting review, %d discrepancies", scan.ID, len(discrepancies))
}

// Resolve applies the human decision for a pending scan. Confirm writes the
// resolved batch; cancel writes nothing at all.
func (s *scanService) Resolve(ctx context.Context, id uuid.UUID, req ResolveRequest) (*domain.Scan, error) {
	scan, err := s.scanRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if scan.Status != domain.ScanStatusPendingReview {
		return nil, domain.ErrScanNotPending
	}

	products, err := scan.ExtractedProducts()
	if err != nil {
		return nil, fmt.Errorf("decoding stored products: %w", err)
	}
	discrepancies, err := scan.PendingDiscrepancies()
	if err != nil {
		return nil, fmt.Errorf("decoding stored discrepancies: %w", err)
	}

	session := reconcile.Resume(products, discrepancies)

	if !req.Confirm {
		session.Cancel()
		scan.Status = domain.ScanStatusCancelled
		if err := s.scanRepo.Update(ctx, scan); err != nil {
			return nil, err
		}
		log.Printf("scanService: scan %s cancelled, no products written", scan.ID)
		return scan, nil
	}

	if req.BulkDecision != nil {
		if err := session.DecideAll(*req.BulkDecision); err != nil {
			return nil, err
		}
	}
	for discrepancyID, decision := range req.Decisions {
		if err := session.Decide(discrepancyID, decision); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.UpsertBatch(ctx, session.Confirm()); err != nil {
		return nil, fmt.Errorf("saving resolved products: %w", err)
	}
	scan.Status = domain.ScanStatusCompleted
	if err := s.scanRepo.Update(ctx, scan); err != nil {
		return nil, err
	}
	log.Printf("scanService: scan %s resolved, %d products saved", scan.ID, len(products))
	return scan, nil
}

func (s *scanService) failScan(ctx context.Context, scan *domain.Scan, msg string) {
	scan.Status = domain.ScanStatusFailed
	scan.ScanError = msg
	if err := s.scanRepo.Update(ctx, scan); err != nil {
		log.Printf("scanService: updating failed scan %s: %v", scan.ID, err)
	}
	log.Printf("scanService: scan %s failed: %s", scan.ID, msg)
}

// userFacingError maps terminal pipeline errors to the message shown to the
// person who uploaded the scan.
func userFacingError(err error) string {
	if errors.Is(err, extract.ErrRetryExhausted) {
		return "The scan service is temporarily unavailable. Please try again later."
	}
	return fmt.Sprintf("Scan error: %v", err)
}
