package domain

// ScanStatus represents the lifecycle of an uploaded invoice scan.
type ScanStatus string

const (
	ScanStatusQueued        ScanStatus = "queued"
	ScanStatusProcessing    ScanStatus = "processing"
	ScanStatusPendingReview ScanStatus = "pending_review"
	ScanStatusCompleted     ScanStatus = "completed"
	ScanStatusCancelled     ScanStatus = "cancelled"
	ScanStatusFailed        ScanStatus = "failed"
)

// PriceDecision is the human resolution for one price discrepancy.
type PriceDecision string

const (
	DecisionKeepExisting PriceDecision = "keep_existing"
	DecisionAdoptNew     PriceDecision = "adopt_new"
)

// IsValid reports whether d is a known decision value.
func (d PriceDecision) IsValid() bool {
	return d == DecisionKeepExisting || d == DecisionAdoptNew
}

// AllowedImageTypes holds the MIME types the extraction provider accepts.
var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}
