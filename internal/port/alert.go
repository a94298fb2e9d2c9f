package port

import (
	"context"

	"github.com/google/uuid"
)

// AlertSender notifies a human reviewer that a scan is waiting on a price
// decision.
type AlertSender interface {
	SendPriceReviewAlert(ctx context.Context, scanID uuid.UUID, discrepancyCount int) error
}
