package noop

import (
	"context"
	"log"

	"github.com/google/uuid"

	"shelfscan/internal/port"
)

type noopSender struct{}

// NewNoopSender creates an AlertSender that only logs. Used in development
// and when no reviewer address is configured.
func NewNoopSender() port.AlertSender {
	return &noopSender{}
}

func (s *noopSender) SendPriceReviewAlert(_ context.Context, scanID uuid.UUID, discrepancyCount int) error {
	log.Printf("noopSender: scan %s awaiting price review (%d discrepancies)", scanID, discrepancyCount)
	return nil
}
