// Package pipeline wires the extraction controller, schema contract, and
// normalizer into the two extraction entry points.
package pipeline

import (
	"context"
	"fmt"

	"shelfscan/internal/domain"
	"shelfscan/internal/extract"
	"shelfscan/internal/normalize"
	"shelfscan/internal/port"
)

// ProductExtraction is the result of a full product-level extraction.
type ProductExtraction struct {
	Products []domain.CanonicalProduct
	Summary  domain.InvoiceSummary
}

// Pipeline runs one uploaded document through extract → validate → normalize.
// Instances are stateless; concurrent documents run as independent calls.
type Pipeline struct {
	controller *extract.Controller
}

// New creates a pipeline on top of a configured retry controller.
func New(controller *extract.Controller) *Pipeline {
	return &Pipeline{controller: controller}
}

// ExtractProducts extracts all line items plus header data from an invoice
// photo supplied as a data URI. On error the returned extraction is nil and
// must be ignored.
func (p *Pipeline) ExtractProducts(ctx context.Context, invoiceDataURI string) (*ProductExtraction, error) {
	contentType, imageBytes, err := ParseDataURI(invoiceDataURI)
	if err != nil {
		return nil, err
	}

	raw, err := p.controller.Run(ctx, port.ExtractInput{
		ImageBytes:  imageBytes,
		ContentType: contentType,
		Instruction: extract.BuildInvoicePrompt(),
	}, extract.ValidateInvoiceFunc)
	if err != nil {
		return nil, err
	}

	invoice, err := extract.ValidateInvoice(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding validated invoice: %w", err)
	}

	return &ProductExtraction{
		Products: normalize.Products(invoice.Lines),
		Summary:  normalize.Header(invoice.Header),
	}, nil
}

// ExtractHeader extracts only invoice-level details from an invoice photo.
func (p *Pipeline) ExtractHeader(ctx context.Context, invoiceDataURI string) (*domain.InvoiceSummary, error) {
	contentType, imageBytes, err := ParseDataURI(invoiceDataURI)
	if err != nil {
		return nil, err
	}

	raw, err := p.controller.Run(ctx, port.ExtractInput{
		ImageBytes:  imageBytes,
		ContentType: contentType,
		Instruction: extract.BuildHeaderPrompt(),
	}, extract.ValidateHeaderFunc)
	if err != nil {
		return nil, err
	}

	header, err := extract.ValidateHeader(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding validated header: %w", err)
	}

	summary := normalize.Header(header)
	return &summary, nil
}
