// Package reconcile compares newly extracted unit prices against previously
// recorded catalog prices and applies a human resolution.
package reconcile

import (
	"fmt"

	"shelfscan/internal/domain"
)

// Session holds one invoice batch through a resolution. Decisions default to
// keep_existing; the batch resolves all-or-nothing — an abandoned session
// yields no records.
type Session struct {
	products      []domain.CanonicalProduct
	discrepancies []domain.PriceDiscrepancy
	decisions     map[string]domain.PriceDecision
	cancelled     bool
}

// NewSession builds a session from normalized products and the prior unit
// prices known for their catalog numbers. Items absent from existing are new
// to the catalog and never discrepant.
func NewSession(products []domain.CanonicalProduct, existing map[string]float64) *Session {
	s := &Session{
		products:  products,
		decisions: make(map[string]domain.PriceDecision),
	}
	for i := range products {
		p := &products[i]
		prior, known := existing[p.CatalogNumber]
		if !known || prior == p.UnitPrice {
			continue
		}
		s.discrepancies = append(s.discrepancies, domain.PriceDiscrepancy{
			ID:            p.CatalogNumber,
			Description:   p.Description,
			ExistingPrice: prior,
			NewPrice:      p.UnitPrice,
		})
		s.decisions[p.CatalogNumber] = domain.DecisionKeepExisting
	}
	return s
}

// Resume rebuilds a session from a persisted product snapshot and its
// discrepancy set, for resolutions that arrive after a restart.
func Resume(products []domain.CanonicalProduct, discrepancies []domain.PriceDiscrepancy) *Session {
	s := &Session{
		products:      products,
		discrepancies: discrepancies,
		decisions:     make(map[string]domain.PriceDecision, len(discrepancies)),
	}
	for _, d := range discrepancies {
		s.decisions[d.ID] = domain.DecisionKeepExisting
	}
	return s
}

// Discrepancies returns the discrepancy set for this batch.
func (s *Session) Discrepancies() []domain.PriceDiscrepancy {
	return s.discrepancies
}

// HasDiscrepancies reports whether any item needs a decision.
func (s *Session) HasDiscrepancies() bool {
	return len(s.discrepancies) > 0
}

// Decide records the resolution for one discrepancy.
func (s *Session) Decide(id string, decision domain.PriceDecision) error {
	if !decision.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidDecision, decision)
	}
	if _, ok := s.decisions[id]; !ok {
		return fmt.Errorf("no discrepancy for id %q", id)
	}
	s.decisions[id] = decision
	return nil
}

// DecideAll applies one decision to every discrepancy. The decision map is
// replaced in a single step; no partial bulk application is observable.
func (s *Session) DecideAll(decision domain.PriceDecision) error {
	if !decision.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidDecision, decision)
	}
	replacement := make(map[string]domain.PriceDecision, len(s.discrepancies))
	for _, d := range s.discrepancies {
		replacement[d.ID] = decision
	}
	s.decisions = replacement
	return nil
}

// Cancel abandons the session. A cancelled session resolves to nothing.
func (s *Session) Cancel() {
	s.cancelled = true
}

// Confirm materializes the resolved product list. The output count equals
// the input count; items without a discrepancy pass through unchanged, and a
// keep_existing decision substitutes the previously recorded unit price.
// Returns nil after Cancel.
func (s *Session) Confirm() []domain.CanonicalProduct {
	if s.cancelled {
		return nil
	}

	existingByID := make(map[string]float64, len(s.discrepancies))
	for _, d := range s.discrepancies {
		existingByID[d.ID] = d.ExistingPrice
	}

	resolved := make([]domain.CanonicalProduct, len(s.products))
	copy(resolved, s.products)
	for i := range resolved {
		decision, ok := s.decisions[resolved[i].CatalogNumber]
		if !ok {
			continue
		}
		if decision == domain.DecisionKeepExisting {
			resolved[i].UnitPrice = existingByID[resolved[i].CatalogNumber]
		}
	}
	return resolved
}
