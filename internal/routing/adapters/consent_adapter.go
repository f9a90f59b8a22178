package adapters

import (
	"context"

	"naijacare/internal/consent/models"
	"naijacare/internal/routing/ports"
	dErrors "naijacare/pkg/domain-errors"
)

// ConsentReader is the slice of the consent service the adapter needs.
type ConsentReader interface {
	Get(ctx context.Context, subjectID string) (*models.Record, error)
}

// ConsentAdapter implements ports.ConsentPort by calling the consent service
// in-process.
type ConsentAdapter struct {
	consent ConsentReader
}

// NewConsentAdapter creates a new consent adapter.
func NewConsentAdapter(consent ConsentReader) ports.ConsentPort {
	return &ConsentAdapter{consent: consent}
}

// Lookup maps a not-found record to (nil, nil) so the gate reports
// consent_not_provided. Other failures pass through.
func (a *ConsentAdapter) Lookup(ctx context.Context, subjectID string) (*models.Record, error) {
	record, err := a.consent.Get(ctx, subjectID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}
