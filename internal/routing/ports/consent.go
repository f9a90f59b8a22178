package ports

import (
	"context"

	"naijacare/internal/consent/models"
)

// ConsentPort looks up a sender's consent record for the routing gate.
// Defined here so routing does not depend on the consent module's service.
type ConsentPort interface {
	// Lookup returns (nil, nil) when the subject has no record.
	Lookup(ctx context.Context, subjectID string) (*models.Record, error)
}
