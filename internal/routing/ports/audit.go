package ports

import (
	"context"
	"time"

	audit "naijacare/pkg/platform/audit"
)

// AuditPort appends and reads routing audit entries. *audit.Log satisfies it.
type AuditPort interface {
	Log(ctx context.Context, subjectID, decision, messageText string, isEmergency bool, at time.Time) error
	ToList(ctx context.Context) ([]audit.Entry, error)
	Stats(ctx context.Context) (audit.Stats, error)
	HashSubject(subjectID string) string
}
