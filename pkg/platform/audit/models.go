package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry records the outcome of one routing decision. It never carries the raw
// sender identifier or message text: only a hash of the sender and the length
// of the text.
type Entry struct {
	ID               uuid.UUID `json:"id"`
	SubjectIDHash    string    `json:"clinic_id_hash"`
	Decision         string    `json:"decision"`
	Timestamp        time.Time `json:"timestamp"`
	MessageLength    int       `json:"message_length"`
	HasEmergencyFlag bool      `json:"has_emergency_flag"`
}

// ConsentAction names a consent lifecycle transition.
type ConsentAction string

const (
	ActionConsentGranted    ConsentAction = "consent_granted"
	ActionConsentWithdrawn  ConsentAction = "consent_withdrawn"
	ActionConsentAnonymized ConsentAction = "consent_anonymized"
)

// ConsentEvent records a consent lifecycle transition for compliance review.
// Like Entry it is keyed by the subject hash, never the raw identifier.
type ConsentEvent struct {
	ID            uuid.UUID         `json:"id"`
	SubjectIDHash string            `json:"subject_id_hash"`
	Action        ConsentAction     `json:"action"`
	Timestamp     time.Time         `json:"timestamp"`
	Details       map[string]string `json:"details"`
}

// Store is append-only. Records come back in insertion order.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	List(ctx context.Context) ([]Entry, error)
	AppendConsent(ctx context.Context, event ConsentEvent) error
	ListConsent(ctx context.Context) ([]ConsentEvent, error)
}

// Sink receives entries after they are stored, for fan-out to downstream
// consumers. Sink failures never undo the stored entry.
type Sink interface {
	Publish(ctx context.Context, entry Entry) error
}
