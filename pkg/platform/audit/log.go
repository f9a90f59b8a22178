// Package audit records privacy-transformed outcomes of routing decisions and
// consent lifecycle changes.
//
// Subject identifiers are hashed before anything is persisted and message text
// is reduced to its length. The raw values never reach a Store or a Sink.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"naijacare/pkg/platform/privacy"
)

// Log is the append-only audit trail.
type Log struct {
	store  Store
	hasher privacy.Hasher
	sinks  []Sink
	logger *slog.Logger
}

// Option configures the Log.
type Option func(*Log)

// WithHasher sets the subject hasher. The default is unsalted.
func WithHasher(h privacy.Hasher) Option {
	return func(l *Log) {
		l.hasher = h
	}
}

// WithSink adds a downstream sink.
func WithSink(s Sink) Option {
	return func(l *Log) {
		l.sinks = append(l.sinks, s)
	}
}

// WithLogger sets a logger for sink failures.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) {
		l.logger = logger
	}
}

func NewLog(store Store, opts ...Option) *Log {
	l := &Log{store: store}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// HashSubject exposes the configured one-way transform so callers can log or
// correlate by hash.
func (l *Log) HashSubject(subjectID string) string {
	return l.hasher.Hash(subjectID)
}

// Log appends one entry for a routing decision. Only the hash of subjectID and
// the character count of messageText are kept.
func (l *Log) Log(ctx context.Context, subjectID, decision, messageText string, isEmergency bool, at time.Time) error {
	entry := Entry{
		ID:               uuid.New(),
		SubjectIDHash:    l.hasher.Hash(subjectID),
		Decision:         decision,
		Timestamp:        at,
		MessageLength:    utf8.RuneCountInString(messageText),
		HasEmergencyFlag: isEmergency,
	}
	if err := l.store.Append(ctx, entry); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	for _, sink := range l.sinks {
		if err := sink.Publish(ctx, entry); err != nil && l.logger != nil {
			l.logger.WarnContext(ctx, "audit sink publish failed",
				"entry_id", entry.ID.String(),
				"error", err,
			)
		}
	}
	return nil
}

// ToList returns a copy of every entry in insertion order.
func (l *Log) ToList(ctx context.Context) ([]Entry, error) {
	return l.store.List(ctx)
}

// Stats sums the stored entries.
func (l *Log) Stats(ctx context.Context) (Stats, error) {
	entries, err := l.store.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Summarize(entries), nil
}

// RecordConsent appends a consent lifecycle event for subjectID.
func (l *Log) RecordConsent(ctx context.Context, subjectID string, action ConsentAction, details map[string]string, at time.Time) error {
	event := ConsentEvent{
		ID:            uuid.New(),
		SubjectIDHash: l.hasher.Hash(subjectID),
		Action:        action,
		Timestamp:     at,
		Details:       maps.Clone(details),
	}
	if event.Details == nil {
		event.Details = map[string]string{}
	}
	if err := l.store.AppendConsent(ctx, event); err != nil {
		return fmt.Errorf("append consent event: %w", err)
	}
	return nil
}

// ConsentEvents returns consent lifecycle events in insertion order.
func (l *Log) ConsentEvents(ctx context.Context) ([]ConsentEvent, error) {
	return l.store.ListConsent(ctx)
}
