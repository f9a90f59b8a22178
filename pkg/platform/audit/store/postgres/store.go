package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	audit "naijacare/pkg/platform/audit"
	txcontext "naijacare/pkg/platform/tx"
)

// seq gives a total insertion order independent of clock skew between writers.
const schema = `
CREATE TABLE IF NOT EXISTS routing_audit_entries (
	seq                BIGSERIAL PRIMARY KEY,
	id                 UUID NOT NULL UNIQUE,
	clinic_id_hash     TEXT NOT NULL,
	decision           TEXT NOT NULL,
	timestamp          TIMESTAMPTZ NOT NULL,
	message_length     INTEGER NOT NULL,
	has_emergency_flag BOOLEAN NOT NULL
);
CREATE TABLE IF NOT EXISTS consent_audit_events (
	seq             BIGSERIAL PRIMARY KEY,
	id              UUID NOT NULL UNIQUE,
	subject_id_hash TEXT NOT NULL,
	action          TEXT NOT NULL,
	timestamp       TIMESTAMPTZ NOT NULL,
	details         JSONB NOT NULL DEFAULT '{}'::jsonb
)`

// Store implements audit.Store on postgres. Rows are only ever inserted.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the audit tables when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate audit tables: %w", err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, entry audit.Entry) error {
	query := `
		INSERT INTO routing_audit_entries (
			id, clinic_id_hash, decision, timestamp, message_length, has_emergency_flag
		)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, query,
		entry.ID,
		entry.SubjectIDHash,
		entry.Decision,
		entry.Timestamp,
		entry.MessageLength,
		entry.HasEmergencyFlag,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]audit.Entry, error) {
	query := `
		SELECT id, clinic_id_hash, decision, timestamp, message_length, has_emergency_flag
		FROM routing_audit_entries
		ORDER BY seq
	`
	rows, err := txcontext.Pick(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	entries := []audit.Entry{}
	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(&e.ID, &e.SubjectIDHash, &e.Decision, &e.Timestamp, &e.MessageLength, &e.HasEmergencyFlag); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}

func (s *Store) AppendConsent(ctx context.Context, event audit.ConsentEvent) error {
	details, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("marshal consent event details: %w", err)
	}
	query := `
		INSERT INTO consent_audit_events (id, subject_id_hash, action, timestamp, details)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = txcontext.Pick(ctx, s.db).ExecContext(ctx, query,
		event.ID,
		event.SubjectIDHash,
		string(event.Action),
		event.Timestamp,
		string(details),
	)
	if err != nil {
		return fmt.Errorf("insert consent event: %w", err)
	}
	return nil
}

func (s *Store) ListConsent(ctx context.Context) ([]audit.ConsentEvent, error) {
	query := `
		SELECT id, subject_id_hash, action, timestamp, details
		FROM consent_audit_events
		ORDER BY seq
	`
	rows, err := txcontext.Pick(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query consent events: %w", err)
	}
	defer rows.Close()

	events := []audit.ConsentEvent{}
	for rows.Next() {
		var (
			e       audit.ConsentEvent
			action  string
			details []byte
		)
		if err := rows.Scan(&e.ID, &e.SubjectIDHash, &action, &e.Timestamp, &details); err != nil {
			return nil, fmt.Errorf("scan consent event: %w", err)
		}
		e.Action = audit.ConsentAction(action)
		e.Details = map[string]string{}
		if err := json.Unmarshal(details, &e.Details); err != nil {
			return nil, fmt.Errorf("unmarshal consent event details: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate consent events: %w", err)
	}
	return events, nil
}
