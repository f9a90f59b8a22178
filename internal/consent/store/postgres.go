package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"naijacare/internal/consent/models"
	"naijacare/pkg/platform/sentinel"
	txcontext "naijacare/pkg/platform/tx"
)

const consentSchema = `
CREATE TABLE IF NOT EXISTS consent_records (
	subject_id        TEXT PRIMARY KEY,
	age_years         INTEGER NOT NULL,
	granted_scopes    TEXT[] NOT NULL DEFAULT '{}',
	consented_at      TIMESTAMPTZ,
	withdrawn_at      TIMESTAMPTZ,
	last_reconsent_at TIMESTAMPTZ,
	consent_version   TEXT NOT NULL DEFAULT 'v1',
	metadata          JSONB NOT NULL DEFAULT '{}'::jsonb,
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres persists consent records in consent_records. Inside a transaction
// started by PostgresTx, reads take a row lock so read-modify-write cycles on
// one subject serialize.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the consent table when missing.
func (s *Postgres) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, consentSchema); err != nil {
		return fmt.Errorf("migrate consent_records: %w", err)
	}
	return nil
}

func (s *Postgres) Upsert(ctx context.Context, record *models.Record) error {
	metadata, err := json.Marshal(record.Metadata)
	if err != nil {
		return fmt.Errorf("marshal consent metadata: %w", err)
	}
	scopes := make([]string, 0, len(record.GrantedScopes))
	for _, s := range record.GrantedScopes.Sorted() {
		scopes = append(scopes, string(s))
	}

	query := `
		INSERT INTO consent_records (
			subject_id, age_years, granted_scopes, consented_at, withdrawn_at,
			last_reconsent_at, consent_version, metadata, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (subject_id) DO UPDATE SET
			age_years = EXCLUDED.age_years,
			granted_scopes = EXCLUDED.granted_scopes,
			consented_at = EXCLUDED.consented_at,
			withdrawn_at = EXCLUDED.withdrawn_at,
			last_reconsent_at = EXCLUDED.last_reconsent_at,
			consent_version = EXCLUDED.consent_version,
			metadata = EXCLUDED.metadata,
			updated_at = now()
	`
	_, err = txcontext.Pick(ctx, s.db).ExecContext(ctx, query,
		record.SubjectID,
		record.AgeYears,
		pq.Array(scopes),
		record.ConsentedAt,
		record.WithdrawnAt,
		record.LastReconsentAt,
		record.ConsentVersion,
		string(metadata),
	)
	if err != nil {
		return fmt.Errorf("upsert consent record: %w", err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, subjectID string) (*models.Record, error) {
	query := `
		SELECT subject_id, age_years, granted_scopes, consented_at, withdrawn_at,
			last_reconsent_at, consent_version, metadata
		FROM consent_records
		WHERE subject_id = $1
	`
	if _, inTx := txcontext.From(ctx); inTx {
		query += " FOR UPDATE"
	}

	var (
		record   models.Record
		scopes   []string
		metadata []byte
	)
	err := txcontext.Pick(ctx, s.db).QueryRowContext(ctx, query, subjectID).Scan(
		&record.SubjectID,
		&record.AgeYears,
		pq.Array(&scopes),
		&record.ConsentedAt,
		&record.WithdrawnAt,
		&record.LastReconsentAt,
		&record.ConsentVersion,
		&metadata,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select consent record: %w", err)
	}

	parsed, err := models.ParseScopes(scopes)
	if err != nil {
		return nil, fmt.Errorf("stored scopes for subject: %w", err)
	}
	record.GrantedScopes = models.NewScopeSet(parsed...)
	record.Metadata = map[string]string{}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &record.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal consent metadata: %w", err)
		}
	}
	return &record, nil
}

func (s *Postgres) Delete(ctx context.Context, subjectID string) error {
	res, err := txcontext.Pick(ctx, s.db).ExecContext(ctx,
		`DELETE FROM consent_records WHERE subject_id = $1`, subjectID)
	if err != nil {
		return fmt.Errorf("delete consent record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete consent record: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
