package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"naijacare/internal/consent/models"
	dErrors "naijacare/pkg/domain-errors"
	audit "naijacare/pkg/platform/audit"
	"naijacare/pkg/platform/privacy"
	"naijacare/pkg/platform/sentinel"
	"naijacare/pkg/requestcontext"
)

type Store interface {
	Upsert(ctx context.Context, record *models.Record) error
	Get(ctx context.Context, subjectID string) (*models.Record, error)
	Delete(ctx context.Context, subjectID string) error
}

// AuditRecorder receives consent lifecycle events. *audit.Log satisfies it.
type AuditRecorder interface {
	RecordConsent(ctx context.Context, subjectID string, action audit.ConsentAction, details map[string]string, at time.Time) error
}

// Service applies the consent lifecycle to stored records. Each mutation runs
// inside a per-subject transaction so concurrent grants never lose scopes.
type Service struct {
	store  Store
	tx     ConsentStoreTx
	audit  AuditRecorder
	hasher privacy.Hasher
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAudit(recorder AuditRecorder) Option {
	return func(s *Service) {
		s.audit = recorder
	}
}

// WithTx replaces the in-memory sharded lock, e.g. with a SQL transaction.
func WithTx(tx ConsentStoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

// WithHasher sets the hasher used for subject identifiers in log lines.
func WithHasher(h privacy.Hasher) Option {
	return func(s *Service) {
		s.hasher = h
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = newShardedConsentTx()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// GrantRequest carries a grant for one subject. AgeYears is required the first
// time a subject grants; later grants may update it.
type GrantRequest struct {
	SubjectID      string
	AgeYears       *int
	Scopes         []string
	ConsentVersion string
	Metadata       map[string]string
}

// Grant creates or updates the subject's record and unions in the requested scopes.
func (s *Service) Grant(ctx context.Context, req GrantRequest) (*models.Record, error) {
	if err := validateSubjectID(req.SubjectID); err != nil {
		return nil, err
	}
	if len(req.Scopes) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "scopes array must not be empty")
	}
	scopes, err := models.ParseScopes(req.Scopes)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid scopes")
	}
	if req.AgeYears != nil && *req.AgeYears < 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "age_years must not be negative")
	}

	now := requestcontext.Now(ctx)
	var granted *models.Record
	err = s.tx.RunInTx(ctx, req.SubjectID, func(ctx context.Context) error {
		record, err := s.store.Get(ctx, req.SubjectID)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			if req.AgeYears == nil {
				return dErrors.New(dErrors.CodeValidation, "age_years is required on first grant")
			}
			record = models.NewRecord(req.SubjectID, *req.AgeYears)
		case err != nil:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load consent record")
		case req.AgeYears != nil:
			record.AgeYears = *req.AgeYears
		}

		if req.ConsentVersion != "" {
			record.ConsentVersion = req.ConsentVersion
		}
		if record.Metadata == nil {
			record.Metadata = map[string]string{}
		}
		for k, v := range req.Metadata {
			record.Metadata[k] = v
		}
		if err := models.Grant(record, scopes, now); err != nil {
			return dErrors.Wrap(err, dErrors.CodeConflict, "consent grant rejected")
		}
		if err := s.store.Upsert(ctx, record); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save consent record")
		}
		granted = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, req.SubjectID, audit.ActionConsentGranted, map[string]string{
		"scopes":          joinScopes(scopes),
		"consent_version": granted.ConsentVersion,
	}, now)
	s.logger.InfoContext(ctx, "consent granted",
		"request_id", requestcontext.RequestID(ctx),
		"subject_hash", s.hasher.Hash(req.SubjectID),
		"scope_count", len(granted.GrantedScopes),
	)
	return granted, nil
}

// Withdraw marks the subject's consent withdrawn. Scopes and metadata are kept
// so a later grant can resume.
func (s *Service) Withdraw(ctx context.Context, subjectID string) (*models.Record, error) {
	if err := validateSubjectID(subjectID); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	var withdrawn *models.Record
	err := s.tx.RunInTx(ctx, subjectID, func(ctx context.Context) error {
		record, err := s.load(ctx, subjectID)
		if err != nil {
			return err
		}
		models.Withdraw(record, now)
		if err := s.store.Upsert(ctx, record); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save consent record")
		}
		withdrawn = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, subjectID, audit.ActionConsentWithdrawn, nil, now)
	s.logger.InfoContext(ctx, "consent withdrawn",
		"request_id", requestcontext.RequestID(ctx),
		"subject_hash", s.hasher.Hash(subjectID),
	)
	return withdrawn, nil
}

// WithdrawAndAnonymize erases the subject: the record is withdrawn, stripped of
// identity and metadata, and removed from the store so the raw identifier no
// longer keys any data. The anonymized record is returned to the caller.
func (s *Service) WithdrawAndAnonymize(ctx context.Context, subjectID string) (*models.Record, error) {
	if err := validateSubjectID(subjectID); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	var erased *models.Record
	err := s.tx.RunInTx(ctx, subjectID, func(ctx context.Context) error {
		record, err := s.load(ctx, subjectID)
		if err != nil {
			return err
		}
		models.WithdrawAndAnonymize(record, now)
		if err := s.store.Delete(ctx, subjectID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete consent record")
		}
		erased = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, subjectID, audit.ActionConsentAnonymized, nil, now)
	s.logger.InfoContext(ctx, "consent anonymized",
		"request_id", requestcontext.RequestID(ctx),
		"subject_hash", s.hasher.Hash(subjectID),
	)
	return erased, nil
}

// Get returns the subject's stored record.
func (s *Service) Get(ctx context.Context, subjectID string) (*models.Record, error) {
	if err := validateSubjectID(subjectID); err != nil {
		return nil, err
	}
	return s.load(ctx, subjectID)
}

// Validate checks the stored record against required. A subject without a
// record fails with models.ErrConsentNotProvided. Validation failures are
// returned as *models.ValidationError; store failures carry a domain code.
func (s *Service) Validate(ctx context.Context, subjectID string, required []models.Scope) error {
	if err := validateSubjectID(subjectID); err != nil {
		return err
	}
	record, err := s.store.Get(ctx, subjectID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load consent record")
	}
	return models.Validate(record, required, requestcontext.Now(ctx))
}

func (s *Service) load(ctx context.Context, subjectID string) (*models.Record, error) {
	record, err := s.store.Get(ctx, subjectID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "consent record not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load consent record")
	}
	return record, nil
}

// recordEvent never fails the caller: the store already holds the new state.
func (s *Service) recordEvent(ctx context.Context, subjectID string, action audit.ConsentAction, details map[string]string, at time.Time) {
	if s.audit == nil {
		return
	}
	if err := s.audit.RecordConsent(ctx, subjectID, action, details, at); err != nil {
		s.logger.WarnContext(ctx, "failed to record consent event",
			"request_id", requestcontext.RequestID(ctx),
			"action", string(action),
			"error", err,
		)
	}
}

func validateSubjectID(subjectID string) error {
	if strings.TrimSpace(subjectID) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "subject id is required")
	}
	if subjectID == models.AnonymizedSubjectID {
		return dErrors.New(dErrors.CodeBadRequest, "subject id is reserved")
	}
	return nil
}

func joinScopes(scopes []models.Scope) string {
	sorted := models.NewScopeSet(scopes...).Sorted()
	parts := make([]string, len(sorted))
	for i, s := range sorted {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}
