package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"naijacare/internal/consent/models"
	"naijacare/internal/routing"
	"naijacare/internal/routing/metrics"
	"naijacare/internal/routing/ports"
	dErrors "naijacare/pkg/domain-errors"
	audit "naijacare/pkg/platform/audit"
	"naijacare/pkg/requestcontext"
)

const tracerName = "naijacare/internal/routing/service"

// Service routes inbound messages through the consent gate and records every
// outcome in the audit log.
type Service struct {
	consent ports.ConsentPort
	audit   ports.AuditPort
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func New(consent ports.ConsentPort, auditLog ports.AuditPort, opts ...Option) *Service {
	s := &Service{consent: consent, audit: auditLog}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	return s
}

// Route classifies msg for its sender. Consent is checked at the request
// time, not the client supplied timestamp. A sender without a consent record
// gets NON_CLINICAL. Errors are returned only for a malformed message or a
// failing consent store or audit store; the audit entry is written before the
// decision is returned.
func (s *Service) Route(ctx context.Context, msg routing.Message) (routing.Decision, error) {
	if err := msg.Validate(); err != nil {
		return routing.Decision{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "sender is required")
	}

	ctx, span := s.tracer.Start(ctx, "routing.Route")
	defer span.End()
	start := time.Now()
	defer func() {
		s.metrics.ObserveEvaluateLatency(time.Since(start))
	}()

	now := requestcontext.Now(ctx)
	subjectHash := s.audit.HashSubject(msg.Sender)

	record, err := s.consent.Lookup(ctx, msg.Sender)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "consent lookup failed")
		s.logger.ErrorContext(ctx, "consent lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"subject_hash", subjectHash,
			"error", err,
		)
		return routing.Decision{}, dErrors.Wrap(err, dErrors.CodeInternal, "consent lookup failed")
	}

	decision, consentErr := routing.Evaluate(msg, record, now)
	if consentErr != nil {
		reason := string(models.ReasonOf(consentErr))
		s.metrics.IncrementConsentDenial(reason)
		span.SetAttributes(attribute.String("routing.consent_reason", reason))
	}

	if err := s.audit.Log(ctx, msg.Sender, string(decision.Outcome), msg.Text, decision.IsEmergency(), now); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "audit append failed")
		s.logger.ErrorContext(ctx, "audit append failed",
			"request_id", requestcontext.RequestID(ctx),
			"subject_hash", subjectHash,
			"error", err,
		)
		return routing.Decision{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit entry")
	}

	s.metrics.IncrementOutcome(string(decision.Outcome))
	if decision.IsEmergency() {
		s.metrics.IncrementEmergency()
	}
	span.SetAttributes(
		attribute.String("routing.outcome", string(decision.Outcome)),
		attribute.Int("routing.flag_count", len(decision.Flags)),
	)

	s.logger.InfoContext(ctx, "message routed",
		"request_id", requestcontext.RequestID(ctx),
		"subject_hash", subjectHash,
		"outcome", string(decision.Outcome),
		"flags", decision.Flags,
		"consent_reason", string(models.ReasonOf(consentErr)),
	)
	return decision, nil
}

// AuditEntries returns the hashed audit trail in insertion order.
func (s *Service) AuditEntries(ctx context.Context) ([]audit.Entry, error) {
	entries, err := s.audit.ToList(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit entries")
	}
	return entries, nil
}

// Stats sums the audit trail.
func (s *Service) Stats(ctx context.Context) (audit.Stats, error) {
	stats, err := s.audit.Stats(ctx)
	if err != nil {
		return audit.Stats{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute stats")
	}
	return stats, nil
}
