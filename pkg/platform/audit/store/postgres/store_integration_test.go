//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	audit "naijacare/pkg/platform/audit"
	"naijacare/pkg/platform/audit/store/postgres"
	"naijacare/pkg/testutil/containers"
)

type AuditPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
}

func TestAuditPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AuditPostgresSuite))
}

func (s *AuditPostgresSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = postgres.New(s.postgres.DB)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *AuditPostgresSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "routing_audit_entries", "consent_audit_events"))
}

func (s *AuditPostgresSuite) TestEntriesKeepInsertionOrder() {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	// Later timestamps first so ordering can only come from insertion.
	decisions := []string{"ESCALATE_IMMEDIATELY", "ROUTE_GENERAL", "NON_CLINICAL"}
	for i, d := range decisions {
		s.Require().NoError(s.store.Append(ctx, audit.Entry{
			ID:               uuid.New(),
			SubjectIDHash:    "0123456789abcdef",
			Decision:         d,
			Timestamp:        base.Add(-time.Duration(i) * time.Hour),
			MessageLength:    10 + i,
			HasEmergencyFlag: d == "ESCALATE_IMMEDIATELY",
		}))
	}

	entries, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	for i, d := range decisions {
		s.Equal(d, entries[i].Decision)
		s.Equal(10+i, entries[i].MessageLength)
		s.True(entries[i].Timestamp.Equal(base.Add(-time.Duration(i) * time.Hour)))
	}
	s.True(entries[0].HasEmergencyFlag)
}

func (s *AuditPostgresSuite) TestConsentEvents() {
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.AppendConsent(ctx, audit.ConsentEvent{
		ID:            uuid.New(),
		SubjectIDHash: "fedcba9876543210",
		Action:        audit.ActionConsentGranted,
		Timestamp:     at,
		Details:       map[string]string{"scopes": "data_collection"},
	}))
	s.Require().NoError(s.store.AppendConsent(ctx, audit.ConsentEvent{
		ID:            uuid.New(),
		SubjectIDHash: "fedcba9876543210",
		Action:        audit.ActionConsentAnonymized,
		Timestamp:     at.Add(time.Hour),
		Details:       map[string]string{},
	}))

	events, err := s.store.ListConsent(ctx)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(audit.ActionConsentGranted, events[0].Action)
	s.Equal("data_collection", events[0].Details["scopes"])
	s.Equal(audit.ActionConsentAnonymized, events[1].Action)
	s.Empty(events[1].Details)
}
