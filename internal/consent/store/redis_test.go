package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"naijacare/internal/consent/models"
	"naijacare/pkg/platform/sentinel"
)

type RedisStoreSuite struct {
	suite.Suite
	mr    *miniredis.Miniredis
	store *Redis
	ctx   context.Context
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupTest() {
	s.mr = miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.T().Cleanup(func() { _ = client.Close() })
	s.store = NewRedis(client)
	s.ctx = context.Background()
}

func (s *RedisStoreSuite) TestRoundTrip() {
	record := newGrantedRecord("clinic_001")
	s.Require().NoError(s.store.Upsert(s.ctx, record))
	s.True(s.mr.Exists("consent:clinic_001"))

	found, err := s.store.Get(s.ctx, "clinic_001")
	s.Require().NoError(err)
	s.Equal(record.SubjectID, found.SubjectID)
	s.Equal(record.AgeYears, found.AgeYears)
	s.Equal(record.GrantedScopes.Sorted(), found.GrantedScopes.Sorted())
	s.True(record.ConsentedAt.Equal(*found.ConsentedAt))
	s.True(record.LastReconsentAt.Equal(*found.LastReconsentAt))
	s.Nil(found.WithdrawnAt)
	s.Equal("kano", found.Metadata["region"])
	s.Equal(models.DefaultConsentVersion, found.ConsentVersion)
}

func (s *RedisStoreSuite) TestNotFound() {
	_, err := s.store.Get(s.ctx, "nobody")
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Delete(s.ctx, "nobody"), sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestDelete() {
	s.Require().NoError(s.store.Upsert(s.ctx, newGrantedRecord("clinic_002")))
	s.Require().NoError(s.store.Delete(s.ctx, "clinic_002"))
	s.False(s.mr.Exists("consent:clinic_002"))
}

func (s *RedisStoreSuite) TestGetRejectsUnknownScope() {
	s.Require().NoError(s.mr.Set("consent:clinic_003",
		`{"subject_id":"clinic_003","age_years":30,"granted_scopes":["data_collection","location"],"consent_version":"v1","metadata":{}}`))

	found, err := s.store.Get(s.ctx, "clinic_003")
	s.Nil(found)
	s.ErrorIs(err, models.ErrUnknownScope)
	s.ErrorIs(err, sentinel.ErrInvalidState)
}

func (s *RedisStoreSuite) TestUnavailable() {
	s.mr.Close()
	_, err := s.store.Get(s.ctx, "clinic_001")
	s.ErrorIs(err, sentinel.ErrUnavailable)
	s.ErrorIs(s.store.Upsert(s.ctx, newGrantedRecord("clinic_001")), sentinel.ErrUnavailable)
}
