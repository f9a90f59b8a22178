package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"naijacare/internal/consent/models"
	"naijacare/pkg/platform/sentinel"
)

const redisKeyPrefix = "consent:"

// Redis stores each record as a JSON string under consent:<subject_id>.
type Redis struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func redisKey(subjectID string) string {
	return redisKeyPrefix + subjectID
}

func (s *Redis) Upsert(ctx context.Context, record *models.Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal consent record: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(record.SubjectID), payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set consent: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	return nil
}

func (s *Redis) Get(ctx context.Context, subjectID string) (*models.Record, error) {
	payload, err := s.client.Get(ctx, redisKey(subjectID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get consent: %w", errors.Join(sentinel.ErrUnavailable, err))
	}

	var record models.Record
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("unmarshal consent record: %w", errors.Join(sentinel.ErrInvalidState, err))
	}
	if record.GrantedScopes == nil {
		record.GrantedScopes = models.ScopeSet{}
	}
	if record.Metadata == nil {
		record.Metadata = map[string]string{}
	}
	return &record, nil
}

func (s *Redis) Delete(ctx context.Context, subjectID string) error {
	n, err := s.client.Del(ctx, redisKey(subjectID)).Result()
	if err != nil {
		return fmt.Errorf("redis del consent: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
