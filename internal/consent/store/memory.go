package store

import (
	"context"
	"sync"

	"naijacare/internal/consent/models"
	"naijacare/pkg/platform/sentinel"
)

// InMemory keeps one record per subject. Records are cloned on the way in and
// out so callers never alias stored state.
type InMemory struct {
	mu      sync.RWMutex
	records map[string]*models.Record
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[string]*models.Record)}
}

// Upsert stores record under its subject id, replacing any previous record.
func (s *InMemory) Upsert(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.SubjectID] = record.Clone()
	return nil
}

func (s *InMemory) Get(_ context.Context, subjectID string) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[subjectID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return record.Clone(), nil
}

func (s *InMemory) Delete(_ context.Context, subjectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[subjectID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.records, subjectID)
	return nil
}

// Len returns the number of stored records.
func (s *InMemory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
