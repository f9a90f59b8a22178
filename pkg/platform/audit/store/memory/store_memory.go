package memory

import (
	"context"
	"maps"
	"sync"

	audit "naijacare/pkg/platform/audit"
)

// InMemoryStore keeps audit records in insertion order.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []audit.Entry
	consent []audit.ConsentEvent
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, entry audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Entry{}, s.entries...), nil
}

func (s *InMemoryStore) AppendConsent(_ context.Context, event audit.ConsentEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event.Details = maps.Clone(event.Details)
	s.consent = append(s.consent, event)
	return nil
}

func (s *InMemoryStore) ListConsent(_ context.Context) ([]audit.ConsentEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]audit.ConsentEvent, len(s.consent))
	for i, e := range s.consent {
		e.Details = maps.Clone(e.Details)
		out[i] = e
	}
	return out, nil
}

// Clear drops every record. Whole-store reset is an operational action, never
// part of request handling.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.consent = nil
}
