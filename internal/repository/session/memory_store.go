package session

import (
	"context"
	"sync"
	"time"

	"quickfolio-backend/internal/domain"
)

type memoryEntry struct {
	state     *domain.WizardState
	expiresAt time.Time
}

// MemoryStore is the fallback when Redis is not configured. State is lost on
// restart and not shared between instances.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, state *domain.WizardState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[state.SessionID] = memoryEntry{
		state:     state.Clone(),
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*domain.WizardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, sessionID)
		return nil, domain.ErrNotFound
	}
	return entry.state.Clone(), nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}
