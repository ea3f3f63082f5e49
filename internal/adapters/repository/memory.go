package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/legend/internal/domain/game"
	"github.com/okian/legend/pkg/metrics"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore keeps encoded sessions in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	cfg     settings
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		cfg:     newSettings(opts),
	}
}

func (m *MemoryStore) expired(e memoryEntry, now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

func (m *MemoryStore) Save(_ context.Context, s *game.Session) error {
	data, err := encode(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	e := memoryEntry{data: data}
	if m.cfg.ttl > 0 {
		e.expiresAt = m.cfg.now().Add(m.cfg.ttl)
	}

	m.mu.Lock()
	m.entries[s.ID] = e
	n := len(m.entries)
	m.mu.Unlock()

	metrics.UpdateActiveSessions(n)
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (*game.Session, error) {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok || m.expired(e, m.cfg.now()) {
		return nil, ErrNotFound
	}
	s, err := decode(e.data)
	if err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return s, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.entries, id)
	if m.expired(e, m.cfg.now()) {
		return ErrNotFound
	}
	metrics.UpdateActiveSessions(len(m.entries))
	return nil
}

// Count prunes expired sessions and returns how many remain.
func (m *MemoryStore) Count(_ context.Context) (int, error) {
	now := m.cfg.now()
	m.mu.Lock()
	for id, e := range m.entries {
		if m.expired(e, now) {
			delete(m.entries, id)
		}
	}
	n := len(m.entries)
	m.mu.Unlock()

	metrics.UpdateActiveSessions(n)
	return n, nil
}

func (m *MemoryStore) Close() error { return nil }
