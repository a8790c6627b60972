package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"assistant-backend/internal/conversation"
	"assistant-backend/internal/models"
)

type memoryEntry struct {
	session  *models.ChatSession
	lastSeen time.Time
}

type MemoryStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*memoryEntry
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[uuid.UUID]*memoryEntry),
		now:      time.Now,
	}
}

func (m *MemoryStore) Create(ctx context.Context, s *models.ChatSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.ID] = &memoryEntry{session: clone(s), lastSeen: m.now()}
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*models.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(e.session), nil
}

func (m *MemoryStore) Append(ctx context.Context, id uuid.UUID, turns ...conversation.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	e.session.Turns = append(e.session.Turns, turns...)
	e.lastSeen = m.now()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Sweep drops sessions with no writes for longer than idle, matching the
// expiry the Redis store gets from key TTLs.
func (m *MemoryStore) Sweep(ctx context.Context, idle time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-idle)
	removed := 0
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func clone(s *models.ChatSession) *models.ChatSession {
	c := *s
	c.Turns = append([]conversation.Turn{}, s.Turns...)
	return &c
}
