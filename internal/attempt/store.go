package attempt

import (
	"context"
	"sync"
)

// Store persists attempt sessions across reloads. Load returns (nil, nil)
// when no session is stored under the key.
type Store interface {
	Load(ctx context.Context, key string) (*Session, error)
	Save(ctx context.Context, key string, session *Session) error
	Clear(ctx context.Context, key string) error
}

// MemoryStore keeps sessions in process memory. Used in tests and as a
// fallback when no durable backend is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (m *MemoryStore) Load(_ context.Context, key string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[key]
	if !ok {
		return nil, nil
	}
	cp := s
	cp.Selected = make(map[uint]uint, len(s.Selected))
	for k, v := range s.Selected {
		cp.Selected[k] = v
	}
	return &cp, nil
}

func (m *MemoryStore) Save(_ context.Context, key string, session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *session
	cp.Selected = make(map[uint]uint, len(session.Selected))
	for k, v := range session.Selected {
		cp.Selected[k] = v
	}
	m.sessions[key] = cp
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
	return nil
}
