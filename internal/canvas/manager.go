package canvas

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Manager keeps at most one active editing session per project. Sessions are
// created on open and discarded on close, so no working-set state leaks
// across editing sessions.
type Manager struct {
	mu       sync.Mutex
	store    Store
	sessions map[uuid.UUID]*Session
}

func NewManager(store Store) *Manager {
	return &Manager{
		store:    store,
		sessions: map[uuid.UUID]*Session{},
	}
}

// Open starts a fresh session for the project, replacing any previous one,
// and seeds it from the persistence boundary.
func (m *Manager) Open(ctx context.Context, projectID uuid.UUID) (*Session, error) {
	session := NewSession(projectID, m.store)
	if err := session.Seed(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[projectID] = session
	m.mu.Unlock()
	return session, nil
}

// Get returns the active session for a project, if any.
func (m *Manager) Get(projectID uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[projectID]
	return session, ok
}

// Close discards the project's session.
func (m *Manager) Close(projectID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, projectID)
}
