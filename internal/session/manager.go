package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tierfolio/tierfolio-backend/internal/pkg/envutil"
	apperrors "github.com/tierfolio/tierfolio-backend/internal/pkg/errors"
)

// Manager owns all live sessions. Sessions are in-memory only; an idle
// session past the TTL is swept and its queue drained, never persisted.
type Manager struct {
	deps Deps
	ttl  time.Duration

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	stopOnce sync.Once
	stop     chan struct{}
}

func NewManager(deps Deps) *Manager {
	m := &Manager{
		deps:     deps,
		ttl:      time.Duration(envutil.Int("SESSION_TTL_SECONDS", 1800)) * time.Second,
		sessions: make(map[uuid.UUID]*Session),
		stop:     make(chan struct{}),
	}
	go m.sweep()
	return m
}

// Create opens a session for one user's collection, loading the shadow from
// current persisted state.
func (m *Manager) Create(ctx context.Context, userID, collectionID uuid.UUID) (*Session, error) {
	s, err := newSession(ctx, m.deps, userID, collectionID)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	m.deps.Metrics.SessionOpened()
	m.deps.Log.Info("session opened", "session_id", s.ID, "collection_id", collectionID)
	return s, nil
}

// Get returns the session if it exists and belongs to userID.
func (m *Manager) Get(id, userID uuid.UUID) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: session %s", apperrors.ErrNotFound, id)
	}
	if s.UserID != userID {
		return nil, fmt.Errorf("%w: session %s", apperrors.ErrUnauthorized, id)
	}
	return s, nil
}

// Close ends a session explicitly.
func (m *Manager) Close(id, userID uuid.UUID) error {
	s, err := m.Get(id, userID)
	if err != nil {
		return err
	}
	m.remove(s)
	return nil
}

func (m *Manager) remove(s *Session) {
	m.mu.Lock()
	_, ok := m.sessions[s.ID]
	delete(m.sessions, s.ID)
	m.mu.Unlock()
	if ok {
		s.close()
		m.deps.Metrics.SessionClosed()
		m.deps.Log.Info("session closed", "session_id", s.ID)
	}
}

func (m *Manager) sweep() {
	tick := time.NewTicker(time.Minute)
	defer tick.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-tick.C:
			cutoff := time.Now().Add(-m.ttl)
			m.mu.RLock()
			var stale []*Session
			for _, s := range m.sessions {
				if s.idleSince().Before(cutoff) {
					stale = append(stale, s)
				}
			}
			m.mu.RUnlock()
			for _, s := range stale {
				m.deps.Log.Info("session swept", "session_id", s.ID)
				m.remove(s)
			}
		}
	}
}

// Shutdown stops the sweeper and closes every live session.
func (m *Manager) Shutdown() {
	m.stopOnce.Do(func() { close(m.stop) })
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.sessions = make(map[uuid.UUID]*Session)
	m.mu.Unlock()
	for _, s := range all {
		s.close()
		m.deps.Metrics.SessionClosed()
	}
}
