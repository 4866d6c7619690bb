package memstore

import (
	"context"
	"sync"

	"github.com/dentacamp/portal/core/session"
)

// Store is an in-memory session.Store for tests and single-node development.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]session.Session
}

var _ session.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{sessions: make(map[string]session.Session)}
}

func (s *Store) SaveSession(_ context.Context, sess session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *Store) GetSession(_ context.Context, id string) (session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok || sess.Expired(session.NowFunc().UTC()) {
		return session.Session{}, session.ErrNotFound
	}
	return sess, nil
}

func (s *Store) DeleteSession(_ context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.sessions, id)
	}
	return nil
}

func (s *Store) DeleteExpiredSessions(_ context.Context) (int, error) {
	now := session.NowFunc().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}
