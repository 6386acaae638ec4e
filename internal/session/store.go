package session

import "sync"

// Store keeps one Session per user, created on first access.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Session)}
}

// Get returns the user's session, creating a fresh one on first contact.
func (s *Store) Get(userID int64) *Session {
	s.mu.RLock()
	sess, ok := s.sessions[userID]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[userID]; ok {
		return sess
	}
	sess = newSession()
	s.sessions[userID] = sess
	return sess
}

// Reset replaces the user's session with a fresh one. The caller is expected
// to drain the display stack first if its messages should be kept.
func (s *Store) Reset(userID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := newSession()
	s.sessions[userID] = sess
	return sess
}

// Len returns the number of tracked users.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
