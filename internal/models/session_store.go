package models

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// SessionStore is the process-wide keyed table of download sessions. Reads
// hand out full-record copies and writes replace the whole record under the
// lock, so readers never observe a partial write. Concurrent updates are
// last-writer-wins.
type SessionStore struct {
	sessions map[string]Session
	mu       sync.RWMutex
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]Session),
	}
}

// Create allocates a new session in pending state and stores it.
func (s *SessionStore) Create(url, format, platform string, info *DownloadInfo) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := Session{
		ID:           generateSessionID(),
		URL:          url,
		Format:       format,
		Platform:     platform,
		Status:       StatusPending,
		Progress:     0,
		DownloadInfo: info,
		CreatedAt:    time.Now().UTC(),
	}

	s.sessions[session.ID] = session
	return session
}

// Get returns a copy of the session, if present.
func (s *SessionStore) Get(id string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[id]
	return session, exists
}

// Update applies the mutation to a copy of the record and replaces it.
func (s *SessionStore) Update(id string, apply func(*Session)) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[id]
	if !exists {
		return Session{}, ErrSessionNotFound
	}

	apply(&session)
	s.sessions[id] = session
	return session, nil
}

// Cancel marks the session cancelled. Sessions already in a completed or
// cancelled state are returned unchanged; the running simulation task
// observes the flip on its next step and stops writing.
func (s *SessionStore) Cancel(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[id]
	if !exists {
		return Session{}, ErrSessionNotFound
	}

	if session.Status == StatusCompleted || session.Status == StatusCancelled {
		return session, nil
	}

	session.Status = StatusCancelled
	s.sessions[id] = session
	return session, nil
}

// List returns copies of every stored session.
func (s *SessionStore) List() []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

// Remove deletes a session outright.
func (s *SessionStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.sessions[id]
	delete(s.sessions, id)
	return exists
}

// CleanupOldSessions sweeps terminal sessions created before the retention
// window. Active sessions are never swept.
func (s *SessionStore) CleanupOldSessions(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-maxAge)
	cleaned := 0

	for id, session := range s.sessions {
		if session.Status.IsTerminal() && session.CreatedAt.Before(cutoff) {
			delete(s.sessions, id)
			cleaned++
		}
	}

	return cleaned
}

// Len reports the number of stored sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func generateSessionID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		panic(err)
	}
	return hex.EncodeToString(b)
}
