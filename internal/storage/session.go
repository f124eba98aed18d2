package storage

import (
	"sort"
	"sync"

	"github.com/eslsoft/studydeck/internal/entity"
)

// SessionStorage keeps live study sessions in memory, keyed by session ID.
// Each session serializes its own mutations; the lock here only guards the map.
type SessionStorage struct {
	mu       sync.RWMutex
	sessions map[string]*entity.StudySession
}

// NewSessionStorage creates an empty SessionStorage.
func NewSessionStorage() *SessionStorage {
	return &SessionStorage{
		sessions: make(map[string]*entity.StudySession),
	}
}

// Put stores a session, replacing any previous one with the same ID.
func (s *SessionStorage) Put(session *entity.StudySession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
}

// Get returns the session with the given ID.
func (s *SessionStorage) Get(id string) (*entity.StudySession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	return session, nil
}

// Delete removes a session.
func (s *SessionStorage) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// List returns every stored session, oldest first.
func (s *SessionStorage) List() []*entity.StudySession {
	s.mu.RLock()
	out := make([]*entity.StudySession, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out
}
