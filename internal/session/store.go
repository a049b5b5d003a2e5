// Package session keeps per-session conversation history in process memory.
// There is no persistence across restarts and no eviction; the session id is
// an opaque token supplied by the caller.
package session

import (
	"sync"

	"docuchat/internal/model"
)

type Store struct {
	mu       sync.Mutex
	sessions map[string][]model.SessionTurn
}

func NewStore() *Store {
	return &Store{sessions: make(map[string][]model.SessionTurn)}
}

// History returns a copy of the session's ordered turns. An unknown id
// yields an empty history and becomes known as a side effect.
func (s *Store) History(sessionID string) []model.SessionTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns, ok := s.sessions[sessionID]
	if !ok {
		s.sessions[sessionID] = nil
		return nil
	}
	out := make([]model.SessionTurn, len(turns))
	copy(out, turns)
	return out
}

// Append adds one turn to the session. Concurrent appends are serialized so
// turns are never lost or reordered within a session.
func (s *Store) Append(sessionID, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID], model.SessionTurn{
		Role:    role,
		Content: content,
	})
}
