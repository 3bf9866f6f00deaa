package memory

import (
	"sync"

	"github.com/agentdeck/agentdeck/core"
)

// Store is the conversation memory contract: an ordered, append-only sequence
// of role-tagged messages keyed by a session identifier.
type Store interface {
	// Append adds a message to the end of the session's log.
	Append(sessionID string, msg core.Message) error
	// Messages returns a copy of the full log for the session, oldest first.
	Messages(sessionID string) ([]core.Message, error)
	// Recent returns a copy of the last n messages for the session. A
	// non-positive n returns an empty slice.
	Recent(sessionID string, n int) ([]core.Message, error)
}

// InMemoryStore is a volatile Store keeping logs in a process-local map. It is
// safe for concurrent access and suited to tests and ephemeral demo servers.
// Reads return copies to prevent external mutation of internal state.
type InMemoryStore struct {
	mu   sync.RWMutex
	logs map[string][]core.Message
}

// NewInMemoryStore constructs an empty in-memory conversation store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{logs: make(map[string][]core.Message)}
}

// Append implements Store.
func (s *InMemoryStore) Append(sessionID string, msg core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[sessionID] = append(s.logs[sessionID], msg)
	return nil
}

// Messages implements Store.
func (s *InMemoryStore) Messages(sessionID string) ([]core.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.logs[sessionID]
	out := make([]core.Message, len(log))
	copy(out, log)
	return out, nil
}

// Recent implements Store.
func (s *InMemoryStore) Recent(sessionID string, n int) ([]core.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.logs[sessionID]
	if n <= 0 {
		return []core.Message{}, nil
	}
	if n > len(log) {
		n = len(log)
	}
	out := make([]core.Message, n)
	copy(out, log[len(log)-n:])
	return out, nil
}

// Len returns the number of messages stored for the session.
func (s *InMemoryStore) Len(sessionID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs[sessionID])
}
