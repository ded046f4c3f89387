package session

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is the authority on which sessions exist. It is keyed by
// connection identity and safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates a new session registry
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Put adds a session. A second session for the same connection is rejected.
func (r *Registry) Put(s *Session) error {
	if s == nil {
		return fmt.Errorf("cannot register nil session")
	}
	if s.ConnectionID == "" {
		return fmt.Errorf("session has empty connection id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[s.ConnectionID]; exists {
		return fmt.Errorf("session %s already registered", s.ConnectionID)
	}

	r.sessions[s.ConnectionID] = s
	return nil
}

// Get returns a session by connection id
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.sessions[id]
	return s, exists
}

// Contains reports whether a session is registered for id.
func (r *Registry) Contains(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// RemoveIfPresent deletes the session for id and reports whether this call
// removed it. Exactly one of any number of racing callers gets true.
func (r *Registry) RemoveIfPresent(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[id]; !exists {
		return false
	}
	delete(r.sessions, id)
	return true
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Snapshot returns the registered sessions ordered by creation time.
func (r *Registry) Snapshot() []*Session {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions
}
