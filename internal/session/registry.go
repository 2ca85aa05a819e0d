package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Saul-Punybz/radar/internal/metrics"
)

// Registry holds every live session in memory.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session), now: time.Now}
}

// Create starts a new session.
func (r *Registry) Create() (*Session, error) {
	id, err := NewID()
	if err != nil {
		return nil, fmt.Errorf("session create: %w", err)
	}
	s := newSession(id, r.now())

	r.mu.Lock()
	r.sessions[id] = s
	n := len(r.sessions)
	r.mu.Unlock()

	metrics.SetActiveSessions(n)
	return s, nil
}

// Get returns the session with id and marks it as seen.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if ok {
		s.touch(r.now())
	}
	return s, ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than ttl. Sessions with a running
// scan or analysis are kept. It returns the number removed.
func (r *Registry) Sweep(ttl time.Duration) int {
	now := r.now()

	r.mu.Lock()
	removed := 0
	for id, s := range r.sessions {
		idle, busy := s.idleSince(now)
		if busy || idle <= ttl {
			continue
		}
		delete(r.sessions, id)
		removed++
	}
	n := len(r.sessions)
	r.mu.Unlock()

	metrics.SetActiveSessions(n)
	if removed > 0 {
		slog.Info("session: swept idle sessions", "removed", removed, "active", n)
	}
	return removed
}
