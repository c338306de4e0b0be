package session

import (
	"sync"
	"time"
)

// ReapInterval is how often the reaper scans for idle sessions.
const ReapInterval = 300 * time.Second

// MaxIdle is how long a session may sit idle before the reaper evicts it.
const MaxIdle = 1800 * time.Second

// Registry is the in-memory session_id -> Session map shared by every
// connection handler, plus the background reaper that evicts idle
// sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	stop chan struct{}
	done chan struct{}
}

// NewRegistry creates an empty registry. Call Reap to start the
// background eviction loop.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Add registers a session.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// Get looks up a session by ID.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove cancels any in-flight response on the session, clears its
// history and audio buffer, and drops it from the registry.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return
	}
	s.CancelResponse()
	s.History.Clear()
	s.ClearAudioBuffer()
}

// Len reports the number of active sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Reap starts the background reaper goroutine, which wakes every
// ReapInterval and evicts sessions idle past MaxIdle. Call Shutdown to
// stop it.
func (r *Registry) Reap() {
	r.mu.Lock()
	if r.stop != nil {
		r.mu.Unlock()
		return
	}
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	stop := r.stop
	done := r.done
	r.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(ReapInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.reapOnce()
			case <-stop:
				return
			}
		}
	}()
}

func (r *Registry) reapOnce() {
	r.mu.RLock()
	var expired []string
	for id, s := range r.sessions {
		if s.IdleSince() > MaxIdle {
			expired = append(expired, id)
		}
	}
	r.mu.RUnlock()

	for _, id := range expired {
		r.Remove(id)
	}
}

// Shutdown stops the reaper, if running, and clears every session.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	stop := r.stop
	done := r.done
	r.stop = nil
	r.done = nil
	r.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	r.mu.Lock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.Remove(id)
	}
}
