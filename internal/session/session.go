// Package session holds per-connection state for the WebSocket gateway:
// conversation history, the active workspace's sandboxed tool executor,
// audio buffering, and the flags and cancellation handle that coordinate
// an in-flight LLM response with interrupts from the client.
package session

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/madenney/walkie-talkie/internal/history"
	"github.com/madenney/walkie-talkie/internal/tools"
)

// newID generates a short opaque session identifier.
func newID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

// Session holds all state for a single WebSocket connection. It is
// mutated exclusively by its connection's reader goroutine and the one
// response goroutine it spawns; callers must not share a Session across
// connections.
type Session struct {
	ID string

	WorkspaceName string
	Executor      *tools.Executor

	History *history.History

	// AudioBuffer and recording are touched only by the connection's read
	// loop goroutine. responding is set from the response goroutine and
	// may be read from any other, so it's atomic.
	AudioBuffer []byte
	SampleRate  int
	recording   atomic.Bool
	responding  atomic.Bool

	mu          sync.Mutex
	interrupted bool
	cancel      context.CancelFunc

	// responseSlot serializes user-input handling end to end (history
	// append through response completion), so at most one response task
	// is ever actually running even if a client fires text_message,
	// image_message, or audio_end concurrently without interrupting.
	responseSlot sync.Mutex

	CreatedAt    time.Time
	LastActivity time.Time
}

// New creates a Session with a freshly generated ID.
func New() *Session {
	now := time.Now()
	return &Session{
		ID:           newID(),
		History:      &history.History{},
		SampleRate:   16000,
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Touch records activity, resetting the idle-reaper clock.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActivity = time.Now()
}

// IdleSince returns how long it has been since the last recorded activity.
func (s *Session) IdleSince() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.LastActivity)
}

// Interrupted reports whether the current response has been cancelled.
func (s *Session) Interrupted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interrupted
}

// BeginResponse clears the interrupted flag and registers cancel as the
// handle for CancelResponse to call, returning a context that's cancelled
// either by an explicit CancelResponse or by the supplied parent.
func (s *Session) BeginResponse(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)
	s.mu.Lock()
	s.interrupted = false
	s.cancel = cancel
	s.mu.Unlock()
	return ctx
}

// EndResponse clears the response cancellation handle once a response
// goroutine has finished, successfully or not.
func (s *Session) EndResponse() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel = nil
}

// CancelResponse marks the session interrupted and cancels any in-flight
// response context. Safe to call when no response is active.
func (s *Session) CancelResponse() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interrupted = true
	if s.cancel != nil {
		s.cancel()
	}
}

// SetRecording records whether the session is currently buffering mic audio.
func (s *Session) SetRecording(v bool) { s.recording.Store(v) }

// IsRecording reports whether the session is currently buffering mic audio.
func (s *Session) IsRecording() bool { return s.recording.Load() }

// SetResponding records whether a response task is currently active.
func (s *Session) SetResponding(v bool) { s.responding.Store(v) }

// IsResponding reports whether a response task is currently active.
func (s *Session) IsResponding() bool { return s.responding.Load() }

// ClearAudioBuffer empties the buffered microphone audio.
func (s *Session) ClearAudioBuffer() {
	s.AudioBuffer = s.AudioBuffer[:0]
}

// RunExclusive runs fn holding the session's response slot, so concurrent
// calls (one per user input) run one at a time in arrival order instead of
// racing each other's history append and response task.
func (s *Session) RunExclusive(fn func()) {
	s.responseSlot.Lock()
	defer s.responseSlot.Unlock()
	fn()
}

// SelectWorkspace rebinds the session to a new workspace: a fresh
// executor, a cleared conversation, and a cancelled in-flight response,
// all performed together so the session never observes a half-switched
// state.
func (s *Session) SelectWorkspace(name string, executor *tools.Executor) {
	s.CancelResponse()
	s.WorkspaceName = name
	s.Executor = executor
	s.History.Clear()
}
