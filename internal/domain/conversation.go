package domain

import (
	"errors"
	"fmt"
	"sync"
)

// ErrSessionNotFound is returned when a session name does not exist for a user.
var ErrSessionNotFound = errors.New("session not found")

// Session is one named conversation transcript. The system preamble is held
// in its own field rather than as element zero of the turn list, so there is
// always exactly one of them and it can be rewritten without touching turns.
type Session struct {
	preamble Message
	turns    []Message
}

func NewSession() *Session {
	return &Session{
		preamble: Message{Role: RoleSystem},
	}
}

// SetPreamble overwrites the system preamble. Called before every turn; the
// preamble is time-varying external state, not a constant.
func (s *Session) SetPreamble(content string) {
	s.preamble = Message{Role: RoleSystem, Content: content}
}

func (s *Session) Preamble() Message {
	return s.preamble
}

// Append adds a turn message at the end of the transcript.
func (s *Session) Append(role Role, content string) {
	s.turns = append(s.turns, Message{Role: role, Content: content})
}

// Transcript returns the full ordered conversation: the preamble first, then
// every turn in chronological order. The slice is a copy.
func (s *Session) Transcript() []Message {
	out := make([]Message, 0, len(s.turns)+1)
	out = append(out, s.preamble)
	out = append(out, s.turns...)
	return out
}

func (s *Session) TurnCount() int {
	return len(s.turns)
}

// Registry holds all sessions for one user and tracks which one is active.
// The active name always refers to an existing session: construction eagerly
// creates the default session, and SetActive validates before switching.
type Registry struct {
	mu       sync.RWMutex
	active   string
	order    []string
	sessions map[string]*Session
}

// NewRegistry creates a registry seeded with one session under defaultName,
// set active.
func NewRegistry(defaultName string) *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
	}
	r.insert(defaultName)
	r.active = defaultName
	return r
}

// AddSession creates a session under name and reports whether it inserted
// one. Re-adding an existing name is a no-op: the session and its transcript
// survive.
func (r *Registry) AddSession(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[name]; exists {
		return false
	}
	r.insert(name)
	return true
}

// SetActive switches the active session. Unknown names fail with
// ErrSessionNotFound and leave the active pointer untouched.
func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[name]; !exists {
		return fmt.Errorf("%w: %q", ErrSessionNotFound, name)
	}
	r.active = name
	return nil
}

// SessionNames returns all session names in creation order.
func (r *Registry) SessionNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) ActiveName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// ActiveSession resolves the active session. Always succeeds given the
// registry invariant.
func (r *Registry) ActiveSession() *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[r.active]
}

func (r *Registry) insert(name string) {
	r.sessions[name] = NewSession()
	r.order = append(r.order, name)
}
