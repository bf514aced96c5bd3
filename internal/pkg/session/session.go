// Package session models the authenticated state held against one provider.
package session

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidTransition is returned when a state change is not allowed.
var ErrInvalidTransition = errors.New("invalid session transition")

// State is a session lifecycle state.
type State int

const (
	LoggedOut State = iota
	LoggingIn
	Active
	Expired
)

func (s State) String() string {
	switch s {
	case LoggedOut:
		return "logged_out"
	case LoggingIn:
		return "logging_in"
	case Active:
		return "active"
	case Expired:
		return "expired"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var allowed = map[State][]State{
	LoggedOut: {LoggingIn},
	LoggingIn: {Active, LoggedOut},
	Active:    {Expired, LoggedOut},
	Expired:   {LoggingIn, LoggedOut},
}

// Session is a concurrency-safe state holder.
type Session struct {
	mu       sync.Mutex
	state    State
	onChange func(from, to State)
}

// New returns a logged-out session. onChange may be nil.
func New(onChange func(from, to State)) *Session {
	return &Session{state: LoggedOut, onChange: onChange}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transition moves the session to `to`. Same-state transitions are no-ops.
func (s *Session) Transition(to State) error {
	s.mu.Lock()
	from := s.state
	if from == to {
		s.mu.Unlock()
		return nil
	}
	ok := false
	for _, st := range allowed[from] {
		if st == to {
			ok = true
			break
		}
	}
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	s.state = to
	cb := s.onChange
	s.mu.Unlock()

	if cb != nil {
		cb(from, to)
	}
	return nil
}

// BeginLogin enters LoggingIn from LoggedOut or Expired.
func (s *Session) BeginLogin() error {
	return s.Transition(LoggingIn)
}

// CompleteLogin finishes a login attempt: Active on success, LoggedOut otherwise.
func (s *Session) CompleteLogin(ok bool) error {
	if ok {
		return s.Transition(Active)
	}
	return s.Transition(LoggedOut)
}

// Expire marks an active session as expired.
func (s *Session) Expire() error {
	return s.Transition(Expired)
}

// Reset forces the session to LoggedOut from any state.
func (s *Session) Reset() {
	s.mu.Lock()
	from := s.state
	s.state = LoggedOut
	cb := s.onChange
	s.mu.Unlock()

	if cb != nil && from != LoggedOut {
		cb(from, LoggedOut)
	}
}
