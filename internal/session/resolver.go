// Package session derives a coarse authentication state from session
// lifecycle events. The resolver is the single source of (status, role)
// for navigation decisions; it never looks anything up, the role rides on
// the event because it is fixed at signup.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusLoading         Status = "loading"
	StatusUnauthenticated Status = "unauthenticated"
	StatusAuthenticated   Status = "authenticated"
)

type Role string

const (
	RoleNone     Role = ""
	RoleStudent  Role = "student"
	RoleEmployer Role = "employer"
)

// Session is the resolver's view of a backend session: just enough to know
// who is signed in and until when.
type Session struct {
	UserID    uuid.UUID
	Role      Role
	ExpiresAt time.Time
}

type EventKind int

const (
	// EventInitialSession carries the result of the initial session fetch;
	// Session is nil when no session exists.
	EventInitialSession EventKind = iota
	EventInitialLoadFailed
	EventSignedIn
	EventSignedOut
	EventTokenRefreshed
)

type Event struct {
	Kind    EventKind
	Session *Session
	// Err is the readable failure for EventInitialLoadFailed.
	Err string
}

// State is the derived (status, role) tuple plus the last recorded error.
type State struct {
	Status Status `json:"status"`
	Role   Role   `json:"role"`
	Err    string `json:"error,omitempty"`
}

// Resolver folds session lifecycle events into a State. Safe for use from
// multiple goroutines.
type Resolver struct {
	mu    sync.Mutex
	state State
}

func NewResolver() *Resolver {
	return &Resolver{state: State{Status: StatusLoading, Role: RoleNone}}
}

// Apply consumes one lifecycle event and returns the resulting state.
func (r *Resolver) Apply(ev Event) State {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev.Kind {
	case EventInitialSession:
		r.state = stateForSession(ev.Session)
	case EventInitialLoadFailed:
		// Leave loading even on failure; surface the error, do not retry.
		r.state = State{Status: StatusUnauthenticated, Role: RoleNone, Err: ev.Err}
	case EventSignedIn:
		// Explicit sign-in clears any previously recorded error.
		r.state = stateForSession(ev.Session)
	case EventSignedOut:
		r.state = State{Status: StatusUnauthenticated, Role: RoleNone}
	case EventTokenRefreshed:
		// A refresh only matters while a session exists; it never moves an
		// unauthenticated client into an authenticated state by itself.
		if r.state.Status == StatusAuthenticated && ev.Session != nil {
			r.state = stateForSession(ev.Session)
		}
	}

	return r.state
}

// State returns the current derived state.
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func stateForSession(s *Session) State {
	if s == nil {
		return State{Status: StatusUnauthenticated, Role: RoleNone}
	}
	return State{Status: StatusAuthenticated, Role: s.Role}
}
