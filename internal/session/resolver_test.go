package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func studentSession() *Session {
	return &Session{
		UserID:    uuid.New(),
		Role:      RoleStudent,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestResolverStartsLoading(t *testing.T) {
	r := NewResolver()

	state := r.State()
	assert.Equal(t, StatusLoading, state.Status)
	assert.Equal(t, RoleNone, state.Role)
	assert.Empty(t, state.Err)
}

func TestInitialSessionResolvesStatus(t *testing.T) {
	r := NewResolver()
	state := r.Apply(Event{Kind: EventInitialSession})
	assert.Equal(t, StatusUnauthenticated, state.Status)

	r = NewResolver()
	state = r.Apply(Event{Kind: EventInitialSession, Session: studentSession()})
	assert.Equal(t, StatusAuthenticated, state.Status)
	assert.Equal(t, RoleStudent, state.Role)
}

func TestSignInThenSignOut(t *testing.T) {
	r := NewResolver()
	assert.Equal(t, StatusLoading, r.State().Status)

	state := r.Apply(Event{Kind: EventSignedIn, Session: studentSession()})
	assert.Equal(t, StatusAuthenticated, state.Status)
	assert.Equal(t, RoleStudent, state.Role)
	assert.Empty(t, state.Err)

	state = r.Apply(Event{Kind: EventSignedOut})
	assert.Equal(t, StatusUnauthenticated, state.Status)
	assert.Equal(t, RoleNone, state.Role)
	assert.Empty(t, state.Err)
}

func TestSignInAndSignOutClearRecordedError(t *testing.T) {
	r := NewResolver()
	state := r.Apply(Event{Kind: EventInitialLoadFailed, Err: "network unreachable"})
	assert.Equal(t, StatusUnauthenticated, state.Status)
	assert.Equal(t, "network unreachable", state.Err)

	state = r.Apply(Event{Kind: EventSignedIn, Session: studentSession()})
	assert.Empty(t, state.Err)

	r = NewResolver()
	r.Apply(Event{Kind: EventInitialLoadFailed, Err: "network unreachable"})
	state = r.Apply(Event{Kind: EventSignedOut})
	assert.Empty(t, state.Err)
}

func TestInitialLoadFailureExitsLoading(t *testing.T) {
	r := NewResolver()
	state := r.Apply(Event{Kind: EventInitialLoadFailed, Err: "timeout"})

	assert.NotEqual(t, StatusLoading, state.Status)
	assert.Equal(t, "timeout", state.Err)
}

func TestTokenRefreshKeepsAuthenticatedState(t *testing.T) {
	r := NewResolver()
	r.Apply(Event{Kind: EventSignedIn, Session: studentSession()})

	refreshed := studentSession()
	refreshed.Role = RoleStudent
	state := r.Apply(Event{Kind: EventTokenRefreshed, Session: refreshed})
	assert.Equal(t, StatusAuthenticated, state.Status)
	assert.Equal(t, RoleStudent, state.Role)
}

func TestTokenRefreshIgnoredWhenSignedOut(t *testing.T) {
	r := NewResolver()
	r.Apply(Event{Kind: EventSignedOut})

	state := r.Apply(Event{Kind: EventTokenRefreshed, Session: studentSession()})
	assert.Equal(t, StatusUnauthenticated, state.Status)
}

func TestEmployerRoleIsDerivedFromSession(t *testing.T) {
	r := NewResolver()
	state := r.Apply(Event{Kind: EventSignedIn, Session: &Session{
		UserID: uuid.New(),
		Role:   RoleEmployer,
	}})

	assert.Equal(t, StatusAuthenticated, state.Status)
	assert.Equal(t, RoleEmployer, state.Role)
}
