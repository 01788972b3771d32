package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/International-Combat-Archery-Alliance/registration-client/session"
	"github.com/International-Combat-Archery-Alliance/registration-client/users"
)

var (
	loading   = session.State{Loading: true}
	anonymous = session.State{}
	admin     = session.State{User: &users.User{ID: "a", Role: users.ROLE_ADMIN}}
	attendee  = session.State{User: &users.User{ID: "u", Role: users.ROLE_USER}}
)

func TestProtected(t *testing.T) {
	tests := []struct {
		name     string
		state    session.State
		role     users.Role
		expected Decision
	}{
		{name: "waits while loading", state: loading, role: users.ROLE_ADMIN, expected: Decision{Outcome: OUTCOME_WAIT}},
		{name: "anonymous goes to auth", state: anonymous, role: users.ROLE_ADMIN, expected: Decision{Outcome: OUTCOME_REDIRECT, Path: "/auth"}},
		{name: "user on admin view goes home", state: attendee, role: users.ROLE_ADMIN, expected: Decision{Outcome: OUTCOME_REDIRECT, Path: "/dashboard"}},
		{name: "admin on user view goes home", state: admin, role: users.ROLE_USER, expected: Decision{Outcome: OUTCOME_REDIRECT, Path: "/admin"}},
		{name: "matching role renders", state: admin, role: users.ROLE_ADMIN, expected: Decision{Outcome: OUTCOME_RENDER}},
		{name: "no role required renders", state: attendee, role: "", expected: Decision{Outcome: OUTCOME_RENDER}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Protected(tt.state, tt.role))
		})
	}
}

func TestPublicOnly(t *testing.T) {
	assert.Equal(t, Decision{Outcome: OUTCOME_WAIT}, PublicOnly(loading))
	assert.Equal(t, Decision{Outcome: OUTCOME_RENDER}, PublicOnly(anonymous))
	assert.Equal(t, Decision{Outcome: OUTCOME_REDIRECT, Path: "/admin"}, PublicOnly(admin))
	assert.Equal(t, Decision{Outcome: OUTCOME_REDIRECT, Path: "/dashboard"}, PublicOnly(attendee))
}

func TestAfterLogin(t *testing.T) {
	user := users.User{Role: users.ROLE_USER}

	assert.Equal(t, "/share/abc", AfterLogin(user, session.PendingRedirect{ShareID: "abc", EventID: "e1"}))
	assert.Equal(t, "/dashboard/browse-events?event=e1", AfterLogin(user, session.PendingRedirect{EventID: "e1"}))
	assert.Equal(t, "/dashboard", AfterLogin(user, session.PendingRedirect{}))
	assert.Equal(t, "/admin", AfterLogin(users.User{Role: users.ROLE_ADMIN}, session.PendingRedirect{}))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		state    session.State
		path     string
		expected Decision
	}{
		{name: "landing is public", state: anonymous, path: "/", expected: Decision{Outcome: OUTCOME_RENDER}},
		{name: "share is public", state: anonymous, path: "/share/xyz", expected: Decision{Outcome: OUTCOME_RENDER}},
		{name: "share needs an id", state: anonymous, path: "/share/", expected: Decision{Outcome: OUTCOME_REDIRECT, Path: "/"}},
		{name: "auth bounces signed in users", state: attendee, path: "/auth", expected: Decision{Outcome: OUTCOME_REDIRECT, Path: "/dashboard"}},
		{name: "admin route for user", state: attendee, path: "/admin/events", expected: Decision{Outcome: OUTCOME_REDIRECT, Path: "/dashboard"}},
		{name: "admin route for admin", state: admin, path: "/admin/create-event", expected: Decision{Outcome: OUTCOME_RENDER}},
		{name: "dashboard open to admins", state: admin, path: "/dashboard/browse-events?event=e1", expected: Decision{Outcome: OUTCOME_RENDER}},
		{name: "dashboard waits while loading", state: loading, path: "/dashboard", expected: Decision{Outcome: OUTCOME_WAIT}},
		{name: "unknown path", state: admin, path: "/nope", expected: Decision{Outcome: OUTCOME_REDIRECT, Path: "/"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolve(tt.state, tt.path))
		})
	}
}

func TestParams(t *testing.T) {
	assert.Equal(t, map[string]string{"shareId": "a b"}, Params("/share/a%20b"))
	assert.Equal(t, map[string]string{}, Params("/admin"))
	assert.Nil(t, Params("/missing"))
}
