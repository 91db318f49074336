package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezinne-pharmarcy/backend/internal/domain"
)

var t0 = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

func TestSessionMachineDefaultsTTL(t *testing.T) {
	assert.Equal(t, DefaultSessionTTL, NewSessionMachine(0).TTL())
	assert.Equal(t, time.Minute, NewSessionMachine(time.Minute).TTL())
}

func TestSessionMachineLogin(t *testing.T) {
	m := NewSessionMachine(5 * time.Minute)

	t.Run("from logged out", func(t *testing.T) {
		out := t0.Add(-time.Hour)
		next, err := m.Login(t0)(domain.Session{AccountID: "a", LoggedOutAt: &out})
		require.NoError(t, err)
		assert.True(t, next.Authenticated)
		assert.Equal(t, t0, next.LoggedInAt)
		assert.Equal(t, t0, next.LastActivityAt)
		assert.Nil(t, next.LoggedOutAt)
	})

	t.Run("conflicts while live", func(t *testing.T) {
		live := domain.Session{AccountID: "a", Authenticated: true, LoggedInAt: t0, LastActivityAt: t0}
		next, err := m.Login(t0.Add(4 * time.Minute))(live)
		assert.ErrorIs(t, err, ErrSessionConflict)
		assert.True(t, next.Equal(live))
	})

	t.Run("allowed once expired", func(t *testing.T) {
		stale := domain.Session{AccountID: "a", Authenticated: true, LoggedInAt: t0, LastActivityAt: t0}
		next, err := m.Login(t0.Add(5 * time.Minute))(stale)
		require.NoError(t, err)
		assert.Equal(t, t0.Add(5*time.Minute), next.LoggedInAt)
	})
}

func TestSessionMachineTouch(t *testing.T) {
	m := NewSessionMachine(5 * time.Minute)
	live := domain.Session{AccountID: "a", Authenticated: true, LoggedInAt: t0, LastActivityAt: t0}

	t.Run("slides window", func(t *testing.T) {
		at := t0.Add(5*time.Minute - time.Nanosecond)
		next, err := m.Touch(at)(live)
		require.NoError(t, err)
		assert.Equal(t, at, next.LastActivityAt)
		assert.True(t, next.Authenticated)
	})

	t.Run("expires at boundary", func(t *testing.T) {
		next, err := m.Touch(t0.Add(5 * time.Minute))(live)
		assert.ErrorIs(t, err, ErrSessionExpired)
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.False(t, next.Authenticated)
		assert.Equal(t, t0, next.LastActivityAt)
	})

	t.Run("logged out", func(t *testing.T) {
		_, err := m.Touch(t0)(domain.Session{AccountID: "a"})
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.NotErrorIs(t, err, ErrSessionExpired)
	})
}

func TestSessionMachineLogout(t *testing.T) {
	m := NewSessionMachine(5 * time.Minute)
	live := domain.Session{AccountID: "a", Authenticated: true, LoggedInAt: t0, LastActivityAt: t0}

	next, err := m.Logout(t0.Add(time.Minute))(live)
	require.NoError(t, err)
	assert.False(t, next.Authenticated)
	require.NotNil(t, next.LoggedOutAt)
	assert.Equal(t, t0.Add(time.Minute), *next.LoggedOutAt)

	_, err = m.Logout(t0.Add(2 * time.Minute))(next)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSessionState(t *testing.T) {
	ttl := 5 * time.Minute
	s := domain.Session{Authenticated: true, LastActivityAt: t0}
	assert.Equal(t, domain.SessionLoggedIn, s.State(t0.Add(time.Minute), ttl))
	assert.Equal(t, domain.SessionExpired, s.State(t0.Add(ttl), ttl))
	assert.Equal(t, domain.SessionLoggedOut, domain.Session{}.State(t0, ttl))
}

func TestTransitionsFollowSessionState(t *testing.T) {
	ttl := 5 * time.Minute
	m := NewSessionMachine(ttl)
	live := domain.Session{AccountID: "a", Authenticated: true, LoggedInAt: t0, LastActivityAt: t0}

	cases := []struct {
		name       string
		session    domain.Session
		at         time.Time
		state      domain.SessionState
		touchErr   error
		loginTaken bool
	}{
		{"logged in", live, t0.Add(ttl - time.Nanosecond), domain.SessionLoggedIn, nil, true},
		{"expired", live, t0.Add(ttl), domain.SessionExpired, ErrSessionExpired, false},
		{"logged out", domain.Session{AccountID: "a"}, t0, domain.SessionLoggedOut, ErrUnauthenticated, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.state, tc.session.State(tc.at, ttl))
			assert.Equal(t, tc.loginTaken, tc.session.Live(tc.at, ttl))

			_, err := m.Touch(tc.at)(tc.session)
			if tc.touchErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.touchErr)
			}

			_, err = m.Login(tc.at)(tc.session)
			if tc.loginTaken {
				assert.ErrorIs(t, err, ErrSessionConflict)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
