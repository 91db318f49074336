package auth

import (
	"time"

	"github.com/ezinne-pharmarcy/backend/internal/domain"
	"github.com/ezinne-pharmarcy/backend/internal/repository"
)

// DefaultSessionTTL is the sliding inactivity window of a session.
const DefaultSessionTTL = 5 * time.Minute

// SessionMachine builds the session transitions applied through a
// repository.SessionStore.
//
//	LoggedOut --Login--> LoggedIn --Touch--> LoggedIn
//	LoggedIn  --Logout--> LoggedOut
//	LoggedIn  --Touch after TTL--> LoggedOut (reported as expired)
//	Expired   --Login--> LoggedIn
type SessionMachine struct {
	ttl time.Duration
}

// NewSessionMachine returns a machine with the given TTL, or DefaultSessionTTL
// when ttl is not positive.
func NewSessionMachine(ttl time.Duration) SessionMachine {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return SessionMachine{ttl: ttl}
}

// TTL returns the sliding window length.
func (m SessionMachine) TTL() time.Duration {
	return m.ttl
}

// Login starts a session. A session that is still live rejects the login with
// ErrSessionConflict and is left untouched.
func (m SessionMachine) Login(now time.Time) repository.SessionTransition {
	return func(s domain.Session) (domain.Session, error) {
		if s.Live(now, m.ttl) {
			return s, ErrSessionConflict
		}
		s.Authenticated = true
		s.LoggedInAt = now
		s.LastActivityAt = now
		s.LoggedOutAt = nil
		return s, nil
	}
}

// Touch records activity on a live session. An expired session is flipped to
// unauthenticated and ErrSessionExpired is returned alongside the change.
func (m SessionMachine) Touch(now time.Time) repository.SessionTransition {
	return func(s domain.Session) (domain.Session, error) {
		switch s.State(now, m.ttl) {
		case domain.SessionLoggedOut:
			return s, ErrUnauthenticated
		case domain.SessionExpired:
			s.Authenticated = false
			return s, ErrSessionExpired
		}
		s.LastActivityAt = now
		return s, nil
	}
}

// Logout ends an authenticated session.
func (m SessionMachine) Logout(now time.Time) repository.SessionTransition {
	return func(s domain.Session) (domain.Session, error) {
		if !s.Authenticated {
			return s, ErrUnauthenticated
		}
		s.Authenticated = false
		t := now
		s.LoggedOutAt = &t
		return s, nil
	}
}
