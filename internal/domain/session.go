package domain

import "time"

// SessionState enumerates the lifecycle states of an account session.
type SessionState string

const (
	SessionLoggedOut SessionState = "LOGGED_OUT"
	SessionLoggedIn  SessionState = "LOGGED_IN"
	SessionExpired   SessionState = "EXPIRED"
)

// Session is the authentication status of a single account. There is at most
// one session per account.
type Session struct {
	AccountID      string
	Authenticated  bool
	LoggedInAt     time.Time
	LastActivityAt time.Time
	LoggedOutAt    *time.Time
	UpdatedAt      time.Time
}

// ExpiresAt returns the instant at which the session stops being live.
func (s Session) ExpiresAt(ttl time.Duration) time.Time {
	return s.LastActivityAt.Add(ttl)
}

// Live reports whether the session is authenticated and still inside its TTL window.
func (s Session) Live(now time.Time, ttl time.Duration) bool {
	return s.State(now, ttl) == SessionLoggedIn
}

// State derives the state machine position at now.
func (s Session) State(now time.Time, ttl time.Duration) SessionState {
	switch {
	case !s.Authenticated:
		return SessionLoggedOut
	case now.Before(s.ExpiresAt(ttl)):
		return SessionLoggedIn
	default:
		return SessionExpired
	}
}

// Equal reports whether two sessions hold the same persisted values.
func (s Session) Equal(o Session) bool {
	if s.AccountID != o.AccountID || s.Authenticated != o.Authenticated {
		return false
	}
	if !s.LoggedInAt.Equal(o.LoggedInAt) || !s.LastActivityAt.Equal(o.LastActivityAt) {
		return false
	}
	switch {
	case s.LoggedOutAt == nil && o.LoggedOutAt == nil:
		return true
	case s.LoggedOutAt == nil || o.LoggedOutAt == nil:
		return false
	default:
		return s.LoggedOutAt.Equal(*o.LoggedOutAt)
	}
}
