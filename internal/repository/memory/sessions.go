package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ezinne-pharmarcy/backend/internal/domain"
	"github.com/ezinne-pharmarcy/backend/internal/repository"
)

// Sessions is an in-memory SessionStore. One mutex serialises every Apply.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	now      func() time.Time

	// FailWrites makes Apply return the error instead of persisting.
	FailWrites error
}

// NewSessions creates an empty session store.
func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[string]domain.Session), now: time.Now}
}

var _ repository.SessionStore = (*Sessions)(nil)

func (s *Sessions) Get(_ context.Context, accountID string) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[accountID]; ok {
		return session, nil
	}
	return domain.Session{AccountID: accountID}, nil
}

func (s *Sessions) Apply(_ context.Context, accountID string, transition repository.SessionTransition) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.sessions[accountID]
	if !ok {
		current = domain.Session{AccountID: accountID}
	}

	next, err := transition(current)
	next.AccountID = accountID
	if next.Equal(current) {
		return current, err
	}
	if s.FailWrites != nil {
		return domain.Session{}, s.FailWrites
	}
	next.UpdatedAt = s.now().UTC()
	s.sessions[accountID] = next
	return next, err
}

func (s *Sessions) Delete(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, accountID)
	return nil
}

// Put replaces the stored session for its account.
func (s *Sessions) Put(session domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.AccountID] = session
}
