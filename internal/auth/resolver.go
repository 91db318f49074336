package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ezinne-pharmarcy/backend/internal/domain"
	"github.com/ezinne-pharmarcy/backend/internal/events"
	"github.com/ezinne-pharmarcy/backend/internal/repository"
)

// TokenVerifier extracts the account id from an access token.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AccountFinder looks an account up by id across all kinds.
type AccountFinder interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
}

// Resolver turns a bearer token into the acting account. Every successful
// resolution slides the session window, so a read of identity mutates state.
type Resolver struct {
	tokens     TokenVerifier
	accounts   AccountFinder
	sessions   repository.SessionStore
	machine    SessionMachine
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// ResolverDeps bundles Resolver collaborators.
type ResolverDeps struct {
	Tokens     TokenVerifier
	Accounts   AccountFinder
	Sessions   repository.SessionStore
	Machine    SessionMachine
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// NewResolver builds a Resolver. Logger, dispatcher and clock are optional.
func NewResolver(deps ResolverDeps) *Resolver {
	r := &Resolver{
		tokens:     deps.Tokens,
		accounts:   deps.Accounts,
		sessions:   deps.Sessions,
		machine:    deps.Machine,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        deps.Clock,
	}
	if r.machine.ttl <= 0 {
		r.machine = NewSessionMachine(0)
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Resolve verifies token, loads its account and touches the session.
// Authentication failures match ErrUnauthenticated; store failures are
// returned unwrapped from that kind so callers can answer 500.
func (r *Resolver) Resolve(ctx context.Context, token string) (*domain.Account, error) {
	accountID, err := r.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, ErrInvalidToken)
	}

	account, err := r.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			r.logger.Debug("token subject has no account", zap.String("account_id", accountID))
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("load account: %w", err)
	}

	now := r.now()
	session, err := r.sessions.Apply(ctx, account.ID, r.machine.Touch(now))
	switch {
	case errors.Is(err, ErrSessionExpired):
		r.logger.Info("session expired",
			zap.String("account_id", account.ID),
			zap.Time("last_activity_at", session.LastActivityAt),
		)
		r.publishExpired(ctx, account, session)
		return nil, err
	case errors.Is(err, ErrUnauthenticated):
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("touch session: %w", err)
	}
	return account, nil
}

func (r *Resolver) publishExpired(ctx context.Context, account *domain.Account, session domain.Session) {
	if r.dispatcher == nil {
		return
	}
	err := r.dispatcher.Publish(ctx, events.Event{
		Type:      events.EventSessionExpired,
		Actor:     events.Actor{AccountID: account.ID, Kind: account.Kind},
		Timestamp: r.now().UTC(),
		Payload:   events.SessionExpiredPayload{LastActivityAt: session.LastActivityAt},
	})
	if err != nil {
		r.logger.Warn("publish session expired", zap.Error(err))
	}
}
