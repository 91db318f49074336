package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ezinne-pharmarcy/backend/internal/auth"
	"github.com/ezinne-pharmarcy/backend/internal/domain"
	"github.com/ezinne-pharmarcy/backend/internal/events"
	"github.com/ezinne-pharmarcy/backend/internal/observability"
	"github.com/ezinne-pharmarcy/backend/internal/repository"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Account *domain.Account
	Tokens  domain.TokenPair
}

// AuthService coordinates login and logout.
type AuthService struct {
	accounts   repository.AccountRepository
	sessions   repository.SessionStore
	machine    auth.SessionMachine
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
	dummyHash  []byte
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	Accounts   repository.AccountRepository
	Sessions   repository.SessionStore
	Machine    auth.SessionMachine
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Clock      func() time.Time
	// BcryptCost must match the cost accounts are hashed with.
	BcryptCost int
}

// NewAuthService builds the service. It fails only if the dummy hash used
// for unknown emails cannot be generated.
func NewAuthService(deps AuthDependencies) (*AuthService, error) {
	dummy, err := auth.DummyHash(deps.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("build dummy hash: %w", err)
	}
	s := &AuthService{
		accounts:   deps.Accounts,
		sessions:   deps.Sessions,
		machine:    deps.Machine,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        deps.Clock,
		dummyHash:  dummy,
	}
	if s.machine.TTL() <= 0 {
		s.machine = auth.NewSessionMachine(0)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Login authenticates email/password and opens the account's session.
// Unknown email and wrong password stay distinct here (ErrAccountNotFound,
// ErrInvalidCredentials); the HTTP layer renders them identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			auth.BurnCompare(s.dummyHash, password)
			s.loginFailed(ctx, email, nil, "unknown_email")
			return nil, auth.ErrAccountNotFound
		}
		return nil, fmt.Errorf("load account: %w", err)
	}

	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		s.loginFailed(ctx, email, account, "wrong_password")
		return nil, auth.ErrInvalidCredentials
	}

	tokens, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	now := s.now()
	if _, err := s.sessions.Apply(ctx, account.ID, s.machine.Login(now)); err != nil {
		if errors.Is(err, auth.ErrSessionConflict) {
			s.loginFailed(ctx, email, account, "session_conflict")
			return nil, err
		}
		return nil, fmt.Errorf("open session: %w", err)
	}

	if err := s.accounts.TouchLastLogin(ctx, account.ID, now.UTC()); err != nil {
		s.logger.Warn("record last login", zap.String("account_id", account.ID), zap.Error(err))
	} else {
		t := now.UTC()
		account.LastLogin = &t
	}

	s.metrics.RecordAuth("login", "success")
	s.logger.Info("login succeeded",
		zap.String("account_id", account.ID),
		zap.String("kind", string(account.Kind)),
	)
	s.publish(ctx, events.Event{
		Type:      events.EventLoginSucceeded,
		Actor:     events.Actor{AccountID: account.ID, Kind: account.Kind},
		Timestamp: now.UTC(),
	})

	return &LoginResult{Account: account, Tokens: tokens}, nil
}

// Logout ends the identity's session. A second logout fails with
// auth.ErrUnauthenticated.
func (s *AuthService) Logout(ctx context.Context, identity *domain.Account) error {
	if identity == nil {
		return auth.ErrUnauthenticated
	}

	now := s.now()
	if _, err := s.sessions.Apply(ctx, identity.ID, s.machine.Logout(now)); err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			s.metrics.RecordAuth("logout", "unauthenticated")
			return err
		}
		return fmt.Errorf("close session: %w", err)
	}

	s.metrics.RecordAuth("logout", "success")
	s.logger.Info("logout", zap.String("account_id", identity.ID))
	s.publish(ctx, events.Event{
		Type:      events.EventLogout,
		Actor:     events.Actor{AccountID: identity.ID, Kind: identity.Kind},
		Timestamp: now.UTC(),
	})
	return nil
}

func (s *AuthService) loginFailed(ctx context.Context, email string, account *domain.Account, reason string) {
	s.metrics.RecordAuth("login", reason)

	fields := []zap.Field{zap.String("reason", reason)}
	actor := events.Actor{}
	if account != nil {
		fields = append(fields, zap.String("account_id", account.ID))
		actor = events.Actor{AccountID: account.ID, Kind: account.Kind}
	}
	s.logger.Info("login failed", fields...)

	s.publish(ctx, events.Event{
		Type:      events.EventLoginFailed,
		Actor:     actor,
		Timestamp: s.now().UTC(),
		Payload:   events.LoginFailedPayload{Email: email, Reason: reason},
	})
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event", zap.String("type", string(event.Type)), zap.Error(err))
	}
}
