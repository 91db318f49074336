package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ezinne-pharmarcy/backend/internal/auth"
	"github.com/ezinne-pharmarcy/backend/internal/domain"
	"github.com/ezinne-pharmarcy/backend/internal/events"
	"github.com/ezinne-pharmarcy/backend/internal/repository/memory"
)

var serviceT0 = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	now        time.Time
	accounts   *memory.Accounts
	sessions   *memory.Sessions
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	published  []events.Event
	auth       *AuthService
	accountSvc *AccountService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		now:        serviceT0,
		accounts:   memory.NewAccounts(),
		sessions:   memory.NewSessions(),
		dispatcher: events.NewInMemoryDispatcher(),
	}
	clock := env.clock
	env.tokens = auth.NewTokenManager("secret", time.Hour, 24*time.Hour).WithClock(clock)
	env.dispatcher.Subscribe(func(_ context.Context, e events.Event) error {
		env.published = append(env.published, e)
		return nil
	}, events.AuditTypes...)

	authSvc, err := NewAuthService(AuthDependencies{
		Accounts:   env.accounts,
		Sessions:   env.sessions,
		Machine:    auth.NewSessionMachine(5 * time.Minute),
		Tokens:     env.tokens,
		Dispatcher: env.dispatcher,
		Clock:      clock,
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)
	env.auth = authSvc
	env.accountSvc = NewAccountService(AccountDependencies{
		Accounts:   env.accounts,
		Sessions:   env.sessions,
		Dispatcher: env.dispatcher,
		BcryptCost: bcrypt.MinCost,
		Clock:      clock,
	})
	return env
}

func (e *testEnv) clock() time.Time { return e.now }

func (e *testEnv) seed(t *testing.T, kind domain.AccountKind, email, password string, storeAdmin bool) *domain.Account {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	account := &domain.Account{
		Kind:         kind,
		Email:        email,
		PasswordHash: hash,
		IsStaff:      true,
		IsActive:     true,
		IsStoreAdmin: storeAdmin,
	}
	require.NoError(t, e.accounts.Create(context.Background(), account))
	return account
}

func (e *testEnv) typesPublished() []events.EventType {
	out := make([]events.EventType, 0, len(e.published))
	for _, ev := range e.published {
		out = append(out, ev.Type)
	}
	return out
}
