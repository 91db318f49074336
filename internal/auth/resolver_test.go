package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezinne-pharmarcy/backend/internal/domain"
	"github.com/ezinne-pharmarcy/backend/internal/events"
	"github.com/ezinne-pharmarcy/backend/internal/repository/memory"
)

type resolverFixture struct {
	now      time.Time
	accounts *memory.Accounts
	sessions *memory.Sessions
	tokens   *TokenManager
	resolver *Resolver
	expired  []events.Event
}

func newResolverFixture(t *testing.T) *resolverFixture {
	t.Helper()
	f := &resolverFixture{
		now:      t0,
		accounts: memory.NewAccounts(),
		sessions: memory.NewSessions(),
	}
	clock := func() time.Time { return f.now }
	f.tokens = NewTokenManager("secret", time.Hour, 24*time.Hour).WithClock(clock)

	dispatcher := events.NewInMemoryDispatcher()
	dispatcher.Subscribe(func(_ context.Context, e events.Event) error {
		f.expired = append(f.expired, e)
		return nil
	}, events.EventSessionExpired)

	f.resolver = NewResolver(ResolverDeps{
		Tokens:     f.tokens,
		Accounts:   f.accounts,
		Sessions:   f.sessions,
		Machine:    NewSessionMachine(5 * time.Minute),
		Dispatcher: dispatcher,
		Clock:      clock,
	})
	return f
}

func (f *resolverFixture) loggedIn(t *testing.T, kind domain.AccountKind) (domain.Account, string) {
	t.Helper()
	account := domain.Account{ID: "11111111-1111-1111-1111-111111111111", Kind: kind, Email: "a@example.com"}
	f.accounts.Seed(account)
	f.sessions.Put(domain.Session{AccountID: account.ID, Authenticated: true, LoggedInAt: f.now, LastActivityAt: f.now})
	pair, err := f.tokens.Issue(account.ID)
	require.NoError(t, err)
	return account, pair.Access
}

func TestResolverSlidesSessionWindow(t *testing.T) {
	f := newResolverFixture(t)
	account, token := f.loggedIn(t, domain.KindRetailStaff)

	for i := 0; i < 3; i++ {
		f.now = f.now.Add(4 * time.Minute)
		got, err := f.resolver.Resolve(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, account.ID, got.ID)
	}

	session, err := f.sessions.Get(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, session.Authenticated)
	assert.Equal(t, t0.Add(12*time.Minute), session.LastActivityAt)
}

func TestResolverTTLBoundary(t *testing.T) {
	t.Run("just inside", func(t *testing.T) {
		f := newResolverFixture(t)
		_, token := f.loggedIn(t, domain.KindOwner)
		f.now = t0.Add(5*time.Minute - time.Millisecond)

		_, err := f.resolver.Resolve(context.Background(), token)
		assert.NoError(t, err)
	})

	t.Run("at ttl", func(t *testing.T) {
		f := newResolverFixture(t)
		account, token := f.loggedIn(t, domain.KindOwner)
		f.now = t0.Add(5 * time.Minute)

		_, err := f.resolver.Resolve(context.Background(), token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.ErrorIs(t, err, ErrSessionExpired)

		session, err := f.sessions.Get(context.Background(), account.ID)
		require.NoError(t, err)
		assert.False(t, session.Authenticated, "expiry must be persisted")
		require.Len(t, f.expired, 1)
		assert.Equal(t, account.ID, f.expired[0].Actor.AccountID)

		_, err = f.resolver.Resolve(context.Background(), token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.NotErrorIs(t, err, ErrSessionExpired)
		assert.Len(t, f.expired, 1)
	})
}

func TestResolverRejectsBadTokens(t *testing.T) {
	f := newResolverFixture(t)
	f.loggedIn(t, domain.KindOwner)

	_, err := f.resolver.Resolve(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.ErrorIs(t, err, ErrInvalidToken)

	orphan, err := f.tokens.Issue("22222222-2222-2222-2222-222222222222")
	require.NoError(t, err)
	_, err = f.resolver.Resolve(context.Background(), orphan.Access)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolverLoggedOutAccount(t *testing.T) {
	f := newResolverFixture(t)
	account := domain.Account{ID: "33333333-3333-3333-3333-333333333333", Kind: domain.KindAdminStaff}
	f.accounts.Seed(account)
	pair, err := f.tokens.Issue(account.ID)
	require.NoError(t, err)

	_, err = f.resolver.Resolve(context.Background(), pair.Access)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolverPrefersOwnerOnDuplicateID(t *testing.T) {
	f := newResolverFixture(t)
	_, token := f.loggedIn(t, domain.KindRetailStaff)
	f.accounts.Seed(domain.Account{ID: "11111111-1111-1111-1111-111111111111", Kind: domain.KindOwner})
	f.accounts.Seed(domain.Account{ID: "11111111-1111-1111-1111-111111111111", Kind: domain.KindAdminStaff})

	got, err := f.resolver.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, domain.KindOwner, got.Kind)
}

func TestResolverStoreFailureIsNotAuthError(t *testing.T) {
	f := newResolverFixture(t)
	_, token := f.loggedIn(t, domain.KindOwner)
	boom := errors.New("connection reset")
	f.sessions.FailWrites = boom
	f.now = t0.Add(time.Minute)

	_, err := f.resolver.Resolve(context.Background(), token)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUnauthenticated)
}
