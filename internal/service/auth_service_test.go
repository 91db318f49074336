package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ezinne-pharmarcy/backend/internal/auth"
	"github.com/ezinne-pharmarcy/backend/internal/domain"
	"github.com/ezinne-pharmarcy/backend/internal/events"
)

func TestLoginOpensSession(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seed(t, domain.KindOwner, "owner@example.com", "password1", true)

	result, err := env.auth.Login(context.Background(), "owner@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, result.Account.ID)
	require.NotNil(t, result.Account.LastLogin)
	assert.Equal(t, serviceT0, *result.Account.LastLogin)

	subject, err := env.tokens.Verify(result.Tokens.Access)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, subject)

	session, err := env.sessions.Get(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.True(t, session.Authenticated)
	assert.Equal(t, serviceT0, session.LoggedInAt)
	assert.Equal(t, []events.EventType{events.EventLoginSucceeded}, env.typesPublished())
}

func TestLoginFailuresAreIndistinguishableToCallers(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, domain.KindRetailStaff, "retail@example.com", "password1", false)

	_, unknownErr := env.auth.Login(context.Background(), "nobody@example.com", "password1")
	assert.ErrorIs(t, unknownErr, auth.ErrAccountNotFound)

	_, wrongErr := env.auth.Login(context.Background(), "retail@example.com", "not-it")
	assert.ErrorIs(t, wrongErr, auth.ErrInvalidCredentials)

	require.Len(t, env.published, 2)
	for _, e := range env.published {
		assert.Equal(t, events.EventLoginFailed, e.Type)
	}
}

func TestUnknownEmailHashMatchesAccountCost(t *testing.T) {
	const cost = bcrypt.MinCost + 1
	svc, err := NewAuthService(AuthDependencies{BcryptCost: cost})
	require.NoError(t, err)

	got, err := bcrypt.Cost(svc.dummyHash)
	require.NoError(t, err)
	assert.Equal(t, cost, got)

	accountHash, err := auth.HashPassword("password1", cost)
	require.NoError(t, err)
	accountCost, err := bcrypt.Cost([]byte(accountHash))
	require.NoError(t, err)
	assert.Equal(t, accountCost, got)
}

func TestLoginConflictsWhileSessionLive(t *testing.T) {
	env := newTestEnv(t)
	account := env.seed(t, domain.KindAdminStaff, "admin@example.com", "password1", false)

	_, err := env.auth.Login(context.Background(), "admin@example.com", "password1")
	require.NoError(t, err)

	env.now = serviceT0.Add(4 * time.Minute)
	_, err = env.auth.Login(context.Background(), "admin@example.com", "password1")
	assert.ErrorIs(t, err, auth.ErrSessionConflict)

	session, err := env.sessions.Get(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, serviceT0, session.LoggedInAt, "conflicting login must not change the session")

	env.now = serviceT0.Add(5 * time.Minute)
	_, err = env.auth.Login(context.Background(), "admin@example.com", "password1")
	assert.NoError(t, err, "login succeeds once the previous session expired")
}

func TestLogoutTwice(t *testing.T) {
	env := newTestEnv(t)
	account := env.seed(t, domain.KindRetailStaff, "retail@example.com", "password1", false)

	_, err := env.auth.Login(context.Background(), "retail@example.com", "password1")
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(context.Background(), account))
	assert.ErrorIs(t, env.auth.Logout(context.Background(), account), auth.ErrUnauthenticated)

	session, err := env.sessions.Get(context.Background(), account.ID)
	require.NoError(t, err)
	assert.False(t, session.Authenticated)
	require.NotNil(t, session.LoggedOutAt)

	_, err = env.auth.Login(context.Background(), "retail@example.com", "password1")
	assert.NoError(t, err)
}

func TestLoginSessionStoreFailure(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, domain.KindOwner, "owner@example.com", "password1", true)
	boom := errors.New("connection refused")
	env.sessions.FailWrites = boom

	_, err := env.auth.Login(context.Background(), "owner@example.com", "password1")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, auth.ErrSessionConflict)
}

func TestLogoutWithoutIdentity(t *testing.T) {
	env := newTestEnv(t)
	assert.ErrorIs(t, env.auth.Logout(context.Background(), nil), auth.ErrUnauthenticated)
}
