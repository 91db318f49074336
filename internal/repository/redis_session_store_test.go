package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSessionStore(client, "test:session:", time.Hour), mr
}

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	session, err := store.Apply(ctx, "acc-1", loginAt(sessionT0))
	require.NoError(t, err)
	assert.True(t, session.Authenticated)
	assert.True(t, mr.Exists("test:session:acc-1"))

	loaded, err := store.Get(ctx, "acc-1")
	require.NoError(t, err)
	assert.True(t, loaded.Equal(session))
}

func TestRedisSessionStoreKeysExpire(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	_, err := store.Apply(ctx, "acc-1", loginAt(sessionT0))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL("test:session:acc-1"))

	mr.FastForward(30 * time.Minute)
	_, err = store.Apply(ctx, "acc-1", expireWith(nil))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL("test:session:acc-1"), "writes refresh the expiry")

	mr.FastForward(time.Hour + time.Second)
	assert.False(t, mr.Exists("test:session:acc-1"))

	loaded, err := store.Get(ctx, "acc-1")
	require.NoError(t, err)
	assert.False(t, loaded.Authenticated)
}

func TestRedisSessionStoreRejectedTransition(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	_, err := store.Apply(ctx, "acc-1", loginAt(sessionT0))
	require.NoError(t, err)

	session, err := store.Apply(ctx, "acc-1", loginAt(sessionT0.Add(time.Minute)))
	assert.ErrorIs(t, err, errRejected)
	assert.Equal(t, sessionT0, session.LoggedInAt.UTC())
}

func TestRedisSessionStorePersistsChangeBeforeError(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	_, err := store.Apply(ctx, "acc-1", loginAt(sessionT0))
	require.NoError(t, err)

	_, err = store.Apply(ctx, "acc-1", expireWith(errRejected))
	assert.ErrorIs(t, err, errRejected)

	loaded, err := store.Get(ctx, "acc-1")
	require.NoError(t, err)
	assert.False(t, loaded.Authenticated)
}

func TestRedisSessionStoreSingleWinnerUnderConcurrentLogin(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	const attempts = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Apply(ctx, "acc-1", loginAt(sessionT0))
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, successes)
}

func TestRedisSessionStoreDelete(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	_, err := store.Apply(ctx, "acc-1", loginAt(sessionT0))
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "acc-1"))
	assert.False(t, mr.Exists("test:session:acc-1"))

	session, err := store.Get(ctx, "acc-1")
	require.NoError(t, err)
	assert.False(t, session.Authenticated)
}
