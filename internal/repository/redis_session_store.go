package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ezinne-pharmarcy/backend/internal/domain"
)

const redisSessionMaxRetries = 8

// DefaultRedisSessionRetention bounds how long an untouched session key lives.
// A missing key reads as logged out.
const DefaultRedisSessionRetention = 30 * 24 * time.Hour

// ErrSessionContention is returned when the optimistic transaction keeps
// losing to concurrent writers.
var ErrSessionContention = errors.New("repository: session update contention")

type redisSessionStore struct {
	client    *redis.Client
	prefix    string
	retention time.Duration
	now       func() time.Time
}

type redisSession struct {
	AccountID      string     `json:"account_id"`
	Authenticated  bool       `json:"authenticated"`
	LoggedInAt     time.Time  `json:"logged_in_at"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	LoggedOutAt    *time.Time `json:"logged_out_at,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewRedisSessionStore stores sessions as JSON under prefix+accountID and
// serialises updates with WATCH/MULTI. Every write resets the key's expiry to
// retention, or DefaultRedisSessionRetention when retention is not positive.
func NewRedisSessionStore(client *redis.Client, prefix string, retention time.Duration) SessionStore {
	if prefix == "" {
		prefix = "session:"
	}
	if retention <= 0 {
		retention = DefaultRedisSessionRetention
	}
	return &redisSessionStore{client: client, prefix: prefix, retention: retention, now: time.Now}
}

func (s *redisSessionStore) key(accountID string) string {
	return s.prefix + accountID
}

func (s *redisSessionStore) Get(ctx context.Context, accountID string) (domain.Session, error) {
	return s.load(ctx, s.client, accountID)
}

func (s *redisSessionStore) load(ctx context.Context, cmd redis.Cmdable, accountID string) (domain.Session, error) {
	raw, err := cmd.Get(ctx, s.key(accountID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{AccountID: accountID}, nil
	}
	if err != nil {
		return domain.Session{}, err
	}
	var rs redisSession
	if err := json.Unmarshal(raw, &rs); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return domain.Session(rs), nil
}

func (s *redisSessionStore) Apply(ctx context.Context, accountID string, transition SessionTransition) (domain.Session, error) {
	key := s.key(accountID)

	var (
		result domain.Session
		terr   error
	)
	txf := func(tx *redis.Tx) error {
		current, err := s.load(ctx, tx, accountID)
		if err != nil {
			return err
		}

		next, transErr := transition(current)
		next.AccountID = accountID
		if next.Equal(current) {
			result, terr = current, transErr
			return nil
		}

		next.UpdatedAt = s.now().UTC()
		payload, err := json.Marshal(redisSession(next))
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.retention)
			return nil
		})
		if err != nil {
			return err
		}
		result, terr = next, transErr
		return nil
	}

	for i := 0; i < redisSessionMaxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, terr
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return domain.Session{}, err
	}
	return domain.Session{}, ErrSessionContention
}

func (s *redisSessionStore) Delete(ctx context.Context, accountID string) error {
	return s.client.Del(ctx, s.key(accountID)).Err()
}
