package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ezinne-pharmarcy/backend/internal/domain"
)

// SessionTransition computes the next session from the current one. A
// transition may return both a changed session and an error; stores persist
// the change before surfacing the error.
type SessionTransition func(current domain.Session) (domain.Session, error)

// SessionStore persists one session per account. Apply is the only way to
// change a session and runs the read-modify-write atomically per account.
type SessionStore interface {
	Get(ctx context.Context, accountID string) (domain.Session, error)
	Apply(ctx context.Context, accountID string, transition SessionTransition) (domain.Session, error)
	Delete(ctx context.Context, accountID string) error
}

type pgSessionStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSessionStore returns a Postgres-backed session store.
func NewSessionStore(db *sql.DB) SessionStore {
	return &pgSessionStore{db: db, now: time.Now}
}

func (s *pgSessionStore) Get(ctx context.Context, accountID string) (domain.Session, error) {
	const query = `
        SELECT account_id, authenticated, logged_in_at, last_activity_at, logged_out_at, updated_at
        FROM sessions WHERE account_id=$1`

	session, err := scanSession(s.db.QueryRowContext(ctx, query, accountID))
	if errors.Is(err, ErrNotFound) {
		return domain.Session{AccountID: accountID}, nil
	}
	return session, err
}

func (s *pgSessionStore) Apply(ctx context.Context, accountID string, transition SessionTransition) (domain.Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Session{}, err
	}
	defer func() { _ = tx.Rollback() }()

	const selectQuery = `
        SELECT account_id, authenticated, logged_in_at, last_activity_at, logged_out_at, updated_at
        FROM sessions WHERE account_id=$1 FOR UPDATE`

	current, err := scanSession(tx.QueryRowContext(ctx, selectQuery, accountID))
	switch {
	case errors.Is(err, ErrNotFound):
		current = domain.Session{AccountID: accountID}
	case err != nil:
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}

	next, terr := transition(current)
	next.AccountID = accountID
	if next.Equal(current) {
		return current, terr
	}

	next.UpdatedAt = s.now().UTC()
	const upsert = `
        INSERT INTO sessions (account_id, authenticated, logged_in_at, last_activity_at, logged_out_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (account_id) DO UPDATE SET
            authenticated=EXCLUDED.authenticated,
            logged_in_at=EXCLUDED.logged_in_at,
            last_activity_at=EXCLUDED.last_activity_at,
            logged_out_at=EXCLUDED.logged_out_at,
            updated_at=EXCLUDED.updated_at`

	if _, err := tx.ExecContext(ctx, upsert,
		next.AccountID,
		next.Authenticated,
		nullTime(next.LoggedInAt),
		nullTime(next.LastActivityAt),
		next.LoggedOutAt,
		next.UpdatedAt,
	); err != nil {
		return domain.Session{}, fmt.Errorf("save session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Session{}, fmt.Errorf("commit session: %w", err)
	}
	return next, terr
}

func (s *pgSessionStore) Delete(ctx context.Context, accountID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE account_id=$1`, accountID)
	return err
}

func scanSession(row rowScanner) (domain.Session, error) {
	var (
		session    domain.Session
		loggedIn   sql.NullTime
		lastActive sql.NullTime
		loggedOut  sql.NullTime
	)
	if err := row.Scan(
		&session.AccountID,
		&session.Authenticated,
		&loggedIn,
		&lastActive,
		&loggedOut,
		&session.UpdatedAt,
	); err != nil {
		return domain.Session{}, mapSQLError(err)
	}
	session.LoggedInAt = loggedIn.Time
	session.LastActivityAt = lastActive.Time
	if loggedOut.Valid {
		t := loggedOut.Time
		session.LoggedOutAt = &t
	}
	return session, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
