package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ezinne-pharmarcy/backend/internal/domain"
)

// AccountRepository is the credential store for all account kinds.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	Delete(ctx context.Context, kind domain.AccountKind, id string) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context, filter AccountFilter) ([]domain.Account, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// AccountFilter defines query params for account listing.
type AccountFilter struct {
	Kind   domain.AccountKind
	Limit  int
	Offset int
}

type accountRepository struct {
	db *sql.DB
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(db *sql.DB) AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, kind, email, password_hash, is_staff, is_active, is_store_admin, last_login, date_joined,
        first_name, last_name, username, other_names, gender, phone_number, date_of_birth, nationality, address,
        created_at, updated_at`

// kindOrder renders domain.KindPriority as an ORDER BY expression so lookups
// resolve deterministically even if an email or id matched several kinds.
func kindOrder() string {
	var b strings.Builder
	b.WriteString("CASE kind")
	for i, kind := range domain.KindPriority {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", kind, i)
	}
	fmt.Fprintf(&b, " ELSE %d END", len(domain.KindPriority))
	return b.String()
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (kind, email, password_hash, is_staff, is_active, is_store_admin, date_joined,
            first_name, last_name, username, other_names, gender, phone_number, date_of_birth, nationality, address)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
        RETURNING id, created_at, updated_at`

	p := account.Profile
	err := r.db.QueryRowContext(ctx, query,
		account.Kind,
		account.Email,
		account.PasswordHash,
		account.IsStaff,
		account.IsActive,
		account.IsStoreAdmin,
		account.DateJoined,
		p.FirstName,
		p.LastName,
		p.Username,
		p.OtherNames,
		p.Gender,
		p.PhoneNumber,
		p.DateOfBirth,
		p.Nationality,
		p.Address,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	return mapSQLError(err)
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	const query = `
        UPDATE accounts
        SET email=$1, password_hash=$2, is_staff=$3, is_active=$4, is_store_admin=$5,
            first_name=$6, last_name=$7, username=$8, other_names=$9, gender=$10, phone_number=$11,
            date_of_birth=$12, nationality=$13, address=$14, updated_at=NOW()
        WHERE id=$15 AND kind=$16`

	p := account.Profile
	res, err := r.db.ExecContext(ctx, query,
		account.Email,
		account.PasswordHash,
		account.IsStaff,
		account.IsActive,
		account.IsStoreAdmin,
		p.FirstName,
		p.LastName,
		p.Username,
		p.OtherNames,
		p.Gender,
		p.PhoneNumber,
		p.DateOfBirth,
		p.Nationality,
		p.Address,
		account.ID,
		account.Kind,
	)
	if err != nil {
		return mapSQLError(err)
	}
	return expectAffected(res)
}

func (r *accountRepository) Delete(ctx context.Context, kind domain.AccountKind, id string) error {
	const query = `DELETE FROM accounts WHERE id=$1 AND kind=$2`
	res, err := r.db.ExecContext(ctx, query, id, kind)
	if err != nil {
		return mapSQLError(err)
	}
	return expectAffected(res)
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `
        SELECT ` + accountColumns + `
        FROM accounts WHERE id=$1
        ORDER BY ` + kindOrder() + ` LIMIT 1`

	return scanAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `
        SELECT ` + accountColumns + `
        FROM accounts WHERE email=$1
        ORDER BY ` + kindOrder() + ` LIMIT 1`

	return scanAccount(r.db.QueryRowContext(ctx, query, email))
}

func (r *accountRepository) List(ctx context.Context, filter AccountFilter) ([]domain.Account, error) {
	query := `
        SELECT ` + accountColumns + `
        FROM accounts`
	args := []any{}

	if filter.Kind != "" {
		args = append(args, filter.Kind)
		query += fmt.Sprintf(" WHERE kind=$%d", len(args))
	}

	query += " ORDER BY last_name, first_name"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *account)
	}
	return result, rows.Err()
}

func (r *accountRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE accounts SET last_login=$1 WHERE id=$2`
	res, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return mapSQLError(err)
	}
	return expectAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		account   domain.Account
		lastLogin sql.NullTime
		birth     sql.NullTime
	)
	p := &account.Profile
	if err := row.Scan(
		&account.ID,
		&account.Kind,
		&account.Email,
		&account.PasswordHash,
		&account.IsStaff,
		&account.IsActive,
		&account.IsStoreAdmin,
		&lastLogin,
		&account.DateJoined,
		&p.FirstName,
		&p.LastName,
		&p.Username,
		&p.OtherNames,
		&p.Gender,
		&p.PhoneNumber,
		&birth,
		&p.Nationality,
		&p.Address,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, mapSQLError(err)
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		account.LastLogin = &t
	}
	if birth.Valid {
		t := birth.Time
		p.DateOfBirth = &t
	}
	return &account, nil
}

func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
