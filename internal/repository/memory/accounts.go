// Package memory provides process-local repository implementations used when
// no database is configured and by service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ezinne-pharmarcy/backend/internal/domain"
	"github.com/ezinne-pharmarcy/backend/internal/repository"
)

// Accounts is an in-memory AccountRepository.
type Accounts struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
	now      func() time.Time
}

// NewAccounts creates an empty account store.
func NewAccounts() *Accounts {
	return &Accounts{accounts: make(map[string]domain.Account), now: time.Now}
}

var _ repository.AccountRepository = (*Accounts)(nil)

func (s *Accounts) Create(_ context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.accounts {
		if strings.EqualFold(existing.Email, account.Email) {
			return repository.ErrDuplicate
		}
	}
	now := s.now().UTC()
	account.ID = uuid.NewString()
	account.CreatedAt = now
	account.UpdatedAt = now
	s.accounts[accountKey(account.ID, account.Kind)] = *account
	return nil
}

// Seed stores account as-is, bypassing the email uniqueness check. Tests use
// it to build states the database constraint would normally reject.
func (s *Accounts) Seed(account domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	s.accounts[accountKey(account.ID, account.Kind)] = account
}

func (s *Accounts) Update(_ context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.keyFor(account.ID, account.Kind)
	if !ok {
		return repository.ErrNotFound
	}
	for k, existing := range s.accounts {
		if k != key && strings.EqualFold(existing.Email, account.Email) {
			return repository.ErrDuplicate
		}
	}
	account.UpdatedAt = s.now().UTC()
	s.accounts[key] = *account
	return nil
}

func (s *Accounts) Delete(_ context.Context, kind domain.AccountKind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.keyFor(id, kind)
	if !ok {
		return repository.ErrNotFound
	}
	delete(s.accounts, key)
	return nil
}

func (s *Accounts) GetByID(_ context.Context, id string) (*domain.Account, error) {
	return s.first(func(a domain.Account) bool { return a.ID == id })
}

func (s *Accounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	return s.first(func(a domain.Account) bool { return a.Email == email })
}

func (s *Accounts) List(_ context.Context, filter repository.AccountFilter) ([]domain.Account, error) {
	s.mu.RLock()
	var result []domain.Account
	for _, a := range s.accounts {
		if filter.Kind != "" && a.Kind != filter.Kind {
			continue
		}
		result = append(result, a)
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].Profile.LastName != result[j].Profile.LastName {
			return result[i].Profile.LastName < result[j].Profile.LastName
		}
		return result[i].Profile.FirstName < result[j].Profile.FirstName
	})
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (s *Accounts) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, a := range s.accounts {
		if a.ID == id {
			t := at
			a.LastLogin = &t
			s.accounts[key] = a
			return nil
		}
	}
	return repository.ErrNotFound
}

// first returns the highest-priority account kind among the matches.
func (s *Accounts) first(match func(domain.Account) bool) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *domain.Account
	for _, a := range s.accounts {
		if !match(a) {
			continue
		}
		if best == nil || a.Kind.Rank() < best.Kind.Rank() {
			cp := a
			best = &cp
		}
	}
	if best == nil {
		return nil, repository.ErrNotFound
	}
	return best, nil
}

func (s *Accounts) keyFor(id string, kind domain.AccountKind) (string, bool) {
	key := accountKey(id, kind)
	_, ok := s.accounts[key]
	return key, ok
}

func accountKey(id string, kind domain.AccountKind) string {
	return id + "|" + string(kind)
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit <= 0 {
		limit = 50
	}
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}
