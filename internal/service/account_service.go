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
	"github.com/ezinne-pharmarcy/backend/internal/repository"
	apperrors "github.com/ezinne-pharmarcy/backend/pkg/util/errorutil"
)

// CreateAccountInput carries the fields accepted when creating staff.
type CreateAccountInput struct {
	Kind         domain.AccountKind
	Email        string
	Password     string
	IsStaff      bool
	IsActive     bool
	IsStoreAdmin bool
	Profile      domain.Profile
}

// UpdateAccountInput carries a partial update. Nil fields are left unchanged.
type UpdateAccountInput struct {
	Email        *string
	Password     *string
	IsStaff      *bool
	IsActive     *bool
	IsStoreAdmin *bool
	FirstName    *string
	LastName     *string
	Username     *string
	OtherNames   *string
	Gender       *string
	PhoneNumber  *string
	DateOfBirth  *time.Time
	Nationality  *string
	Address      *string
}

func (in UpdateAccountInput) touchesFlags() bool {
	return in.IsStaff != nil || in.IsActive != nil || in.IsStoreAdmin != nil
}

// AccountService manages owners, admin staff and retail staff.
type AccountService struct {
	accounts   repository.AccountRepository
	sessions   repository.SessionStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
	now        func() time.Time
}

// AccountDependencies encapsulates collaborators for the account service.
type AccountDependencies struct {
	Accounts   repository.AccountRepository
	Sessions   repository.SessionStore
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	BcryptCost int
	Clock      func() time.Time
}

// NewAccountService constructs the service.
func NewAccountService(deps AccountDependencies) *AccountService {
	s := &AccountService{
		accounts:   deps.Accounts,
		sessions:   deps.Sessions,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		bcryptCost: deps.BcryptCost,
		now:        deps.Clock,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Create stores a new account of in.Kind. Owners are always staff, and only
// owners may carry the store admin flag.
func (s *AccountService) Create(ctx context.Context, actor *domain.Account, in CreateAccountInput) (*domain.Account, error) {
	if !in.Kind.Valid() {
		return nil, apperrors.NewValidationError("unknown account kind", map[string]any{"kind": in.Kind})
	}
	if err := auth.Authorize(actor, auth.AccountResource(in.Kind), auth.ActionCreate, nil); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid password", nil)
	}

	now := s.now()
	account := &domain.Account{
		Kind:         in.Kind,
		Email:        in.Email,
		PasswordHash: hash,
		IsStaff:      in.IsStaff || in.Kind == domain.KindOwner,
		IsActive:     in.IsActive,
		IsStoreAdmin: in.IsStoreAdmin && in.Kind == domain.KindOwner,
		DateJoined:   time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Profile:      in.Profile,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": in.Email})
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info("account created",
		zap.String("account_id", account.ID),
		zap.String("kind", string(account.Kind)),
		zap.String("actor_id", actor.ID),
	)
	s.publish(ctx, events.EventAccountCreated, actor, account)
	return account, nil
}

// Get returns the account kind/id if actor may see it.
func (s *AccountService) Get(ctx context.Context, actor *domain.Account, kind domain.AccountKind, id string) (*domain.Account, error) {
	if err := auth.Authorize(actor, auth.AccountResource(kind), auth.ActionRetrieve, accountTarget(kind, id)); err != nil {
		return nil, err
	}
	return s.load(ctx, kind, id)
}

// List returns accounts of kind.
func (s *AccountService) List(ctx context.Context, actor *domain.Account, kind domain.AccountKind, limit, offset int) ([]domain.Account, error) {
	if err := auth.Authorize(actor, auth.AccountResource(kind), auth.ActionList, nil); err != nil {
		return nil, err
	}
	return s.accounts.List(ctx, repository.AccountFilter{Kind: kind, Limit: limit, Offset: offset})
}

// Update applies a partial update. Account flags can only be changed by a
// store admin, even when the caller edits their own record.
func (s *AccountService) Update(ctx context.Context, actor *domain.Account, kind domain.AccountKind, id string, in UpdateAccountInput) (*domain.Account, error) {
	if err := auth.Authorize(actor, auth.AccountResource(kind), auth.ActionUpdate, accountTarget(kind, id)); err != nil {
		return nil, err
	}
	if in.touchesFlags() && !actor.StoreAdmin() {
		return nil, auth.ErrForbidden
	}

	account, err := s.load(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid password", nil)
		}
		account.PasswordHash = hash
	}
	setString(&account.Email, in.Email)
	setBool(&account.IsStaff, in.IsStaff)
	setBool(&account.IsActive, in.IsActive)
	setBool(&account.IsStoreAdmin, in.IsStoreAdmin)
	if account.Kind == domain.KindOwner {
		account.IsStaff = true
	} else {
		account.IsStoreAdmin = false
	}

	p := &account.Profile
	setString(&p.FirstName, in.FirstName)
	setString(&p.LastName, in.LastName)
	setString(&p.Username, in.Username)
	setString(&p.OtherNames, in.OtherNames)
	setString(&p.Gender, in.Gender)
	setString(&p.PhoneNumber, in.PhoneNumber)
	setString(&p.Nationality, in.Nationality)
	setString(&p.Address, in.Address)
	if in.DateOfBirth != nil {
		dob := *in.DateOfBirth
		p.DateOfBirth = &dob
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperrors.NewConflict("email already registered", nil)
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NewNotFound(string(kind), nil)
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	return account, nil
}

// Delete removes the account and its session.
func (s *AccountService) Delete(ctx context.Context, actor *domain.Account, kind domain.AccountKind, id string) error {
	if err := auth.Authorize(actor, auth.AccountResource(kind), auth.ActionDelete, accountTarget(kind, id)); err != nil {
		return err
	}
	account, err := s.load(ctx, kind, id)
	if err != nil {
		return err
	}
	if err := s.accounts.Delete(ctx, kind, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound(string(kind), nil)
		}
		return fmt.Errorf("delete account: %w", err)
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		s.logger.Warn("delete session", zap.String("account_id", id), zap.Error(err))
	}

	s.logger.Info("account deleted",
		zap.String("account_id", id),
		zap.String("kind", string(kind)),
		zap.String("actor_id", actor.ID),
	)
	s.publish(ctx, events.EventAccountDeleted, actor, account)
	return nil
}

func (s *AccountService) load(ctx context.Context, kind domain.AccountKind, id string) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound(string(kind), nil)
		}
		return nil, err
	}
	if account.Kind != kind {
		return nil, apperrors.NewNotFound(string(kind), nil)
	}
	return account, nil
}

func (s *AccountService) publish(ctx context.Context, typ events.EventType, actor, subject *domain.Account) {
	if s.dispatcher == nil {
		return
	}
	err := s.dispatcher.Publish(ctx, events.Event{
		Type:      typ,
		Actor:     events.Actor{AccountID: actor.ID, Kind: actor.Kind},
		Timestamp: s.now().UTC(),
		Payload: events.AccountChangedPayload{
			AccountID: subject.ID,
			Kind:      subject.Kind,
			Email:     subject.Email,
		},
	})
	if err != nil {
		s.logger.Warn("publish event", zap.String("type", string(typ)), zap.Error(err))
	}
}

func accountTarget(kind domain.AccountKind, id string) *auth.Target {
	return &auth.Target{AccountKind: kind, AccountID: id}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

// ErrAlreadyBootstrapped is returned when an owner account already exists.
var ErrAlreadyBootstrapped = errors.New("an owner account already exists")

// BootstrapOwner creates the first store-admin owner without an acting
// identity. It refuses once any owner exists.
func (s *AccountService) BootstrapOwner(ctx context.Context, email, password string, profile domain.Profile) (*domain.Account, error) {
	existing, err := s.accounts.List(ctx, repository.AccountFilter{Kind: domain.KindOwner, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	if len(existing) > 0 {
		return nil, ErrAlreadyBootstrapped
	}

	bootstrap := &domain.Account{Kind: domain.KindOwner, IsStaff: true, IsActive: true, IsStoreAdmin: true}
	return s.Create(ctx, bootstrap, CreateAccountInput{
		Kind:         domain.KindOwner,
		Email:        email,
		Password:     password,
		IsStaff:      true,
		IsActive:     true,
		IsStoreAdmin: true,
		Profile:      profile,
	})
}
