package domain

import "time"

// AccountKind discriminates the three mutually exclusive staff account kinds.
type AccountKind string

const (
	KindOwner       AccountKind = "owner"
	KindAdminStaff  AccountKind = "admin_staff"
	KindRetailStaff AccountKind = "retail_staff"
)

// KindPriority is the fixed order in which account kinds are probed when an
// id or email lookup could match more than one record.
var KindPriority = []AccountKind{KindOwner, KindAdminStaff, KindRetailStaff}

// Valid reports whether k is one of the known account kinds.
func (k AccountKind) Valid() bool {
	switch k {
	case KindOwner, KindAdminStaff, KindRetailStaff:
		return true
	}
	return false
}

// Rank returns the position of k in KindPriority, or len(KindPriority) for unknown kinds.
func (k AccountKind) Rank() int {
	for i, kind := range KindPriority {
		if kind == k {
			return i
		}
	}
	return len(KindPriority)
}

// Account is the persisted identity shared by owners, admin staff and retail staff.
type Account struct {
	ID           string
	Kind         AccountKind
	Email        string
	PasswordHash string
	IsStaff      bool
	IsActive     bool
	IsStoreAdmin bool
	LastLogin    *time.Time
	DateJoined   time.Time
	Profile      Profile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile carries the descriptive fields kept for every account kind.
type Profile struct {
	FirstName   string
	LastName    string
	Username    string
	OtherNames  string
	Gender      string
	PhoneNumber string
	DateOfBirth *time.Time
	Nationality string
	Address     string
}

// StoreAdmin reports whether the account is an owner holding the store admin flag.
func (a *Account) StoreAdmin() bool {
	return a != nil && a.Kind == KindOwner && a.IsStoreAdmin
}
