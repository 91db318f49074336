package dto

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/ezinne-pharmarcy/backend/internal/domain"
	"github.com/ezinne-pharmarcy/backend/internal/service"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// CreateAccountRequest payload for creating owners, admin staff and retail staff.
type CreateAccountRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	IsStaff         bool   `json:"is_staff"`
	IsActive        bool   `json:"is_active"`
	IsStoreAdmin    bool   `json:"is_store_admin"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Username        string `json:"username"`
	OtherNames      string `json:"other_names"`
	Gender          string `json:"gender"`
	PhoneNumber     string `json:"phone_number"`
	DateOfBirth     string `json:"date_of_birth"`
	Nationality     string `json:"nationality"`
	Address         string `json:"address"`
}

// Validate checks required fields and formats.
func (r CreateAccountRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(MinPasswordLength, 128)),
		validation.Field(&r.ConfirmPassword, validation.By(equalsString(r.Password))),
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Username, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.OtherNames, validation.Length(0, 100)),
		validation.Field(&r.Gender, validation.Length(0, 20)),
		validation.Field(&r.PhoneNumber, validation.Length(0, 15), is.Digit),
		validation.Field(&r.DateOfBirth, validation.By(dateString)),
		validation.Field(&r.Nationality, validation.Length(0, 100)),
		validation.Field(&r.Address, validation.Length(0, 200)),
	)
}

// ToInput converts the request for the account service.
func (r CreateAccountRequest) ToInput(kind domain.AccountKind) service.CreateAccountInput {
	return service.CreateAccountInput{
		Kind:         kind,
		Email:        NormalizeEmail(r.Email),
		Password:     r.Password,
		IsStaff:      r.IsStaff,
		IsActive:     r.IsActive,
		IsStoreAdmin: r.IsStoreAdmin,
		Profile: domain.Profile{
			FirstName:   r.FirstName,
			LastName:    r.LastName,
			Username:    r.Username,
			OtherNames:  r.OtherNames,
			Gender:      r.Gender,
			PhoneNumber: r.PhoneNumber,
			DateOfBirth: parseDate(r.DateOfBirth),
			Nationality: r.Nationality,
			Address:     r.Address,
		},
	}
}

// UpdateAccountRequest payload for partial account updates.
type UpdateAccountRequest struct {
	Email        *string `json:"email"`
	Password     *string `json:"password"`
	IsStaff      *bool   `json:"is_staff"`
	IsActive     *bool   `json:"is_active"`
	IsStoreAdmin *bool   `json:"is_store_admin"`
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	Username     *string `json:"username"`
	OtherNames   *string `json:"other_names"`
	Gender       *string `json:"gender"`
	PhoneNumber  *string `json:"phone_number"`
	DateOfBirth  *string `json:"date_of_birth"`
	Nationality  *string `json:"nationality"`
	Address      *string `json:"address"`
}

// Validate checks the fields that are present.
func (r UpdateAccountRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.NilOrNotEmpty, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, validation.NilOrNotEmpty, validation.Length(MinPasswordLength, 128)),
		validation.Field(&r.FirstName, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&r.Username, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&r.OtherNames, validation.Length(0, 100)),
		validation.Field(&r.Gender, validation.Length(0, 20)),
		validation.Field(&r.PhoneNumber, validation.Length(0, 15), is.Digit),
		validation.Field(&r.DateOfBirth, validation.By(dateString)),
		validation.Field(&r.Nationality, validation.Length(0, 100)),
		validation.Field(&r.Address, validation.Length(0, 200)),
	)
}

// ToInput converts the request for the account service.
func (r UpdateAccountRequest) ToInput() service.UpdateAccountInput {
	in := service.UpdateAccountInput{
		Password:     r.Password,
		IsStaff:      r.IsStaff,
		IsActive:     r.IsActive,
		IsStoreAdmin: r.IsStoreAdmin,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Username:     r.Username,
		OtherNames:   r.OtherNames,
		Gender:       r.Gender,
		PhoneNumber:  r.PhoneNumber,
		Nationality:  r.Nationality,
		Address:      r.Address,
	}
	if r.Email != nil {
		email := NormalizeEmail(*r.Email)
		in.Email = &email
	}
	if r.DateOfBirth != nil {
		in.DateOfBirth = parseDate(*r.DateOfBirth)
	}
	return in
}

// AccountResponse is the public view of an account. The password hash is never serialized.
type AccountResponse struct {
	ID           string     `json:"id"`
	Kind         string     `json:"kind"`
	Email        string     `json:"email"`
	IsStaff      bool       `json:"is_staff"`
	IsActive     bool       `json:"is_active"`
	IsStoreAdmin *bool      `json:"is_store_admin,omitempty"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	DateJoined   string     `json:"date_joined"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Username     string     `json:"username"`
	OtherNames   string     `json:"other_names,omitempty"`
	Gender       string     `json:"gender,omitempty"`
	PhoneNumber  string     `json:"phone_number,omitempty"`
	DateOfBirth  string     `json:"date_of_birth,omitempty"`
	Nationality  string     `json:"nationality,omitempty"`
	Address      string     `json:"address,omitempty"`
}

// NewAccountResponse builds the response for an account.
func NewAccountResponse(a *domain.Account) AccountResponse {
	resp := AccountResponse{
		ID:          a.ID,
		Kind:        string(a.Kind),
		Email:       a.Email,
		IsStaff:     a.IsStaff,
		IsActive:    a.IsActive,
		LastLogin:   a.LastLogin,
		DateJoined:  a.DateJoined.Format(DateLayout),
		FirstName:   a.Profile.FirstName,
		LastName:    a.Profile.LastName,
		Username:    a.Profile.Username,
		OtherNames:  a.Profile.OtherNames,
		Gender:      a.Profile.Gender,
		PhoneNumber: a.Profile.PhoneNumber,
		Nationality: a.Profile.Nationality,
		Address:     a.Profile.Address,
	}
	if a.Kind == domain.KindOwner {
		admin := a.IsStoreAdmin
		resp.IsStoreAdmin = &admin
	}
	if a.Profile.DateOfBirth != nil {
		resp.DateOfBirth = a.Profile.DateOfBirth.Format(DateLayout)
	}
	return resp
}

// NewAccountListResponse maps a slice of accounts.
func NewAccountListResponse(accounts []domain.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, NewAccountResponse(&accounts[i]))
	}
	return out
}

func equalsString(expected string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s != "" && s != expected {
			return errors.New("must match password")
		}
		return nil
	}
}

func dateString(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	}
	if s == "" {
		return nil
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return errors.New("must be a date in YYYY-MM-DD format")
	}
	return nil
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
