package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), normalizeCost(cost))
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	if hashed == "" {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// DummyHash returns a hash of a fixed throwaway password at the given cost.
// It must use the same cost as real account hashes for BurnCompare to match
// their timing.
func DummyHash(cost int) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte("pharmacy-dummy-password"), normalizeCost(cost))
}

// BurnCompare spends one bcrypt comparison against hash and discards the
// result. Used when no account matches the submitted email.
func BurnCompare(hash []byte, plain string) {
	_ = bcrypt.CompareHashAndPassword(hash, []byte(plain))
}

func normalizeCost(cost int) int {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}
