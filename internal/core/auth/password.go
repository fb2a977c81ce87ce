package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/articlehub/content-service/internal/core/domain"
)

// PasswordHasher hashes and verifies passwords with bcrypt.
type PasswordHasher struct {
	cost      int
	dummyHash []byte
}

// NewPasswordHasher returns a hasher using cost, or bcrypt.DefaultCost when
// cost is outside bcrypt's accepted range.
func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), cost)
	if err != nil {
		return nil, err
	}
	return &PasswordHasher{cost: cost, dummyHash: dummy}, nil
}

// Hash returns the bcrypt hash of plain.
func (h *PasswordHasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", domain.ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plain matches hash.
func (h *PasswordHasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// Dummy spends the same work as a failed Verify. Callers use it when no user
// was found so the response time does not reveal whether the account exists.
func (h *PasswordHasher) Dummy(plain string) {
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(plain))
}
