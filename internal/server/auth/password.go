package auth

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// PasswordHasher runs bcrypt with a bounded number of concurrent hashes.
type PasswordHasher struct {
	cost  int
	sem   *semaphore.Weighted
	dummy []byte
}

// NewPasswordHasher builds a hasher for the given bcrypt cost. At most
// GOMAXPROCS hashes run at once; further callers wait or give up when
// their context ends.
func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range", cost)
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("profilekeeper-dummy-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &PasswordHasher{
		cost:  cost,
		sem:   semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0))),
		dummy: dummy,
	}, nil
}

// Hash returns the bcrypt hash of password.
func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", common.NewValidationError("Password is too long", "password")
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Compare reports whether password matches hash. A mismatch returns
// common.ErrInvalidCredentials.
func (h *PasswordHasher) Compare(ctx context.Context, hash, password string) error {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer h.sem.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return common.ErrInvalidCredentials
	default:
		return fmt.Errorf("compare password: %w", err)
	}
}

// CompareDummy burns the same time as a real comparison and always fails
// with common.ErrInvalidCredentials. It is used when the account is unknown.
func (h *PasswordHasher) CompareDummy(ctx context.Context, password string) error {
	if err := h.Compare(ctx, string(h.dummy), password); err != nil && !errors.Is(err, common.ErrInvalidCredentials) {
		return err
	}
	return common.ErrInvalidCredentials
}
