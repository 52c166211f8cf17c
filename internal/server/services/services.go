// Package services contains the server-side business logic: account
// registration and login, profile reads and photo updates, and chat-profile
// upserts. Services never call each other; transports compose them.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
)

// TokenIssuer mints access tokens for an account id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// PasswordHasher hashes and checks passwords. Compare and CompareDummy
// report a mismatch as common.ErrInvalidCredentials.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Compare(ctx context.Context, hash, password string) error
	CompareDummy(ctx context.Context, password string) error
}

// storeCall bounds a single repository call with the configured timeout.
type storeCall struct {
	timeout time.Duration
	log     logging.Logger
}

func (c storeCall) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.timeout)
}

// classify passes domain errors through and collapses everything else into
// common.ErrStore after logging the detail.
func (c storeCall) classify(ctx context.Context, op string, err error) error {
	for _, known := range []error{
		common.ErrValidation,
		common.ErrDuplicateIdentity,
		common.ErrInvalidCredentials,
		common.ErrNotFound,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return err
	}
	c.log.Error(ctx, "store operation failed", "op", op, "error", err)
	return fmt.Errorf("%s: %w", op, common.ErrStore)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func missing(fields ...[2]string) []string {
	var out []string
	for _, f := range fields {
		if blank(f[1]) {
			out = append(out, f[0])
		}
	}
	return out
}
