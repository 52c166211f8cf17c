// Package accounts stores registered accounts. Email and phone number are
// unique across all accounts in every backend.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
)

type Repository interface {
	// Create inserts a new account and returns it with ID and timestamps set.
	// A clash on email or phone number fails with common.ErrDuplicateIdentity.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	// ExistsByEmailOrPhone is a cheap pre-check; Create stays authoritative.
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	UpdateFields(ctx context.Context, id string, patch models.AccountPatch) (*models.Account, error)
}

func validateNew(a *models.Account) error {
	if missing := a.MissingFields(); len(missing) > 0 {
		return common.NewValidationError("All fields are required", missing...)
	}
	return nil
}
