// Package chatprofiles stores chat profiles keyed by phone number. Every
// backend upserts in one atomic step so concurrent saves for the same phone
// leave exactly one record.
package chatprofiles

import (
	"context"

	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
)

type Repository interface {
	// Upsert creates or replaces the profile for profile.Phone. Nil
	// ProfilePhoto and Document keep the values already stored.
	Upsert(ctx context.Context, profile *models.ChatProfile) (*models.ChatProfile, error)
	FindByPhone(ctx context.Context, phone string) (*models.ChatProfile, error)
}
