package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/server/auth"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/dmitrijs2005/profilekeeper/internal/server/storage"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)
	return ts
}

func newHasher(t *testing.T) *auth.PasswordHasher {
	t.Helper()
	h, err := auth.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

// fakeFiles records saved uploads and hands out predictable references.
type fakeFiles struct {
	mu    sync.Mutex
	saved []string
	err   error
}

func (f *fakeFiles) Save(ctx context.Context, u *storage.Upload) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, err := io.ReadAll(u.Body)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, string(b))
	return "uploads/" + u.Filename, nil
}

// failingAccounts returns err from every call.
type failingAccounts struct{ err error }

func (f failingAccounts) Create(context.Context, *models.Account) (*models.Account, error) {
	return nil, f.err
}
func (f failingAccounts) ExistsByEmailOrPhone(context.Context, string, string) (bool, error) {
	return false, nil
}
func (f failingAccounts) FindByEmail(context.Context, string) (*models.Account, error) {
	return nil, f.err
}
func (f failingAccounts) FindByID(context.Context, string) (*models.Account, error) {
	return nil, f.err
}
func (f failingAccounts) UpdateFields(context.Context, string, models.AccountPatch) (*models.Account, error) {
	return nil, f.err
}

// slowChatProfiles blocks until the call context ends.
type slowChatProfiles struct{}

func (slowChatProfiles) Upsert(ctx context.Context, _ *models.ChatProfile) (*models.ChatProfile, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
func (slowChatProfiles) FindByPhone(ctx context.Context, _ string) (*models.ChatProfile, error) {
	return nil, errors.New("unused")
}

func nopLogger() logging.Logger { return logging.Nop() }
