package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/profilekeeper/internal/server/storage"
)

// RegisterInput is a signup request as received from the client.
type RegisterInput struct {
	Salutation  string
	Name        string
	Email       string
	PhoneNumber string
	DateOfBirth string
	Address     string
	Password    string
}

// RegisterResult is the created account and its first access token.
type RegisterResult struct {
	Account *models.Account
	Token   string
}

// AccountService handles signup, login, profile reads and photo updates.
type AccountService struct {
	accounts accounts.Repository
	hasher   PasswordHasher
	tokens   TokenIssuer
	files    storage.FileStore
	store    storeCall
	log      logging.Logger
}

func NewAccountService(repo accounts.Repository, hasher PasswordHasher, tokens TokenIssuer,
	files storage.FileStore, storeTimeout time.Duration, log logging.Logger) *AccountService {
	log = log.With("module", "account_service")
	return &AccountService{
		accounts: repo,
		hasher:   hasher,
		tokens:   tokens,
		files:    files,
		store:    storeCall{timeout: storeTimeout, log: log},
		log:      log,
	}
}

// Register validates the request, hashes the password, stores the account
// and issues a token. The unique constraints of the store decide duplicates;
// the existence pre-check only saves a bcrypt round for obvious repeats.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	if m := missing(
		[2]string{"salutation", in.Salutation},
		[2]string{"name", in.Name},
		[2]string{"email", in.Email},
		[2]string{"phoneNumber", in.PhoneNumber},
		[2]string{"dateOfBirth", in.DateOfBirth},
		[2]string{"address", in.Address},
		[2]string{"password", in.Password},
	); len(m) > 0 {
		return nil, common.NewValidationError("All fields are required", m...)
	}

	dob, err := models.ParseDate(in.DateOfBirth)
	if err != nil {
		return nil, common.NewValidationError("Invalid date of birth", "dateOfBirth")
	}

	email := strings.TrimSpace(in.Email)
	phone := strings.TrimSpace(in.PhoneNumber)

	exists, err := s.exists(ctx, email, phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.ErrDuplicateIdentity
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, s.store.classify(ctx, "hash password", err)
	}

	account, err := s.create(ctx, &models.Account{
		Salutation:   strings.TrimSpace(in.Salutation),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PhoneNumber:  phone,
		DateOfBirth:  dob,
		Address:      strings.TrimSpace(in.Address),
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, s.store.classify(ctx, "issue token", err)
	}

	s.log.Info(ctx, "account registered", "user_id", account.ID)
	return &RegisterResult{Account: account, Token: token}, nil
}

func (s *AccountService) exists(ctx context.Context, email, phone string) (bool, error) {
	cctx, cancel := s.store.ctx(ctx)
	defer cancel()

	ok, err := s.accounts.ExistsByEmailOrPhone(cctx, email, phone)
	if err != nil {
		return false, s.store.classify(ctx, "check account", err)
	}
	return ok, nil
}

func (s *AccountService) create(ctx context.Context, a *models.Account) (*models.Account, error) {
	cctx, cancel := s.store.ctx(ctx)
	defer cancel()

	created, err := s.accounts.Create(cctx, a)
	if err != nil {
		return nil, s.store.classify(ctx, "create account", err)
	}
	return created, nil
}

// Login checks the credentials and returns a fresh token. Unknown email and
// wrong password both fail with common.ErrInvalidCredentials and both pay
// for one bcrypt comparison.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	if blank(email) || password == "" {
		return "", common.NewValidationError("Email and password are required", missing(
			[2]string{"email", email}, [2]string{"password", password})...)
	}

	account, err := s.findByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, common.ErrNotFound) {
		if err := s.hasher.CompareDummy(ctx, password); !errors.Is(err, common.ErrInvalidCredentials) {
			return "", s.store.classify(ctx, "compare password", err)
		}
		return "", common.ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if err := s.hasher.Compare(ctx, account.PasswordHash, password); err != nil {
		return "", s.store.classify(ctx, "compare password", err)
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return "", s.store.classify(ctx, "issue token", err)
	}
	return token, nil
}

func (s *AccountService) findByEmail(ctx context.Context, email string) (*models.Account, error) {
	cctx, cancel := s.store.ctx(ctx)
	defer cancel()

	a, err := s.accounts.FindByEmail(cctx, email)
	if err != nil {
		return nil, s.store.classify(ctx, "find account", err)
	}
	return a, nil
}

// Profile returns the account for userID, or common.ErrNotFound.
func (s *AccountService) Profile(ctx context.Context, userID string) (*models.Account, error) {
	cctx, cancel := s.store.ctx(ctx)
	defer cancel()

	a, err := s.accounts.FindByID(cctx, userID)
	if err != nil {
		return nil, s.store.classify(ctx, "find account", err)
	}
	return a, nil
}

// UpdatePhoto stores upload and records its reference on the account.
// A nil upload changes nothing and returns the current reference.
func (s *AccountService) UpdatePhoto(ctx context.Context, userID string, upload *storage.Upload) (string, error) {
	account, err := s.Profile(ctx, userID)
	if err != nil {
		return "", err
	}

	if upload == nil {
		if account.ProfilePhoto == nil {
			return "", nil
		}
		return *account.ProfilePhoto, nil
	}

	ref, err := s.files.Save(ctx, upload)
	if err != nil {
		return "", s.store.classify(ctx, "save photo", err)
	}

	cctx, cancel := s.store.ctx(ctx)
	defer cancel()

	if _, err := s.accounts.UpdateFields(cctx, userID, models.AccountPatch{ProfilePhoto: &ref}); err != nil {
		return "", s.store.classify(ctx, "update account", err)
	}

	s.log.Info(ctx, "profile photo updated", "user_id", userID, "ref", ref)
	return ref, nil
}
