package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps accounts in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.Account
	byEmail map[string]string
	byPhone map[string]string
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*models.Account),
		byEmail: make(map[string]string),
		byPhone: make(map[string]string),
		now:     time.Now,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if err := validateNew(account); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[account.Email]; ok {
		return nil, common.ErrDuplicateIdentity
	}
	if _, ok := r.byPhone[account.PhoneNumber]; ok {
		return nil, common.ErrDuplicateIdentity
	}

	stored := account.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	now := r.now().UTC()
	stored.CreatedAt, stored.UpdatedAt = now, now

	r.byID[stored.ID] = stored
	r.byEmail[stored.Email] = stored.ID
	r.byPhone[stored.PhoneNumber] = stored.ID

	return stored.Clone(), nil
}

func (r *MemoryRepository) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, byEmail := r.byEmail[email]
	_, byPhone := r.byPhone[phone]
	return byEmail || byPhone, nil
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	return r.byID[id].Clone(), nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return a.Clone(), nil
}

func (r *MemoryRepository) UpdateFields(ctx context.Context, id string, patch models.AccountPatch) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	patch.Apply(a)
	a.UpdatedAt = r.now().UTC()

	return a.Clone(), nil
}
