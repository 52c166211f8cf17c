package chatprofiles

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/google/uuid"
)

type MemoryRepository struct {
	mu      sync.Mutex
	byPhone map[string]*models.ChatProfile
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byPhone: make(map[string]*models.ChatProfile), now: time.Now}
}

func (r *MemoryRepository) Upsert(ctx context.Context, profile *models.ChatProfile) (*models.ChatProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := profile.Clone()
	if existing, ok := r.byPhone[profile.Phone]; ok {
		stored.ID = existing.ID
		stored.Merge(existing)
	} else {
		stored.ID = uuid.NewString()
	}
	stored.UpdatedAt = r.now().UTC()

	r.byPhone[stored.Phone] = stored
	return stored.Clone(), nil
}

func (r *MemoryRepository) FindByPhone(ctx context.Context, phone string) (*models.ChatProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byPhone[phone]
	if !ok {
		return nil, common.ErrNotFound
	}
	return p.Clone(), nil
}

// Len reports how many profiles are stored.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byPhone)
}
