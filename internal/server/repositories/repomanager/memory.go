package repomanager

import (
	"context"

	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/chatprofiles"
)

// InMemoryRepositoryManager keeps everything in process memory. Data is
// lost on restart.
type InMemoryRepositoryManager struct {
	accounts *accounts.MemoryRepository
	chats    *chatprofiles.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		accounts: accounts.NewMemoryRepository(),
		chats:    chatprofiles.NewMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Ping(context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Accounts() accounts.Repository { return m.accounts }

func (m *InMemoryRepositoryManager) ChatProfiles() chatprofiles.Repository { return m.chats }

func (m *InMemoryRepositoryManager) Close(context.Context) error { return nil }
