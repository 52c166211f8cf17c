// Package repomanager opens the configured storage backend and vends the
// repositories built on top of it.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/profilekeeper/internal/server/config"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/chatprofiles"
)

type RepositoryManager interface {
	// RunMigrations prepares the schema: goose migrations for Postgres,
	// unique indexes for Mongo.
	RunMigrations(ctx context.Context) error
	Ping(ctx context.Context) error
	Accounts() accounts.Repository
	ChatProfiles() chatprofiles.Repository
	Close(ctx context.Context) error
}

// Open connects to the backend named by cfg.StorageBackend.
func Open(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		return OpenPostgres(ctx, cfg.DatabaseDSN)
	case config.BackendMongo:
		return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.BackendMemory:
		return NewInMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
