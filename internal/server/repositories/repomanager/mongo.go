package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/chatprofiles"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoRepositoryManager serves repositories from one Mongo database.
type MongoRepositoryManager struct {
	client   *mongo.Client
	accounts *accounts.MongoRepository
	chats    *chatprofiles.MongoRepository
}

// OpenMongo connects to uri and checks the primary answers.
func OpenMongo(ctx context.Context, uri, database string) (*MongoRepositoryManager, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return NewMongoRepositoryManager(client, database), nil
}

func NewMongoRepositoryManager(client *mongo.Client, database string) *MongoRepositoryManager {
	db := client.Database(database)
	return &MongoRepositoryManager{
		client:   client,
		accounts: accounts.NewMongoRepository(db),
		chats:    chatprofiles.NewMongoRepository(db),
	}
}

// RunMigrations creates the unique indexes the repositories depend on.
func (m *MongoRepositoryManager) RunMigrations(ctx context.Context) error {
	if err := m.accounts.EnsureIndexes(ctx); err != nil {
		return err
	}
	return m.chats.EnsureIndexes(ctx)
}

func (m *MongoRepositoryManager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoRepositoryManager) Accounts() accounts.Repository {
	return m.accounts
}

func (m *MongoRepositoryManager) ChatProfiles() chatprofiles.Repository {
	return m.chats
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
