package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the Mongo collection holding accounts.
const CollectionName = "users"

type accountDocument struct {
	ID           string    `bson:"_id"`
	Salutation   string    `bson:"salutation"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PhoneNumber  string    `bson:"phoneNumber"`
	DateOfBirth  time.Time `bson:"dateOfBirth"`
	Address      string    `bson:"address"`
	PasswordHash string    `bson:"password"`
	ProfilePhoto *string   `bson:"profilePhoto,omitempty"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func toDocument(a *models.Account) accountDocument {
	return accountDocument{
		ID:           a.ID,
		Salutation:   a.Salutation,
		Name:         a.Name,
		Email:        a.Email,
		PhoneNumber:  a.PhoneNumber,
		DateOfBirth:  a.DateOfBirth.Time,
		Address:      a.Address,
		PasswordHash: a.PasswordHash,
		ProfilePhoto: a.ProfilePhoto,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func (d accountDocument) toModel() *models.Account {
	return &models.Account{
		ID:           d.ID,
		Salutation:   d.Salutation,
		Name:         d.Name,
		Email:        d.Email,
		PhoneNumber:  d.PhoneNumber,
		DateOfBirth:  models.NewDate(d.DateOfBirth),
		Address:      d.Address,
		PasswordHash: d.PasswordHash,
		ProfilePhoto: d.ProfilePhoto,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

type MongoRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName), now: time.Now}
}

// EnsureIndexes creates the unique indexes on email and phone number.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("users_email_unique")},
		{Keys: bson.D{{Key: "phoneNumber", Value: 1}}, Options: options.Index().SetUnique(true).SetName("users_phone_unique")},
	})
	if err != nil {
		return fmt.Errorf("create users indexes: %w", err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if err := validateNew(account); err != nil {
		return nil, err
	}

	stored := account.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	now := r.now().UTC().Truncate(time.Millisecond)
	stored.CreatedAt, stored.UpdatedAt = now, now

	if _, err := r.coll.InsertOne(ctx, toDocument(stored)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, common.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return stored, nil
}

func (r *MongoRepository) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	filter := bson.M{"$or": bson.A{bson.M{"email": email}, bson.M{"phoneNumber": phone}}}
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})

	err := r.coll.FindOne(ctx, filter, opts).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return false, nil
	default:
		return false, fmt.Errorf("db error: %w", err)
	}
}

func (r *MongoRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.Account, error) {
	var doc accountDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) UpdateFields(ctx context.Context, id string, patch models.AccountPatch) (*models.Account, error) {
	set := bson.M{"updatedAt": r.now().UTC().Truncate(time.Millisecond)}
	if patch.Salutation != nil {
		set["salutation"] = *patch.Salutation
	}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Address != nil {
		set["address"] = *patch.Address
	}
	if patch.DateOfBirth != nil {
		set["dateOfBirth"] = patch.DateOfBirth.Time
	}
	if patch.ProfilePhoto != nil {
		set["profilePhoto"] = *patch.ProfilePhoto
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc accountDocument
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc.toModel(), nil
}
