package chatprofiles

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

// CollectionName is the Mongo collection holding chat profiles.
const CollectionName = "chatusers"

type profileDocument struct {
	ID            string    `bson:"_id"`
	Name          string    `bson:"name"`
	Qualification string    `bson:"qualification"`
	Phone         string    `bson:"phone"`
	DOB           time.Time `bson:"dob"`
	About         string    `bson:"about"`
	Skills        []string  `bson:"skills"`
	ProfilePhoto  *string   `bson:"profilePhoto,omitempty"`
	Document      *string   `bson:"document,omitempty"`
	UpdatedAt     time.Time `bson:"updatedAt"`
}

func (d profileDocument) toModel() *models.ChatProfile {
	return &models.ChatProfile{
		ID:            d.ID,
		Name:          d.Name,
		Qualification: d.Qualification,
		Phone:         d.Phone,
		DOB:           models.NewDate(d.DOB),
		About:         d.About,
		Skills:        d.Skills,
		ProfilePhoto:  d.ProfilePhoto,
		Document:      d.Document,
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
}

type MongoRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName), now: time.Now}
}

// EnsureIndexes creates the unique index on phone that upserts rely on.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "phone", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("chatusers_phone_unique"),
	})
	if err != nil {
		return fmt.Errorf("create chatusers index: %w", err)
	}
	return nil
}

// Upsert issues one findOneAndUpdate with upsert. Two racing inserts for a
// new phone can make the loser hit the unique index; it then retries once
// and lands on the update path.
func (r *MongoRepository) Upsert(ctx context.Context, profile *models.ChatProfile) (*models.ChatProfile, error) {
	set := bson.M{
		"name":          profile.Name,
		"qualification": profile.Qualification,
		"dob":           profile.DOB.Time,
		"about":         profile.About,
		"skills":        nonNil(profile.Skills),
		"updatedAt":     r.now().UTC().Truncate(time.Millisecond),
	}
	if profile.ProfilePhoto != nil {
		set["profilePhoto"] = *profile.ProfilePhoto
	}
	if profile.Document != nil {
		set["document"] = *profile.Document
	}

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"_id": uuid.NewString()},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc profileDocument
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		err = r.coll.FindOneAndUpdate(ctx, bson.M{"phone": profile.Phone}, update, opts).Decode(&doc)
		if !mongo.IsDuplicateKeyError(err) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) FindByPhone(ctx context.Context, phone string) (*models.ChatProfile, error) {
	var doc profileDocument
	if err := r.coll.FindOne(ctx, bson.M{"phone": phone}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc.toModel(), nil
}
