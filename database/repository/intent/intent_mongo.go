package intentRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoIntentRepo implements IntentRepository using MongoDB.
type MongoIntentRepo struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoIntentRepo creates a new IntentRepository backed by the
// "booking_intents" collection.
func NewMongoIntentRepo(db *mongo.Database) IntentRepository {
	repo := &MongoIntentRepo{
		coll: db.Collection("booking_intents"),
		now:  time.Now,
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create intent indexes: %v\n", err)
	}
	return repo
}

// newContext bounds a repository call, keeping any deadline the caller set.
func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, timeout)
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoIntentRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "workspace_id", Value: 1}, {Key: "updated_at", Value: -1}}},
		{Keys: bson.D{{Key: "session_id", Value: 1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
