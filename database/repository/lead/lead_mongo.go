package leadRepo

import (
	"context"
	"fmt"
	"time"

	"quickbook/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoLeadRepo struct {
	coll *mongo.Collection
}

// NewMongoLeadRepo returns a LeadRepository backed by the "leads" collection.
func NewMongoLeadRepo(db *mongo.Database) LeadRepository {
	repo := &mongoLeadRepo{coll: db.Collection("leads")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "intent_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		fmt.Printf("failed to create lead indexes: %v\n", err)
	}
	return repo
}

// Upsert inserts or updates the lead keyed by intent id.
func (r *mongoLeadRepo) Upsert(ctx context.Context, lead models.Lead) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	filter := bson.M{"intent_id": lead.IntentID}
	update := bson.M{
		"$set": bson.M{
			"name":       lead.Name,
			"phone":      lead.Phone,
			"email":      lead.Email,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"id":           uuid.New().String(),
			"workspace_id": lead.WorkspaceID,
			"bot_id":       lead.BotID,
			"intent_id":    lead.IntentID,
			"session_id":   lead.SessionID,
			"source":       lead.Source,
			"created_at":   now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved models.Lead
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved); err != nil {
		return "", fmt.Errorf("error saving lead for intent %s: %w", lead.IntentID, err)
	}
	return saved.ID, nil
}
