package intentRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quickbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Create inserts a new intent document.
func (r *MongoIntentRepo) Create(ctx context.Context, intent *models.BookingIntent) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, intent); err != nil {
		return fmt.Errorf("error creating intent: %w", err)
	}
	return nil
}

// GetByID returns the intent with the given id.
func (r *MongoIntentRepo) GetByID(ctx context.Context, intentID string) (*models.BookingIntent, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var intent models.BookingIntent
	if err := r.coll.FindOne(ctx, bson.M{"id": intentID}).Decode(&intent); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrIntentNotFound
		}
		return nil, fmt.Errorf("error fetching intent %s: %w", intentID, err)
	}
	return &intent, nil
}

// AttachContact stores the visitor contact. A second call before click
// overwrites the first.
func (r *MongoIntentRepo) AttachContact(ctx context.Context, intentID string, contact models.Contact, leadID string) (*models.BookingIntent, error) {
	filter := bson.M{
		"id":     intentID,
		"status": bson.M{"$in": []models.IntentStatus{models.IntentStarted, models.IntentLeadCaptured}},
	}
	update := bson.M{"$set": bson.M{
		"contact":    contact,
		"lead_id":    leadID,
		"status":     models.IntentLeadCaptured,
		"updated_at": r.now(),
	}}
	return r.conditionalUpdate(ctx, intentID, filter, update)
}

// RecordClick stores the resolution used for the handoff. The filter on a
// missing resolution makes the first click win.
func (r *MongoIntentRepo) RecordClick(ctx context.Context, intentID string, resolution models.BookingResolution, providerName string) (*models.BookingIntent, error) {
	now := r.now()
	filter := bson.M{
		"id":         intentID,
		"status":     models.IntentLeadCaptured,
		"resolution": bson.M{"$exists": false},
	}
	set := bson.M{
		"resolution": resolution,
		"status":     models.IntentClicked,
		"clicked_at": now,
		"updated_at": now,
	}
	if providerName != "" {
		set["provider_name"] = providerName
	}
	return r.conditionalUpdate(ctx, intentID, filter, bson.M{"$set": set})
}

// MarkDone closes a clicked intent.
func (r *MongoIntentRepo) MarkDone(ctx context.Context, intentID string) (*models.BookingIntent, error) {
	now := r.now()
	filter := bson.M{"id": intentID, "status": models.IntentClicked}
	update := bson.M{"$set": bson.M{
		"status":       models.IntentDone,
		"completed_at": now,
		"updated_at":   now,
	}}
	return r.conditionalUpdate(ctx, intentID, filter, update)
}

// conditionalUpdate applies update when filter matches. On a miss it tells
// a missing intent apart from one in the wrong status.
func (r *MongoIntentRepo) conditionalUpdate(ctx context.Context, intentID string, filter, update bson.M) (*models.BookingIntent, error) {
	opCtx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.BookingIntent
	err := r.coll.FindOneAndUpdate(opCtx, filter, update, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("error updating intent %s: %w", intentID, err)
	}

	if _, getErr := r.GetByID(ctx, intentID); getErr != nil {
		return nil, getErr
	}
	return nil, ErrStaleTransition
}

// ListByWorkspace returns intents of a workspace updated at or after since,
// newest first.
func (r *MongoIntentRepo) ListByWorkspace(ctx context.Context, workspaceID string, since time.Time, limit, offset int) ([]models.BookingIntent, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"workspace_id": workspaceID}
	if !since.IsZero() {
		filter["updated_at"] = bson.M{"$gte": since}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing intents: %w", err)
	}
	defer cursor.Close(ctx)

	intents := []models.BookingIntent{}
	if err := cursor.All(ctx, &intents); err != nil {
		return nil, fmt.Errorf("error decoding intents: %w", err)
	}
	return intents, nil
}
