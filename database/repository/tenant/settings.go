package tenantRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quickbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrSettingsNotFound is returned when a bot has no booking settings saved.
var ErrSettingsNotFound = errors.New("booking settings not found")

// SettingsRepository gives read access to tenant booking settings. The admin
// dashboard owns writes; nothing here caches.
type SettingsRepository interface {
	GetBookingSettings(ctx context.Context, workspaceID, botID string) (*models.TenantSettings, error)
}

type mongoSettingsRepo struct {
	coll *mongo.Collection
}

// NewMongoSettingsRepo reads from the "bot_booking_settings" collection.
func NewMongoSettingsRepo(db *mongo.Database) SettingsRepository {
	return &mongoSettingsRepo{coll: db.Collection("bot_booking_settings")}
}

// GetBookingSettings fetches the current settings of one bot.
func (r *mongoSettingsRepo) GetBookingSettings(ctx context.Context, workspaceID, botID string) (*models.TenantSettings, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var settings models.TenantSettings
	filter := bson.M{"workspace_id": workspaceID, "bot_id": botID}
	if err := r.coll.FindOne(ctx, filter).Decode(&settings); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("error fetching booking settings for bot %s: %w", botID, err)
	}
	return &settings, nil
}
