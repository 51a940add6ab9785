package mongodb

import (
	"context"
	"time"

	"github.com/brightpools/charity-draw-backend/internal/models"
	"github.com/brightpools/charity-draw-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SettingsRepository implements the repositories.SettingsRepository interface.
// The settings live in a single-document collection.
type SettingsRepository struct {
	collection *mongo.Collection
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db *mongo.Database) repositories.SettingsRepository {
	return &SettingsRepository{
		collection: db.Collection("draw_settings"),
	}
}

// Get fetches the global draw settings document
func (r *SettingsRepository) Get(ctx context.Context) (*models.DrawSettings, error) {
	var settings models.DrawSettings
	err := r.collection.FindOne(ctx, bson.M{}).Decode(&settings)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Upsert writes the global draw settings document
func (r *SettingsRepository) Upsert(ctx context.Context, settings *models.DrawSettings) error {
	settings.UpdatedAt = time.Now()
	opts := options.Replace().SetUpsert(true)
	filter := bson.M{}
	if !settings.ID.IsZero() {
		filter = bson.M{"_id": settings.ID}
	}
	_, err := r.collection.ReplaceOne(ctx, filter, settings, opts)
	return err
}
