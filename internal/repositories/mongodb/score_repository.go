package mongodb

import (
	"context"

	"github.com/brightpools/charity-draw-backend/internal/models"
	"github.com/brightpools/charity-draw-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ScoreRepository implements the repositories.ScoreRepository interface
type ScoreRepository struct {
	collection *mongo.Collection
}

// NewScoreRepository creates a new ScoreRepository
func NewScoreRepository(db *mongo.Database) repositories.ScoreRepository {
	return &ScoreRepository{
		collection: db.Collection("score_entries"),
	}
}

// FindByMonthYear finds all score entries submitted for a cycle
func (r *ScoreRepository) FindByMonthYear(ctx context.Context, monthYear string) ([]*models.ScoreEntry, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"monthYear": monthYear})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*models.ScoreEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*models.ScoreEntry{}
	}
	return entries, nil
}
