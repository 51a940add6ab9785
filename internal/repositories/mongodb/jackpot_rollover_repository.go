package mongodb

import (
	"context"
	"time"

	"github.com/brightpools/charity-draw-backend/internal/models"
	"github.com/brightpools/charity-draw-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// JackpotRolloverRepository implements the repositories.JackpotRolloverRepository interface
type JackpotRolloverRepository struct {
	collection *mongo.Collection
}

// NewJackpotRolloverRepository creates a new JackpotRolloverRepository
func NewJackpotRolloverRepository(db *mongo.Database) repositories.JackpotRolloverRepository {
	return &JackpotRolloverRepository{
		collection: db.Collection("jackpot_rollovers"),
	}
}

// Create records a rollover out of a completed draw
func (r *JackpotRolloverRepository) Create(ctx context.Context, rollover *models.JackpotRollover) error {
	rollover.CreatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, rollover)
	if err != nil {
		return err
	}
	rollover.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindUnconsumedByDestination finds rollovers waiting for the given cycle
func (r *JackpotRolloverRepository) FindUnconsumedByDestination(ctx context.Context, monthYear string) ([]*models.JackpotRollover, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"destinationMonthYear": monthYear, "consumed": false}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rollovers []*models.JackpotRollover
	if err := cursor.All(ctx, &rollovers); err != nil {
		return nil, err
	}
	if rollovers == nil {
		rollovers = []*models.JackpotRollover{}
	}
	return rollovers, nil
}

// MarkConsumed flags rollovers as absorbed into a cycle's carryover
func (r *JackpotRolloverRepository) MarkConsumed(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"consumed": true}},
	)
	return err
}

// DeleteBySourceDraw removes rollovers created by a draw (cascade on reset)
func (r *JackpotRolloverRepository) DeleteBySourceDraw(ctx context.Context, drawID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"sourceDrawId": drawID})
	return err
}
