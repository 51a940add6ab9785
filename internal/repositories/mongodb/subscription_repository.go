package mongodb

import (
	"context"
	"time"

	"github.com/brightpools/charity-draw-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SubscriptionRepository implements the repositories.SubscriptionRepository interface
type SubscriptionRepository struct {
	collection *mongo.Collection
}

// NewSubscriptionRepository creates a new SubscriptionRepository
func NewSubscriptionRepository(db *mongo.Database) repositories.SubscriptionRepository {
	return &SubscriptionRepository{
		collection: db.Collection("subscriptions"),
	}
}

// CountActive counts subscriptions currently funding the prize pool
func (r *SubscriptionRepository) CountActive(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"active": true})
}

// MarkConsumed expires all active subscriptions against the given draw so a
// later reset can tell them apart from ones expired for other reasons.
func (r *SubscriptionRepository) MarkConsumed(ctx context.Context, drawID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"active": true},
		bson.M{"$set": bson.M{"active": false, "consumedByDraw": drawID, "updatedAt": time.Now()}},
	)
	return err
}

// ReactivateForDraw restores only the subscriptions this draw consumed
func (r *SubscriptionRepository) ReactivateForDraw(ctx context.Context, drawID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"consumedByDraw": drawID},
		bson.M{
			"$set":   bson.M{"active": true, "updatedAt": time.Now()},
			"$unset": bson.M{"consumedByDraw": ""},
		},
	)
	return err
}
