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

// CharityPayoutRepository implements the repositories.CharityPayoutRepository interface
type CharityPayoutRepository struct {
	collection *mongo.Collection
}

// NewCharityPayoutRepository creates a new CharityPayoutRepository
func NewCharityPayoutRepository(db *mongo.Database) repositories.CharityPayoutRepository {
	return &CharityPayoutRepository{
		collection: db.Collection("charity_payouts"),
	}
}

// Create creates a new charity payout record
func (r *CharityPayoutRepository) Create(ctx context.Context, payout *models.CharityPayout) error {
	payout.CreatedAt = time.Now()
	payout.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, payout)
	if err != nil {
		return err
	}
	payout.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID finds a charity payout by ID
func (r *CharityPayoutRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.CharityPayout, error) {
	var payout models.CharityPayout
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&payout)
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

// FindByCharity finds all payouts for a charity, newest first
func (r *CharityPayoutRepository) FindByCharity(ctx context.Context, charityID string) ([]*models.CharityPayout, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"charityId": charityID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var payouts []*models.CharityPayout
	if err := cursor.All(ctx, &payouts); err != nil {
		return nil, err
	}
	if payouts == nil {
		payouts = []*models.CharityPayout{}
	}
	return payouts, nil
}

// MarkPaid settles a pending payout; the status filter keeps a paid payout
// immutable and surfaces concurrent settlements as a conflict.
func (r *CharityPayoutRepository) MarkPaid(ctx context.Context, id primitive.ObjectID, reference string) error {
	now := time.Now()
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.PayoutPending},
		bson.M{"$set": bson.M{
			"status":    models.PayoutPaid,
			"payoutRef": reference,
			"paidAt":    now,
			"updatedAt": now,
		}},
	)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return models.ErrPersistenceConflict
	}
	return nil
}

// Delete removes a payout record
func (r *CharityPayoutRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
