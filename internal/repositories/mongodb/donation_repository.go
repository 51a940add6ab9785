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

// DonationRepository implements the repositories.DonationRepository interface
type DonationRepository struct {
	collection *mongo.Collection
}

// NewDonationRepository creates a new DonationRepository
func NewDonationRepository(db *mongo.Database) repositories.DonationRepository {
	return &DonationRepository{
		collection: db.Collection("donations"),
	}
}

// CreateMany inserts the donation commitments written at draw finalize time
func (r *DonationRepository) CreateMany(ctx context.Context, donations []*models.Donation) error {
	if len(donations) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(donations))
	now := time.Now()
	for _, d := range donations {
		d.CreatedAt = now
		docs = append(docs, d)
	}
	res, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return err
	}
	for i, id := range res.InsertedIDs {
		donations[i].ID = id.(primitive.ObjectID)
	}
	return nil
}

// FindUnsettledByCharity finds donations not yet aggregated into a payout
func (r *DonationRepository) FindUnsettledByCharity(ctx context.Context, charityID string) ([]*models.Donation, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"charityId": charityID, "settled": false}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var donations []*models.Donation
	if err := cursor.All(ctx, &donations); err != nil {
		return nil, err
	}
	if donations == nil {
		donations = []*models.Donation{}
	}
	return donations, nil
}

// MarkSettled links donations to the payout that settles them
func (r *DonationRepository) MarkSettled(ctx context.Context, ids []primitive.ObjectID, payoutID primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"settled": true, "payoutId": payoutID}},
	)
	return err
}

// MarkUnsettled detaches donations from a payout that was rolled back
func (r *DonationRepository) MarkUnsettled(ctx context.Context, payoutID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"payoutId": payoutID},
		bson.M{"$set": bson.M{"settled": false}, "$unset": bson.M{"payoutId": ""}},
	)
	return err
}

// DeleteByDrawID removes the draft donations of a draw (cascade on reset)
func (r *DonationRepository) DeleteByDrawID(ctx context.Context, drawID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"drawId": drawID, "settled": false})
	return err
}
