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

// WinnerRepository implements the repositories.WinnerRepository interface
type WinnerRepository struct {
	collection *mongo.Collection
}

// NewWinnerRepository creates a new WinnerRepository
func NewWinnerRepository(db *mongo.Database) repositories.WinnerRepository {
	return &WinnerRepository{
		collection: db.Collection("winners"),
	}
}

// CreateMany inserts all winner entries for a draw in one call
func (r *WinnerRepository) CreateMany(ctx context.Context, winners []*models.WinnerEntry) error {
	if len(winners) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(winners))
	now := time.Now()
	for _, w := range winners {
		w.CreatedAt = now
		w.UpdatedAt = now
		docs = append(docs, w)
	}
	res, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return err
	}
	for i, id := range res.InsertedIDs {
		winners[i].ID = id.(primitive.ObjectID)
	}
	return nil
}

// FindByID finds a winner by ID
func (r *WinnerRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.WinnerEntry, error) {
	var winner models.WinnerEntry
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&winner)
	if err != nil {
		return nil, err
	}
	return &winner, nil
}

// FindByDrawID finds all winners of a draw, best tier first
func (r *WinnerRepository) FindByDrawID(ctx context.Context, drawID primitive.ObjectID) ([]*models.WinnerEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "tier", Value: 1}, {Key: "userId", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"drawId": drawID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var winners []*models.WinnerEntry
	if err := cursor.All(ctx, &winners); err != nil {
		return nil, err
	}
	if winners == nil {
		winners = []*models.WinnerEntry{}
	}
	return winners, nil
}

// CountNotVerified counts winners of a draw that are not yet VERIFIED
func (r *WinnerRepository) CountNotVerified(ctx context.Context, drawID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"drawId":             drawID,
		"verificationStatus": bson.M{"$ne": models.VerificationVerified},
	})
}

// UpdateVerification records the admin verification decision for a winner
func (r *WinnerRepository) UpdateVerification(ctx context.Context, id primitive.ObjectID, status models.VerificationStatus, actorID string) error {
	now := time.Now()
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"verificationStatus": status,
			"verifiedBy":         actorID,
			"verifiedAt":         now,
			"updatedAt":          now,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// MarkPaid settles a single winner. The filter on paymentStatus makes the
// update a compare-and-set so a concurrent settlement cannot double-pay.
func (r *WinnerRepository) MarkPaid(ctx context.Context, id primitive.ObjectID, reference string) error {
	now := time.Now()
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "paymentStatus": models.PaymentUnpaid},
		bson.M{"$set": bson.M{
			"paymentStatus":    models.PaymentPaid,
			"paymentReference": reference,
			"paidAt":           now,
			"updatedAt":        now,
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

// MarkManyPaid settles a batch of winners of one draw with a shared
// reference inside a transaction, so a partial batch never persists.
func (r *WinnerRepository) MarkManyPaid(ctx context.Context, drawID primitive.ObjectID, ids []primitive.ObjectID, reference string) error {
	if len(ids) == 0 {
		return nil
	}
	filter := bson.M{
		"_id":           bson.M{"$in": ids},
		"drawId":        drawID,
		"paymentStatus": models.PaymentUnpaid,
	}

	session, err := r.collection.Database().Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		matched, err := r.collection.CountDocuments(sc, filter)
		if err != nil {
			return nil, err
		}
		if matched != int64(len(ids)) {
			return nil, models.ErrPersistenceConflict
		}
		now := time.Now()
		res, err := r.collection.UpdateMany(sc, filter, bson.M{"$set": bson.M{
			"paymentStatus":    models.PaymentPaid,
			"paymentReference": reference,
			"paidAt":           now,
			"updatedAt":        now,
		}})
		if err != nil {
			return nil, err
		}
		if res.ModifiedCount != int64(len(ids)) {
			return nil, models.ErrPersistenceConflict
		}
		return nil, nil
	})
	return err
}

// DeleteByDrawID removes all winners of a draw (cascade on reset)
func (r *WinnerRepository) DeleteByDrawID(ctx context.Context, drawID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"drawId": drawID})
	return err
}
