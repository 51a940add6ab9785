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

// DrawCycleRepository implements the repositories.DrawCycleRepository interface
type DrawCycleRepository struct {
	collection *mongo.Collection
}

// NewDrawCycleRepository creates a new DrawCycleRepository
func NewDrawCycleRepository(db *mongo.Database) repositories.DrawCycleRepository {
	return &DrawCycleRepository{
		collection: db.Collection("draw_cycles"),
	}
}

// Create creates a new draw cycle
func (r *DrawCycleRepository) Create(ctx context.Context, cycle *models.DrawCycle) error {
	cycle.CreatedAt = time.Now()
	cycle.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, cycle)
	if err != nil {
		return err
	}
	cycle.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID finds a draw cycle by ID
func (r *DrawCycleRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.DrawCycle, error) {
	var cycle models.DrawCycle
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&cycle)
	if err != nil {
		return nil, err
	}
	return &cycle, nil
}

// FindByMonthYear finds a draw cycle by its unique month-year label
func (r *DrawCycleRepository) FindByMonthYear(ctx context.Context, monthYear string) (*models.DrawCycle, error) {
	var cycle models.DrawCycle
	err := r.collection.FindOne(ctx, bson.M{"monthYear": monthYear}).Decode(&cycle)
	if err != nil {
		return nil, err
	}
	return &cycle, nil
}

// FindCurrent finds the single cycle that is still mutable (OPEN or COMPLETED)
func (r *DrawCycleRepository) FindCurrent(ctx context.Context) (*models.DrawCycle, error) {
	filter := bson.M{"status": bson.M{"$in": []models.DrawStatus{models.DrawStatusOpen, models.DrawStatusCompleted}}}
	opts := options.FindOne().SetSort(bson.M{"createdAt": -1})

	var cycle models.DrawCycle
	err := r.collection.FindOne(ctx, filter, opts).Decode(&cycle)
	if err != nil {
		return nil, err
	}
	return &cycle, nil
}

// FindAll finds all draw cycles, newest first
func (r *DrawCycleRepository) FindAll(ctx context.Context) ([]*models.DrawCycle, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var cycles []*models.DrawCycle
	if err := cursor.All(ctx, &cycles); err != nil {
		return nil, err
	}
	if cycles == nil {
		cycles = []*models.DrawCycle{}
	}
	return cycles, nil
}

// Update replaces a draw cycle document
func (r *DrawCycleRepository) Update(ctx context.Context, cycle *models.DrawCycle) error {
	cycle.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": cycle.ID}, cycle)
	return err
}

// UpdateStatusIf transitions the cycle status only if it still holds `from`.
// A miss means another writer got there first.
func (r *DrawCycleRepository) UpdateStatusIf(ctx context.Context, id primitive.ObjectID, from, to models.DrawStatus) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return models.ErrPersistenceConflict
	}
	return nil
}
