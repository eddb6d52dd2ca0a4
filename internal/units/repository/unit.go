package repository

import (
	"context"
	"errors"
	"fmt"
	unitserrors "staydesk/internal/units/errors"
	"staydesk/pkg/config"
	mongotx "staydesk/pkg/db/mongo"
	"staydesk/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Units"
)

type UnitRepository interface {
	Create(ctx context.Context, unit *model.Unit) error
	FindByID(ctx context.Context, id string) (*model.Unit, error)
	FindAll(ctx context.Context, kind string, limit int, offset int64) ([]*model.Unit, error)
	Count(ctx context.Context, kind string) (int64, error)
	Update(ctx context.Context, id string, updates *model.UnitUpdate) error
	SetAvailability(ctx context.Context, id string, available bool) error
	Delete(ctx context.Context, id string) error
}

type mongoUnitRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoUnitRepository(cfg *config.Config) UnitRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoUnitRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoUnitRepository) Create(ctx context.Context, unit *model.Unit) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	unit.CreatedAt = now
	unit.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, unit)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s %s", unitserrors.ErrDuplicate, unit.Kind, unit.Number)
		}
		return fmt.Errorf("failed to create unit: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		unit.ID = oid.Hex()
	}

	return nil
}

func (r *mongoUnitRepository) FindByID(ctx context.Context, id string) (*model.Unit, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", unitserrors.ErrInvalidID, id)
	}

	var unit model.Unit
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&unit)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", unitserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find unit: %w", err)
	}
	return &unit, nil
}

func kindFilter(kind string) bson.M {
	if kind == "" {
		return bson.M{}
	}
	return bson.M{"kind": kind}
}

func (r *mongoUnitRepository) FindAll(ctx context.Context, kind string, limit int, offset int64) ([]*model.Unit, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "kind", Value: 1}, {Key: "number", Value: 1}})

	cursor, err := r.collection.Find(ctx, kindFilter(kind), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	defer cursor.Close(ctx)

	units := []*model.Unit{}
	if err = cursor.All(ctx, &units); err != nil {
		return nil, fmt.Errorf("failed to decode units: %w", err)
	}

	return units, nil
}

func (r *mongoUnitRepository) Count(ctx context.Context, kind string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, kindFilter(kind))
	if err != nil {
		return 0, fmt.Errorf("failed to count units: %w", err)
	}
	return count, nil
}

func (r *mongoUnitRepository) Update(ctx context.Context, id string, updates *model.UnitUpdate) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", unitserrors.ErrInvalidID, id)
	}

	updates.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": updates})
	if err != nil {
		return fmt.Errorf("failed to update unit: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", unitserrors.ErrNotFound, id)
	}

	return nil
}

func (r *mongoUnitRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", unitserrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{
		"is_available": available,
		"updated_at":   time.Now().UTC().Truncate(time.Millisecond),
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update unit availability: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", unitserrors.ErrNotFound, id)
	}

	return nil
}

func (r *mongoUnitRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", unitserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete unit: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", unitserrors.ErrNotFound, id)
	}

	return nil
}
