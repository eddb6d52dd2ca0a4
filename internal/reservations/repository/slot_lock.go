package repository

import (
	"context"
	"fmt"
	reservationserrors "staydesk/internal/reservations/errors"
	"staydesk/pkg/config"
	mongotx "staydesk/pkg/db/mongo"
	"staydesk/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "Slot_locks"

// SlotLockRepository serializes check-then-insert per unit. The lock is a document
// whose _id is derived from the unit, so a second insert fails with a duplicate key.
type SlotLockRepository interface {
	Acquire(ctx context.Context, unitID string, now time.Time, ttl time.Duration) (*model.SlotLock, error)
	Release(ctx context.Context, lock *model.SlotLock) error
}

type mongoSlotLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSlotLockRepository(cfg *config.Config) SlotLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

// Acquire inserts the unit lock. A lock left behind past its expiry by a crashed
// request is removed and the insert retried once.
func (r *mongoSlotLockRepository) Acquire(ctx context.Context, unitID string, now time.Time, ttl time.Duration) (*model.SlotLock, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	lock := &model.SlotLock{
		ID:        model.SlotLockID(unitID),
		UnitID:    unitID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	for attempt := 0; attempt < 2; attempt++ {
		_, err := r.collection.InsertOne(ctx, lock)
		if err == nil {
			return lock, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("failed to acquire unit lock: %w", err)
		}
		if attempt > 0 {
			break
		}

		stale, err := r.collection.DeleteOne(ctx, bson.M{
			"_id":        lock.ID,
			"expires_at": bson.M{"$lte": now},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to clear stale unit lock: %w", err)
		}
		if stale.DeletedCount == 0 {
			break
		}
	}

	return nil, fmt.Errorf("%w: %s", reservationserrors.ErrLockHeld, unitID)
}

// Release deletes lock only if it is still the one this request inserted; after
// expiry another request may have taken it over.
func (r *mongoSlotLockRepository) Release(ctx context.Context, lock *model.SlotLock) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"_id": lock.ID, "created_at": lock.CreatedAt}
	if _, err := r.collection.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to release unit lock: %w", err)
	}
	return nil
}
