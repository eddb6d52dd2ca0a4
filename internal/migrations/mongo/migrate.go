package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staydesk/internal/migrations/mongo/validators"
	reservationsrepo "staydesk/internal/reservations/repository"
	unitsrepo "staydesk/internal/units/repository"
	"staydesk/pkg/logger"
)

var (
	UnitsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "kind", Value: 1}, {Key: "number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unit_number_per_kind"),
		},
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	ReservationsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "unit_id", Value: 1},
				{Key: "period_start", Value: 1},
				{Key: "period_end", Value: 1},
			},
			Options: options.Index().SetName("unit_period"),
		},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "period_start", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "period_start", Value: -1}}},
		// passive hold expiry; documents without hold_expires_at are never swept
		{
			Keys:    bson.D{{Key: "hold_expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("hold_expiry_ttl"),
		},
	}

	AmountsAuditIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "reservation_id", Value: 1}, {Key: "corrected_at", Value: -1}}},
	}

	SlotLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("lock_expiry_ttl"),
		},
	}
)

type CollectionDefinition struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func Collections() map[string]CollectionDefinition {
	return map[string]CollectionDefinition{
		unitsrepo.CollectionName: {
			Indexes:   UnitsIndexes,
			Validator: validators.UnitValidator,
		},
		reservationsrepo.CollectionName: {
			Indexes:   ReservationsIndexes,
			Validator: validators.ReservationValidator,
		},
		reservationsrepo.AuditCollectionName: {
			Indexes:   AmountsAuditIndexes,
			Validator: validators.AmountsAuditValidator,
		},
		reservationsrepo.LockCollectionName: {
			Indexes:   SlotLocksIndexes,
			Validator: validators.SlotLockValidator,
		},
	}
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for name, def := range Collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	created, err := db.Collection(name).Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "indexes", created)
	return nil
}
