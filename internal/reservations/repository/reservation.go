package repository

import (
	"context"
	"errors"
	"fmt"
	reservationserrors "staydesk/internal/reservations/errors"
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
	CollectionName      = "Reservations"
	AuditCollectionName = "Reservation_amounts_audit"
)

type ReservationRepository interface {
	Create(ctx context.Context, r *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	// FindOverlapping returns the non-cancelled records of unitID whose interval touches
	// [start, end]. Expired holds are included; callers decide what still blocks.
	FindOverlapping(ctx context.Context, unitID string, start, end time.Time) ([]*model.Reservation, error)
	FindAll(ctx context.Context, filter model.ReservationFilter, limit int, offset int64) ([]*model.Reservation, error)
	Count(ctx context.Context, filter model.ReservationFilter) (int64, error)

	ConfirmHold(ctx context.Context, id string, guest *model.GuestDetails, amounts model.Amounts, now time.Time) error
	DeleteHold(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id, from, to string, now time.Time) error
	UpdatePaymentStatus(ctx context.Context, id, status string, now time.Time) error
	CorrectAmounts(ctx context.Context, audit *model.AmountsAudit) error
	Delete(ctx context.Context, id string) error
}

type mongoReservationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	audit      *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoReservationRepository(cfg *config.Config) ReservationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		audit:      db.Collection(AuditCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}
	return oid, nil
}

func (r *mongoReservationRepository) Create(ctx context.Context, res *model.Reservation) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, res)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", reservationserrors.ErrDuplicate, err)
		}
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		res.ID = oid.Hex()
	}
	return nil
}

func (r *mongoReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var res model.Reservation
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&res); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", reservationserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}
	return &res, nil
}

func (r *mongoReservationRepository) FindOverlapping(ctx context.Context, unitID string, start, end time.Time) ([]*model.Reservation, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"unit_id":      unitID,
		"status":       bson.M{"$ne": model.StatusCancelled},
		"period_start": bson.M{"$lte": end},
		"period_end":   bson.M{"$gte": start},
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "period_start", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping reservations: %w", err)
	}
	defer cursor.Close(ctx)

	records := []*model.Reservation{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}
	return records, nil
}

func listFilter(f model.ReservationFilter) bson.M {
	filter := bson.M{}
	if f.UnitID != "" {
		filter["unit_id"] = f.UnitID
	}
	if f.Kind != "" {
		filter["kind"] = f.Kind
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.OwnerID != "" {
		filter["owner_id"] = f.OwnerID
	}
	return filter
}

func (r *mongoReservationRepository) FindAll(ctx context.Context, f model.ReservationFilter, limit int, offset int64) ([]*model.Reservation, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "period_start", Value: -1}})

	cursor, err := r.collection.Find(ctx, listFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer cursor.Close(ctx)

	records := []*model.Reservation{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}
	return records, nil
}

func (r *mongoReservationRepository) Count(ctx context.Context, f model.ReservationFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, listFilter(f))
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return count, nil
}

// ConfirmHold moves a live hold to pending. The filter re-checks the expiry so a hold
// that lapsed after it was read cannot be confirmed.
func (r *mongoReservationRepository) ConfirmHold(ctx context.Context, id string, guest *model.GuestDetails, amounts model.Amounts, now time.Time) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	filter := bson.M{
		"_id":             oid,
		"status":          model.StatusHold,
		"hold_expires_at": bson.M{"$gte": now},
	}
	update := bson.M{
		"$set": bson.M{
			"status":     model.StatusPending,
			"guest":      guest,
			"amounts":    amounts,
			"updated_at": now,
		},
		"$unset": bson.M{"hold_expires_at": ""},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to confirm hold: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", reservationserrors.ErrHoldNotActive, id)
	}
	return nil
}

func (r *mongoReservationRepository) DeleteHold(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid, "status": model.StatusHold})
	if err != nil {
		return fmt.Errorf("failed to delete hold: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", reservationserrors.ErrHoldNotActive, id)
	}
	return nil
}

func (r *mongoReservationRepository) UpdateStatus(ctx context.Context, id, from, to string, now time.Time) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": now}},
	)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", reservationserrors.ErrStatusChanged, id)
	}
	return nil
}

func (r *mongoReservationRepository) UpdatePaymentStatus(ctx context.Context, id, status string, now time.Time) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "status": bson.M{"$ne": model.StatusHold}},
		bson.M{"$set": bson.M{"payment_status": status, "updated_at": now}},
	)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", reservationserrors.ErrNotFound, id)
	}
	return nil
}

// CorrectAmounts overwrites the amounts and appends the audit entry in one transaction.
func (r *mongoReservationRepository) CorrectAmounts(ctx context.Context, audit *model.AmountsAudit) error {
	oid, err := objectID(audit.ReservationID)
	if err != nil {
		return err
	}

	return r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		result, err := r.collection.UpdateOne(sessCtx,
			bson.M{"_id": oid},
			bson.M{"$set": bson.M{"amounts": audit.Corrected, "updated_at": audit.CorrectedAt}},
		)
		if err != nil {
			return fmt.Errorf("failed to correct amounts: %w", err)
		}
		if result.MatchedCount == 0 {
			return fmt.Errorf("%w: %s", reservationserrors.ErrNotFound, audit.ReservationID)
		}

		inserted, err := r.audit.InsertOne(sessCtx, audit)
		if err != nil {
			return fmt.Errorf("failed to record amounts audit: %w", err)
		}
		if oid, ok := inserted.InsertedID.(primitive.ObjectID); ok {
			audit.ID = oid.Hex()
		}
		return nil
	})
}

func (r *mongoReservationRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", reservationserrors.ErrNotFound, id)
	}
	return nil
}
