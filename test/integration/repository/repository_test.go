//go:build integration

package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	reservationserrors "staydesk/internal/reservations/errors"
	reservationsrepo "staydesk/internal/reservations/repository"
	reservationsservice "staydesk/internal/reservations/service"
	reservationsvalidator "staydesk/internal/reservations/validator"
	unitserrors "staydesk/internal/units/errors"
	unitsrepo "staydesk/internal/units/repository"
	unitsservice "staydesk/internal/units/service"
	unitsvalidator "staydesk/internal/units/validator"
	"staydesk/pkg/clock"
	apperrors "staydesk/pkg/errors"
	"staydesk/pkg/logger"
	"staydesk/pkg/model"
	"staydesk/test/integration/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoom(number string) *model.Unit {
	return &model.Unit{
		Kind:        model.KindRoom,
		Number:      number,
		Name:        "Deluxe Double",
		Type:        "deluxe",
		Price:       500,
		Capacity:    2,
		IsAvailable: true,
	}
}

func newReservation(unitID, status string, start, end time.Time) *model.Reservation {
	owner := "customer-1"
	return &model.Reservation{
		Kind:          model.KindRoom,
		UnitID:        unitID,
		OwnerID:       &owner,
		PeriodStart:   start,
		PeriodEnd:     end,
		Status:        status,
		Amounts:       model.Amounts{UnitPrice: 500, Periods: 1, BasePrice: 500, ReservationFee: 60, Total: 560},
		PaymentStatus: model.PaymentUnpaid,
		CreatedAt:     start,
		UpdatedAt:     start,
	}
}

func TestUnitRepository_NumberUniquePerKind(t *testing.T) {
	mongo := testutil.NewMongoHelper(t)
	repo := unitsrepo.NewMongoUnitRepository(mongo.Config())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newRoom("101")))

	err := repo.Create(ctx, newRoom("101"))
	assert.ErrorIs(t, err, unitserrors.ErrDuplicate)

	vehicle := newRoom("101")
	vehicle.Kind = model.KindVehicle
	vehicle.Capacity = 4
	require.NoError(t, repo.Create(ctx, vehicle), "numbers are scoped to the kind")

	assert.Equal(t, int64(2), mongo.CountDocuments(t, unitsrepo.CollectionName))
}

func TestReservationRepository_FindOverlapping(t *testing.T) {
	mongo := testutil.NewMongoHelper(t)
	repo := reservationsrepo.NewMongoReservationRepository(mongo.Config())
	ctx := context.Background()

	unitID := "665f1c2b9a1e4b0012345678"
	day := func(d int) time.Time { return time.Date(2027, 1, d, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, repo.Create(ctx, newReservation(unitID, model.StatusConfirmed, day(10), day(12))))
	require.NoError(t, repo.Create(ctx, newReservation(unitID, model.StatusCancelled, day(14), day(16))))
	require.NoError(t, repo.Create(ctx, newReservation("665f1c2b9a1e4b0012345679", model.StatusPending, day(10), day(12))))

	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"inside", day(11), day(11).Add(time.Hour), 1},
		{"touching end", day(12), day(13), 1},
		{"touching start", day(8), day(10), 1},
		{"after", day(12).Add(time.Minute), day(13), 0},
		{"cancelled ignored", day(14), day(16), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := repo.FindOverlapping(ctx, unitID, tt.start, tt.end)
			require.NoError(t, err)
			assert.Len(t, records, tt.want)
		})
	}
}

func TestReservationRepository_ConditionalWrites(t *testing.T) {
	mongo := testutil.NewMongoHelper(t)
	repo := reservationsrepo.NewMongoReservationRepository(mongo.Config())
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	start := now.Add(48 * time.Hour)

	expiresAt := now.Add(model.HoldWindow)
	hold := newReservation("665f1c2b9a1e4b0012345678", model.StatusHold, start, start.Add(24*time.Hour))
	hold.HoldExpiresAt = &expiresAt
	require.NoError(t, repo.Create(ctx, hold))
	require.NotEmpty(t, hold.ID)

	guest := &model.GuestDetails{Name: "Ada Lovelace", Phone: "+14155552671", Guests: 2}

	err := repo.ConfirmHold(ctx, hold.ID, guest, hold.Amounts, expiresAt.Add(time.Second))
	assert.ErrorIs(t, err, reservationserrors.ErrHoldNotActive, "a lapsed hold cannot be confirmed")

	require.NoError(t, repo.ConfirmHold(ctx, hold.ID, guest, hold.Amounts, expiresAt))

	stored, err := repo.FindByID(ctx, hold.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.Status)
	assert.Nil(t, stored.HoldExpiresAt)
	require.NotNil(t, stored.Guest)
	assert.Equal(t, "Ada Lovelace", stored.Guest.Name)

	assert.ErrorIs(t, repo.DeleteHold(ctx, hold.ID), reservationserrors.ErrHoldNotActive)

	require.NoError(t, repo.UpdateStatus(ctx, hold.ID, model.StatusPending, model.StatusConfirmed, now))
	err = repo.UpdateStatus(ctx, hold.ID, model.StatusPending, model.StatusCancelled, now)
	assert.ErrorIs(t, err, reservationserrors.ErrStatusChanged, "a stale from-status must not apply")

	require.NoError(t, repo.Delete(ctx, hold.ID))
	_, err = repo.FindByID(ctx, hold.ID)
	assert.ErrorIs(t, err, reservationserrors.ErrNotFound)
}

func TestSlotLockRepository(t *testing.T) {
	mongo := testutil.NewMongoHelper(t)
	locks := reservationsrepo.NewMongoSlotLockRepository(mongo.Config())
	ctx := context.Background()

	unitID := "665f1c2b9a1e4b0012345678"
	now := time.Now().UTC().Truncate(time.Millisecond)

	first, err := locks.Acquire(ctx, unitID, now, 10*time.Second)
	require.NoError(t, err)

	_, err = locks.Acquire(ctx, unitID, now.Add(time.Second), 10*time.Second)
	assert.ErrorIs(t, err, reservationserrors.ErrLockHeld)

	second, err := locks.Acquire(ctx, unitID, now.Add(11*time.Second), 10*time.Second)
	require.NoError(t, err, "a lock past its expiry is taken over")

	require.NoError(t, locks.Release(ctx, first))
	assert.Equal(t, int64(1), mongo.CountDocuments(t, reservationsrepo.LockCollectionName), "releasing a superseded lock leaves the new one")

	require.NoError(t, locks.Release(ctx, second))
	assert.Equal(t, int64(0), mongo.CountDocuments(t, reservationsrepo.LockCollectionName))
}

func TestReservationService_ConcurrentHoldsAdmitOne(t *testing.T) {
	mongo := testutil.NewMongoHelper(t)
	cfg := mongo.Config()
	ctx := context.Background()

	units := unitsservice.NewUnitService(unitsrepo.NewMongoUnitRepository(cfg), unitsvalidator.NewUnitValidator(logger.Discard()), cfg)
	admin := model.Caller{ID: "admin-1", Role: model.RoleAdmin}
	room := newRoom("204")
	require.NoError(t, units.Create(ctx, admin, room))

	svc := reservationsservice.NewReservationService(
		reservationsrepo.NewMongoReservationRepository(cfg),
		reservationsrepo.NewMongoSlotLockRepository(cfg),
		units,
		reservationsvalidator.NewReservationValidator(logger.Discard()),
		clock.System{},
		nil,
		nil,
		cfg,
	)

	start := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Hour)
	req := &model.HoldRequest{UnitID: room.ID, PeriodStart: start, PeriodEnd: start.Add(36 * time.Hour)}

	const callers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			caller := model.Caller{ID: "customer-" + string(rune('a'+i)), Role: model.RoleCustomer}
			_, err := svc.CreateHold(ctx, caller, req)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
				return
			}
			assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict), "unexpected error: %v", err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, int64(1), mongo.CountDocuments(t, reservationsrepo.CollectionName))
}
