package service

import (
	"context"
	"errors"
	reservationserrors "staydesk/internal/reservations/errors"
	"staydesk/internal/reservations/events"
	"staydesk/internal/reservations/overlap"
	"staydesk/internal/reservations/repository"
	"staydesk/internal/reservations/validator"
	"staydesk/pkg/clock"
	"staydesk/pkg/config"
	apperrors "staydesk/pkg/errors"
	"staydesk/pkg/model"
	"staydesk/pkg/sanitizer"
	"time"
)

// UnitCatalog resolves the unit being reserved. Errors are AppErrors.
type UnitCatalog interface {
	GetByID(ctx context.Context, id string) (*model.Unit, error)
}

// Recorder receives domain metrics. A nil Recorder is replaced by a no-op.
type Recorder interface {
	ReservationEvent(kind, event string)
	OverlapConflict(kind string)
	HoldConfirmExpired(kind string)
}

type noopRecorder struct{}

func (noopRecorder) ReservationEvent(string, string) {}
func (noopRecorder) OverlapConflict(string)          {}
func (noopRecorder) HoldConfirmExpired(string)       {}

type ReservationService interface {
	Availability(ctx context.Context, unitID string, start, end time.Time) (*model.Availability, error)

	CreateHold(ctx context.Context, caller model.Caller, req *model.HoldRequest) (*model.Reservation, error)
	ConfirmHold(ctx context.Context, caller model.Caller, id string, guest *model.GuestDetails) (*model.Reservation, error)
	ReleaseHold(ctx context.Context, caller model.Caller, id string) error

	CreateReservation(ctx context.Context, caller model.Caller, req *model.ReservationRequest) (*model.Reservation, error)
	GetByID(ctx context.Context, caller model.Caller, id string) (*model.Reservation, error)
	GetAll(ctx context.Context, caller model.Caller, filter model.ReservationFilter, limit int, offset int64) ([]*model.Reservation, int64, error)

	Transition(ctx context.Context, caller model.Caller, id, target string) (*model.Reservation, error)
	Cancel(ctx context.Context, caller model.Caller, id string) (*model.Reservation, error)
	CorrectAmounts(ctx context.Context, caller model.Caller, id string, correction *model.AmountsCorrection) (*model.Reservation, error)
	MarkPayment(ctx context.Context, caller model.Caller, id string, update *model.PaymentUpdate) (*model.Reservation, error)
	Delete(ctx context.Context, caller model.Caller, id string) error
}

type reservationService struct {
	repo      repository.ReservationRepository
	locks     repository.SlotLockRepository
	units     UnitCatalog
	validator *validator.ReservationValidator
	clock     clock.Clock
	events    events.Publisher
	metrics   Recorder
	cfg       *config.Config
}

func NewReservationService(
	repo repository.ReservationRepository,
	locks repository.SlotLockRepository,
	units UnitCatalog,
	validator *validator.ReservationValidator,
	clk clock.Clock,
	publisher events.Publisher,
	recorder Recorder,
	cfg *config.Config,
) ReservationService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &reservationService{
		repo:      repo,
		locks:     locks,
		units:     units,
		validator: validator,
		clock:     clk,
		events:    publisher,
		metrics:   recorder,
		cfg:       cfg,
	}
}

func (s *reservationService) now() time.Time {
	return s.clock.Now().UTC()
}

func requireAuthenticated(caller model.Caller) error {
	if !caller.IsAuthenticated() {
		return apperrors.Unauthorized("authentication required")
	}
	return nil
}

func requirePrivileged(caller model.Caller) error {
	if err := requireAuthenticated(caller); err != nil {
		return err
	}
	if !caller.IsPrivileged() {
		return apperrors.Forbidden("staff role required")
	}
	return nil
}

func requireAdmin(caller model.Caller) error {
	if err := requireAuthenticated(caller); err != nil {
		return err
	}
	if !caller.IsAdmin() {
		return apperrors.Forbidden("admin role required")
	}
	return nil
}

// authorizeOwner lets the owner and staff act on a record; everyone else is Forbidden.
func authorizeOwner(caller model.Caller, r *model.Reservation) error {
	if r.IsOwnedBy(caller.ID) || caller.IsPrivileged() {
		return nil
	}
	return apperrors.Forbidden("reservation belongs to another user")
}

func validationError(message string, err error) error {
	return apperrors.Validation(message, map[string]any{"errors": err})
}

func (s *reservationService) load(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve reservation")
	}
	return r, nil
}

func (s *reservationService) mapRepoError(err error, id, message string) error {
	switch {
	case errors.Is(err, reservationserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Reservation", id)
	case errors.Is(err, reservationserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid reservation ID format")
	case errors.Is(err, reservationserrors.ErrStatusChanged):
		return apperrors.Conflict("Reservation was modified by another request, reload and retry")
	case apperrors.IsAppError(err):
		return err
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

// checkInterval enforces end > start and start not in the past.
func checkInterval(start, end, now time.Time) error {
	if !end.After(start) {
		return apperrors.InvalidInput("period_end must be after period_start")
	}
	if start.Before(now) {
		return apperrors.InvalidInput("period_start cannot be in the past")
	}
	return nil
}

// bookableUnit loads the unit and rejects units switched off in the catalog.
func (s *reservationService) bookableUnit(ctx context.Context, unitID string) (*model.Unit, error) {
	unit, err := s.units.GetByID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if !unit.IsAvailable {
		return nil, apperrors.UnitUnavailable("Unit is not available for reservations").
			WithDetails(map[string]any{"unit_id": unitID})
	}
	return unit, nil
}

// withUnitLock runs fn while holding the unit's slot lock, so the overlap check and
// the insert that follows it cannot interleave with another request on the same unit.
func (s *reservationService) withUnitLock(ctx context.Context, unitID string, fn func() error) error {
	lock, err := s.locks.Acquire(ctx, unitID, s.now(), s.cfg.UnitLockTTL)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrLockHeld) {
			s.cfg.Log.Warn("Unit lock contention", "unit_id", unitID)
			return apperrors.Conflict("Unit is being reserved by another request, retry shortly")
		}
		s.cfg.Log.Error("Failed to acquire unit lock", "unit_id", unitID, "error", err)
		return apperrors.Internal("Failed to lock unit", err)
	}
	defer func() {
		// release even if the request context is already done
		if releaseErr := s.locks.Release(context.WithoutCancel(ctx), lock); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release unit lock", "unit_id", unitID, "error", releaseErr)
		}
	}()

	return fn()
}

// ensureFree runs the overlap check against the ledger for unit. A non-empty exceptID
// leaves that record out, so a hold being confirmed does not collide with itself.
func (s *reservationService) ensureFree(ctx context.Context, unit *model.Unit, start, end, now time.Time, exceptID string) error {
	found, err := s.repo.FindOverlapping(ctx, unit.ID, start, end)
	if err != nil {
		s.cfg.Log.Error("Failed to load ledger for overlap check", "unit_id", unit.ID, "error", err)
		return apperrors.Internal("Failed to check availability", err)
	}

	records := found[:0]
	for _, r := range found {
		if exceptID == "" || r.ID != exceptID {
			records = append(records, r)
		}
	}

	result := overlap.Check(records, start, end, now)
	if result.Available {
		return nil
	}

	s.metrics.OverlapConflict(unit.Kind)
	s.cfg.Log.Warn("Requested period overlaps existing reservations",
		"unit_id", unit.ID,
		"period_start", start,
		"period_end", end,
		"blocking", len(result.Blocking),
	)
	return apperrors.Conflict("Unit unavailable for the requested period").
		WithDetails(map[string]any{"unit_id": unit.ID, "blocking": result.Blocking})
}

func (s *reservationService) publish(ctx context.Context, eventType string, r *model.Reservation) {
	s.metrics.ReservationEvent(r.Kind, eventType)
	s.events.Publish(ctx, events.NewEvent(eventType, r, s.now()))
}

func sanitizeGuest(guest *model.GuestDetails) {
	guest.Name = sanitizer.NormalizeName(guest.Name)
	if phone := sanitizer.NormalizePhone(guest.Phone); phone != "" {
		guest.Phone = phone
	}
	guest.Email = sanitizer.NormalizeEmail(guest.Email)
	guest.Notes = sanitizer.TrimAndNormalize(guest.Notes)
}

func checkCapacity(unit *model.Unit, guest *model.GuestDetails) error {
	if guest.Guests > unit.Capacity {
		return apperrors.InvalidInput("Guest count exceeds unit capacity").
			WithDetails(map[string]any{"guests": guest.Guests, "capacity": unit.Capacity})
	}
	return nil
}
