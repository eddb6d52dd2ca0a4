package service

import (
	"context"
	"errors"
	reservationserrors "staydesk/internal/reservations/errors"
	"staydesk/internal/reservations/overlap"
	"staydesk/internal/reservations/pricing"
	apperrors "staydesk/pkg/errors"
	"staydesk/pkg/kafka"
	"staydesk/pkg/model"
	"time"
)

// Availability lists what blocks unitID during [start, end] right now.
func (s *reservationService) Availability(ctx context.Context, unitID string, start, end time.Time) (*model.Availability, error) {
	if !end.After(start) {
		return nil, apperrors.InvalidInput("end must be after start")
	}
	unit, err := s.units.GetByID(ctx, unitID)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.FindOverlapping(ctx, unit.ID, start, end)
	if err != nil {
		s.cfg.Log.Error("Failed to load ledger for availability", "unit_id", unitID, "error", err)
		return nil, apperrors.Internal("Failed to check availability", err)
	}

	result := overlap.Check(records, start, end, s.now())
	return &model.Availability{
		UnitID:    unit.ID,
		Start:     start,
		End:       end,
		Available: result.Available && unit.IsAvailable,
		Blocking:  result.Blocking,
	}, nil
}

func (s *reservationService) CreateHold(ctx context.Context, caller model.Caller, req *model.HoldRequest) (*model.Reservation, error) {
	if err := requireAuthenticated(caller); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateHoldRequest(req); err != nil {
		return nil, validationError("Hold request validation failed", err)
	}

	now := s.now()
	start, end := req.PeriodStart.UTC(), req.PeriodEnd.UTC()
	if err := checkInterval(start, end, now); err != nil {
		return nil, err
	}

	unit, err := s.bookableUnit(ctx, req.UnitID)
	if err != nil {
		return nil, err
	}

	expiresAt := now.Add(model.HoldWindow)
	ownerID := caller.ID
	hold := &model.Reservation{
		Kind:          unit.Kind,
		UnitID:        unit.ID,
		OwnerID:       &ownerID,
		PeriodStart:   start,
		PeriodEnd:     end,
		Status:        model.StatusHold,
		HoldExpiresAt: &expiresAt,
		Amounts:       pricing.Quote(unit, start, end),
		PaymentStatus: model.PaymentUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.validator.Validate(hold); err != nil {
		return nil, validationError("Hold validation failed", err)
	}

	err = s.withUnitLock(ctx, unit.ID, func() error {
		if err := s.ensureFree(ctx, unit, start, end, now, ""); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, hold); err != nil {
			return s.mapRepoError(err, "", "Failed to create hold")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Hold created",
		"id", hold.ID,
		"unit_id", hold.UnitID,
		"owner_id", caller.ID,
		"period_start", start,
		"period_end", end,
		"hold_expires_at", expiresAt,
	)
	s.publish(ctx, kafka.EventHoldCreated, hold)
	return hold, nil
}

// ConfirmHold turns a live hold into a pending reservation with the guest's final
// details, re-pricing it at the unit's current rate.
func (s *reservationService) ConfirmHold(ctx context.Context, caller model.Caller, id string, guest *model.GuestDetails) (*model.Reservation, error) {
	if err := requireAuthenticated(caller); err != nil {
		return nil, err
	}
	if guest == nil {
		return nil, apperrors.InvalidInput("guest details are required")
	}

	hold, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(caller, hold); err != nil {
		return nil, err
	}

	if err := s.checkHoldActive(hold, s.now()); err != nil {
		return nil, err
	}

	sanitizeGuest(guest)
	if err := s.validator.ValidateGuest(guest); err != nil {
		return nil, validationError("Guest details validation failed", err)
	}

	unit, err := s.units.GetByID(ctx, hold.UnitID)
	if err != nil {
		return nil, err
	}
	if err := checkCapacity(unit, guest); err != nil {
		return nil, err
	}

	amounts := pricing.Quote(unit, hold.PeriodStart, hold.PeriodEnd)

	// At its exact expiry instant a hold no longer blocks, so another request may have
	// taken the period. Re-check under the unit lock with a fresh clock reading.
	var now time.Time
	err = s.withUnitLock(ctx, hold.UnitID, func() error {
		now = s.now()
		if err := s.checkHoldActive(hold, now); err != nil {
			return err
		}
		if err := s.ensureFree(ctx, unit, hold.PeriodStart, hold.PeriodEnd, now, hold.ID); err != nil {
			return err
		}
		if err := s.repo.ConfirmHold(ctx, id, guest, amounts, now); err != nil {
			if errors.Is(err, reservationserrors.ErrHoldNotActive) {
				s.metrics.HoldConfirmExpired(hold.Kind)
				return apperrors.Expired("Hold has expired or is no longer active")
			}
			return s.mapRepoError(err, id, "Failed to confirm hold")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	hold.Status = model.StatusPending
	hold.HoldExpiresAt = nil
	hold.Guest = guest
	hold.Amounts = amounts
	hold.UpdatedAt = now

	s.cfg.Log.Info("Hold confirmed",
		"id", id,
		"unit_id", hold.UnitID,
		"total", amounts.Total,
	)
	s.publish(ctx, kafka.EventHoldConfirmed, hold)
	return hold, nil
}

// checkHoldActive rejects records that are no longer live holds at now. Confirming at
// the exact expiry instant is still allowed.
func (s *reservationService) checkHoldActive(hold *model.Reservation, now time.Time) error {
	if hold.Status == model.StatusHold && hold.HoldExpiresAt != nil && !hold.HoldExpiresAt.Before(now) {
		return nil
	}
	s.metrics.HoldConfirmExpired(hold.Kind)
	s.cfg.Log.Warn("Confirm attempted on inactive hold",
		"id", hold.ID,
		"status", hold.Status,
		"hold_expires_at", hold.HoldExpiresAt,
	)
	return apperrors.Expired("Hold has expired or is no longer active")
}

func (s *reservationService) ReleaseHold(ctx context.Context, caller model.Caller, id string) error {
	if err := requireAuthenticated(caller); err != nil {
		return err
	}

	hold, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeOwner(caller, hold); err != nil {
		return err
	}
	if hold.Status != model.StatusHold {
		return apperrors.InvalidState("Only holds can be released").
			WithDetails(map[string]any{"status": hold.Status})
	}

	if err := s.repo.DeleteHold(ctx, id); err != nil {
		if errors.Is(err, reservationserrors.ErrHoldNotActive) {
			return apperrors.InvalidState("Hold is no longer active")
		}
		return s.mapRepoError(err, id, "Failed to release hold")
	}

	s.cfg.Log.Info("Hold released", "id", id, "unit_id", hold.UnitID, "released_by", caller.ID)
	s.publish(ctx, kafka.EventHoldReleased, hold)
	return nil
}
