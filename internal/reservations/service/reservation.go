package service

import (
	"context"
	"staydesk/internal/reservations/pricing"
	"staydesk/pkg/config"
	apperrors "staydesk/pkg/errors"
	"staydesk/pkg/kafka"
	"staydesk/pkg/model"
	"staydesk/pkg/sanitizer"
	"sync"
)

// CreateReservation books directly into pending, bypassing the hold. It runs the same
// overlap check as CreateHold; a caller's own live hold on the period still blocks it.
func (s *reservationService) CreateReservation(ctx context.Context, caller model.Caller, req *model.ReservationRequest) (*model.Reservation, error) {
	if err := requireAuthenticated(caller); err != nil {
		return nil, err
	}

	sanitizeGuest(&req.Guest)
	if err := s.validator.ValidateReservationRequest(req); err != nil {
		return nil, validationError("Reservation request validation failed", err)
	}

	// the unit is checked before the interval, so a missing or switched-off unit
	// reports NotFound or UnitUnavailable whatever period was asked for
	unit, err := s.bookableUnit(ctx, req.UnitID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	start, end := req.PeriodStart.UTC(), req.PeriodEnd.UTC()
	if err := checkInterval(start, end, now); err != nil {
		return nil, err
	}
	if err := checkCapacity(unit, &req.Guest); err != nil {
		return nil, err
	}

	guest := req.Guest
	r := &model.Reservation{
		Kind:          unit.Kind,
		UnitID:        unit.ID,
		OwnerID:       reservationOwner(caller, req.OwnerID),
		PeriodStart:   start,
		PeriodEnd:     end,
		Status:        model.StatusPending,
		Guest:         &guest,
		Amounts:       pricing.Quote(unit, start, end),
		PaymentStatus: model.PaymentUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.validator.Validate(r); err != nil {
		return nil, validationError("Reservation validation failed", err)
	}

	err = s.withUnitLock(ctx, unit.ID, func() error {
		if err := s.ensureFree(ctx, unit, start, end, now, ""); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, r); err != nil {
			return s.mapRepoError(err, "", "Failed to create reservation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Reservation created",
		"id", r.ID,
		"unit_id", r.UnitID,
		"kind", r.Kind,
		"walk_in", r.OwnerID == nil,
		"created_by", caller.ID,
		"total", r.Amounts.Total,
	)
	s.publish(ctx, kafka.EventReservationCreated, r)
	return r, nil
}

// reservationOwner decides ownership: customers always own what they book, staff may
// book for someone else or leave the owner empty for a walk-in.
func reservationOwner(caller model.Caller, requested *string) *string {
	if caller.IsPrivileged() {
		if requested == nil || *requested == "" {
			return nil
		}
		owner := *requested
		return &owner
	}
	owner := caller.ID
	return &owner
}

func (s *reservationService) GetByID(ctx context.Context, caller model.Caller, id string) (*model.Reservation, error) {
	if err := requireAuthenticated(caller); err != nil {
		return nil, err
	}

	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.IsOwnedBy(caller.ID) && !caller.IsPrivileged() {
		// not Forbidden: do not confirm the id exists to other customers
		return nil, apperrors.NotFoundWithID("Reservation", id)
	}
	return r, nil
}

func (s *reservationService) GetAll(ctx context.Context, caller model.Caller, filter model.ReservationFilter, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if err := requireAuthenticated(caller); err != nil {
		return nil, 0, err
	}

	filter.Kind = sanitizer.NormalizeLabel(filter.Kind)
	filter.Status = sanitizer.NormalizeLabel(filter.Status)
	if filter.Kind != "" && filter.Kind != model.KindRoom && filter.Kind != model.KindVehicle {
		return nil, 0, apperrors.InvalidInput("kind must be room or vehicle")
	}
	if !caller.IsPrivileged() {
		filter.OwnerID = caller.ID
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var records []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count reservations", "error", err)
			errCount = apperrors.Internal("Failed to count reservations", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		records, err = s.repo.FindAll(ctx, filter, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get reservations",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve reservations", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return records, count, nil
}

// Transition moves a placed reservation forward in its kind's lifecycle, or to
// cancelled. Overlap is not re-checked: the dates do not change.
func (s *reservationService) Transition(ctx context.Context, caller model.Caller, id, target string) (*model.Reservation, error) {
	if err := requirePrivileged(caller); err != nil {
		return nil, err
	}

	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	target = sanitizer.NormalizeLabel(target)
	if err := checkTransition(r, target); err != nil {
		return nil, err
	}

	return s.updateStatus(ctx, caller, r, target)
}

func checkTransition(r *model.Reservation, target string) error {
	if r.Status == model.StatusHold {
		return apperrors.InvalidState("Holds are confirmed or released, not transitioned")
	}
	if model.IsTerminalStatus(r.Status) {
		return apperrors.InvalidState("Reservation is in a terminal status").
			WithDetails(map[string]any{"status": r.Status})
	}
	if target == model.StatusHold || !model.IsValidStatus(r.Kind, target) {
		return apperrors.InvalidInput("Unknown target status for a " + r.Kind + ": " + target)
	}
	if !model.IsForwardTransition(r.Kind, r.Status, target) {
		return apperrors.InvalidState("Status can only move forward").
			WithDetails(map[string]any{"from": r.Status, "to": target})
	}
	return nil
}

// Cancel lets an owner withdraw a reservation that has not started.
func (s *reservationService) Cancel(ctx context.Context, caller model.Caller, id string) (*model.Reservation, error) {
	if err := requireAuthenticated(caller); err != nil {
		return nil, err
	}

	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(caller, r); err != nil {
		return nil, err
	}

	switch r.Status {
	case model.StatusPending, model.StatusConfirmed:
	case model.StatusHold:
		return nil, apperrors.InvalidState("Holds are released, not cancelled")
	default:
		return nil, apperrors.InvalidState("Reservation can no longer be cancelled").
			WithDetails(map[string]any{"status": r.Status})
	}

	return s.updateStatus(ctx, caller, r, model.StatusCancelled)
}

func (s *reservationService) updateStatus(ctx context.Context, caller model.Caller, r *model.Reservation, target string) (*model.Reservation, error) {
	now := s.now()
	from := r.Status
	if err := s.repo.UpdateStatus(ctx, r.ID, from, target, now); err != nil {
		return nil, s.mapRepoError(err, r.ID, "Failed to update reservation status")
	}

	r.Status = target
	r.UpdatedAt = now

	s.cfg.Log.Info("Reservation status changed",
		"id", r.ID,
		"from", from,
		"to", target,
		"changed_by", caller.ID,
	)
	s.publish(ctx, kafka.EventReservationStatusChanged, r)
	return r, nil
}

func (s *reservationService) CorrectAmounts(ctx context.Context, caller model.Caller, id string, correction *model.AmountsCorrection) (*model.Reservation, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	correction.Reason = sanitizer.TrimAndNormalize(correction.Reason)
	if err := s.validator.ValidateCorrection(correction); err != nil {
		return nil, validationError("Amounts correction validation failed", err)
	}

	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status == model.StatusHold {
		return nil, apperrors.InvalidState("Hold amounts are quoted, confirm the hold first")
	}

	now := s.now()
	audit := &model.AmountsAudit{
		ReservationID: r.ID,
		Previous:      r.Amounts,
		Corrected:     pricing.Correct(r.Amounts, correction.BasePrice, correction.ReservationFee),
		Reason:        correction.Reason,
		CorrectedBy:   caller.ID,
		CorrectedAt:   now,
	}
	if err := s.repo.CorrectAmounts(ctx, audit); err != nil {
		return nil, s.mapRepoError(err, id, "Failed to correct amounts")
	}

	r.Amounts = audit.Corrected
	r.UpdatedAt = now

	s.cfg.Log.Info("Reservation amounts corrected",
		"id", id,
		"previous_total", audit.Previous.Total,
		"total", audit.Corrected.Total,
		"reason", audit.Reason,
		"corrected_by", caller.ID,
	)
	s.publish(ctx, kafka.EventReservationAmountsCorrected, r)
	return r, nil
}

func (s *reservationService) MarkPayment(ctx context.Context, caller model.Caller, id string, update *model.PaymentUpdate) (*model.Reservation, error) {
	if err := requirePrivileged(caller); err != nil {
		return nil, err
	}
	update.PaymentStatus = sanitizer.NormalizeLabel(update.PaymentStatus)
	if err := s.validator.ValidatePayment(update); err != nil {
		return nil, validationError("Payment update validation failed", err)
	}

	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status == model.StatusHold {
		return nil, apperrors.InvalidState("Holds cannot carry a payment status")
	}

	now := s.now()
	if err := s.repo.UpdatePaymentStatus(ctx, id, update.PaymentStatus, now); err != nil {
		return nil, s.mapRepoError(err, id, "Failed to update payment status")
	}

	previous := r.PaymentStatus
	r.PaymentStatus = update.PaymentStatus
	r.UpdatedAt = now

	s.cfg.Log.Info("Reservation payment status marked",
		"id", id,
		"from", previous,
		"to", update.PaymentStatus,
		"marked_by", caller.ID,
	)
	s.publish(ctx, kafka.EventReservationPaymentMarked, r)
	return r, nil
}

func (s *reservationService) Delete(ctx context.Context, caller model.Caller, id string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}

	r, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err, id, "Failed to delete reservation")
	}

	s.cfg.Log.Info("Reservation deleted", "id", id, "unit_id", r.UnitID, "deleted_by", caller.ID)
	s.publish(ctx, kafka.EventReservationDeleted, r)
	return nil
}
