package service

import (
	"context"
	"errors"
	unitserrors "staydesk/internal/units/errors"
	"staydesk/internal/units/repository"
	"staydesk/internal/units/validator"
	"staydesk/pkg/config"
	apperrors "staydesk/pkg/errors"
	"staydesk/pkg/model"
	"staydesk/pkg/sanitizer"
	"sync"
)

type UnitService interface {
	Create(ctx context.Context, caller model.Caller, unit *model.Unit) error
	GetByID(ctx context.Context, id string) (*model.Unit, error)
	GetAll(ctx context.Context, kind string, limit int, offset int64) ([]*model.Unit, int64, error)
	Update(ctx context.Context, caller model.Caller, id string, updates *model.UnitUpdate) error
	SetAvailability(ctx context.Context, caller model.Caller, id string, available bool) error
	Delete(ctx context.Context, caller model.Caller, id string) error
}

type unitService struct {
	repo      repository.UnitRepository
	validator *validator.UnitValidator
	cfg       *config.Config
}

func NewUnitService(
	repo repository.UnitRepository,
	validator *validator.UnitValidator,
	cfg *config.Config,
) UnitService {
	return &unitService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func requirePrivileged(caller model.Caller) error {
	if !caller.IsAuthenticated() {
		return apperrors.Unauthorized("authentication required")
	}
	if !caller.IsPrivileged() {
		return apperrors.Forbidden("staff role required")
	}
	return nil
}

func (s *unitService) Create(ctx context.Context, caller model.Caller, unit *model.Unit) error {
	if err := requirePrivileged(caller); err != nil {
		return err
	}

	s.sanitize(unit)
	unit.ID = ""
	// new units open for booking; closing one goes through SetAvailability
	unit.IsAvailable = true

	if err := s.validator.Validate(unit); err != nil {
		s.cfg.Log.Warn("Unit validation failed",
			"kind", unit.Kind,
			"number", unit.Number,
			"error", err,
		)
		return apperrors.Validation("Unit validation failed", map[string]any{
			"errors": err,
		})
	}

	if err := s.repo.Create(ctx, unit); err != nil {
		if errors.Is(err, unitserrors.ErrDuplicate) {
			return apperrors.AlreadyExists("A " + unit.Kind + " with number " + unit.Number + " already exists")
		}
		s.cfg.Log.Error("Failed to create unit",
			"kind", unit.Kind,
			"number", unit.Number,
			"error", err,
		)
		return apperrors.Internal("Failed to create unit", err)
	}

	s.cfg.Log.Info("Unit created successfully",
		"id", unit.ID,
		"kind", unit.Kind,
		"number", unit.Number,
		"created_by", caller.ID,
	)
	return nil
}

func (s *unitService) GetByID(ctx context.Context, id string) (*model.Unit, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Unit ID cannot be empty")
	}

	unit, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve unit")
	}

	return unit, nil
}

func (s *unitService) GetAll(ctx context.Context, kind string, limit int, offset int64) ([]*model.Unit, int64, error) {
	kind = sanitizer.NormalizeLabel(kind)
	if err := s.validator.ValidateKind(kind); err != nil {
		return nil, 0, apperrors.Validation("Invalid unit filter", map[string]any{"errors": err})
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var units []*model.Unit
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx, kind)
		if err != nil {
			s.cfg.Log.Error("Failed to count units", "kind", kind, "error", err)
			errCount = apperrors.Internal("Failed to count units", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		units, err = s.repo.FindAll(ctx, kind, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all units",
				"kind", kind,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve units", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return units, count, nil
}

func (s *unitService) Update(ctx context.Context, caller model.Caller, id string, updates *model.UnitUpdate) error {
	if err := requirePrivileged(caller); err != nil {
		return err
	}
	if id == "" {
		return apperrors.InvalidInput("Unit ID cannot be empty")
	}

	s.sanitizeUpdate(updates)
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Unit update validation failed", "id", id, "error", err)
		return apperrors.Validation("Unit validation failed", map[string]any{
			"errors": err,
		})
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return s.mapRepoError(err, id, "Failed to update unit")
	}

	s.cfg.Log.Info("Unit updated successfully", "id", id, "updated_by", caller.ID)
	return nil
}

// SetAvailability flips the coarse is_available switch. Existing reservations are untouched;
// only new holds and direct reservations are refused while a unit is closed.
func (s *unitService) SetAvailability(ctx context.Context, caller model.Caller, id string, available bool) error {
	if err := requirePrivileged(caller); err != nil {
		return err
	}
	if id == "" {
		return apperrors.InvalidInput("Unit ID cannot be empty")
	}

	if err := s.repo.SetAvailability(ctx, id, available); err != nil {
		return s.mapRepoError(err, id, "Failed to update unit availability")
	}

	s.cfg.Log.Info("Unit availability changed",
		"id", id,
		"is_available", available,
		"updated_by", caller.ID,
	)
	return nil
}

func (s *unitService) Delete(ctx context.Context, caller model.Caller, id string) error {
	if err := requirePrivileged(caller); err != nil {
		return err
	}
	if !caller.IsAdmin() {
		return apperrors.Forbidden("admin role required")
	}
	if id == "" {
		return apperrors.InvalidInput("Unit ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err, id, "Failed to delete unit")
	}

	s.cfg.Log.Info("Unit deleted successfully", "id", id, "deleted_by", caller.ID)
	return nil
}

func (s *unitService) mapRepoError(err error, id, message string) error {
	switch {
	case errors.Is(err, unitserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Unit", id)
	case errors.Is(err, unitserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid unit ID format")
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

func (s *unitService) sanitize(unit *model.Unit) {
	unit.Kind = sanitizer.NormalizeLabel(unit.Kind)
	unit.Number = sanitizer.NormalizeUnitNumber(unit.Number)
	unit.Name = sanitizer.NormalizeName(unit.Name)
	unit.Type = sanitizer.NormalizeLabel(unit.Type)
	unit.Description = sanitizer.TrimAndNormalize(unit.Description)
	unit.Features = sanitizer.NormalizeFeatures(unit.Features)
	unit.ImageURLs = sanitizer.NormalizeImageURLs(unit.ImageURLs)
}

func (s *unitService) sanitizeUpdate(updates *model.UnitUpdate) {
	updates.Name = sanitizer.NormalizeName(updates.Name)
	updates.Type = sanitizer.NormalizeLabel(updates.Type)
	updates.Description = sanitizer.TrimAndNormalize(updates.Description)
	if updates.Features != nil {
		updates.Features = sanitizer.NormalizeFeatures(updates.Features)
	}
	if updates.ImageURLs != nil {
		updates.ImageURLs = sanitizer.NormalizeImageURLs(updates.ImageURLs)
	}
}
