package application

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	units "unipole-cloud/internal/units/domain"
)

// UnitService orchestrates unit CRUD against the repository. Field
// validation happens at the submitting boundary; the service enforces
// invariants that need the store, like business-id uniqueness.
type UnitService struct {
	repo   units.Repository
	logger *zap.Logger
}

// NewUnitService constructs a service.
func NewUnitService(repo units.Repository, logger *zap.Logger) (*UnitService, error) {
	if repo == nil {
		return nil, errors.New("unit service: nil repository")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnitService{repo: repo, logger: logger}, nil
}

// List returns all units, newest first.
func (s *UnitService) List(ctx context.Context) ([]units.Unit, error) {
	return s.repo.List(ctx)
}

// Get loads a unit by its opaque id.
func (s *UnitService) Get(ctx context.Context, id string) (*units.Unit, error) {
	if strings.TrimSpace(id) == "" {
		return nil, units.ErrEmptyID
	}
	return s.repo.Get(ctx, id)
}

// Create sanitizes and stores a new unit. The gateway enforces unit_id
// uniqueness; the lookup here is the defensive pre-check so the caller
// gets a field-scoped message instead of a constraint error.
func (s *UnitService) Create(ctx context.Context, u units.Unit) (*units.Unit, error) {
	u = sanitizeUnit(u)

	existing, err := s.repo.GetByUnitID(ctx, u.UnitID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, units.ErrDuplicateUnitID
	}

	created, err := s.repo.Create(ctx, u)
	if err != nil {
		return nil, err
	}
	s.logger.Info("unit created", zap.String("id", created.ID), zap.String("unit_id", created.UnitID))
	return created, nil
}

// Update replaces the editable fields of an existing unit.
func (s *UnitService) Update(ctx context.Context, id string, upd units.UnitUpdate) (*units.Unit, error) {
	if strings.TrimSpace(id) == "" {
		return nil, units.ErrEmptyID
	}
	upd.Location = units.SanitizeText(upd.Location)
	upd.Governorate = units.SanitizeText(upd.Governorate)
	upd.LatLng = units.SanitizeText(upd.LatLng)
	return s.repo.Update(ctx, id, upd)
}

// Delete removes a unit by its opaque id.
func (s *UnitService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return units.ErrEmptyID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("unit deleted", zap.String("id", id))
	return nil
}

func sanitizeUnit(u units.Unit) units.Unit {
	u.UnitID = units.SanitizeText(u.UnitID)
	u.Location = units.SanitizeText(u.Location)
	u.Governorate = units.SanitizeText(u.Governorate)
	u.LatLng = units.SanitizeText(u.LatLng)
	return u
}
