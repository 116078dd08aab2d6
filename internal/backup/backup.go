// Package backup builds full-data snapshots and handles the
// clear-all-data operation.
package backup

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	campaigns "unipole-cloud/internal/campaigns/domain"
	settings "unipole-cloud/internal/settings/domain"
	units "unipole-cloud/internal/units/domain"
)

// SnapshotVersion tags the backup format.
const SnapshotVersion = "1.0"

// Snapshot is the JSON backup payload.
type Snapshot struct {
	Units      []units.Unit           `json:"units"`
	Campaigns  []campaigns.Campaign   `json:"campaigns"`
	Settings   *settings.UserSettings `json:"settings"`
	ExportedAt time.Time              `json:"exported_at"`
	Version    string                 `json:"version"`
}

// Service reads and clears data across all three stores.
type Service struct {
	units     units.Repository
	campaigns campaigns.Repository
	settings  settings.Repository
	logger    *zap.Logger
}

// NewService constructs a service.
func NewService(unitRepo units.Repository, campaignRepo campaigns.Repository, settingsRepo settings.Repository, logger *zap.Logger) (*Service, error) {
	if unitRepo == nil {
		return nil, errors.New("backup service: nil unit repository")
	}
	if campaignRepo == nil {
		return nil, errors.New("backup service: nil campaign repository")
	}
	if settingsRepo == nil {
		return nil, errors.New("backup service: nil settings repository")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{units: unitRepo, campaigns: campaignRepo, settings: settingsRepo, logger: logger}, nil
}

// Build assembles a snapshot of everything stored.
func (s *Service) Build(ctx context.Context) (*Snapshot, error) {
	unitList, err := s.units.List(ctx)
	if err != nil {
		return nil, err
	}
	campaignList, err := s.campaigns.List(ctx)
	if err != nil {
		return nil, err
	}
	stored, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	if unitList == nil {
		unitList = []units.Unit{}
	}
	if campaignList == nil {
		campaignList = []campaigns.Campaign{}
	}
	return &Snapshot{
		Units:      unitList,
		Campaigns:  campaignList,
		Settings:   stored,
		ExportedAt: time.Now().UTC(),
		Version:    SnapshotVersion,
	}, nil
}

// ClearResult reports what a clear-all removed.
type ClearResult struct {
	CampaignsRemoved int `json:"campaigns_removed"`
	UnitsRemoved     int `json:"units_removed"`
}

// ClearAll removes every campaign and then every unit. Campaigns go
// first so no campaign is ever left pointing at a store without its
// units. Settings survive a clear.
func (s *Service) ClearAll(ctx context.Context) (*ClearResult, error) {
	campaignsRemoved, err := s.campaigns.DeleteAll(ctx)
	if err != nil {
		return nil, err
	}
	unitsRemoved, err := s.units.DeleteAll(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("all data cleared",
		zap.Int("campaigns_removed", campaignsRemoved),
		zap.Int("units_removed", unitsRemoved))
	return &ClearResult{CampaignsRemoved: campaignsRemoved, UnitsRemoved: unitsRemoved}, nil
}
