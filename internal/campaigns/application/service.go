package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	campaigns "unipole-cloud/internal/campaigns/domain"
	"unipole-cloud/internal/sharelink"
	units "unipole-cloud/internal/units/domain"
)

// CampaignService orchestrates campaign CRUD, share-link minting and
// public share resolution.
type CampaignService struct {
	repo         campaigns.Repository
	unitRepo     units.Repository
	signer       *sharelink.Signer
	shareBaseURL string
	logger       *zap.Logger
}

// NewCampaignService constructs a service. The signer and base URL are
// only needed by the share operations; passing a nil signer disables
// them.
func NewCampaignService(repo campaigns.Repository, unitRepo units.Repository, signer *sharelink.Signer, shareBaseURL string, logger *zap.Logger) (*CampaignService, error) {
	if repo == nil {
		return nil, errors.New("campaign service: nil repository")
	}
	if unitRepo == nil {
		return nil, errors.New("campaign service: nil unit repository")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CampaignService{
		repo:         repo,
		unitRepo:     unitRepo,
		signer:       signer,
		shareBaseURL: strings.TrimRight(shareBaseURL, "/"),
		logger:       logger,
	}, nil
}

// List returns all campaigns, newest first.
func (s *CampaignService) List(ctx context.Context) ([]campaigns.Campaign, error) {
	return s.repo.List(ctx)
}

// Get loads a campaign by id.
func (s *CampaignService) Get(ctx context.Context, id string) (*campaigns.Campaign, error) {
	if strings.TrimSpace(id) == "" {
		return nil, campaigns.ErrEmptyID
	}
	return s.repo.Get(ctx, id)
}

// Create stores a new campaign with a trimmed name.
func (s *CampaignService) Create(ctx context.Context, c campaigns.Campaign) (*campaigns.Campaign, error) {
	c.Name = strings.TrimSpace(c.Name)

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	s.logger.Info("campaign created", zap.String("id", created.ID), zap.Int("units", len(created.UnitIDs)))
	return created, nil
}

// Update applies a partial edit to an existing campaign.
func (s *CampaignService) Update(ctx context.Context, id string, upd campaigns.CampaignUpdate) (*campaigns.Campaign, error) {
	if strings.TrimSpace(id) == "" {
		return nil, campaigns.ErrEmptyID
	}
	if upd.Name != nil {
		trimmed := strings.TrimSpace(*upd.Name)
		upd.Name = &trimmed
	}
	return s.repo.Update(ctx, id, upd)
}

// Delete removes a campaign by id.
func (s *CampaignService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return campaigns.ErrEmptyID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("campaign deleted", zap.String("id", id))
	return nil
}

// Share mints a signed public link for the campaign, stores it as the
// campaign's export_url and returns the updated campaign. Re-sharing
// replaces the previous link.
func (s *CampaignService) Share(ctx context.Context, id string) (*campaigns.Campaign, error) {
	if strings.TrimSpace(id) == "" {
		return nil, campaigns.ErrEmptyID
	}
	if s.signer == nil {
		return nil, errors.New("campaign service: sharing disabled")
	}

	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	token, err := s.signer.Mint(c.ID)
	if err != nil {
		return nil, err
	}
	exportURL := fmt.Sprintf("%s/share/campaigns/%s", s.shareBaseURL, token)

	updated, err := s.repo.Update(ctx, c.ID, campaigns.CampaignUpdate{ExportURL: &exportURL})
	if err != nil {
		return nil, err
	}
	s.logger.Info("campaign shared", zap.String("id", c.ID))
	return updated, nil
}

// SharedCampaign is the public view behind a share link: the campaign
// plus its still-existing units.
type SharedCampaign struct {
	Campaign campaigns.Campaign `json:"campaign"`
	Units    []units.Unit       `json:"units"`
}

// ResolveShare verifies a share token and loads the campaign view it
// names. Unit references that no longer resolve are dropped silently.
func (s *CampaignService) ResolveShare(ctx context.Context, token string) (*SharedCampaign, error) {
	if s.signer == nil {
		return nil, errors.New("campaign service: sharing disabled")
	}

	campaignID, err := s.signer.Verify(token)
	if err != nil {
		return nil, err
	}

	c, err := s.repo.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	matched, err := s.Units(ctx, *c)
	if err != nil {
		return nil, err
	}
	return &SharedCampaign{Campaign: *c, Units: matched}, nil
}

// Units loads the still-existing units selected by a campaign, for the
// PDF export surface.
func (s *CampaignService) Units(ctx context.Context, c campaigns.Campaign) ([]units.Unit, error) {
	all, err := s.unitRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	selected := make(map[string]struct{}, len(c.UnitIDs))
	for _, id := range c.UnitIDs {
		selected[id] = struct{}{}
	}
	matched := make([]units.Unit, 0, len(c.UnitIDs))
	for _, u := range all {
		if _, ok := selected[u.ID]; ok {
			matched = append(matched, u)
		}
	}
	return matched, nil
}
