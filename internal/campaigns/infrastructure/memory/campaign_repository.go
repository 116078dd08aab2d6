package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	campaigns "unipole-cloud/internal/campaigns/domain"
)

// CampaignRepository is an in-memory repository for demo/testing.
type CampaignRepository struct {
	mu   sync.RWMutex
	data map[string]campaigns.Campaign
}

// NewCampaignRepository constructs a repository.
func NewCampaignRepository() *CampaignRepository {
	return &CampaignRepository{data: make(map[string]campaigns.Campaign)}
}

// List returns all campaigns ordered by creation time, newest first.
func (r *CampaignRepository) List(ctx context.Context) ([]campaigns.Campaign, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]campaigns.Campaign, 0, len(r.data))
	for _, c := range r.data {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

// Get loads a campaign by id.
func (r *CampaignRepository) Get(ctx context.Context, id string) (*campaigns.Campaign, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.data[id]
	if !ok {
		return nil, campaigns.ErrNotFound
	}
	return &c, nil
}

// Create inserts a campaign, assigning id and timestamps.
func (r *CampaignRepository) Create(ctx context.Context, c campaigns.Campaign) (*campaigns.Campaign, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	c.ID = uuid.NewString()
	c.UnitIDs = append([]string(nil), c.UnitIDs...)
	c.CreatedAt = now
	c.UpdatedAt = now
	r.data[c.ID] = c
	return &c, nil
}

// Update applies the non-nil fields and stamps the update time.
func (r *CampaignRepository) Update(ctx context.Context, id string, upd campaigns.CampaignUpdate) (*campaigns.Campaign, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.data[id]
	if !ok {
		return nil, campaigns.ErrNotFound
	}
	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.UnitIDs != nil {
		c.UnitIDs = append([]string(nil), (*upd.UnitIDs)...)
	}
	if upd.ExportURL != nil {
		c.ExportURL = *upd.ExportURL
	}
	c.UpdatedAt = time.Now().UTC()
	r.data[id] = c
	return &c, nil
}

// Delete removes a campaign by id.
func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[id]; !ok {
		return campaigns.ErrNotFound
	}
	delete(r.data, id)
	return nil
}

// DeleteAll removes every campaign.
func (r *CampaignRepository) DeleteAll(ctx context.Context) (int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := len(r.data)
	r.data = make(map[string]campaigns.Campaign)
	return removed, nil
}
