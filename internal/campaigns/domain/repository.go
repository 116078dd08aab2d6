package campaigns

import "context"

// CampaignUpdate carries a partial edit. Nil fields are left as stored;
// ExportURL distinguishes "unset" (nil) from "clear" (pointer to empty
// string) because minting a share link rewrites only that column.
type CampaignUpdate struct {
	Name      *string
	UnitIDs   *[]string
	ExportURL *string
}

// Repository manages campaign persistence.
type Repository interface {
	// List returns all campaigns ordered by creation time, newest first.
	List(ctx context.Context) ([]Campaign, error)
	// Get loads a campaign by id, ErrNotFound when absent.
	Get(ctx context.Context, id string) (*Campaign, error)
	// Create inserts a new campaign, assigning id and timestamps.
	Create(ctx context.Context, c Campaign) (*Campaign, error)
	// Update applies the non-nil fields and stamps the update time.
	Update(ctx context.Context, id string, upd CampaignUpdate) (*Campaign, error)
	// Delete removes a campaign by id.
	Delete(ctx context.Context, id string) error
	// DeleteAll removes every campaign and returns the removed count.
	DeleteAll(ctx context.Context) (int, error)
}
