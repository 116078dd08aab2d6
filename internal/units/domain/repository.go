package units

import "context"

// UnitUpdate carries the fields replaced by a form edit. The business
// UnitID is intentionally absent: the form path keys on the opaque id
// and never rewrites the business key, only the import path does
// (through BulkUpsert).
type UnitUpdate struct {
	Location    string
	Governorate string
	LatLng      string
}

// Repository manages unit persistence.
type Repository interface {
	// List returns all units ordered by creation time, newest first.
	List(ctx context.Context) ([]Unit, error)
	// Get loads a unit by its opaque id.
	Get(ctx context.Context, id string) (*Unit, error)
	// GetByUnitID loads a unit by its business id. A missing unit is
	// (nil, nil), not an error.
	GetByUnitID(ctx context.Context, unitID string) (*Unit, error)
	// Create inserts a new unit, assigning id and timestamps.
	Create(ctx context.Context, u Unit) (*Unit, error)
	// Update replaces the editable fields of the unit with the given
	// opaque id and stamps the update time.
	Update(ctx context.Context, id string, upd UnitUpdate) (*Unit, error)
	// Delete removes a unit by its opaque id.
	Delete(ctx context.Context, id string) error
	// BulkUpsert inserts or overwrites units keyed on the business
	// unit_id as a single atomic batch. It returns the stored count.
	BulkUpsert(ctx context.Context, batch []Unit) (int, error)
	// DeleteAll removes every unit and returns the removed count.
	DeleteAll(ctx context.Context) (int, error)
}
