package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	units "unipole-cloud/internal/units/domain"
)

// UnitRepository is an in-memory repository for demo/testing.
type UnitRepository struct {
	mu   sync.RWMutex
	data map[string]units.Unit
}

// NewUnitRepository constructs a repository.
func NewUnitRepository() *UnitRepository {
	return &UnitRepository{data: make(map[string]units.Unit)}
}

// List returns all units ordered by creation time, newest first.
func (r *UnitRepository) List(ctx context.Context) ([]units.Unit, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]units.Unit, 0, len(r.data))
	for _, u := range r.data {
		list = append(list, u)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

// Get loads a unit by opaque id.
func (r *UnitRepository) Get(ctx context.Context, id string) (*units.Unit, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.data[id]
	if !ok {
		return nil, units.ErrNotFound
	}
	return &u, nil
}

// GetByUnitID loads a unit by business id, (nil, nil) when absent.
func (r *UnitRepository) GetByUnitID(ctx context.Context, unitID string) (*units.Unit, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.data {
		if u.UnitID == unitID {
			copied := u
			return &copied, nil
		}
	}
	return nil, nil
}

// Create inserts a unit, assigning id and timestamps.
func (r *UnitRepository) Create(ctx context.Context, u units.Unit) (*units.Unit, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.data {
		if existing.UnitID == u.UnitID {
			return nil, units.ErrDuplicateUnitID
		}
	}

	now := time.Now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.data[u.ID] = u
	return &u, nil
}

// Update replaces editable fields and stamps the update time.
func (r *UnitRepository) Update(ctx context.Context, id string, upd units.UnitUpdate) (*units.Unit, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.data[id]
	if !ok {
		return nil, units.ErrNotFound
	}
	u.Location = upd.Location
	u.Governorate = upd.Governorate
	u.LatLng = upd.LatLng
	u.UpdatedAt = time.Now().UTC()
	r.data[id] = u
	return &u, nil
}

// Delete removes a unit by opaque id.
func (r *UnitRepository) Delete(ctx context.Context, id string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[id]; !ok {
		return units.ErrNotFound
	}
	delete(r.data, id)
	return nil
}

// BulkUpsert inserts or overwrites units keyed on the business unit_id.
func (r *UnitRepository) BulkUpsert(ctx context.Context, batch []units.Unit) (int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, incoming := range batch {
		key := strings.TrimSpace(incoming.UnitID)
		if key == "" {
			continue
		}

		var existingID string
		for id, u := range r.data {
			if u.UnitID == key {
				existingID = id
				break
			}
		}
		if existingID != "" {
			u := r.data[existingID]
			u.Location = incoming.Location
			u.Governorate = incoming.Governorate
			u.LatLng = incoming.LatLng
			u.UpdatedAt = now
			r.data[existingID] = u
			continue
		}

		incoming.ID = uuid.NewString()
		incoming.UnitID = key
		incoming.CreatedAt = now
		incoming.UpdatedAt = now
		r.data[incoming.ID] = incoming
	}
	return len(batch), nil
}

// DeleteAll removes every unit.
func (r *UnitRepository) DeleteAll(ctx context.Context) (int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := len(r.data)
	r.data = make(map[string]units.Unit)
	return removed, nil
}
