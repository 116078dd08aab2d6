package memory

import (
	"context"
	"sync"
	"time"

	settings "unipole-cloud/internal/settings/domain"
)

// SettingsRepository is an in-memory repository for demo/testing.
type SettingsRepository struct {
	mu     sync.RWMutex
	stored *settings.UserSettings
}

// NewSettingsRepository constructs a repository.
func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{}
}

// Get loads the stored settings, (nil, nil) before the first save.
func (r *SettingsRepository) Get(ctx context.Context) (*settings.UserSettings, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.stored == nil {
		return nil, nil
	}
	copied := *r.stored
	return &copied, nil
}

// Upsert stores the settings.
func (r *SettingsRepository) Upsert(ctx context.Context, s settings.UserSettings) (*settings.UserSettings, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if r.stored != nil {
		s.ID = r.stored.ID
		s.CreatedAt = r.stored.CreatedAt
	} else {
		s.ID = "settings"
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	r.stored = &s
	copied := s
	return &copied, nil
}
