package settings

import "context"

// Repository manages the singleton settings record.
type Repository interface {
	// Get loads the stored settings. A never-saved record is
	// (nil, nil), not an error.
	Get(ctx context.Context) (*UserSettings, error)
	// Upsert stores the settings, creating the record on first save.
	Upsert(ctx context.Context, s UserSettings) (*UserSettings, error)
}
