package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	settings "unipole-cloud/internal/settings/domain"
)

const defaultSettingsTable = "user_settings"

// singletonID keys the one settings row. The table never holds more.
const singletonID = "00000000-0000-0000-0000-000000000001"

// SettingsRepository is a Postgres implementation of
// settings.Repository.
type SettingsRepository struct {
	db    *sql.DB
	table string
}

// NewSettingsRepository constructs a repository.
func NewSettingsRepository(db *sql.DB, opts ...SettingsOption) *SettingsRepository {
	repo := &SettingsRepository{db: db, table: defaultSettingsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// SettingsOption configures the repository.
type SettingsOption func(*SettingsRepository)

// WithSettingsTable overrides the default table name.
func WithSettingsTable(table string) SettingsOption {
	return func(repo *SettingsRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

const settingsColumns = "id, default_zoom, default_center_lat, default_center_lng, preferred_governorate, map_style, marker_style, created_at, updated_at"

// Get loads the stored settings, (nil, nil) before the first save.
func (r *SettingsRepository) Get(ctx context.Context) (*settings.UserSettings, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("settings repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE id = $1
LIMIT 1`, settingsColumns, r.table)

	s, err := scanSettings(r.db.QueryRowContext(ctx, query, singletonID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Upsert stores the settings under the fixed singleton key.
func (r *SettingsRepository) Upsert(ctx context.Context, s settings.UserSettings) (*settings.UserSettings, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("settings repo: nil db")
	}

	query := fmt.Sprintf(`
INSERT INTO %s (id, default_zoom, default_center_lat, default_center_lng, preferred_governorate, map_style, marker_style, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
ON CONFLICT (id)
DO UPDATE SET
	default_zoom = EXCLUDED.default_zoom,
	default_center_lat = EXCLUDED.default_center_lat,
	default_center_lng = EXCLUDED.default_center_lng,
	preferred_governorate = EXCLUDED.preferred_governorate,
	map_style = EXCLUDED.map_style,
	marker_style = EXCLUDED.marker_style,
	updated_at = NOW()
RETURNING %s`, r.table, settingsColumns)

	stored, err := scanSettings(r.db.QueryRowContext(ctx, query,
		singletonID, s.DefaultZoom, s.DefaultCenterLat, s.DefaultCenterLng,
		nullableString(s.PreferredGovernorate), s.MapStyle, s.MarkerStyle))
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSettings(row rowScanner) (settings.UserSettings, error) {
	var (
		s           settings.UserSettings
		governorate sql.NullString
	)
	if err := row.Scan(&s.ID, &s.DefaultZoom, &s.DefaultCenterLat, &s.DefaultCenterLng, &governorate, &s.MapStyle, &s.MarkerStyle, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return settings.UserSettings{}, err
	}
	s.PreferredGovernorate = governorate.String
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
