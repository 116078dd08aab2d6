package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	settings "unipole-cloud/internal/settings/domain"
)

func settingsRows() *sqlmock.Rows {
	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{"id", "default_zoom", "default_center_lat", "default_center_lng", "preferred_governorate", "map_style", "marker_style", "created_at", "updated_at"}).
		AddRow(singletonID, 12, 30.0444, 31.2357, "Cairo", "default", "default", now, now)
}

func TestSettingsRepositoryGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSettingsRepository(db)

	mock.ExpectQuery(`(?s)SELECT .+ FROM user_settings.+WHERE id = \$1`).
		WithArgs(singletonID).
		WillReturnRows(settingsRows())

	stored, err := repo.Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 12, stored.DefaultZoom)
	assert.Equal(t, "Cairo", stored.PreferredGovernorate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepositoryGetNeverSaved(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSettingsRepository(db)

	mock.ExpectQuery(`(?s)SELECT .+ FROM user_settings.+WHERE id = \$1`).
		WithArgs(singletonID).
		WillReturnError(sql.ErrNoRows)

	stored, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stored)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepositoryUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSettingsRepository(db)

	mock.ExpectQuery(`(?s)INSERT INTO user_settings.+ON CONFLICT \(id\).+RETURNING`).
		WithArgs(singletonID, 12, 30.0444, 31.2357, sql.NullString{String: "Cairo", Valid: true}, "default", "default").
		WillReturnRows(settingsRows())

	stored, err := repo.Upsert(context.Background(), settings.UserSettings{
		DefaultZoom:          12,
		DefaultCenterLat:     30.0444,
		DefaultCenterLng:     31.2357,
		PreferredGovernorate: "Cairo",
		MapStyle:             "default",
		MarkerStyle:          "default",
	})
	require.NoError(t, err)
	assert.Equal(t, singletonID, stored.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
