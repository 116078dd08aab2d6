package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	units "unipole-cloud/internal/units/domain"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *UnitRepository) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewUnitRepository(db)
}

func unitRows() *sqlmock.Rows {
	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{"id", "unit_id", "location", "governorate", "lat_lng", "created_at", "updated_at"}).
		AddRow("id-1", "UNI001", "Downtown Cairo", "Cairo", "30.0444,31.2357", now, now)
}

func TestUnitRepositoryList(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT .+ FROM units.+ORDER BY created_at DESC`).
		WillReturnRows(unitRows())

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "UNI001", list[0].UnitID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitRepositoryGetNotFound(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT .+ FROM units.+WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, units.ErrNotFound)
}

func TestUnitRepositoryGetByUnitIDAbsentIsNil(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT .+ FROM units.+WHERE unit_id = \$1`).
		WithArgs("UNI999").
		WillReturnError(sql.ErrNoRows)

	u, err := repo.GetByUnitID(context.Background(), "UNI999")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUnitRepositoryCreate(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO units`).
		WithArgs(sqlmock.AnyArg(), "UNI001", "Downtown Cairo", "Cairo", "30.0444,31.2357").
		WillReturnRows(unitRows())

	created, err := repo.Create(context.Background(), units.Unit{
		UnitID:      "UNI001",
		Location:    "Downtown Cairo",
		Governorate: "Cairo",
		LatLng:      "30.0444,31.2357",
	})
	require.NoError(t, err)
	assert.Equal(t, "id-1", created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitRepositoryUpdateNotFound(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE units`).
		WithArgs("missing", "L", "G", "30.0444,31.2357").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), "missing", units.UnitUpdate{Location: "L", Governorate: "G", LatLng: "30.0444,31.2357"})
	assert.ErrorIs(t, err, units.ErrNotFound)
}

func TestUnitRepositoryDelete(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM units WHERE id = \$1`).
		WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "id-1"))

	mock.ExpectExec(`DELETE FROM units WHERE id = \$1`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), units.ErrNotFound)
}

func TestUnitRepositoryBulkUpsert(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	batch := []units.Unit{
		{UnitID: "UNI001", Location: "A", Governorate: "Cairo", LatLng: "30.0444,31.2357"},
		{UnitID: "UNI002", Location: "B", Governorate: "Giza", LatLng: "29.9792,31.1342"},
	}

	mock.ExpectBegin()
	for _, u := range batch {
		mock.ExpectExec(`(?s)INSERT INTO units.+ON CONFLICT \(unit_id\)`).
			WithArgs(sqlmock.AnyArg(), u.UnitID, u.Location, u.Governorate, u.LatLng).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	count, err := repo.BulkUpsert(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitRepositoryBulkUpsertRollsBackOnError(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO units`).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	_, err := repo.BulkUpsert(context.Background(), []units.Unit{{UnitID: "UNI001"}})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
