package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	units "unipole-cloud/internal/units/domain"
)

const defaultUnitsTable = "units"

// pgUniqueViolation is the Postgres error code for unique_violation.
const pgUniqueViolation = "23505"

// UnitRepository is a Postgres implementation of units.Repository.
type UnitRepository struct {
	db    *sql.DB
	table string
}

// NewUnitRepository constructs a repository.
func NewUnitRepository(db *sql.DB, opts ...UnitOption) *UnitRepository {
	repo := &UnitRepository{db: db, table: defaultUnitsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// UnitOption configures the repository.
type UnitOption func(*UnitRepository)

// WithUnitsTable overrides the default table name.
func WithUnitsTable(table string) UnitOption {
	return func(repo *UnitRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

const unitColumns = "id, unit_id, location, governorate, lat_lng, created_at, updated_at"

// List returns all units ordered by creation time, newest first.
func (r *UnitRepository) List(ctx context.Context) ([]units.Unit, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("unit repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT %s
FROM %s
ORDER BY created_at DESC`, unitColumns, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []units.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// Get loads a unit by opaque id.
func (r *UnitRepository) Get(ctx context.Context, id string) (*units.Unit, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("unit repo: nil db")
	}
	if id == "" {
		return nil, units.ErrEmptyID
	}

	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE id = $1
LIMIT 1`, unitColumns, r.table)

	u, err := scanUnit(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, units.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByUnitID loads a unit by its business id. A missing unit is
// (nil, nil), not an error.
func (r *UnitRepository) GetByUnitID(ctx context.Context, unitID string) (*units.Unit, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("unit repo: nil db")
	}
	if unitID == "" {
		return nil, units.ErrEmptyID
	}

	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE unit_id = $1
LIMIT 1`, unitColumns, r.table)

	u, err := scanUnit(r.db.QueryRowContext(ctx, query, unitID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a unit with a fresh opaque id and server timestamps.
func (r *UnitRepository) Create(ctx context.Context, u units.Unit) (*units.Unit, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("unit repo: nil db")
	}

	query := fmt.Sprintf(`
INSERT INTO %s (id, unit_id, location, governorate, lat_lng, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
RETURNING %s`, r.table, unitColumns)

	created, err := scanUnit(r.db.QueryRowContext(ctx, query, uuid.NewString(), u.UnitID, u.Location, u.Governorate, u.LatLng))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, units.ErrDuplicateUnitID
		}
		return nil, err
	}
	return &created, nil
}

// Update replaces the editable fields of a unit and stamps the update
// time. The business unit_id is not touched on this path.
func (r *UnitRepository) Update(ctx context.Context, id string, upd units.UnitUpdate) (*units.Unit, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("unit repo: nil db")
	}
	if id == "" {
		return nil, units.ErrEmptyID
	}

	query := fmt.Sprintf(`
UPDATE %s
SET location = $2, governorate = $3, lat_lng = $4, updated_at = NOW()
WHERE id = $1
RETURNING %s`, r.table, unitColumns)

	updated, err := scanUnit(r.db.QueryRowContext(ctx, query, id, upd.Location, upd.Governorate, upd.LatLng))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, units.ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// Delete removes a unit by opaque id.
func (r *UnitRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("unit repo: nil db")
	}
	if id == "" {
		return units.ErrEmptyID
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return units.ErrNotFound
	}
	return nil
}

// BulkUpsert inserts or overwrites units keyed on the business unit_id
// inside a single transaction, so the batch either fully applies or
// leaves prior state untouched.
func (r *UnitRepository) BulkUpsert(ctx context.Context, batch []units.Unit) (int, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("unit repo: nil db")
	}
	if len(batch) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`
INSERT INTO %s (id, unit_id, location, governorate, lat_lng, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
ON CONFLICT (unit_id)
DO UPDATE SET
	location = EXCLUDED.location,
	governorate = EXCLUDED.governorate,
	lat_lng = EXCLUDED.lat_lng,
	updated_at = NOW()`, r.table)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	for _, u := range batch {
		if _, err := tx.ExecContext(ctx, query, uuid.NewString(), u.UnitID, u.Location, u.Governorate, u.LatLng); err != nil {
			_ = tx.Rollback()
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(batch), nil
}

// DeleteAll removes every unit and returns the removed count.
func (r *UnitRepository) DeleteAll(ctx context.Context) (int, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("unit repo: nil db")
	}

	query := fmt.Sprintf(`DELETE FROM %s`, r.table)
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUnit(row rowScanner) (units.Unit, error) {
	var u units.Unit
	if err := row.Scan(&u.ID, &u.UnitID, &u.Location, &u.Governorate, &u.LatLng, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return units.Unit{}, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
