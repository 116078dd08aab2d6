package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	campaigns "unipole-cloud/internal/campaigns/domain"
)

const defaultCampaignsTable = "campaigns"

// CampaignRepository is a Postgres implementation of
// campaigns.Repository. The unit_ids selection is stored as a jsonb
// array.
type CampaignRepository struct {
	db    *sql.DB
	table string
}

// NewCampaignRepository constructs a repository.
func NewCampaignRepository(db *sql.DB, opts ...CampaignOption) *CampaignRepository {
	repo := &CampaignRepository{db: db, table: defaultCampaignsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// CampaignOption configures the repository.
type CampaignOption func(*CampaignRepository)

// WithCampaignsTable overrides the default table name.
func WithCampaignsTable(table string) CampaignOption {
	return func(repo *CampaignRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

const campaignColumns = "id, name, unit_ids, export_url, created_at, updated_at"

// List returns all campaigns ordered by creation time, newest first.
func (r *CampaignRepository) List(ctx context.Context) ([]campaigns.Campaign, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("campaign repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT %s
FROM %s
ORDER BY created_at DESC`, campaignColumns, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []campaigns.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Get loads a campaign by id.
func (r *CampaignRepository) Get(ctx context.Context, id string) (*campaigns.Campaign, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("campaign repo: nil db")
	}
	if id == "" {
		return nil, campaigns.ErrEmptyID
	}

	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE id = $1
LIMIT 1`, campaignColumns, r.table)

	c, err := scanCampaign(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, campaigns.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a campaign with a fresh id and server timestamps.
func (r *CampaignRepository) Create(ctx context.Context, c campaigns.Campaign) (*campaigns.Campaign, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("campaign repo: nil db")
	}

	unitIDs, err := encodeUnitIDs(c.UnitIDs)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (id, name, unit_ids, export_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())
RETURNING %s`, r.table, campaignColumns)

	created, err := scanCampaign(r.db.QueryRowContext(ctx, query, uuid.NewString(), c.Name, unitIDs, nullableString(c.ExportURL)))
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update applies the non-nil fields of the edit and stamps the update
// time. With nothing to change it degenerates to a touch of updated_at.
func (r *CampaignRepository) Update(ctx context.Context, id string, upd campaigns.CampaignUpdate) (*campaigns.Campaign, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("campaign repo: nil db")
	}
	if id == "" {
		return nil, campaigns.ErrEmptyID
	}

	set := []string{"updated_at = NOW()"}
	args := []any{id}
	if upd.Name != nil {
		args = append(args, *upd.Name)
		set = append(set, fmt.Sprintf("name = $%d", len(args)))
	}
	if upd.UnitIDs != nil {
		unitIDs, err := encodeUnitIDs(*upd.UnitIDs)
		if err != nil {
			return nil, err
		}
		args = append(args, unitIDs)
		set = append(set, fmt.Sprintf("unit_ids = $%d", len(args)))
	}
	if upd.ExportURL != nil {
		args = append(args, nullableString(*upd.ExportURL))
		set = append(set, fmt.Sprintf("export_url = $%d", len(args)))
	}

	query := fmt.Sprintf(`
UPDATE %s
SET %s
WHERE id = $1
RETURNING %s`, r.table, strings.Join(set, ", "), campaignColumns)

	updated, err := scanCampaign(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, campaigns.ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// Delete removes a campaign by id.
func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("campaign repo: nil db")
	}
	if id == "" {
		return campaigns.ErrEmptyID
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
		return campaigns.ErrNotFound
	}
	return nil
}

// DeleteAll removes every campaign and returns the removed count.
func (r *CampaignRepository) DeleteAll(ctx context.Context) (int, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("campaign repo: nil db")
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

func scanCampaign(row rowScanner) (campaigns.Campaign, error) {
	var (
		c         campaigns.Campaign
		unitIDs   []byte
		exportURL sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &unitIDs, &exportURL, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return campaigns.Campaign{}, err
	}
	if len(unitIDs) > 0 {
		if err := json.Unmarshal(unitIDs, &c.UnitIDs); err != nil {
			return campaigns.Campaign{}, fmt.Errorf("campaign repo: decode unit_ids: %w", err)
		}
	}
	if c.UnitIDs == nil {
		c.UnitIDs = []string{}
	}
	c.ExportURL = exportURL.String
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}

func encodeUnitIDs(unitIDs []string) ([]byte, error) {
	if unitIDs == nil {
		unitIDs = []string{}
	}
	encoded, err := json.Marshal(unitIDs)
	if err != nil {
		return nil, fmt.Errorf("campaign repo: encode unit_ids: %w", err)
	}
	return encoded, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
