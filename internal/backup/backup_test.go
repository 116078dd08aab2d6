package backup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	campaigns "unipole-cloud/internal/campaigns/domain"
	campaignmem "unipole-cloud/internal/campaigns/infrastructure/memory"
	settings "unipole-cloud/internal/settings/domain"
	settingsmem "unipole-cloud/internal/settings/infrastructure/memory"
	units "unipole-cloud/internal/units/domain"
	unitmem "unipole-cloud/internal/units/infrastructure/memory"
)

type fixtures struct {
	svc       *Service
	units     *unitmem.UnitRepository
	campaigns *campaignmem.CampaignRepository
	settings  *settingsmem.SettingsRepository
}

func newFixtures(t *testing.T) fixtures {
	t.Helper()
	f := fixtures{
		units:     unitmem.NewUnitRepository(),
		campaigns: campaignmem.NewCampaignRepository(),
		settings:  settingsmem.NewSettingsRepository(),
	}
	svc, err := NewService(f.units, f.campaigns, f.settings, nil)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f fixtures) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	u, err := f.units.Create(ctx, units.Unit{UnitID: "UNI001", Location: "Downtown Cairo", Governorate: "Cairo", LatLng: "30.044400,31.235700"})
	require.NoError(t, err)
	_, err = f.campaigns.Create(ctx, campaigns.Campaign{Name: "Summer Launch", UnitIDs: []string{u.ID}})
	require.NoError(t, err)
	_, err = f.settings.Upsert(ctx, settings.Defaults())
	require.NoError(t, err)
}

func TestBuildSnapshot(t *testing.T) {
	f := newFixtures(t)
	f.seed(t)

	snapshot, err := f.svc.Build(context.Background())
	require.NoError(t, err)
	assert.Len(t, snapshot.Units, 1)
	assert.Len(t, snapshot.Campaigns, 1)
	require.NotNil(t, snapshot.Settings)
	assert.Equal(t, "1.0", snapshot.Version)
	assert.False(t, snapshot.ExportedAt.IsZero())
}

func TestBuildSnapshotEmptyStores(t *testing.T) {
	f := newFixtures(t)

	snapshot, err := f.svc.Build(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, snapshot.Units)
	assert.NotNil(t, snapshot.Campaigns)
	assert.Nil(t, snapshot.Settings)

	// empty collections must encode as [], not null
	encoded, err := json.Marshal(snapshot)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"units":[]`)
	assert.Contains(t, string(encoded), `"campaigns":[]`)
}

func TestClearAllRemovesCampaignsAndUnits(t *testing.T) {
	f := newFixtures(t)
	f.seed(t)
	ctx := context.Background()

	result, err := f.svc.ClearAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CampaignsRemoved)
	assert.Equal(t, 1, result.UnitsRemoved)

	remainingUnits, err := f.units.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, remainingUnits)
	remainingCampaigns, err := f.campaigns.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, remainingCampaigns)

	// settings survive a clear
	stored, err := f.settings.Get(ctx)
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestHandleBackup(t *testing.T) {
	f := newFixtures(t)
	f.seed(t)
	h, err := NewHandler(f.svc, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/backup", nil)
	rec := httptest.NewRecorder()
	h.HandleBackup(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "super_unipole_backup_")

	var snapshot Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Len(t, snapshot.Units, 1)
	assert.Equal(t, "1.0", snapshot.Version)
}

func TestHandleClear(t *testing.T) {
	f := newFixtures(t)
	f.seed(t)
	h, err := NewHandler(f.svc, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/data", nil)
	rec := httptest.NewRecorder()
	h.HandleClear(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	remaining, err := f.units.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestHandleClearRejectsGet(t *testing.T) {
	f := newFixtures(t)
	h, err := NewHandler(f.svc, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/data", nil)
	rec := httptest.NewRecorder()
	h.HandleClear(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
