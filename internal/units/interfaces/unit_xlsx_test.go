package interfaces

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"unipole-cloud/internal/units/application"
	units "unipole-cloud/internal/units/domain"
)

func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, value))
		}
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return buf.Bytes()
}

func TestParseUnitsWorkbook(t *testing.T) {
	payload := buildWorkbook(t, [][]any{
		{"Unit ID", "Location", "Governorate", "Latitude,Longitude"},
		{"UNI001", "Downtown Cairo", "Cairo", "30.0444,31.2357"},
		{"", "", "", ""}, // blank trailing row, skipped
		{"UNI002", "Alexandria Corniche", "Alexandria", "31.2001,29.9187"},
	})

	rows, err := ParseUnitsWorkbook(payload)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "UNI001", rows[0]["Unit ID"])
	assert.Equal(t, "31.2001,29.9187", rows[1]["Latitude,Longitude"])
}

func TestParseUnitsWorkbookMissingHeader(t *testing.T) {
	payload := buildWorkbook(t, [][]any{
		{"Unit ID", "Location", "Governorate"},
		{"UNI001", "Downtown Cairo", "Cairo"},
	})

	_, err := ParseUnitsWorkbook(payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")
	assert.Contains(t, err.Error(), "Latitude,Longitude")
}

func TestParseUnitsWorkbookHeaderOnly(t *testing.T) {
	payload := buildWorkbook(t, [][]any{
		{"Unit ID", "Location", "Governorate", "Latitude,Longitude"},
	})

	_, err := ParseUnitsWorkbook(payload)
	assert.ErrorIs(t, err, ErrNoDataRows)
}

func TestParseUnitsWorkbookHeaderMatchIsCaseInsensitive(t *testing.T) {
	payload := buildWorkbook(t, [][]any{
		{" unit id ", "LOCATION", "governorate", "Latitude,Longitude"},
		{"UNI001", "Downtown Cairo", "Cairo", "30.0444,31.2357"},
	})

	rows, err := ParseUnitsWorkbook(payload)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	// keys stay verbatim; lookup happens fold-insensitively downstream
	assert.Equal(t, "UNI001", rows[0].Cell("Unit ID"))
}

func TestParseUnitsWorkbookShortDataRow(t *testing.T) {
	payload := buildWorkbook(t, [][]any{
		{"Unit ID", "Location", "Governorate", "Latitude,Longitude"},
		{"UNI001", "Downtown Cairo"}, // trailing cells absent
	})

	rows, err := ParseUnitsWorkbook(payload)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0]["Governorate"])
}

func TestParseUnitsCSV(t *testing.T) {
	payload := []byte("Unit ID,Location,Governorate,\"Latitude,Longitude\"\nUNI001,Downtown Cairo,Cairo,\"30.0444,31.2357\"\n")

	rows, err := ParseUnitsWorkbook(payload)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "30.0444,31.2357", rows[0]["Latitude,Longitude"])
}

func TestParseUnitsWorkbookGarbage(t *testing.T) {
	_, err := ParseUnitsWorkbook([]byte("PK\x03\x04 not really a zip"))
	assert.Error(t, err)
}

func TestExportImportRoundTrip(t *testing.T) {
	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	source := []units.Unit{
		{ID: "a", UnitID: "UNI001", Location: "Downtown Cairo", Governorate: "Cairo", LatLng: "30.0444,31.2357", CreatedAt: now, UpdatedAt: now},
		{ID: "b", UnitID: "UNI002", Location: "Sharm El Sheikh", Governorate: "South Sinai", LatLng: "27.9158,34.3300", CreatedAt: now, UpdatedAt: now},
	}

	payload, err := BuildUnitsXLSX(source)
	require.NoError(t, err)

	rows, err := ParseUnitsWorkbook(payload)
	require.NoError(t, err)

	converted, errs := application.ConvertRows(rows)
	require.Empty(t, errs)
	require.Len(t, converted, len(source))
	for i, u := range converted {
		assert.Equal(t, source[i].UnitID, u.UnitID)
		assert.Equal(t, source[i].Location, u.Location)
		assert.Equal(t, source[i].Governorate, u.Governorate)
		assert.Equal(t, source[i].LatLng, u.LatLng)
	}
}

func TestBuildUnitsXLSXColumns(t *testing.T) {
	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	payload, err := BuildUnitsXLSX([]units.Unit{
		{UnitID: "UNI001", Location: "Downtown Cairo", Governorate: "Cairo", LatLng: "30.0444,31.2357", CreatedAt: now, UpdatedAt: now},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Units")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Unit ID", "Location", "Governorate", "Latitude,Longitude", "Created At", "Updated At"}, rows[0])
	assert.Equal(t, "8/20/2026", rows[1][4])
}

func TestBuildSampleXLSX(t *testing.T) {
	payload, err := BuildSampleXLSX()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sample Units")
	require.NoError(t, err)
	require.Len(t, rows, 11) // header + 10 sample rows
	assert.Equal(t, []string{"Unit ID", "Location", "Governorate", "Latitude,Longitude"}, rows[0])
	for _, row := range rows[1:] {
		require.Len(t, row, 4)
		assert.True(t, units.IsValidLatLng(row[3]), row[3])
		assert.False(t, strings.TrimSpace(row[0]) == "")
	}

	// the sample must convert cleanly
	raw, err := ParseUnitsWorkbook(payload)
	require.NoError(t, err)
	converted, errs := application.ConvertRows(raw)
	assert.Empty(t, errs)
	assert.Len(t, converted, 10)
}
