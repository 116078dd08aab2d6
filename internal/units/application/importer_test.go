package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unipole-cloud/internal/units/application"
	"unipole-cloud/internal/units/infrastructure/memory"
)

type stubParser struct {
	rows []application.RawRow
	err  error
}

func (s stubParser) Parse(_ []byte) ([]application.RawRow, error) {
	return s.rows, s.err
}

func xlsxContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func importRow(unitID, latLng string) application.RawRow {
	return application.RawRow{
		"Unit ID":            unitID,
		"Location":           "Downtown Cairo",
		"Governorate":        "Cairo",
		"Latitude,Longitude": latLng,
	}
}

func TestValidateUpload(t *testing.T) {
	assert.Equal(t, "", application.ValidateUpload(xlsxContentType(), 1024))
	assert.Equal(t, "", application.ValidateUpload("text/csv", 1024))
	assert.Equal(t, "", application.ValidateUpload("application/vnd.ms-excel", 1024))

	assert.Contains(t, application.ValidateUpload("application/pdf", 1024), "valid Excel file")
	assert.Contains(t, application.ValidateUpload(xlsxContentType(), application.MaxImportBytes+1), "less than 5MB")
}

func TestSessionWorkflow(t *testing.T) {
	repo := memory.NewUnitRepository()
	im, err := application.NewImporter(repo, stubParser{rows: []application.RawRow{importRow("UNI001", "30.0444,31.2357")}}, nil)
	require.NoError(t, err)

	session := im.NewSession()
	assert.Equal(t, application.StateIdle, session.State())

	// commit before preview is rejected
	result := session.Commit(context.Background())
	assert.False(t, result.Success)

	require.NoError(t, session.SelectFile(xlsxContentType(), 100, []byte("payload")))
	assert.Equal(t, application.StateFileSelected, session.State())

	converted, rowErrs, err := session.Preview()
	require.NoError(t, err)
	assert.Len(t, converted, 1)
	assert.Empty(t, rowErrs)
	assert.Equal(t, application.StatePreviewed, session.State())

	result = session.Commit(context.Background())
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.ImportedCount)
	assert.Equal(t, application.StateSucceeded, session.State())

	stored, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestSessionRowErrorsBlockCommit(t *testing.T) {
	repo := memory.NewUnitRepository()
	parser := stubParser{rows: []application.RawRow{
		importRow("UNI001", "30.0444,31.2357"),
		importRow("UNI002", "95,0"),
	}}
	im, err := application.NewImporter(repo, parser, nil)
	require.NoError(t, err)

	session := im.NewSession()
	require.NoError(t, session.SelectFile(xlsxContentType(), 100, nil))
	_, rowErrs, err := session.Preview()
	require.NoError(t, err)
	require.Len(t, rowErrs, 1)

	result := session.Commit(context.Background())
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "1 validation errors")
	assert.Equal(t, rowErrs, result.Errors)

	// nothing persisted
	stored, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestSessionRejectsBadFile(t *testing.T) {
	im, err := application.NewImporter(memory.NewUnitRepository(), stubParser{}, nil)
	require.NoError(t, err)

	session := im.NewSession()
	err = session.SelectFile("application/pdf", 100, nil)
	require.Error(t, err)
	assert.Equal(t, application.StateIdle, session.State())
}

func TestSessionParseFailure(t *testing.T) {
	im, err := application.NewImporter(memory.NewUnitRepository(), stubParser{err: errors.New("bad workbook")}, nil)
	require.NoError(t, err)

	result := im.Import(context.Background(), xlsxContentType(), 10, nil)
	assert.False(t, result.Success)
	assert.Equal(t, "bad workbook", result.Message)
}

func TestImportIdempotentByUnitID(t *testing.T) {
	repo := memory.NewUnitRepository()

	first, err := application.NewImporter(repo, stubParser{rows: []application.RawRow{importRow("UNI001", "30.0444,31.2357")}}, nil)
	require.NoError(t, err)
	result := first.Import(context.Background(), xlsxContentType(), 10, nil)
	require.True(t, result.Success)

	second, err := application.NewImporter(repo, stubParser{rows: []application.RawRow{importRow("UNI001", "25.6872,32.6396")}}, nil)
	require.NoError(t, err)
	result = second.Import(context.Background(), xlsxContentType(), 10, nil)
	require.True(t, result.Success)

	stored, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "UNI001", stored[0].UnitID)
	assert.Equal(t, "25.6872,32.6396", stored[0].LatLng)
}
