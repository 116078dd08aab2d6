package interfaces

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"unipole-cloud/internal/units/application"
	units "unipole-cloud/internal/units/domain"
)

const (
	unitsSheetName  = "Units"
	sampleSheetName = "Sample Units"

	// SampleFilename is the deterministic name of the template file.
	SampleFilename = "sample-units.xlsx"

	// Timestamp columns are rendered as locale date strings on export,
	// not canonical timestamps, and are excluded from round-trips.
	exportDateLayout = "1/2/2006"
)

var exportHeaders = []string{
	application.HeaderUnitID,
	application.HeaderLocation,
	application.HeaderGovernorate,
	application.HeaderLatLng,
	application.HeaderCreatedAt,
	application.HeaderUpdatedAt,
}

// Column widths are cosmetic only.
var exportColumnWidths = []float64{15, 30, 20, 25, 15, 15}

// ErrNoDataRows is returned for a workbook with a header row only.
var ErrNoDataRows = errors.New("spreadsheet must contain at least a header row and one data row")

// UnitWorkbookParser adapts ParseUnitsWorkbook to the import workflow.
type UnitWorkbookParser struct{}

// Parse implements application.WorkbookParser.
func (UnitWorkbookParser) Parse(data []byte) ([]application.RawRow, error) {
	return ParseUnitsWorkbook(data)
}

// ParseUnitsWorkbook decodes the first sheet of an xlsx/xls payload, or
// a CSV payload, into raw rows keyed by the file's verbatim header
// text. It fails when the sheet has fewer than two rows or a required
// header is absent. Data rows whose every cell is empty are dropped
// before conversion; they model blank trailing rows, not invalid ones.
func ParseUnitsWorkbook(data []byte) ([]application.RawRow, error) {
	rows, err := readRows(data)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, ErrNoDataRows
	}

	headers := rows[0]
	if missing := missingHeaders(headers); len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	raw := make([]application.RawRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		obj := make(application.RawRow, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(row) {
				obj[header] = row[i]
			} else {
				obj[header] = ""
			}
		}
		raw = append(raw, obj)
	}
	return raw, nil
}

// readRows extracts the cell grid of the first sheet. Zip payloads go
// through excelize, anything else is treated as CSV.
func readRows(data []byte) ([][]string, error) {
	if bytes.HasPrefix(data, []byte("PK")) {
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse spreadsheet: %w", err)
		}
		defer f.Close()

		sheetName := f.GetSheetName(0)
		if sheetName == "" {
			return nil, errors.New("spreadsheet has no sheets")
		}
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("failed to read rows: %w", err)
		}
		return rows, nil
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = false
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse spreadsheet: %w", err)
	}
	return rows, nil
}

func missingHeaders(headers []string) []string {
	var missing []string
	for _, required := range application.RequiredHeaders {
		found := false
		for _, h := range headers {
			if strings.EqualFold(strings.TrimSpace(h), required) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, required)
		}
	}
	return missing
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// BuildUnitsXLSX renders units as a downloadable workbook, one row per
// unit with the six fixed interchange columns.
func BuildUnitsXLSX(list []units.Unit) ([]byte, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", unitsSheetName)

	if err := writeHeaderRow(f, unitsSheetName, exportHeaders, exportColumnWidths); err != nil {
		f.Close()
		return nil, err
	}

	for i, u := range list {
		row := i + 2
		values := []any{
			u.UnitID,
			u.Location,
			u.Governorate,
			u.LatLng,
			formatExportDate(u.CreatedAt),
			formatExportDate(u.UpdatedAt),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetCellValue(unitsSheetName, cell, value); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	return writeWorkbook(f)
}

// BuildSampleXLSX produces the fixed reference workbook with the four
// import columns, used both as a template and as schema documentation.
func BuildSampleXLSX() ([]byte, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sampleSheetName)

	headers := exportHeaders[:4]
	if err := writeHeaderRow(f, sampleSheetName, headers, exportColumnWidths[:4]); err != nil {
		f.Close()
		return nil, err
	}

	for i, u := range SampleUnits() {
		row := i + 2
		values := []any{u.UnitID, u.Location, u.Governorate, u.LatLng}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetCellValue(sampleSheetName, cell, value); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	return writeWorkbook(f)
}

// SampleUnits is the hard-coded 10-row reference dataset.
func SampleUnits() []units.Unit {
	return []units.Unit{
		{UnitID: "UNI001", Location: "Downtown Cairo", Governorate: "Cairo", LatLng: "30.0444,31.2357"},
		{UnitID: "UNI002", Location: "Alexandria Corniche", Governorate: "Alexandria", LatLng: "31.2001,29.9187"},
		{UnitID: "UNI003", Location: "Giza Pyramids Road", Governorate: "Giza", LatLng: "29.9792,31.1342"},
		{UnitID: "UNI004", Location: "Luxor Temple Area", Governorate: "Luxor", LatLng: "25.6872,32.6396"},
		{UnitID: "UNI005", Location: "Aswan High Dam", Governorate: "Aswan", LatLng: "24.0889,32.8998"},
		{UnitID: "UNI006", Location: "Hurghada Marina", Governorate: "Red Sea", LatLng: "27.2579,33.8116"},
		{UnitID: "UNI007", Location: "Sharm El Sheikh", Governorate: "South Sinai", LatLng: "27.9158,34.3300"},
		{UnitID: "UNI008", Location: "Mansoura University", Governorate: "Dakahlia", LatLng: "31.0364,31.3801"},
		{UnitID: "UNI009", Location: "Tanta City Center", Governorate: "Gharbia", LatLng: "30.7865,31.0004"},
		{UnitID: "UNI010", Location: "Port Said Harbor", Governorate: "Port Said", LatLng: "31.2653,32.3019"},
	}
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string, widths []float64) error {
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if i < len(widths) {
			if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeWorkbook(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatExportDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(exportDateLayout)
}
