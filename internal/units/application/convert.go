package application

import (
	"fmt"
	"strings"

	units "unipole-cloud/internal/units/domain"
	"unipole-cloud/internal/validation"
)

// Spreadsheet column headers for the unit interchange format.
const (
	HeaderUnitID      = "Unit ID"
	HeaderLocation    = "Location"
	HeaderGovernorate = "Governorate"
	HeaderLatLng      = "Latitude,Longitude"
	HeaderCreatedAt   = "Created At"
	HeaderUpdatedAt   = "Updated At"
)

// RequiredHeaders are the columns an import file must carry, matched
// case-insensitively after trimming.
var RequiredHeaders = []string{HeaderUnitID, HeaderLocation, HeaderGovernorate, HeaderLatLng}

// RawRow is one spreadsheet data row keyed by the verbatim header text
// of its file.
type RawRow map[string]string

// Cell returns the value under the given canonical header, matching the
// row's own keys case-insensitively and trimmed.
func (r RawRow) Cell(header string) string {
	if v, ok := r[header]; ok {
		return v
	}
	want := strings.ToLower(strings.TrimSpace(header))
	for k, v := range r {
		if strings.ToLower(strings.TrimSpace(k)) == want {
			return v
		}
	}
	return ""
}

// ConvertRows turns raw spreadsheet rows into sanitized unit records.
// Rows are 0-indexed internally and reported 1-indexed. A row with any
// violation is rejected whole; its messages join the error list and the
// row contributes no record. Conversion never halts early.
func ConvertRows(rows []RawRow) ([]units.Unit, []string) {
	converted := make([]units.Unit, 0, len(rows))
	var errs []string

	for i, row := range rows {
		rowErrs := validateRow(row, i)
		if len(rowErrs) > 0 {
			for _, fe := range rowErrs {
				errs = append(errs, fe.Message)
			}
			continue
		}
		converted = append(converted, units.Unit{
			UnitID:      units.SanitizeText(row.Cell(HeaderUnitID)),
			Location:    units.SanitizeText(row.Cell(HeaderLocation)),
			Governorate: units.SanitizeText(row.Cell(HeaderGovernorate)),
			LatLng:      units.SanitizeText(row.Cell(HeaderLatLng)),
		})
	}

	return converted, errs
}

// validateRow applies the unit field checks to raw cell text, prefixing
// every message with the 1-indexed row number.
func validateRow(row RawRow, index int) []validation.FieldError {
	prefix := fmt.Sprintf("Row %d: ", index+1)

	fieldErrs := units.ValidateUnit(units.Unit{
		UnitID:      row.Cell(HeaderUnitID),
		Location:    row.Cell(HeaderLocation),
		Governorate: row.Cell(HeaderGovernorate),
		LatLng:      row.Cell(HeaderLatLng),
	})

	prefixed := make([]validation.FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		prefixed = append(prefixed, validation.FieldError{Field: fe.Field, Message: prefix + fe.Message})
	}
	return prefixed
}
