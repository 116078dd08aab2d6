package units

import (
	"strings"
	"time"

	"unipole-cloud/internal/validation"
)

// Unit is a single advertising-location record. LatLng is the canonical
// "<lat>,<lng>" text encoding and is never split into two fields in
// storage or spreadsheet columns.
type Unit struct {
	ID          string    `json:"id"`
	UnitID      string    `json:"unit_id"`
	Location    string    `json:"location"`
	Governorate string    `json:"governorate"`
	LatLng      string    `json:"lat_lng"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// ValidateUnit runs every field check and returns all violations in
// field order. An empty slice means the unit is valid.
func ValidateUnit(u Unit) []validation.FieldError {
	var errs []validation.FieldError

	if strings.TrimSpace(u.UnitID) == "" {
		errs = append(errs, validation.FieldError{Field: "unit_id", Message: "Unit ID is required"})
	}
	if strings.TrimSpace(u.Location) == "" {
		errs = append(errs, validation.FieldError{Field: "location", Message: "Location is required"})
	}
	if strings.TrimSpace(u.Governorate) == "" {
		errs = append(errs, validation.FieldError{Field: "governorate", Message: "Governorate is required"})
	}
	if !IsValidLatLng(u.LatLng) {
		errs = append(errs, validation.FieldError{Field: "lat_lng", Message: "Valid coordinates are required (format: latitude,longitude)"})
	}

	return errs
}

// SanitizeText trims s and collapses internal whitespace runs to a
// single space.
func SanitizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
