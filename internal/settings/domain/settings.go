package settings

import (
	"strconv"
	"time"

	units "unipole-cloud/internal/units/domain"
	"unipole-cloud/internal/validation"
)

// UserSettings is the singleton map-preferences record.
type UserSettings struct {
	ID                   string    `json:"id"`
	DefaultZoom          int       `json:"default_zoom"`
	DefaultCenterLat     float64   `json:"default_center_lat"`
	DefaultCenterLng     float64   `json:"default_center_lng"`
	PreferredGovernorate string    `json:"preferred_governorate,omitempty"`
	MapStyle             string    `json:"map_style"`
	MarkerStyle          string    `json:"marker_style"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Defaults returns the settings used before the record is first saved:
// zoom 10 centered on Cairo.
func Defaults() UserSettings {
	return UserSettings{
		DefaultZoom:      10,
		DefaultCenterLat: 30.0444,
		DefaultCenterLng: 31.2357,
		MapStyle:         "default",
		MarkerStyle:      "default",
	}
}

// ValidateSettings checks the zoom range and the map center.
func ValidateSettings(s UserSettings) []validation.FieldError {
	var errs []validation.FieldError
	if s.DefaultZoom < 1 || s.DefaultZoom > 20 {
		errs = append(errs, validation.FieldError{Field: "default_zoom", Message: "Zoom level must be between 1 and 20"})
	}
	latLng := strconv.FormatFloat(s.DefaultCenterLat, 'f', -1, 64) + "," + strconv.FormatFloat(s.DefaultCenterLng, 'f', -1, 64)
	if !units.IsValidLatLng(latLng) {
		errs = append(errs, validation.FieldError{Field: "coordinates", Message: "Invalid coordinates"})
	}
	return errs
}
