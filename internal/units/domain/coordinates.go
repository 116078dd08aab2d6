package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// IsValidLatLng reports whether s is a "<lat>,<lng>" pair in decimal
// degrees with latitude in [-90,90] and longitude in [-180,180].
// Whitespace around either segment is tolerated.
func IsValidLatLng(s string) bool {
	_, _, ok := ParseLatLng(s)
	return ok
}

// ParseLatLng decodes a "<lat>,<lng>" pair. ok is false for any shape
// that IsValidLatLng rejects; it never returns an error.
func ParseLatLng(s string) (lat, lng float64, ok bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}

	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return 0, 0, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, 0, false
	}
	return lat, lng, true
}

// FormatLatLng renders a coordinate pair with six decimal places and no
// surrounding whitespace. Formatting then re-parsing then re-formatting
// is an identity.
func FormatLatLng(lat, lng float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lng)
}
