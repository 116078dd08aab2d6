package campaigns

import (
	"strings"
	"time"

	"unipole-cloud/internal/validation"
)

// Campaign is a named selection of advertising units. UnitIDs hold the
// opaque ids of the selected units; references to units deleted later
// simply stop matching, they are never an error.
type Campaign struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UnitIDs   []string  `json:"unit_ids"`
	ExportURL string    `json:"export_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidateCampaignName checks the required/length constraints on a
// campaign name. Bounds apply to the trimmed value; at most one error
// is returned because the checks are mutually exclusive.
func ValidateCampaignName(name string) []validation.FieldError {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		return []validation.FieldError{{Field: "name", Message: "Campaign name is required"}}
	case len([]rune(trimmed)) < 3:
		return []validation.FieldError{{Field: "name", Message: "Campaign name must be at least 3 characters long"}}
	case len([]rune(trimmed)) > 100:
		return []validation.FieldError{{Field: "name", Message: "Campaign name must be less than 100 characters"}}
	}
	return nil
}

// ValidateUnitSelection requires at least one selected unit.
func ValidateUnitSelection(unitIDs []string) []validation.FieldError {
	if len(unitIDs) == 0 {
		return []validation.FieldError{{Field: "unit_ids", Message: "At least one unit must be selected"}}
	}
	return nil
}

// ValidateCampaign runs every campaign validator in field order.
func ValidateCampaign(c Campaign) []validation.FieldError {
	errs := ValidateCampaignName(c.Name)
	errs = append(errs, ValidateUnitSelection(c.UnitIDs)...)
	return errs
}
