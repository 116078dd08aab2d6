package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	campaigns "unipole-cloud/internal/campaigns/domain"
	units "unipole-cloud/internal/units/domain"
)

// BuildCampaignPDF renders a one-page summary of a campaign and its
// units.
func BuildCampaignPDF(c campaigns.Campaign, selected []units.Unit) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Campaign Summary")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Name: %s", c.Name))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Units selected: %d", len(c.UnitIDs)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Created: %s", c.CreatedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	if c.ExportURL != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Shared at: %s", c.ExportURL))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	// Units table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 6, "Unit ID", "1", 0, "C", false, 0, "")
	pdf.CellFormat(65, 6, "Location", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Governorate", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Coordinates", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, u := range selected {
		pdf.CellFormat(30, 6, u.UnitID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(65, 6, u.Location, "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 6, u.Governorate, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, u.LatLng, "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	if len(selected) == 0 {
		pdf.CellFormat(190, 6, "No matching units", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
