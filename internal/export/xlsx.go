package export

import (
	"fmt"

	"github.com/piwi3910/planmeasure/internal/model"
	"github.com/xuri/excelize/v2"
)

const roomSheetName = "Rooms"

// ExportXLSX writes a room schedule workbook: one row per polygon with
// its identifier, metadata room fields, and real-world measurements.
func ExportXLSX(path string, polygons []*model.Polygon, scale model.Scale) error {
	if len(polygons) == 0 {
		return fmt.Errorf("no polygons to export")
	}
	if !scale.Valid() {
		return fmt.Errorf("scale factor must be greater than zero")
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", roomSheetName)

	headers := []string{"ID", "Room", "Name", fmt.Sprintf("Area (%s²)", scale.Unit), fmt.Sprintf("Perimeter (%s)", scale.Unit)}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(roomSheetName, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for rowIdx, p := range polygons {
		values := []interface{}{
			p.ID,
			p.Metadata["room"],
			p.Metadata["name"],
			p.RealArea(scale),
			p.RealPerimeter(scale),
		}
		for colIdx, v := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return fmt.Errorf("failed to compute cell for polygon %s: %w", p.ID, err)
			}
			if err := f.SetCellValue(roomSheetName, cell, v); err != nil {
				return fmt.Errorf("failed to write polygon %s: %w", p.ID, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
