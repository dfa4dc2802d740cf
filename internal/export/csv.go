// Package export writes measurement results to various file formats:
// CSV and Excel schedules, PDF reports, QR-coded room labels, and DXF
// outlines.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/piwi3910/planmeasure/internal/model"
)

// csvHeader is the fixed column layout of a measurement CSV.
var csvHeader = []string{"polygon_id", "area", "perimeter", "metadata"}

// ExportCSV writes one row per polygon with its real-world area and
// perimeter. Metadata is serialized as a JSON object in the last column
// so round-tripping through spreadsheets stays lossless.
func ExportCSV(path string, polygons []*model.Polygon, scale model.Scale) error {
	if len(polygons) == 0 {
		return fmt.Errorf("no polygons to export")
	}
	if !scale.Valid() {
		return fmt.Errorf("scale factor must be greater than zero")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, p := range polygons {
		meta, err := json.Marshal(p.Metadata)
		if err != nil {
			return fmt.Errorf("failed to serialize metadata for polygon %s: %w", p.ID, err)
		}
		row := []string{
			p.ID,
			strconv.FormatFloat(p.RealArea(scale), 'f', -1, 64),
			strconv.FormatFloat(p.RealPerimeter(scale), 'f', -1, 64),
			string(meta),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row for polygon %s: %w", p.ID, err)
		}
	}

	w.Flush()
	return w.Error()
}
