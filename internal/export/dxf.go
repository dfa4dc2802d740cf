package export

import (
	"fmt"

	"github.com/piwi3910/planmeasure/internal/model"
	"github.com/yofu/dxf"
)

// ExportDXF writes each room outline as a closed chain of LINE entities
// in real-world coordinates, one layer per room, for use in CAD tools.
func ExportDXF(path string, polygons []*model.Polygon, scale model.Scale) error {
	if len(polygons) == 0 {
		return fmt.Errorf("no polygons to export")
	}
	if !scale.Valid() {
		return fmt.Errorf("scale factor must be greater than zero")
	}

	d := dxf.NewDrawing()

	for _, p := range polygons {
		points := p.Points.Open()
		if len(points) < 3 {
			continue
		}

		layer := fmt.Sprintf("ROOM_%s", p.ID)
		if _, err := d.AddLayer(layer, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("failed to add layer for polygon %s: %w", p.ID, err)
		}

		for i := range points {
			a := points[i]
			b := points[(i+1)%len(points)]
			// Plan Y grows downward; DXF Y grows upward
			if _, err := d.Line(
				scale.Length(a.X), -scale.Length(a.Y), 0,
				scale.Length(b.X), -scale.Length(b.Y), 0,
			); err != nil {
				return fmt.Errorf("failed to draw edge for polygon %s: %w", p.ID, err)
			}
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save DXF file: %w", err)
	}
	return nil
}
