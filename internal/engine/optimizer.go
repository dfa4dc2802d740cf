package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/piwi3910/planmeasure/internal/model"
)

// ErrNoLayout is returned when no candidate grid origin places any tile
// inside the polygon. It is a legitimate outcome of a valid computation,
// distinct from a precondition failure.
var ErrNoLayout = errors.New("no tiles could be placed")

// PanelLayout is the result of one optimizer run: the classified tiles of
// the winning grid origin plus aggregate statistics. It is replaced
// wholesale on every re-optimization.
type PanelLayout struct {
	PolygonID    string  `json:"polygon_id"`
	Tiles        []Tile  `json:"tiles"`
	FullCount    int     `json:"full_count"`
	PartialCount int     `json:"partial_count"`
	WastePct     float64 `json:"waste_pct"`
	OffsetX      float64 `json:"offset_x"`
	OffsetY      float64 `json:"offset_y"`
}

// Optimizer runs the panel-tiling search over a room polygon.
type Optimizer struct {
	Settings model.MeasureSettings

	// OverlapSamples is the per-axis sampling resolution used to
	// estimate partial-tile coverage. Zero means the default of 8.
	OverlapSamples int
}

func New(settings model.MeasureSettings) *Optimizer {
	return &Optimizer{Settings: settings}
}

func (o *Optimizer) samples() int {
	if o.OverlapSamples > 0 {
		return o.OverlapSamples
	}
	return 8
}

// OptimizePanels searches for the panel grid that best covers the
// polygon. Panel dimensions come from the optimizer settings in real
// units and are converted to pixel space through the scale. Four grid
// origins are tried: the unshifted grid and the three half-panel-shifted
// variants; the winner maximizes full tiles, then minimizes partial
// tiles, then minimizes the waste percentage.
func (o *Optimizer) OptimizePanels(poly *model.Polygon, scale model.Scale) (*PanelLayout, error) {
	if poly == nil || len(poly.Points.Open()) < 3 {
		return nil, fmt.Errorf("polygon must have at least 3 points")
	}
	if !scale.Valid() {
		return nil, fmt.Errorf("scale factor must be greater than zero")
	}
	panelW := o.Settings.PanelWidth
	panelH := o.Settings.PanelHeight
	if panelW <= 0 || panelH <= 0 {
		return nil, fmt.Errorf("panel dimensions must be greater than zero")
	}

	panelWPx := panelW / scale.Factor
	panelHPx := panelH / scale.Factor
	if panelWPx <= epsilon || panelHPx <= epsilon {
		return nil, fmt.Errorf("panel dimensions are too small for the current scale")
	}

	points := poly.Points.Open()
	offsets := [][2]float64{
		{0, 0},
		{panelWPx / 2, 0},
		{0, panelHPx / 2},
		{panelWPx / 2, panelHPx / 2},
	}

	var best *PanelLayout
	for _, off := range offsets {
		layout := o.generateLayout(points, panelWPx, panelHPx, off[0], off[1])
		if layout.FullCount == 0 && layout.PartialCount == 0 {
			continue
		}

		// Waste: real-world area of the uncovered portion of all
		// partial tiles, as a percentage of the room's real area.
		panelAreaReal := panelW * panelH
		var partialWaste float64
		for _, t := range layout.Tiles {
			if t.Kind == TilePartial {
				partialWaste += (1.0 - t.Overlap) * panelAreaReal
			}
		}
		roomAreaReal := scale.Area(poly.AreaPx)
		if roomAreaReal > epsilon {
			layout.WastePct = partialWaste / roomAreaReal * 100.0
		}

		if best == nil || layoutLess(layout, best) {
			best = layout
		}
	}

	if best == nil {
		return nil, ErrNoLayout
	}
	best.PolygonID = poly.ID
	return best, nil
}

// layoutLess compares layouts by the lexicographic metric
// (-full_count, partial_count, waste_pct).
func layoutLess(a, b *PanelLayout) bool {
	if a.FullCount != b.FullCount {
		return a.FullCount > b.FullCount
	}
	if a.PartialCount != b.PartialCount {
		return a.PartialCount < b.PartialCount
	}
	return a.WastePct < b.WastePct
}

// generateLayout classifies every grid cell spanning the polygon's
// bounding box for one grid origin, keeping full and partial tiles.
func (o *Optimizer) generateLayout(points model.Ring, panelWPx, panelHPx, offsetX, offsetY float64) *PanelLayout {
	min, max := points.BoundingBox()

	colStart := int(math.Floor((min.X - offsetX) / panelWPx))
	colEnd := int(math.Ceil((max.X - offsetX) / panelWPx))
	rowStart := int(math.Floor((min.Y - offsetY) / panelHPx))
	rowEnd := int(math.Ceil((max.Y - offsetY) / panelHPx))

	layout := &PanelLayout{OffsetX: offsetX, OffsetY: offsetY}
	samples := o.samples()

	for col := colStart; col < colEnd; col++ {
		rx := float64(col)*panelWPx + offsetX
		for row := rowStart; row < rowEnd; row++ {
			ry := float64(row)*panelHPx + offsetY
			rect := model.Rect{X: rx, Y: ry, W: panelWPx, H: panelHPx}
			kind, overlap := classifyTile(rect, points, samples)
			switch kind {
			case TileFull:
				layout.FullCount++
				layout.Tiles = append(layout.Tiles, Tile{Rect: rect, Kind: TileFull, Overlap: 1.0})
			case TilePartial:
				layout.PartialCount++
				layout.Tiles = append(layout.Tiles, Tile{Rect: rect, Kind: TilePartial, Overlap: overlap})
			}
		}
	}
	return layout
}
