// Package engine implements the geometry engine: the panel-tiling
// optimizer and the outline straightener. All functions take plain data
// in and return plain data out; the UI layer owns every piece of mutable
// state.
package engine

import (
	"github.com/piwi3910/planmeasure/internal/model"
)

const epsilon = 1e-9

// TileKind classifies a candidate tile against a room polygon.
type TileKind int

const (
	TileExcluded TileKind = iota // No overlap with the polygon
	TilePartial                  // Partial overlap, fraction in (0,1)
	TileFull                     // All four corners inside the polygon
)

func (k TileKind) String() string {
	switch k {
	case TileFull:
		return "full"
	case TilePartial:
		return "partial"
	default:
		return "excluded"
	}
}

// Tile is one classified panel candidate. Overlap is the estimated
// fraction of the tile's area inside the polygon: 1.0 for full tiles,
// (0,1) for partial ones.
type Tile struct {
	Rect    model.Rect `json:"rect"`
	Kind    TileKind   `json:"kind"`
	Overlap float64    `json:"overlap"`
}

// rectPolygonOverlap reports whether the rectangle and polygon overlap at
// all: any polygon vertex inside the rectangle, any rectangle corner
// inside the polygon, or any pair of crossing edges.
func rectPolygonOverlap(rect model.Rect, polygon model.Ring) bool {
	for _, pt := range polygon {
		if rect.ContainsPoint(pt) {
			return true
		}
	}
	corners := rect.Corners()
	for _, c := range corners {
		if model.PointInPolygon(c, polygon) {
			return true
		}
	}
	n := len(polygon)
	for i := 0; i < 4; i++ {
		a1 := corners[i]
		a2 := corners[(i+1)%4]
		for j := 0; j < n; j++ {
			b1 := polygon[j]
			b2 := polygon[(j+1)%n]
			if model.SegmentsIntersect(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

// estimateOverlapFraction samples a samples x samples grid of points, one
// at the center of each equal sub-cell of the rectangle, and returns the
// fraction that falls inside the polygon. A deterministic area estimator
// with error on the order of one sub-cell of tile area; not exact
// clipping.
func estimateOverlapFraction(rect model.Rect, polygon model.Ring, samples int) float64 {
	if samples < 1 {
		samples = 1
	}
	w := rect.W
	if w < epsilon {
		w = epsilon
	}
	h := rect.H
	if h < epsilon {
		h = epsilon
	}
	inside := 0
	total := samples * samples
	for i := 0; i < samples; i++ {
		px := rect.X + (float64(i)+0.5)*w/float64(samples)
		for j := 0; j < samples; j++ {
			py := rect.Y + (float64(j)+0.5)*h/float64(samples)
			if model.PointInPolygon(model.Point2D{X: px, Y: py}, polygon) {
				inside++
			}
		}
	}
	return float64(inside) / float64(total)
}

// insetRect shrinks the rectangle by epsilon on every side. The full-tile
// corner test uses the inset corners so that a tile flush against the
// polygon boundary still counts as full; the half-open ray-cast rule
// would otherwise classify corners on the top and left boundary edges as
// outside.
func insetRect(rect model.Rect) model.Rect {
	if rect.W <= 2*epsilon || rect.H <= 2*epsilon {
		return rect
	}
	return model.Rect{
		X: rect.X + epsilon,
		Y: rect.Y + epsilon,
		W: rect.W - 2*epsilon,
		H: rect.H - 2*epsilon,
	}
}

// classifyTile classifies a candidate tile against the polygon and
// returns its kind together with the overlap fraction. A tile that
// passes the overlap test but whose sampled fraction is below epsilon is
// demoted to excluded.
func classifyTile(rect model.Rect, polygon model.Ring, samples int) (TileKind, float64) {
	allInside := true
	for _, c := range insetRect(rect).Corners() {
		if !model.PointInPolygon(c, polygon) {
			allInside = false
			break
		}
	}
	if allInside {
		return TileFull, 1.0
	}
	if !rectPolygonOverlap(rect, polygon) {
		return TileExcluded, 0.0
	}
	frac := estimateOverlapFraction(rect, polygon, samples)
	if frac <= epsilon {
		return TileExcluded, 0.0
	}
	return TilePartial, frac
}
