package engine

import (
	"math"

	"github.com/piwi3910/planmeasure/internal/model"
)

// Straighten projects a roughly-rectangular outline onto its minimal
// axis-aligned bounding rectangle, preserving each vertex's fractional
// position along the original perimeter. The rectangle is walked
// clockwise from its top-left corner: top edge, right edge, bottom edge,
// left edge. This is an arc-length-preserving reparametrization, not a
// least-squares fit.
//
// Inputs that cannot be projected — fewer than 4 distinct points, a
// degenerate bounding box, or a zero-length perimeter — are returned
// unchanged. A closed input (first point repeated at the end) yields a
// closed output.
func Straighten(points model.Ring) model.Ring {
	if len(points) < 4 {
		return append(model.Ring(nil), points...)
	}

	closed := points.IsClosed()
	pts := points.Open()
	if len(pts) < 4 {
		return append(model.Ring(nil), points...)
	}

	min, max := pts.BoundingBox()
	width := max.X - min.X
	height := max.Y - min.Y
	if width < epsilon || height < epsilon {
		return append(model.Ring(nil), points...)
	}

	rectPerim := 2.0 * (width + height)

	// Cumulative arc length at each vertex along the original outline.
	cumulative := make([]float64, len(pts)+1)
	var total float64
	for i := range pts {
		next := pts[(i+1)%len(pts)]
		total += math.Hypot(next.X-pts[i].X, next.Y-pts[i].Y)
		cumulative[i+1] = total
	}
	if total < epsilon {
		return append(model.Ring(nil), points...)
	}

	mapped := make(model.Ring, 0, len(pts)+1)
	for i := range pts {
		frac := cumulative[i] / total
		dist := math.Mod(frac*rectPerim, rectPerim)
		switch {
		case dist <= width:
			mapped = append(mapped, model.Point2D{X: min.X + dist, Y: min.Y})
		case dist <= width+height:
			mapped = append(mapped, model.Point2D{X: max.X, Y: min.Y + (dist - width)})
		case dist <= 2*width+height:
			mapped = append(mapped, model.Point2D{X: max.X - (dist - (width + height)), Y: max.Y})
		default:
			mapped = append(mapped, model.Point2D{X: min.X, Y: max.Y - (dist - (2*width + height))})
		}
	}

	if closed {
		mapped = append(mapped, mapped[0])
	}
	return mapped
}
