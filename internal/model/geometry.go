package model

import "math"

// geomEpsilon is the tolerance used for collinearity and degeneracy checks.
const geomEpsilon = 1e-9

// Point2D represents a 2D coordinate in plan pixel space (the coordinate
// space of the loaded page image, before any display zoom or rotation).
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Ring is an ordered vertex sequence describing a polygon outline.
// A ring may be stored open (last point connects implicitly back to the
// first) or closed (first point physically repeated at the end); the
// helpers below normalize between the two forms.
type Ring []Point2D

// IsClosed reports whether the ring physically repeats its first point.
func (r Ring) IsClosed() bool {
	return len(r) >= 2 && r[0] == r[len(r)-1]
}

// Open returns the ring without a duplicated closing point.
func (r Ring) Open() Ring {
	if r.IsClosed() {
		return r[:len(r)-1]
	}
	return r
}

// BoundingBox returns the min and max corners of the ring.
func (r Ring) BoundingBox() (min, max Point2D) {
	if len(r) == 0 {
		return Point2D{}, Point2D{}
	}
	min = r[0]
	max = r[0]
	for _, p := range r[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}

// Translate shifts all points by dx, dy.
func (r Ring) Translate(dx, dy float64) Ring {
	result := make(Ring, len(r))
	for i, p := range r {
		result[i] = Point2D{X: p.X + dx, Y: p.Y + dy}
	}
	return result
}

// ShoelaceArea returns the absolute area enclosed by the vertex sequence,
// computed with the shoelace formula over the cyclic edge list. The
// absolute value makes the result independent of winding order.
// Fewer than 3 points enclose no area.
func ShoelaceArea(points Ring) float64 {
	n := len(points)
	if n < 3 {
		return 0.0
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += points[i].X*points[j].Y - points[j].X*points[i].Y
	}
	return math.Abs(area) / 2.0
}

// PolygonPerimeter returns the total length of the cyclic edge list.
// Fewer than 2 points have no perimeter.
func PolygonPerimeter(points Ring) float64 {
	n := len(points)
	if n < 2 {
		return 0.0
	}
	var perim float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		perim += math.Hypot(points[j].X-points[i].X, points[j].Y-points[i].Y)
	}
	return perim
}

// PointInPolygon reports whether pt lies inside the polygon using the
// ray-casting even-odd rule. The half-open edge test
// (min(p1y,p2y) < y <= max(p1y,p2y)) keeps the crossing count
// deterministic; points exactly on a horizontal edge classify
// asymmetrically, which callers must not rely on.
func PointInPolygon(pt Point2D, polygon Ring) bool {
	n := len(polygon)
	if n < 3 {
		return false
	}
	inside := false
	p1 := polygon[0]
	var xinters float64
	for i := 1; i <= n; i++ {
		p2 := polygon[i%n]
		if math.Min(p1.Y, p2.Y) < pt.Y && pt.Y <= math.Max(p1.Y, p2.Y) && pt.X <= math.Max(p1.X, p2.X) {
			if p1.Y != p2.Y {
				xinters = (pt.Y-p1.Y)*(p2.X-p1.X)/(p2.Y-p1.Y) + p1.X
			}
			if p1.X == p2.X || pt.X <= xinters {
				inside = !inside
			}
		}
		p1 = p2
	}
	return inside
}

// orientation classifies the ordered triple (p, q, r) as collinear (0),
// clockwise (1) or counter-clockwise (2). Near-zero cross products count
// as collinear to absorb floating-point noise.
func orientation(p, q, r Point2D) int {
	val := (q.Y-p.Y)*(r.X-q.X) - (q.X-p.X)*(r.Y-q.Y)
	if math.Abs(val) < geomEpsilon {
		return 0
	}
	if val > 0 {
		return 1
	}
	return 2
}

// onSegment reports whether q lies within the bounding box of segment pr.
func onSegment(p, q, r Point2D) bool {
	return math.Min(p.X, r.X)-geomEpsilon <= q.X && q.X <= math.Max(p.X, r.X)+geomEpsilon &&
		math.Min(p.Y, r.Y)-geomEpsilon <= q.Y && q.Y <= math.Max(p.Y, r.Y)+geomEpsilon
}

// SegmentsIntersect reports whether segments a1-a2 and b1-b2 intersect,
// including collinear overlap and shared endpoints.
func SegmentsIntersect(a1, a2, b1, b2 Point2D) bool {
	o1 := orientation(a1, a2, b1)
	o2 := orientation(a1, a2, b2)
	o3 := orientation(b1, b2, a1)
	o4 := orientation(b1, b2, a2)

	if o1 != o2 && o3 != o4 {
		return true
	}
	if o1 == 0 && onSegment(a1, b1, a2) {
		return true
	}
	if o2 == 0 && onSegment(a1, b2, a2) {
		return true
	}
	if o3 == 0 && onSegment(b1, a1, b2) {
		return true
	}
	if o4 == 0 && onSegment(b1, a2, b2) {
		return true
	}
	return false
}

// Rect is an axis-aligned rectangle in the same coordinate space as the
// polygons it is tested against.
type Rect struct {
	X, Y, W, H float64
}

// Corners returns the rectangle's four corners in drawing order:
// top-left, top-right, bottom-right, bottom-left.
func (r Rect) Corners() Ring {
	return Ring{
		{X: r.X, Y: r.Y},
		{X: r.X + r.W, Y: r.Y},
		{X: r.X + r.W, Y: r.Y + r.H},
		{X: r.X, Y: r.Y + r.H},
	}
}

// ContainsPoint reports whether pt lies inside the rectangle, with a small
// tolerance on the boundary.
func (r Rect) ContainsPoint(pt Point2D) bool {
	return r.X-geomEpsilon <= pt.X && pt.X <= r.X+r.W+geomEpsilon &&
		r.Y-geomEpsilon <= pt.Y && pt.Y <= r.Y+r.H+geomEpsilon
}

// RotatePoints rotates points by angleDeg about the center of a page of
// the given width and height, then translates them into the coordinate
// space of the rotated page's expanded bounds. Used to keep polygons
// aligned with the plan when the page view is rotated in 90-degree steps.
func RotatePoints(points Ring, pageW, pageH, angleDeg float64) Ring {
	rad := angleDeg * math.Pi / 180.0
	sin, cos := math.Sin(rad), math.Cos(rad)
	cx, cy := pageW/2, pageH/2

	// Expanded bounds of the rotated page
	newW := math.Abs(pageW*cos) + math.Abs(pageH*sin)
	newH := math.Abs(pageW*sin) + math.Abs(pageH*cos)
	offX := (newW - pageW) / 2
	offY := (newH - pageH) / 2

	result := make(Ring, len(points))
	for i, p := range points {
		dx, dy := p.X-cx, p.Y-cy
		rx := dx*cos - dy*sin
		ry := dx*sin + dy*cos
		result[i] = Point2D{X: rx + cx + offX, Y: ry + cy + offY}
	}
	return result
}

// NormalizePoints maps points into the unit square given the page size.
// Consumers such as the extrusion view expect coordinates in [0,1].
func NormalizePoints(points Ring, pageW, pageH float64) Ring {
	if pageW <= 0 || pageH <= 0 {
		return nil
	}
	result := make(Ring, len(points))
	for i, p := range points {
		result[i] = Point2D{X: p.X / pageW, Y: p.Y / pageH}
	}
	return result
}

// ProjectOntoLine returns the orthogonal projection of p onto the line
// through a and c. When a and c coincide the input point is returned
// unchanged.
func ProjectOntoLine(p, a, c Point2D) Point2D {
	acx, acy := c.X-a.X, c.Y-a.Y
	len2 := acx*acx + acy*acy
	if len2 <= geomEpsilon {
		return p
	}
	t := ((p.X-a.X)*acx + (p.Y-a.Y)*acy) / len2
	return Point2D{X: a.X + t*acx, Y: a.Y + t*acy}
}

// InteriorAngle returns the absolute angle in degrees at vertex b formed
// by the points a-b-c.
func InteriorAngle(a, b, c Point2D) float64 {
	v1x, v1y := a.X-b.X, a.Y-b.Y
	v2x, v2y := c.X-b.X, c.Y-b.Y
	dot := v1x*v2x + v1y*v2y
	det := v1x*v2y - v1y*v2x
	return math.Abs(math.Atan2(det, dot) * 180.0 / math.Pi)
}
