package model

import (
	"math"
	"testing"
)

func square(w, h float64) Ring {
	return Ring{{0, 0}, {w, 0}, {w, h}, {0, h}}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestShoelaceAreaRectangle(t *testing.T) {
	pts := Ring{{0, 0}, {4, 0}, {4, 3}, {0, 3}}
	if got := ShoelaceArea(pts); !almostEqual(got, 12.0) {
		t.Errorf("ShoelaceArea = %v, want 12.0", got)
	}
}

func TestShoelaceAreaWindingInvariance(t *testing.T) {
	cw := Ring{{0, 0}, {0, 3}, {4, 3}, {4, 0}}
	ccw := Ring{{0, 0}, {4, 0}, {4, 3}, {0, 3}}
	if a, b := ShoelaceArea(cw), ShoelaceArea(ccw); !almostEqual(a, b) {
		t.Errorf("area depends on winding: %v vs %v", a, b)
	}
}

func TestShoelaceAreaCyclicRotationInvariance(t *testing.T) {
	pts := Ring{{0, 0}, {4, 0}, {4, 3}, {0, 3}}
	want := ShoelaceArea(pts)
	for shift := 1; shift < len(pts); shift++ {
		rotated := append(append(Ring{}, pts[shift:]...), pts[:shift]...)
		if got := ShoelaceArea(rotated); !almostEqual(got, want) {
			t.Errorf("rotation by %d changed area: %v, want %v", shift, got, want)
		}
	}
}

func TestShoelaceAreaDegenerate(t *testing.T) {
	if got := ShoelaceArea(Ring{{0, 0}, {1, 1}}); got != 0.0 {
		t.Errorf("area of 2 points = %v, want 0", got)
	}
	if got := ShoelaceArea(nil); got != 0.0 {
		t.Errorf("area of nil = %v, want 0", got)
	}
}

func TestPolygonPerimeter(t *testing.T) {
	pts := Ring{{0, 0}, {4, 0}, {4, 3}, {0, 3}}
	if got := PolygonPerimeter(pts); !almostEqual(got, 14.0) {
		t.Errorf("PolygonPerimeter = %v, want 14.0", got)
	}
	if got := PolygonPerimeter(Ring{{1, 2}}); got != 0.0 {
		t.Errorf("perimeter of 1 point = %v, want 0", got)
	}
}

func TestPointInPolygon(t *testing.T) {
	sq := square(4, 3)

	tests := []struct {
		name string
		pt   Point2D
		want bool
	}{
		{"interior", Point2D{2, 1.5}, true},
		{"outside", Point2D{5, 5}, false},
		{"left of polygon", Point2D{-1, 1.5}, false},
		{"right of polygon", Point2D{4.5, 1.5}, false},
		{"above polygon", Point2D{2, -1}, false},
		{"below polygon", Point2D{2, 4}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PointInPolygon(tt.pt, sq); got != tt.want {
				t.Errorf("PointInPolygon(%v) = %v, want %v", tt.pt, got, tt.want)
			}
		})
	}
}

func TestPointInPolygonConcave(t *testing.T) {
	// L-shaped room
	l := Ring{{0, 0}, {4, 0}, {4, 2}, {2, 2}, {2, 4}, {0, 4}}
	if !PointInPolygon(Point2D{1, 3}, l) {
		t.Error("point in the leg of the L should be inside")
	}
	if PointInPolygon(Point2D{3, 3}, l) {
		t.Error("point in the notch of the L should be outside")
	}
}

func TestPointInPolygonTooFewVertices(t *testing.T) {
	if PointInPolygon(Point2D{0, 0}, Ring{{0, 0}, {1, 1}}) {
		t.Error("a 2-point ring cannot contain anything")
	}
}

func TestSegmentsIntersect(t *testing.T) {
	tests := []struct {
		name           string
		a1, a2, b1, b2 Point2D
		want           bool
	}{
		{"crossing", Point2D{0, 0}, Point2D{2, 2}, Point2D{0, 2}, Point2D{2, 0}, true},
		{"parallel", Point2D{0, 0}, Point2D{2, 0}, Point2D{0, 1}, Point2D{2, 1}, false},
		{"shared endpoint", Point2D{0, 0}, Point2D{2, 0}, Point2D{2, 0}, Point2D{3, 2}, true},
		{"collinear overlap", Point2D{0, 0}, Point2D{3, 0}, Point2D{1, 0}, Point2D{4, 0}, true},
		{"collinear disjoint", Point2D{0, 0}, Point2D{1, 0}, Point2D{2, 0}, Point2D{3, 0}, false},
		{"disjoint", Point2D{0, 0}, Point2D{1, 1}, Point2D{3, 3}, Point2D{4, 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SegmentsIntersect(tt.a1, tt.a2, tt.b1, tt.b2); got != tt.want {
				t.Errorf("SegmentsIntersect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRingClosedHelpers(t *testing.T) {
	open := Ring{{0, 0}, {1, 0}, {1, 1}}
	closed := Ring{{0, 0}, {1, 0}, {1, 1}, {0, 0}}

	if open.IsClosed() {
		t.Error("open ring reported closed")
	}
	if !closed.IsClosed() {
		t.Error("closed ring reported open")
	}
	if got := len(closed.Open()); got != 3 {
		t.Errorf("Open() kept %d points, want 3", got)
	}
	if got := len(open.Open()); got != 3 {
		t.Errorf("Open() of open ring changed length to %d", got)
	}
}

func TestRectCorners(t *testing.T) {
	r := Rect{X: 1, Y: 2, W: 3, H: 4}
	c := r.Corners()
	want := Ring{{1, 2}, {4, 2}, {4, 6}, {1, 6}}
	for i := range want {
		if c[i] != want[i] {
			t.Errorf("corner %d = %v, want %v", i, c[i], want[i])
		}
	}
}

func TestRotatePointsQuarterTurn(t *testing.T) {
	// Rotating a 100x50 page by 90 degrees maps its corners onto the
	// corners of the 50x100 expanded bounds.
	pts := Ring{{0, 0}, {100, 0}, {100, 50}, {0, 50}}
	rotated := RotatePoints(pts, 100, 50, 90)

	min, max := rotated.BoundingBox()
	if !almostEqual(min.X, 0) || !almostEqual(min.Y, 0) {
		t.Errorf("rotated min corner = %v, want origin", min)
	}
	if !almostEqual(max.X, 50) || !almostEqual(max.Y, 100) {
		t.Errorf("rotated max corner = %v, want (50,100)", max)
	}
	if got := ShoelaceArea(rotated); !almostEqual(got, 5000) {
		t.Errorf("rotation changed area: %v", got)
	}
}

func TestNormalizePoints(t *testing.T) {
	pts := Ring{{0, 0}, {50, 25}, {100, 50}}
	norm := NormalizePoints(pts, 100, 50)
	want := Ring{{0, 0}, {0.5, 0.5}, {1, 1}}
	for i := range want {
		if !almostEqual(norm[i].X, want[i].X) || !almostEqual(norm[i].Y, want[i].Y) {
			t.Errorf("normalized %d = %v, want %v", i, norm[i], want[i])
		}
	}
	if NormalizePoints(pts, 0, 50) != nil {
		t.Error("degenerate page size should normalize to nil")
	}
}

func TestProjectOntoLine(t *testing.T) {
	got := ProjectOntoLine(Point2D{1, 1}, Point2D{0, 0}, Point2D{2, 0})
	if !almostEqual(got.X, 1) || !almostEqual(got.Y, 0) {
		t.Errorf("projection = %v, want (1,0)", got)
	}
	// Coincident line endpoints: point passes through unchanged
	same := ProjectOntoLine(Point2D{1, 1}, Point2D{3, 3}, Point2D{3, 3})
	if same != (Point2D{1, 1}) {
		t.Errorf("degenerate projection = %v, want input", same)
	}
}

func TestInteriorAngle(t *testing.T) {
	if got := InteriorAngle(Point2D{0, 0}, Point2D{1, 0}, Point2D{2, 0}); !almostEqual(got, 180) {
		t.Errorf("straight angle = %v, want 180", got)
	}
	if got := InteriorAngle(Point2D{1, 0}, Point2D{0, 0}, Point2D{0, 1}); !almostEqual(got, 90) {
		t.Errorf("right angle = %v, want 90", got)
	}
}
