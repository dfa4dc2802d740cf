package engine

import (
	"testing"

	"github.com/piwi3910/planmeasure/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStraighten_ExactRectangleIsFixedPoint(t *testing.T) {
	rect := model.Ring{{X: 1, Y: 2}, {X: 7, Y: 2}, {X: 7, Y: 5}, {X: 1, Y: 5}}

	got := Straighten(rect)

	require.Len(t, got, 4)
	for i := range rect {
		assert.InDelta(t, rect[i].X, got[i].X, 1e-9, "vertex %d X", i)
		assert.InDelta(t, rect[i].Y, got[i].Y, 1e-9, "vertex %d Y", i)
	}
}

func TestStraighten_SquaresUpWobblyOutline(t *testing.T) {
	// A hand-drawn near-rectangle: every output vertex must land on the
	// bounding rectangle's perimeter.
	wobbly := model.Ring{
		{X: 0.1, Y: -0.2}, {X: 5.2, Y: 0.1}, {X: 9.9, Y: 0.3},
		{X: 10.2, Y: 6.1}, {X: 5.0, Y: 5.8}, {X: -0.1, Y: 6.2},
	}

	got := Straighten(wobbly)

	require.Len(t, got, len(wobbly))
	min, max := wobbly.BoundingBox()
	for i, p := range got {
		onVertical := almostEq(p.X, min.X) || almostEq(p.X, max.X)
		onHorizontal := almostEq(p.Y, min.Y) || almostEq(p.Y, max.Y)
		assert.True(t, onVertical || onHorizontal, "vertex %d (%v) is off the rectangle", i, p)
		assert.GreaterOrEqual(t, p.X, min.X-1e-9)
		assert.LessOrEqual(t, p.X, max.X+1e-9)
		assert.GreaterOrEqual(t, p.Y, min.Y-1e-9)
		assert.LessOrEqual(t, p.Y, max.Y+1e-9)
	}
}

func TestStraighten_FirstVertexMapsToTopLeft(t *testing.T) {
	rect := model.Ring{{X: 3, Y: 4}, {X: 13, Y: 4}, {X: 13, Y: 9}, {X: 3, Y: 9}}

	got := Straighten(rect)

	require.NotEmpty(t, got)
	assert.InDelta(t, 3.0, got[0].X, 1e-9)
	assert.InDelta(t, 4.0, got[0].Y, 1e-9)
}

func TestStraighten_TooFewPointsUnchanged(t *testing.T) {
	tri := model.Ring{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 2, Y: 3}}

	got := Straighten(tri)

	assert.Equal(t, tri, got)
}

func TestStraighten_DegenerateBoundingBoxUnchanged(t *testing.T) {
	flat := model.Ring{{X: 0, Y: 5}, {X: 3, Y: 5}, {X: 6, Y: 5}, {X: 9, Y: 5}}

	got := Straighten(flat)

	assert.Equal(t, flat, got)
}

func TestStraighten_ClosedRingStaysClosed(t *testing.T) {
	closed := model.Ring{
		{X: 0, Y: 0}, {X: 8, Y: 0.2}, {X: 8.1, Y: 4}, {X: -0.2, Y: 4.1}, {X: 0, Y: 0},
	}

	got := Straighten(closed)

	require.Len(t, got, len(closed))
	assert.True(t, got.IsClosed(), "closed input must yield a closed output")
}

func TestStraighten_DoesNotAliasInput(t *testing.T) {
	tri := model.Ring{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 2, Y: 3}}

	got := Straighten(tri)
	got[0] = model.Point2D{X: 99, Y: 99}

	assert.Equal(t, model.Point2D{X: 0, Y: 0}, tri[0], "result must not share storage with input")
}

func almostEq(a, b float64) bool {
	const tol = 1e-9
	d := a - b
	return d < tol && d > -tol
}
