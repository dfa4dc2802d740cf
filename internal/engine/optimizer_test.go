package engine

import (
	"testing"

	"github.com/piwi3910/planmeasure/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultTestSettings() model.MeasureSettings {
	s := model.DefaultSettings()
	s.PanelWidth = 5
	s.PanelHeight = 5
	return s
}

func TestOptimizePanels_ExactTiling(t *testing.T) {
	// A 10x10 px room tiled by 5x5 panels at identity scale: exactly
	// four full panels, nothing partial, zero waste.
	opt := New(defaultTestSettings())
	poly := model.NewPolygon(model.Ring{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}})

	layout, err := opt.OptimizePanels(poly, model.Scale{Factor: 1, Unit: "m"})

	require.NoError(t, err)
	assert.Equal(t, 4, layout.FullCount)
	assert.Equal(t, 0, layout.PartialCount)
	assert.Equal(t, 0.0, layout.WastePct)
	assert.Len(t, layout.Tiles, 4)
	assert.Equal(t, poly.ID, layout.PolygonID)
}

func TestOptimizePanels_Idempotent(t *testing.T) {
	opt := New(defaultTestSettings())
	poly := model.NewPolygon(model.Ring{{X: 0, Y: 0}, {X: 13, Y: 0}, {X: 13, Y: 7}, {X: 0, Y: 7}})
	scale := model.Scale{Factor: 1, Unit: "m"}

	first, err := opt.OptimizePanels(poly, scale)
	require.NoError(t, err)
	second, err := opt.OptimizePanels(poly, scale)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestOptimizePanels_ScaleConversion(t *testing.T) {
	// 0.5 m per pixel: a 10x10 px room is 5x5 m, so one 5x5 m panel
	// covers it exactly.
	opt := New(defaultTestSettings())
	poly := model.NewPolygon(model.Ring{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}})

	layout, err := opt.OptimizePanels(poly, model.Scale{Factor: 0.5, Unit: "m"})

	require.NoError(t, err)
	assert.Equal(t, 1, layout.FullCount)
	assert.Equal(t, 0, layout.PartialCount)
}

func TestOptimizePanels_PartialCoverage(t *testing.T) {
	// A 12x7 room with 5x5 panels cannot tile exactly; the best layout
	// still prefers full tiles first and reports nonzero waste.
	opt := New(defaultTestSettings())
	poly := model.NewPolygon(model.Ring{{X: 0, Y: 0}, {X: 12, Y: 0}, {X: 12, Y: 7}, {X: 0, Y: 7}})

	layout, err := opt.OptimizePanels(poly, model.Scale{Factor: 1, Unit: "m"})

	require.NoError(t, err)
	assert.Greater(t, layout.PartialCount, 0)
	assert.Greater(t, layout.WastePct, 0.0)
	totalTiles := layout.FullCount + layout.PartialCount
	assert.Len(t, layout.Tiles, totalTiles)
}

func TestOptimizePanels_PreconditionFailures(t *testing.T) {
	opt := New(defaultTestSettings())
	poly := model.NewPolygon(model.Ring{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}})

	t.Run("too few points", func(t *testing.T) {
		degenerate := model.NewPolygon(model.Ring{{X: 0, Y: 0}, {X: 1, Y: 1}})
		_, err := opt.OptimizePanels(degenerate, model.Scale{Factor: 1})
		assert.Error(t, err)
	})

	t.Run("nil polygon", func(t *testing.T) {
		_, err := opt.OptimizePanels(nil, model.Scale{Factor: 1})
		assert.Error(t, err)
	})

	t.Run("invalid scale", func(t *testing.T) {
		for _, factor := range []float64{0, -1} {
			_, err := opt.OptimizePanels(poly, model.Scale{Factor: factor})
			assert.Error(t, err)
			assert.NotErrorIs(t, err, ErrNoLayout)
		}
	})

	t.Run("invalid panel size", func(t *testing.T) {
		bad := New(model.MeasureSettings{PanelWidth: 0, PanelHeight: 5})
		_, err := bad.OptimizePanels(poly, model.Scale{Factor: 1})
		assert.Error(t, err)
	})
}

func TestOptimizePanels_ZeroAreaPolygonNoLayout(t *testing.T) {
	// Three collinear points form a valid vertex count but enclose
	// nothing, so no tile can be placed.
	opt := New(defaultTestSettings())
	poly := model.NewPolygon(model.Ring{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 10, Y: 0}})

	_, err := opt.OptimizePanels(poly, model.Scale{Factor: 1})

	assert.ErrorIs(t, err, ErrNoLayout)
}

func TestOptimizePanels_ClosedRingAccepted(t *testing.T) {
	opt := New(defaultTestSettings())
	closed := model.NewPolygon(model.Ring{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}, {X: 0, Y: 0}})

	layout, err := opt.OptimizePanels(closed, model.Scale{Factor: 1})

	require.NoError(t, err)
	assert.Equal(t, 4, layout.FullCount)
}

func TestLayoutLess_LexicographicOrder(t *testing.T) {
	moreFull := &PanelLayout{FullCount: 5, PartialCount: 9, WastePct: 50}
	fewerFull := &PanelLayout{FullCount: 4, PartialCount: 0, WastePct: 0}
	assert.True(t, layoutLess(moreFull, fewerFull), "full count dominates")

	fewerPartial := &PanelLayout{FullCount: 4, PartialCount: 1, WastePct: 20}
	morePartial := &PanelLayout{FullCount: 4, PartialCount: 3, WastePct: 5}
	assert.True(t, layoutLess(fewerPartial, morePartial), "partial count breaks full ties")

	lessWaste := &PanelLayout{FullCount: 4, PartialCount: 2, WastePct: 3}
	moreWaste := &PanelLayout{FullCount: 4, PartialCount: 2, WastePct: 9}
	assert.True(t, layoutLess(lessWaste, moreWaste), "waste breaks remaining ties")
}

func TestOptimizePanels_OverlapSamplesTunable(t *testing.T) {
	opt := New(defaultTestSettings())
	assert.Equal(t, 8, opt.samples())

	opt.OverlapSamples = 16
	assert.Equal(t, 16, opt.samples())
}
