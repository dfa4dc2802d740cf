package widgets

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/planmeasure/internal/model"
)

var (
	extrusionTopColor  = color.NRGBA{R: 25, G: 118, B: 210, A: 255}
	extrusionBaseColor = color.NRGBA{R: 120, G: 120, B: 120, A: 255}
	extrusionEdgeColor = color.NRGBA{R: 120, G: 120, B: 120, A: 160}
)

// ExtrusionPreview draws a simple oblique projection of a room outline
// extruded to the configured height. The outline is normalized to the
// unit square first, so rooms of any size fill the preview the same way.
type ExtrusionPreview struct {
	widget.BaseWidget

	points model.Ring
	height float64 // extrusion height relative to the larger footprint side

	lastSize fyne.Size
}

// NewExtrusionPreview creates a preview for the given outline. pageW and
// pageH bound the normalization; heightRatio controls how tall the
// extrusion appears relative to the footprint.
func NewExtrusionPreview(points model.Ring, pageW, pageH, heightRatio float64) *ExtrusionPreview {
	if heightRatio <= 0 {
		heightRatio = 0.25
	}
	p := &ExtrusionPreview{
		points: model.NormalizePoints(points, pageW, pageH),
		height: heightRatio,
	}
	p.ExtendBaseWidget(p)
	return p
}

// CreateRenderer builds the preview renderer.
func (p *ExtrusionPreview) CreateRenderer() fyne.WidgetRenderer {
	r := &extrusionRenderer{preview: p}
	r.rebuild()
	return r
}

type extrusionRenderer struct {
	preview *ExtrusionPreview
	objects []fyne.CanvasObject
}

func (r *extrusionRenderer) Layout(size fyne.Size) {
	r.preview.lastSize = size
	r.rebuild()
}

func (r *extrusionRenderer) MinSize() fyne.Size {
	return fyne.NewSize(320, 260)
}

func (r *extrusionRenderer) Refresh() {
	r.rebuild()
	canvas.Refresh(r.preview)
}

func (r *extrusionRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *extrusionRenderer) Destroy() {}

// rebuild draws the base face, the lifted top face and the vertical
// edges connecting them.
func (r *extrusionRenderer) rebuild() {
	p := r.preview
	objs := []fyne.CanvasObject{}

	pts := p.points.Open()
	size := p.lastSize
	if len(pts) < 3 || size.Width <= 0 || size.Height <= 0 {
		r.objects = objs
		return
	}

	margin := float32(24)
	lift := float32(p.height) * (size.Height - 2*margin) * 0.5
	// Squash the footprint vertically to fake depth, leaving room for
	// the lift above it.
	spanW := size.Width - 2*margin
	spanH := (size.Height - 2*margin - lift) * 0.85

	project := func(pt model.Point2D, raised bool) fyne.Position {
		x := margin + float32(pt.X)*spanW
		y := margin + lift + float32(pt.Y)*spanH
		if raised {
			y -= lift
		}
		return fyne.NewPos(x, y)
	}

	n := len(pts)
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]

		base := canvas.NewLine(extrusionBaseColor)
		base.StrokeWidth = 1
		base.Position1 = project(a, false)
		base.Position2 = project(b, false)
		objs = append(objs, base)

		top := canvas.NewLine(extrusionTopColor)
		top.StrokeWidth = 2
		top.Position1 = project(a, true)
		top.Position2 = project(b, true)
		objs = append(objs, top)

		edge := canvas.NewLine(extrusionEdgeColor)
		edge.StrokeWidth = 1
		edge.Position1 = project(a, false)
		edge.Position2 = project(a, true)
		objs = append(objs, edge)
	}

	r.objects = objs
}
