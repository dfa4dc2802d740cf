// Package widgets contains custom Fyne widgets for plan rendering.
package widgets

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/planmeasure/internal/engine"
	"github.com/piwi3910/planmeasure/internal/model"
)

// Drawing colors. Tile fills match the colors used in the PDF report so
// the on-screen layout and the printed layout read the same.
var (
	pageFill        = color.NRGBA{R: 252, G: 252, B: 250, A: 255}
	pageBorder      = color.NRGBA{R: 160, G: 160, B: 160, A: 255}
	fullTileFill    = color.NRGBA{R: 76, G: 175, B: 80, A: 110}
	partialTileFill = color.NRGBA{R: 255, G: 152, B: 0, A: 110}
	tileBorder      = color.NRGBA{R: 90, G: 90, B: 90, A: 160}
	outlineColor    = color.NRGBA{R: 40, G: 40, B: 40, A: 255}
	selectedColor   = color.NRGBA{R: 25, G: 118, B: 210, A: 255}
	vertexFill      = color.NRGBA{R: 25, G: 118, B: 210, A: 255}
	previewColor    = color.NRGBA{R: 211, G: 47, B: 47, A: 255}
	scaleLineColor  = color.NRGBA{R: 211, G: 47, B: 47, A: 255}
	scaleTextColor  = color.NRGBA{R: 120, G: 30, B: 30, A: 255}
)

const (
	canvasMargin   = float32(12)
	vertexRadius   = float32(4)
	vertexHitRange = float32(8)
)

// PlanCanvas renders one page of a plan document: the page bounds, every
// measured polygon, the selected polygon with draggable vertex handles,
// the optimizer's tile overlay and the scale reference line. All inputs
// are in plan pixel coordinates; the widget fits the page into its own
// size and converts on the fly.
type PlanCanvas struct {
	widget.BaseWidget

	// Plan pixel dimensions of the displayed page.
	PageW, PageH float64

	Polygons []*model.Polygon
	Selected int
	Layout   *engine.PanelLayout
	Artifact *model.ScaleArtifact

	// In-progress outline while the user is drawing a room, and the
	// clicked reference points while calibrating the scale.
	Preview     model.Ring
	ScalePoints model.Ring
	ScaleLabel  string

	// OnTapped receives single clicks converted to plan coordinates.
	OnTapped func(pt model.Point2D)

	// Vertex drag callbacks for the selected polygon.
	OnVertexDragStart func(vertexIdx int)
	OnVertexDragged   func(vertexIdx int, pt model.Point2D)
	OnVertexDragEnd   func()

	dragVertex int

	// Fitted view transform, recomputed on layout.
	viewScale    float32
	viewOffX     float32
	viewOffY     float32
	lastSize     fyne.Size
}

// NewPlanCanvas creates an empty plan canvas with a default A4-ish page.
func NewPlanCanvas() *PlanCanvas {
	c := &PlanCanvas{
		PageW:      800,
		PageH:      600,
		Selected:   -1,
		dragVertex: -1,
	}
	c.ExtendBaseWidget(c)
	return c
}

// SetPage resizes the page bounds and refreshes.
func (c *PlanCanvas) SetPage(w, h float64) {
	if w > 0 && h > 0 {
		c.PageW, c.PageH = w, h
	}
	c.Refresh()
}

// Tapped converts the click position to plan coordinates and forwards it.
func (c *PlanCanvas) Tapped(ev *fyne.PointEvent) {
	if c.OnTapped == nil {
		return
	}
	pt, ok := c.toPlan(ev.Position)
	if !ok {
		return
	}
	c.OnTapped(pt)
}

// Dragged moves a vertex of the selected polygon. The first drag event
// within hit range of a vertex handle grabs it; later events follow the
// pointer until DragEnd.
func (c *PlanCanvas) Dragged(ev *fyne.DragEvent) {
	if c.dragVertex < 0 {
		idx, ok := c.vertexAt(ev.Position)
		if !ok {
			return
		}
		c.dragVertex = idx
		if c.OnVertexDragStart != nil {
			c.OnVertexDragStart(idx)
		}
	}
	pt, ok := c.toPlan(ev.Position)
	if !ok {
		return
	}
	if c.OnVertexDragged != nil {
		c.OnVertexDragged(c.dragVertex, pt)
	}
	c.Refresh()
}

// DragEnd releases the grabbed vertex.
func (c *PlanCanvas) DragEnd() {
	if c.dragVertex >= 0 && c.OnVertexDragEnd != nil {
		c.OnVertexDragEnd()
	}
	c.dragVertex = -1
}

// CreateRenderer builds the canvas renderer.
func (c *PlanCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := &planCanvasRenderer{pc: c}
	r.rebuild()
	return r
}

// toScreen maps plan pixel coordinates into widget coordinates using the
// current fitted transform.
func (c *PlanCanvas) toScreen(pt model.Point2D) fyne.Position {
	return fyne.NewPos(
		c.viewOffX+float32(pt.X)*c.viewScale,
		c.viewOffY+float32(pt.Y)*c.viewScale,
	)
}

// toPlan maps a widget position back to plan pixel coordinates. It
// reports false before the first layout pass.
func (c *PlanCanvas) toPlan(pos fyne.Position) (model.Point2D, bool) {
	if c.viewScale <= 0 {
		return model.Point2D{}, false
	}
	return model.Point2D{
		X: float64((pos.X - c.viewOffX) / c.viewScale),
		Y: float64((pos.Y - c.viewOffY) / c.viewScale),
	}, true
}

// vertexAt returns the index of the selected polygon's vertex under pos.
func (c *PlanCanvas) vertexAt(pos fyne.Position) (int, bool) {
	if c.Selected < 0 || c.Selected >= len(c.Polygons) {
		return 0, false
	}
	for i, pt := range c.Polygons[c.Selected].Points {
		sp := c.toScreen(pt)
		dx, dy := pos.X-sp.X, pos.Y-sp.Y
		if dx*dx+dy*dy <= vertexHitRange*vertexHitRange {
			return i, true
		}
	}
	return 0, false
}

// fitTransform recomputes the view transform for the given widget size.
func (c *PlanCanvas) fitTransform(size fyne.Size) {
	c.lastSize = size
	availW := size.Width - 2*canvasMargin
	availH := size.Height - 2*canvasMargin
	if availW <= 0 || availH <= 0 || c.PageW <= 0 || c.PageH <= 0 {
		c.viewScale = 0
		return
	}
	sx := availW / float32(c.PageW)
	sy := availH / float32(c.PageH)
	c.viewScale = sx
	if sy < sx {
		c.viewScale = sy
	}
	// Center the page in the widget.
	c.viewOffX = (size.Width - float32(c.PageW)*c.viewScale) / 2
	c.viewOffY = (size.Height - float32(c.PageH)*c.viewScale) / 2
}

type planCanvasRenderer struct {
	pc      *PlanCanvas
	objects []fyne.CanvasObject
}

func (r *planCanvasRenderer) Layout(size fyne.Size) {
	r.pc.fitTransform(size)
	r.rebuild()
}

func (r *planCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(480, 360)
}

func (r *planCanvasRenderer) Refresh() {
	r.pc.fitTransform(r.pc.lastSize)
	r.rebuild()
	canvas.Refresh(r.pc)
}

func (r *planCanvasRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *planCanvasRenderer) Destroy() {}

// rebuild recreates the full draw list from the canvas state: page,
// tiles, outlines, vertex handles, preview and scale reference.
func (r *planCanvasRenderer) rebuild() {
	c := r.pc
	objs := []fyne.CanvasObject{}

	if c.viewScale <= 0 {
		r.objects = objs
		return
	}

	// Page background.
	page := canvas.NewRectangle(pageFill)
	page.StrokeColor = pageBorder
	page.StrokeWidth = 1
	page.Move(c.toScreen(model.Point2D{}))
	page.Resize(fyne.NewSize(float32(c.PageW)*c.viewScale, float32(c.PageH)*c.viewScale))
	objs = append(objs, page)

	// Tile overlay under the outlines.
	if c.Layout != nil {
		for _, tile := range c.Layout.Tiles {
			fill := partialTileFill
			if tile.Kind == engine.TileFull {
				fill = fullTileFill
			}
			rect := canvas.NewRectangle(fill)
			rect.StrokeColor = tileBorder
			rect.StrokeWidth = 0.5
			rect.Move(c.toScreen(model.Point2D{X: tile.Rect.X, Y: tile.Rect.Y}))
			rect.Resize(fyne.NewSize(
				float32(tile.Rect.W)*c.viewScale,
				float32(tile.Rect.H)*c.viewScale,
			))
			objs = append(objs, rect)
		}
	}

	// Polygon outlines; the selected one gets a thicker stroke and
	// vertex handles.
	for i, p := range c.Polygons {
		col := outlineColor
		width := float32(1.5)
		if i == c.Selected {
			col = selectedColor
			width = 2.5
		}
		objs = append(objs, r.ringLines(p.Points, col, width, true)...)
		if i == c.Selected {
			for _, pt := range p.Points {
				objs = append(objs, r.vertexHandle(pt))
			}
		}
	}

	// In-progress outline: open polyline with handles at each click.
	if len(c.Preview) > 0 {
		objs = append(objs, r.ringLines(c.Preview, previewColor, 2, false)...)
		for _, pt := range c.Preview {
			objs = append(objs, r.vertexHandle(pt))
		}
	}

	// Scale reference line with its label, plus pending calibration clicks.
	if c.Artifact != nil && len(c.Artifact.Points) == 2 {
		objs = append(objs, r.ringLines(c.Artifact.Points, scaleLineColor, 2, false)...)
		mid := model.Point2D{
			X: (c.Artifact.Points[0].X + c.Artifact.Points[1].X) / 2,
			Y: (c.Artifact.Points[0].Y + c.Artifact.Points[1].Y) / 2,
		}
		label := c.ScaleLabel
		if label == "" {
			label = fmt.Sprintf("%g %s", c.Artifact.RealLength, c.Artifact.Unit)
		}
		text := canvas.NewText(label, scaleTextColor)
		text.TextSize = 11
		anchor := c.toScreen(mid)
		text.Move(fyne.NewPos(anchor.X+4, anchor.Y-14))
		objs = append(objs, text)
	}
	for _, pt := range c.ScalePoints {
		objs = append(objs, r.vertexHandle(pt))
	}

	r.objects = objs
}

// ringLines converts a ring into canvas line segments, optionally
// closing the last vertex back to the first.
func (r *planCanvasRenderer) ringLines(ring model.Ring, col color.Color, width float32, closed bool) []fyne.CanvasObject {
	pts := ring.Open()
	if len(pts) < 2 {
		return nil
	}
	n := len(pts)
	last := n - 1
	if closed {
		last = n
	}
	lines := make([]fyne.CanvasObject, 0, last)
	for i := 0; i < last; i++ {
		line := canvas.NewLine(col)
		line.StrokeWidth = width
		line.Position1 = r.pc.toScreen(pts[i])
		line.Position2 = r.pc.toScreen(pts[(i+1)%n])
		lines = append(lines, line)
	}
	return lines
}

func (r *planCanvasRenderer) vertexHandle(pt model.Point2D) fyne.CanvasObject {
	circle := canvas.NewCircle(vertexFill)
	sp := r.pc.toScreen(pt)
	circle.Position1 = fyne.NewPos(sp.X-vertexRadius, sp.Y-vertexRadius)
	circle.Position2 = fyne.NewPos(sp.X+vertexRadius, sp.Y+vertexRadius)
	return circle
}
