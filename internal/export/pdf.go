package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/planmeasure/internal/engine"
	"github.com/piwi3910/planmeasure/internal/model"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// Tile overlay colors, matching the on-screen canvas: green for full
// panels, orange for partial ones.
var (
	fullTileColor    = [3]int{76, 175, 80}
	partialTileColor = [3]int{255, 152, 0}
)

// ExportPDF generates a measurement report. Each room is rendered on its
// own page with its outline, measurements, and (when a panel layout was
// computed for it) the tile overlay, followed by a summary page.
func ExportPDF(path string, polygons []*model.Polygon, scale model.Scale, layouts map[string]*engine.PanelLayout) error {
	if len(polygons) == 0 {
		return fmt.Errorf("no polygons to export")
	}
	if !scale.Valid() {
		return fmt.Errorf("scale factor must be greater than zero")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for i, p := range polygons {
		pdf.AddPage()
		renderRoomPage(pdf, p, scale, layouts[p.ID], i+1)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, polygons, scale, layouts)

	return pdf.OutputFileAndClose(path)
}

// renderRoomPage draws a single room on the current PDF page.
func renderRoomPage(pdf *fpdf.Fpdf, p *model.Polygon, scale model.Scale, layout *engine.PanelLayout, pageNum int) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Room %d: %s", pageNum, roomTitle(p))
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Area: %.2f %s² | Perimeter: %.2f %s",
		p.RealArea(scale), scale.Unit, p.RealPerimeter(scale), scale.Unit)
	if layout != nil {
		stats += fmt.Sprintf(" | Panels: %d full, %d partial | Waste: %.1f%%",
			layout.FullCount, layout.PartialCount, layout.WastePct)
	}
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	points := p.Points.Open()
	if len(points) < 3 {
		return
	}

	min, max := points.BoundingBox()
	outlineW := max.X - min.X
	outlineH := max.Y - min.Y
	if outlineW <= 0 || outlineH <= 0 {
		return
	}

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom

	fit := math.Min(drawWidth/outlineW, drawHeight/outlineH)
	canvasW := outlineW * fit
	canvasH := outlineH * fit
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop + (drawHeight-canvasH)/2

	toPage := func(pt model.Point2D) (float64, float64) {
		return offsetX + (pt.X-min.X)*fit, offsetY + (pt.Y-min.Y)*fit
	}

	// Tile overlay under the outline so the room boundary stays visible
	if layout != nil {
		for _, tile := range layout.Tiles {
			col := fullTileColor
			if tile.Kind == engine.TilePartial {
				col = partialTileColor
			}
			tx, ty := toPage(model.Point2D{X: tile.Rect.X, Y: tile.Rect.Y})
			pdf.SetFillColor(col[0], col[1], col[2])
			pdf.SetDrawColor(255, 255, 255)
			pdf.SetLineWidth(0.2)
			pdf.Rect(tx, ty, tile.Rect.W*fit, tile.Rect.H*fit, "FD")
		}
	}

	// Room outline
	pdf.SetDrawColor(30, 30, 30)
	pdf.SetLineWidth(0.6)
	for i := range points {
		x1, y1 := toPage(points[i])
		x2, y2 := toPage(points[(i+1)%len(points)])
		pdf.Line(x1, y1, x2, y2)
	}

	drawDimensionAnnotations(pdf, outlineW, outlineH, scale, offsetX, offsetY, canvasW, canvasH)
}

// drawDimensionAnnotations adds width and height labels outside the
// outline's bounding box.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, outlineW, outlineH float64, scale model.Scale, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.2f %s", scale.Length(outlineW), scale.Unit)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%.2f %s", scale.Length(outlineH), scale.Unit)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// renderSummaryPage draws the final page: totals plus a per-room table.
func renderSummaryPage(pdf *fpdf.Fpdf, polygons []*model.Polygon, scale model.Scale, layouts map[string]*engine.PanelLayout) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Measurement Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	var totalArea, totalPerimeter float64
	for _, p := range polygons {
		totalArea += p.RealArea(scale)
		totalPerimeter += p.RealPerimeter(scale)
	}

	summaryItems := []struct {
		label string
		value string
	}{
		{"Rooms Measured", fmt.Sprintf("%d", len(polygons))},
		{"Total Area", fmt.Sprintf("%.2f %s²", totalArea, scale.Unit)},
		{"Total Perimeter", fmt.Sprintf("%.2f %s", totalPerimeter, scale.Unit)},
		{"Scale", fmt.Sprintf("%.6f %s/px", scale.Factor, scale.Unit)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(60, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Room Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{20, 60, 45, 45, 30, 30, 30}
	headers := []string{"#", "Room", "Area", "Perimeter", "Full", "Partial", "Waste"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, p := range polygons {
		full, partial, waste := "-", "-", "-"
		if layout := layouts[p.ID]; layout != nil {
			full = fmt.Sprintf("%d", layout.FullCount)
			partial = fmt.Sprintf("%d", layout.PartialCount)
			waste = fmt.Sprintf("%.1f%%", layout.WastePct)
		}
		rowData := []string{
			fmt.Sprintf("%d", i+1),
			roomTitle(p),
			fmt.Sprintf("%.2f %s²", p.RealArea(scale), scale.Unit),
			fmt.Sprintf("%.2f %s", p.RealPerimeter(scale), scale.Unit),
			full,
			partial,
			waste,
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		xPos = marginLeft
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by PlanMeasure - Room Measurement Tool", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// roomTitle picks a display name for a polygon from its metadata,
// falling back to the polygon ID.
func roomTitle(p *model.Polygon) string {
	if name := p.Metadata["name"]; name != "" {
		return name
	}
	if room := p.Metadata["room"]; room != "" {
		return room
	}
	return p.ID
}
