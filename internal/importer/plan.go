// Package importer loads plan documents and external data into a
// session: PDF page geometry, DXF room outlines, and room schedules
// from CSV or Excel files.
package importer

import (
	"fmt"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"
)

// PageInfo describes the geometry of one page of a plan document.
// Dimensions are in PDF points (1/72 inch) before rotation.
type PageInfo struct {
	WidthPt  float64
	HeightPt float64
	Rotate   int // clockwise degrees, multiple of 90
}

// PlanInfo summarizes a loaded plan PDF.
type PlanInfo struct {
	Path      string
	PageCount int
	Pages     []PageInfo
}

// PixelSize returns the page's rendered size in pixels at the given DPI,
// with width and height swapped for 90/270 degree page rotations.
func (p PageInfo) PixelSize(dpi float64) (w, h float64) {
	w = p.WidthPt / 72.0 * dpi
	h = p.HeightPt / 72.0 * dpi
	rot := ((p.Rotate % 360) + 360) % 360
	if rot == 90 || rot == 270 {
		w, h = h, w
	}
	return w, h
}

// ReadPlanInfo opens a plan PDF and reads the page count and per-page
// geometry without rasterizing anything.
func ReadPlanInfo(path string) (*PlanInfo, error) {
	r, err := pdf.Open(path, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot open plan PDF: %w", err)
	}
	defer r.Close()

	numPages, err := pagetree.NumPages(r)
	if err != nil {
		return nil, fmt.Errorf("cannot read page tree: %w", err)
	}
	if numPages == 0 {
		return nil, fmt.Errorf("plan PDF has no pages")
	}

	info := &PlanInfo{
		Path:      path,
		PageCount: numPages,
		Pages:     make([]PageInfo, 0, numPages),
	}

	for i := 0; i < numPages; i++ {
		_, dict, err := pagetree.GetPage(r, i)
		if err != nil {
			return nil, fmt.Errorf("cannot read page %d: %w", i+1, err)
		}

		page := PageInfo{}
		if box, err := pdf.GetRectangle(r, dict["MediaBox"]); err == nil && box != nil {
			page.WidthPt = box.URx - box.LLx
			page.HeightPt = box.URy - box.LLy
		}
		if rot, err := pdf.GetInteger(r, dict["Rotate"]); err == nil {
			page.Rotate = int(rot)
		}
		if page.WidthPt <= 0 || page.HeightPt <= 0 {
			return nil, fmt.Errorf("page %d has no usable MediaBox", i+1)
		}

		info.Pages = append(info.Pages, page)
	}

	return info, nil
}
