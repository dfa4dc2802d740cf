package model

import "github.com/google/uuid"

// Polygon represents a measured room outline drawn over the plan.
// AreaPx and PerimeterPx are cached pixel-space metrics; any mutation of
// Points must be followed by ComputeMetrics before they are read.
type Polygon struct {
	ID          string            `json:"id"`
	Points      Ring              `json:"points"`
	AreaPx      float64           `json:"area_px"`
	PerimeterPx float64           `json:"perimeter_px"`
	Metadata    map[string]string `json:"metadata"`
}

// NewPolygon creates a polygon from a finished outline and computes its
// metrics. The points slice is copied so the caller's preview buffer can
// be reused.
func NewPolygon(points Ring) *Polygon {
	p := &Polygon{
		ID:       uuid.New().String()[:8],
		Points:   append(Ring(nil), points...),
		Metadata: map[string]string{},
	}
	p.ComputeMetrics()
	return p
}

// ComputeMetrics recomputes the cached pixel-space area and perimeter.
func (p *Polygon) ComputeMetrics() {
	p.AreaPx = ShoelaceArea(p.Points)
	p.PerimeterPx = PolygonPerimeter(p.Points)
}

// SetPoints replaces the outline and recomputes metrics.
func (p *Polygon) SetPoints(points Ring) {
	p.Points = points
	p.ComputeMetrics()
}

// ClonePoints returns an independent copy of the outline, used for
// single-slot undo backups.
func (p *Polygon) ClonePoints() Ring {
	return append(Ring(nil), p.Points...)
}

// RealArea returns the polygon area in real-world square units.
func (p *Polygon) RealArea(s Scale) float64 {
	return p.AreaPx * s.Factor * s.Factor
}

// RealPerimeter returns the polygon perimeter in real-world units.
func (p *Polygon) RealPerimeter(s Scale) float64 {
	return p.PerimeterPx * s.Factor
}
