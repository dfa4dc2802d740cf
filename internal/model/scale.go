package model

import (
	"fmt"
	"math"
)

// Scale maps pixel distances on the plan to real-world lengths.
// Factor is expressed in real units per pixel.
type Scale struct {
	Factor float64 `json:"factor"`
	Unit   string  `json:"unit"`
}

// DefaultScale is the identity scale used before the user calibrates.
func DefaultScale() Scale {
	return Scale{Factor: 1.0, Unit: "units"}
}

// Valid reports whether the scale can be used for real-unit conversions.
func (s Scale) Valid() bool {
	return s.Factor > 0
}

// Length converts a pixel distance to real-world units.
func (s Scale) Length(px float64) float64 {
	return px * s.Factor
}

// Area converts a pixel area to real-world square units.
func (s Scale) Area(areaPx float64) float64 {
	return areaPx * s.Factor * s.Factor
}

// ScaleArtifact records how the current scale was calibrated so the
// reference line can be redrawn and persisted with the session.
type ScaleArtifact struct {
	Points      Ring    `json:"points"` // the two reference points, pixel space
	RealLength  float64 `json:"real_length"`
	PixelLength float64 `json:"pixel_length"`
	Unit        string  `json:"unit"`
	Factor      float64 `json:"scale_factor"`
}

// ScaleFromReference builds a scale from two clicked reference points and
// the real-world distance between them. Coincident points and
// non-positive lengths are rejected.
func ScaleFromReference(p1, p2 Point2D, realLength float64, unit string) (Scale, *ScaleArtifact, error) {
	if realLength <= 0 {
		return Scale{}, nil, fmt.Errorf("reference length must be greater than zero")
	}
	pixelDist := math.Hypot(p2.X-p1.X, p2.Y-p1.Y)
	if pixelDist == 0 {
		return Scale{}, nil, fmt.Errorf("reference points must be distinct")
	}
	s := Scale{Factor: realLength / pixelDist, Unit: unit}
	artifact := &ScaleArtifact{
		Points:      Ring{p1, p2},
		RealLength:  realLength,
		PixelLength: pixelDist,
		Unit:        unit,
		Factor:      s.Factor,
	}
	return s, artifact, nil
}

// ScaleUnits lists the units offered by the calibration dialog.
var ScaleUnits = []string{"mm", "cm", "m", "in", "ft", "yd", "km", "mi"}
