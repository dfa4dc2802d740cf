package model

import "math"

// PanelEstimate holds the results of a panel purchasing calculation for
// one optimized room layout.
type PanelEstimate struct {
	FullPanels      int     `json:"full_panels"`       // Panels used whole
	PartialPanels   int     `json:"partial_panels"`    // Panels that must be cut
	PanelsNeeded    int     `json:"panels_needed"`     // full + partial
	PanelsWithWaste int     `json:"panels_with_waste"` // Recommended order including waste factor
	PanelArea       float64 `json:"panel_area"`        // Area of one panel (sq units)
	CoveredArea     float64 `json:"covered_area"`      // Real area covered by the layout
	WastePercent    float64 `json:"waste_percent"`     // Waste factor applied (e.g. 10 for 10%)
	EstimatedCost   float64 `json:"estimated_cost"`    // Total cost if pricing available
	PricePerPanel   float64 `json:"price_per_panel"`   // Price used for estimation
}

// CalculatePanelEstimate computes how many panels to order for a layout
// with the given counts. Partial tiles each consume a whole panel; the
// waste percentage adds ordering headroom on top.
func CalculatePanelEstimate(fullCount, partialCount int, panelW, panelH, wastePercent, pricePerPanel float64) PanelEstimate {
	panelArea := panelW * panelH
	needed := fullCount + partialCount

	wasteFactor := 1.0 + wastePercent/100.0
	withWaste := int(math.Ceil(float64(needed) * wasteFactor))
	if withWaste < needed {
		withWaste = needed
	}

	return PanelEstimate{
		FullPanels:      fullCount,
		PartialPanels:   partialCount,
		PanelsNeeded:    needed,
		PanelsWithWaste: withWaste,
		PanelArea:       panelArea,
		CoveredArea:     float64(needed) * panelArea,
		WastePercent:    wastePercent,
		EstimatedCost:   float64(withWaste) * pricePerPanel,
		PricePerPanel:   pricePerPanel,
	}
}
