// Package ui provides the PlanMeasure application UI components.
//
// This file defines a custom compact Fyne theme for a professional, dense layout.

package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// PlanMeasureTheme wraps the default Fyne theme with compact sizing
// overrides for an information-dense measurement layout.
type PlanMeasureTheme struct {
	base    fyne.Theme
	variant fyne.ThemeVariant
}

// NewPlanMeasureTheme creates a new PlanMeasureTheme with the system default variant.
func NewPlanMeasureTheme() *PlanMeasureTheme {
	return &PlanMeasureTheme{
		base:    theme.DefaultTheme(),
		variant: 0, // system default
	}
}

// NewPlanMeasureThemeWithVariant creates a PlanMeasureTheme with a specific light/dark variant.
func NewPlanMeasureThemeWithVariant(variant fyne.ThemeVariant) *PlanMeasureTheme {
	return &PlanMeasureTheme{
		base:    theme.DefaultTheme(),
		variant: variant,
	}
}

// SetVariant updates the theme variant (light/dark/system).
func (t *PlanMeasureTheme) SetVariant(variant fyne.ThemeVariant) {
	t.variant = variant
}

// Color delegates to the base theme with the stored variant.
func (t *PlanMeasureTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	return t.base.Color(name, t.variant)
}

// Font delegates to the base theme.
func (t *PlanMeasureTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

// Icon delegates to the base theme.
func (t *PlanMeasureTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

// Size returns compact sizing overrides for a dense layout.
func (t *PlanMeasureTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return 12
	case theme.SizeNameCaptionText:
		return 9
	case theme.SizeNameHeadingText:
		return 20
	case theme.SizeNameSubHeadingText:
		return 15
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameInlineIcon:
		return 16
	default:
		return t.base.Size(name)
	}
}
