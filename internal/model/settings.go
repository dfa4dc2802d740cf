package model

// MeasureSettings holds per-session measurement configuration.
type MeasureSettings struct {
	PanelWidth       float64 `json:"panel_width"`        // Panel width in real units
	PanelHeight      float64 `json:"panel_height"`       // Panel height in real units
	ExtrusionHeight  float64 `json:"extrusion_height"`   // Height used by the 3D extrusion view
	SnapToleranceDeg float64 `json:"snap_tolerance_deg"` // Vertex-drag straight-snap tolerance
}

func DefaultSettings() MeasureSettings {
	return MeasureSettings{
		PanelWidth:       1.0,
		PanelHeight:      1.0,
		ExtrusionHeight:  1.0,
		SnapToleranceDeg: 3.0,
	}
}

// AppConfig holds application-wide preferences persisted between runs.
type AppConfig struct {
	// Defaults applied to new sessions
	DefaultPanelWidth      float64 `json:"default_panel_width"`
	DefaultPanelHeight     float64 `json:"default_panel_height"`
	DefaultExtrusionHeight float64 `json:"default_extrusion_height"`
	DefaultUnit            string  `json:"default_unit"`

	// Application preferences
	RecentSessions []string `json:"recent_sessions"`
	Theme          string   `json:"theme"` // "light", "dark", "system"
}

// DefaultAppConfig returns an AppConfig matching DefaultSettings.
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultPanelWidth:      defaults.PanelWidth,
		DefaultPanelHeight:     defaults.PanelHeight,
		DefaultExtrusionHeight: defaults.ExtrusionHeight,
		DefaultUnit:            "m",
		RecentSessions:         []string{},
		Theme:                  "system",
	}
}

// ApplyToSettings copies the saved defaults into a settings struct,
// used when a new session is created.
func (c AppConfig) ApplyToSettings(s *MeasureSettings) {
	if c.DefaultPanelWidth > 0 {
		s.PanelWidth = c.DefaultPanelWidth
	}
	if c.DefaultPanelHeight > 0 {
		s.PanelHeight = c.DefaultPanelHeight
	}
	if c.DefaultExtrusionHeight > 0 {
		s.ExtrusionHeight = c.DefaultExtrusionHeight
	}
}
