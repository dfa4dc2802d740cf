package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/piwi3910/planmeasure/internal/engine"
	"github.com/piwi3910/planmeasure/internal/model"
)

// sessionVersion is written into saved session files.
const sessionVersion = "1.0.0"

var (
	// ErrNoSelection is returned by operations that need a selected polygon.
	ErrNoSelection = errors.New("no polygon selected")
	// ErrNoBackup is returned by undo operations with nothing to restore.
	ErrNoBackup = errors.New("nothing to undo")
	// ErrNoStoredLayout is returned when an operation needs a previously
	// computed panel layout.
	ErrNoStoredLayout = errors.New("no panel layout computed")
)

// Session is the mutable state of one measurement document: the loaded
// plan, the measured polygons, the calibrated scale, and the current
// panel layout. The UI owns a single Session and every engine operation
// goes through it; the engine itself stays stateless.
//
// Straighten and vertex-move undo are single backup slots: a new
// operation of the same kind overwrites the previous backup.
type Session struct {
	Version       string                `json:"version"`
	Name          string                `json:"name,omitempty"`
	PlanPath      string                `json:"plan_path,omitempty"`
	PageIndex     int                   `json:"page_index"`
	Polygons      []*model.Polygon      `json:"polygons"`
	Scale         model.Scale           `json:"scale"`
	ScaleArtifact *model.ScaleArtifact  `json:"scale_artifact,omitempty"`
	Settings      model.MeasureSettings `json:"settings"`

	// Runtime state, not persisted.
	Selected int                 `json:"-"`
	Layout   *engine.PanelLayout `json:"-"`

	straightenBackup model.Ring
	straightenIndex  int
	vertexBackup     model.Ring
	vertexIndex      int
}

// NewSession creates an empty session seeded from the saved application
// defaults.
func NewSession(config model.AppConfig) *Session {
	settings := model.DefaultSettings()
	config.ApplyToSettings(&settings)

	scale := model.DefaultScale()
	if config.DefaultUnit != "" {
		scale.Unit = config.DefaultUnit
	}

	return &Session{
		Version:  sessionVersion,
		Polygons: []*model.Polygon{},
		Scale:    scale,
		Settings: settings,
		Selected: -1,
	}
}

// Reset discards all measurement state and binds the session to a new
// plan document. This is the only way polygons are destroyed in bulk.
func (s *Session) Reset(planPath string) {
	s.PlanPath = planPath
	s.PageIndex = 0
	s.Polygons = []*model.Polygon{}
	s.Scale = model.Scale{Factor: 1.0, Unit: s.Scale.Unit}
	s.ScaleArtifact = nil
	s.Selected = -1
	s.Layout = nil
	s.straightenBackup = nil
	s.vertexBackup = nil
}

// AddPolygon appends a finished outline as a new polygon and selects it.
func (s *Session) AddPolygon(points model.Ring) (*model.Polygon, error) {
	if len(points.Open()) < 3 {
		return nil, fmt.Errorf("polygon must have at least 3 points")
	}
	p := model.NewPolygon(points)
	s.Polygons = append(s.Polygons, p)
	s.Selected = len(s.Polygons) - 1
	return p, nil
}

// AdoptPolygon appends an already-built polygon, used by the DXF import.
func (s *Session) AdoptPolygon(p *model.Polygon) {
	s.Polygons = append(s.Polygons, p)
	s.Selected = len(s.Polygons) - 1
}

// RemovePolygon deletes the polygon at index i. A stored layout for it
// is dropped, undo backups are cleared, and the selection is adjusted.
func (s *Session) RemovePolygon(i int) error {
	if i < 0 || i >= len(s.Polygons) {
		return fmt.Errorf("polygon index %d out of range", i)
	}
	removed := s.Polygons[i]
	s.Polygons = append(s.Polygons[:i], s.Polygons[i+1:]...)
	if s.Layout != nil && s.Layout.PolygonID == removed.ID {
		s.Layout = nil
	}
	switch {
	case s.Selected == i:
		s.Selected = -1
	case s.Selected > i:
		s.Selected--
	}
	s.straightenBackup = nil
	s.vertexBackup = nil
	return nil
}

// Select makes the polygon at index i the current one. An index of -1
// clears the selection.
func (s *Session) Select(i int) error {
	if i < -1 || i >= len(s.Polygons) {
		return fmt.Errorf("polygon index %d out of range", i)
	}
	s.Selected = i
	return nil
}

// SelectedPolygon returns the currently selected polygon.
func (s *Session) SelectedPolygon() (*model.Polygon, error) {
	if s.Selected < 0 || s.Selected >= len(s.Polygons) {
		return nil, ErrNoSelection
	}
	return s.Polygons[s.Selected], nil
}

// SetScaleFromReference calibrates the scale from two clicked points and
// the real-world distance between them.
func (s *Session) SetScaleFromReference(p1, p2 model.Point2D, realLength float64, unit string) error {
	scale, artifact, err := model.ScaleFromReference(p1, p2, realLength, unit)
	if err != nil {
		return err
	}
	s.Scale = scale
	s.ScaleArtifact = artifact
	return nil
}

// StraightenSelected replaces the selected polygon's outline with its
// rectangular projection, retaining the previous outline in the
// single-slot backup.
func (s *Session) StraightenSelected() error {
	p, err := s.SelectedPolygon()
	if err != nil {
		return err
	}
	straightened := engine.Straighten(p.Points)

	s.straightenBackup = p.ClonePoints()
	s.straightenIndex = s.Selected
	p.SetPoints(straightened)
	return nil
}

// UndoStraighten restores the outline saved by the last
// StraightenSelected call and clears the backup slot.
func (s *Session) UndoStraighten() error {
	if s.straightenBackup == nil {
		return ErrNoBackup
	}
	if s.straightenIndex >= len(s.Polygons) {
		s.straightenBackup = nil
		return ErrNoBackup
	}
	s.Polygons[s.straightenIndex].SetPoints(s.straightenBackup)
	s.straightenBackup = nil
	return nil
}

// BeginVertexMove saves the selected polygon's outline before a drag
// gesture starts, overwriting any previous vertex-move backup.
func (s *Session) BeginVertexMove() error {
	p, err := s.SelectedPolygon()
	if err != nil {
		return err
	}
	s.vertexBackup = p.ClonePoints()
	s.vertexIndex = s.Selected
	return nil
}

// MoveVertex repositions one vertex of the selected polygon. With snap
// enabled, a vertex dragged to within the configured angle tolerance of
// its neighbors' line is projected onto that line.
func (s *Session) MoveVertex(vertexIdx int, pt model.Point2D, snap bool) error {
	p, err := s.SelectedPolygon()
	if err != nil {
		return err
	}
	n := len(p.Points)
	if vertexIdx < 0 || vertexIdx >= n {
		return fmt.Errorf("vertex index %d out of range", vertexIdx)
	}

	if snap && n >= 3 {
		prev := p.Points[(vertexIdx-1+n)%n]
		next := p.Points[(vertexIdx+1)%n]
		angle := model.InteriorAngle(prev, pt, next)
		if math.Abs(180.0-angle) <= s.Settings.SnapToleranceDeg {
			pt = model.ProjectOntoLine(pt, prev, next)
		}
	}

	p.Points[vertexIdx] = pt
	p.ComputeMetrics()
	return nil
}

// UndoVertexMove restores the outline saved by the last BeginVertexMove
// call and clears the backup slot.
func (s *Session) UndoVertexMove() error {
	if s.vertexBackup == nil {
		return ErrNoBackup
	}
	if s.vertexIndex >= len(s.Polygons) {
		s.vertexBackup = nil
		return ErrNoBackup
	}
	s.Polygons[s.vertexIndex].SetPoints(s.vertexBackup)
	s.vertexBackup = nil
	return nil
}

// OptimizeSelected runs the panel optimizer on the selected polygon and
// stores the winning layout. On any error, including ErrNoLayout, the
// previously stored layout is left untouched.
func (s *Session) OptimizeSelected() error {
	p, err := s.SelectedPolygon()
	if err != nil {
		return err
	}
	opt := engine.New(s.Settings)
	layout, err := opt.OptimizePanels(p, s.Scale)
	if err != nil {
		return err
	}
	s.Layout = layout
	return nil
}

// EstimateSelected computes a purchasing estimate from the stored layout.
func (s *Session) EstimateSelected(wastePercent, pricePerPanel float64) (model.PanelEstimate, error) {
	p, err := s.SelectedPolygon()
	if err != nil {
		return model.PanelEstimate{}, err
	}
	if s.Layout == nil || s.Layout.PolygonID != p.ID {
		return model.PanelEstimate{}, ErrNoStoredLayout
	}
	return model.CalculatePanelEstimate(
		s.Layout.FullCount, s.Layout.PartialCount,
		s.Settings.PanelWidth, s.Settings.PanelHeight,
		wastePercent, pricePerPanel,
	), nil
}

// RotatePage transforms every polygon and the scale reference line into
// the coordinate space of the page rotated by angleDeg about its center.
// The stored layout is dropped since its tiles are no longer aligned.
func (s *Session) RotatePage(pageW, pageH, angleDeg float64) {
	for _, p := range s.Polygons {
		p.SetPoints(model.RotatePoints(p.Points, pageW, pageH, angleDeg))
	}
	if s.ScaleArtifact != nil {
		s.ScaleArtifact.Points = model.RotatePoints(s.ScaleArtifact.Points, pageW, pageH, angleDeg)
	}
	s.Layout = nil
	s.straightenBackup = nil
	s.vertexBackup = nil
}

// Save writes the session as indented JSON, creating parent directories
// as needed.
func (s *Session) Save(path string) error {
	s.Version = sessionVersion
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// LoadSession reads a session file saved by Save. Runtime state
// (selection, layout, undo backups) starts fresh.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	if s.Version == "" {
		return nil, fmt.Errorf("invalid session file: missing version field")
	}
	if s.Polygons == nil {
		s.Polygons = []*model.Polygon{}
	}
	for _, p := range s.Polygons {
		if p.Metadata == nil {
			p.Metadata = map[string]string{}
		}
		p.ComputeMetrics()
	}
	if !s.Scale.Valid() {
		s.Scale = model.DefaultScale()
	}
	s.Selected = -1
	return &s, nil
}
