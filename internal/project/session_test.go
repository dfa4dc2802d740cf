package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/planmeasure/internal/engine"
	"github.com/piwi3910/planmeasure/internal/model"
)

func newTestSession() *Session {
	s := NewSession(model.DefaultAppConfig())
	s.Settings.PanelWidth = 5
	s.Settings.PanelHeight = 5
	s.Scale = model.Scale{Factor: 1, Unit: "m"}
	return s
}

func addSquare(t *testing.T, s *Session) *model.Polygon {
	t.Helper()
	p, err := s.AddPolygon(model.Ring{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}})
	if err != nil {
		t.Fatalf("AddPolygon failed: %v", err)
	}
	return p
}

func TestAddPolygonSelects(t *testing.T) {
	s := newTestSession()
	p := addSquare(t, s)

	sel, err := s.SelectedPolygon()
	if err != nil {
		t.Fatalf("SelectedPolygon failed: %v", err)
	}
	if sel != p {
		t.Error("new polygon should become the selection")
	}
}

func TestAddPolygonRejectsDegenerate(t *testing.T) {
	s := newTestSession()
	if _, err := s.AddPolygon(model.Ring{{X: 0, Y: 0}, {X: 1, Y: 1}}); err == nil {
		t.Fatal("expected error for 2-point outline")
	}
}

func TestRemovePolygon(t *testing.T) {
	s := newTestSession()
	first := addSquare(t, s)
	addSquare(t, s)

	if err := s.OptimizeSelected(); err != nil {
		t.Fatalf("OptimizeSelected failed: %v", err)
	}
	if err := s.RemovePolygon(1); err != nil {
		t.Fatalf("RemovePolygon failed: %v", err)
	}

	if len(s.Polygons) != 1 || s.Polygons[0] != first {
		t.Error("first polygon should survive removal of the second")
	}
	if s.Selected != -1 {
		t.Errorf("Selected = %d, want -1 after removing the selected polygon", s.Selected)
	}
	if s.Layout != nil {
		t.Error("layout for the removed polygon should be dropped")
	}

	if err := s.RemovePolygon(5); err == nil {
		t.Fatal("expected error for out-of-range index")
	}
}

func TestRemovePolygonAdjustsSelection(t *testing.T) {
	s := newTestSession()
	addSquare(t, s)
	second := addSquare(t, s)

	if err := s.RemovePolygon(0); err != nil {
		t.Fatalf("RemovePolygon failed: %v", err)
	}
	sel, err := s.SelectedPolygon()
	if err != nil {
		t.Fatalf("SelectedPolygon failed: %v", err)
	}
	if sel != second {
		t.Error("selection should follow the shifted polygon")
	}
}

func TestSelectedPolygonWithoutSelection(t *testing.T) {
	s := newTestSession()
	if _, err := s.SelectedPolygon(); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("err = %v, want ErrNoSelection", err)
	}
}

func TestStraightenThenUndoRestoresExactPoints(t *testing.T) {
	s := newTestSession()
	original := model.Ring{{X: 0.1, Y: -0.2}, {X: 9.9, Y: 0.3}, {X: 10.2, Y: 10.1}, {X: -0.1, Y: 9.8}}
	p, err := s.AddPolygon(original)
	if err != nil {
		t.Fatalf("AddPolygon failed: %v", err)
	}

	if err := s.StraightenSelected(); err != nil {
		t.Fatalf("StraightenSelected failed: %v", err)
	}
	if err := s.UndoStraighten(); err != nil {
		t.Fatalf("UndoStraighten failed: %v", err)
	}

	if len(p.Points) != len(original) {
		t.Fatalf("restored %d points, want %d", len(p.Points), len(original))
	}
	for i := range original {
		if p.Points[i] != original[i] {
			t.Errorf("vertex %d = %v, want exactly %v", i, p.Points[i], original[i])
		}
	}
}

func TestUndoStraightenSingleSlot(t *testing.T) {
	s := newTestSession()
	addSquare(t, s)

	if err := s.StraightenSelected(); err != nil {
		t.Fatalf("StraightenSelected failed: %v", err)
	}
	if err := s.UndoStraighten(); err != nil {
		t.Fatalf("UndoStraighten failed: %v", err)
	}
	if err := s.UndoStraighten(); !errors.Is(err, ErrNoBackup) {
		t.Fatalf("second undo err = %v, want ErrNoBackup", err)
	}
}

func TestVertexMoveAndUndo(t *testing.T) {
	s := newTestSession()
	p := addSquare(t, s)

	if err := s.BeginVertexMove(); err != nil {
		t.Fatalf("BeginVertexMove failed: %v", err)
	}
	if err := s.MoveVertex(0, model.Point2D{X: -2, Y: -3}, false); err != nil {
		t.Fatalf("MoveVertex failed: %v", err)
	}
	if p.Points[0] != (model.Point2D{X: -2, Y: -3}) {
		t.Errorf("vertex 0 = %v after move", p.Points[0])
	}

	if err := s.UndoVertexMove(); err != nil {
		t.Fatalf("UndoVertexMove failed: %v", err)
	}
	if p.Points[0] != (model.Point2D{X: 0, Y: 0}) {
		t.Errorf("vertex 0 = %v after undo, want origin", p.Points[0])
	}
}

func TestMoveVertexSnapToStraight(t *testing.T) {
	s := newTestSession()
	s.Settings.SnapToleranceDeg = 3.0
	p, err := s.AddPolygon(model.Ring{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}})
	if err != nil {
		t.Fatalf("AddPolygon failed: %v", err)
	}

	// Dragging the middle vertex slightly off the line snaps it back
	if err := s.MoveVertex(1, model.Point2D{X: 5, Y: 0.1}, true); err != nil {
		t.Fatalf("MoveVertex failed: %v", err)
	}
	if p.Points[1].Y > 1e-9 || p.Points[1].Y < -1e-9 {
		t.Errorf("vertex should snap onto the line, got %v", p.Points[1])
	}

	// A clearly bent drag is left where the user put it
	if err := s.MoveVertex(1, model.Point2D{X: 5, Y: 3}, true); err != nil {
		t.Fatalf("MoveVertex failed: %v", err)
	}
	if p.Points[1] != (model.Point2D{X: 5, Y: 3}) {
		t.Errorf("vertex = %v, want (5,3) untouched", p.Points[1])
	}
}

func TestMoveVertexOutOfRange(t *testing.T) {
	s := newTestSession()
	addSquare(t, s)
	if err := s.MoveVertex(9, model.Point2D{}, false); err == nil {
		t.Fatal("expected error for out-of-range vertex index")
	}
}

func TestOptimizeSelectedStoresLayout(t *testing.T) {
	s := newTestSession()
	p := addSquare(t, s)

	if err := s.OptimizeSelected(); err != nil {
		t.Fatalf("OptimizeSelected failed: %v", err)
	}
	if s.Layout == nil {
		t.Fatal("layout should be stored")
	}
	if s.Layout.PolygonID != p.ID {
		t.Errorf("layout polygon = %q, want %q", s.Layout.PolygonID, p.ID)
	}
	if s.Layout.FullCount != 4 {
		t.Errorf("FullCount = %d, want 4", s.Layout.FullCount)
	}
}

func TestOptimizeFailureKeepsStoredLayout(t *testing.T) {
	s := newTestSession()
	addSquare(t, s)

	if err := s.OptimizeSelected(); err != nil {
		t.Fatalf("OptimizeSelected failed: %v", err)
	}
	stored := s.Layout

	s.Scale = model.Scale{Factor: 0}
	if err := s.OptimizeSelected(); err == nil {
		t.Fatal("expected error for invalid scale")
	}
	if s.Layout != stored {
		t.Error("failed optimization must leave the stored layout untouched")
	}

	// Same for the no-layout outcome
	s.Scale = model.Scale{Factor: 1, Unit: "m"}
	if _, err := s.AddPolygon(model.Ring{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 10, Y: 0}}); err != nil {
		t.Fatalf("AddPolygon failed: %v", err)
	}
	if err := s.OptimizeSelected(); !errors.Is(err, engine.ErrNoLayout) {
		t.Fatalf("err = %v, want ErrNoLayout", err)
	}
	if s.Layout != stored {
		t.Error("no-layout outcome must leave the stored layout untouched")
	}
}

func TestEstimateSelected(t *testing.T) {
	s := newTestSession()
	addSquare(t, s)

	if _, err := s.EstimateSelected(10, 20); !errors.Is(err, ErrNoStoredLayout) {
		t.Fatalf("err = %v, want ErrNoStoredLayout", err)
	}

	if err := s.OptimizeSelected(); err != nil {
		t.Fatalf("OptimizeSelected failed: %v", err)
	}
	est, err := s.EstimateSelected(10, 20)
	if err != nil {
		t.Fatalf("EstimateSelected failed: %v", err)
	}
	if est.PanelsNeeded != 4 {
		t.Errorf("PanelsNeeded = %d, want 4", est.PanelsNeeded)
	}
	// ceil(4 * 1.10) = 5 panels at 20 each
	if est.EstimatedCost != 100 {
		t.Errorf("EstimatedCost = %v, want 100", est.EstimatedCost)
	}
}

func TestSetScaleFromReference(t *testing.T) {
	s := newTestSession()
	if err := s.SetScaleFromReference(model.Point2D{X: 0, Y: 0}, model.Point2D{X: 3, Y: 4}, 10, "m"); err != nil {
		t.Fatalf("SetScaleFromReference failed: %v", err)
	}
	if s.Scale.Factor != 2.0 {
		t.Errorf("Factor = %v, want 2.0", s.Scale.Factor)
	}
	if s.ScaleArtifact == nil {
		t.Fatal("calibration artifact should be stored")
	}

	if err := s.SetScaleFromReference(model.Point2D{X: 1, Y: 1}, model.Point2D{X: 1, Y: 1}, 10, "m"); err == nil {
		t.Fatal("coincident points must be rejected")
	}
	if s.Scale.Factor != 2.0 {
		t.Error("failed calibration must not change the scale")
	}
}

func TestRotatePageDropsLayout(t *testing.T) {
	s := newTestSession()
	p := addSquare(t, s)
	if err := s.OptimizeSelected(); err != nil {
		t.Fatalf("OptimizeSelected failed: %v", err)
	}

	areaBefore := p.AreaPx
	s.RotatePage(100, 50, 90)

	if s.Layout != nil {
		t.Error("rotation must drop the stored layout")
	}
	if p.AreaPx < areaBefore-1e-6 || p.AreaPx > areaBefore+1e-6 {
		t.Errorf("rotation changed area: %v -> %v", areaBefore, p.AreaPx)
	}
}

func TestResetClearsEverything(t *testing.T) {
	s := newTestSession()
	addSquare(t, s)
	if err := s.OptimizeSelected(); err != nil {
		t.Fatalf("OptimizeSelected failed: %v", err)
	}
	if err := s.StraightenSelected(); err != nil {
		t.Fatalf("StraightenSelected failed: %v", err)
	}

	s.Reset("/plans/site.pdf")

	if len(s.Polygons) != 0 {
		t.Error("polygons should be cleared")
	}
	if s.Layout != nil {
		t.Error("layout should be cleared")
	}
	if s.PlanPath != "/plans/site.pdf" {
		t.Errorf("PlanPath = %q", s.PlanPath)
	}
	if err := s.UndoStraighten(); !errors.Is(err, ErrNoBackup) {
		t.Error("undo backups should be cleared")
	}
	if _, err := s.SelectedPolygon(); !errors.Is(err, ErrNoSelection) {
		t.Error("selection should be cleared")
	}
}

func TestSessionSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.planmeasure.json")

	s := newTestSession()
	p := addSquare(t, s)
	p.Metadata["name"] = "Kitchen"
	s.PlanPath = "/plans/site.pdf"
	s.PageIndex = 2
	if err := s.SetScaleFromReference(model.Point2D{X: 0, Y: 0}, model.Point2D{X: 3, Y: 4}, 10, "m"); err != nil {
		t.Fatalf("SetScaleFromReference failed: %v", err)
	}

	if err := s.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadSession(path)
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}

	if len(loaded.Polygons) != 1 {
		t.Fatalf("loaded %d polygons, want 1", len(loaded.Polygons))
	}
	lp := loaded.Polygons[0]
	if lp.ID != p.ID {
		t.Errorf("polygon ID = %q, want %q", lp.ID, p.ID)
	}
	if lp.Metadata["name"] != "Kitchen" {
		t.Errorf("metadata lost: %v", lp.Metadata)
	}
	if lp.AreaPx != 100.0 {
		t.Errorf("recomputed area = %v, want 100", lp.AreaPx)
	}
	if loaded.Scale.Factor != 2.0 {
		t.Errorf("scale factor = %v, want 2.0", loaded.Scale.Factor)
	}
	if loaded.ScaleArtifact == nil {
		t.Error("scale artifact should survive the round trip")
	}
	if loaded.PageIndex != 2 {
		t.Errorf("page index = %d, want 2", loaded.PageIndex)
	}
	if loaded.Selected != -1 {
		t.Error("selection must not be persisted")
	}
	if loaded.Layout != nil {
		t.Error("layout must not be persisted")
	}
}

func TestLoadSessionRejectsGarbage(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadSession(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("not json"), 0644); err != nil {
		t.Fatalf("cannot write fixture: %v", err)
	}
	if _, err := LoadSession(bad); err == nil {
		t.Fatal("expected error for invalid JSON")
	}

	unversioned := filepath.Join(dir, "unversioned.json")
	if err := os.WriteFile(unversioned, []byte("{}"), 0644); err != nil {
		t.Fatalf("cannot write fixture: %v", err)
	}
	if _, err := LoadSession(unversioned); err == nil {
		t.Fatal("expected error for missing version field")
	}
}
