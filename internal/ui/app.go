package ui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/planmeasure/internal/engine"
	"github.com/piwi3910/planmeasure/internal/export"
	"github.com/piwi3910/planmeasure/internal/importer"
	"github.com/piwi3910/planmeasure/internal/model"
	"github.com/piwi3910/planmeasure/internal/project"
	"github.com/piwi3910/planmeasure/internal/ui/widgets"
)

// planDPI is the raster resolution used to map PDF points to plan pixels.
const planDPI = 96.0

// canvasMode selects what a click on the plan canvas means.
type canvasMode int

const (
	modeSelect canvasMode = iota
	modeDraw
	modeScale
)

// App wires the measurement session to the Fyne window: canvas, room
// list, menus and dialogs. All state changes go through the Session;
// the App only renders and collects input.
type App struct {
	fyneApp fyne.App
	window  fyne.Window

	config     model.AppConfig
	configPath string

	session  *project.Session
	plan     *importer.PlanInfo
	schedule []importer.RoomInfo

	mode        canvasMode
	preview     model.Ring
	scalePoints model.Ring

	pageW, pageH float64

	planCanvas  *widgets.PlanCanvas
	roomList    *widget.List
	detailLabel *widget.Label
	statusLabel *widget.Label
}

// NewApp creates the application UI bound to the given window, loading
// the saved configuration from the default location.
func NewApp(fyneApp fyne.App, window fyne.Window) *App {
	configPath := project.DefaultConfigPath()
	config, err := project.LoadAppConfig(configPath)
	if err != nil {
		config = model.DefaultAppConfig()
	}

	a := &App{
		fyneApp:    fyneApp,
		window:     window,
		config:     config,
		configPath: configPath,
		session:    project.NewSession(config),
		pageW:      800,
		pageH:      600,
	}
	return a
}

// SetupMenus installs the main menu bar.
func (a *App) SetupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Session", a.newSession),
		fyne.NewMenuItem("Open Plan PDF...", a.openPlan),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Open Session...", a.openSession),
		a.recentSessionsItem(),
		fyne.NewMenuItem("Save Session...", a.saveSession),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Import DXF Outlines...", a.importDXF),
		fyne.NewMenuItem("Import Room Schedule...", a.importSchedule),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Measurements CSV...", a.exportCSV),
		fyne.NewMenuItem("Export Measurements Excel...", a.exportXLSX),
		fyne.NewMenuItem("Export PDF Report...", a.exportPDF),
		fyne.NewMenuItem("Export Room Labels...", a.exportLabels),
		fyne.NewMenuItem("Export Outlines DXF...", a.exportDXF),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Backup...", a.exportBackup),
		fyne.NewMenuItem("Import Backup...", a.importBackup),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo Straighten", a.undoStraighten),
		fyne.NewMenuItem("Undo Vertex Move", a.undoVertexMove),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Room Details...", a.editRoomDetails),
		fyne.NewMenuItem("Delete Room", a.deleteRoom),
		fyne.NewMenuItem("Clear All Rooms", a.clearRooms),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Previous Page", func() { a.changePage(-1) }),
		fyne.NewMenuItem("Next Page", func() { a.changePage(1) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Rotate Page 90° CW", func() { a.rotatePage(90) }),
		fyne.NewMenuItem("Rotate Page 90° CCW", func() { a.rotatePage(-90) }),
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Set Scale...", a.startScaleCalibration),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Straighten Room", a.straightenSelected),
		fyne.NewMenuItem("Optimize Panels", a.optimizeSelected),
		fyne.NewMenuItem("Panel Estimate...", a.showEstimate),
		fyne.NewMenuItem("3D Preview", a.showExtrusionPreview),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Settings...", a.showSettings),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", a.showAbout),
	)

	a.window.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, toolsMenu, helpMenu))
}

// recentSessionsItem builds the Open Recent submenu from the config.
func (a *App) recentSessionsItem() *fyne.MenuItem {
	item := fyne.NewMenuItem("Open Recent", nil)
	items := make([]*fyne.MenuItem, 0, len(a.config.RecentSessions))
	for _, path := range a.config.RecentSessions {
		p := path
		items = append(items, fyne.NewMenuItem(filepath.Base(p), func() {
			a.loadSessionFrom(p)
		}))
	}
	if len(items) == 0 {
		none := fyne.NewMenuItem("(empty)", nil)
		none.Disabled = true
		items = append(items, none)
	}
	item.ChildMenu = fyne.NewMenu("", items...)
	return item
}

// Build assembles the main window content: toolbar on top, the room
// list on the left, the plan canvas in the center and a status bar at
// the bottom.
func (a *App) Build() fyne.CanvasObject {
	a.planCanvas = widgets.NewPlanCanvas()
	a.planCanvas.SetPage(a.pageW, a.pageH)
	a.planCanvas.OnTapped = a.handleTap
	a.planCanvas.OnVertexDragStart = func(int) {
		if err := a.session.BeginVertexMove(); err != nil {
			a.mode = modeSelect
		}
	}
	a.planCanvas.OnVertexDragged = func(idx int, pt model.Point2D) {
		if err := a.session.MoveVertex(idx, pt, true); err == nil {
			a.updateDetails()
		}
	}
	a.planCanvas.OnVertexDragEnd = func() {
		a.refresh()
	}

	a.roomList = widget.NewList(
		func() int { return len(a.session.Polygons) },
		func() fyne.CanvasObject { return widget.NewLabel("room") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(a.session.Polygons) {
				return
			}
			p := a.session.Polygons[id]
			label := obj.(*widget.Label)
			label.SetText(fmt.Sprintf("%s  %.2f %s²",
				displayTitle(p), p.RealArea(a.session.Scale), a.session.Scale.Unit))
		},
	)
	a.roomList.OnSelected = func(id widget.ListItemID) {
		if err := a.session.Select(id); err == nil {
			a.refresh()
		}
	}

	a.detailLabel = widget.NewLabel("")
	a.detailLabel.Wrapping = fyne.TextWrapWord
	a.statusLabel = widget.NewLabel("")

	toolbar := container.NewHBox(
		widget.NewButton("Draw Room", a.startDrawing),
		widget.NewButton("Finish Room", a.finishDrawing),
		widget.NewButton("Cancel", a.cancelInput),
		widget.NewSeparator(),
		widget.NewButton("Set Scale", a.startScaleCalibration),
		widget.NewButton("Straighten", a.straightenSelected),
		widget.NewButton("Optimize", a.optimizeSelected),
	)

	left := container.NewBorder(
		widget.NewLabelWithStyle("Rooms", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		a.detailLabel, nil, nil,
		a.roomList,
	)

	content := container.NewBorder(
		toolbar,
		a.statusLabel,
		left,
		nil,
		a.planCanvas,
	)

	a.refresh()
	return content
}

// refresh pushes session state into the canvas and side panel.
func (a *App) refresh() {
	if a.planCanvas == nil {
		return
	}
	a.planCanvas.PageW = a.pageW
	a.planCanvas.PageH = a.pageH
	a.planCanvas.Polygons = a.session.Polygons
	a.planCanvas.Selected = a.session.Selected
	a.planCanvas.Artifact = a.session.ScaleArtifact
	a.planCanvas.Preview = a.preview
	a.planCanvas.ScalePoints = a.scalePoints

	// Only show a layout that still belongs to the selected polygon.
	a.planCanvas.Layout = nil
	if p, err := a.session.SelectedPolygon(); err == nil &&
		a.session.Layout != nil && a.session.Layout.PolygonID == p.ID {
		a.planCanvas.Layout = a.session.Layout
	}
	a.planCanvas.Refresh()

	if a.roomList != nil {
		a.roomList.Refresh()
	}
	a.updateDetails()
	a.updateStatus()
}

func (a *App) updateDetails() {
	if a.detailLabel == nil {
		return
	}
	p, err := a.session.SelectedPolygon()
	if err != nil {
		a.detailLabel.SetText("No room selected")
		return
	}
	s := a.session.Scale
	text := fmt.Sprintf("%s\nArea: %.2f %s²\nPerimeter: %.2f %s",
		displayTitle(p), p.RealArea(s), s.Unit, p.RealPerimeter(s), s.Unit)
	if a.session.Layout != nil && a.session.Layout.PolygonID == p.ID {
		l := a.session.Layout
		text += fmt.Sprintf("\nPanels: %d full, %d partial\nWaste: %.1f%%",
			l.FullCount, l.PartialCount, l.WastePct)
	}
	a.detailLabel.SetText(text)
}

func (a *App) updateStatus() {
	if a.statusLabel == nil {
		return
	}
	var hint string
	switch a.mode {
	case modeDraw:
		hint = fmt.Sprintf("Drawing: %d points placed. Click to add, Finish Room to close.", len(a.preview))
	case modeScale:
		hint = fmt.Sprintf("Calibrating: click %d more reference point(s).", 2-len(a.scalePoints))
	default:
		hint = "Click a room to select it. Drag a vertex handle to adjust."
	}
	scale := "scale: uncalibrated"
	if a.session.ScaleArtifact != nil {
		scale = fmt.Sprintf("scale: %.4f %s/px", a.session.Scale.Factor, a.session.Scale.Unit)
	}
	page := ""
	if a.plan != nil {
		page = fmt.Sprintf("  |  page %d/%d", a.session.PageIndex+1, a.plan.PageCount)
	}
	a.statusLabel.SetText(fmt.Sprintf("%s  |  %s%s", hint, scale, page))
}

// handleTap dispatches clicks based on the current input mode.
func (a *App) handleTap(pt model.Point2D) {
	switch a.mode {
	case modeDraw:
		a.preview = append(a.preview, pt)
	case modeScale:
		a.scalePoints = append(a.scalePoints, pt)
		if len(a.scalePoints) == 2 {
			a.showScaleDialog()
		}
	default:
		a.selectAt(pt)
	}
	a.refresh()
}

// selectAt selects the first polygon containing the click, or clears
// the selection on empty space.
func (a *App) selectAt(pt model.Point2D) {
	for i, p := range a.session.Polygons {
		if model.PointInPolygon(pt, p.Points) {
			a.session.Select(i)
			if a.roomList != nil {
				a.roomList.Select(i)
			}
			return
		}
	}
	a.session.Select(-1)
	if a.roomList != nil {
		a.roomList.UnselectAll()
	}
}

// --- drawing -------------------------------------------------------------

func (a *App) startDrawing() {
	a.mode = modeDraw
	a.preview = model.Ring{}
	a.refresh()
}

func (a *App) finishDrawing() {
	if a.mode != modeDraw {
		return
	}
	if _, err := a.session.AddPolygon(a.preview); err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.preview = nil
	a.mode = modeSelect
	a.refresh()
}

func (a *App) cancelInput() {
	a.mode = modeSelect
	a.preview = nil
	a.scalePoints = nil
	a.refresh()
}

// --- scale calibration ---------------------------------------------------

func (a *App) startScaleCalibration() {
	a.mode = modeScale
	a.scalePoints = model.Ring{}
	a.refresh()
}

func (a *App) showScaleDialog() {
	lengthEntry := widget.NewEntry()
	lengthEntry.SetPlaceHolder("e.g. 5.0")
	unitSelect := widget.NewSelect(model.ScaleUnits, nil)
	unitSelect.SetSelected(a.session.Scale.Unit)
	if unitSelect.Selected == "" {
		unitSelect.SetSelected("m")
	}

	items := []*widget.FormItem{
		widget.NewFormItem("Real length", lengthEntry),
		widget.NewFormItem("Unit", unitSelect),
	}
	dialog.NewForm("Set Scale", "Apply", "Cancel", items, func(ok bool) {
		defer a.cancelInput()
		if !ok || len(a.scalePoints) != 2 {
			return
		}
		length, err := strconv.ParseFloat(strings.TrimSpace(lengthEntry.Text), 64)
		if err != nil {
			dialog.ShowError(fmt.Errorf("invalid length: %w", err), a.window)
			return
		}
		if err := a.session.SetScaleFromReference(
			a.scalePoints[0], a.scalePoints[1], length, unitSelect.Selected); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
	}, a.window).Show()
}

// --- editing -------------------------------------------------------------

func (a *App) undoStraighten() {
	if err := a.session.UndoStraighten(); err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.refresh()
}

func (a *App) undoVertexMove() {
	if err := a.session.UndoVertexMove(); err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.refresh()
}

func (a *App) straightenSelected() {
	if err := a.session.StraightenSelected(); err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.refresh()
}

func (a *App) deleteRoom() {
	idx := a.session.Selected
	if idx < 0 {
		dialog.ShowError(project.ErrNoSelection, a.window)
		return
	}
	dialog.ShowConfirm("Delete Room", "Delete the selected room outline?", func(ok bool) {
		if !ok {
			return
		}
		if err := a.session.RemovePolygon(idx); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.refresh()
	}, a.window)
}

func (a *App) clearRooms() {
	if len(a.session.Polygons) == 0 {
		return
	}
	dialog.ShowConfirm("Clear All Rooms",
		"Remove every measured room? The plan and scale are kept.", func(ok bool) {
			if !ok {
				return
			}
			scale, artifact := a.session.Scale, a.session.ScaleArtifact
			planPath, page := a.session.PlanPath, a.session.PageIndex
			a.session.Reset(planPath)
			a.session.PageIndex = page
			a.session.Scale = scale
			a.session.ScaleArtifact = artifact
			a.refresh()
		}, a.window)
}

func (a *App) editRoomDetails() {
	p, err := a.session.SelectedPolygon()
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}

	nameEntry := widget.NewEntry()
	nameEntry.SetText(p.Metadata["name"])
	notesEntry := widget.NewEntry()
	notesEntry.SetText(p.Metadata["notes"])

	items := []*widget.FormItem{
		widget.NewFormItem("Name", nameEntry),
	}

	// With a schedule loaded, the room code comes from a picker that
	// also fills in the room name.
	var codeSelect *widget.Select
	codeEntry := widget.NewEntry()
	if len(a.schedule) > 0 {
		codes := make([]string, 0, len(a.schedule))
		byCode := make(map[string]importer.RoomInfo, len(a.schedule))
		for _, r := range a.schedule {
			codes = append(codes, r.Code)
			byCode[r.Code] = r
		}
		codeSelect = widget.NewSelect(codes, func(code string) {
			if info, ok := byCode[code]; ok && nameEntry.Text == "" {
				nameEntry.SetText(info.Name)
			}
		})
		codeSelect.SetSelected(p.Metadata["room"])
		items = append(items, widget.NewFormItem("Room code", codeSelect))
	} else {
		codeEntry.SetText(p.Metadata["room"])
		items = append(items, widget.NewFormItem("Room code", codeEntry))
	}
	items = append(items, widget.NewFormItem("Notes", notesEntry))

	dialog.NewForm("Room Details", "Save", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		setOrDelete(p.Metadata, "name", strings.TrimSpace(nameEntry.Text))
		code := codeEntry.Text
		if codeSelect != nil {
			code = codeSelect.Selected
		}
		setOrDelete(p.Metadata, "room", strings.TrimSpace(code))
		setOrDelete(p.Metadata, "notes", strings.TrimSpace(notesEntry.Text))
		a.refresh()
	}, a.window).Show()
}

// --- optimizer -----------------------------------------------------------

func (a *App) optimizeSelected() {
	if err := a.session.OptimizeSelected(); err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.refresh()
	l := a.session.Layout
	dialog.ShowInformation("Panel Layout", fmt.Sprintf(
		"Full panels: %d\nPartial panels: %d\nWaste: %.1f%%\nGrid offset: (%.2f, %.2f) px",
		l.FullCount, l.PartialCount, l.WastePct, l.OffsetX, l.OffsetY), a.window)
}

func (a *App) showEstimate() {
	wasteEntry := widget.NewEntry()
	wasteEntry.SetText("10")
	priceEntry := widget.NewEntry()
	priceEntry.SetText("0")

	items := []*widget.FormItem{
		widget.NewFormItem("Waste allowance %", wasteEntry),
		widget.NewFormItem("Price per panel", priceEntry),
	}
	dialog.NewForm("Panel Estimate", "Calculate", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		waste, err := strconv.ParseFloat(strings.TrimSpace(wasteEntry.Text), 64)
		if err != nil {
			dialog.ShowError(fmt.Errorf("invalid waste percentage: %w", err), a.window)
			return
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(priceEntry.Text), 64)
		if err != nil {
			dialog.ShowError(fmt.Errorf("invalid price: %w", err), a.window)
			return
		}
		est, err := a.session.EstimateSelected(waste, price)
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		msg := fmt.Sprintf(
			"Panels needed: %d (%d full, %d cut)\nWith %.0f%% allowance: %d\nPanel area: %.2f %s² each",
			est.PanelsNeeded, est.FullPanels, est.PartialPanels,
			waste, est.PanelsWithWaste, est.PanelArea, a.session.Scale.Unit)
		if price > 0 {
			msg += fmt.Sprintf("\nEstimated cost: %.2f", est.EstimatedCost)
		}
		dialog.ShowInformation("Panel Estimate", msg, a.window)
	}, a.window).Show()
}

func (a *App) showExtrusionPreview() {
	p, err := a.session.SelectedPolygon()
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	ratio := 0.25
	if a.session.Settings.PanelWidth > 0 {
		ratio = a.session.Settings.ExtrusionHeight / (a.session.Settings.PanelWidth * 10)
	}
	preview := widgets.NewExtrusionPreview(p.Points, a.pageW, a.pageH, ratio)
	dialog.NewCustom(fmt.Sprintf("3D Preview — %s", displayTitle(p)), "Close",
		preview, a.window).Show()
}

// --- pages ---------------------------------------------------------------

func (a *App) changePage(delta int) {
	if a.plan == nil {
		return
	}
	next := a.session.PageIndex + delta
	if next < 0 || next >= a.plan.PageCount {
		return
	}
	a.session.PageIndex = next
	a.pageW, a.pageH = a.plan.Pages[next].PixelSize(planDPI)
	a.planCanvas.SetPage(a.pageW, a.pageH)
	a.refresh()
}

func (a *App) rotatePage(angleDeg float64) {
	a.session.RotatePage(a.pageW, a.pageH, angleDeg)
	// In-progress input follows the page too.
	a.preview = model.RotatePoints(a.preview, a.pageW, a.pageH, angleDeg)
	a.scalePoints = model.RotatePoints(a.scalePoints, a.pageW, a.pageH, angleDeg)
	if angleDeg == 90 || angleDeg == -90 || angleDeg == 270 || angleDeg == -270 {
		a.pageW, a.pageH = a.pageH, a.pageW
	}
	a.planCanvas.SetPage(a.pageW, a.pageH)
	a.refresh()
}

// --- settings ------------------------------------------------------------

func (a *App) showSettings() {
	panelW := widget.NewEntry()
	panelW.SetText(strconv.FormatFloat(a.session.Settings.PanelWidth, 'f', -1, 64))
	panelH := widget.NewEntry()
	panelH.SetText(strconv.FormatFloat(a.session.Settings.PanelHeight, 'f', -1, 64))
	extrusion := widget.NewEntry()
	extrusion.SetText(strconv.FormatFloat(a.session.Settings.ExtrusionHeight, 'f', -1, 64))
	snapTol := widget.NewEntry()
	snapTol.SetText(strconv.FormatFloat(a.session.Settings.SnapToleranceDeg, 'f', -1, 64))
	unitSelect := widget.NewSelect(model.ScaleUnits, nil)
	unitSelect.SetSelected(a.config.DefaultUnit)

	items := []*widget.FormItem{
		widget.NewFormItem("Panel width", panelW),
		widget.NewFormItem("Panel height", panelH),
		widget.NewFormItem("Extrusion height", extrusion),
		widget.NewFormItem("Snap tolerance (deg)", snapTol),
		widget.NewFormItem("Default unit", unitSelect),
	}
	dialog.NewForm("Settings", "Save", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		parse := func(e *widget.Entry, dst *float64) error {
			v, err := strconv.ParseFloat(strings.TrimSpace(e.Text), 64)
			if err != nil || v <= 0 {
				return fmt.Errorf("invalid value %q", e.Text)
			}
			*dst = v
			return nil
		}
		s := a.session.Settings
		if err := parse(panelW, &s.PanelWidth); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if err := parse(panelH, &s.PanelHeight); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if err := parse(extrusion, &s.ExtrusionHeight); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if err := parse(snapTol, &s.SnapToleranceDeg); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.session.Settings = s

		a.config.DefaultPanelWidth = s.PanelWidth
		a.config.DefaultPanelHeight = s.PanelHeight
		a.config.DefaultExtrusionHeight = s.ExtrusionHeight
		if unitSelect.Selected != "" {
			a.config.DefaultUnit = unitSelect.Selected
		}
		if err := project.SaveAppConfig(a.configPath, a.config); err != nil {
			dialog.ShowError(err, a.window)
		}
		a.refresh()
	}, a.window).Show()
}

// --- plan / session files ------------------------------------------------

func (a *App) newSession() {
	a.session = project.NewSession(a.config)
	a.plan = nil
	a.schedule = nil
	a.cancelInput()
}

func (a *App) openPlan() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		info, err := importer.ReadPlanInfo(path)
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.plan = info
		a.session.Reset(path)
		a.pageW, a.pageH = info.Pages[0].PixelSize(planDPI)
		a.planCanvas.SetPage(a.pageW, a.pageH)
		a.cancelInput()
	}, a.window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".pdf"}))
	fd.Show()
}

func (a *App) openSession() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		a.loadSessionFrom(path)
	}, a.window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	fd.Show()
}

func (a *App) loadSessionFrom(path string) {
	s, err := project.LoadSession(path)
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.session = s
	a.plan = nil
	if s.PlanPath != "" {
		if info, err := importer.ReadPlanInfo(s.PlanPath); err == nil {
			a.plan = info
			page := s.PageIndex
			if page < 0 || page >= info.PageCount {
				page = 0
				s.PageIndex = 0
			}
			a.pageW, a.pageH = info.Pages[page].PixelSize(planDPI)
		}
	}
	a.planCanvas.SetPage(a.pageW, a.pageH)

	project.RememberRecentSession(&a.config, path)
	project.SaveAppConfig(a.configPath, a.config)
	a.cancelInput()
}

func (a *App) saveSession() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		if err := a.session.Save(path); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		project.RememberRecentSession(&a.config, path)
		project.SaveAppConfig(a.configPath, a.config)
	}, a.window)
	fd.SetFileName("session.json")
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	fd.Show()
}

// --- imports -------------------------------------------------------------

func (a *App) importDXF() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		result := importer.ImportDXF(path)
		if len(result.Errors) > 0 && len(result.Polygons) == 0 {
			dialog.ShowError(fmt.Errorf("DXF import failed: %s", strings.Join(result.Errors, "; ")), a.window)
			return
		}
		for _, p := range result.Polygons {
			a.session.AdoptPolygon(p)
		}
		msg := fmt.Sprintf("Imported %d outline(s).", len(result.Polygons))
		if len(result.Warnings) > 0 {
			msg += "\n\nWarnings:\n" + strings.Join(result.Warnings, "\n")
		}
		dialog.ShowInformation("DXF Import", msg, a.window)
		a.refresh()
	}, a.window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".dxf"}))
	fd.Show()
}

func (a *App) importSchedule() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		var result importer.ScheduleResult
		if strings.EqualFold(filepath.Ext(path), ".xlsx") {
			result = importer.ImportScheduleExcel(path)
		} else {
			result = importer.ImportScheduleCSV(path)
		}
		if len(result.Errors) > 0 && len(result.Rooms) == 0 {
			dialog.ShowError(fmt.Errorf("schedule import failed: %s", strings.Join(result.Errors, "; ")), a.window)
			return
		}
		a.schedule = result.Rooms
		msg := fmt.Sprintf("Loaded %d room(s) from the schedule.\nAssign them via Edit > Room Details.", len(result.Rooms))
		if len(result.Warnings) > 0 {
			msg += "\n\nWarnings:\n" + strings.Join(result.Warnings, "\n")
		}
		dialog.ShowInformation("Room Schedule", msg, a.window)
	}, a.window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".csv", ".xlsx"}))
	fd.Show()
}

// --- exports -------------------------------------------------------------

// exportWith shows a save dialog and hands the chosen path to fn.
func (a *App) exportWith(defaultName string, exts []string, fn func(path string) error) {
	if len(a.session.Polygons) == 0 {
		dialog.ShowError(fmt.Errorf("nothing to export: no rooms measured"), a.window)
		return
	}
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		if err := fn(path); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		dialog.ShowInformation("Export", fmt.Sprintf("Written to %s", path), a.window)
	}, a.window)
	fd.SetFileName(defaultName)
	fd.SetFilter(storage.NewExtensionFileFilter(exts))
	fd.Show()
}

func (a *App) exportCSV() {
	a.exportWith("rooms.csv", []string{".csv"}, func(path string) error {
		return export.ExportCSV(path, a.session.Polygons, a.session.Scale)
	})
}

func (a *App) exportXLSX() {
	a.exportWith("rooms.xlsx", []string{".xlsx"}, func(path string) error {
		return export.ExportXLSX(path, a.session.Polygons, a.session.Scale)
	})
}

func (a *App) exportPDF() {
	a.exportWith("report.pdf", []string{".pdf"}, func(path string) error {
		layouts := map[string]*engine.PanelLayout{}
		if a.session.Layout != nil {
			layouts[a.session.Layout.PolygonID] = a.session.Layout
		}
		return export.ExportPDF(path, a.session.Polygons, a.session.Scale, layouts)
	})
}

func (a *App) exportLabels() {
	a.exportWith("labels.pdf", []string{".pdf"}, func(path string) error {
		return export.ExportLabels(path, a.session.Polygons, a.session.Scale)
	})
}

func (a *App) exportDXF() {
	a.exportWith("rooms.dxf", []string{".dxf"}, func(path string) error {
		return export.ExportDXF(path, a.session.Polygons, a.session.Scale)
	})
}

func (a *App) exportBackup() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		if err := project.ExportAllData(path, a.config, a.session); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		dialog.ShowInformation("Backup", fmt.Sprintf("Backup written to %s", path), a.window)
	}, a.window)
	fd.SetFileName("planmeasure-backup.json")
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	fd.Show()
}

func (a *App) importBackup() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		backup, err := project.ImportAllData(path)
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.config = backup.Config
		if backup.Session != nil {
			a.session = backup.Session
		}
		project.SaveAppConfig(a.configPath, a.config)
		a.cancelInput()
	}, a.window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	fd.Show()
}

// --- misc ----------------------------------------------------------------

func (a *App) showAbout() {
	dialog.ShowInformation("About PlanMeasure",
		"PlanMeasure — Room Measurement Tool\n\n"+
			"Measure rooms on architectural PDF plans, calibrate real-world\n"+
			"scale, optimize ceiling panel layouts and export reports.",
		a.window)
}

// displayTitle returns a human-readable name for a polygon, preferring
// the assigned name, then the room code, then the short ID.
func displayTitle(p *model.Polygon) string {
	if name := p.Metadata["name"]; name != "" {
		return name
	}
	if room := p.Metadata["room"]; room != "" {
		return room
	}
	return p.ID
}

func setOrDelete(m map[string]string, key, value string) {
	if value == "" {
		delete(m, key)
		return
	}
	m[key] = value
}
