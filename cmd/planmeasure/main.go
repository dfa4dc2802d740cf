// PlanMeasure — Room Measurement Tool
//
// A cross-platform desktop application for measuring rooms on
// architectural PDF plans: calibrate a real-world scale, trace room
// outlines, optimize ceiling panel layouts and export reports.
//
// Build:
//   go build -o planmeasure ./cmd/planmeasure
//
// Cross-compile:
//   GOOS=windows GOARCH=amd64 go build -o planmeasure.exe ./cmd/planmeasure
//   GOOS=darwin  GOARCH=amd64 go build -o planmeasure-darwin ./cmd/planmeasure
//
// Using fyne-cross (recommended for proper packaging):
//   go install github.com/fyne-io/fyne-cross@latest
//   fyne-cross windows -arch=amd64
//   fyne-cross darwin  -arch=amd64,arm64

package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/theme"

	"github.com/piwi3910/planmeasure/internal/project"
	"github.com/piwi3910/planmeasure/internal/ui"
)

func main() {
	application := app.NewWithID("com.piwi3910.planmeasure")

	config, err := project.LoadAppConfig(project.DefaultConfigPath())
	if err == nil {
		switch config.Theme {
		case "dark":
			application.Settings().SetTheme(ui.NewPlanMeasureThemeWithVariant(theme.VariantDark))
		case "light":
			application.Settings().SetTheme(ui.NewPlanMeasureThemeWithVariant(theme.VariantLight))
		default:
			application.Settings().SetTheme(ui.NewPlanMeasureTheme())
		}
	} else {
		application.Settings().SetTheme(ui.NewPlanMeasureTheme())
	}

	window := application.NewWindow("PlanMeasure — Room Measurement Tool")

	appUI := ui.NewApp(application, window)
	appUI.SetupMenus()
	window.SetContent(appUI.Build())
	window.Resize(fyne.NewSize(1400, 800))
	window.CenterOnScreen()

	window.ShowAndRun()
}
