// Package mainwindow provides the main application window for the
// interactive tuning session.
package mainwindow

import (
	"fmt"

	"pore-profiler/internal/app"
	"pore-profiler/internal/export"
	"pore-profiler/internal/imageio"
	"pore-profiler/internal/logger"
	"pore-profiler/internal/meta"
	"pore-profiler/internal/pore"
	"pore-profiler/internal/stats"
	"pore-profiler/internal/tuner"
	"pore-profiler/ui/panels"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// MainWindow is the primary application window: sliders on the left, the
// annotated preview on the right, status and progression at the bottom.
type MainWindow struct {
	fyne.Window
	app      fyne.App
	state    *app.State
	tuner    *tuner.Tuner
	exporter *export.Exporter
	log      logger.Logger

	paramsPanel  *panels.ParamsPanel
	previewPanel *panels.PreviewPanel
	statusBar    *widget.Label
	sampleLabel  *widget.Label
	saveNextBtn  *widget.Button
}

// New creates the main window and wires the event handlers.
func New(fyneApp fyne.App, state *app.State, tu *tuner.Tuner, exporter *export.Exporter, log logger.Logger) *MainWindow {
	win := fyneApp.NewWindow("Pore Profiler")

	mw := &MainWindow{
		Window:   win,
		app:      fyneApp,
		state:    state,
		tuner:    tu,
		exporter: exporter,
		log:      log,
	}

	mw.setupUI()
	mw.setupEventHandlers()

	return mw
}

func (mw *MainWindow) setupUI() {
	mw.paramsPanel = panels.NewParamsPanel(mw.state, mw.tuner.Apply)
	mw.previewPanel = panels.NewPreviewPanel()
	mw.statusBar = widget.NewLabel("Ready")
	mw.sampleLabel = widget.NewLabel("")

	mw.saveNextBtn = widget.NewButton("Save & Next", mw.onSaveNext)
	mw.saveNextBtn.Importance = widget.HighImportance

	sidebar := container.NewBorder(
		mw.sampleLabel,
		mw.saveNextBtn,
		nil,
		nil,
		mw.paramsPanel.Container(),
	)

	split := container.NewHSplit(sidebar, mw.previewPanel.Container())
	split.SetOffset(0.3)

	mw.SetContent(container.NewBorder(nil, mw.statusBar, nil, nil, split))
	mw.Resize(fyne.NewSize(1100, 760))
}

func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventDetectionComplete, func(data interface{}) {
		result, ok := data.(*pore.Result)
		if !ok {
			return
		}
		mw.showResult(result)
	})

	mw.state.On(app.EventTunerPhase, func(data interface{}) {
		phase, ok := data.(tuner.Phase)
		if !ok || phase != tuner.PhaseRecomputing {
			return
		}
		mw.statusBar.SetText("Detection " + phase.String() + "...")
	})

	mw.state.On(app.EventImageLoaded, func(data interface{}) {
		img, ok := data.(*imageio.Image)
		if !ok || img == nil {
			return
		}
		m := meta.ParseFilename(img.Filename)
		if m.Conforms() {
			mw.sampleLabel.SetText(fmt.Sprintf("%s / %s / %s", m.Sample, m.Composition, m.Date.Format("2006-01-02")))
		} else {
			mw.sampleLabel.SetText(m.Sample)
		}

		current, total := mw.state.Progress()
		mw.SetTitle(fmt.Sprintf("Pore Profiler - %d/%d - %s", current, total, img.Filename))
	})
}

// Start loads the first image of the batch and kicks off the initial
// detection pass.
func (mw *MainWindow) Start() {
	path := mw.state.CurrentPath()
	if path == "" {
		mw.statusBar.SetText("No supported images in input directory")
		mw.saveNextBtn.Disable()
		return
	}
	mw.loadImage(path)
}

// showResult renders the overlay and the status line for a detection pass.
func (mw *MainWindow) showResult(result *pore.Result) {
	img := mw.state.CurrentImage()
	if img == nil {
		return
	}

	overlay := export.DrawOverlay(img.Mat, result.Pores)
	defer overlay.Close()
	preview, err := overlay.ToImage()
	if err != nil {
		mw.log.Error("MainWindow", "failed to render preview", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	mw.previewPanel.Update(preview)

	summary := stats.Summarize(result.Records)
	mw.statusBar.SetText(fmt.Sprintf("%s | %d rejected", summary.String(), result.Rejected))
}

// onSaveNext exports the current result and advances to the next image,
// carrying the parameter set over.
func (mw *MainWindow) onSaveNext() {
	img := mw.state.CurrentImage()
	result := mw.state.Result()
	if img == nil || result == nil {
		return
	}

	ref := mw.state.CalibrationFor(img.Filename)
	if err := mw.exporter.Export(img.Mat, result, ref); err != nil {
		mw.log.Error("MainWindow", "export failed", map[string]interface{}{
			"file":  img.Filename,
			"error": err.Error(),
		})
		mw.statusBar.SetText(fmt.Sprintf("Export failed for %s: %v", img.Filename, err))
	} else {
		mw.state.Emit(app.EventExported, img.Filename)
	}

	path, ok := mw.state.Advance()
	if !ok {
		mw.finishBatch()
		return
	}
	mw.loadImage(path)
}

// loadImage installs the image at path, skipping forward past unreadable
// files, and triggers a detection pass with the carried-over parameters.
func (mw *MainWindow) loadImage(path string) {
	for {
		img, err := imageio.Load(path)
		if err == nil {
			mw.state.SetCurrentImage(img)
			mw.paramsPanel.Refresh(mw.state.Params())
			mw.tuner.Recompute()
			return
		}

		mw.log.Warn("MainWindow", "skipping unreadable image", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})

		var ok bool
		path, ok = mw.state.Advance()
		if !ok {
			mw.finishBatch()
			return
		}
	}
}

func (mw *MainWindow) finishBatch() {
	if err := mw.exporter.Finalize(); err != nil {
		mw.log.Error("MainWindow", "failed to write batch dataset", map[string]interface{}{
			"error": err.Error(),
		})
	}
	mw.state.Emit(app.EventBatchFinished, nil)
	mw.statusBar.SetText("Batch complete")
	mw.saveNextBtn.Disable()
}
