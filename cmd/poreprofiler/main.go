// Command poreprofiler runs the interactive pore analysis session over a
// directory of micrographs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"pore-profiler/internal/app"
	"pore-profiler/internal/batch"
	"pore-profiler/internal/export"
	"pore-profiler/internal/imageio"
	"pore-profiler/internal/logger"
	"pore-profiler/internal/pore"
	"pore-profiler/internal/scale"
	"pore-profiler/internal/tuner"
	"pore-profiler/ui/mainwindow"

	fyneapp "fyne.io/fyne/v2/app"
)

func main() {
	inputDir := flag.String("input", ".", "Directory of micrographs to process")
	outputDir := flag.String("output", "results", "Output directory for processed images and data tables")
	sidecarPath := flag.String("scale", "", "Calibration sidecar CSV (default <input>/scale.csv)")
	headless := flag.Bool("headless", false, "Process the whole batch with default parameters, without the tuning UI")
	flag.Parse()

	log := logger.NewConsole()

	if *headless {
		runHeadless(*inputDir, *outputDir, *sidecarPath, log)
		return
	}

	state := app.NewState(*inputDir, *outputDir)

	files, err := imageio.ListImages(*inputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list input directory: %v\n", err)
		os.Exit(1)
	}
	state.SetFiles(files)
	state.SetCalibrations(loadCalibrations(*inputDir, *sidecarPath, log))

	exporter, err := export.NewExporter(*outputDir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to prepare output directory: %v\n", err)
		os.Exit(1)
	}

	tu := tuner.New(state, pore.NewDetector(log), log)
	tu.Start()
	defer tu.Stop()

	fyneApp := fyneapp.NewWithID("io.poreprofiler.app")
	win := mainwindow.New(fyneApp, state, tu, exporter, log)
	win.Start()
	win.ShowAndRun()
}

func runHeadless(inputDir, outputDir, sidecarPath string, log logger.Logger) {
	runner := batch.NewRunner(batch.Options{
		InputDir:    inputDir,
		OutputDir:   outputDir,
		Params:      pore.DefaultParams(),
		SidecarPath: sidecarPath,
	}, log)

	report, err := runner.Run(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Batch failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Processed %d/%d images (%d skipped, %d export failures), %d pores accepted\n",
		report.Processed, report.Total, report.Skipped, report.ExportFailures, report.PoresAccepted)
}

// loadCalibrations reads the sidecar if one exists. Calibration is optional;
// failures only disable the calibration column.
func loadCalibrations(inputDir, sidecarPath string, log logger.Logger) map[string]scale.Reference {
	path := sidecarPath
	if path == "" {
		path = filepath.Join(inputDir, batch.SidecarName)
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	refs, err := scale.LoadSidecar(path)
	if err != nil {
		log.Warn("Main", "ignoring malformed calibration sidecar", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return nil
	}
	return refs
}
