// Package batch runs the detection and export pipeline over a directory of
// micrographs, one image at a time. Per-image failures are logged and
// skipped; nothing short of an unreadable input directory aborts the batch.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"pore-profiler/internal/export"
	"pore-profiler/internal/imageio"
	"pore-profiler/internal/logger"
	"pore-profiler/internal/pore"
	"pore-profiler/internal/scale"
)

// SidecarName is the calibration file looked up in the input directory when
// no explicit sidecar path is given.
const SidecarName = "scale.csv"

// Options configures a batch run.
type Options struct {
	InputDir  string
	OutputDir string
	Params    pore.Params

	// SidecarPath overrides the default <InputDir>/scale.csv lookup.
	// Calibration is best-effort; a missing sidecar is not an error.
	SidecarPath string
}

// Report summarizes a completed batch run.
type Report struct {
	Total          int
	Processed      int
	Skipped        int
	ExportFailures int
	PoresAccepted  int
}

// Runner processes every supported image in the input directory with a
// fixed parameter set, without the interactive tuning loop.
type Runner struct {
	opts     Options
	log      logger.Logger
	detector *pore.Detector
}

// NewRunner creates a headless batch runner.
func NewRunner(opts Options, log logger.Logger) *Runner {
	opts.Params = opts.Params.Sanitized()
	return &Runner{
		opts:     opts,
		log:      log,
		detector: pore.NewDetector(log),
	}
}

// Run processes the batch sequentially. Cancellation is honored between
// images, never mid-image.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	var report Report

	files, err := imageio.ListImages(r.opts.InputDir)
	if err != nil {
		return report, fmt.Errorf("failed to list input directory: %w", err)
	}
	report.Total = len(files)

	refs := r.loadCalibrations()

	exporter, err := export.NewExporter(r.opts.OutputDir, r.log)
	if err != nil {
		return report, err
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		r.processOne(path, refs, exporter, &report)
	}

	if err := exporter.Finalize(); err != nil {
		r.log.Error("Batch", "failed to write batch dataset", map[string]interface{}{
			"error": err.Error(),
		})
		report.ExportFailures++
	}

	r.log.Info("Batch", "run complete", map[string]interface{}{
		"total":           report.Total,
		"processed":       report.Processed,
		"skipped":         report.Skipped,
		"export_failures": report.ExportFailures,
		"pores":           report.PoresAccepted,
	})
	return report, nil
}

func (r *Runner) processOne(path string, refs map[string]scale.Reference, exporter *export.Exporter, report *Report) {
	img, err := imageio.Load(path)
	if err != nil {
		r.log.Warn("Batch", "skipping unreadable image", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		report.Skipped++
		return
	}
	defer img.Close()

	result, err := r.detector.Detect(img.Mat, r.opts.Params, img.Filename)
	if err != nil {
		r.log.Warn("Batch", "skipping undetectable image", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		report.Skipped++
		return
	}

	var ref *scale.Reference
	if v, ok := refs[img.Filename]; ok {
		ref = &v
	}

	if err := exporter.Export(img.Mat, result, ref); err != nil {
		r.log.Error("Batch", "export failed", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		report.ExportFailures++
	}

	report.Processed++
	report.PoresAccepted += len(result.Records)
}

// loadCalibrations reads the sidecar if present. Absence or a malformed
// sidecar only disables the calibration column.
func (r *Runner) loadCalibrations() map[string]scale.Reference {
	path := r.opts.SidecarPath
	if path == "" {
		path = filepath.Join(r.opts.InputDir, SidecarName)
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	refs, err := scale.LoadSidecar(path)
	if err != nil {
		r.log.Warn("Batch", "ignoring malformed calibration sidecar", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return nil
	}

	r.log.Info("Batch", "calibration sidecar loaded", map[string]interface{}{
		"path":    path,
		"entries": len(refs),
	})
	return refs
}
