// Package export writes the per-image artifacts: an annotated copy of the
// source image for visual audit, a row-per-pore metrics table, and the
// batch-level concatenated dataset consumed by the statistics stage.
package export

import (
	"encoding/csv"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pore-profiler/internal/logger"
	"pore-profiler/internal/pore"
	"pore-profiler/internal/scale"
	"pore-profiler/internal/stats"

	"gocv.io/x/gocv"
)

// Subdirectories created under the output directory, following the layout
// of the original analysis tooling.
const (
	ImageSubdir = "processed_images"
	DataSubdir  = "data"
)

var overlayColor = color.RGBA{R: 0, G: 220, B: 40, A: 255}

// Exporter writes per-image results and accumulates the batch dataset.
// Export failures are reported per file and never abort the batch.
type Exporter struct {
	outputDir string
	log       logger.Logger

	exported  bool
	entries   []batchEntry
	batchRef  *scale.Reference
	summaries [][]string
}

// batchEntry is one accumulated row of the concatenated dataset, kept with
// its own calibration so the schema can be decided once at Finalize.
type batchEntry struct {
	rec pore.Record
	ref *scale.Reference
}

// NewExporter creates an exporter rooted at outputDir, creating the image
// and data subdirectories if needed.
func NewExporter(outputDir string, log logger.Logger) (*Exporter, error) {
	for _, sub := range []string{ImageSubdir, DataSubdir} {
		if err := os.MkdirAll(filepath.Join(outputDir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return &Exporter{outputDir: outputDir, log: log}, nil
}

// Export writes both artifacts for one processed image: the overlay and the
// per-pore table. ref may be nil when no calibration is available. Both
// writes are attempted even if the first fails; the returned error is the
// first failure.
func (e *Exporter) Export(src gocv.Mat, result *pore.Result, ref *scale.Reference) error {
	imgErr := e.exportOverlay(src, result)
	tableErr := e.exportTable(result, ref)

	e.accumulate(result, ref)

	if imgErr != nil {
		return imgErr
	}
	return tableErr
}

// exportOverlay writes a copy of the source image with accepted contour
// boundaries drawn, named <stem>_processed.png.
func (e *Exporter) exportOverlay(src gocv.Mat, result *pore.Result) error {
	overlay := DrawOverlay(src, result.Pores)
	defer overlay.Close()

	path := filepath.Join(e.outputDir, ImageSubdir, stem(result.SourceFilename)+"_processed.png")
	if ok := gocv.IMWrite(path, overlay); !ok {
		return fmt.Errorf("failed to write overlay image %s", path)
	}

	e.log.Debug("Exporter", "overlay written", map[string]interface{}{
		"path":  path,
		"pores": len(result.Pores),
	})
	return nil
}

// exportTable writes the per-pore CSV, named <stem>_data.csv. An image with
// zero accepted pores still produces a valid table with a header only.
func (e *Exporter) exportTable(result *pore.Result, ref *scale.Reference) error {
	path := filepath.Join(e.outputDir, DataSubdir, stem(result.SourceFilename)+"_data.csv")

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create table %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(tableHeader(ref)); err != nil {
		return fmt.Errorf("failed to write table header: %w", err)
	}
	for _, rec := range result.Records {
		if err := w.Write(tableRow(rec, ref)); err != nil {
			return fmt.Errorf("failed to write table row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush table %s: %w", path, err)
	}

	e.log.Debug("Exporter", "table written", map[string]interface{}{
		"path": path,
		"rows": len(result.Records),
	})
	return nil
}

// Finalize writes the batch-level artifacts: the concatenated dataset and
// the per-image summary table. Call once after the last image.
func (e *Exporter) Finalize() error {
	if err := e.writeCSV(filepath.Join(e.outputDir, DataSubdir, "all_pores.csv"), e.batchDataset()); err != nil {
		return err
	}
	return e.writeCSV(filepath.Join(e.outputDir, DataSubdir, "batch_summary.csv"), e.summaries)
}

// batchDataset renders the concatenated dataset with one fixed schema. The
// calibration column is included whenever any image in the batch carried a
// reference and left blank on rows without one, so every row has the same
// field count.
func (e *Exporter) batchDataset() [][]string {
	if !e.exported {
		return nil
	}

	rows := [][]string{tableHeader(e.batchRef)}
	for _, entry := range e.entries {
		row := tableRow(entry.rec, nil)
		if e.batchRef != nil {
			if entry.ref != nil {
				row = append(row, formatFloat(entry.ref.Pixels))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func (e *Exporter) accumulate(result *pore.Result, ref *scale.Reference) {
	e.exported = true
	if ref != nil {
		r := *ref
		ref = &r
		if e.batchRef == nil {
			e.batchRef = ref
		}
	}
	for _, rec := range result.Records {
		e.entries = append(e.entries, batchEntry{rec: rec, ref: ref})
	}

	if len(e.summaries) == 0 {
		e.summaries = append(e.summaries, []string{
			"filename", "pore_count", "mean_area_px", "total_area_px",
			"mean_pore_factor", "stddev_pore_factor", "median_pore_factor",
		})
	}
	s := stats.Summarize(result.Records)
	e.summaries = append(e.summaries, []string{
		result.SourceFilename,
		strconv.Itoa(s.Count),
		formatFloat(s.MeanArea),
		formatFloat(s.TotalArea),
		formatFloat(s.MeanPoreFactor),
		formatFloat(s.StdDevPoreFactor),
		formatFloat(s.MedianPoreFactor),
	})
}

func (e *Exporter) writeCSV(path string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// DrawOverlay returns a color copy of src with the accepted pore boundaries
// drawn. The caller owns the returned Mat.
func DrawOverlay(src gocv.Mat, pores []pore.Pore) gocv.Mat {
	var overlay gocv.Mat
	if src.Channels() == 1 {
		overlay = gocv.NewMat()
		gocv.CvtColor(src, &overlay, gocv.ColorGrayToBGR)
	} else {
		overlay = src.Clone()
	}

	if len(pores) == 0 {
		return overlay
	}

	points := make([][]image.Point, len(pores))
	for i, p := range pores {
		pts := make([]image.Point, len(p.Contour))
		for j, v := range p.Contour {
			pts[j] = image.Pt(int(v.X+0.5), int(v.Y+0.5))
		}
		points[i] = pts
	}

	pv := gocv.NewPointsVectorFromPoints(points)
	defer pv.Close()
	gocv.DrawContours(&overlay, pv, -1, overlayColor, 2)

	// Centroid markers for visual correspondence with the data table
	for _, p := range pores {
		c := p.Contour.Centroid()
		gocv.Circle(&overlay, image.Pt(int(c.X+0.5), int(c.Y+0.5)), 3, overlayColor, -1)
	}

	return overlay
}

func tableHeader(ref *scale.Reference) []string {
	header := []string{"filename", "perimeter_px", "area_px", "circularity", "pore_factor"}
	if ref != nil {
		header = append(header, ref.Column())
	}
	return header
}

func tableRow(rec pore.Record, ref *scale.Reference) []string {
	row := []string{
		rec.SourceFilename,
		formatFloat(rec.PerimeterPx),
		formatFloat(rec.AreaPx),
		formatFloat(rec.Circularity),
		formatFloat(rec.PoreFactor),
	}
	if ref != nil {
		row = append(row, formatFloat(ref.Pixels))
	}
	return row
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func stem(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
