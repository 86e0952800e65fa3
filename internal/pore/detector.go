package pore

import (
	"errors"
	"fmt"

	"pore-profiler/internal/logger"

	"gocv.io/x/gocv"
)

// Detector runs the full detection pipeline: preprocess, edge extraction,
// contour tracing, validation, and metric computation. It holds no per-image
// state; results are deterministic for a given (image, parameters) pair.
type Detector struct {
	log logger.Logger
}

// NewDetector creates a detector logging through the given logger.
func NewDetector(log logger.Logger) *Detector {
	return &Detector{log: log}
}

// Detect processes one image with the given parameters and returns the
// accepted pores and their metric records. The source Mat is not modified.
func (d *Detector) Detect(src gocv.Mat, p Params, sourceFilename string) (*Result, error) {
	if src.Empty() {
		return nil, fmt.Errorf("empty image: %s", sourceFilename)
	}

	p = p.Sanitized()

	binary := Preprocess(src, p)
	defer binary.Close()

	edges := DetectEdges(binary, p)
	defer edges.Close()

	contours := ExtractContours(edges)
	accepted, rejected := Validate(contours, p)

	result := &Result{
		SourceFilename: sourceFilename,
		Params:         p,
		Rejected:       rejected,
	}

	for _, c := range accepted {
		record, err := ComputeMetrics(c, sourceFilename)
		if err != nil {
			var degenerate *DegenerateContourError
			if errors.As(err, &degenerate) {
				result.Degenerate++
				d.log.Debug("Detector", "dropped degenerate contour", map[string]interface{}{
					"file": sourceFilename,
					"area": degenerate.Area,
				})
				continue
			}
			return nil, err
		}

		result.Pores = append(result.Pores, Pore{
			Contour:     c,
			Perimeter:   record.PerimeterPx,
			Area:        record.AreaPx,
			Circularity: record.Circularity,
			PoreFactor:  record.PoreFactor,
		})
		result.Records = append(result.Records, record)
	}

	d.log.Debug("Detector", "detection pass complete", map[string]interface{}{
		"file":       sourceFilename,
		"traced":     len(contours),
		"accepted":   len(result.Records),
		"rejected":   rejected,
		"degenerate": result.Degenerate,
	})

	return result, nil
}
