package pore

import (
	"fmt"
	"math"

	"pore-profiler/pkg/geometry"
)

// MinMetricArea is the numerical floor below which a contour is considered
// degenerate: pore factor divides by area, so near-zero areas would produce
// infinite or meaningless values.
const MinMetricArea = 1.0 // px²

// DegenerateContourError reports a contour whose area is below the metric
// floor. The caller drops the contour and continues with the rest.
type DegenerateContourError struct {
	Area float64
}

func (e *DegenerateContourError) Error() string {
	return fmt.Sprintf("degenerate contour: area %.4f px² below %.0f px² floor", e.Area, MinMetricArea)
}

// ComputeMetrics derives the per-pore descriptors from a simplified contour.
//
// Pore factor is perimeter²/(4π·area), the reciprocal of circularity: 1.0
// for a perfect circle, growing with boundary irregularity. The legacy tool
// normalized by 16 instead of 4π; that put the ideal-circle reference at
// π/4 rather than the 1.0 baseline all downstream plots assume.
func ComputeMetrics(contour geometry.Contour, sourceFilename string) (Record, error) {
	area := contour.Area()
	if area < MinMetricArea {
		return Record{}, &DegenerateContourError{Area: area}
	}

	perimeter := contour.Perimeter()
	poreFactor := perimeter * perimeter / (4 * math.Pi * area)

	return Record{
		SourceFilename: sourceFilename,
		PerimeterPx:    perimeter,
		AreaPx:         area,
		Circularity:    1 / poreFactor,
		PoreFactor:     poreFactor,
	}, nil
}
