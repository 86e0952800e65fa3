// Package pore provides the image-segmentation and pore-metric-extraction
// pipeline: a background-removed micrograph goes in, validated pore contours
// and per-pore geometric descriptors come out, under tunable detection
// parameters.
package pore

import (
	"pore-profiler/pkg/geometry"
)

// Pore is an accepted pore cross-section: its simplified boundary contour
// and the geometric descriptors derived from it.
type Pore struct {
	Contour     geometry.Contour `json:"contour"`
	Perimeter   float64          `json:"perimeter_px"`
	Area        float64          `json:"area_px"`
	Circularity float64          `json:"circularity"`
	PoreFactor  float64          `json:"pore_factor"`
}

// Bounds returns the bounding rectangle of the pore boundary.
func (p Pore) Bounds() geometry.Rect {
	return p.Contour.Bounds()
}

// Record is one row of the per-image metrics table, tagged with the source
// filename so tables can be concatenated across a batch. Immutable once
// created.
type Record struct {
	SourceFilename string  `json:"filename"`
	PerimeterPx    float64 `json:"perimeter_px"`
	AreaPx         float64 `json:"area_px"`
	Circularity    float64 `json:"circularity"`
	PoreFactor     float64 `json:"pore_factor"`
}

// Result holds the outcome of one detection pass over a single image with a
// single parameter set. Recomputed from scratch on every parameter change;
// never mutated incrementally.
type Result struct {
	SourceFilename string
	Params         Params // Sanitized parameters actually used
	Pores          []Pore
	Records        []Record
	Rejected       int // Contours discarded by area/circularity thresholds
	Degenerate     int // Contours dropped for near-zero area
}
