// Package stats computes descriptive per-image summaries of the extracted
// pore metrics, for the tuner status line and the batch summary table.
// Inferential statistics live in the downstream analysis stage, not here.
package stats

import (
	"fmt"
	"sort"

	"pore-profiler/internal/pore"

	"gonum.org/v1/gonum/stat"
)

// Summary holds descriptive statistics for one image's accepted pores.
type Summary struct {
	Count            int
	MeanArea         float64
	TotalArea        float64
	MeanPoreFactor   float64
	StdDevPoreFactor float64
	MedianPoreFactor float64
}

// Summarize computes the summary for a set of records. A nil or empty set
// yields a zero summary with Count 0.
func Summarize(records []pore.Record) Summary {
	if len(records) == 0 {
		return Summary{}
	}

	areas := make([]float64, len(records))
	factors := make([]float64, len(records))
	for i, r := range records {
		areas[i] = r.AreaPx
		factors[i] = r.PoreFactor
	}

	s := Summary{
		Count:          len(records),
		MeanArea:       stat.Mean(areas, nil),
		MeanPoreFactor: stat.Mean(factors, nil),
	}
	for _, a := range areas {
		s.TotalArea += a
	}
	if len(factors) > 1 {
		s.StdDevPoreFactor = stat.StdDev(factors, nil)
	}

	sorted := append([]float64(nil), factors...)
	sort.Float64s(sorted)
	s.MedianPoreFactor = stat.Quantile(0.5, stat.Empirical, sorted, nil)

	return s
}

// String renders the one-line form shown in the tuner status bar.
func (s Summary) String() string {
	if s.Count == 0 {
		return "no pores accepted"
	}
	return fmt.Sprintf("%d pores | mean area %.0f px² | pore factor %.2f ± %.2f (median %.2f)",
		s.Count, s.MeanArea, s.MeanPoreFactor, s.StdDevPoreFactor, s.MedianPoreFactor)
}
