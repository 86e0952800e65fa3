package pore

// Params holds the tunable configuration for one pass of the detection
// pipeline. Stages receive it read-only; only the tuner mutates it, and the
// last-used values carry over as defaults for the next image in the batch.
type Params struct {
	// Noise suppression kernel sizes (pixels, odd)
	GaussianKernel int `json:"gaussian_kernel"`
	MedianKernel   int `json:"median_kernel"`

	// Binarization
	BinaryThreshold float64 `json:"binary_threshold"`

	// Canny hysteresis thresholds (low <= high)
	CannyLow  float64 `json:"canny_low"`
	CannyHigh float64 `json:"canny_high"`

	// Edge dilation kernel (pixels, odd); closes gaps so boundary tracing
	// can form loops
	DilationKernel int `json:"dilation_kernel"`

	// Contour acceptance
	MinContourArea float64 `json:"min_contour_area"` // px²
	MinCircularity float64 `json:"min_circularity"`  // 0-1

	// Polygon approximation tolerance as a fraction of each contour's own
	// perimeter, so aggressiveness is resolution-independent
	ApproxEpsilon float64 `json:"approx_epsilon"`
}

// DefaultParams returns default detection parameters. These are starting
// points for interactive tuning, chosen for background-removed micrographs
// of porous scaffolds.
func DefaultParams() Params {
	return Params{
		GaussianKernel:  5,
		MedianKernel:    5,
		BinaryThreshold: 128,
		CannyLow:        10,
		CannyHigh:       50,
		DilationKernel:  3,
		MinContourArea:  50,  // Rejects noise specks and sensor artifacts
		MinCircularity:  0.7, // Rejects scratches and merged pore boundaries
		ApproxEpsilon:   0.01,
	}
}

// Parameter range constants. Operator input outside these bounds is clamped,
// never rejected.
const (
	KernelMin       = 3
	KernelMax       = 201
	DilationMax     = 111
	ThresholdMin    = 0
	ThresholdMax    = 255
	AreaMin         = 0
	AreaMax         = 100000
	CircularityMin  = 0.0
	CircularityMax  = 1.0
	EpsilonMin      = 0.0001
	EpsilonMax      = 0.05
)

// Sanitized returns a copy of the parameters with every value clamped into
// its valid range. Kernel sizes round up to the nearest odd value >= 3, and
// CannyLow is pulled down to CannyHigh when the pair is inverted, so tuning
// can never crash the pipeline.
func (p Params) Sanitized() Params {
	p.GaussianKernel = oddKernel(p.GaussianKernel, KernelMax)
	p.MedianKernel = oddKernel(p.MedianKernel, KernelMax)
	p.DilationKernel = oddKernel(p.DilationKernel, DilationMax)

	p.BinaryThreshold = clamp(p.BinaryThreshold, ThresholdMin, ThresholdMax)
	p.CannyLow = clamp(p.CannyLow, ThresholdMin, ThresholdMax)
	p.CannyHigh = clamp(p.CannyHigh, ThresholdMin, ThresholdMax)
	if p.CannyLow > p.CannyHigh {
		p.CannyLow = p.CannyHigh
	}

	p.MinContourArea = clamp(p.MinContourArea, AreaMin, AreaMax)
	p.MinCircularity = clamp(p.MinCircularity, CircularityMin, CircularityMax)
	p.ApproxEpsilon = clamp(p.ApproxEpsilon, EpsilonMin, EpsilonMax)

	return p
}

// oddKernel rounds n up to the nearest odd value in [3, max].
func oddKernel(n, max int) int {
	if n < KernelMin {
		n = KernelMin
	}
	n |= 1
	if n > max {
		n = max
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
