package pore

// ParamKey identifies a single tunable parameter.
type ParamKey string

const (
	KeyGaussianKernel  ParamKey = "gaussian_kernel"
	KeyMedianKernel    ParamKey = "median_kernel"
	KeyBinaryThreshold ParamKey = "binary_threshold"
	KeyCannyLow        ParamKey = "canny_low"
	KeyCannyHigh       ParamKey = "canny_high"
	KeyDilationKernel  ParamKey = "dilation_kernel"
	KeyMinContourArea  ParamKey = "min_contour_area"
	KeyMinCircularity  ParamKey = "min_circularity"
	KeyApproxEpsilon   ParamKey = "approx_epsilon"
)

// ParamSpec declares the operator-facing contract of one parameter: its
// valid range, slider step, and display label.
type ParamSpec struct {
	Key   ParamKey
	Label string
	Min   float64
	Max   float64
	Step  float64
}

// ParamSpecs returns the declared parameter surface in display order.
func ParamSpecs() []ParamSpec {
	return []ParamSpec{
		{Key: KeyBinaryThreshold, Label: "Binary Threshold", Min: ThresholdMin, Max: ThresholdMax, Step: 1},
		{Key: KeyCannyLow, Label: "Canny Low", Min: ThresholdMin, Max: ThresholdMax, Step: 1},
		{Key: KeyCannyHigh, Label: "Canny High", Min: ThresholdMin, Max: ThresholdMax, Step: 1},
		{Key: KeyApproxEpsilon, Label: "Approximation Epsilon", Min: EpsilonMin, Max: EpsilonMax, Step: 0.0001},
		{Key: KeyMinCircularity, Label: "Min Circularity", Min: CircularityMin, Max: CircularityMax, Step: 0.001},
		{Key: KeyMinContourArea, Label: "Min Area", Min: AreaMin, Max: AreaMax, Step: 100},
		{Key: KeyDilationKernel, Label: "Dilation Kernel", Min: KernelMin, Max: DilationMax, Step: 2},
		{Key: KeyGaussianKernel, Label: "Gaussian Kernel", Min: KernelMin, Max: KernelMax, Step: 2},
		{Key: KeyMedianKernel, Label: "Median Kernel", Min: KernelMin, Max: KernelMax, Step: 2},
	}
}

// Value returns the current value of the given parameter.
func (p Params) Value(key ParamKey) float64 {
	switch key {
	case KeyGaussianKernel:
		return float64(p.GaussianKernel)
	case KeyMedianKernel:
		return float64(p.MedianKernel)
	case KeyBinaryThreshold:
		return p.BinaryThreshold
	case KeyCannyLow:
		return p.CannyLow
	case KeyCannyHigh:
		return p.CannyHigh
	case KeyDilationKernel:
		return float64(p.DilationKernel)
	case KeyMinContourArea:
		return p.MinContourArea
	case KeyMinCircularity:
		return p.MinCircularity
	case KeyApproxEpsilon:
		return p.ApproxEpsilon
	default:
		return 0
	}
}

// WithValue returns a copy of the parameters with the given parameter set.
// The copy is not sanitized; callers pass it through Sanitized before use.
func (p Params) WithValue(key ParamKey, v float64) Params {
	switch key {
	case KeyGaussianKernel:
		p.GaussianKernel = int(v)
	case KeyMedianKernel:
		p.MedianKernel = int(v)
	case KeyBinaryThreshold:
		p.BinaryThreshold = v
	case KeyCannyLow:
		p.CannyLow = v
	case KeyCannyHigh:
		p.CannyHigh = v
	case KeyDilationKernel:
		p.DilationKernel = int(v)
	case KeyMinContourArea:
		p.MinContourArea = v
	case KeyMinCircularity:
		p.MinCircularity = v
	case KeyApproxEpsilon:
		p.ApproxEpsilon = v
	}
	return p
}
