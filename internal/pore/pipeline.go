package pore

import (
	"image"
	"sort"

	"pore-profiler/pkg/geometry"

	"gocv.io/x/gocv"
)

// Preprocess converts the source image into a two-level binary image:
// single-channel conversion, Gaussian blur for general noise suppression,
// median blur for salt-and-pepper artifacts, then a fixed binary threshold.
// The caller owns the returned Mat.
func Preprocess(src gocv.Mat, p Params) gocv.Mat {
	p = p.Sanitized()

	gray := toGray(src)
	defer gray.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	k := p.GaussianKernel
	gocv.GaussianBlur(gray, &blurred, image.Pt(k, k), 0, 0, gocv.BorderDefault)

	// Median blur removes salt-and-pepper noise without smearing edges
	gocv.MedianBlur(blurred, &blurred, p.MedianKernel)

	binary := gocv.NewMat()
	gocv.Threshold(blurred, &binary, float32(p.BinaryThreshold), 255, gocv.ThresholdBinary)
	return binary
}

// DetectEdges runs Canny edge extraction on the binary image and dilates the
// result to close small gaps in pore boundaries. Unclosed edges would
// otherwise prevent contour tracing from forming a loop. The caller owns the
// returned Mat.
func DetectEdges(binary gocv.Mat, p Params) gocv.Mat {
	p = p.Sanitized()

	edges := gocv.NewMat()
	gocv.Canny(binary, &edges, float32(p.CannyLow), float32(p.CannyHigh))

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(p.DilationKernel, p.DilationKernel))
	defer kernel.Close()
	gocv.Dilate(edges, &edges, kernel)

	return edges
}

// ExtractContours traces all closed external boundaries in the edge map.
// OpenCV's scan order is deterministic for identical input, so the result is
// reproducible; acceptance ordering is additionally pinned in Validate.
func ExtractContours(edges gocv.Mat) [][]image.Point {
	pv := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer pv.Close()

	contours := make([][]image.Point, 0, pv.Size())
	for i := 0; i < pv.Size(); i++ {
		contours = append(contours, pv.At(i).ToPoints())
	}
	return contours
}

// Validate simplifies each contour with a perimeter-scaled polygon
// approximation, then accepts it iff the simplified shape satisfies both the
// area and circularity thresholds. Accepted contours are returned sorted by
// bounding-box position (top-to-bottom, then left-to-right) so record order
// is stable for a given image and parameter set. The second return value is
// the number of rejected contours.
func Validate(contours [][]image.Point, p Params) ([]geometry.Contour, int) {
	p = p.Sanitized()

	var accepted []geometry.Contour
	rejected := 0
	for _, raw := range contours {
		c := simplify(raw, p.ApproxEpsilon)
		if len(c) < 3 {
			rejected++
			continue
		}

		area := c.Area()
		if area < p.MinContourArea || c.Circularity() < p.MinCircularity {
			rejected++
			continue
		}
		accepted = append(accepted, c)
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		bi, bj := accepted[i].Bounds(), accepted[j].Bounds()
		if bi.Y != bj.Y {
			return bi.Y < bj.Y
		}
		return bi.X < bj.X
	})

	return accepted, rejected
}

// simplify runs Douglas-Peucker approximation with a tolerance scaled to the
// contour's own perimeter, making the aggressiveness resolution-independent.
func simplify(raw []image.Point, epsilonFrac float64) geometry.Contour {
	if len(raw) < 3 {
		return toContour(raw)
	}

	pv := gocv.NewPointVectorFromPoints(raw)
	defer pv.Close()

	perimeter := gocv.ArcLength(pv, true)
	if perimeter <= 0 {
		return toContour(raw)
	}

	approx := gocv.ApproxPolyDP(pv, epsilonFrac*perimeter, true)
	defer approx.Close()

	return toContour(approx.ToPoints())
}

// toGray returns a single-channel copy of src. The caller owns the result.
func toGray(src gocv.Mat) gocv.Mat {
	switch src.Channels() {
	case 3:
		gray := gocv.NewMat()
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
		return gray
	case 4:
		gray := gocv.NewMat()
		gocv.CvtColor(src, &gray, gocv.ColorBGRAToGray)
		return gray
	default:
		return src.Clone()
	}
}

func toContour(pts []image.Point) geometry.Contour {
	c := make(geometry.Contour, len(pts))
	for i, pt := range pts {
		c[i] = geometry.Point2D{X: float64(pt.X), Y: float64(pt.Y)}
	}
	return c
}
