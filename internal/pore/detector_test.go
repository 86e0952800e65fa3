package pore

import (
	"image"
	"image/color"
	"math"
	"reflect"
	"testing"

	"pore-profiler/internal/logger"

	"gocv.io/x/gocv"
)

// whiteCanvas creates a single-channel all-white test image.
func whiteCanvas(rows, cols int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 255), rows, cols, gocv.MatTypeCV8UC1)
}

func TestDetectSingleCircle(t *testing.T) {
	img := whiteCanvas(200, 200)
	defer img.Close()
	gocv.Circle(&img, image.Pt(100, 100), 20, color.RGBA{}, -1)

	d := NewDetector(logger.Nop())
	result, err := d.Detect(img, DefaultParams(), "circle.png")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(result.Records) != 1 {
		t.Fatalf("Expected exactly 1 pore record, got %d", len(result.Records))
	}

	rec := result.Records[0]
	// Edge dilation inflates the traced boundary by a couple of pixels, so
	// compare against the ideal circle with a proportionate tolerance.
	idealArea := math.Pi * 20 * 20     // ≈1257
	idealPerimeter := 2 * math.Pi * 20 // ≈126
	if rec.AreaPx < idealArea*0.85 || rec.AreaPx > idealArea*1.35 {
		t.Errorf("Expected area near %f, got %f", idealArea, rec.AreaPx)
	}
	if rec.PerimeterPx < idealPerimeter*0.9 || rec.PerimeterPx > idealPerimeter*1.2 {
		t.Errorf("Expected perimeter near %f, got %f", idealPerimeter, rec.PerimeterPx)
	}
	if rec.PoreFactor < 0.9 || rec.PoreFactor > 1.2 {
		t.Errorf("Expected pore factor ~1.0, got %f", rec.PoreFactor)
	}
	if rec.SourceFilename != "circle.png" {
		t.Errorf("Expected filename tag on record, got %q", rec.SourceFilename)
	}
}

func TestDetectScratchRejectedByCircularity(t *testing.T) {
	img := whiteCanvas(200, 200)
	defer img.Close()
	gocv.Circle(&img, image.Pt(100, 100), 20, color.RGBA{}, -1)
	// Thin scratch across the bottom of the image, clear of the circle
	gocv.Line(&img, image.Pt(5, 180), image.Pt(195, 170), color.RGBA{}, 2)

	d := NewDetector(logger.Nop())
	result, err := d.Detect(img, DefaultParams(), "scratched.png")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(result.Records) != 1 {
		t.Fatalf("Expected the scratch to be filtered out, got %d records", len(result.Records))
	}
	if result.Rejected == 0 {
		t.Error("Expected at least one rejected contour for the scratch")
	}
	if result.Records[0].PoreFactor > 1.2 {
		t.Errorf("Surviving record should be the circle, got pore factor %f", result.Records[0].PoreFactor)
	}
}

func TestDetectBlankImage(t *testing.T) {
	img := whiteCanvas(200, 200)
	defer img.Close()

	d := NewDetector(logger.Nop())
	result, err := d.Detect(img, DefaultParams(), "blank.png")
	if err != nil {
		t.Fatalf("Expected blank image to succeed, got %v", err)
	}
	if len(result.Records) != 0 {
		t.Errorf("Expected 0 records for a blank image, got %d", len(result.Records))
	}
}

func TestDetectDeterministic(t *testing.T) {
	img := whiteCanvas(200, 200)
	defer img.Close()
	gocv.Circle(&img, image.Pt(60, 60), 18, color.RGBA{}, -1)
	gocv.Circle(&img, image.Pt(140, 130), 25, color.RGBA{}, -1)

	d := NewDetector(logger.Nop())
	first, err := d.Detect(img, DefaultParams(), "pair.png")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, err := d.Detect(img, DefaultParams(), "pair.png")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first.Records, second.Records) {
		t.Errorf("Expected identical record sets across runs:\n%+v\n%+v", first.Records, second.Records)
	}
}

func TestDetectRecordOrderStable(t *testing.T) {
	img := whiteCanvas(200, 200)
	defer img.Close()
	gocv.Circle(&img, image.Pt(150, 40), 15, color.RGBA{}, -1)
	gocv.Circle(&img, image.Pt(40, 150), 15, color.RGBA{}, -1)

	d := NewDetector(logger.Nop())
	result, err := d.Detect(img, DefaultParams(), "two.png")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Pores) != 2 {
		t.Fatalf("Expected 2 pores, got %d", len(result.Pores))
	}

	// Sorted top-to-bottom: the circle at y=40 comes first
	if result.Pores[0].Bounds().Y > result.Pores[1].Bounds().Y {
		t.Error("Expected pores ordered by bounding-box top edge")
	}
}

func TestDetectMinAreaMonotonic(t *testing.T) {
	img := whiteCanvas(200, 200)
	defer img.Close()
	gocv.Circle(&img, image.Pt(60, 60), 20, color.RGBA{}, -1)
	gocv.Circle(&img, image.Pt(150, 150), 8, color.RGBA{}, -1)

	d := NewDetector(logger.Nop())
	prev := math.MaxInt
	for _, minArea := range []float64{0, 300, 2000, 50000} {
		p := DefaultParams()
		p.MinContourArea = minArea

		result, err := d.Detect(img, p, "mono.png")
		if err != nil {
			t.Fatalf("Unexpected error at minArea=%f: %v", minArea, err)
		}
		if len(result.Records) > prev {
			t.Errorf("Raising minArea to %f increased accepted count from %d to %d",
				minArea, prev, len(result.Records))
		}
		prev = len(result.Records)
	}
}

func TestDetectEvenKernelBehavesAsClamped(t *testing.T) {
	img := whiteCanvas(200, 200)
	defer img.Close()
	gocv.Circle(&img, image.Pt(100, 100), 20, color.RGBA{}, -1)

	d := NewDetector(logger.Nop())

	even := DefaultParams()
	even.GaussianKernel = 4

	odd := DefaultParams()
	odd.GaussianKernel = 5

	evenResult, err := d.Detect(img, even, "even.png")
	if err != nil {
		t.Fatalf("Even kernel size must not error: %v", err)
	}
	oddResult, err := d.Detect(img, odd, "odd.png")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if evenResult.Params.GaussianKernel != 5 {
		t.Errorf("Expected kernel 4 to run as 5, got %d", evenResult.Params.GaussianKernel)
	}
	if len(evenResult.Records) != len(oddResult.Records) {
		t.Errorf("Expected identical detection for kernel 4 and 5, got %d vs %d records",
			len(evenResult.Records), len(oddResult.Records))
	}
}

func TestDetectEmptyMat(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	d := NewDetector(logger.Nop())
	if _, err := d.Detect(empty, DefaultParams(), "empty.png"); err == nil {
		t.Fatal("Expected error for empty Mat")
	}
}
