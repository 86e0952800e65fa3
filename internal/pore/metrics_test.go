package pore

import (
	"errors"
	"math"
	"testing"

	"pore-profiler/pkg/geometry"
)

func TestComputeMetricsCircle(t *testing.T) {
	const radius = 20.0
	circle := geometry.Contour(geometry.GenerateCirclePoints(100, 100, radius, 360))

	record, err := ComputeMetrics(circle, "circle.png")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if record.SourceFilename != "circle.png" {
		t.Errorf("Expected source filename tag, got %q", record.SourceFilename)
	}
	if math.Abs(record.PoreFactor-1.0) > 0.001 {
		t.Errorf("Expected pore factor ~1.0 for a circle, got %f", record.PoreFactor)
	}
	if math.Abs(record.PerimeterPx-2*math.Pi*radius) > 0.1 {
		t.Errorf("Expected perimeter ~%f, got %f", 2*math.Pi*radius, record.PerimeterPx)
	}
	if math.Abs(record.AreaPx-math.Pi*radius*radius) > 1.0 {
		t.Errorf("Expected area ~%f, got %f", math.Pi*radius*radius, record.AreaPx)
	}
	if math.Abs(record.Circularity*record.PoreFactor-1.0) > 1e-9 {
		t.Errorf("Expected circularity to be the reciprocal of pore factor")
	}
}

func TestComputeMetricsIrregularShapeAboveOne(t *testing.T) {
	// A long thin rectangle is far from circular
	sliver := geometry.Contour{
		{X: 0, Y: 0},
		{X: 100, Y: 0},
		{X: 100, Y: 2},
		{X: 0, Y: 2},
	}

	record, err := ComputeMetrics(sliver, "sliver.png")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if record.PoreFactor < 5 {
		t.Errorf("Expected pore factor well above 1.0 for a sliver, got %f", record.PoreFactor)
	}
}

func TestComputeMetricsDegenerateContour(t *testing.T) {
	tiny := geometry.Contour{
		{X: 0, Y: 0},
		{X: 1, Y: 0},
		{X: 0, Y: 1},
	}
	// area 0.5 px², below the metric floor

	_, err := ComputeMetrics(tiny, "tiny.png")
	if err == nil {
		t.Fatal("Expected DegenerateContourError for sub-pixel area")
	}

	var degenerate *DegenerateContourError
	if !errors.As(err, &degenerate) {
		t.Fatalf("Expected DegenerateContourError, got %T: %v", err, err)
	}
	if degenerate.Area != 0.5 {
		t.Errorf("Expected reported area 0.5, got %f", degenerate.Area)
	}
}

func TestComputeMetricsZeroAreaContour(t *testing.T) {
	collinear := geometry.Contour{
		{X: 0, Y: 0},
		{X: 5, Y: 0},
		{X: 10, Y: 0},
	}

	if _, err := ComputeMetrics(collinear, "line.png"); err == nil {
		t.Fatal("Expected error for zero-area contour")
	}
}
