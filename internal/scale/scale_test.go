package scale

import (
	"strings"
	"testing"
)

func TestParseSidecar(t *testing.T) {
	csv := strings.Join([]string{
		"filename,distance_30_mm_px",
		"S1_PCL-20_2025-03-14_01.png,912.44",
		"S1_PCL-20_2025-03-14_02.png,910.02",
		"broken.png,not-a-number",
	}, "\n")

	refs, err := parseSidecar(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(refs) != 2 {
		t.Fatalf("Expected 2 calibration rows (malformed skipped), got %d", len(refs))
	}

	ref, ok := refs["S1_PCL-20_2025-03-14_01.png"]
	if !ok {
		t.Fatal("Expected calibration for first image")
	}
	if ref.KnownMM != 30 {
		t.Errorf("Expected known distance 30 mm, got %f", ref.KnownMM)
	}
	if ref.Pixels != 912.44 {
		t.Errorf("Expected 912.44 px, got %f", ref.Pixels)
	}
	if ref.Column() != "distance_30_mm_px" {
		t.Errorf("Unexpected column name %q", ref.Column())
	}
}

func TestParseSidecarFractionalColumnPreserved(t *testing.T) {
	csv := "filename,distance_7.5_mm_px\na.png,230.1\n"

	refs, err := parseSidecar(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	ref, ok := refs["a.png"]
	if !ok {
		t.Fatal("Expected calibration row")
	}
	if ref.KnownMM != 7.5 {
		t.Errorf("Expected known distance 7.5 mm, got %f", ref.KnownMM)
	}
	if ref.Column() != "distance_7.5_mm_px" {
		t.Errorf("Expected sidecar header carried through unchanged, got %q", ref.Column())
	}
}

func TestColumnWithoutSidecarHeader(t *testing.T) {
	ref := Reference{KnownMM: 7.5, Pixels: 230}
	if got := ref.Column(); got != "distance_7.5_mm_px" {
		t.Errorf("Unexpected synthesized column name %q", got)
	}
}

func TestParseSidecarMissingColumns(t *testing.T) {
	csv := "filename,area\nfoo.png,12\n"

	if _, err := parseSidecar(strings.NewReader(csv)); err == nil {
		t.Fatal("Expected error for sidecar without distance column")
	}
}

func TestPixelsPerMM(t *testing.T) {
	ref := Reference{KnownMM: 30, Pixels: 900}
	if got := ref.PixelsPerMM(); got != 30 {
		t.Errorf("Expected 30 px/mm, got %f", got)
	}

	var zero Reference
	if got := zero.PixelsPerMM(); got != 0 {
		t.Errorf("Expected 0 for undefined reference, got %f", got)
	}
}
