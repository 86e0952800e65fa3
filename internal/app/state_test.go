package app

import (
	"testing"

	"pore-profiler/internal/pore"
	"pore-profiler/internal/scale"
)

func TestAdvanceExhaustsBatch(t *testing.T) {
	s := NewState("in", "out")
	s.SetFiles([]string{"a.png", "b.png"})

	if got := s.CurrentPath(); got != "a.png" {
		t.Errorf("Expected cursor at a.png, got %q", got)
	}

	path, ok := s.Advance()
	if !ok || path != "b.png" {
		t.Errorf("Expected advance to b.png, got %q ok=%v", path, ok)
	}

	if _, ok := s.Advance(); ok {
		t.Error("Expected batch exhaustion after last image")
	}
	if got := s.CurrentPath(); got != "" {
		t.Errorf("Expected empty path after exhaustion, got %q", got)
	}
}

func TestSetParamsSanitizesAndNotifies(t *testing.T) {
	s := NewState("in", "out")

	var notified pore.Params
	s.On(EventParamsChanged, func(data interface{}) {
		notified = data.(pore.Params)
	})

	p := pore.DefaultParams()
	p.GaussianKernel = 4
	s.SetParams(p)

	if s.Params().GaussianKernel != 5 {
		t.Errorf("Expected sanitized kernel 5, got %d", s.Params().GaussianKernel)
	}
	if notified.GaussianKernel != 5 {
		t.Errorf("Expected listener to receive sanitized params, got %d", notified.GaussianKernel)
	}
}

func TestCalibrationLookup(t *testing.T) {
	s := NewState("in", "out")
	s.SetCalibrations(map[string]scale.Reference{
		"a.png": {KnownMM: 30, Pixels: 900},
	})

	if ref := s.CalibrationFor("a.png"); ref == nil || ref.KnownMM != 30 {
		t.Errorf("Expected calibration for a.png, got %v", ref)
	}
	if ref := s.CalibrationFor("b.png"); ref != nil {
		t.Errorf("Expected nil calibration for unknown file, got %v", ref)
	}
}

func TestResultClearedOnNewImage(t *testing.T) {
	s := NewState("in", "out")
	s.SetResult(&pore.Result{SourceFilename: "a.png"})
	if s.Result() == nil {
		t.Fatal("Expected result to be set")
	}

	s.SetCurrentImage(nil)
	if s.Result() != nil {
		t.Error("Expected result cleared when a new image is installed")
	}
}
