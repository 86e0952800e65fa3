package tuner

import (
	"image"
	"image/color"
	"testing"
	"time"

	"pore-profiler/internal/app"
	"pore-profiler/internal/imageio"
	"pore-profiler/internal/logger"
	"pore-profiler/internal/pore"

	"gocv.io/x/gocv"
)

// testImage draws one dark disc on a white canvas, enough for the detector
// to find a single pore with default parameters.
func testImage(t *testing.T) *imageio.Image {
	t.Helper()
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 255), 200, 200, gocv.MatTypeCV8UC1)
	gocv.Circle(&mat, image.Pt(100, 100), 20, color.RGBA{A: 255}, -1)
	return &imageio.Image{Filename: "tuner_test.png", Mat: mat, Width: 200, Height: 200}
}

func TestApplyRecomputesForCurrentImage(t *testing.T) {
	state := app.NewState("in", "out")
	img := testImage(t)
	defer img.Close()
	state.SetCurrentImage(img)

	results := make(chan *pore.Result, 64)
	state.On(app.EventDetectionComplete, func(data interface{}) {
		results <- data.(*pore.Result)
	})

	tu := New(state, pore.NewDetector(logger.Nop()), logger.Nop())
	tu.Start()
	defer tu.Stop()

	tu.Apply(pore.DefaultParams())

	select {
	case res := <-results:
		if len(res.Records) != 1 {
			t.Errorf("Expected 1 pore, got %d", len(res.Records))
		}
		if state.Result() == nil {
			t.Error("Expected result installed in state")
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Timed out waiting for recomputation")
	}
}

func TestBurstCoalescesToNewestParams(t *testing.T) {
	state := app.NewState("in", "out")
	img := testImage(t)
	defer img.Close()
	state.SetCurrentImage(img)

	results := make(chan *pore.Result, 64)
	state.On(app.EventDetectionComplete, func(data interface{}) {
		results <- data.(*pore.Result)
	})

	tu := New(state, pore.NewDetector(logger.Nop()), logger.Nop())
	tu.Start()
	defer tu.Stop()

	// Burst of changes, as a slider drag produces. Intermediate
	// recomputations may be skipped.
	areas := []float64{100, 200, 300, 400, 500, 777}
	for _, a := range areas {
		p := pore.DefaultParams()
		p.MinContourArea = a
		tu.Apply(p)
	}

	deadline := time.After(15 * time.Second)
	for {
		select {
		case res := <-results:
			if res.Params.MinContourArea == 777 {
				return
			}
			// An intermediate result; the final one must still arrive.
		case <-deadline:
			t.Fatalf("Never received result for newest parameters, state has %+v",
				state.Result().Params.MinContourArea)
		}
	}
}

func TestPhaseTransitionsThroughRecompute(t *testing.T) {
	state := app.NewState("in", "out")
	img := testImage(t)
	defer img.Close()
	state.SetCurrentImage(img)

	phases := make(chan Phase, 64)
	state.On(app.EventTunerPhase, func(data interface{}) {
		phases <- data.(Phase)
	})

	tu := New(state, pore.NewDetector(logger.Nop()), logger.Nop())
	if tu.Phase() != PhaseIdle {
		t.Errorf("Expected idle phase before start, got %s", tu.Phase())
	}
	tu.Start()
	defer tu.Stop()

	tu.Apply(pore.DefaultParams())

	seen := make(map[Phase]bool)
	deadline := time.After(10 * time.Second)
	for !(seen[PhaseRecomputing] && seen[PhasePreviewing] && seen[PhaseIdle]) {
		select {
		case p := <-phases:
			seen[p] = true
		case <-deadline:
			t.Fatalf("Incomplete phase sequence, observed %v", seen)
		}
	}

	if tu.Phase() != PhaseIdle {
		t.Errorf("Expected idle phase after recompute, got %s", tu.Phase())
	}
	if PhaseRecomputing.String() != "recomputing" {
		t.Errorf("Unexpected phase label %q", PhaseRecomputing.String())
	}
}

func TestRecomputeWithoutImageIsNoOp(t *testing.T) {
	state := app.NewState("in", "out")

	tu := New(state, pore.NewDetector(logger.Nop()), logger.Nop())
	tu.Start()
	defer tu.Stop()

	tu.Recompute()
	time.Sleep(50 * time.Millisecond)

	if state.Result() != nil {
		t.Error("Expected no result without a current image")
	}
}
