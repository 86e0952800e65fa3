// Package tuner drives the interactive parameter tuning loop: every
// parameter change triggers one recomputation of the full detection pass,
// and rapid changes coalesce so the preview always reflects the newest
// parameters.
package tuner

import (
	"sync"

	"pore-profiler/internal/app"
	"pore-profiler/internal/logger"
	"pore-profiler/internal/pore"
)

// Phase is the tuner's processing phase.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRecomputing
	PhasePreviewing
)

func (p Phase) String() string {
	switch p {
	case PhaseRecomputing:
		return "recomputing"
	case PhasePreviewing:
		return "previewing"
	default:
		return "idle"
	}
}

// Tuner recomputes detection results on a single worker goroutine fed by a
// capacity-1 queue. Enqueueing replaces any pending parameter set, so bursts
// of slider changes skip intermediate recomputations but the delivered
// result always matches the last change.
type Tuner struct {
	state    *app.State
	detector *pore.Detector
	log      logger.Logger

	changes chan pore.Params
	done    chan struct{}
	wg      sync.WaitGroup

	mu    sync.Mutex
	phase Phase
}

// New creates a tuner bound to the session state. Call Start before Apply.
func New(state *app.State, detector *pore.Detector, log logger.Logger) *Tuner {
	return &Tuner{
		state:    state,
		detector: detector,
		log:      log,
		changes:  make(chan pore.Params, 1),
		done:     make(chan struct{}),
	}
}

// Start launches the recomputation worker.
func (t *Tuner) Start() {
	t.wg.Add(1)
	go t.run()
}

// Stop shuts the worker down and waits for any in-flight recomputation.
func (t *Tuner) Stop() {
	close(t.done)
	t.wg.Wait()
}

// Phase reports the current processing phase.
func (t *Tuner) Phase() Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

// Apply installs new parameters and schedules a recomputation. A pending
// unprocessed change is replaced rather than queued behind.
func (t *Tuner) Apply(p pore.Params) {
	t.state.SetParams(p)
	t.enqueue(t.state.Params())
}

// Recompute schedules a recomputation with the current parameters, used
// when a new image is loaded.
func (t *Tuner) Recompute() {
	t.enqueue(t.state.Params())
}

func (t *Tuner) enqueue(p pore.Params) {
	for {
		select {
		case t.changes <- p:
			return
		default:
		}
		// Queue full: drop the stale pending change and retry.
		select {
		case <-t.changes:
		default:
		}
	}
}

func (t *Tuner) run() {
	defer t.wg.Done()
	for {
		select {
		case <-t.done:
			return
		case p := <-t.changes:
			t.recompute(p)
		}
	}
}

func (t *Tuner) recompute(p pore.Params) {
	img := t.state.CurrentImage()
	if img == nil {
		return
	}

	t.setPhase(PhaseRecomputing)
	result, err := t.detector.Detect(img.Mat, p, img.Filename)
	if err != nil {
		t.log.Error("Tuner", "recomputation failed", map[string]interface{}{
			"file":  img.Filename,
			"error": err.Error(),
		})
		t.setPhase(PhaseIdle)
		return
	}

	t.setPhase(PhasePreviewing)
	t.state.SetResult(result)
	t.setPhase(PhaseIdle)
}

// setPhase records the transition and publishes it so the UI can show
// recomputation progress.
func (t *Tuner) setPhase(p Phase) {
	t.mu.Lock()
	t.phase = p
	t.mu.Unlock()
	t.state.Emit(app.EventTunerPhase, p)
}
