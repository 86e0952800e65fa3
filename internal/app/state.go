// Package app provides shared application state and events for the
// interactive tuning session.
package app

import (
	"sync"

	"pore-profiler/internal/imageio"
	"pore-profiler/internal/pore"
	"pore-profiler/internal/scale"
)

// State holds the session state shared between the tuner, the batch
// progression and the UI panels.
type State struct {
	mu sync.RWMutex

	// Session directories
	InputDir  string
	OutputDir string

	// Batch progression
	files []string
	index int

	// Current detection parameters, carried over between images
	params pore.Params

	// Current image and its latest detection result
	current *imageio.Image
	result  *pore.Result

	// Per-filename scale calibration, nil entries omitted
	calibrations map[string]scale.Reference

	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventImageLoaded EventType = iota
	EventParamsChanged
	EventTunerPhase
	EventDetectionComplete
	EventExported
	EventBatchFinished
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates session state with default detection parameters.
func NewState(inputDir, outputDir string) *State {
	return &State{
		InputDir:     inputDir,
		OutputDir:    outputDir,
		params:       pore.DefaultParams(),
		calibrations: make(map[string]scale.Reference),
		listeners:    make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetFiles installs the ordered batch file list and resets the cursor.
func (s *State) SetFiles(files []string) {
	s.mu.Lock()
	s.files = files
	s.index = 0
	s.mu.Unlock()
}

// Progress reports the 1-based position of the current image and the total.
func (s *State) Progress() (current, total int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index + 1, len(s.files)
}

// CurrentPath returns the path of the image at the cursor, or "" when the
// batch is exhausted or empty.
func (s *State) CurrentPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index >= len(s.files) {
		return ""
	}
	return s.files[s.index]
}

// Advance moves the cursor to the next image and returns its path.
// ok is false when the batch is exhausted.
func (s *State) Advance() (path string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index++
	if s.index >= len(s.files) {
		return "", false
	}
	return s.files[s.index], true
}

// Params returns a copy of the current detection parameters.
func (s *State) Params() pore.Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// SetParams sanitizes and installs new detection parameters and emits
// EventParamsChanged with the sanitized copy.
func (s *State) SetParams(p pore.Params) {
	p = p.Sanitized()
	s.mu.Lock()
	s.params = p
	s.mu.Unlock()
	s.Emit(EventParamsChanged, p)
}

// SetCurrentImage installs the loaded image, releasing the previous one,
// and emits EventImageLoaded.
func (s *State) SetCurrentImage(img *imageio.Image) {
	s.mu.Lock()
	prev := s.current
	s.current = img
	s.result = nil
	s.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	s.Emit(EventImageLoaded, img)
}

// CurrentImage returns the image at the cursor, or nil before the first load.
func (s *State) CurrentImage() *imageio.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetResult installs the latest detection result and emits
// EventDetectionComplete.
func (s *State) SetResult(res *pore.Result) {
	s.mu.Lock()
	s.result = res
	s.mu.Unlock()
	s.Emit(EventDetectionComplete, res)
}

// Result returns the latest detection result for the current image, or nil
// when none has been computed yet.
func (s *State) Result() *pore.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// SetCalibrations installs the per-filename scale references.
func (s *State) SetCalibrations(refs map[string]scale.Reference) {
	s.mu.Lock()
	if refs == nil {
		refs = make(map[string]scale.Reference)
	}
	s.calibrations = refs
	s.mu.Unlock()
}

// CalibrationFor returns the scale reference for a filename, or nil when
// the image has no calibration.
func (s *State) CalibrationFor(filename string) *scale.Reference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ref, ok := s.calibrations[filename]; ok {
		return &ref
	}
	return nil
}
