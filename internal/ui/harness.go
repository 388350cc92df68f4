package ui

import (
	"sync"

	"github.com/atomicstack/weather-dashboard/internal/input"
	"github.com/atomicstack/weather-dashboard/internal/mux"
	"github.com/atomicstack/weather-dashboard/internal/ui/state"
	"github.com/atomicstack/weather-dashboard/internal/weather"
	tea "github.com/charmbracelet/bubbletea"
)

// Harness drives a Loop one iteration at a time for integration tests. It
// stands in for the terminal and records every frame and submission.
type Harness struct {
	loop    *Loop
	input   chan input.Event
	results chan mux.Result

	mu        sync.Mutex
	frames    []string
	submitted []weather.Region
	restores  int
	submitErr error
	width     int
	height    int
}

// NewHarness creates a harness around a fresh loop. Pass nil to use the
// default dashboard state.
func NewHarness(st *state.Dashboard) *Harness {
	h := &Harness{
		input:   make(chan input.Event, 16),
		results: make(chan mux.Result, 16),
	}
	h.loop = NewLoop(Options{
		State:     st,
		Screen:    h,
		Submitter: h,
		Input:     h.input,
		Results:   h.results,
	})
	return h
}

// Loop exposes the underlying loop.
func (h *Harness) Loop() *Loop {
	return h.loop
}

// Key feeds a key press and runs one iteration.
func (h *Harness) Key(k string) (Status, error) {
	h.input <- input.KeyEvent(keyMsg(k))
	return h.loop.Step()
}

// Tick feeds a tick and runs one iteration.
func (h *Harness) Tick() (Status, error) {
	h.input <- input.TickEvent()
	return h.loop.Step()
}

// Deliver queues a result for the next drain.
func (h *Harness) Deliver(res mux.Result) {
	h.results <- res
}

// CloseInput closes the input channel.
func (h *Harness) CloseInput() {
	close(h.input)
}

// Feed queues input events without stepping, for use with Loop.Run.
func (h *Harness) Feed(evts ...input.Event) {
	for _, evt := range evts {
		h.input <- evt
	}
}

// FailSubmissions makes every later Submit return err.
func (h *Harness) FailSubmissions(err error) {
	h.mu.Lock()
	h.submitErr = err
	h.mu.Unlock()
}

// SetSize sets the dimensions reported to the loop.
func (h *Harness) SetSize(w, height int) {
	h.mu.Lock()
	h.width, h.height = w, height
	h.mu.Unlock()
}

// View returns the last drawn frame.
func (h *Harness) View() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.frames) == 0 {
		return ""
	}
	return h.frames[len(h.frames)-1]
}

// Submitted returns the regions submitted so far.
func (h *Harness) Submitted() []weather.Region {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]weather.Region(nil), h.submitted...)
}

// Restores returns how many times the terminal was restored.
func (h *Harness) Restores() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.restores
}

func (h *Harness) Draw(frame string) error {
	h.mu.Lock()
	h.frames = append(h.frames, frame)
	h.mu.Unlock()
	return nil
}

func (h *Harness) Size() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width, h.height
}

func (h *Harness) Restore() error {
	h.mu.Lock()
	h.restores++
	h.mu.Unlock()
	return nil
}

func (h *Harness) Submit(region weather.Region) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.submitErr != nil {
		return h.submitErr
	}
	h.submitted = append(h.submitted, region)
	return nil
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}
