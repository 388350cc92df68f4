package ui

import (
	"errors"
	"fmt"

	"github.com/atomicstack/weather-dashboard/internal/input"
	"github.com/atomicstack/weather-dashboard/internal/logging"
	"github.com/atomicstack/weather-dashboard/internal/logging/events"
	"github.com/atomicstack/weather-dashboard/internal/mux"
	"github.com/atomicstack/weather-dashboard/internal/ui/state"
	"github.com/atomicstack/weather-dashboard/internal/weather"
)

// ErrInputClosed is returned when the input channel closes under the loop.
var ErrInputClosed = errors.New("input channel closed")

// Screen is the terminal surface the loop draws on.
type Screen interface {
	Draw(frame string) error
	Size() (int, int)
	Restore() error
}

// Submitter accepts fetch requests without blocking.
type Submitter interface {
	Submit(region weather.Region) error
}

// Status is the outcome of one loop iteration.
type Status int

const (
	Continue Status = iota
	Stop
)

// Options wires a Loop. State defaults to the seed regions on the Rain
// channel and Keys to DefaultKeyMap.
type Options struct {
	State     *state.Dashboard
	Keys      *KeyMap
	Screen    Screen
	Submitter Submitter
	Input     <-chan input.Event
	Results   <-chan mux.Result
}

// Loop is the single-threaded render and state loop. It owns the dashboard
// state; nothing else touches it.
type Loop struct {
	state     *state.Dashboard
	keys      KeyMap
	screen    Screen
	submitter Submitter
	input     <-chan input.Event
	results   <-chan mux.Result
	restored  bool
}

// NewLoop builds a loop from opts.
func NewLoop(opts Options) *Loop {
	st := opts.State
	if st == nil {
		st = state.NewDashboard(state.DefaultRegions, weather.Rain)
	}
	keys := DefaultKeyMap()
	if opts.Keys != nil {
		keys = *opts.Keys
	}
	return &Loop{
		state:     st,
		keys:      keys,
		screen:    opts.Screen,
		submitter: opts.Submitter,
		input:     opts.Input,
		results:   opts.Results,
	}
}

// State exposes the dashboard for inspection.
func (l *Loop) State() *state.Dashboard {
	return l.state
}

// Run iterates until a quit key is pressed. The terminal is restored exactly
// once on the way out, including when the input channel closes.
func (l *Loop) Run() error {
	for {
		status, err := l.Step()
		if err != nil {
			if rerr := l.restore(); rerr != nil {
				logging.Error(rerr)
			}
			return err
		}
		if status == Stop {
			return l.restore()
		}
	}
}

// Step runs one iteration: draw, submit a pending lookup, block for one input
// event, apply it, then drain whatever results have arrived.
func (l *Loop) Step() (Status, error) {
	l.draw()
	l.submitPending()

	evt, ok := <-l.input
	if !ok {
		return Stop, ErrInputClosed
	}
	status := l.apply(evt)
	l.drainResults()
	return status, nil
}

func (l *Loop) draw() {
	if l.screen == nil {
		return
	}
	w, h := l.screen.Size()
	if err := l.screen.Draw(Render(l.state, l.keys, w, h)); err != nil {
		logging.Error(fmt.Errorf("draw: %w", err))
	}
}

func (l *Loop) submitPending() {
	if !l.state.LookupPending() || l.submitter == nil {
		return
	}
	region, ok := l.state.Selected()
	if !ok {
		return
	}
	if err := l.submitter.Submit(region); err != nil {
		events.Fetch.SubmitFailed(region.Name(), err)
		return
	}
	logging.Info("requested forecast for %s", region.Name())
}

func (l *Loop) apply(evt input.Event) Status {
	if evt.Kind != input.KindKey {
		l.state.SetLookupPending(false)
		return Continue
	}
	action := l.keys.Resolve(evt.Key)
	events.UI.Key(evt.Key.String(), action.String())
	switch action {
	case ActionQuit:
		return Stop
	case ActionWind:
		l.setChannel(weather.Wind)
	case ActionRain:
		l.setChannel(weather.Rain)
	case ActionSun:
		l.setChannel(weather.Sun)
	case ActionUp:
		if l.state.MoveUp() {
			l.traceCursor()
		}
	case ActionDown:
		if l.state.MoveDown() {
			l.traceCursor()
		}
	}
	l.state.SetLookupPending(action == ActionFetch)
	return Continue
}

func (l *Loop) setChannel(c weather.Channel) {
	l.state.SetChannel(c)
	events.UI.Channel(c.String())
}

func (l *Loop) traceCursor() {
	idx, _ := l.state.Cursor()
	region, _ := l.state.Selected()
	events.UI.Cursor(idx, region.Name())
}

func (l *Loop) drainResults() {
	for {
		select {
		case res, ok := <-l.results:
			if !ok {
				l.results = nil
				return
			}
			l.merge(res)
		default:
			return
		}
	}
}

func (l *Loop) merge(res mux.Result) {
	var serr *weather.ServerError
	switch {
	case res.Err == nil:
		l.state.Store(res.Region, res.Forecast)
		events.UI.CacheUpdate(res.Region.Name(), l.state.CacheSize())
	case errors.As(res.Err, &serr):
		events.Fetch.ServerError(res.Region.Name(), serr)
	case errors.Is(res.Err, mux.ErrNoResponse):
		events.Fetch.NoAnswer(res.Region.Name())
	default:
		logging.Error(fmt.Errorf("forecast for %s: %w", res.Region.Name(), res.Err))
	}
}

func (l *Loop) restore() error {
	if l.restored || l.screen == nil {
		return nil
	}
	l.restored = true
	return l.screen.Restore()
}
