package input

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Kind distinguishes key presses from periodic ticks.
type Kind int

const (
	KindKey Kind = iota
	KindTick
)

// Event is delivered to the UI loop: either a key press or a tick.
type Event struct {
	Kind Kind
	Key  tea.KeyMsg
}

// KeyEvent wraps a key press.
func KeyEvent(k tea.KeyMsg) Event {
	return Event{Kind: KindKey, Key: k}
}

// TickEvent is the synthetic event that drives the UI loop without input.
func TickEvent() Event {
	return Event{Kind: KindTick}
}

// DefaultTick is the tick interval used when none is configured.
const DefaultTick = 200 * time.Millisecond

const defaultBuffer = 16

// Actor polls a key source on its own goroutine, forwarding each key as soon
// as it arrives and a Tick whenever the tick interval elapses.
type Actor struct {
	keys   <-chan tea.KeyMsg
	tick   time.Duration
	events chan Event
	now    func() time.Time
}

// NewActor creates an actor reading from keys. buffer bounds the events
// channel; sends block when it is full.
func NewActor(keys <-chan tea.KeyMsg, tick time.Duration, buffer int) *Actor {
	if tick <= 0 {
		tick = DefaultTick
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Actor{
		keys:   keys,
		tick:   tick,
		events: make(chan Event, buffer),
		now:    time.Now,
	}
}

// Events returns the channel consumed by the UI loop. It is closed when Run
// returns.
func (a *Actor) Events() <-chan Event {
	return a.events
}

// Run polls until ctx is cancelled or the key source is closed.
func (a *Actor) Run(ctx context.Context) {
	defer close(a.events)
	lastTick := a.now()
	timer := time.NewTimer(a.tick)
	defer timer.Stop()

	for {
		timeout := a.tick - a.now().Sub(lastTick)
		if timeout < 0 {
			timeout = 0
		}
		resetTimer(timer, timeout)

		select {
		case <-ctx.Done():
			return
		case key, ok := <-a.keys:
			if !ok {
				return
			}
			if !a.send(ctx, KeyEvent(key)) {
				return
			}
		case <-timer.C:
		}

		if a.now().Sub(lastTick) >= a.tick {
			if !a.send(ctx, TickEvent()) {
				return
			}
			lastTick = a.now()
		}
	}
}

func (a *Actor) send(ctx context.Context, evt Event) bool {
	select {
	case a.events <- evt:
		return true
	case <-ctx.Done():
		return false
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
