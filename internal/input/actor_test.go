package input

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func startActor(t *testing.T, keys <-chan tea.KeyMsg, tick time.Duration, buffer int) (*Actor, context.CancelFunc) {
	t.Helper()
	a := NewActor(keys, tick, buffer)
	ctx, cancel := context.WithCancel(context.Background())
	go a.Run(ctx)
	t.Cleanup(cancel)
	return a, cancel
}

func next(t *testing.T, a *Actor) Event {
	t.Helper()
	select {
	case evt, ok := <-a.Events():
		if !ok {
			t.Fatalf("events closed")
		}
		return evt
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for an event")
	}
	return Event{}
}

func TestActorEmitsTicksWithoutInput(t *testing.T) {
	a, _ := startActor(t, make(chan tea.KeyMsg), 10*time.Millisecond, 4)
	for i := 0; i < 3; i++ {
		if evt := next(t, a); evt.Kind != KindTick {
			t.Fatalf("event %d: expected tick, got %v", i, evt.Kind)
		}
	}
}

func TestActorForwardsKeysInOrder(t *testing.T) {
	keys := make(chan tea.KeyMsg, 3)
	a, _ := startActor(t, keys, time.Hour, 8)
	for _, r := range "wrs" {
		keys <- runeKey(r)
	}
	var got []string
	for len(got) < 3 {
		evt := next(t, a)
		if evt.Kind == KindKey {
			got = append(got, evt.Key.String())
		}
	}
	if got[0] != "w" || got[1] != "r" || got[2] != "s" {
		t.Fatalf("unexpected key order %v", got)
	}
}

func TestActorTicksBetweenKeys(t *testing.T) {
	keys := make(chan tea.KeyMsg)
	a, _ := startActor(t, keys, 20*time.Millisecond, 8)
	go func() {
		for i := 0; i < 5; i++ {
			keys <- runeKey('j')
			time.Sleep(5 * time.Millisecond)
		}
	}()
	sawTick := false
	keysSeen := 0
	deadline := time.After(2 * time.Second)
	for keysSeen < 5 || !sawTick {
		select {
		case evt := <-a.Events():
			switch evt.Kind {
			case KindKey:
				keysSeen++
			case KindTick:
				sawTick = true
			}
		case <-deadline:
			t.Fatalf("keys=%d tick=%v", keysSeen, sawTick)
		}
	}
}

func TestActorClosesEventsWhenKeysClose(t *testing.T) {
	keys := make(chan tea.KeyMsg)
	a, _ := startActor(t, keys, time.Hour, 1)
	close(keys)
	select {
	case _, ok := <-a.Events():
		if ok {
			t.Fatalf("expected events to close")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("events were not closed")
	}
}

func TestActorStopsOnCancelWhileBlocked(t *testing.T) {
	a, cancel := startActor(t, make(chan tea.KeyMsg), time.Millisecond, 1)
	// Nobody reads: the actor blocks on a full buffer until cancelled.
	time.Sleep(20 * time.Millisecond)
	cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-a.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("actor did not stop")
		}
	}
}

func TestNewActorDefaults(t *testing.T) {
	a := NewActor(nil, 0, 0)
	if a.tick != DefaultTick {
		t.Fatalf("expected default tick, got %v", a.tick)
	}
	if cap(a.events) != defaultBuffer {
		t.Fatalf("expected buffer %d, got %d", defaultBuffer, cap(a.events))
	}
}
