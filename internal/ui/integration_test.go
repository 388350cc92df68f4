package ui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/atomicstack/weather-dashboard/internal/conn"
	"github.com/atomicstack/weather-dashboard/internal/input"
	"github.com/atomicstack/weather-dashboard/internal/mux"
	"github.com/atomicstack/weather-dashboard/internal/testutil"
	"github.com/atomicstack/weather-dashboard/internal/weather"
	"github.com/atomicstack/weather-dashboard/internal/wire"
	"github.com/gorilla/websocket"
)

func TestFetchRoundTripShowsForecast(t *testing.T) {
	srv := testutil.NewWebsocketServer(t, func(c *websocket.Conn) {
		for {
			var req wire.Request
			if err := c.ReadJSON(&req); err != nil {
				return
			}
			f := weather.Forecast{Wind: 12.5, Rain: 0.2, Sun: 3}
			if err := c.WriteJSON(wire.Success(req.ID, f)); err != nil {
				return
			}
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	manager := conn.NewManager(srv.URL, conn.Options{})
	go manager.Run(ctx)
	m := mux.New(manager.Commands(), mux.Options{})
	go m.Run(ctx)

	h := NewHarness(nil)
	in := make(chan input.Event, 1)
	loop := NewLoop(Options{Screen: h, Submitter: m, Input: in, Results: m.Results()})

	in <- input.KeyEvent(keyMsg("g"))
	if _, err := loop.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		in <- input.TickEvent()
		if _, err := loop.Step(); err != nil {
			t.Fatalf("step: %v", err)
		}
		if _, ok := loop.State().Forecast("Wexford"); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("forecast never arrived")
		}
		time.Sleep(10 * time.Millisecond)
	}

	in <- input.KeyEvent(keyMsg("q"))
	if _, err := loop.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if !strings.Contains(h.View(), "Rain forecast for Wexford is 0.2") {
		t.Fatalf("expected the forecast in the frame, got:\n%s", h.View())
	}
}

func TestQuitReturnsWithOutstandingRequests(t *testing.T) {
	srv := testutil.NewWebsocketServer(t, func(c *websocket.Conn) {
		// Read requests but never answer.
		for {
			var req wire.Request
			if err := c.ReadJSON(&req); err != nil {
				return
			}
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	manager := conn.NewManager(srv.URL, conn.Options{})
	managerDone := make(chan struct{})
	go func() {
		defer close(managerDone)
		manager.Run(ctx)
	}()
	m := mux.New(manager.Commands(), mux.Options{})
	muxDone := make(chan struct{})
	go func() {
		defer close(muxDone)
		m.Run(ctx)
	}()

	h := NewHarness(nil)
	in := make(chan input.Event, 8)
	loop := NewLoop(Options{Screen: h, Submitter: m, Input: in, Results: m.Results()})
	in <- input.KeyEvent(keyMsg("g"))
	in <- input.KeyEvent(keyMsg("g"))
	in <- input.KeyEvent(keyMsg("g"))
	in <- input.KeyEvent(keyMsg("q"))

	done := make(chan error, 1)
	go func() { done <- loop.Run() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("loop did not return")
	}
	if h.Restores() != 1 {
		t.Fatalf("expected one restore, got %d", h.Restores())
	}

	m.Close()
	cancel()
	for name, ch := range map[string]chan struct{}{"manager": managerDone, "mux": muxDone} {
		select {
		case <-ch:
		case <-time.After(5 * time.Second):
			t.Fatalf("%s did not stop", name)
		}
	}
}
