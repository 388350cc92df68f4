package app

import (
	"context"
	"fmt"
	"time"

	"github.com/atomicstack/weather-dashboard/internal/conn"
	"github.com/atomicstack/weather-dashboard/internal/input"
	"github.com/atomicstack/weather-dashboard/internal/logging/events"
	"github.com/atomicstack/weather-dashboard/internal/mux"
	"github.com/atomicstack/weather-dashboard/internal/terminal"
	"github.com/atomicstack/weather-dashboard/internal/ui"
	"github.com/atomicstack/weather-dashboard/internal/ui/state"
	"github.com/atomicstack/weather-dashboard/internal/weather"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

// Config describes user-provided application options.
type Config struct {
	ServerURL      string              `validate:"required,url"`
	Tick           time.Duration       `validate:"gt=0"`
	Channel        weather.Channel     `validate:"min=0,max=2"`
	Regions        []weather.Region    `validate:"dive,required"`
	MaxOutstanding int                 `validate:"min=0"`
	InputBuffer    int                 `validate:"min=1"`
	Keys           map[string][]string `validate:"-"`
}

// Terminal is the screen plus its key stream.
type Terminal interface {
	ui.Screen
	Keys() <-chan tea.KeyMsg
}

// Run takes over the terminal and runs the dashboard until the user quits.
func Run(cfg Config) error {
	term, err := terminal.Start(terminal.Options{KeyBuffer: cfg.InputBuffer})
	if err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	return run(cfg, term)
}

// run wires the connection manager, multiplexer and input actor around the UI
// loop, which runs on the calling goroutine. On quit the multiplexer stops
// accepting work and the shared context is cancelled; requests still in flight
// are abandoned.
func run(cfg Config, term Terminal) error {
	keys, err := ui.DefaultKeyMap().WithOverrides(cfg.Keys)
	if err != nil {
		_ = term.Restore()
		return fmt.Errorf("keys: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := conn.NewManager(cfg.ServerURL, conn.Options{})
	multiplexer := mux.New(manager.Commands(), mux.Options{MaxOutstanding: cfg.MaxOutstanding})
	actor := input.NewActor(term.Keys(), cfg.Tick, cfg.InputBuffer)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return manager.Run(gctx) })
	g.Go(func() error { return multiplexer.Run(gctx) })
	g.Go(func() error {
		actor.Run(gctx)
		return nil
	})

	loop := ui.NewLoop(ui.Options{
		State:     state.NewDashboard(cfg.Regions, cfg.Channel),
		Keys:      &keys,
		Screen:    term,
		Submitter: multiplexer,
		Input:     actor.Events(),
		Results:   multiplexer.Results(),
	})
	runErr := loop.Run()

	reason := "quit"
	if runErr != nil {
		reason = runErr.Error()
	}
	events.App.Stop(reason)
	multiplexer.Close()
	cancel()
	if err := g.Wait(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
