package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/atomicstack/weather-dashboard/internal/app"
	"github.com/atomicstack/weather-dashboard/internal/config"
	"github.com/atomicstack/weather-dashboard/internal/logging"
	"github.com/atomicstack/weather-dashboard/internal/logging/events"
	"golang.org/x/term"
)

func main() {
	runtimeCfg := config.MustLoad()
	if err := config.Validate(runtimeCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	if err := logging.Configure(runtimeCfg.Logging.FilePath, runtimeCfg.Logging.Trace); err != nil {
		fmt.Fprintf(os.Stderr, "Logging error: %v\n", err)
		os.Exit(2)
	}

	traceStartup(runtimeCfg)

	if err := app.Run(runtimeCfg.App); err != nil {
		logging.Error(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func traceStartup(cfg config.Config) {
	events.App.Start(startupTracePayload(cfg))
}

// startupTracePayload records what the dashboard will connect to and show.
func startupTracePayload(cfg config.Config) map[string]interface{} {
	overrides := make([]string, 0, len(cfg.App.Keys))
	for action := range cfg.App.Keys {
		overrides = append(overrides, action)
	}
	sort.Strings(overrides)

	payload := map[string]interface{}{
		"argv":           cfg.Args,
		"server":         cfg.App.ServerURL,
		"channel":        cfg.App.Channel.String(),
		"regions":        cfg.Flags["regions"],
		"regionCount":    len(cfg.App.Regions),
		"tick":           cfg.App.Tick.String(),
		"maxOutstanding": cfg.App.MaxOutstanding,
		"keyOverrides":   overrides,
		"configFile":     cfg.Flags["config"],
		"logPath":        logging.Path(),
		"terminal":       inspectTerminal(os.Stdin, os.Stdout),
	}
	if cwd, err := os.Getwd(); err == nil {
		payload["cwd"] = cwd
	}
	return payload
}

type terminalInfo struct {
	InputTTY  bool   `json:"input_tty"`
	OutputTTY bool   `json:"output_tty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Error     string `json:"error,omitempty"`
}

// inspectTerminal reports whether the dashboard can take over the terminal and
// the size it will start with.
func inspectTerminal(in, out *os.File) terminalInfo {
	p := terminalInfo{
		InputTTY:  term.IsTerminal(int(in.Fd())),
		OutputTTY: term.IsTerminal(int(out.Fd())),
	}
	if !p.OutputTTY {
		return p
	}
	w, h, err := term.GetSize(int(out.Fd()))
	if err != nil {
		p.Error = err.Error()
		return p
	}
	p.Width, p.Height = w, h
	return p
}
