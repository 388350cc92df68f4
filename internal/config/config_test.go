package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/atomicstack/weather-dashboard/internal/weather"
)

// noEnvFile keeps a stray .env next to the package out of the tests.
func noEnvFile() []string {
	return []string{"--env-file", ""}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs(noEnvFile(), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.ServerURL != DefaultServerURL {
		t.Fatalf("expected default server, got %q", cfg.App.ServerURL)
	}
	if cfg.App.Channel != weather.Rain {
		t.Fatalf("expected Rain, got %s", cfg.App.Channel)
	}
	if len(cfg.App.Regions) != 2 || cfg.App.Regions[0] != "Wexford" || cfg.App.Regions[1] != "Cork" {
		t.Fatalf("unexpected regions %v", cfg.App.Regions)
	}
	if cfg.App.Tick != 200*time.Millisecond {
		t.Fatalf("unexpected tick %v", cfg.App.Tick)
	}
	if cfg.App.MaxOutstanding != 0 || cfg.App.InputBuffer != defaultInputBuffer {
		t.Fatalf("unexpected sizes %#v", cfg.App)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadArgsFlags(t *testing.T) {
	args := append(noEnvFile(),
		"--server", "ws://example.test:9000/forecast",
		"--tick", "50ms",
		"--channel", "sun",
		"--regions", "Kerry, Clare",
		"--max-outstanding", "8",
		"--trace",
		"--log-file", "/tmp/wd.log",
	)
	cfg, err := LoadArgs(args, []string{"WEATHER_DASHBOARD_CHANNEL=wind"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.ServerURL != "ws://example.test:9000/forecast" {
		t.Fatalf("unexpected server %q", cfg.App.ServerURL)
	}
	if cfg.App.Tick != 50*time.Millisecond {
		t.Fatalf("unexpected tick %v", cfg.App.Tick)
	}
	if cfg.App.Channel != weather.Sun {
		t.Fatalf("flag should beat env, got %s", cfg.App.Channel)
	}
	if len(cfg.App.Regions) != 2 || cfg.App.Regions[1] != "Clare" {
		t.Fatalf("unexpected regions %v", cfg.App.Regions)
	}
	if cfg.App.MaxOutstanding != 8 {
		t.Fatalf("unexpected max outstanding %d", cfg.App.MaxOutstanding)
	}
	if !cfg.Logging.Trace || cfg.Logging.FilePath != "/tmp/wd.log" {
		t.Fatalf("unexpected logging %#v", cfg.Logging)
	}
	if cfg.Flags["channel"] != "Sun" || cfg.Flags["maxOutstanding"] != "8" {
		t.Fatalf("unexpected flags map %v", cfg.Flags)
	}
}

func TestSourcePrecedence(t *testing.T) {
	yamlPath := writeFile(t, "dashboard.yaml", `
server: ws://from-yaml:1/forecast
tick: 1s
channel: wind
regions: [Mayo, Sligo]
max_outstanding: 3
keys:
  fetch: [enter]
`)
	envPath := writeFile(t, ".env", "WEATHER_DASHBOARD_TICK=2s\nWEATHER_DASHBOARD_CHANNEL=sun\n")
	args := []string{"--config", yamlPath, "--env-file", envPath}
	environ := []string{"WEATHER_DASHBOARD_CHANNEL=rain"}

	cfg, err := LoadArgs(args, environ)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.ServerURL != "ws://from-yaml:1/forecast" {
		t.Fatalf("yaml should beat defaults, got %q", cfg.App.ServerURL)
	}
	if cfg.App.Tick != 2*time.Second {
		t.Fatalf(".env should beat yaml, got %v", cfg.App.Tick)
	}
	if cfg.App.Channel != weather.Rain {
		t.Fatalf("env should beat .env, got %s", cfg.App.Channel)
	}
	if len(cfg.App.Regions) != 2 || cfg.App.Regions[0] != "Mayo" {
		t.Fatalf("unexpected regions %v", cfg.App.Regions)
	}
	if cfg.App.MaxOutstanding != 3 {
		t.Fatalf("unexpected max outstanding %d", cfg.App.MaxOutstanding)
	}
	if got := cfg.App.Keys["fetch"]; len(got) != 1 || got[0] != "enter" {
		t.Fatalf("unexpected keys %v", cfg.App.Keys)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestMissingDefaultEnvFileIsIgnored(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := LoadArgs(nil, nil); err != nil {
		t.Fatalf("missing default .env should be ignored: %v", err)
	}
}

func TestEnvFileSuppliesSettings(t *testing.T) {
	envPath := writeFile(t, "settings.env", "WEATHER_DASHBOARD_REGIONS=Leitrim\n")
	cfg, err := LoadArgs([]string{"--env-file", envPath}, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.App.Regions) != 1 || cfg.App.Regions[0] != "Leitrim" {
		t.Fatalf("unexpected regions %v", cfg.App.Regions)
	}
}

func TestConfigPathFromEnvironment(t *testing.T) {
	yamlPath := writeFile(t, "c.yaml", "regions: [Louth]\n")
	cfg, err := LoadArgs(noEnvFile(), []string{"WEATHER_DASHBOARD_CONFIG=" + yamlPath})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.App.Regions) != 1 || cfg.App.Regions[0] != "Louth" {
		t.Fatalf("unexpected regions %v", cfg.App.Regions)
	}
}

func TestLoadArgsErrors(t *testing.T) {
	badYAML := writeFile(t, "bad.yaml", "colour: blue\n")
	cases := map[string]struct {
		args    []string
		environ []string
	}{
		"unknown flag":     {args: []string{"--nope"}},
		"bad channel":      {args: []string{"--channel", "snow"}},
		"bad env tick":     {environ: []string{"WEATHER_DASHBOARD_TICK=soon"}},
		"bad env int":      {environ: []string{"WEATHER_DASHBOARD_INPUT_BUFFER=lots"}},
		"missing config":   {args: []string{"--config", filepath.Join(t.TempDir(), "nope.yaml")}},
		"unknown yaml key": {args: []string{"--config", badYAML}},
		"missing env file": {args: []string{"--env-file", filepath.Join(t.TempDir(), "nope.env")}},
	}
	for name, tc := range cases {
		args := tc.args
		if name != "missing env file" {
			args = append(noEnvFile(), args...)
		}
		if _, err := LoadArgs(args, tc.environ); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	base, err := LoadArgs(noEnvFile(), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cases := map[string]func(*Config){
		"http server":    func(c *Config) { c.App.ServerURL = "http://127.0.0.1:6379/forecast" },
		"empty server":   func(c *Config) { c.App.ServerURL = "" },
		"zero tick":      func(c *Config) { c.App.Tick = 0 },
		"negative max":   func(c *Config) { c.App.MaxOutstanding = -1 },
		"zero buffer":    func(c *Config) { c.App.InputBuffer = 0 },
		"blank region":   func(c *Config) { c.App.Regions = []weather.Region{"Cork", ""} },
		"unknown action": func(c *Config) { c.App.Keys = map[string][]string{"jump": {"x"}} },
	}
	for name, mutate := range cases {
		cfg := base
		cfg.App.Regions = append([]weather.Region(nil), base.App.Regions...)
		mutate(&cfg)
		if err := Validate(cfg); err == nil {
			t.Fatalf("%s: expected a validation error", name)
		}
	}
}
