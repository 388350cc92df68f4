package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atomicstack/weather-dashboard/internal/app"
	"github.com/atomicstack/weather-dashboard/internal/input"
	"github.com/atomicstack/weather-dashboard/internal/ui"
	"github.com/atomicstack/weather-dashboard/internal/ui/state"
	"github.com/atomicstack/weather-dashboard/internal/weather"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

// DefaultServerURL is the dummy server's default endpoint.
const DefaultServerURL = "ws://127.0.0.1:6379/forecast"

const (
	defaultInputBuffer = 16
	defaultEnvFile     = ".env"
)

const (
	envServer         = "WEATHER_DASHBOARD_SERVER"
	envTick           = "WEATHER_DASHBOARD_TICK"
	envChannel        = "WEATHER_DASHBOARD_CHANNEL"
	envRegions        = "WEATHER_DASHBOARD_REGIONS"
	envMaxOutstanding = "WEATHER_DASHBOARD_MAX_OUTSTANDING"
	envInputBuffer    = "WEATHER_DASHBOARD_INPUT_BUFFER"
	envLogFile        = "WEATHER_DASHBOARD_LOG_FILE"
	envTrace          = "WEATHER_DASHBOARD_TRACE"
	envConfig         = "WEATHER_DASHBOARD_CONFIG"
)

// fileConfig is the optional YAML configuration file.
type fileConfig struct {
	Server         string              `yaml:"server"`
	Tick           string              `yaml:"tick"`
	Channel        string              `yaml:"channel"`
	Regions        []string            `yaml:"regions"`
	MaxOutstanding *int                `yaml:"max_outstanding"`
	Keys           map[string][]string `yaml:"keys"`
}

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment. Each setting is
// taken from the first source that provides it: flag, environment, .env file,
// YAML file, built-in default.
func LoadArgs(args []string, environ []string) (Config, error) {
	fset := pflag.NewFlagSet("weather-dashboard", pflag.ContinueOnError)
	fset.SetOutput(new(strings.Builder))

	server := fset.String("server", DefaultServerURL, "websocket URL of the forecast server")
	tick := fset.Duration("tick", input.DefaultTick, "redraw interval while idle")
	channel := fset.String("channel", weather.Rain.String(), "initial weather channel (wind, rain or sun)")
	regions := fset.StringSlice("regions", regionNames(state.DefaultRegions), "comma-separated counties to list")
	maxOutstanding := fset.Int("max-outstanding", 0, "cap on in-flight requests (0 is unbounded)")
	inputBuffer := fset.Int("input-buffer", defaultInputBuffer, "input event channel capacity")
	logFile := fset.String("log-file", "", "path to the log file")
	trace := fset.Bool("trace", false, "enable verbose JSON trace logging")
	configPath := fset.String("config", "", "path to a YAML configuration file")
	envFile := fset.String("env-file", defaultEnvFile, "path to a .env file")

	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	env, err := mergedEnv(*envFile, fset.Changed("env-file"), environ)
	if err != nil {
		return Config{}, err
	}

	path := pick(fset, "config", *configPath, env, envConfig, "")
	file, err := readFile(path)
	if err != nil {
		return Config{}, err
	}

	r := resolver{fs: fset, env: env}
	cfg := Config{
		App: app.Config{
			ServerURL: r.str("server", *server, envServer, file.Server),
			Keys:      file.Keys,
		},
		Logging: Logging{
			FilePath: r.str("log-file", *logFile, envLogFile, ""),
		},
		Args: append([]string(nil), args...),
	}

	if cfg.App.Tick, err = r.duration("tick", *tick, envTick, file.Tick); err != nil {
		return Config{}, err
	}
	chLabel := r.str("channel", *channel, envChannel, file.Channel)
	if cfg.App.Channel, err = weather.ParseChannel(chLabel); err != nil {
		return Config{}, fmt.Errorf("channel: %w", err)
	}
	cfg.App.Regions = toRegions(r.list("regions", *regions, envRegions, file.Regions))

	fileMax := ""
	if file.MaxOutstanding != nil {
		fileMax = strconv.Itoa(*file.MaxOutstanding)
	}
	if cfg.App.MaxOutstanding, err = r.integer("max-outstanding", *maxOutstanding, envMaxOutstanding, fileMax); err != nil {
		return Config{}, err
	}
	if cfg.App.InputBuffer, err = r.integer("input-buffer", *inputBuffer, envInputBuffer, ""); err != nil {
		return Config{}, err
	}
	if cfg.Logging.Trace, err = r.boolean("trace", *trace, envTrace); err != nil {
		return Config{}, err
	}

	cfg.Flags = map[string]string{
		"server":         cfg.App.ServerURL,
		"tick":           cfg.App.Tick.String(),
		"channel":        cfg.App.Channel.String(),
		"regions":        strings.Join(regionNames(cfg.App.Regions), ","),
		"maxOutstanding": strconv.Itoa(cfg.App.MaxOutstanding),
		"inputBuffer":    strconv.Itoa(cfg.App.InputBuffer),
		"trace":          strconv.FormatBool(cfg.Logging.Trace),
		"logFile":        cfg.Logging.FilePath,
		"config":         path,
	}
	return cfg, nil
}

// mergedEnv layers the process environment over the .env file. A missing
// default .env is ignored; a missing explicit one is an error.
func mergedEnv(path string, explicit bool, environ []string) (map[string]string, error) {
	values := map[string]string{}
	if path != "" {
		dot, err := godotenv.Read(path)
		switch {
		case err == nil:
			values = dot
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("read env file %s: %w", path, err)
		}
	}
	for k, v := range parseEnv(environ) {
		values[k] = v
	}
	return values, nil
}

func readFile(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return fc, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return fc, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fc, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func pick(fset *pflag.FlagSet, name, flagValue string, env map[string]string, key, fallback string) string {
	if fset.Changed(name) {
		return flagValue
	}
	if v, ok := env[key]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

// resolver applies the source precedence to one setting at a time. The file
// value counts only when non-empty; otherwise the flag default applies.
type resolver struct {
	fs  *pflag.FlagSet
	env map[string]string
}

func (r resolver) raw(name, key, file string) (string, bool) {
	if r.fs.Changed(name) {
		return "", false
	}
	if v, ok := r.env[key]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), true
	}
	if strings.TrimSpace(file) != "" {
		return strings.TrimSpace(file), true
	}
	return "", false
}

func (r resolver) str(name, flagValue, key, file string) string {
	if v, ok := r.raw(name, key, file); ok {
		return v
	}
	return flagValue
}

func (r resolver) duration(name string, flagValue time.Duration, key, file string) (time.Duration, error) {
	v, ok := r.raw(name, key, file)
	if !ok {
		return flagValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}

func (r resolver) integer(name string, flagValue int, key, file string) (int, error) {
	v, ok := r.raw(name, key, file)
	if !ok {
		return flagValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

func (r resolver) boolean(name string, flagValue bool, key string) (bool, error) {
	v, ok := r.raw(name, key, "")
	if !ok {
		return flagValue, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", name, err)
	}
	return b, nil
}

func (r resolver) list(name string, flagValue []string, key string, file []string) []string {
	if r.fs.Changed(name) {
		return flagValue
	}
	if v, ok := r.env[key]; ok && strings.TrimSpace(v) != "" {
		return strings.Split(v, ",")
	}
	if len(file) > 0 {
		return file
	}
	return flagValue
}

func toRegions(names []string) []weather.Region {
	out := make([]weather.Region, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, weather.Region(n))
		}
	}
	return out
}

func regionNames(regions []weather.Region) []string {
	out := make([]string, len(regions))
	for i, r := range regions {
		out[i] = r.Name()
	}
	return out
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

var validate = validator.New()

// Validate checks the struct tags on the application config, the server URL
// scheme and any key overrides.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg.App); err != nil {
		return err
	}
	if s := cfg.App.ServerURL; !strings.HasPrefix(s, "ws://") && !strings.HasPrefix(s, "wss://") {
		return fmt.Errorf("server must be a ws:// or wss:// URL (got %q)", s)
	}
	if _, err := ui.DefaultKeyMap().WithOverrides(cfg.App.Keys); err != nil {
		return fmt.Errorf("keys: %w", err)
	}
	return nil
}
