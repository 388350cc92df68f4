package logging

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const defaultLogFile = "weather-dashboard.log"

// ErrAlreadyConfigured is returned when Configure runs more than once per process.
var ErrAlreadyConfigured = errors.New("logging already configured")

var (
	mu           sync.Mutex
	traceEnabled bool
	configured   bool
	logPath      = defaultLogFile
)

// Configure sets the log destination and trace mode. It must be called once at
// startup; later calls return ErrAlreadyConfigured and change nothing. Empty
// paths fall back to the default file. Directories are created when missing.
func Configure(path string, trace bool) error {
	mu.Lock()
	defer mu.Unlock()
	if configured {
		return ErrAlreadyConfigured
	}
	configured = true
	traceEnabled = trace
	if strings.TrimSpace(path) == "" {
		logPath = defaultLogFile
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logPath = defaultLogFile
		return fmt.Errorf("create log directory: %w", err)
	}
	logPath = path
	return nil
}

// Path reports the active log file.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

// Error appends err to the log file.
func Error(err error) {
	if err == nil {
		return
	}
	write("ERROR " + err.Error())
}

// Info appends a formatted line to the log file.
func Info(format string, args ...interface{}) {
	write("INFO " + fmt.Sprintf(format, args...))
}

func write(line string) {
	mu.Lock()
	defer mu.Unlock()
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging failed: %v\n", err)
		return
	}
	defer f.Close()

	logger := log.New(f, "", log.LstdFlags|log.Lmicroseconds)
	logger.Println(line)
}

// TraceEnabled reports whether structured trace entries are written.
func TraceEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return traceEnabled
}

// Trace appends a structured JSON entry to the shared log when tracing is enabled.
func Trace(event string, payload interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if !traceEnabled {
		return
	}

	entry := struct {
		Time    time.Time   `json:"time"`
		Event   string      `json:"event"`
		Payload interface{} `json:"payload,omitempty"`
	}{
		Time:    time.Now().UTC(),
		Event:   event,
		Payload: payload,
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "trace logging failed: %v\n", err)
		return
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(entry); err != nil {
		fmt.Fprintf(os.Stderr, "trace encoding failed: %v\n", err)
	}
}

// reset restores the unconfigured state. Tests only.
func reset() {
	mu.Lock()
	defer mu.Unlock()
	configured = false
	traceEnabled = false
	logPath = defaultLogFile
}
