package logging

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigureTwiceFails(t *testing.T) {
	t.Cleanup(reset)
	reset()
	path := filepath.Join(t.TempDir(), "logs", "dash.log")
	if err := Configure(path, false); err != nil {
		t.Fatalf("first configure failed: %v", err)
	}
	if err := Configure(filepath.Join(t.TempDir(), "other.log"), true); !errors.Is(err, ErrAlreadyConfigured) {
		t.Fatalf("expected ErrAlreadyConfigured, got %v", err)
	}
	if Path() != path {
		t.Fatalf("expected path to stay %q, got %q", path, Path())
	}
	if TraceEnabled() {
		t.Fatalf("expected trace to stay disabled")
	}
}

func TestErrorAndInfoAppendToFile(t *testing.T) {
	t.Cleanup(reset)
	reset()
	path := filepath.Join(t.TempDir(), "dash.log")
	if err := Configure(path, false); err != nil {
		t.Fatalf("configure failed: %v", err)
	}
	Error(errors.New("boom"))
	Error(nil)
	Info("sent %s", "Wexford")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "ERROR boom") {
		t.Fatalf("expected error line, got %q", out)
	}
	if !strings.Contains(out, "INFO sent Wexford") {
		t.Fatalf("expected info line, got %q", out)
	}
	if n := strings.Count(out, "\n"); n != 2 {
		t.Fatalf("expected 2 lines, got %d", n)
	}
}

func TestTraceWritesJSONWhenEnabled(t *testing.T) {
	t.Cleanup(reset)
	reset()
	path := filepath.Join(t.TempDir(), "trace.log")
	if err := Configure(path, true); err != nil {
		t.Fatalf("configure failed: %v", err)
	}
	Trace("fetch.submit", map[string]interface{}{"region": "Cork"})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var entry struct {
		Event   string                 `json:"event"`
		Payload map[string]interface{} `json:"payload"`
	}
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("decode trace: %v", err)
	}
	if entry.Event != "fetch.submit" || entry.Payload["region"] != "Cork" {
		t.Fatalf("unexpected entry %#v", entry)
	}
}

func TestTraceDisabledWritesNothing(t *testing.T) {
	t.Cleanup(reset)
	reset()
	path := filepath.Join(t.TempDir(), "quiet.log")
	if err := Configure(path, false); err != nil {
		t.Fatalf("configure failed: %v", err)
	}
	Trace("fetch.submit", nil)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no log file, stat err = %v", err)
	}
}
