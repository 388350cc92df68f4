package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/atomicstack/weather-dashboard/internal/logging"
)

// RunWithTempLog points the process log at a temporary directory with tracing
// enabled, runs the tests and removes the directory. Use it from TestMain so
// packages that log do not leave files next to their sources.
func RunWithTempLog(m *testing.M) int {
	dir, err := os.MkdirTemp("", "weather-dashboard-test-")
	if err != nil {
		fmt.Fprintf(os.Stderr, "create temp log dir: %v\n", err)
		return 1
	}
	defer os.RemoveAll(dir)
	if err := logging.Configure(filepath.Join(dir, "test.log"), true); err != nil {
		fmt.Fprintf(os.Stderr, "configure logging: %v\n", err)
		return 1
	}
	return m.Run()
}
