package conn

import (
	"os"
	"testing"

	"github.com/atomicstack/weather-dashboard/internal/testutil"
)

func TestMain(m *testing.M) {
	os.Exit(testutil.RunWithTempLog(m))
}
