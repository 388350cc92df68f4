package events

import (
	"fmt"

	"github.com/atomicstack/weather-dashboard/internal/logging"
)

type FetchTracer struct{}

var Fetch = FetchTracer{}

// Submit records a region handed to the multiplexer.
func (FetchTracer) Submit(region string, outstanding int) {
	logging.Trace("fetch.submit", map[string]interface{}{"region": region, "outstanding": outstanding})
}

// SubmitFailed is always logged; the UI keeps running.
func (FetchTracer) SubmitFailed(region string, err error) {
	logging.Error(fmt.Errorf("submit %s: %w", region, err))
	logging.Trace("fetch.submit-failed", map[string]interface{}{"region": region, "error": err.Error()})
}

func (FetchTracer) Result(region string, outstanding int) {
	logging.Trace("fetch.result", map[string]interface{}{"region": region, "outstanding": outstanding})
}

func (FetchTracer) ServerError(region string, err error) {
	logging.Error(fmt.Errorf("forecast for %s: %w", region, err))
	logging.Trace("fetch.server-error", map[string]interface{}{"region": region, "error": err.Error()})
}

func (FetchTracer) NoAnswer(region string) {
	logging.Info("no answer for %s: connection dropped the request", region)
	logging.Trace("fetch.no-answer", map[string]interface{}{"region": region})
}
