package events

import (
	"fmt"

	"github.com/atomicstack/weather-dashboard/internal/logging"
)

type ConnTracer struct{}

var Conn = ConnTracer{}

func (ConnTracer) Dial(url string, attempt int) {
	logging.Trace("conn.dial", map[string]interface{}{"url": url, "attempt": attempt})
}

func (ConnTracer) DialFailed(url string, err error) {
	logging.Error(fmt.Errorf("dial %s: %w", url, err))
}

func (ConnTracer) Connected(url string) {
	logging.Info("connected to %s", url)
}

func (ConnTracer) Lost(url string, pending int, err error) {
	logging.Error(fmt.Errorf("connection to %s lost with %d pending: %w", url, pending, err))
}

func (ConnTracer) Send(id, region string) {
	logging.Trace("conn.send", map[string]interface{}{"id": id, "region": region})
}

func (ConnTracer) Receive(id string) {
	logging.Trace("conn.receive", map[string]interface{}{"id": id})
}

func (ConnTracer) Orphan(id string) {
	logging.Trace("conn.orphan", map[string]interface{}{"id": id})
}

func (ConnTracer) Closed(url string) {
	logging.Info("connection to %s closed", url)
}
