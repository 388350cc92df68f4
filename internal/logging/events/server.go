package events

import (
	"fmt"

	"github.com/atomicstack/weather-dashboard/internal/logging"
)

type ServerTracer struct{}

var Server = ServerTracer{}

func (ServerTracer) Listening(addr string) {
	logging.Info("forecast server listening on %s", addr)
}

func (ServerTracer) Client(remote string, connected bool) {
	logging.Trace("server.client", map[string]interface{}{"remote": remote, "connected": connected})
}

func (ServerTracer) Request(id, region string) {
	logging.Trace("server.request", map[string]interface{}{"id": id, "region": region})
}

func (ServerTracer) Response(id string, code string) {
	logging.Trace("server.response", map[string]interface{}{"id": id, "error": code})
}

func (ServerTracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Error(fmt.Errorf("server: %w", err))
}

func (ServerTracer) Shutdown() {
	logging.Info("forecast server shutting down")
}
