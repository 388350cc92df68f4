package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/atomicstack/weather-dashboard/internal/wire"
	"github.com/gorilla/websocket"
)

// WebsocketServer is an in-process websocket endpoint for tests.
type WebsocketServer struct {
	URL string

	srv   *httptest.Server
	mu    sync.Mutex
	conns []*websocket.Conn
}

// NewWebsocketServer serves wire.Path and hands every upgraded connection to
// handle on its own goroutine. The server is closed on test cleanup.
func NewWebsocketServer(t *testing.T, handle func(*websocket.Conn)) *WebsocketServer {
	t.Helper()
	ws := &WebsocketServer{}
	upgrader := websocket.Upgrader{}
	mux := http.NewServeMux()
	mux.HandleFunc(wire.Path, func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade failed: %v", err)
			return
		}
		ws.mu.Lock()
		ws.conns = append(ws.conns, c)
		ws.mu.Unlock()
		handle(c)
	})
	ws.srv = httptest.NewServer(mux)
	ws.URL = WebsocketURL(ws.srv.URL)
	t.Cleanup(ws.Close)
	return ws
}

// DropConnections closes every accepted connection, simulating a network loss.
func (s *WebsocketServer) DropConnections() {
	s.mu.Lock()
	conns := s.conns
	s.conns = nil
	s.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}
}

// Close stops the server and drops its connections.
func (s *WebsocketServer) Close() {
	s.DropConnections()
	s.srv.Close()
}

// WebsocketURL converts an http(s) base URL into the forecast websocket URL.
func WebsocketURL(base string) string {
	base = strings.TrimSuffix(base, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + wire.Path
}
