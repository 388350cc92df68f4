// Package server implements the dummy forecast server the dashboard talks to.
//
// Each websocket connection is read by its own goroutine, which turns request
// frames into jobs on a bounded queue. A fixed pool of workers runs the jobs
// through the Processor and writes exactly one response frame per request,
// so responses on one connection may arrive in any order.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/atomicstack/weather-dashboard/internal/logging/events"
	"github.com/atomicstack/weather-dashboard/internal/weather"
	"github.com/atomicstack/weather-dashboard/internal/wire"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

// DefaultAddr is where the dashboard looks for the server by default.
const DefaultAddr = "127.0.0.1:6379"

const (
	writeTimeout    = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Config sizes the server.
type Config struct {
	Addr      string `validate:"required,hostname_port"`
	Workers   int    `validate:"min=1,max=1024"`
	QueueSize int    `validate:"min=1"`
}

// DefaultConfig mirrors the command line defaults.
func DefaultConfig() Config {
	return Config{Addr: DefaultAddr, Workers: 10, QueueSize: 10}
}

// Validate checks the struct tags.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}
	return nil
}

type job struct {
	client *client
	req    wire.Request
}

type client struct {
	conn   *websocket.Conn
	remote string
	mu     sync.Mutex
}

func (c *client) write(resp wire.Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(resp)
}

// Server serves forecasts over a websocket.
type Server struct {
	cfg       Config
	processor Processor
	jobs      chan job
	upgrader  websocket.Upgrader
	httpSrv   *http.Server
	workers   sync.WaitGroup

	queueMu sync.Mutex
	closing bool
	stopped chan struct{}

	mu      sync.Mutex
	clients map[*client]struct{}
}

// New validates cfg and builds a server around p.
func New(cfg Config, p Processor) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.New("server: nil processor")
	}
	s := &Server{
		cfg:       cfg,
		processor: p,
		jobs:      make(chan job, cfg.QueueSize),
		stopped:   make(chan struct{}),
		clients:   make(map[*client]struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc(wire.Path, s.handleConn)
	s.httpSrv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	return s, nil
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled. On shutdown it stops
// queueing, lets the workers answer every queued job as unavailable, then
// closes client connections.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	events.Server.Listening(ln.Addr().String())
	g, gctx := errgroup.WithContext(ctx)
	s.workers.Add(s.cfg.Workers)
	for i := 0; i < s.cfg.Workers; i++ {
		g.Go(func() error {
			defer s.workers.Done()
			s.work(gctx)
			return nil
		})
	}
	g.Go(func() error {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		events.Server.Shutdown()
		s.stopQueueing()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := s.httpSrv.Shutdown(shutdownCtx)
		s.workers.Wait()
		s.closeClients()
		return err
	})
	return g.Wait()
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) handleConn(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		events.Server.Error(fmt.Errorf("upgrade %s: %w", r.RemoteAddr, err))
		return
	}
	c := &client{conn: conn, remote: r.RemoteAddr}
	s.track(c, true)
	defer s.track(c, false)
	defer conn.Close()

	for {
		var req wire.Request
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				events.Server.Error(fmt.Errorf("read %s: %w", c.remote, err))
			}
			return
		}
		if req.ID == "" {
			events.Server.Error(fmt.Errorf("request from %s without id", c.remote))
			continue
		}
		if serr := s.enqueue(job{client: c, req: req}); serr != nil {
			s.reply(c, req.ID, weather.Forecast{}, serr)
		}
	}
}

// enqueue hands j to the workers, or reports why it cannot.
func (s *Server) enqueue(j job) *weather.ServerError {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	if s.closing {
		return weather.NewServerError(weather.CodeUnavailable, "server shutting down")
	}
	select {
	case s.jobs <- j:
		return nil
	default:
		return weather.NewServerError(weather.CodeUnavailable, "server busy")
	}
}

// stopQueueing refuses further jobs. Once it returns, nothing new enters the
// queue.
func (s *Server) stopQueueing() {
	s.queueMu.Lock()
	if !s.closing {
		s.closing = true
		close(s.stopped)
	}
	s.queueMu.Unlock()
}

func (s *Server) track(c *client, connected bool) {
	s.mu.Lock()
	if connected {
		s.clients[c] = struct{}{}
	} else {
		delete(s.clients, c)
	}
	s.mu.Unlock()
	events.Server.Client(c.remote, connected)
}

func (s *Server) closeClients() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()
	for _, c := range clients {
		c.mu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.mu.Unlock()
		c.conn.Close()
	}
}

func (s *Server) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			<-s.stopped
			s.drain()
			return
		case j := <-s.jobs:
			events.Server.Request(j.req.ID, j.req.Region.Name())
			f, err := s.processor.Process(ctx, j.req.Region)
			var serr *weather.ServerError
			if err != nil {
				serr = asServerError(err)
			}
			s.reply(j.client, j.req.ID, f, serr)
		}
	}
}

// drain answers every queued job as unavailable.
func (s *Server) drain() {
	for {
		select {
		case j := <-s.jobs:
			s.reply(j.client, j.req.ID, weather.Forecast{}, weather.NewServerError(weather.CodeUnavailable, "server shutting down"))
		default:
			return
		}
	}
}

func (s *Server) reply(c *client, id string, f weather.Forecast, serr *weather.ServerError) {
	resp := wire.Success(id, f)
	code := ""
	if serr != nil {
		resp = wire.Failure(id, serr)
		code = serr.Code
	}
	if err := c.write(resp); err != nil {
		events.Server.Error(fmt.Errorf("write %s to %s: %w", id, c.remote, err))
		return
	}
	events.Server.Response(id, code)
}
