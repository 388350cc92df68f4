package conn

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/atomicstack/weather-dashboard/internal/logging/events"
	"github.com/atomicstack/weather-dashboard/internal/weather"
	"github.com/atomicstack/weather-dashboard/internal/wire"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sony/gobreaker"
)

// Command asks the manager to fetch the forecast for Region. Respond must have
// a buffer of at least one. The manager writes at most one Response to it, or
// closes it without a value when the request cannot be answered.
type Command struct {
	Region  weather.Region
	Respond chan<- Response
}

// Response is the server's answer to one Command.
type Response struct {
	Forecast weather.Forecast
	Err      *weather.ServerError
}

// Options tunes the connection manager. Zero values select the defaults.
type Options struct {
	QueueSize       int
	DialTimeout     time.Duration
	MinBackoff      time.Duration
	MaxBackoff      time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

const (
	defaultQueueSize       = 32
	defaultDialTimeout     = 3 * time.Second
	defaultMinBackoff      = 250 * time.Millisecond
	defaultMaxBackoff      = 5 * time.Second
	defaultBreakerFailures = 3
	defaultBreakerTimeout  = 10 * time.Second
	closeGrace             = time.Second
)

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = defaultQueueSize
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = defaultDialTimeout
	}
	if o.MinBackoff <= 0 {
		o.MinBackoff = defaultMinBackoff
	}
	if o.MaxBackoff < o.MinBackoff {
		o.MaxBackoff = defaultMaxBackoff
		if o.MaxBackoff < o.MinBackoff {
			o.MaxBackoff = o.MinBackoff
		}
	}
	if o.BreakerFailures == 0 {
		o.BreakerFailures = defaultBreakerFailures
	}
	if o.BreakerTimeout <= 0 {
		o.BreakerTimeout = defaultBreakerTimeout
	}
	return o
}

// ErrBreakerOpen is reported while the dial circuit breaker rejects attempts.
var ErrBreakerOpen = errors.New("circuit breaker open")

// Manager owns the websocket to the forecast server. It frames commands as
// wire requests, correlates responses by request id and reconnects when the
// connection drops.
type Manager struct {
	url      string
	opts     Options
	dialer   *websocket.Dialer
	breaker  *gobreaker.CircuitBreaker
	commands chan Command

	mu      sync.Mutex
	pending map[string]chan<- Response
}

// NewManager creates a manager for the websocket URL. Call Run to connect.
func NewManager(url string, opts Options) *Manager {
	opts = opts.withDefaults()
	failures := opts.BreakerFailures
	return &Manager{
		url:  url,
		opts: opts,
		dialer: &websocket.Dialer{
			HandshakeTimeout: opts.DialTimeout,
		},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "forecast-dial",
			Timeout: opts.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
		}),
		commands: make(chan Command, opts.QueueSize),
		pending:  make(map[string]chan<- Response),
	}
}

// Commands returns the channel the manager consumes commands from.
func (m *Manager) Commands() chan<- Command {
	return m.commands
}

// Pending returns the number of requests awaiting a server response.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Run connects and serves commands until ctx is cancelled. Connection losses
// fail the pending requests and trigger a reconnect with exponential backoff;
// while disconnected, commands are failed immediately.
func (m *Manager) Run(ctx context.Context) error {
	attempt := 0
	for {
		if ctx.Err() != nil {
			return nil
		}
		events.Conn.Dial(m.url, attempt)
		ws, err := m.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			events.Conn.DialFailed(m.url, err)
			if !m.rejectDuring(ctx, backoffDelay(attempt, m.opts.MinBackoff, m.opts.MaxBackoff)) {
				return nil
			}
			attempt++
			continue
		}
		attempt = 0
		events.Conn.Connected(m.url)
		err = m.serve(ctx, ws)
		failed := m.failPending()
		if ctx.Err() != nil {
			events.Conn.Closed(m.url)
			return nil
		}
		events.Conn.Lost(m.url, failed, err)
	}
}

func (m *Manager) dial(ctx context.Context) (*websocket.Conn, error) {
	result, err := m.breaker.Execute(func() (interface{}, error) {
		dialCtx, cancel := context.WithTimeout(ctx, m.opts.DialTimeout)
		defer cancel()
		ws, _, err := m.dialer.DialContext(dialCtx, m.url, nil)
		if err != nil {
			return nil, err
		}
		return ws, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrBreakerOpen, err)
		}
		return nil, err
	}
	ws, ok := result.(*websocket.Conn)
	if !ok {
		return nil, fmt.Errorf("unexpected dial result %T", result)
	}
	return ws, nil
}

// rejectDuring waits for d while failing every command that arrives. It
// reports false when ctx ends first.
func (m *Manager) rejectDuring(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
			return true
		case cmd := <-m.commands:
			close(cmd.Respond)
		}
	}
}

// serve is the single writer for ws. A reader goroutine resolves responses.
func (m *Manager) serve(ctx context.Context, ws *websocket.Conn) error {
	readErr := make(chan error, 1)
	go func() {
		readErr <- m.readLoop(ws)
	}()

	for {
		select {
		case <-ctx.Done():
			_ = ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client shutdown"),
				time.Now().Add(closeGrace))
			ws.Close()
			<-readErr
			return ctx.Err()
		case err := <-readErr:
			ws.Close()
			return err
		case cmd := <-m.commands:
			id := uuid.NewString()
			m.register(id, cmd.Respond)
			events.Conn.Send(id, cmd.Region.Name())
			if err := ws.WriteJSON(wire.Request{ID: id, Region: cmd.Region}); err != nil {
				ws.Close()
				<-readErr
				return fmt.Errorf("write request: %w", err)
			}
		}
	}
}

func (m *Manager) readLoop(ws *websocket.Conn) error {
	for {
		var resp wire.Response
		if err := ws.ReadJSON(&resp); err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		if err := resp.Validate(); err != nil {
			events.Conn.Orphan(resp.ID)
			continue
		}
		events.Conn.Receive(resp.ID)
		m.resolve(resp)
	}
}

func (m *Manager) register(id string, respond chan<- Response) {
	m.mu.Lock()
	m.pending[id] = respond
	m.mu.Unlock()
}

func (m *Manager) resolve(resp wire.Response) {
	m.mu.Lock()
	respond, ok := m.pending[resp.ID]
	delete(m.pending, resp.ID)
	m.mu.Unlock()
	if !ok {
		events.Conn.Orphan(resp.ID)
		return
	}
	var out Response
	if resp.Error != nil {
		out.Err = resp.Error
	} else {
		out.Forecast = *resp.Forecast
	}
	respond <- out
}

// failPending closes every outstanding response channel without a value and
// reports how many there were.
func (m *Manager) failPending() int {
	m.mu.Lock()
	pending := m.pending
	m.pending = make(map[string]chan<- Response)
	m.mu.Unlock()
	for _, respond := range pending {
		close(respond)
	}
	return len(pending)
}
