// Package mux correlates forecast requests with their responses over the
// shared server connection.
//
// Callers Submit regions without blocking. Run forwards each one to the
// connection manager with its own single-use response channel and waits on
// all outstanding responses at once, publishing each outcome on Results as
// soon as it arrives. Results therefore follow completion order, not
// submission order; consumers must key them by Result.Region.
package mux

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/atomicstack/weather-dashboard/internal/conn"
	"github.com/atomicstack/weather-dashboard/internal/logging/events"
	"github.com/atomicstack/weather-dashboard/internal/weather"
)

var (
	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("multiplexer closed")
	// ErrBacklogFull is returned by Submit when the submission queue is full.
	ErrBacklogFull = errors.New("submission backlog full")
	// ErrNoResponse marks a request whose response channel closed without a
	// value, typically because the connection was lost.
	ErrNoResponse = errors.New("no response")
)

// Result is the outcome of one submitted region. Err is nil on success, a
// *weather.ServerError for server-reported failures, or ErrNoResponse.
type Result struct {
	Region   weather.Region
	Forecast weather.Forecast
	Err      error
}

// Options sizes the multiplexer queues. Zero values select the defaults.
type Options struct {
	Backlog      int
	ResultBuffer int
	// MaxOutstanding caps in-flight requests; 0 leaves them unbounded. At the
	// cap, queued submissions wait until a response completes.
	MaxOutstanding int
}

const (
	defaultBacklog      = 100
	defaultResultBuffer = 100
)

// Multiplexer fans requests out to the connection manager and fans the
// responses back in.
type Multiplexer struct {
	commands       chan<- conn.Command
	submissions    chan weather.Region
	results        chan Result
	maxOutstanding int
	outstanding    atomic.Int64

	closeMu sync.RWMutex
	closed  bool
}

type completion struct {
	region weather.Region
	resp   conn.Response
	ok     bool
}

// New creates a multiplexer that sends commands to the connection manager.
func New(commands chan<- conn.Command, opts Options) *Multiplexer {
	if opts.Backlog <= 0 {
		opts.Backlog = defaultBacklog
	}
	if opts.ResultBuffer <= 0 {
		opts.ResultBuffer = defaultResultBuffer
	}
	if opts.MaxOutstanding < 0 {
		opts.MaxOutstanding = 0
	}
	return &Multiplexer{
		commands:       commands,
		submissions:    make(chan weather.Region, opts.Backlog),
		results:        make(chan Result, opts.ResultBuffer),
		maxOutstanding: opts.MaxOutstanding,
	}
}

// Submit queues a region without blocking.
func (m *Multiplexer) Submit(region weather.Region) error {
	m.closeMu.RLock()
	defer m.closeMu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	select {
	case m.submissions <- region:
		return nil
	default:
		return ErrBacklogFull
	}
}

// Close stops accepting submissions. Run returns once the queued and
// outstanding requests have resolved. Close is idempotent.
func (m *Multiplexer) Close() {
	m.closeMu.Lock()
	defer m.closeMu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	close(m.submissions)
}

// Results delivers outcomes in completion order. It is closed when Run returns.
func (m *Multiplexer) Results() <-chan Result {
	return m.results
}

// Outstanding returns the number of requests awaiting a response.
func (m *Multiplexer) Outstanding() int {
	return int(m.outstanding.Load())
}

// Run services submissions and completions until Close has been called and
// nothing is outstanding, or until ctx is cancelled. Individual request
// failures never stop it.
func (m *Multiplexer) Run(ctx context.Context) error {
	defer close(m.results)
	completions := make(chan completion)
	submissions := m.submissions
	inFlight := 0

	for {
		if submissions == nil && inFlight == 0 {
			return nil
		}
		accept := submissions
		if m.maxOutstanding > 0 && inFlight >= m.maxOutstanding {
			accept = nil
		}

		select {
		case <-ctx.Done():
			return nil
		case region, ok := <-accept:
			if !ok {
				submissions = nil
				continue
			}
			respond := make(chan conn.Response, 1)
			select {
			case m.commands <- conn.Command{Region: region, Respond: respond}:
			case <-ctx.Done():
				return nil
			}
			inFlight++
			m.outstanding.Store(int64(inFlight))
			events.Fetch.Submit(region.Name(), inFlight)
			go awaitResponse(ctx, region, respond, completions)
		case c := <-completions:
			inFlight--
			m.outstanding.Store(int64(inFlight))
			events.Fetch.Result(c.region.Name(), inFlight)
			select {
			case m.results <- classify(c):
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func awaitResponse(ctx context.Context, region weather.Region, respond <-chan conn.Response, completions chan<- completion) {
	var c completion
	select {
	case c.resp, c.ok = <-respond:
	case <-ctx.Done():
		return
	}
	c.region = region
	select {
	case completions <- c:
	case <-ctx.Done():
	}
}

func classify(c completion) Result {
	res := Result{Region: c.region}
	switch {
	case !c.ok:
		res.Err = ErrNoResponse
	case c.resp.Err != nil:
		res.Err = c.resp.Err
	default:
		res.Forecast = c.resp.Forecast
	}
	return res
}
