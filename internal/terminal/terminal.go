// Package terminal owns the raw-mode alternate screen. It runs a Bubble Tea
// program purely as a terminal primitive: key presses are forwarded on a
// channel and the screen shows whatever frame was drawn last.
package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// ErrNotTerminal is returned by Start when the input is not a TTY.
var ErrNotTerminal = errors.New("input is not a terminal")

const defaultKeyBuffer = 64

// Options configures Start. Nil Input and Output select stdin and stdout.
type Options struct {
	Input     *os.File
	Output    io.Writer
	KeyBuffer int
}

// Terminal is a running alternate-screen session.
type Terminal struct {
	program *tea.Program
	screen  *screen
	done    chan struct{}
	runErr  error

	restoreOnce sync.Once
	restoreErr  error
}

// Start enters raw mode on the alternate screen.
func Start(opts Options) (*Terminal, error) {
	in := opts.Input
	if in == nil {
		in = os.Stdin
	}
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}
	buffer := opts.KeyBuffer
	if buffer <= 0 {
		buffer = defaultKeyBuffer
	}
	s := newScreen(buffer)
	if w, h, err := term.GetSize(fd); err == nil {
		s.setSize(w, h)
	}
	t := &Terminal{
		program: tea.NewProgram(s, tea.WithAltScreen(), tea.WithInput(in), tea.WithOutput(out)),
		screen:  s,
		done:    make(chan struct{}),
	}
	go func() {
		defer close(t.done)
		defer close(s.keys)
		_, t.runErr = t.program.Run()
	}()
	return t, nil
}

// Keys streams key presses in arrival order. It is closed when the program
// exits.
func (t *Terminal) Keys() <-chan tea.KeyMsg {
	return t.screen.keys
}

// Size reports the last known terminal dimensions.
func (t *Terminal) Size() (int, int) {
	return t.screen.size()
}

// Draw replaces the visible frame. It never blocks the caller.
func (t *Terminal) Draw(frame string) error {
	select {
	case <-t.done:
		return fmt.Errorf("draw: %w", tea.ErrProgramKilled)
	default:
	}
	t.screen.setFrame(frame)
	go t.program.Send(redrawMsg{})
	return nil
}

// Restore leaves the alternate screen and disables raw mode. Only the first
// call has any effect; later calls return the first result.
func (t *Terminal) Restore() error {
	t.restoreOnce.Do(func() {
		t.screen.stop()
		t.program.Quit()
		<-t.done
		if t.runErr != nil && !errors.Is(t.runErr, tea.ErrProgramKilled) {
			t.restoreErr = fmt.Errorf("restore terminal: %w", t.runErr)
		}
	})
	return t.restoreErr
}

type redrawMsg struct{}

// screen is the Bubble Tea model behind a Terminal.
type screen struct {
	keys    chan tea.KeyMsg
	stopped chan struct{}
	once    sync.Once

	mu     sync.Mutex
	width  int
	height int
	frame  string
}

func newScreen(buffer int) *screen {
	return &screen{
		keys:    make(chan tea.KeyMsg, buffer),
		stopped: make(chan struct{}),
	}
}

func (s *screen) Init() tea.Cmd { return nil }

func (s *screen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		select {
		case s.keys <- msg:
		case <-s.stopped:
		}
	case tea.WindowSizeMsg:
		s.setSize(msg.Width, msg.Height)
	}
	return s, nil
}

func (s *screen) View() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

func (s *screen) stop() {
	s.once.Do(func() { close(s.stopped) })
}

func (s *screen) setFrame(frame string) {
	s.mu.Lock()
	s.frame = frame
	s.mu.Unlock()
}

func (s *screen) setSize(w, h int) {
	s.mu.Lock()
	s.width, s.height = w, h
	s.mu.Unlock()
}

func (s *screen) size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}
