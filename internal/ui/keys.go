package ui

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrUnknownAction is returned when a key override names no known action.
var ErrUnknownAction = errors.New("unknown key action")

// Action is what a key press asks the loop to do.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionWind
	ActionRain
	ActionSun
	ActionUp
	ActionDown
	ActionFetch
)

var actionNames = map[Action]string{
	ActionNone:  "none",
	ActionQuit:  "quit",
	ActionWind:  "wind",
	ActionRain:  "rain",
	ActionSun:   "sun",
	ActionUp:    "up",
	ActionDown:  "down",
	ActionFetch: "fetch",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// KeyMap binds keys to actions. It satisfies help.KeyMap for the footer.
type KeyMap struct {
	Quit  key.Binding
	Wind  key.Binding
	Rain  key.Binding
	Sun   key.Binding
	Up    key.Binding
	Down  key.Binding
	Fetch key.Binding
}

// DefaultKeyMap returns the stock bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Wind:  key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "wind")),
		Rain:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rain")),
		Sun:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sun")),
		Up:    key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:  key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Fetch: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "fetch")),
	}
}

// WithOverrides rebinds actions by name, e.g. {"fetch": ["enter", "g"]}.
// Help text follows the new keys.
func (k KeyMap) WithOverrides(overrides map[string][]string) (KeyMap, error) {
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		keys := overrides[name]
		if len(keys) == 0 {
			return k, fmt.Errorf("%s: no keys given", name)
		}
		binding := k.binding(strings.ToLower(strings.TrimSpace(name)))
		if binding == nil {
			return k, fmt.Errorf("%w: %q", ErrUnknownAction, name)
		}
		desc := binding.Help().Desc
		*binding = key.NewBinding(key.WithKeys(keys...), key.WithHelp(strings.Join(keys, "/"), desc))
	}
	return k, nil
}

func (k *KeyMap) binding(name string) *key.Binding {
	switch name {
	case "quit":
		return &k.Quit
	case "wind":
		return &k.Wind
	case "rain":
		return &k.Rain
	case "sun":
		return &k.Sun
	case "up":
		return &k.Up
	case "down":
		return &k.Down
	case "fetch":
		return &k.Fetch
	}
	return nil
}

// Resolve maps a key press to an action. Quit is checked first. The Alt
// modifier is ignored.
func (k KeyMap) Resolve(msg tea.KeyMsg) Action {
	msg.Alt = false
	switch {
	case key.Matches(msg, k.Quit):
		return ActionQuit
	case key.Matches(msg, k.Wind):
		return ActionWind
	case key.Matches(msg, k.Rain):
		return ActionRain
	case key.Matches(msg, k.Sun):
		return ActionSun
	case key.Matches(msg, k.Up):
		return ActionUp
	case key.Matches(msg, k.Down):
		return ActionDown
	case key.Matches(msg, k.Fetch):
		return ActionFetch
	}
	return ActionNone
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Wind, k.Rain, k.Sun, k.Up, k.Down, k.Fetch, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Wind, k.Rain, k.Sun},
		{k.Up, k.Down},
		{k.Fetch, k.Quit},
	}
}
