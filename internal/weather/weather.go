package weather

import (
	"errors"
	"fmt"
	"strings"
)

// Region identifies an administrative region (a county) by name.
type Region string

// Name returns the display name of the region.
func (r Region) Name() string {
	return string(r)
}

// Forecast holds the three readings reported for a region.
type Forecast struct {
	Wind float64 `json:"wind_speed"`
	Rain float64 `json:"rainfall"`
	Sun  float64 `json:"sunshine"`
}

// Get returns the reading for the given channel.
func (f Forecast) Get(c Channel) float64 {
	switch c {
	case Wind:
		return f.Wind
	case Rain:
		return f.Rain
	case Sun:
		return f.Sun
	}
	panic(fmt.Sprintf("weather: forecast has no reading for channel %d", int(c)))
}

// Channel selects which forecast reading is displayed.
type Channel int

const (
	Wind Channel = iota
	Rain
	Sun
)

const channelCount = 3

var channelLabels = [channelCount]string{"Wind", "Rain", "Sun"}

// ErrInvalidChannel is returned for ordinals or labels outside the closed channel set.
var ErrInvalidChannel = errors.New("invalid weather channel")

// ChannelFromOrdinal converts a tab ordinal back to its channel.
func ChannelFromOrdinal(ordinal int) (Channel, error) {
	if ordinal < 0 || ordinal >= channelCount {
		return 0, fmt.Errorf("%w: ordinal %d", ErrInvalidChannel, ordinal)
	}
	return Channel(ordinal), nil
}

// MustChannel is ChannelFromOrdinal for ordinals taken from the closed set
// itself. An out-of-range ordinal is a programming error and panics.
func MustChannel(ordinal int) Channel {
	c, err := ChannelFromOrdinal(ordinal)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseChannel resolves a label such as "rain" (case-insensitive).
func ParseChannel(label string) (Channel, error) {
	want := strings.TrimSpace(label)
	for i, l := range channelLabels {
		if strings.EqualFold(l, want) {
			return Channel(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidChannel, label)
}

// Ordinal returns the tab position of the channel.
func (c Channel) Ordinal() int {
	return int(c)
}

func (c Channel) String() string {
	if c < 0 || int(c) >= channelCount {
		return fmt.Sprintf("Channel(%d)", int(c))
	}
	return channelLabels[c]
}

// Channels lists every channel in tab order.
func Channels() []Channel {
	out := make([]Channel, channelCount)
	for i := range out {
		out[i] = MustChannel(i)
	}
	return out
}

// Labels lists the channel labels in tab order.
func Labels() []string {
	out := make([]string, 0, channelCount)
	for _, c := range Channels() {
		out = append(out, c.String())
	}
	return out
}

// Server error codes.
const (
	CodeUnknownRegion = "unknown_region"
	CodeRateLimited   = "rate_limited"
	CodeUnavailable   = "unavailable"
	CodeInternal      = "internal"
)

// ServerError is an error reported by the forecast server in place of a forecast.
type ServerError struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return "server error: " + e.Code
	}
	return fmt.Sprintf("server error: %s: %s", e.Code, e.Message)
}

// NewServerError builds a ServerError with a formatted message.
func NewServerError(code, format string, args ...interface{}) *ServerError {
	return &ServerError{Code: code, Message: fmt.Sprintf(format, args...)}
}
