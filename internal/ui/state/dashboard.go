package state

import "github.com/atomicstack/weather-dashboard/internal/weather"

// DefaultRegions is the seed list used when no regions are configured.
var DefaultRegions = []weather.Region{"Wexford", "Cork"}

// Dashboard is the application state. It is owned by the UI loop and is not
// safe for concurrent use.
type Dashboard struct {
	channel       weather.Channel
	regions       []weather.Region
	cursor        int
	cache         map[weather.Region]weather.Forecast
	lookupPending bool
}

// NewDashboard builds the state for a fixed region list. The cursor starts on
// the first region when there is one.
func NewDashboard(regions []weather.Region, channel weather.Channel) *Dashboard {
	dup := make([]weather.Region, len(regions))
	copy(dup, regions)
	return &Dashboard{
		channel: channel,
		regions: dup,
		cache:   make(map[weather.Region]weather.Forecast),
	}
}

// Channel returns the active forecast channel.
func (d *Dashboard) Channel() weather.Channel {
	return d.channel
}

// SetChannel switches the active forecast channel.
func (d *Dashboard) SetChannel(c weather.Channel) {
	d.channel = c
}

// Regions returns a copy of the region list.
func (d *Dashboard) Regions() []weather.Region {
	dup := make([]weather.Region, len(d.regions))
	copy(dup, d.regions)
	return dup
}

// LookupPending reports whether a fetch for the selected region is requested.
func (d *Dashboard) LookupPending() bool {
	return d.lookupPending
}

// SetLookupPending sets or clears the fetch request.
func (d *Dashboard) SetLookupPending(pending bool) {
	d.lookupPending = pending
}

// Store records the latest forecast for a region, replacing any earlier one.
func (d *Dashboard) Store(region weather.Region, f weather.Forecast) {
	d.cache[region] = f
}

// Forecast returns the last known forecast for a region.
func (d *Dashboard) Forecast(region weather.Region) (weather.Forecast, bool) {
	f, ok := d.cache[region]
	return f, ok
}

// CacheSize returns the number of regions with a known forecast.
func (d *Dashboard) CacheSize() int {
	return len(d.cache)
}
