package state

import "github.com/atomicstack/weather-dashboard/internal/weather"

// Cursor returns the selected index. ok is false only when there are no regions.
func (d *Dashboard) Cursor() (int, bool) {
	if len(d.regions) == 0 {
		return 0, false
	}
	return d.cursor, true
}

// Selected returns the region under the cursor.
func (d *Dashboard) Selected() (weather.Region, bool) {
	idx, ok := d.Cursor()
	if !ok {
		return "", false
	}
	return d.regions[idx], true
}

// MoveUp moves the cursor towards the first region. It reports whether the
// cursor moved; it never wraps.
func (d *Dashboard) MoveUp() bool {
	return d.moveCursorBy(-1)
}

// MoveDown moves the cursor towards the last region. It reports whether the
// cursor moved; it never wraps.
func (d *Dashboard) MoveDown() bool {
	return d.moveCursorBy(1)
}

func (d *Dashboard) moveCursorBy(delta int) bool {
	if len(d.regions) == 0 {
		d.cursor = 0
		return false
	}
	old := d.cursor
	d.cursor += delta
	if d.cursor < 0 {
		d.cursor = 0
	}
	if d.cursor >= len(d.regions) {
		d.cursor = len(d.regions) - 1
	}
	return d.cursor != old
}
