package state

import (
	"testing"

	"github.com/atomicstack/weather-dashboard/internal/weather"
)

func TestNewDashboardStartsOnFirstRegion(t *testing.T) {
	d := NewDashboard(DefaultRegions, weather.Rain)
	idx, ok := d.Cursor()
	if !ok || idx != 0 {
		t.Fatalf("expected cursor 0, got %d (ok=%v)", idx, ok)
	}
	region, ok := d.Selected()
	if !ok || region != "Wexford" {
		t.Fatalf("expected Wexford selected, got %q", region)
	}
	if d.Channel() != weather.Rain {
		t.Fatalf("expected Rain channel, got %v", d.Channel())
	}
	if d.LookupPending() {
		t.Fatalf("expected no pending lookup")
	}
}

func TestStoreOverwritesWithoutGrowing(t *testing.T) {
	d := NewDashboard(DefaultRegions, weather.Rain)
	d.Store("Cork", weather.Forecast{Rain: 1})
	d.Store("Cork", weather.Forecast{Rain: 2})
	if d.CacheSize() != 1 {
		t.Fatalf("expected cache size 1, got %d", d.CacheSize())
	}
	f, ok := d.Forecast("Cork")
	if !ok || f.Rain != 2 {
		t.Fatalf("expected latest forecast, got %#v", f)
	}
	if _, ok := d.Forecast("Wexford"); ok {
		t.Fatalf("expected no forecast for Wexford")
	}
}

func TestRegionsReturnsCopy(t *testing.T) {
	d := NewDashboard(DefaultRegions, weather.Rain)
	regions := d.Regions()
	regions[0] = "Kerry"
	if got, _ := d.Selected(); got != "Wexford" {
		t.Fatalf("expected internal list untouched, got %q", got)
	}
}
