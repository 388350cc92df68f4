package server

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"

	"github.com/atomicstack/weather-dashboard/internal/weather"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Counties lists the regions the dummy provider knows about.
var Counties = []weather.Region{
	"Carlow", "Cavan", "Clare", "Cork", "Donegal", "Dublin", "Galway", "Kerry",
	"Kildare", "Kilkenny", "Laois", "Leitrim", "Limerick", "Longford", "Louth",
	"Mayo", "Meath", "Monaghan", "Offaly", "Roscommon", "Sligo", "Tipperary",
	"Waterford", "Westmeath", "Wexford", "Wicklow",
}

// maxTypoDistance is the largest edit distance accepted when nothing matches
// as a subsequence.
const maxTypoDistance = 2

// CountyProvider is the dummy forecast Processor. Readings are derived from
// the county name, so the same county always gets the same forecast.
type CountyProvider struct {
	counties []weather.Region
	labels   []string
	delay    time.Duration
}

// NewCountyProvider builds a provider that takes delay to answer each request.
func NewCountyProvider(delay time.Duration) *CountyProvider {
	labels := make([]string, len(Counties))
	for i, c := range Counties {
		labels[i] = c.Name()
	}
	return &CountyProvider{counties: Counties, labels: labels, delay: delay}
}

// Resolve finds the county a name refers to. Exact matches ignore case;
// otherwise the shortest fuzzy match wins, then the closest spelling.
func (p *CountyProvider) Resolve(name string) (weather.Region, bool) {
	query := strings.TrimSpace(name)
	if query == "" {
		return "", false
	}
	for _, c := range p.counties {
		if strings.EqualFold(c.Name(), query) {
			return c, true
		}
	}
	ranks := fuzzy.RankFindNormalizedFold(query, p.labels)
	if len(ranks) > 0 {
		sort.Stable(ranks)
		return p.counties[ranks[0].OriginalIndex], true
	}
	best, bestDistance := -1, maxTypoDistance+1
	lower := strings.ToLower(query)
	for i, label := range p.labels {
		if d := fuzzy.LevenshteinDistance(lower, strings.ToLower(label)); d < bestDistance {
			best, bestDistance = i, d
		}
	}
	if best < 0 {
		return "", false
	}
	return p.counties[best], true
}

// Process resolves the region and returns its forecast after the configured
// delay.
func (p *CountyProvider) Process(ctx context.Context, region weather.Region) (weather.Forecast, error) {
	county, ok := p.Resolve(region.Name())
	if !ok {
		return weather.Forecast{}, weather.NewServerError(weather.CodeUnknownRegion, "no county matches %q", region.Name())
	}
	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return weather.Forecast{}, fmt.Errorf("forecast for %s: %w", county.Name(), ctx.Err())
		}
	}
	return ReadingsFor(county), nil
}

// ReadingsFor derives a stable forecast from the county name. Each reading is
// in [0, 1) with two decimals.
func ReadingsFor(county weather.Region) weather.Forecast {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(county.Name())))
	sum := h.Sum64()
	reading := func(shift uint) float64 {
		return float64((sum>>shift)%100) / 100
	}
	return weather.Forecast{
		Wind: reading(0),
		Rain: reading(16),
		Sun:  reading(32),
	}
}
