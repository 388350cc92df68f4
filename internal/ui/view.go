package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atomicstack/weather-dashboard/internal/format/table"
	"github.com/atomicstack/weather-dashboard/internal/theme"
	"github.com/atomicstack/weather-dashboard/internal/ui/state"
	"github.com/atomicstack/weather-dashboard/internal/weather"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

var styles = theme.Default()

const (
	tabsTitle     = "Weather Type"
	countiesTitle = "Counties"
	forecastTitle = "Forecast"
	tabDivider    = " | "
	indicator     = "▌"
)

// Render draws the dashboard. The frame is cropped to width x height; zero
// dimensions leave it uncropped.
func Render(d *state.Dashboard, keys KeyMap, width, height int) string {
	body := lipgloss.JoinHorizontal(lipgloss.Top, renderCounties(d), renderForecast(d))
	frame := lipgloss.JoinVertical(lipgloss.Left,
		renderTabs(d.Channel()),
		body,
		renderHelp(keys, width),
	)
	return crop(frame, width, height)
}

func renderTabs(active weather.Channel) string {
	labels := weather.Labels()
	tabs := make([]string, len(labels))
	for i, label := range labels {
		style := styles.Tab
		if weather.MustChannel(i) == active {
			style = styles.ActiveTab
		}
		tabs[i] = style.Render(label)
	}
	return pane(tabsTitle, strings.Join(tabs, styles.TabDivider.Render(tabDivider)))
}

func renderCounties(d *state.Dashboard) string {
	regions := d.Regions()
	if len(regions) == 0 {
		return pane(countiesTitle, styles.Missing.Render("(no counties)"))
	}
	cursor, _ := d.Cursor()
	lines := make([]string, len(regions))
	for i, r := range regions {
		if i == cursor {
			lines[i] = styles.SelectedItemIndicator.Render(indicator) + styles.SelectedItem.Render(" "+r.Name())
			continue
		}
		lines[i] = styles.ItemIndicator.Render(indicator) + styles.Item.Render(" "+r.Name())
	}
	return pane(countiesTitle, strings.Join(lines, "\n"))
}

func renderForecast(d *state.Dashboard) string {
	region, ok := d.Selected()
	if !ok {
		return pane(forecastTitle, styles.Missing.Render("No counties configured"))
	}
	channel := d.Channel()
	forecast, known := d.Forecast(region)
	lines := []string{}
	if known {
		lines = append(lines, styles.Detail.Render(detailLine(channel, region, forecast)))
	} else {
		lines = append(lines, styles.Missing.Render(missingLine(channel, region)))
	}
	lines = append(lines, "")

	rows := make([][]string, 0, 3)
	for _, c := range weather.Channels() {
		reading := "-"
		if known {
			reading = formatReading(forecast.Get(c))
		}
		rows = append(rows, []string{c.String(), reading})
	}
	tbl := table.Table{
		Header: []string{"Channel", "Reading"},
		Rows:   rows,
		Align:  []table.Alignment{table.AlignLeft, table.AlignRight},
	}
	for i, line := range tbl.Lines() {
		switch {
		case i < 2:
			lines = append(lines, styles.TableHeader.Render(line))
		case weather.MustChannel(i-2) == channel:
			lines = append(lines, styles.ActiveTab.Render(line))
		default:
			lines = append(lines, styles.TableRow.Render(line))
		}
	}
	return pane(forecastTitle, strings.Join(lines, "\n"))
}

func renderHelp(keys KeyMap, width int) string {
	h := help.New()
	h.Width = width
	return styles.Footer.Render(h.View(keys))
}

func pane(title, body string) string {
	return styles.Pane.Render(styles.PaneTitle.Render(title) + "\n" + body)
}

func detailLine(c weather.Channel, region weather.Region, f weather.Forecast) string {
	return fmt.Sprintf("%s forecast for %s is %s", c, region.Name(), formatReading(f.Get(c)))
}

func missingLine(c weather.Channel, region weather.Region) string {
	return fmt.Sprintf("No %s forecast for %s yet", strings.ToLower(c.String()), region.Name())
}

// formatReading uses the shortest representation that round-trips, so 0.2
// renders as "0.2".
func formatReading(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func crop(frame string, width, height int) string {
	lines := strings.Split(frame, "\n")
	if height > 0 && len(lines) > height {
		lines = lines[:height]
		if height > 1 {
			lines[height-1] = "…"
		}
	}
	if width > 0 {
		for i, line := range lines {
			if lipgloss.Width(line) > width {
				lines[i] = truncate.StringWithTail(line, uint(width-1), "…")
			}
		}
	}
	return strings.Join(lines, "\n")
}
