package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Sternrassler/weather-cli/pkg/display"
	"github.com/Sternrassler/weather-cli/pkg/weather"
)

func currentView() *display.CurrentView {
	return &display.CurrentView{
		City:          "London",
		Country:       "GB",
		Description:   "Clear Sky",
		Icon:          "☀️",
		Temp:          90,
		FeelsLike:     93.24,
		TempBucket:    display.VeryHot,
		Humidity:      40,
		Pressure:      1015.4,
		WindSpeed:     5,
		WindDirection: "S",
		Units:         weather.UnitsImperial,
		Labels:        display.Labels(weather.UnitsImperial),
		ObservedAt:    time.Date(2025, 7, 1, 15, 4, 5, 0, time.UTC),
	}
}

func forecastView() *display.ForecastView {
	return &display.ForecastView{
		City:    "Paris",
		Country: "FR",
		Days:    2,
		Units:   weather.UnitsMetric,
		Labels:  display.Labels(weather.UnitsMetric),
		Entries: []display.DayAggregate{
			{Label: "Today", Icon: "🌧️", Description: "Light Rain", MaxTemp: 17.6, MinTemp: 9.4, MaxBucket: display.Warm, MinBucket: display.Cool, AvgHumidity: 81, AvgWindSpeed: 3.3},
			{Label: "Tomorrow", Icon: "☀️", Description: "Clear Sky", MaxTemp: 24, MinTemp: 12, MaxBucket: display.Hot, MinBucket: display.Warm, AvgHumidity: 55, AvgWindSpeed: 1},
		},
	}
}

func TestCurrent_Plain(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Current(currentView())
	out := buf.String()

	for _, want := range []string{
		"London, GB",
		"☀️ Clear Sky",
		"90.0°F (feels like 93.2°F)",
		"40%",
		"5.0 mph",
		"1015 in",
		"Direction: S",
		"🕐 2025-07-01 15:04:05",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if strings.Contains(out, "\x1b[") {
		t.Error("plain output contains ANSI escapes")
	}
}

func TestCurrent_ColorUsesBucket(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, true).Current(currentView())

	// very hot is bold red
	if !strings.Contains(buf.String(), "1;31m90.0°F\x1b[0m") {
		t.Errorf("temperature not styled red:\n%q", buf.String())
	}
}

func TestForecast_Plain(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Forecast(forecastView())
	out := buf.String()

	for _, want := range []string{
		"2-Day Forecast for Paris, FR",
		"Date", "Weather", "High/Low", "Details",
		"Today", "Tomorrow",
		"🌧️ Light Rain",
		"18° / 9°",
		"24° / 12°",
		"💧 81%  🌬️ 3.3m/s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if strings.Index(out, "Today") > strings.Index(out, "Tomorrow") {
		t.Error("rows out of order")
	}
}

func TestBox_LinesAreAligned(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, true).Success("Weather cache cleared successfully!")

	var widths []int
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		widths = append(widths, lipgloss.Width(line))
	}
	for i, w := range widths {
		if w != widths[0] {
			t.Errorf("line %d width %d, want %d", i, w, widths[0])
		}
	}
}

func TestPanel_TitleInTopBorder(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Error("boom")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) < 3 {
		t.Fatalf("panel too short:\n%s", buf.String())
	}
	if !strings.HasPrefix(lines[0], "╭") || !strings.Contains(lines[0], " Error ") || !strings.HasSuffix(lines[0], "╮") {
		t.Errorf("top border = %q", lines[0])
	}
	if !strings.HasPrefix(lines[len(lines)-1], "╰") {
		t.Errorf("bottom border = %q", lines[len(lines)-1])
	}
}

func TestForecast_TableAligned(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, true).Forecast(forecastView())

	lines := strings.Split(strings.Trim(buf.String(), "\n"), "\n")
	body := lines[1:]
	if !strings.HasPrefix(stripANSI(body[0]), "╭") {
		t.Errorf("table should use a rounded border, got %q", stripANSI(body[0]))
	}
	for i, line := range body {
		if w := lipgloss.Width(line); w != lipgloss.Width(body[0]) {
			t.Errorf("row %d width %d, want %d", i, w, lipgloss.Width(body[0]))
		}
	}
	if lipgloss.Width(lines[0]) != lipgloss.Width(body[0]) {
		t.Error("title is not centered over the table")
	}
}

func TestError(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Error("API key not found.\nGet a free API key")
	out := buf.String()

	if !strings.Contains(out, "Error") {
		t.Errorf("missing title:\n%s", out)
	}
	if !strings.Contains(out, "❌ API key not found.") {
		t.Errorf("missing first line:\n%s", out)
	}
	if !strings.Contains(out, "Get a free API key") {
		t.Errorf("missing second line:\n%s", out)
	}
}

func TestSuccess(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Success("done")
	if !strings.Contains(buf.String(), "✅ done") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestLoading(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Loading("Getting current weather for London...")
	if buf.Len() != 0 {
		t.Errorf("Loading wrote %q without a terminal", buf.String())
	}

	New(&buf, true).Loading("Getting current weather for London...")
	if !strings.Contains(buf.String(), "Getting current weather for London...") {
		t.Errorf("Loading output = %q", buf.String())
	}
}

func TestGoodbye(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Goodbye()
	if !strings.Contains(buf.String(), "👋 Goodbye!") {
		t.Errorf("output = %q", buf.String())
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b {
			for i < len(s) && s[i] != 'm' {
				i++
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
