package display

import (
	"errors"
	"testing"
	"time"

	"github.com/Sternrassler/weather-cli/pkg/weather"
)

// intervals returns n entries 3 hours apart starting at start.
func intervals(start time.Time, n int, temp func(i int) float64, desc func(i int) string) []weather.ForecastEntry {
	out := make([]weather.ForecastEntry, n)
	for i := range out {
		out[i] = weather.ForecastEntry{
			Dt:      start.Add(time.Duration(i) * 3 * time.Hour).Unix(),
			Main:    &weather.MainReadings{Temp: temp(i), Humidity: 50 + i},
			Weather: []weather.Condition{{Description: desc(i)}},
			Wind:    weather.Wind{Speed: float64(i)},
		}
	}
	return out
}

func constDesc(d string) func(int) string { return func(int) string { return d } }

func TestGroupDays_TwoFullDays(t *testing.T) {
	now := time.Date(2025, 6, 10, 1, 30, 0, 0, time.UTC)
	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	list := intervals(start, 16, func(i int) float64 { return float64(10 + i) }, func(i int) string {
		if i < 8 {
			return "light rain"
		}
		return "clear sky"
	})

	got, err := GroupDays(list, 2, weather.UnitsMetric, now)
	if err != nil {
		t.Fatalf("GroupDays failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("groups = %d, want 2", len(got))
	}

	today := got[0]
	if today.Label != "Today" || today.Date != "2025-06-10" {
		t.Errorf("first group = %s %s, want Today 2025-06-10", today.Label, today.Date)
	}
	if today.MinTemp != 10 || today.MaxTemp != 17 {
		t.Errorf("today temps = %v/%v, want 17/10", today.MaxTemp, today.MinTemp)
	}
	// humidity 50..57 sums to 428; 428/8 = 53.5 floors to 53
	if today.AvgHumidity != 53 {
		t.Errorf("today humidity = %d, want 53", today.AvgHumidity)
	}
	// wind 0..7 averages 3.5
	if today.AvgWindSpeed != 3.5 {
		t.Errorf("today wind = %v, want 3.5", today.AvgWindSpeed)
	}
	if today.Icon != "🌧️" || today.Description != "Light Rain" {
		t.Errorf("today condition = %s %s", today.Icon, today.Description)
	}
	if today.MaxBucket != Warm || today.MinBucket != Warm {
		t.Errorf("today buckets = %s/%s, want warm/warm", today.MaxBucket, today.MinBucket)
	}

	tomorrow := got[1]
	if tomorrow.Label != "Tomorrow" {
		t.Errorf("second label = %q, want Tomorrow", tomorrow.Label)
	}
	if tomorrow.MaxTemp != 25 || tomorrow.MaxBucket != Hot {
		t.Errorf("tomorrow max = %v %s, want 25 hot", tomorrow.MaxTemp, tomorrow.MaxBucket)
	}
	if tomorrow.Icon != "☀️" {
		t.Errorf("tomorrow icon = %q", tomorrow.Icon)
	}
}

func TestGroupDays_MiddleEntryDescription(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	// Five entries on one day: index 5/2 = 2 is representative.
	start := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	descs := []string{"mist", "fog", "snow", "haze", "rain"}
	list := intervals(start, 5, func(int) float64 { return 0 }, func(i int) string { return descs[i] })

	got, err := GroupDays(list, 1, weather.UnitsMetric, now)
	if err != nil {
		t.Fatalf("GroupDays failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("groups = %d, want 1", len(got))
	}
	if got[0].Description != "Snow" || got[0].Icon != "❄️" {
		t.Errorf("condition = %s %s, want ❄️ Snow", got[0].Icon, got[0].Description)
	}
}

func TestGroupDays_PartialDaysAndTruncation(t *testing.T) {
	// Window starts mid-afternoon, so 16 intervals span three dates.
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	list := intervals(now, 16, func(i int) float64 { return float64(i) }, constDesc("few clouds"))

	got, err := GroupDays(list, 2, weather.UnitsMetric, now)
	if err != nil {
		t.Fatalf("GroupDays failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("groups = %d, want 2 (third date dropped)", len(got))
	}

	// 15:00, 18:00, 21:00 on the first date.
	if got[0].MinTemp != 0 || got[0].MaxTemp != 2 {
		t.Errorf("first day temps = %v/%v, want 2/0", got[0].MaxTemp, got[0].MinTemp)
	}
	if got[1].Date != "2025-06-11" || got[1].MinTemp != 3 || got[1].MaxTemp != 10 {
		t.Errorf("second day = %+v", got[1])
	}
}

func TestGroupDays_OnlyFirstDaysTimesEightEntries(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	// 40 entries returned even though 1 day was requested.
	list := intervals(now, 40, func(i int) float64 { return float64(i) }, constDesc("clear sky"))

	got, err := GroupDays(list, 1, weather.UnitsMetric, now)
	if err != nil {
		t.Fatalf("GroupDays failed: %v", err)
	}
	if len(got) != 1 || got[0].MaxTemp != 7 {
		t.Fatalf("got %+v, want one day with max 7", got)
	}
}

func TestGroupDays_FewerEntriesThanDays(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	list := intervals(now, 4, func(int) float64 { return 5 }, constDesc("mist"))

	got, err := GroupDays(list, 5, weather.UnitsMetric, now)
	if err != nil {
		t.Fatalf("GroupDays failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("groups = %d, want 1", len(got))
	}

	got, err = GroupDays(nil, 3, weather.UnitsMetric, now)
	if err != nil || len(got) != 0 {
		t.Errorf("GroupDays(nil) = %v, %v", got, err)
	}
}

func TestGroupDays_Malformed(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	noMain := intervals(now, 3, func(int) float64 { return 1 }, constDesc("mist"))
	noMain[1].Main = nil
	if _, err := GroupDays(noMain, 1, weather.UnitsMetric, now); !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("missing main error = %v", err)
	}

	noWeather := intervals(now, 3, func(int) float64 { return 1 }, constDesc("mist"))
	noWeather[2].Weather = nil
	if _, err := GroupDays(noWeather, 1, weather.UnitsMetric, now); !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("missing weather error = %v", err)
	}
}

func TestDayLabel(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		date     time.Time
		today    time.Time
		expected string
	}{
		{time.Date(2025, 6, 10, 0, 0, 0, 0, loc), time.Date(2025, 6, 10, 0, 0, 0, 0, loc), "Today"},
		{time.Date(2025, 6, 11, 0, 0, 0, 0, loc), time.Date(2025, 6, 10, 0, 0, 0, 0, loc), "Tomorrow"},
		{time.Date(2025, 6, 12, 0, 0, 0, 0, loc), time.Date(2025, 6, 10, 0, 0, 0, 0, loc), "06/12"},
		// Month and year rollovers still produce Tomorrow.
		{time.Date(2025, 2, 1, 0, 0, 0, 0, loc), time.Date(2025, 1, 31, 0, 0, 0, 0, loc), "Tomorrow"},
		{time.Date(2026, 1, 1, 0, 0, 0, 0, loc), time.Date(2025, 12, 31, 0, 0, 0, 0, loc), "Tomorrow"},
		{time.Date(2025, 6, 9, 0, 0, 0, 0, loc), time.Date(2025, 6, 10, 0, 0, 0, 0, loc), "06/09"},
	}

	for _, tt := range tests {
		t.Run(tt.expected+tt.date.Format("0102"), func(t *testing.T) {
			if got := DayLabel(tt.date, tt.today); got != tt.expected {
				t.Errorf("DayLabel(%v, %v) = %q, want %q", tt.date, tt.today, got, tt.expected)
			}
		})
	}
}

func TestForecast_View(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	p := &weather.ForecastPayload{
		List: intervals(now, 16, func(i int) float64 { return float64(60 + i) }, constDesc("overcast clouds")),
	}
	p.City.Name = "Seattle"
	p.City.Country = "US"

	v, err := Forecast(p, 2, weather.UnitsImperial, now)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if v.City != "Seattle" || v.Country != "US" || v.Days != 2 {
		t.Errorf("header = %s %s %d", v.City, v.Country, v.Days)
	}
	if len(v.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(v.Entries))
	}
	if v.Entries[0].Label != "Today" || v.Entries[1].Label != "Tomorrow" {
		t.Errorf("labels = %s, %s", v.Entries[0].Label, v.Entries[1].Label)
	}
	if v.Labels.Temp != "°F" {
		t.Errorf("Labels = %+v", v.Labels)
	}

	p.City.Name = ""
	if _, err := Forecast(p, 2, weather.UnitsImperial, now); !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("missing city error = %v", err)
	}
}
