package display

import (
	"time"

	"github.com/Sternrassler/weather-cli/pkg/weather"
)

// DayAggregate summarizes one calendar date of forecast intervals.
type DayAggregate struct {
	Date         string      `json:"date"` // 2006-01-02, local time
	Label        string      `json:"label"`
	Icon         string      `json:"icon"`
	Description  string      `json:"description"`
	MaxTemp      float64     `json:"max_temp"`
	MinTemp      float64     `json:"min_temp"`
	MaxBucket    ColorBucket `json:"max_bucket"`
	MinBucket    ColorBucket `json:"min_bucket"`
	AvgHumidity  int         `json:"avg_humidity"`
	AvgWindSpeed float64     `json:"avg_wind_speed"`
}

type dayGroup struct {
	date    time.Time
	entries []weather.ForecastEntry
}

// GroupDays aggregates the first days*8 intervals by calendar date in now's
// location. Dates keep their first-seen order and at most days are returned.
func GroupDays(list []weather.ForecastEntry, days int, units weather.Units, now time.Time) ([]DayAggregate, error) {
	if days <= 0 {
		return nil, nil
	}

	limit := days * weather.IntervalsPerDay
	if limit > len(list) {
		limit = len(list)
	}

	loc := now.Location()
	var groups []*dayGroup
	byDate := make(map[string]*dayGroup)

	for i, e := range list[:limit] {
		if e.Main == nil {
			return nil, malformed("list[%d]: missing main", i)
		}
		if len(e.Weather) == 0 {
			return nil, malformed("list[%d]: missing weather[0]", i)
		}

		date := dateOf(e.Time().In(loc))
		key := date.Format("2006-01-02")
		g, ok := byDate[key]
		if !ok {
			g = &dayGroup{date: date}
			byDate[key] = g
			groups = append(groups, g)
		}
		g.entries = append(g.entries, e)
	}

	if len(groups) > days {
		groups = groups[:days]
	}

	today := dateOf(now)
	out := make([]DayAggregate, 0, len(groups))
	for _, g := range groups {
		out = append(out, aggregate(g, today, units))
	}
	return out, nil
}

func aggregate(g *dayGroup, today time.Time, units weather.Units) DayAggregate {
	maxTemp := g.entries[0].Main.Temp
	minTemp := maxTemp
	humidity := 0
	wind := 0.0

	for _, e := range g.entries {
		if e.Main.Temp > maxTemp {
			maxTemp = e.Main.Temp
		}
		if e.Main.Temp < minTemp {
			minTemp = e.Main.Temp
		}
		humidity += e.Main.Humidity
		wind += e.Wind.Speed
	}

	n := len(g.entries)
	description := g.entries[n/2].Weather[0].Description

	return DayAggregate{
		Date:         g.date.Format("2006-01-02"),
		Label:        DayLabel(g.date, today),
		Icon:         Icon(description),
		Description:  Title(description),
		MaxTemp:      maxTemp,
		MinTemp:      minTemp,
		MaxBucket:    Bucket(maxTemp, units),
		MinBucket:    Bucket(minTemp, units),
		AvgHumidity:  floorDiv(humidity, n),
		AvgWindSpeed: wind / float64(n),
	}
}

// DayLabel returns "Today", "Tomorrow" or a MM/DD date relative to today.
// Both arguments must be midnight in the same location.
func DayLabel(date, today time.Time) string {
	switch {
	case date.Equal(today):
		return "Today"
	case date.Equal(today.AddDate(0, 0, 1)):
		return "Tomorrow"
	default:
		return date.Format("01/02")
	}
}

// dateOf truncates t to midnight in its own location.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// floorDiv rounds toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
