package display

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Sternrassler/weather-cli/pkg/weather"
)

// ErrMalformedPayload is returned when a payload lacks a field the views need.
var ErrMalformedPayload = errors.New("malformed weather payload")

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedPayload, fmt.Sprintf(format, args...))
}

// Title upper-cases the first letter of each word of a description.
// A Caser is stateful, so each call gets its own.
func Title(description string) string {
	return cases.Title(language.English).String(description)
}

// CurrentView is the render-ready current weather.
type CurrentView struct {
	City          string        `json:"city"`
	Country       string        `json:"country"`
	Description   string        `json:"description"`
	Icon          string        `json:"icon"`
	Temp          float64       `json:"temp"`
	FeelsLike     float64       `json:"feels_like"`
	TempBucket    ColorBucket   `json:"temp_bucket"`
	Humidity      int           `json:"humidity"`
	Pressure      float64       `json:"pressure"`
	WindSpeed     float64       `json:"wind_speed"`
	WindDirection string        `json:"wind_direction"`
	Units         weather.Units `json:"units"`
	Labels        UnitLabels    `json:"labels"`
	ObservedAt    time.Time     `json:"observed_at"`
}

// Current builds the current weather view. now is the lookup time.
func Current(p *weather.CurrentPayload, units weather.Units, now time.Time) (*CurrentView, error) {
	if p == nil {
		return nil, malformed("nil payload")
	}
	if p.Name == "" {
		return nil, malformed("missing name")
	}
	if len(p.Weather) == 0 {
		return nil, malformed("missing weather[0]")
	}
	if p.Main == nil {
		return nil, malformed("missing main")
	}

	description := p.Weather[0].Description
	return &CurrentView{
		City:          p.Name,
		Country:       p.Sys.Country,
		Description:   Title(description),
		Icon:          Icon(description),
		Temp:          p.Main.Temp,
		FeelsLike:     p.Main.FeelsLike,
		TempBucket:    Bucket(p.Main.Temp, units),
		Humidity:      p.Main.Humidity,
		Pressure:      p.Main.Pressure,
		WindSpeed:     p.Wind.Speed,
		WindDirection: WindDirection(p.Wind.Speed, p.Wind.Deg),
		Units:         units,
		Labels:        Labels(units),
		ObservedAt:    now,
	}, nil
}

// ForecastView is the render-ready multi-day forecast.
type ForecastView struct {
	City    string         `json:"city"`
	Country string         `json:"country"`
	Days    int            `json:"days"`
	Units   weather.Units  `json:"units"`
	Labels  UnitLabels     `json:"labels"`
	Entries []DayAggregate `json:"entries"`
}

// Forecast builds the forecast view for the first days calendar dates.
func Forecast(p *weather.ForecastPayload, days int, units weather.Units, now time.Time) (*ForecastView, error) {
	if p == nil {
		return nil, malformed("nil payload")
	}
	if p.City.Name == "" {
		return nil, malformed("missing city.name")
	}

	entries, err := GroupDays(p.List, days, units, now)
	if err != nil {
		return nil, err
	}

	return &ForecastView{
		City:    p.City.Name,
		Country: p.City.Country,
		Days:    days,
		Units:   units,
		Labels:  Labels(units),
		Entries: entries,
	}, nil
}
