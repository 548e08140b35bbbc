// Package display turns provider payloads into render-ready views.
//
// Everything here is pure: no I/O, no shared mutable state. The current time
// is passed in so day labels are deterministic under test.
package display

import (
	"fmt"
	"math"
	"strings"

	"github.com/Sternrassler/weather-cli/pkg/weather"
)

// DefaultIcon is used when no phrase in the icon table matches.
const DefaultIcon = "🌡️"

// iconTable is searched in order; the first phrase contained in the
// description wins, so "few clouds" must stay ahead of any broader match.
var iconTable = []struct {
	phrase string
	icon   string
}{
	{"clear sky", "☀️"},
	{"few clouds", "🌤️"},
	{"scattered clouds", "⛅"},
	{"broken clouds", "☁️"},
	{"overcast clouds", "☁️"},
	{"shower rain", "🌦️"},
	{"rain", "🌧️"},
	{"thunderstorm", "⛈️"},
	{"snow", "❄️"},
	{"mist", "🌫️"},
	{"fog", "🌫️"},
	{"haze", "🌫️"},
	{"dust", "🌪️"},
	{"sand", "🌪️"},
	{"ash", "🌋"},
	{"squall", "💨"},
	{"tornado", "🌪️"},
}

// Icon returns the icon for a condition description.
func Icon(description string) string {
	d := strings.ToLower(description)
	for _, e := range iconTable {
		if strings.Contains(d, e.phrase) {
			return e.icon
		}
	}
	return DefaultIcon
}

// ColorBucket is a temperature band, hottest first.
type ColorBucket int

const (
	VeryHot ColorBucket = iota
	Hot
	Warm
	Cool
	Cold
)

var bucketNames = [...]string{"very hot", "hot", "warm", "cool", "cold"}

var bucketColors = [...]string{"red", "yellow", "green", "cyan", "blue"}

// String returns the band name, e.g. "very hot".
func (b ColorBucket) String() string {
	if b < VeryHot || b > Cold {
		return "unknown"
	}
	return bucketNames[b]
}

// Color returns the terminal color name for the band.
func (b ColorBucket) Color() string {
	if b < VeryHot || b > Cold {
		return ""
	}
	return bucketColors[b]
}

// MarshalText encodes the band by name.
func (b ColorBucket) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText decodes a band name written by MarshalText.
func (b *ColorBucket) UnmarshalText(text []byte) error {
	for i, name := range bucketNames {
		if name == string(text) {
			*b = ColorBucket(i)
			return nil
		}
	}
	return fmt.Errorf("unknown temperature band %q", text)
}

// Inclusive lower bounds for VeryHot, Hot, Warm and Cool.
var (
	imperialThresholds = [4]float64{85, 70, 50, 32}
	metricThresholds   = [4]float64{30, 20, 10, 0}
)

// Bucket maps a temperature to its band for the given unit system.
func Bucket(temp float64, units weather.Units) ColorBucket {
	thresholds := metricThresholds
	if units == weather.UnitsImperial {
		thresholds = imperialThresholds
	}
	for i, lower := range thresholds {
		if temp >= lower {
			return ColorBucket(i)
		}
	}
	return Cold
}

// UnitLabels are the display suffixes for a unit system.
type UnitLabels struct {
	Temp     string `json:"temp"`
	Speed    string `json:"speed"`
	Pressure string `json:"pressure"`
}

// Labels returns the unit labels. Anything but imperial is metric.
func Labels(units weather.Units) UnitLabels {
	if units == weather.UnitsImperial {
		return UnitLabels{Temp: "°F", Speed: "mph", Pressure: "in"}
	}
	return UnitLabels{Temp: "°C", Speed: "m/s", Pressure: "hPa"}
}

var compass = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// WindDirection returns the 8-point compass label for a bearing, or "N/A"
// when the air is calm.
func WindDirection(speed, deg float64) string {
	if speed <= 0 {
		return "N/A"
	}
	i := int(math.Floor((deg+22.5)/45)) % 8
	if i < 0 {
		i += 8
	}
	return compass[i]
}
