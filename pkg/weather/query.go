// Package weather holds the domain types shared by the cache-backed client
// and the presentation formatter: validated queries and the provider payloads.
package weather

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Units selects the provider's unit system.
type Units string

const (
	// UnitsMetric reports Celsius and metres per second.
	UnitsMetric Units = "metric"

	// UnitsImperial reports Fahrenheit and miles per hour.
	UnitsImperial Units = "imperial"
)

// ParseUnits converts a flag or query value into Units.
// An empty value yields the default, UnitsMetric.
func ParseUnits(s string) (Units, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(UnitsMetric):
		return UnitsMetric, nil
	case string(UnitsImperial):
		return UnitsImperial, nil
	default:
		return "", &QueryError{Field: "units", Message: fmt.Sprintf("invalid units %q (want metric or imperial)", s)}
	}
}

// ErrInvalidQuery matches every *QueryError.
var ErrInvalidQuery = errors.New("invalid query")

// QueryError reports the first constraint a query violates.
type QueryError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrInvalidQuery) true.
func (e *QueryError) Is(target error) bool {
	return target == ErrInvalidQuery
}

// Kind distinguishes the two provider endpoints.
type Kind string

const (
	KindCurrent  Kind = "current"
	KindForecast Kind = "forecast"
)

// Forecast day bounds. The provider reports 3-hour intervals.
const (
	MinForecastDays = 1
	MaxForecastDays = 5
	IntervalsPerDay = 8
)

// Query describes a single lookup.
type Query struct {
	City  string `validate:"required"`
	Units Units  `validate:"oneof=metric imperial"`
	Kind  Kind   `validate:"oneof=current forecast"`
	Days  int    `validate:"required_if=Kind forecast,min=0,max=5"`
}

var validate = validator.New()

// NewCurrentQuery builds a current-weather query with the city trimmed.
// Empty units mean UnitsMetric.
func NewCurrentQuery(city string, units Units) Query {
	return Query{City: strings.TrimSpace(city), Units: orMetric(units), Kind: KindCurrent}
}

// NewForecastQuery builds a forecast query with the city trimmed.
// Empty units mean UnitsMetric.
func NewForecastQuery(city string, days int, units Units) Query {
	return Query{City: strings.TrimSpace(city), Units: orMetric(units), Kind: KindForecast, Days: days}
}

func orMetric(u Units) Units {
	if u == "" {
		return UnitsMetric
	}
	return u
}

// Validate checks the query against its constraints and returns a readable error.
func (q Query) Validate() error {
	err := validate.Struct(q)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Field() {
	case "City":
		return &QueryError{Field: field, Message: "city name cannot be empty"}
	case "Days":
		return &QueryError{Field: field, Message: fmt.Sprintf("forecast days must be between %d and %d", MinForecastDays, MaxForecastDays)}
	case "Units":
		return &QueryError{Field: field, Message: fmt.Sprintf("invalid units %q (want metric or imperial)", q.Units)}
	default:
		return &QueryError{Field: field, Message: fmt.Sprintf("invalid %s: %s", field, fe.Tag())}
	}
}
