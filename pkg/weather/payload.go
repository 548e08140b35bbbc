package weather

import "time"

// Condition is one element of the provider's "weather" array.
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// MainReadings carries the "main" block of a provider response.
type MainReadings struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  float64 `json:"pressure"`
	Humidity  int     `json:"humidity"`
}

// Wind carries the optional "wind" block. Absent wind decodes as calm.
type Wind struct {
	Speed float64 `json:"speed"`
	Deg   float64 `json:"deg"`
}

// CurrentPayload is the /weather response.
// Main is a pointer so a missing block can be told apart from zero readings.
type CurrentPayload struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Weather []Condition   `json:"weather"`
	Main    *MainReadings `json:"main"`
	Wind    Wind          `json:"wind"`
	Dt      int64         `json:"dt"`
}

// ForecastEntry is one 3-hour interval of the /forecast response.
type ForecastEntry struct {
	Dt      int64         `json:"dt"`
	Main    *MainReadings `json:"main"`
	Weather []Condition   `json:"weather"`
	Wind    Wind          `json:"wind"`
}

// Time returns the entry timestamp in the local zone.
func (e ForecastEntry) Time() time.Time {
	return time.Unix(e.Dt, 0)
}

// ForecastPayload is the /forecast response.
type ForecastPayload struct {
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
	Count int             `json:"cnt"`
	List  []ForecastEntry `json:"list"`
}
