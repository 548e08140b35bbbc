// Package testutil provides testing utilities for the weather client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"
)

// Provider endpoint paths, relative to the mock base URL.
const (
	PathCurrent  = "/weather"
	PathForecast = "/forecast"
)

// MockResponse defines the behavior for a mock provider endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockProvider is a configurable mock OpenWeatherMap server for testing.
type MockProvider struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount int
	LastQuery    url.Values
	LastHeader   http.Header
}

// NewMockProvider creates a new mock provider server. Unconfigured paths
// answer 404 with the provider's "city not found" body.
func NewMockProvider() *MockProvider {
	mock := &MockProvider{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastQuery = r.URL.Query()
		mock.LastHeader = r.Header.Clone()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	}))

	return mock
}

// URL returns the mock server URL, usable as the client base URL.
func (m *MockProvider) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockProvider) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastQuery = nil
	m.LastHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockProvider) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockProvider) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockProvider) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetLastQuery returns the query string of the most recent request.
func (m *MockProvider) GetLastQuery() url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastQuery
}

// NewJSONResponse creates a 200 OK response with the given JSON body.
func NewJSONResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

// NewErrorResponse creates a provider error response with the given status.
func NewErrorResponse(status int, message string) MockResponse {
	return MockResponse{
		StatusCode: status,
		Body:       fmt.Sprintf(`{"cod":%d,"message":%q}`, status, message),
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

// NewUnauthorizedResponse creates the provider's invalid key response.
func NewUnauthorizedResponse() MockResponse {
	return NewErrorResponse(http.StatusUnauthorized, "Invalid API key. Please see https://openweathermap.org/faq#error401 for more info.")
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return NewErrorResponse(http.StatusInternalServerError, "Internal server error")
}

// CurrentFixture describes a current weather response.
type CurrentFixture struct {
	City        string
	Country     string
	Description string
	Temp        float64
	FeelsLike   float64
	Humidity    int
	Pressure    float64
	WindSpeed   float64
	WindDeg     float64
}

// NewCurrentBody renders a provider /weather response body.
func NewCurrentBody(f CurrentFixture) string {
	body := map[string]any{
		"name": f.City,
		"sys":  map[string]any{"country": f.Country},
		"weather": []map[string]any{
			{"id": 800, "main": "Weather", "description": f.Description, "icon": "01d"},
		},
		"main": map[string]any{
			"temp":       f.Temp,
			"feels_like": f.FeelsLike,
			"temp_min":   f.Temp,
			"temp_max":   f.Temp,
			"pressure":   f.Pressure,
			"humidity":   f.Humidity,
		},
		"wind": map[string]any{"speed": f.WindSpeed, "deg": f.WindDeg},
		"dt":   time.Now().Unix(),
	}
	return mustJSON(body)
}

// ForecastEntryFixture describes one 3-hour forecast interval.
type ForecastEntryFixture struct {
	Time        time.Time
	Temp        float64
	Humidity    int
	WindSpeed   float64
	Description string
}

// NewForecastBody renders a provider /forecast response body.
func NewForecastBody(city, country string, entries []ForecastEntryFixture) string {
	list := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		list = append(list, map[string]any{
			"dt": e.Time.Unix(),
			"main": map[string]any{
				"temp":       e.Temp,
				"feels_like": e.Temp,
				"temp_min":   e.Temp,
				"temp_max":   e.Temp,
				"pressure":   1013,
				"humidity":   e.Humidity,
			},
			"weather": []map[string]any{
				{"id": 500, "main": "Weather", "description": e.Description, "icon": "10d"},
			},
			"wind": map[string]any{"speed": e.WindSpeed, "deg": 90},
		})
	}

	body := map[string]any{
		"cnt":  len(list),
		"list": list,
		"city": map[string]any{"name": city, "country": country},
	}
	return mustJSON(body)
}

// ThreeHourly returns n forecast intervals starting at start, 3 hours apart.
func ThreeHourly(start time.Time, n int, temp float64, description string) []ForecastEntryFixture {
	entries := make([]ForecastEntryFixture, n)
	for i := range entries {
		entries[i] = ForecastEntryFixture{
			Time:        start.Add(time.Duration(i) * 3 * time.Hour),
			Temp:        temp + float64(i),
			Humidity:    60 + i,
			WindSpeed:   2.5,
			Description: description,
		}
	}
	return entries
}

func mustJSON(v any) string {
	buf, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal fixture: %v", err))
	}
	return string(buf)
}
