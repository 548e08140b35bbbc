// Package client provides the OpenWeatherMap HTTP client with cache-first
// lookups and a closed error taxonomy.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/weather-cli/pkg/cache"
	"github.com/Sternrassler/weather-cli/pkg/logging"
	"github.com/Sternrassler/weather-cli/pkg/metrics"
	"github.com/Sternrassler/weather-cli/pkg/weather"
)

var factory = promauto.With(metrics.Registry)

// Prometheus metrics for provider requests.
var (
	requestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "weather_requests_total",
		Help: "Total provider requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "weather_request_duration_seconds",
		Help:    "Provider request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "weather_errors_total",
		Help: "Total failed provider calls by error kind",
	}, []string{"kind"})
)

// Provider endpoints.
const (
	endpointCurrent  = "weather"
	endpointForecast = "forecast"
)

// maxBodySize caps provider responses; a 5-day forecast is well under 100 KiB.
const maxBodySize = 4 << 20

// Client fetches weather data, consulting the cache before the network.
type Client struct {
	httpClient *http.Client
	store      cache.Store
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// APIKey is the provider credential (REQUIRED)
	APIKey string

	// BaseURL of the provider API, e.g. http://api.openweathermap.org/data/2.5
	BaseURL string

	// Timeout bounds each provider request
	Timeout time.Duration

	// UserAgent header sent with provider requests
	UserAgent string

	// Store caches raw provider payloads (REQUIRED)
	Store cache.Store
}

// DefaultConfig returns a configuration with the provider defaults.
func DefaultConfig(apiKey string, store cache.Store) Config {
	return Config{
		APIKey:    apiKey,
		BaseURL:   "http://api.openweathermap.org/data/2.5",
		Timeout:   10 * time.Second,
		UserAgent: "weather-cli/1.0.0",
		Store:     store,
	}
}

// New creates a new weather client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}

	if cfg.Store == nil {
		return nil, fmt.Errorf("cache store is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive (got %s)", cfg.Timeout)
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		store:      cfg.Store,
		config:     cfg,
		logger:     logging.NewLogger("client"),
	}, nil
}

// GetCurrent returns the current weather for city.
func (c *Client) GetCurrent(ctx context.Context, city string, units weather.Units) (*weather.CurrentPayload, error) {
	q := weather.NewCurrentQuery(city, units)
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var payload weather.CurrentPayload
	if err := c.fetch(ctx, q, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// GetForecast returns up to days*8 three-hour forecast intervals for city.
func (c *Client) GetForecast(ctx context.Context, city string, days int, units weather.Units) (*weather.ForecastPayload, error) {
	q := weather.NewForecastQuery(city, days, units)
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var payload weather.ForecastPayload
	if err := c.fetch(ctx, q, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// CacheKey returns the logical cache key for q. The store normalizes it.
func CacheKey(q weather.Query) string {
	if q.Kind == weather.KindForecast {
		return fmt.Sprintf("forecast_%s_%d_%s", q.City, q.Days, q.Units)
	}
	return fmt.Sprintf("current_%s_%s", q.City, q.Units)
}

// fetch serves q from the cache or the provider and decodes into out.
func (c *Client) fetch(ctx context.Context, q weather.Query, out any) error {
	key := CacheKey(q)

	if cached, ok := c.store.Get(ctx, key); ok {
		if err := json.Unmarshal(cached, out); err == nil {
			c.logger.Debug().Str("key", key).Msg("Serving from cache")
			return nil
		}
		c.logger.Warn().Str("key", key).Msg("Cached payload does not decode, refetching")
		if err := c.store.Delete(ctx, key); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("Failed to delete undecodable cache entry")
		}
	}

	body, err := c.request(ctx, q)
	if err != nil {
		errorsTotal.WithLabelValues(string(KindOf(err))).Inc()
		c.logger.Warn().
			Str("endpoint", endpointFor(q)).
			Str("error_kind", string(KindOf(err))).
			Err(err).
			Msg("Provider request failed")
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		errorsTotal.WithLabelValues(string(KindTransport)).Inc()
		return &Error{Kind: KindTransport, StatusCode: http.StatusOK, Message: "invalid response body", Err: err}
	}

	c.store.Set(ctx, key, body)
	return nil
}

// request performs exactly one provider call and returns the raw 2xx body.
func (c *Client) request(ctx context.Context, q weather.Query) (json.RawMessage, error) {
	endpoint := endpointFor(q)

	params := url.Values{}
	params.Set("q", q.City)
	params.Set("units", string(q.Units))
	if q.Kind == weather.KindForecast {
		params.Set("cnt", strconv.Itoa(q.Days*weather.IntervalsPerDay))
	}
	params.Set("appid", c.config.APIKey)

	reqURL := c.config.BaseURL + "/" + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: "create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("url", redact(reqURL, c.config.APIKey)).
		Msg("Executing provider request")

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("status_code", resp.StatusCode).
		Dur("duration", time.Since(startTime)).
		Msg("Provider responded")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, statusError(resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, classifyError(err)
	}
	return body, nil
}

func endpointFor(q weather.Query) string {
	if q.Kind == weather.KindForecast {
		return endpointForecast
	}
	return endpointCurrent
}

func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, url.QueryEscape(secret), "REDACTED")
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// SetLogger replaces the component logger.
func (c *Client) SetLogger(logger zerolog.Logger) {
	c.logger = logger
}

// Store returns the cache store (for testing and cache maintenance).
func (c *Client) Store() cache.Store {
	return c.store
}
