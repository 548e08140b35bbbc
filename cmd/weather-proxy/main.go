// Command weather-proxy serves cached weather lookups over HTTP as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/weather-cli/internal/app"
	"github.com/Sternrassler/weather-cli/pkg/cache"
	"github.com/Sternrassler/weather-cli/pkg/client"
	"github.com/Sternrassler/weather-cli/pkg/config"
	"github.com/Sternrassler/weather-cli/pkg/display"
	"github.com/Sternrassler/weather-cli/pkg/logging"
	"github.com/Sternrassler/weather-cli/pkg/metrics"
	"github.com/Sternrassler/weather-cli/pkg/weather"
)

const (
	requestIDHeader = "X-Request-ID"
	lookupTimeout   = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	logCfg := logging.ServerConfig()
	logCfg.Level = logging.LogLevel(getEnv("LOG_LEVEL", string(logging.LevelInfo)))
	logging.Setup(logCfg)
	logger := logging.NewLogger("weather-proxy")

	port := getEnv("PORT", "8080")

	cfg, err := config.Load(os.Getenv("WEATHER_CONFIG"))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create weather client")
	}
	defer a.Close()

	pruner, err := startPruner(a.Store, cfg.CacheTTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to schedule cache pruning")
	}
	defer pruner.Stop()

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           newServer(a.Client, a.RedisClient(), time.Now).routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("Server shutdown incomplete")
		}
	}()

	logger.Info().
		Str("addr", srv.Addr).
		Str("user_agent", cfg.UserAgent).
		Str("cache_backend", cfg.CacheBackend).
		Msg("Starting weather proxy server")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

// startPruner removes expired cache entries every interval.
func startPruner(store cache.Store, interval time.Duration) (*gocron.Scheduler, error) {
	logger := logging.NewLogger("pruner")

	s := gocron.NewScheduler(time.UTC)
	_, err := s.Every(interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
		defer cancel()

		removed, err := store.Prune(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("Cache prune failed")
			return
		}
		logger.Debug().Int("removed", removed).Msg("Cache pruned")
	})
	if err != nil {
		return nil, fmt.Errorf("schedule prune every %s: %w", interval, err)
	}

	s.StartAsync()
	return s, nil
}

type server struct {
	client *client.Client
	redis  *redis.Client
	now    func() time.Time
	logger zerolog.Logger
}

func newServer(c *client.Client, rc *redis.Client, now func() time.Time) *server {
	return &server{
		client: c,
		redis:  rc,
		now:    now,
		logger: logging.NewLogger("http"),
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /ready", readyHandler(s.redis))
	mux.HandleFunc("GET /weather", s.currentHandler)
	mux.HandleFunc("GET /forecast", s.forecastHandler)
	mux.Handle("GET /metrics", metrics.Handler())
	return s.withRequestID(mux)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// readyHandler reports whether the cache backend is reachable. The file
// backend is always ready.
func readyHandler(rc *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rc != nil {
			if err := rc.Ping(r.Context()).Err(); err != nil {
				http.Error(w, "Redis not available", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}
}

func (s *server) currentHandler(w http.ResponseWriter, r *http.Request) {
	units, err := weather.ParseUnits(r.URL.Query().Get("units"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), lookupTimeout)
	defer cancel()

	payload, err := s.client.GetCurrent(ctx, r.URL.Query().Get("city"), units)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	view, err := display.Current(payload, units, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *server) forecastHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	units, err := weather.ParseUnits(q.Get("units"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	days := weather.MaxForecastDays
	if raw := q.Get("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, r, &weather.QueryError{Field: "days", Message: fmt.Sprintf("invalid days %q", raw)})
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), lookupTimeout)
	defer cancel()

	payload, err := s.client.GetForecast(ctx, q.Get("city"), days, units)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	view, err := display.Forecast(payload, days, units, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type errorBody struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// statusFor maps a lookup error onto the proxy's response status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, weather.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, client.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, client.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{
		Error:     err.Error(),
		RequestID: w.Header().Get(requestIDHeader),
	}

	var clientErr *client.Error
	if errors.As(err, &clientErr) {
		body.Error = clientErr.UserMessage()
		body.Kind = string(clientErr.Kind)
	}

	zerolog.Ctx(r.Context()).Warn().
		Err(err).
		Int("status", status).
		Msg("Weather lookup failed")

	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestID tags every request with an ID, echoes it in the response and
// attaches a request-scoped logger to the context.
func (s *server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		logger := s.logger.With().Str("request_id", id).Logger()
		r = r.WithContext(logger.WithContext(r.Context()))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
