package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/weather-cli/pkg/logging"
)

// Store is a key-value cache for raw provider payloads.
//
// Keys passed to a Store are logical keys; implementations normalize them with
// NormalizeKey. Get and Set never fail the caller: problems surface as a miss
// or a dropped write.
type Store interface {
	// Get returns the payload stored under key if it is present and fresh.
	Get(ctx context.Context, key string) (json.RawMessage, bool)

	// Set stores payload under key with the current time.
	Set(ctx context.Context, key string, payload json.RawMessage)

	// Delete removes the entry for key, if any.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry. It keeps going after individual failures.
	Clear(ctx context.Context) error

	// Prune removes expired and corrupt entries and returns how many were removed.
	Prune(ctx context.Context) (int, error)
}

// Option configures a store.
type Option func(*options)

type options struct {
	now    func() time.Time
	logger zerolog.Logger
}

func defaultOptions(backend string) options {
	return options{
		now:    time.Now,
		logger: logging.NewLogger("cache").With().Str("backend", backend).Logger(),
	}
}

// WithClock overrides the time source used for timestamps and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger used to report swallowed storage errors.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func applyOptions(backend string, opts []Option) options {
	o := defaultOptions(backend)
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
