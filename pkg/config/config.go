// Package config loads the weather CLI configuration from defaults, an
// optional YAML file, a .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Defaults.
const (
	DefaultBaseURL        = "http://api.openweathermap.org/data/2.5"
	DefaultCacheTTL       = 600 * time.Second
	DefaultRequestTimeout = 10 * time.Second
	DefaultCacheDirName   = ".weather_cache"
	DefaultUserAgent      = "weather-cli/1.0.0"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Environment variables read by Load.
const (
	EnvAPIKey         = "OPENWEATHER_API_KEY"
	EnvBaseURL        = "WEATHER_BASE_URL"
	EnvCacheDir       = "WEATHER_CACHE_DIR"
	EnvCacheTTL       = "WEATHER_CACHE_TTL"
	EnvRequestTimeout = "WEATHER_REQUEST_TIMEOUT"
	EnvCacheBackend   = "WEATHER_CACHE_BACKEND"
	EnvRedisURL       = "REDIS_URL"
	EnvLogLevel       = "WEATHER_LOG_LEVEL"
)

// ErrMissingAPIKey is reported when no provider credential is configured.
var ErrMissingAPIKey = errors.New("API key not found")

// ConfigError describes an invalid or missing configuration value.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Config holds everything the cache, client and CLI need.
type Config struct {
	// Provider credential (REQUIRED)
	APIKey string

	// Provider base URL, without trailing slash
	BaseURL string

	// UserAgent sent with provider requests
	UserAgent string

	// Caching
	CacheBackend string        // "file" or "redis"
	CacheDir     string        // file backend directory
	RedisAddr    string        // redis backend address
	CacheTTL     time.Duration // entry lifetime

	// RequestTimeout bounds a single provider call
	RequestTimeout time.Duration

	// LogLevel is debug, info, warn or error
	LogLevel string
}

// fileConfig is the YAML file layout. Durations are strings ("10m", "10s").
type fileConfig struct {
	APIKey         string `yaml:"apiKey"`
	BaseURL        string `yaml:"baseUrl"`
	UserAgent      string `yaml:"userAgent"`
	CacheBackend   string `yaml:"cacheBackend"`
	CacheDir       string `yaml:"cacheDir"`
	RedisAddr      string `yaml:"redisAddr"`
	CacheTTL       string `yaml:"cacheTtl"`
	RequestTimeout string `yaml:"requestTimeout"`
	LogLevel       string `yaml:"logLevel"`
}

// Default returns the built-in configuration. APIKey is left empty.
func Default() Config {
	cacheDir := DefaultCacheDirName
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, DefaultCacheDirName)
	}

	return Config{
		BaseURL:        DefaultBaseURL,
		UserAgent:      DefaultUserAgent,
		CacheBackend:   BackendFile,
		CacheDir:       cacheDir,
		RedisAddr:      "localhost:6379",
		CacheTTL:       DefaultCacheTTL,
		RequestTimeout: DefaultRequestTimeout,
		LogLevel:       "warn",
	}
}

// Load builds the configuration in layers: defaults, the YAML file at path
// (skipped when path is empty), then the environment. A .env file in the
// working directory is loaded into the environment first if present; values
// already set in the environment win over it.
//
// Load does not validate; call Validate before using the credential.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, &ConfigError{Field: ".env", Message: fmt.Sprintf("parsing .env: %v", err), Err: err}
	}

	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.mergeEnv(); err != nil {
		return nil, err
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &cfg, nil
}

func (c *Config) mergeFile(path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return &ConfigError{Field: "file", Message: fmt.Sprintf("reading %s: %v", path, err), Err: err}
	}

	var fc fileConfig
	if err := yaml.Unmarshal(buf, &fc); err != nil {
		return &ConfigError{Field: "file", Message: fmt.Sprintf("parsing yaml: %v", err), Err: err}
	}

	setString(&c.APIKey, fc.APIKey)
	setString(&c.BaseURL, fc.BaseURL)
	setString(&c.UserAgent, fc.UserAgent)
	setString(&c.CacheBackend, fc.CacheBackend)
	setString(&c.CacheDir, expandHome(fc.CacheDir))
	setString(&c.RedisAddr, fc.RedisAddr)
	setString(&c.LogLevel, fc.LogLevel)

	if err := setDuration(&c.CacheTTL, "cacheTtl", fc.CacheTTL); err != nil {
		return err
	}
	return setDuration(&c.RequestTimeout, "requestTimeout", fc.RequestTimeout)
}

func (c *Config) mergeEnv() error {
	setString(&c.APIKey, os.Getenv(EnvAPIKey))
	setString(&c.BaseURL, os.Getenv(EnvBaseURL))
	setString(&c.CacheDir, expandHome(os.Getenv(EnvCacheDir)))
	setString(&c.CacheBackend, os.Getenv(EnvCacheBackend))
	setString(&c.RedisAddr, os.Getenv(EnvRedisURL))
	setString(&c.LogLevel, os.Getenv(EnvLogLevel))

	if err := setDuration(&c.CacheTTL, EnvCacheTTL, os.Getenv(EnvCacheTTL)); err != nil {
		return err
	}
	return setDuration(&c.RequestTimeout, EnvRequestTimeout, os.Getenv(EnvRequestTimeout))
}

// Validate checks the configuration. The missing credential is reported first
// so the CLI can explain how to obtain one.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return &ConfigError{
			Field: EnvAPIKey,
			Message: "API key not found. Please set OPENWEATHER_API_KEY in your .env file.\n" +
				"Get a free API key from: https://openweathermap.org/api",
			Err: ErrMissingAPIKey,
		}
	}

	if c.BaseURL == "" {
		return &ConfigError{Field: "baseUrl", Message: "base URL is required"}
	}

	if c.CacheTTL <= 0 {
		return &ConfigError{Field: "cacheTtl", Message: fmt.Sprintf("must be positive (got %s)", c.CacheTTL)}
	}

	if c.RequestTimeout <= 0 {
		return &ConfigError{Field: "requestTimeout", Message: fmt.Sprintf("must be positive (got %s)", c.RequestTimeout)}
	}

	switch c.CacheBackend {
	case BackendFile:
		if c.CacheDir == "" {
			return &ConfigError{Field: "cacheDir", Message: "cache directory is required for the file backend"}
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return &ConfigError{Field: "redisAddr", Message: "redis address is required for the redis backend"}
		}
	default:
		return &ConfigError{Field: "cacheBackend", Message: fmt.Sprintf("unknown backend %q (want file or redis)", c.CacheBackend)}
	}

	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// setDuration accepts Go durations ("10m") or bare seconds ("600").
func setDuration(dst *time.Duration, field, v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}

	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
		return nil
	}

	d, err := time.ParseDuration(v + "s")
	if err != nil {
		return &ConfigError{Field: field, Message: fmt.Sprintf("invalid duration %q", v), Err: err}
	}
	*dst = d
	return nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
