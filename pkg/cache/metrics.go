package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Sternrassler/weather-cli/pkg/metrics"
)

// Backend labels.
const (
	backendFile  = "file"
	backendRedis = "redis"
)

// Eviction reasons.
const (
	reasonExpired = "expired"
	reasonCorrupt = "corrupt"
	reasonOrphan  = "orphan"
)

var factory = promauto.With(metrics.Registry)

var (
	// CacheHits tracks cache hits by backend
	CacheHits = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_cache_hits_total",
			Help: "Total number of weather cache hits",
		},
		[]string{"backend"},
	)

	// CacheMisses tracks cache misses by backend
	CacheMisses = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_cache_misses_total",
			Help: "Total number of weather cache misses",
		},
		[]string{"backend"},
	)

	// CacheEvictions tracks entries removed on read or prune
	CacheEvictions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_cache_evictions_total",
			Help: "Total number of cache entries evicted because they were expired or corrupt",
		},
		[]string{"backend", "reason"}, // "expired", "corrupt"
	)

	// CacheErrors tracks storage operation errors that were swallowed
	CacheErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"backend", "operation"}, // "get", "set", "delete", "clear", "prune"
	)
)
