// Package cache provides the response cache used by the weather client.
//
// A store keeps raw provider payloads under a normalized key together with the
// time they were written. Entries are valid for a fixed TTL (10 minutes by
// default) and are evicted as soon as a read finds them expired or unreadable.
//
// Two backends implement Store:
//
//   - FileStore keeps one JSON file per key in a directory (default backend)
//   - RedisStore keeps the same record under "weather:<key>" in Redis
//
// # Degradation
//
// The store never fails a request. Read problems are reported as a miss,
// corrupted records are deleted, and write failures are logged and dropped so
// the caller carries on without caching.
//
// # Basic Usage
//
//	store := cache.NewFileStore(cfg.CacheDir, cfg.CacheTTL)
//
//	if payload, ok := store.Get(ctx, "current_London_metric"); ok {
//		// use cached payload
//	}
//
//	store.Set(ctx, "current_London_metric", body)
//
// # Record Layout
//
//	{"timestamp": 1760520000.123, "data": { ...raw provider JSON... }}
//
// # Metrics
//
//   - weather_cache_hits_total{backend}
//   - weather_cache_misses_total{backend}
//   - weather_cache_evictions_total{backend,reason}
//   - weather_cache_errors_total{backend,operation}
package cache
