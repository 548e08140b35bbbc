package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// KeyPrefix namespaces every key written by RedisStore.
const KeyPrefix = "weather:"

const scanBatch = 100

// errExpired is returned by lookup when it evicted a stale record.
var errExpired = fmt.Errorf("%w: expired", ErrCacheMiss)

// RedisStore keeps cache records in Redis.
// Records carry the same JSON layout as FileStore; Redis expiry is set to the
// TTL as well, so abandoned keys do not accumulate.
type RedisStore struct {
	redis  *redis.Client
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

// NewRedisStore creates a store backed by redisClient.
func NewRedisStore(redisClient *redis.Client, ttl time.Duration, opts ...Option) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	o := applyOptions(backendRedis, opts)
	return &RedisStore{
		redis:  redisClient,
		ttl:    ttl,
		now:    o.now,
		logger: o.logger,
	}
}

func redisKey(key string) string {
	return KeyPrefix + NormalizeKey(key)
}

// Get returns the cached payload for key if present and unexpired.
func (s *RedisStore) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	entry, err := s.lookup(ctx, redisKey(key))
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Debug().Err(err).Str("key", key).Msg("Cache lookup failed")
		}
		CacheMisses.WithLabelValues(backendRedis).Inc()
		return nil, false
	}

	CacheHits.WithLabelValues(backendRedis).Inc()
	s.logger.Debug().Str("key", key).Msg("Cache hit")
	return entry.Data, true
}

// lookup reads and validates one record, evicting it when corrupt or expired.
func (s *RedisStore) lookup(ctx context.Context, rkey string) (Entry, error) {
	data, err := s.redis.Get(ctx, rkey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return Entry{}, ErrCacheMiss
		}
		CacheErrors.WithLabelValues(backendRedis, "get").Inc()
		return Entry{}, fmt.Errorf("redis get: %w", err)
	}

	entry, err := decodeEntry(data)
	if err != nil {
		s.evict(ctx, rkey, reasonCorrupt)
		return Entry{}, err
	}

	if entry.IsExpired(s.now(), s.ttl) {
		s.evict(ctx, rkey, reasonExpired)
		return Entry{}, errExpired
	}

	return entry, nil
}

// Set stores payload under key. Failures are logged and dropped.
func (s *RedisStore) Set(ctx context.Context, key string, payload json.RawMessage) {
	data, err := json.Marshal(newEntry(s.now(), payload))
	if err != nil {
		CacheErrors.WithLabelValues(backendRedis, "set").Inc()
		s.logger.Warn().Err(err).Str("key", key).Msg("Cache entry marshal failed")
		return
	}

	if err := s.redis.Set(ctx, redisKey(key), data, s.ttl).Err(); err != nil {
		CacheErrors.WithLabelValues(backendRedis, "set").Inc()
		s.logger.Warn().Err(err).Str("key", key).Msg("Cache write failed, continuing without caching")
		return
	}

	s.logger.Debug().Str("key", key).Dur("ttl", s.ttl).Msg("Cached response")
}

// Delete removes a cache entry.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, redisKey(key)).Err(); err != nil {
		CacheErrors.WithLabelValues(backendRedis, "delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Clear removes every key under KeyPrefix.
func (s *RedisStore) Clear(ctx context.Context) error {
	var errs []error
	deleted := 0

	iter := s.redis.Scan(ctx, 0, KeyPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		if err := s.redis.Del(ctx, iter.Val()).Err(); err != nil {
			CacheErrors.WithLabelValues(backendRedis, "clear").Inc()
			errs = append(errs, fmt.Errorf("redis del %s: %w", iter.Val(), err))
			continue
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		CacheErrors.WithLabelValues(backendRedis, "clear").Inc()
		errs = append(errs, fmt.Errorf("redis scan: %w", err))
	}

	s.logger.Debug().Int("keys", deleted).Int("failed", len(errs)).Msg("Cache cleared")
	return errors.Join(errs...)
}

// Prune removes expired and corrupt records under KeyPrefix.
func (s *RedisStore) Prune(ctx context.Context) (int, error) {
	removed := 0

	iter := s.redis.Scan(ctx, 0, KeyPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		_, err := s.lookup(ctx, iter.Val())
		if errors.Is(err, errExpired) || errors.Is(err, ErrInvalidEntry) {
			removed++
		}
	}
	if err := iter.Err(); err != nil {
		CacheErrors.WithLabelValues(backendRedis, "prune").Inc()
		return removed, fmt.Errorf("redis scan: %w", err)
	}

	return removed, nil
}

func (s *RedisStore) evict(ctx context.Context, rkey, reason string) {
	if err := s.redis.Del(ctx, rkey).Err(); err != nil {
		CacheErrors.WithLabelValues(backendRedis, "delete").Inc()
		s.logger.Warn().Err(err).Str("key", rkey).Msg("Failed to evict cache entry")
		return
	}
	CacheEvictions.WithLabelValues(backendRedis, reason).Inc()
}
