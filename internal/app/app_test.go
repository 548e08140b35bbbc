package app

import (
	"context"
	"errors"
	"testing"

	"github.com/Sternrassler/weather-cli/pkg/cache"
	"github.com/Sternrassler/weather-cli/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.APIKey = "key"
	cfg.CacheDir = t.TempDir()
	return &cfg
}

func TestNew_FileBackend(t *testing.T) {
	a, err := New(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if _, ok := a.Store.(*cache.FileStore); !ok {
		t.Errorf("Store = %T, want *cache.FileStore", a.Store)
	}
	if a.Client == nil {
		t.Error("Client is nil")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.APIKey = ""

	_, err := New(context.Background(), cfg)
	if !errors.Is(err, config.ErrMissingAPIKey) {
		t.Errorf("error = %v, want ErrMissingAPIKey", err)
	}
}

func TestOpenStore_UnreachableRedisFallsBack(t *testing.T) {
	cfg := testConfig(t)
	cfg.CacheBackend = config.BackendRedis
	cfg.RedisAddr = "127.0.0.1:1"

	store, rc := OpenStore(context.Background(), cfg)
	if rc != nil {
		t.Error("redis client should be nil after fallback")
	}
	fs, ok := store.(*cache.FileStore)
	if !ok {
		t.Fatalf("Store = %T, want *cache.FileStore", store)
	}
	if fs.Dir() != cfg.CacheDir {
		t.Errorf("Dir() = %q, want %q", fs.Dir(), cfg.CacheDir)
	}
}

func TestOpenStore_BadRedisURLFallsBack(t *testing.T) {
	cfg := testConfig(t)
	cfg.CacheBackend = config.BackendRedis
	cfg.RedisAddr = "redis://:badport:x/abc"

	store, _ := OpenStore(context.Background(), cfg)
	if _, ok := store.(*cache.FileStore); !ok {
		t.Error("expected file store fallback for an unparsable redis url")
	}
}

func TestOpenStore_Redis(t *testing.T) {
	cfg := testConfig(t)
	cfg.CacheBackend = config.BackendRedis
	cfg.RedisAddr = "localhost:6379"

	store, rc := OpenStore(context.Background(), cfg)
	if rc == nil {
		t.Skip("Redis not available for testing")
	}
	defer rc.Close()

	if _, ok := store.(*cache.RedisStore); !ok {
		t.Errorf("Store = %T, want *cache.RedisStore", store)
	}
}
