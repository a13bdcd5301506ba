package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

// skipIfNoRedis skips the test if Redis is not configured.
func skipIfNoRedis(t *testing.T) string {
	url := os.Getenv("TCMS_TEST_REDIS_URL")
	if url == "" {
		t.Skip("Skipping Redis tests: TCMS_TEST_REDIS_URL not set")
	}
	return url
}

func newTestRedis(t *testing.T) *RedisCache {
	url := skipIfNoRedis(t)
	opts := DefaultRedisCacheOptions()
	opts.URL = url
	opts.Prefix = "tcms-test:"
	opts.DefaultTTL = time.Minute

	cache, err := NewRedisCache(opts)
	if err != nil {
		t.Fatalf("failed to create Redis cache: %v", err)
	}
	t.Cleanup(func() {
		_ = cache.Clear(context.Background())
		_ = cache.Close()
	})
	return cache
}

func TestRedisCache_Basic(t *testing.T) {
	cache := newTestRedis(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := cache.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get returned %q, want v", got)
	}

	_ = cache.Delete(ctx, "k")
	if _, err := cache.Get(ctx, "k"); err != ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestRedisCache_DeleteByPrefix(t *testing.T) {
	cache := newTestRedis(t)
	ctx := context.Background()

	_ = cache.Set(ctx, "news:/news", []byte("1"), 0)
	_ = cache.Set(ctx, "about:/about", []byte("2"), 0)

	if err := cache.DeleteByPrefix(ctx, "news:"); err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}
	if _, err := cache.Get(ctx, "news:/news"); err != ErrCacheMiss {
		t.Error("news key should be gone")
	}
	if _, err := cache.Get(ctx, "about:/about"); err != nil {
		t.Errorf("about key should remain: %v", err)
	}
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	if _, err := NewRedisCache(RedisCacheOptions{}); err == nil {
		t.Error("expected error for empty URL")
	}
	if _, err := NewRedisCache(RedisCacheOptions{URL: "not a url"}); err == nil {
		t.Error("expected error for invalid URL")
	}
}
