package cache

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestNew_Memory(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer func() { _ = c.Close() }()

	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("New() = %T, want *MemoryCache", c)
	}
}

func TestNew_RedisFallback(t *testing.T) {
	cfg := Config{RedisURL: "redis://127.0.0.1:1/0", DefaultTTL: time.Minute}
	c := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer func() { _ = c.Close() }()

	if c.Stats().Backend != "memory" {
		t.Errorf("Backend = %q, want memory fallback", c.Stats().Backend)
	}
}
