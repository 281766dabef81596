package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/mavcrawl/internal/config"
	"github.com/matzehuels/mavcrawl/pkg/cache"
)

func TestCacheLocation(t *testing.T) {
	cfg := config.Default()

	cfg.Cache.Backend = config.CacheNone
	if got := cacheLocation(cfg); got != "disabled" {
		t.Errorf("none: got %q", got)
	}

	cfg.Cache.Backend = config.CacheRedis
	cfg.Cache.RedisAddr = "localhost:6379"
	if got := cacheLocation(cfg); !strings.HasPrefix(got, "redis://localhost:6379/") {
		t.Errorf("redis: got %q", got)
	}

	cfg.Cache.Backend = config.CacheFile
	cfg.Cache.Dir = "/var/cache/mavcrawl"
	if got := cacheLocation(cfg); got != "/var/cache/mavcrawl" {
		t.Errorf("file: got %q", got)
	}
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Cache.Dir = filepath.Join(t.TempDir(), "http")

	c, err := newCache(ctx, cfg, false)
	if err != nil {
		t.Fatalf("newCache: %v", err)
	}
	fc, ok := c.(*cache.FileCache)
	if !ok {
		t.Fatalf("got %T, want *cache.FileCache", c)
	}
	if fc.Dir() != cfg.Cache.Dir {
		t.Errorf("Dir() = %q, want %q", fc.Dir(), cfg.Cache.Dir)
	}

	c, err = newCache(ctx, cfg, true)
	if err != nil {
		t.Fatalf("newCache(noCache): %v", err)
	}
	if _, ok := c.(*cache.NullCache); !ok {
		t.Errorf("noCache: got %T, want *cache.NullCache", c)
	}

	cfg.Cache.Backend = config.CacheNone
	c, _ = newCache(ctx, cfg, false)
	if _, ok := c.(*cache.NullCache); !ok {
		t.Errorf("backend none: got %T, want *cache.NullCache", c)
	}
}
