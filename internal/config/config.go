// Package config loads mavcrawl's TOML configuration.
//
// Precedence, lowest first: built-in defaults, the config file, environment
// variables (MAVCRAWL_MONGO_URI, MAVCRAWL_REDIS_ADDR), command-line flags.
// Flags are applied by the CLI after [Load] returns.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	mcerrors "github.com/matzehuels/mavcrawl/pkg/errors"
	"github.com/matzehuels/mavcrawl/pkg/integrations/maven"
)

// Environment variables read by [Load].
const (
	EnvMongoURI  = "MAVCRAWL_MONGO_URI"
	EnvRedisAddr = "MAVCRAWL_REDIS_ADDR"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreMongo  = "mongo"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Duration is a time.Duration written as "30s" or "1h" in TOML.
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the full configuration.
type Config struct {
	// Repository names a preset or an entry of Repositories.
	Repository   string                      `toml:"repository"`
	Repositories map[string]maven.Repository `toml:"repositories"`

	Store StoreConfig `toml:"store"`
	Cache CacheConfig `toml:"cache"`
	Crawl CrawlConfig `toml:"crawl"`
	Probe ProbeConfig `toml:"probe"`
	Serve ServeConfig `toml:"serve"`
}

// StoreConfig selects the graph store.
type StoreConfig struct {
	Backend    string `toml:"backend"`
	Path       string `toml:"path"`
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// CacheConfig selects the HTTP response cache.
type CacheConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	TTL       Duration `toml:"ttl"`
}

// CrawlConfig tunes the crawler.
type CrawlConfig struct {
	Workers    int      `toml:"workers"`
	MaxDepth   int      `toml:"max_depth"`
	SampleSize int      `toml:"sample_size"`
	Seed       uint64   `toml:"seed"`
	Interval   Duration `toml:"interval"`
	UserAgent  string   `toml:"user_agent"`
}

// ProbeConfig configures the dependency-tree tool.
type ProbeConfig struct {
	Binary  string   `toml:"binary"`
	Args    []string `toml:"args"`
	Timeout Duration `toml:"timeout"`
}

// ServeConfig configures the read API.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Repository: "central",
		Store:      StoreConfig{Backend: StoreFile},
		Cache:      CacheConfig{Backend: CacheFile, TTL: Duration{24 * time.Hour}},
		Crawl: CrawlConfig{
			Workers:   1,
			MaxDepth:  5,
			Interval:  Duration{200 * time.Millisecond},
			UserAgent: "mavcrawl",
		},
		Probe: ProbeConfig{Binary: "mvn", Timeout: Duration{30 * time.Second}},
		Serve: ServeConfig{Addr: "127.0.0.1:8080"},
	}
}

// DefaultPath returns ~/.config/mavcrawl/config.toml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "mavcrawl", "config.toml")
}

// Load reads path over the defaults and applies environment overrides. An
// empty path reads [DefaultPath] if it exists. Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		switch {
		case errors.Is(err, os.ErrNotExist) && !explicit:
		case err != nil:
			return Config{}, mcerrors.Wrap(mcerrors.ErrCodeInvalidConfig, err, "read config %s", path)
		default:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				keys := make([]string, len(undecoded))
				for i, k := range undecoded {
					keys[i] = k.String()
				}
				sort.Strings(keys)
				return Config{}, mcerrors.New(mcerrors.ErrCodeInvalidConfig,
					"config %s: unknown keys: %s", path, strings.Join(keys, ", "))
			}
		}
	}

	cfg.applyEnv()
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvMongoURI); v != "" {
		c.Store.MongoURI = v
		c.Store.Backend = StoreMongo
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Cache.RedisAddr = v
		c.Cache.Backend = CacheRedis
	}
}

// WithDefaults fills zero fields from [Default].
func (c Config) WithDefaults() Config {
	d := Default()
	if c.Repository == "" {
		c.Repository = d.Repository
	}
	if c.Store.Backend == "" {
		c.Store.Backend = d.Store.Backend
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = d.Cache.Backend
	}
	if c.Crawl.Workers <= 0 {
		c.Crawl.Workers = d.Crawl.Workers
	}
	if c.Crawl.MaxDepth <= 0 {
		c.Crawl.MaxDepth = d.Crawl.MaxDepth
	}
	if c.Crawl.Interval.Duration <= 0 {
		c.Crawl.Interval = d.Crawl.Interval
	}
	if c.Crawl.UserAgent == "" {
		c.Crawl.UserAgent = d.Crawl.UserAgent
	}
	if c.Probe.Binary == "" {
		c.Probe.Binary = d.Probe.Binary
	}
	if c.Probe.Timeout.Duration <= 0 {
		c.Probe.Timeout = d.Probe.Timeout
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = d.Serve.Addr
	}
	return c
}

// Validate checks backends and the selected repository.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case StoreMemory, StoreFile:
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return mcerrors.New(mcerrors.ErrCodeInvalidConfig, "store backend mongo needs mongo_uri or %s", EnvMongoURI)
		}
	default:
		return mcerrors.New(mcerrors.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return mcerrors.New(mcerrors.ErrCodeInvalidConfig, "cache backend redis needs redis_addr or %s", EnvRedisAddr)
		}
	default:
		return mcerrors.New(mcerrors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	_, err := c.Repo()
	return err
}

// Repo returns the selected repository: a configured entry first, then a
// preset of the same name.
func (c Config) Repo() (maven.Repository, error) {
	if r, ok := c.Repositories[c.Repository]; ok {
		if r.Name == "" {
			r.Name = c.Repository
		}
		r = r.WithDefaults()
		return r, r.Validate()
	}
	if r, ok := maven.Preset(c.Repository); ok {
		return r.WithDefaults(), nil
	}
	return maven.Repository{}, mcerrors.New(mcerrors.ErrCodeInvalidConfig,
		"unknown repository %q (presets: %s)", c.Repository, strings.Join(maven.PresetNames(), ", "))
}

// String renders the configuration as TOML.
func (c Config) String() string {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return b.String()
}
