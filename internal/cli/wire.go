package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/mavcrawl/internal/config"
	"github.com/matzehuels/mavcrawl/pkg/cache"
	"github.com/matzehuels/mavcrawl/pkg/crawl"
	"github.com/matzehuels/mavcrawl/pkg/httputil"
	"github.com/matzehuels/mavcrawl/pkg/integrations/maven"
	"github.com/matzehuels/mavcrawl/pkg/pom"
	"github.com/matzehuels/mavcrawl/pkg/probe"
	"github.com/matzehuels/mavcrawl/pkg/store"
	"github.com/matzehuels/mavcrawl/pkg/store/mongo"
)

const (
	cacheKeyPrefix = appName + ":http:"
	claimKeyPrefix = appName + ":claim:"
)

// =============================================================================
// Configuration
// =============================================================================

// config loads the configuration once and applies the persistent flags on
// top of it.
func (c *CLI) config() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if c.repository != "" {
		cfg.Repository = c.repository
	}
	if c.storeName != "" {
		cfg.Store.Backend = c.storeName
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	c.cfg = &cfg
	return cfg, nil
}

// =============================================================================
// Runtime Factory
// =============================================================================

// openOptions selects what [CLI.open] wires up.
type openOptions struct {
	noCache   bool
	refresh   bool
	withStore bool
}

// runtime bundles the long-lived handles a command needs.
type runtime struct {
	cfg    config.Config
	repo   maven.Repository
	cache  cache.Cache
	client *maven.Client
	store  store.Store
	logger *log.Logger
}

// open builds the repository client and, if asked, the graph store.
func (c *CLI) open(ctx context.Context, opts openOptions) (*runtime, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	repo, err := cfg.Repo()
	if err != nil {
		return nil, err
	}
	ch, err := newCache(ctx, cfg, opts.noCache)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, repo: repo, cache: ch, logger: c.Logger}
	rt.client = maven.NewClient(repo, maven.Options{
		Cache:     ch,
		CacheTTL:  cfg.Cache.TTL.Duration,
		Throttle:  httputil.NewThrottle(cfg.Crawl.Interval.Duration),
		Refresh:   opts.refresh,
		UserAgent: cfg.Crawl.UserAgent,
	})
	if opts.withStore {
		s, err := openStore(ctx, cfg)
		if err != nil {
			_ = ch.Close()
			return nil, err
		}
		rt.store = s
	}
	c.Logger.Debug("runtime ready", "repository", repo.Name, "store", cfg.Store.Backend, "cache", cfg.Cache.Backend)
	return rt, nil
}

// Close releases the store and cache.
func (r *runtime) Close(ctx context.Context) {
	if r.store != nil {
		if err := r.store.Close(context.WithoutCancel(ctx)); err != nil {
			r.logger.Warn("closing store", "err", err)
		}
	}
	if err := r.cache.Close(); err != nil {
		r.logger.Warn("closing cache", "err", err)
	}
}

// prober returns a prober running the configured dependency-tree tool.
func (r *runtime) prober() *probe.Prober {
	tool := probe.MavenTool{Binary: r.cfg.Probe.Binary, Args: r.cfg.Probe.Args}
	return probe.New(tool, probe.Options{
		Timeout:      r.cfg.Probe.Timeout.Duration,
		Repositories: r.repo.ProbeRepositories,
		Logger:       r.logger,
	})
}

// inspector returns a POM walker fetching parents through the client.
func (r *runtime) inspector() *pom.Walker {
	return pom.NewWalker(r.client, pom.WithLogger(r.logger))
}

// claimer shares in-flight claims through Redis when the cache lives there,
// so several crawler processes can work on one store.
func (r *runtime) claimer(owner string) crawl.Claimer {
	if rc, ok := r.cache.(*cache.RedisCache); ok {
		return crawl.NewRedisClaimer(rc.Client(), claimKeyPrefix, owner, crawl.DefaultClaimTTL)
	}
	return nil
}

// crawler wires the orchestrator. Workers <= 0 uses the configured count.
func (r *runtime) crawler(workers int) *crawl.Crawler {
	if workers <= 0 {
		workers = r.cfg.Crawl.Workers
	}
	runID := uuid.NewString()
	return crawl.New(r.store, r.client, r.inspector(), r.prober(), crawl.Options{
		Workers:  workers,
		FileInfo: r.client,
		Claimer:  r.claimer(runID),
		RunID:    runID,
		Logger:   r.logger,
	})
}

// =============================================================================
// Backends
// =============================================================================

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreMemory:
		return store.NewMemory(), nil
	case config.StoreMongo:
		s, err := mongo.Open(ctx, mongo.Config{
			URI:        cfg.Store.MongoURI,
			Database:   cfg.Store.Database,
			Collection: cfg.Store.Collection,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		s, err := store.NewFileStore(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

func newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Backend == config.CacheNone {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.Backend == config.CacheRedis {
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisAddr, cacheKeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("redis cache %s: %w", cfg.Cache.RedisAddr, err)
		}
		return rc, nil
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/mavcrawl/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
