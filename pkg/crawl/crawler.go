package crawl

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
	"github.com/matzehuels/mavcrawl/pkg/integrations"
	"github.com/matzehuels/mavcrawl/pkg/integrations/maven"
	"github.com/matzehuels/mavcrawl/pkg/observability"
	"github.com/matzehuels/mavcrawl/pkg/pom"
	"github.com/matzehuels/mavcrawl/pkg/probe"
	"github.com/matzehuels/mavcrawl/pkg/store"
)

// FileInfoer reports a published artifact's file timestamp and size.
type FileInfoer interface {
	FileInfo(ctx context.Context, c artifact.Coordinate) (maven.FileInfo, error)
}

// Inspector turns raw POM bytes into resolved metadata.
type Inspector interface {
	Inspect(ctx context.Context, c artifact.Coordinate, raw []byte) (*pom.Metadata, error)
}

// Prober lists a coordinate's direct transitive dependencies.
type Prober interface {
	Probe(ctx context.Context, c artifact.Coordinate) ([]artifact.Dependency, error)
}

// Options configures a [Crawler].
type Options struct {
	// Workers is the number of seeds processed concurrently. Defaults to 1.
	Workers int
	// FileInfo supplies last-modified and size. Nil leaves them empty.
	FileInfo FileInfoer
	// Claimer guards in-flight coordinates. Defaults to a [MemoryClaimer].
	Claimer Claimer
	// RunID is stamped on every record written. Defaults to a new UUID.
	RunID  string
	Logger *log.Logger
}

// WithDefaults returns a copy of o with zero fields set to defaults.
func (o Options) WithDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.Claimer == nil {
		o.Claimer = NewMemoryClaimer()
	}
	if o.RunID == "" {
		o.RunID = uuid.NewString()
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// Crawler is the crawl orchestrator. It is safe for concurrent use.
type Crawler struct {
	store   store.Store
	fetcher pom.Fetcher
	inspect Inspector
	prober  Prober
	opts    Options
	logger  *log.Logger

	stats counters

	mu     sync.Mutex
	failed map[artifact.Coordinate]bool
}

// New creates a crawler writing to s.
func New(s store.Store, f pom.Fetcher, insp Inspector, p Prober, opts Options) *Crawler {
	opts = opts.WithDefaults()
	return &Crawler{
		store:   s,
		fetcher: f,
		inspect: insp,
		prober:  p,
		opts:    opts,
		logger:  opts.Logger.With("run", opts.RunID[:min(8, len(opts.RunID))]),
		failed:  make(map[artifact.Coordinate]bool),
	}
}

// RunID returns the id stamped on records written by this crawler.
func (c *Crawler) RunID() string { return c.opts.RunID }

// Stats returns the counters accumulated since the crawler was created.
func (c *Crawler) Stats() Stats { return c.stats.snapshot() }

// Process crawls coord and, depth-first, every dependency it names. It
// returns coord's terminal state. Per-coordinate failures are logged, never
// returned.
func (c *Crawler) Process(ctx context.Context, coord artifact.Coordinate) State {
	return c.process(ctx, coord, false)
}

func (c *Crawler) process(ctx context.Context, coord artifact.Coordinate, sweep bool) State {
	c.transition(ctx, coord, StateDiscovered, nil)
	if ctx.Err() != nil {
		return c.transition(ctx, coord, StateSkipped, nil)
	}
	if c.failedBefore(coord) {
		c.logger.Debug("failed earlier in this run", "coord", coord.String())
		return c.transition(ctx, coord, StateSkipped, nil)
	}

	ok, err := c.opts.Claimer.Claim(ctx, coord)
	if err != nil {
		c.logger.Warn("claim failed", "coord", coord.String(), "err", err)
		return c.transition(ctx, coord, StateSkipped, err)
	}
	if !ok {
		c.logger.Debug("in flight elsewhere", "coord", coord.String())
		return c.transition(ctx, coord, StateSkipped, nil)
	}
	defer func() {
		if err := c.opts.Claimer.Release(context.WithoutCancel(ctx), coord); err != nil {
			c.logger.Warn("release failed", "coord", coord.String(), "err", err)
		}
	}()

	if c.processed(ctx, coord, sweep) {
		c.logger.Debug("already processed", "coord", coord.String())
		return c.transition(ctx, coord, StateSkipped, nil)
	}

	c.transition(ctx, coord, StateFetching, nil)
	rec, err := c.resolve(ctx, coord)
	if err != nil {
		c.markFailed(coord)
		c.logFailure(coord, err)
		return c.transition(ctx, coord, StateFailed, err)
	}
	c.transition(ctx, coord, StateResolved, nil)
	c.logger.Info("resolved", "coord", coord.String(), "deps", len(rec.Dependencies), "modules", len(rec.Children))

	for _, dep := range rec.Dependencies {
		if ctx.Err() != nil {
			break
		}
		c.process(ctx, dep.Coordinate, false)
	}
	return StateResolved
}

// processed applies the skip rule. During a sweep a placeholder does not
// count as processed.
func (c *Crawler) processed(ctx context.Context, coord artifact.Coordinate, sweep bool) bool {
	if !sweep {
		ok, err := c.store.Exists(ctx, coord)
		if err != nil {
			c.logger.Warn("store lookup failed", "coord", coord.String(), "err", err)
			return true
		}
		return ok
	}
	rec, err := c.store.Get(ctx, coord)
	if errors.Is(err, store.ErrNotFound) {
		return false
	}
	if err != nil {
		c.logger.Warn("store lookup failed", "coord", coord.String(), "err", err)
		return true
	}
	return !rec.IsPlaceholder()
}

// resolve performs the Fetching step and persists the record. Nothing is
// written unless every required step succeeded.
func (c *Crawler) resolve(ctx context.Context, coord artifact.Coordinate) (*artifact.Record, error) {
	rec := &artifact.Record{
		Coordinate: coord,
		Status:     artifact.StatusResolved,
		CrawlRun:   c.opts.RunID,
	}

	if c.opts.FileInfo != nil {
		info, err := c.opts.FileInfo.FileInfo(ctx, coord)
		if err != nil {
			c.logger.Debug("file info unavailable", "coord", coord.String(), "err", err)
		}
		rec.LastModified, rec.SizeBytes = info.LastModified, info.Size
	}

	raw, err := c.fetcher.FetchPOM(ctx, coord)
	if err != nil {
		return nil, err
	}

	md, err := c.inspect.Inspect(ctx, coord, raw)
	if err != nil {
		c.logger.Warn("POM unparsable, storing without metadata", "coord", coord.String(), "err", err)
		md = &pom.Metadata{}
	}
	rec.Description = md.Description
	rec.SourceCodeURL = md.SourceCodeURL
	rec.Parent = md.Parent
	rec.AddChildren(md.Modules...)

	deps, err := c.prober.Probe(ctx, coord)
	if err != nil {
		return nil, err
	}
	rec.Dependencies = deps
	rec.UpdatedAt = time.Now().UTC()

	if err := store.Save(ctx, c.store, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (c *Crawler) logFailure(coord artifact.Coordinate, err error) {
	switch {
	case integrations.IsNotFound(err):
		c.logger.Info("POM not published", "coord", coord.String())
	case errors.Is(err, integrations.ErrNetwork):
		c.logger.Warn("POM fetch failed", "coord", coord.String(), "err", err)
	case probe.IsFailure(err):
		c.logger.Warn("dependency probe failed", "coord", coord.String(), "err", err)
	default:
		c.logger.Error("crawl failed", "coord", coord.String(), "err", err)
	}
}

func (c *Crawler) failedBefore(coord artifact.Coordinate) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failed[coord]
}

func (c *Crawler) markFailed(coord artifact.Coordinate) {
	c.mu.Lock()
	c.failed[coord] = true
	c.mu.Unlock()
}

func (c *Crawler) transition(ctx context.Context, coord artifact.Coordinate, s State, err error) State {
	c.stats.add(s)
	observability.Crawl().OnState(ctx, coord.String(), string(s), err)
	return s
}

// Run processes seeds with Options.Workers workers until seeds is closed or
// ctx is cancelled. It returns the crawler's cumulative stats and, only on
// cancellation, ctx's error.
func (c *Crawler) Run(ctx context.Context, seeds <-chan artifact.Coordinate) (Stats, error) {
	return c.run(ctx, seeds, false)
}

// Sweep re-queues every placeholder record and crawls it as if it were new.
// Dependencies found along the way follow the normal skip rule.
func (c *Crawler) Sweep(ctx context.Context) (Stats, error) {
	placeholders, err := store.Placeholders(ctx, c.store)
	if err != nil {
		return c.Stats(), err
	}
	c.logger.Info("sweeping placeholders", "count", len(placeholders))

	seeds := make(chan artifact.Coordinate, len(placeholders))
	for _, p := range placeholders {
		seeds <- p
	}
	close(seeds)
	return c.run(ctx, seeds, true)
}

func (c *Crawler) run(ctx context.Context, seeds <-chan artifact.Coordinate, sweep bool) (Stats, error) {
	g, ctx := errgroup.WithContext(ctx)
	for range c.opts.Workers {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case seed, ok := <-seeds:
					if !ok {
						return nil
					}
					c.process(ctx, seed, sweep)
				}
			}
		})
	}
	err := g.Wait()
	return c.Stats(), err
}
