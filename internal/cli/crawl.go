package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
	"github.com/matzehuels/mavcrawl/pkg/crawl"
	"github.com/matzehuels/mavcrawl/pkg/walker"
)

// Seed sources for the crawl command.
const (
	sourceWalk   = "walk"
	sourceSearch = "search"
	sourceIndex  = "index"
)

// crawlFlags holds flags shared by crawl and sweep.
type crawlFlags struct {
	workers int
	noCache bool
	refresh bool
	tui     bool
}

func (f *crawlFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "concurrent seeds (default from config)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the HTTP response cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "refetch cached responses")
	cmd.Flags().BoolVar(&f.tui, "tui", false, "show a live progress view")
}

// seedFlags selects and tunes the seed source.
type seedFlags struct {
	source     string
	maxDepth   int
	sampleSize int
	seed       uint64
	limit      int
}

// crawlCommand creates the crawl command.
func (c *CLI) crawlCommand() *cobra.Command {
	var (
		flags crawlFlags
		seeds seedFlags
	)

	cmd := &cobra.Command{
		Use:   "crawl [coordinate...]",
		Short: "Crawl artifacts into the store",
		Long: `Crawl resolves artifacts and everything they depend on into the store.

Seeds come from the coordinates given as arguments (group:artifact:version) or,
without arguments, from a seed source:

  walk    walk the repository's directory listings (default)
  search  page through the repository's Solr search index
  index   read the repository's master index`,
		Example: `  mavcrawl crawl com.google.guava:guava:33.0.0-jre
  mavcrawl crawl --source walk --sample 100 --seed 42 -w 4
  mavcrawl crawl -r google --source index --tui`,
		RunE: func(cmd *cobra.Command, args []string) error {
			coords, err := parseCoordinates(args)
			if err != nil {
				return err
			}
			return c.runCrawl(cmd.Context(), flags, seeds, coords)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&seeds.source, "source", sourceWalk, "seed source: walk, search or index")
	cmd.Flags().IntVar(&seeds.maxDepth, "max-depth", 0, "group recursion bound for walk (default from config)")
	cmd.Flags().IntVar(&seeds.sampleSize, "sample", 0, "artifacts sampled per top-level group for walk (0 = all)")
	cmd.Flags().Uint64Var(&seeds.seed, "seed", 0, "sampling seed (0 = random)")
	cmd.Flags().IntVar(&seeds.limit, "limit", 0, "stop search after this many coordinates (0 = all)")

	return cmd
}

func (c *CLI) runCrawl(ctx context.Context, flags crawlFlags, seeds seedFlags, coords []artifact.Coordinate) error {
	rt, err := c.open(ctx, openOptions{noCache: flags.noCache, refresh: flags.refresh, withStore: true})
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	produce, err := rt.seeder(seeds, coords)
	if err != nil {
		return err
	}
	cr := rt.crawler(flags.workers)
	c.Logger.Info("Crawl started", "run", cr.RunID(), "repository", rt.repo.Name, "store", rt.cfg.Store.Backend)

	work := func(ctx context.Context) (crawl.Stats, error) {
		return crawlFrom(ctx, cr, produce)
	}
	return c.finishCrawl(ctx, "Crawling "+rt.repo.Name, flags.tui, work)
}

// finishCrawl runs work, optionally under the live view, and reports stats.
func (c *CLI) finishCrawl(ctx context.Context, title string, tui bool, work func(context.Context) (crawl.Stats, error)) error {
	prog := newProgress(c.Logger)
	var (
		stats crawl.Stats
		err   error
	)
	if tui {
		stats, err = c.runWithTUI(ctx, title, work)
	} else {
		stats, err = work(ctx)
	}
	prog.done("Crawl finished",
		"resolved", stats.Resolved, "skipped", stats.Skipped, "failed", stats.Failed)
	printCrawlStats(stats)
	return err
}

// crawlFrom feeds the seeds produce emits into cr until produce returns.
func crawlFrom(ctx context.Context, cr *crawl.Crawler, produce func(context.Context, crawl.Emit) error) (crawl.Stats, error) {
	ch := make(chan artifact.Coordinate)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(ch)
		return produce(gctx, crawl.Send(gctx, ch))
	})
	var stats crawl.Stats
	g.Go(func() error {
		var err error
		stats, err = cr.Run(gctx, ch)
		return err
	})
	err := g.Wait()
	return stats, err
}

// seeder returns the seed producer for the flags. Explicit coordinates win.
func (r *runtime) seeder(f seedFlags, coords []artifact.Coordinate) (func(context.Context, crawl.Emit) error, error) {
	if len(coords) > 0 {
		return func(_ context.Context, emit crawl.Emit) error {
			return crawl.FromList(coords, emit)
		}, nil
	}
	switch f.source {
	case sourceWalk:
		maxDepth := f.maxDepth
		if maxDepth <= 0 {
			maxDepth = r.cfg.Crawl.MaxDepth
		}
		sample := f.sampleSize
		if sample <= 0 {
			sample = r.cfg.Crawl.SampleSize
		}
		seed := f.seed
		if seed == 0 {
			seed = r.cfg.Crawl.Seed
		}
		w := walker.New(r.client, walker.Options{
			MaxDepth:   maxDepth,
			SampleSize: sample,
			Seed:       seed,
			Logger:     r.logger,
		})
		return func(ctx context.Context, emit crawl.Emit) error {
			return crawl.FromWalker(ctx, w, r.repo.BrowseURL, emit)
		}, nil
	case sourceSearch:
		if r.repo.SearchURL == "" {
			return nil, fmt.Errorf("repository %s has no search_url", r.repo.Name)
		}
		return func(ctx context.Context, emit crawl.Emit) error {
			return crawl.FromSearch(ctx, r.client, crawl.SearchOptions{Limit: f.limit, Logger: r.logger}, emit)
		}, nil
	case sourceIndex:
		if r.repo.IndexURL == "" {
			return nil, fmt.Errorf("repository %s has no index_url", r.repo.Name)
		}
		return func(ctx context.Context, emit crawl.Emit) error {
			return crawl.FromIndex(ctx, r.client, r.logger, emit)
		}, nil
	default:
		return nil, fmt.Errorf("unknown seed source %q (use %s, %s or %s)", f.source, sourceWalk, sourceSearch, sourceIndex)
	}
}

// sweepCommand creates the sweep command.
func (c *CLI) sweepCommand() *cobra.Command {
	var flags crawlFlags

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Crawl every placeholder record in the store",
		Long: `Sweep resolves the records that so far exist only as parent anchors.

A placeholder is written when a crawled artifact names a parent that has not
been crawled. Crawls skip placeholders like any other stored record; sweep is
the explicit pass that upgrades them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := c.open(ctx, openOptions{noCache: flags.noCache, refresh: flags.refresh, withStore: true})
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			cr := rt.crawler(flags.workers)
			c.Logger.Info("Sweep started", "run", cr.RunID(), "store", rt.cfg.Store.Backend)
			return c.finishCrawl(ctx, "Sweeping placeholders", flags.tui, cr.Sweep)
		},
	}

	flags.register(cmd)
	return cmd
}

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		limit   int
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "List the latest artifacts in the repository search index",
		Long:  `Search pages through the repository's Solr index and prints one coordinate per line without crawling.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := c.open(ctx, openOptions{noCache: noCache})
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			if rt.repo.SearchURL == "" {
				return fmt.Errorf("repository %s has no search_url", rt.repo.Name)
			}
			n := 0
			err = crawl.FromSearch(ctx, rt.client, crawl.SearchOptions{Limit: limit, Logger: c.Logger},
				func(co artifact.Coordinate) error {
					n++
					fmt.Println(co)
					return nil
				})
			c.Logger.Debug("search done", "coordinates", n)
			return err
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "stop after this many coordinates (0 = all)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the HTTP response cache")
	return cmd
}

// parseCoordinates parses group:artifact:version arguments.
func parseCoordinates(args []string) ([]artifact.Coordinate, error) {
	coords := make([]artifact.Coordinate, 0, len(args))
	for _, a := range args {
		co, err := artifact.Parse(a)
		if err != nil {
			return nil, err
		}
		coords = append(coords, co)
	}
	return coords, nil
}
