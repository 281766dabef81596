package crawl

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
	"github.com/matzehuels/mavcrawl/pkg/integrations/maven"
	"github.com/matzehuels/mavcrawl/pkg/walker"
)

// Emit receives one seed coordinate. Returning an error stops the source.
type Emit func(artifact.Coordinate) error

// Send returns an [Emit] that writes to ch, giving up when ctx is done.
func Send(ctx context.Context, ch chan<- artifact.Coordinate) Emit {
	return func(c artifact.Coordinate) error {
		select {
		case ch <- c:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Searcher pages through a repository search index.
type Searcher interface {
	Search(ctx context.Context, start, rows int) (*maven.SearchPage, error)
}

// SearchOptions configures [FromSearch].
type SearchOptions struct {
	// Rows per page. Defaults to [maven.DefaultSearchRows].
	Rows int
	// Start is the first result offset, for resuming an interrupted crawl.
	Start int
	// Limit stops after this many results. Zero means all.
	Limit int
	// Pause between pages. Defaults to one second.
	Pause  time.Duration
	Logger *log.Logger
}

// FromSearch emits the latest version of every artifact in the search index,
// page by page, until a page comes back empty.
func FromSearch(ctx context.Context, s Searcher, opts SearchOptions, emit Emit) error {
	if opts.Rows <= 0 {
		opts.Rows = maven.DefaultSearchRows
	}
	if opts.Pause <= 0 {
		opts.Pause = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	emitted := 0
	for start := opts.Start; ; start += opts.Rows {
		page, err := s.Search(ctx, start, opts.Rows)
		if err != nil {
			opts.Logger.Error("search page failed", "start", start, "err", err)
			return err
		}
		if page.Docs == 0 {
			return nil
		}
		opts.Logger.Debug("search page", "start", start, "found", page.NumFound)
		for _, c := range page.Coordinates {
			if opts.Limit > 0 && emitted >= opts.Limit {
				return nil
			}
			if err := emit(c); err != nil {
				return err
			}
			emitted++
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(opts.Pause):
		}
	}
}

// Indexer reads a Google-style master index and its group indexes.
type Indexer interface {
	Groups(ctx context.Context) ([]string, error)
	GroupIndex(ctx context.Context, group string) ([]maven.IndexEntry, error)
}

// FromIndex emits the latest version of every artifact listed in the
// repository index. A group whose index cannot be read is logged and skipped,
// as are reserved groups (see [walker.Reserved]).
func FromIndex(ctx context.Context, idx Indexer, logger *log.Logger, emit Emit) error {
	if logger == nil {
		logger = log.Default()
	}
	groups, err := idx.Groups(ctx)
	if err != nil {
		return err
	}
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walker.Reserved(g) {
			logger.Debug("skipping reserved group", "group", g)
			continue
		}
		entries, err := idx.GroupIndex(ctx, g)
		if err != nil {
			logger.Warn("group index unavailable", "group", g, "err", err)
			continue
		}
		for _, e := range entries {
			if walker.Reserved(e.Group) {
				continue
			}
			latest, ok := walker.LatestVersion(e.Versions)
			if !ok {
				continue
			}
			c, err := artifact.New(e.Group, e.Artifact, latest)
			if err != nil {
				logger.Debug("skipping invalid index entry", "group", e.Group, "artifact", e.Artifact, "err", err)
				continue
			}
			if err := emit(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// FromWalker emits the latest version of every artifact found by walking
// the repository's directory tree below baseURL.
func FromWalker(ctx context.Context, w *walker.Walker, baseURL string, emit Emit) error {
	return w.Candidates(ctx, baseURL, emit)
}

// FromList emits coords in order.
func FromList(coords []artifact.Coordinate, emit Emit) error {
	for _, c := range coords {
		if err := emit(c); err != nil {
			return err
		}
	}
	return nil
}
