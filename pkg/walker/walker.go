package walker

import (
	"context"
	"math/rand/v2"
	"net/url"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
	"github.com/matzehuels/mavcrawl/pkg/integrations/maven"
)

// DefaultMaxDepth bounds group-directory recursion.
const DefaultMaxDepth = 5

// ReservedPrefixes mark internal top-level directories whose contents are
// never emitted.
var ReservedPrefixes = []string{"%23", "#", "_", "."}

// Lister lists the absolute URLs of a directory's subdirectories.
// Implementations return an empty list for any non-success response.
type Lister interface {
	List(ctx context.Context, dirURL string) ([]string, error)
}

// Options configures a [Walker].
type Options struct {
	// MaxDepth bounds group recursion. Defaults to [DefaultMaxDepth].
	MaxDepth int
	// SampleSize limits the artifacts emitted per top-level group, chosen at
	// random. Zero emits all of them.
	SampleSize int
	// Seed makes sampling reproducible. Zero picks a random seed.
	Seed   uint64
	Logger *log.Logger
}

// Walker walks a repository through a [Lister].
type Walker struct {
	lister Lister
	opts   Options

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a walker.
func New(l Lister, opts Options) *Walker {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Walker{lister: l, opts: opts, rng: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

func (w *Walker) list(ctx context.Context, dirURL string) []string {
	dirs, err := w.lister.List(ctx, dirURL)
	if err != nil {
		w.opts.Logger.Debug("listing failed", "url", dirURL, "err", err)
		return nil
	}
	return dirs
}

// ListVersions returns the decoded names of the version directories below an
// artifact directory.
func (w *Walker) ListVersions(ctx context.Context, artifactURL string) []string {
	dirs := w.list(ctx, artifactURL)
	versions := make([]string, 0, len(dirs))
	for _, d := range dirs {
		versions = append(versions, maven.DirName(d))
	}
	return versions
}

// WalkGroup returns the artifact directories below groupURL. A directory
// without subdirectories is a version directory and yields nothing. At
// depth >= MaxDepth the branch is abandoned.
func (w *Walker) WalkGroup(ctx context.Context, groupURL string, depth int) []string {
	children := w.list(ctx, groupURL)
	if len(children) == 0 {
		w.opts.Logger.Debug("version directory", "url", groupURL)
		return nil
	}
	if depth >= w.opts.MaxDepth {
		w.opts.Logger.Info("max depth reached", "url", groupURL, "depth", depth)
		return nil
	}

	var artifacts []string
	for _, dir := range children {
		if ctx.Err() != nil {
			return artifacts
		}
		if w.isGroup(ctx, dir) {
			artifacts = append(artifacts, w.WalkGroup(ctx, dir, depth+1)...)
			continue
		}
		artifacts = append(artifacts, dir)
	}
	return artifacts
}

// isGroup reports whether dir's first child has children of its own.
func (w *Walker) isGroup(ctx context.Context, dir string) bool {
	sub := w.list(ctx, dir)
	return len(sub) > 0 && len(w.list(ctx, sub[0])) > 0
}

// Candidates walks every top-level group below baseURL and calls emit with
// the latest version of each artifact found. Groups with a reserved prefix
// are skipped. It stops at the first error returned by emit or on ctx
// cancellation.
func (w *Walker) Candidates(ctx context.Context, baseURL string, emit func(artifact.Coordinate) error) error {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	for _, groupDir := range w.list(ctx, baseURL) {
		if err := ctx.Err(); err != nil {
			return err
		}
		top := strings.TrimPrefix(groupDir, baseURL)
		if Reserved(top) {
			w.opts.Logger.Debug("skipping reserved group", "dir", top)
			continue
		}

		for _, artifactDir := range w.sample(w.WalkGroup(ctx, groupDir, 0)) {
			c, ok := w.candidate(ctx, baseURL, artifactDir)
			if !ok {
				continue
			}
			if err := emit(c); err != nil {
				return err
			}
		}
	}
	return ctx.Err()
}

func (w *Walker) candidate(ctx context.Context, baseURL, artifactDir string) (artifact.Coordinate, bool) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(artifactDir, baseURL), "/"), "/")
	if len(parts) < 2 {
		return artifact.Coordinate{}, false
	}
	for i, p := range parts {
		if dec, err := url.PathUnescape(p); err == nil {
			parts[i] = dec
		}
	}
	group := strings.Join(parts[:len(parts)-1], ".")
	if Reserved(group) {
		return artifact.Coordinate{}, false
	}

	latest, ok := LatestVersion(w.ListVersions(ctx, artifactDir))
	if !ok {
		return artifact.Coordinate{}, false
	}
	c, err := artifact.New(group, parts[len(parts)-1], latest)
	if err != nil {
		w.opts.Logger.Debug("skipping invalid coordinate", "dir", artifactDir, "err", err)
		return artifact.Coordinate{}, false
	}
	return c, true
}

func (w *Walker) sample(dirs []string) []string {
	n := w.opts.SampleSize
	if n <= 0 || len(dirs) <= n {
		return dirs
	}
	w.mu.Lock()
	idx := w.rng.Perm(len(dirs))[:n]
	w.mu.Unlock()
	out := make([]string, n)
	for i, j := range idx {
		out[i] = dirs[j]
	}
	return out
}

// Reserved reports whether a group id or top-level directory name starts
// with one of [ReservedPrefixes].
func Reserved(group string) bool {
	for _, p := range ReservedPrefixes {
		if strings.HasPrefix(group, p) {
			return true
		}
	}
	return false
}
