package pom

import (
	"context"
	"path"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
)

// DefaultMaxParentDepth bounds the parent chain length.
const DefaultMaxParentDepth = 32

// Fetcher retrieves raw POM bytes. Implementations return an error wrapping
// integrations.ErrNotFound when the document is not published.
type Fetcher interface {
	FetchPOM(ctx context.Context, c artifact.Coordinate) ([]byte, error)
}

// Metadata is what the crawler keeps from an artifact's own POM after
// inheritance resolution.
type Metadata struct {
	Description   string
	SourceCodeURL string
	Parent        *artifact.Coordinate
	Modules       []artifact.Coordinate
	Properties    Properties
}

// Walker follows parent chains and accumulates inherited properties.
type Walker struct {
	fetcher  Fetcher
	maxDepth int
	logger   *log.Logger
}

// WalkerOption configures a [Walker].
type WalkerOption func(*Walker)

// WithMaxParentDepth overrides [DefaultMaxParentDepth].
func WithMaxParentDepth(n int) WalkerOption {
	return func(w *Walker) {
		if n > 0 {
			w.maxDepth = n
		}
	}
}

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) WalkerOption {
	return func(w *Walker) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWalker returns a walker that fetches parent POMs through f.
func NewWalker(f Fetcher, opts ...WalkerOption) *Walker {
	w := &Walker{fetcher: f, maxDepth: DefaultMaxParentDepth, logger: log.Default()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Accumulate merges doc's properties into props (existing keys win),
// re-resolves every value against doc, then continues with doc's parent.
//
// The walk stops quietly and returns what it has when there is no parent,
// the parent reference is malformed, the parent cannot be fetched or parsed,
// a cycle is found, or the depth bound is hit. It never fails.
func (w *Walker) Accumulate(ctx context.Context, doc *Document, props Properties) Properties {
	seen := make(map[artifact.Coordinate]bool)
	return w.accumulate(ctx, doc, props, seen, 0)
}

func (w *Walker) accumulate(ctx context.Context, doc *Document, props Properties, seen map[artifact.Coordinate]bool, depth int) Properties {
	if doc == nil {
		return props
	}
	acc := resolveAll(props.mergeList(doc.Properties), doc)

	if doc.Parent == nil {
		return acc
	}
	if depth >= w.maxDepth {
		w.logger.Warn("parent chain too deep", "depth", depth)
		return acc
	}
	pc, ok := parentCoordinate(doc, acc)
	if !ok {
		w.logger.Debug("skipping malformed parent", "parent", pc.String())
		return acc
	}
	if seen[pc] {
		w.logger.Warn("parent cycle", "parent", pc.String())
		return acc
	}
	seen[pc] = true

	if err := ctx.Err(); err != nil {
		return acc
	}
	data, err := w.fetcher.FetchPOM(ctx, pc)
	if err != nil {
		w.logger.Debug("parent POM unavailable", "parent", pc.String(), "err", err)
		return acc
	}
	parent, err := Parse(data)
	if err != nil {
		w.logger.Warn("parent POM unparsable", "parent", pc.String(), "err", err)
		return acc
	}
	return w.accumulate(ctx, parent, acc, seen, depth+1)
}

// parentCoordinate resolves the <parent> block. ok is false when any field is
// absent, unresolved or unsafe.
func parentCoordinate(doc *Document, props Properties) (artifact.Coordinate, bool) {
	if doc.Parent == nil {
		return artifact.Coordinate{}, false
	}
	c := artifact.Coordinate{
		Group:    Resolve(doc.Parent.GroupID, props, doc),
		Artifact: Resolve(doc.Parent.ArtifactID, props, doc),
		Version:  Resolve(doc.Parent.Version, props, doc),
	}
	if c.IsUnknown() || c.Validate() != nil {
		return c, false
	}
	return c, true
}

// Inspect parses an artifact's own POM, accumulates its inherited properties
// and extracts description, SCM URL, parent and modules.
//
// A parse failure is returned as an error; callers treat it as "no metadata".
func (w *Walker) Inspect(ctx context.Context, c artifact.Coordinate, raw []byte) (*Metadata, error) {
	doc, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	props := w.Accumulate(ctx, doc, Properties{})

	md := &Metadata{Properties: props}
	if pc, ok := parentCoordinate(doc, props); ok {
		md.Parent = &pc
	}
	md.Description = known(Resolve(doc.Description, props, doc))
	if doc.SCM != nil {
		md.SourceCodeURL = known(Resolve(doc.SCM.URL, props, doc))
	}
	for _, m := range doc.Modules {
		name := path.Base(ResolveString(m, props, doc))
		mc := artifact.Coordinate{Group: c.Group, Artifact: name, Version: c.Version}
		if name == "." || mc.Validate() != nil {
			w.logger.Debug("skipping module", "coord", c.String(), "module", m)
			continue
		}
		md.Modules = append(md.Modules, mc)
	}
	return md, nil
}

func known(s string) string {
	if s == artifact.Unknown {
		return ""
	}
	return s
}
