// Package probe determines an artifact's direct transitive dependencies by
// running an external dependency-tree tool.
//
// For each coordinate a synthetic project is generated that depends on that
// coordinate only. The tool resolves it to depth 2 and [ParseTree] keeps the
// entries one level below the probed artifact:
//
//	p := probe.New(probe.MavenTool{}, probe.Options{Timeout: 30 * time.Second})
//	deps, err := p.Probe(ctx, c)
//	if probe.IsFailure(err) {
//	    // nothing may be persisted for c
//	}
//
// An empty result means the artifact has no dependencies. A [Failure] means
// they are unknown.
package probe
