// Package pkg provides the libraries behind mavcrawl, a crawler that turns a
// Maven-layout repository into a stored dependency graph.
//
// # Overview
//
// Every published artifact is identified by a group:artifact:version
// coordinate. The crawler resolves an artifact's descriptor (POM), follows its
// parent chain for inherited properties, runs a dependency-tree tool to learn
// its direct transitive dependencies and stores one record per coordinate.
// Records link to each other three ways: dependencies, parent and modules.
//
// # Architecture
//
// The data flow of one crawl:
//
//	seed source ([walker], Solr search, master index, explicit list)
//	         ↓
//	    [crawl] orchestrator (claim, skip rule, state machine, depth-first recursion)
//	         ↓
//	    [integrations/maven] client ──→ [pom] descriptor + parent walk
//	         ↓
//	    [probe] dependency-tree tool in a private temp dir
//	         ↓
//	    [store] records (memory, JSON files, MongoDB)
//	         ↓
//	    [api] read-only HTTP, [render] DOT/SVG neighbourhoods
//
// # Quick Start
//
// Crawl one coordinate into an in-memory store:
//
//	client := maven.NewClient(maven.Central, maven.Options{})
//	s := store.NewMemory()
//	cr := crawl.New(s, client, pom.NewWalker(client),
//	    probe.New(probe.MavenTool{}, probe.Options{}),
//	    crawl.Options{FileInfo: client})
//	state := cr.Process(ctx, artifact.MustParse("com.google.guava:guava:33.0.0-jre"))
//
// # Main Packages
//
// Domain:
//
//   - [artifact]: coordinates, dependency edges and stored records
//   - [pom]: POM document model, property interpolation, parent walking
//   - [probe]: synthetic descriptor, dependency-tree tool, tree parsing
//   - [walker]: repository directory traversal and latest-version selection
//   - [crawl]: the crawl orchestrator, claims and seed sources
//   - [store]: the record store interface and its backends
//
// Surfaces:
//
//   - [api]: chi-based read API over a store
//   - [render]: graph neighbourhoods as Graphviz DOT and SVG
//
// Infrastructure:
//
//   - [integrations]: shared HTTP client with caching, throttling and retry
//   - [cache]: response caches (file, Redis, null)
//   - [httputil]: retry and throttle helpers
//   - [errors]: coded errors
//   - [observability]: crawl, cache and HTTP hooks
//   - [buildinfo]: ldflags version information
//
// [artifact]: https://pkg.go.dev/github.com/matzehuels/mavcrawl/pkg/artifact
// [pom]: https://pkg.go.dev/github.com/matzehuels/mavcrawl/pkg/pom
// [probe]: https://pkg.go.dev/github.com/matzehuels/mavcrawl/pkg/probe
// [walker]: https://pkg.go.dev/github.com/matzehuels/mavcrawl/pkg/walker
// [crawl]: https://pkg.go.dev/github.com/matzehuels/mavcrawl/pkg/crawl
// [store]: https://pkg.go.dev/github.com/matzehuels/mavcrawl/pkg/store
// [api]: https://pkg.go.dev/github.com/matzehuels/mavcrawl/pkg/api
// [render]: https://pkg.go.dev/github.com/matzehuels/mavcrawl/pkg/render
// [integrations]: https://pkg.go.dev/github.com/matzehuels/mavcrawl/pkg/integrations
// [integrations/maven]: https://pkg.go.dev/github.com/matzehuels/mavcrawl/pkg/integrations/maven
// [cache]: https://pkg.go.dev/github.com/matzehuels/mavcrawl/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/mavcrawl/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/matzehuels/mavcrawl/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/mavcrawl/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/mavcrawl/pkg/buildinfo
package pkg
