// Package crawl drives the artifact crawl: fetch a coordinate's POM, resolve
// its inherited metadata, probe its transitive dependencies, persist the
// record, and recurse depth-first into every dependency.
//
// Each coordinate moves through
//
//	Discovered -> Skipped
//	Discovered -> Fetching -> Failed
//	Discovered -> Fetching -> Resolved
//
// A coordinate with any record in the store is Skipped. A coordinate whose
// POM cannot be fetched, or whose probe fails, is Failed and nothing is
// written for it; it stays eligible for a future run but is not retried in
// the current one.
//
// [Crawler.Run] consumes seeds with a fixed number of workers. A [Claimer]
// keeps each coordinate in flight at most once, across processes when it is
// backed by Redis. Placeholder parents are never crawled by Run; they are
// revisited only by an explicit [Crawler.Sweep].
package crawl
