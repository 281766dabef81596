// Package maven reads Maven-layout binary repositories.
//
// # Overview
//
// A [Client] is bound to one [Repository] and offers:
//
//   - [Client.List]: subdirectories of an HTML directory index
//   - [Client.FetchPOM]: the POM of a coordinate
//   - [Client.FileInfo]: last-modified and size of the main .jar/.aar
//   - [Client.Search]: paged Solr search (Maven Central)
//   - [Client.Groups] / [Client.GroupIndex]: master-index.xml style indexes (Google)
//
// Presets [Central], [Cloudera] and [Google] cover the repositories the
// crawler was built for.
//
// # Directory listings
//
// Listings are parsed with goquery. Any anchor whose href ends in "/" and
// stays below the listed directory counts as a subdirectory. File rows are
// read from <pre> autoindex pages (name, date, time, size) and from
// <table> pages (name, modified, size). Timestamps such as
// "Tue Jan 30 19:41:11 UTC 2024" are parsed by [ParseTimestamp].
//
// # Rate limiting
//
// Every request waits on a shared [httputil.Throttle], one request per
// 200ms by default.
//
// [httputil.Throttle]: github.com/matzehuels/mavcrawl/pkg/httputil.Throttle
package maven
