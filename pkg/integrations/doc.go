// Package integrations provides HTTP plumbing for binary repository clients.
//
// # Shared Infrastructure
//
// [Client] wraps an [http.Client] with:
//
//   - response caching through [cache.Cache], keyed by kind and URL
//   - a shared [httputil.Throttle] so every request of a crawl is spaced out
//   - retry of transient failures (network errors, 429, 5xx)
//   - [observability.HTTP] hooks
//
// # Errors
//
// 404 and 410 map to [ErrNotFound] ("not published"). Transport failures and
// other non-2xx codes map to [ErrNetwork]. Callers in the crawler treat both
// as "absent" but log them differently.
//
// The Maven repository client lives in [maven].
//
// [cache.Cache]: github.com/matzehuels/mavcrawl/pkg/cache.Cache
// [httputil.Throttle]: github.com/matzehuels/mavcrawl/pkg/httputil.Throttle
// [observability.HTTP]: github.com/matzehuels/mavcrawl/pkg/observability.HTTP
// [maven]: github.com/matzehuels/mavcrawl/pkg/integrations/maven
package integrations
