// Package cache stores raw repository responses between crawl runs.
//
// Backends implement [Cache]:
//
//   - [FileCache]: JSON entry files under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for several crawler processes
//   - [NullCache]: never stores anything
//
// Keys come from a [Keyer] so that responses from different repositories
// never collide:
//
//	k := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "central:")
//	key := k.HTTPKey("pom", url)
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value cache with per-entry TTL.
//
// Get reports a miss with hit=false and a nil error. A ttl of 0 in Set means
// the entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
