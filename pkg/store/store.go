// Package store persists artifact records keyed by "group:artifact:version".
//
// The store is the crawler's source of truth for "already processed": any
// record, placeholder or resolved, means the coordinate is not crawled again.
//
// # Upsert semantics
//
// Upserting a record that already exists replaces its metadata fields and
// unions its child set; the child set never shrinks. Upserting a placeholder
// onto an existing record only adds children, so an anchor can never erase a
// resolved record.
//
// # Backends
//
//   - [Memory]: in-process map for tests and dry runs
//   - [FileStore]: one JSON file per record for single-machine crawls
//   - store/mongo: MongoDB collection for long-running shared crawls
package store

import (
	"context"
	"errors"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
)

// ErrNotFound is returned by Get when no record exists for a coordinate.
var ErrNotFound = errors.New("record not found")

// Store is the graph store contract shared by all backends.
type Store interface {
	// Get returns the record for c, or ErrNotFound.
	Get(ctx context.Context, c artifact.Coordinate) (*artifact.Record, error)

	// Exists reports whether any record exists for c.
	Exists(ctx context.Context, c artifact.Coordinate) (bool, error)

	// Upsert inserts rec or merges it into the existing record.
	Upsert(ctx context.Context, rec *artifact.Record) error

	// MarkChild adds child to parent's child set. When parent has no record,
	// a placeholder whose child set is exactly {child} is created and created
	// is true.
	MarkChild(ctx context.Context, parent, child artifact.Coordinate) (created bool, err error)

	// Records returns all records with the given status, or every record when
	// status is empty, ordered by key.
	Records(ctx context.Context, status artifact.Status) ([]*artifact.Record, error)

	// Close releases the backend.
	Close(ctx context.Context) error
}

// Save applies the parent rule and then upserts rec: when rec names a known
// parent, the parent's child set gains rec's coordinate (creating a
// placeholder parent if needed) before rec itself is written.
//
// The two writes are not atomic. If Upsert fails the parent already lists
// rec's coordinate but rec has no record, so the crawler does not skip it and
// the next Save completes the pair. Child sets are unions, so repeating
// MarkChild adds nothing. Writing rec first would instead leave a stored
// child that its parent never lists, which no later crawl revisits.
func Save(ctx context.Context, s Store, rec *artifact.Record) error {
	if rec.Parent != nil && !rec.Parent.IsUnknown() && *rec.Parent != rec.Coordinate {
		if _, err := s.MarkChild(ctx, *rec.Parent, rec.Coordinate); err != nil {
			return err
		}
	}
	return s.Upsert(ctx, rec)
}

// Placeholders returns the coordinates of all placeholder records.
func Placeholders(ctx context.Context, s Store) ([]artifact.Coordinate, error) {
	recs, err := s.Records(ctx, artifact.StatusPlaceholder)
	if err != nil {
		return nil, err
	}
	out := make([]artifact.Coordinate, len(recs))
	for i, r := range recs {
		out[i] = r.Coordinate
	}
	return out, nil
}

// merge applies next onto cur (which may be nil) and returns the result.
// It is shared by the in-process backends.
func merge(cur, next *artifact.Record) *artifact.Record {
	if cur == nil {
		return next.Clone()
	}
	out := cur.Clone()
	if next.IsPlaceholder() {
		out.AddChildren(next.Children...)
		return out
	}
	out.Merge(next)
	return out
}
