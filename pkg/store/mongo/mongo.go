// Package mongo is a MongoDB-backed [store.Store].
//
// Records live in one collection keyed by "_id" = "group:artifact:version".
// Field names match the collections written by the earlier crawler scripts
// (child_modules, parent_module, transitive_dependencies, jar_size), so
// existing data can be read and extended in place. Those documents carry no
// status field, store last_modified as a listing string and mark
// placeholders by a null description.
//
// Upserts are single UpdateOne calls combining $set for metadata with
// $addToSet/$each for children, so the child set is unioned atomically on
// the server.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
	"github.com/matzehuels/mavcrawl/pkg/store"
)

// Defaults for [Config].
const (
	DefaultDatabase   = "maven_dependencies"
	DefaultCollection = "dependencies"
	DefaultTimeout    = 10 * time.Second
)

// Config selects the server and collection.
type Config struct {
	URI        string
	Database   string
	Collection string
	// Timeout bounds connecting and pinging.
	Timeout time.Duration
}

// Store implements [store.Store] on a MongoDB collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Open connects, pings the primary and returns the store.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo: empty URI")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &Store{client: client, coll: client.Database(cfg.Database).Collection(cfg.Collection)}, nil
}

// Collection exposes the underlying collection for administrative tasks.
func (s *Store) Collection() *mongo.Collection { return s.coll }

func (s *Store) Get(ctx context.Context, c artifact.Coordinate) (*artifact.Record, error) {
	var doc document
	err := s.coll.FindOne(ctx, bson.M{"_id": c.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo get %s: %w", c, err)
	}
	return doc.record()
}

func (s *Store) Exists(ctx context.Context, c artifact.Coordinate) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": c.String()}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("mongo exists %s: %w", c, err)
	}
	return n > 0, nil
}

func (s *Store) Upsert(ctx context.Context, rec *artifact.Record) error {
	var update bson.M
	if rec.IsPlaceholder() {
		update = placeholderUpdate(rec.Children...)
	} else {
		update = resolvedUpdate(rec)
	}
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": rec.Coordinate.String()}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo upsert %s: %w", rec.Coordinate, err)
	}
	return nil
}

func (s *Store) MarkChild(ctx context.Context, parent, child artifact.Coordinate) (bool, error) {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": parent.String()},
		placeholderUpdate(child), options.Update().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("mongo mark child %s -> %s: %w", parent, child, err)
	}
	return res.UpsertedCount > 0, nil
}

func (s *Store) Records(ctx context.Context, status artifact.Status) ([]*artifact.Record, error) {
	cur, err := s.coll.Find(ctx, statusFilter(status), options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	out := make([]*artifact.Record, 0, len(docs))
	for _, d := range docs {
		rec, err := d.record()
		if err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ store.Store = (*Store)(nil)
