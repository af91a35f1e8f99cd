// Package database owns the MongoDB client pool and the generic
// per-collection operations the storage adapters build on. Driver errors
// never leave this package as raw errors; every operation returns a Result
// classified by the storage error taxonomy.
package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/searchforge/searchforge/internal/platform/logger"
	"github.com/searchforge/searchforge/internal/platform/metrics"
	"github.com/searchforge/searchforge/internal/shared/result"
)

// Config holds the document store connection settings.
type Config struct {
	URI      string
	Database string
	Deadline time.Duration
}

// clients pools one mongo client per connection string. The driver's client
// is itself a pool and safe for concurrent use; we only guard creation.
var (
	clientsMu sync.Mutex
	clients   = make(map[string]*mongo.Client)
)

func clientFor(uri string) (*mongo.Client, error) {
	clientsMu.Lock()
	defer clientsMu.Unlock()

	if c, ok := clients[uri]; ok {
		return c, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(uri).SetConnectTimeout(10 * time.Second)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to document store: %w", err)
	}

	clients[uri] = client
	return client, nil
}

// Store is a handle on one database within the shared client pool.
type Store struct {
	client   *mongo.Client
	db       *mongo.Database
	deadline time.Duration
	logger   logger.Logger
	metrics  *metrics.Metrics

	bootstrapMu   sync.Mutex
	bootstrapDone map[string]bool
}

// SetMetrics enables per-operation counters and latency histograms.
func (s *Store) SetMetrics(m *metrics.Metrics) { s.metrics = m }

// NewStore returns a Store for cfg, creating the underlying client on first
// use of its connection string.
func NewStore(cfg Config, log logger.Logger) (*Store, error) {
	client, err := clientFor(cfg.URI)
	if err != nil {
		return nil, err
	}

	deadline := cfg.Deadline
	if deadline <= 0 {
		deadline = 10 * time.Second
	}

	return &Store{
		client:        client,
		db:            client.Database(cfg.Database),
		deadline:      deadline,
		logger:        log,
		bootstrapDone: make(map[string]bool),
	}, nil
}

// Collection returns the operations handle for name.
func (s *Store) Collection(name string) *Collection {
	return &Collection{store: s, coll: s.db.Collection(name), name: name}
}

// Ping verifies connectivity to the document store.
func (s *Store) Ping(ctx context.Context) result.Result[bool] {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return failure[bool]("ping", err)
	}
	return result.Success(true, "")
}

// EnsureIndexes creates models on the named collection exactly once per
// process. A duplicate-index error from the server is logged and swallowed:
// bootstrap must be idempotent across restarts and replicas.
func (s *Store) EnsureIndexes(ctx context.Context, collection string, models []mongo.IndexModel) result.Result[bool] {
	s.bootstrapMu.Lock()
	if s.bootstrapDone[collection] {
		s.bootstrapMu.Unlock()
		return result.Success(true, "")
	}
	s.bootstrapMu.Unlock()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if _, err := s.db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
		if isIndexConflict(err) {
			s.logger.Warn("index already exists", "collection", collection, "error", err.Error())
		} else {
			return failure[bool]("create indexes", err)
		}
	}

	s.bootstrapMu.Lock()
	s.bootstrapDone[collection] = true
	s.bootstrapMu.Unlock()

	return result.Success(true, "")
}

func (s *Store) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.deadline)
}

// UpdateCounts carries the matched and modified counts of an update so
// callers can tell NotFound from a no-op update.
type UpdateCounts struct {
	Matched  int64
	Modified int64
}

// Collection exposes the generic CRUD surface for one collection.
type Collection struct {
	store *Store
	coll  *mongo.Collection
	name  string
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// observe records the outcome of one operation. A KindNone kind means the
// operation succeeded.
func (c *Collection) observe(op string, start time.Time, kind result.ErrorKind) {
	m := c.store.metrics
	if m == nil {
		return
	}
	m.StoreOpsTotal.WithLabelValues(c.name, op).Inc()
	m.StoreOpDuration.WithLabelValues(c.name, op).Observe(time.Since(start).Seconds())
	if kind != result.KindNone {
		m.StoreOpsFailed.WithLabelValues(c.name, op, string(kind)).Inc()
	}
}

// InsertOne inserts doc and returns the assigned object id as a 24-char
// lowercase hex string.
func (c *Collection) InsertOne(ctx context.Context, doc bson.M) result.Result[string] {
	ctx, cancel := c.store.opCtx(ctx)
	defer cancel()
	start := time.Now()

	res, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		f := failure[string]("insert", err)
		c.observe("insert", start, f.Kind)
		return f
	}
	c.observe("insert", start, result.KindNone)

	id, err := hexObjectID(res.InsertedID)
	if err != nil {
		return result.Failuref[string](result.KindDatabase, "insert returned unexpected id: %v", err)
	}
	return result.Success(id, "")
}

// FindOne retrieves the single document matching filter.
func (c *Collection) FindOne(ctx context.Context, filter bson.M) result.Result[bson.M] {
	ctx, cancel := c.store.opCtx(ctx)
	defer cancel()

	start := time.Now()
	var doc bson.M
	if err := c.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		f := failure[bson.M]("find", err)
		c.observe("find_one", start, f.Kind)
		return f
	}
	c.observe("find_one", start, result.KindNone)
	return result.Success(doc, "")
}

// FindMany retrieves up to limit documents matching filter, skipping skip,
// ordered by sort when non-nil.
func (c *Collection) FindMany(ctx context.Context, filter bson.M, limit, skip int64, sort bson.D) result.Result[[]bson.M] {
	ctx, cancel := c.store.opCtx(ctx)
	defer cancel()

	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if skip > 0 {
		opts.SetSkip(skip)
	}
	if sort != nil {
		opts.SetSort(sort)
	}

	start := time.Now()
	cursor, err := c.coll.Find(ctx, filter, opts)
	if err != nil {
		f := failure[[]bson.M]("find", err)
		c.observe("find_many", start, f.Kind)
		return f
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		f := failure[[]bson.M]("find", err)
		c.observe("find_many", start, f.Kind)
		return f
	}
	c.observe("find_many", start, result.KindNone)
	return result.Success(docs, "")
}

// UpdateOne applies setDoc as a $set to the document matching filter.
func (c *Collection) UpdateOne(ctx context.Context, filter, setDoc bson.M) result.Result[UpdateCounts] {
	ctx, cancel := c.store.opCtx(ctx)
	defer cancel()

	start := time.Now()
	res, err := c.coll.UpdateOne(ctx, filter, bson.M{"$set": setDoc})
	if err != nil {
		f := failure[UpdateCounts]("update", err)
		c.observe("update", start, f.Kind)
		return f
	}
	c.observe("update", start, result.KindNone)
	return result.Success(UpdateCounts{Matched: res.MatchedCount, Modified: res.ModifiedCount}, "")
}

// ReplaceOne replaces the document matching filter with doc, inserting it
// when upsert is set.
func (c *Collection) ReplaceOne(ctx context.Context, filter, doc bson.M, upsert bool) result.Result[UpdateCounts] {
	ctx, cancel := c.store.opCtx(ctx)
	defer cancel()

	opts := options.Replace().SetUpsert(upsert)
	start := time.Now()
	res, err := c.coll.ReplaceOne(ctx, filter, doc, opts)
	if err != nil {
		f := failure[UpdateCounts]("replace", err)
		c.observe("replace", start, f.Kind)
		return f
	}
	c.observe("replace", start, result.KindNone)
	counts := UpdateCounts{Matched: res.MatchedCount, Modified: res.ModifiedCount}
	if res.UpsertedCount > 0 {
		counts.Modified += res.UpsertedCount
	}
	return result.Success(counts, "")
}

// DeleteOne deletes the document matching filter and returns the count.
func (c *Collection) DeleteOne(ctx context.Context, filter bson.M) result.Result[int64] {
	ctx, cancel := c.store.opCtx(ctx)
	defer cancel()

	start := time.Now()
	res, err := c.coll.DeleteOne(ctx, filter)
	if err != nil {
		f := failure[int64]("delete", err)
		c.observe("delete", start, f.Kind)
		return f
	}
	c.observe("delete", start, result.KindNone)
	return result.Success(res.DeletedCount, "")
}

// Count returns the number of documents matching filter.
func (c *Collection) Count(ctx context.Context, filter bson.M) result.Result[int64] {
	ctx, cancel := c.store.opCtx(ctx)
	defer cancel()

	start := time.Now()
	n, err := c.coll.CountDocuments(ctx, filter)
	if err != nil {
		f := failure[int64]("count", err)
		c.observe("count", start, f.Kind)
		return f
	}
	c.observe("count", start, result.KindNone)
	return result.Success(n, "")
}
