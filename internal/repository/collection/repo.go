package collection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/kailas-cloud/recall/internal/db"
	"github.com/kailas-cloud/recall/internal/domain"
	domcol "github.com/kailas-cloud/recall/internal/domain/collection"
)

// DefaultKeyPrefix namespaces every registry key.
const DefaultKeyPrefix = "recall:"

// createLockTTL bounds how long a crashed creator can hold a name.
const createLockTTL = time.Minute

// store is the consumer interface for registry metadata (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
}

// vectors is the consumer interface for vector collection lifecycle.
type vectors interface {
	CreateCollection(ctx context.Context, def *db.CollectionDefinition) error
	DeleteCollection(ctx context.Context, name string) (bool, error)
}

// Repo implements the schema registry: collection metadata in Redis, points in the vector database.
type Repo struct {
	store   store
	vectors vectors
	prefix  string
}

// New creates a collection repository.
func New(s store, v vectors) *Repo {
	return &Repo{store: s, vectors: v, prefix: DefaultKeyPrefix}
}

// WithKeyPrefix overrides the registry key prefix.
func (r *Repo) WithKeyPrefix(prefix string) *Repo {
	if prefix != "" {
		r.prefix = prefix
	}
	return r
}

// Create stores a collection: reserve the name, HSET metadata, then create the
// vector collection. On vector database failure, rolls back the HSET via DEL.
func (r *Repo) Create(ctx context.Context, col domcol.Collection) (err error) {
	name := col.Name()

	def, err := buildDefinition(col)
	if err != nil {
		return fmt.Errorf("build definition: %w", err)
	}
	hashData, err := collectionToHash(col)
	if err != nil {
		return err
	}

	lock := r.lockKey(name)
	acquired, err := r.store.SetNX(ctx, lock, []byte("1"), createLockTTL)
	if err != nil {
		return fmt.Errorf("reserve collection %s: %w", name, err)
	}
	if !acquired {
		return fmt.Errorf("%w: %s is being created", domain.ErrCollectionExists, name)
	}
	defer func() {
		if delErr := r.store.Del(context.WithoutCancel(ctx), lock); delErr != nil {
			err = errors.Join(err, fmt.Errorf("release collection %s: %w", name, delErr))
		}
	}()

	key := r.metaKey(name)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return domain.ErrCollectionExists
	}

	if err := r.store.HSet(ctx, key, hashData); err != nil {
		return fmt.Errorf("hset collection %s: %w", name, err)
	}

	if err := r.vectors.CreateCollection(ctx, def); err != nil {
		if errors.Is(err, db.ErrCollectionExists) {
			err = fmt.Errorf("%w: vector collection %s", domain.ErrCollectionExists, name)
		}
		cleanupErr := r.store.Del(ctx, key)
		return errors.Join(err, cleanupErr)
	}

	return nil
}

// Get retrieves a collection by name.
func (r *Repo) Get(ctx context.Context, name string) (domcol.Collection, error) {
	m, err := r.store.HGetAll(ctx, r.metaKey(name))
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("hgetall collection %s: %w", name, err)
	}
	if len(m) == 0 {
		return domcol.Collection{}, domain.ErrCollectionNotFound
	}

	return collectionFromHash(m)
}

// Exists reports whether a collection is registered.
func (r *Repo) Exists(ctx context.Context, name string) (bool, error) {
	ok, err := r.store.Exists(ctx, r.metaKey(name))
	if err != nil {
		return false, fmt.Errorf("exists collection %s: %w", name, err)
	}
	return ok, nil
}

// List returns all collections sorted by name.
func (r *Repo) List(ctx context.Context) ([]domcol.Collection, error) {
	keys, err := r.store.Scan(ctx, r.metaKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan collections: %w", err)
	}
	if len(keys) == 0 {
		return []domcol.Collection{}, nil
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi collections: %w", err)
	}

	collections := make([]domcol.Collection, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		col, err := collectionFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("parse collection %s: %w", keys[i], err)
		}
		collections = append(collections, col)
	}

	sort.Slice(collections, func(i, j int) bool {
		return collections[i].Name() < collections[j].Name()
	})

	return collections, nil
}

// Delete removes a collection: backup metadata, DEL hash, drop the vector collection
// (restore the hash on error).
func (r *Repo) Delete(ctx context.Context, name string) error {
	key := r.metaKey(name)

	backup, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return fmt.Errorf("hgetall collection %s: %w", name, err)
	}
	if len(backup) == 0 {
		return domain.ErrCollectionNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del collection %s: %w", name, err)
	}

	// A vector collection that is already gone still counts as deleted.
	if _, err := r.vectors.DeleteCollection(ctx, name); err != nil {
		cleanupErr := r.store.HSet(ctx, key, backup)
		return errors.Join(err, cleanupErr)
	}

	return nil
}

// Registry key pattern: {prefix}collection:{name}
func (r *Repo) metaKey(name string) string {
	return fmt.Sprintf("%scollection:%s", r.prefix, name)
}

// Creation lock pattern: {prefix}collection_lock:{name}, outside the metaKey scan.
func (r *Repo) lockKey(name string) string {
	return fmt.Sprintf("%scollection_lock:%s", r.prefix, name)
}
