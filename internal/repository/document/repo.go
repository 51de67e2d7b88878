// Package document persists documents as vector database points addressed by their
// deterministic point id.
package document

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/recall/internal/db"
	domdoc "github.com/kailas-cloud/recall/internal/domain/document"
)

// DefaultPageSize is used when List is called without a limit.
const DefaultPageSize = 20

// store is the consumer interface for points (ISP).
type store interface {
	Upsert(ctx context.Context, collection string, points []db.Point) (int, error)
	Scroll(ctx context.Context, q *db.ScrollQuery) (*db.ScrollPage, error)
	Count(ctx context.Context, collection string) (int, error)
}

// Repo implements document persistence over the vector store.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Upsert writes the document's point. Re-ingesting the same (collection, doc id)
// overwrites the same point. Returns the point id.
func (r *Repo) Upsert(ctx context.Context, collection string, doc domdoc.Document, vector []float32) (string, error) {
	id := domdoc.PointID(collection, doc.ID()).String()

	_, err := r.store.Upsert(ctx, collection, []db.Point{{
		ID:      id,
		Vector:  vector,
		Payload: doc.PointPayload(),
	}})
	if err != nil {
		return "", fmt.Errorf("upsert %s/%s: %w", collection, doc.ID(), err)
	}
	return id, nil
}

// List returns one page of stored documents starting at cursor (a point id, empty for
// the first page) and the cursor of the next page, empty when exhausted.
func (r *Repo) List(ctx context.Context, collection, cursor string, limit int) ([]domdoc.Stored, string, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	page, err := r.store.Scroll(ctx, &db.ScrollQuery{
		Collection:  collection,
		Offset:      cursor,
		Limit:       limit,
		WithPayload: true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("scroll %s: %w", collection, err)
	}

	docs := make([]domdoc.Stored, len(page.Points))
	for i, p := range page.Points {
		docs[i] = domdoc.Stored{PointID: p.ID, Payload: p.Payload}
	}
	return docs, page.NextOffset, nil
}

// Count returns the number of documents in a collection.
func (r *Repo) Count(ctx context.Context, collection string) (int, error) {
	n, err := r.store.Count(ctx, collection)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}
