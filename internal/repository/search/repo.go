// Package search runs nearest-neighbor queries against the vector store and maps hits
// to domain results.
package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/recall/internal/db"
	"github.com/kailas-cloud/recall/internal/domain/search/request"
	"github.com/kailas-cloud/recall/internal/domain/search/result"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	Search(ctx context.Context, q *db.SearchQuery) ([]db.ScoredPoint, error)
}

// Repo implements vector search over a collection.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Search runs a KNN query with the request's filter, limit and inclusion flags.
// Hits keep the store's ranking order.
func (r *Repo) Search(
	ctx context.Context, collection string, vector []float32, req request.Request,
) ([]result.Result, error) {
	hits, err := r.store.Search(ctx, &db.SearchQuery{
		Collection:  collection,
		Vector:      vector,
		Filter:      req.Filter(),
		Limit:       req.Limit(),
		WithPayload: req.WithPayload(),
		WithVectors: req.WithVectors(),
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}

	results := make([]result.Result, len(hits))
	for i, h := range hits {
		var payload map[string]any
		if req.WithPayload() {
			payload = h.Payload
		}
		var vector []float32
		if req.WithVectors() {
			vector = h.Vector
		}
		results[i] = result.New(h.ID, h.Score, payload, vector)
	}
	return results, nil
}
