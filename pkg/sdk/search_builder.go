package recall

import (
	"context"
	"fmt"
)

// TypedHit is a typed search result.
type TypedHit[T any] struct {
	Item   T
	Score  float64
	Vector []float32
}

// SearchBuilder is a fluent builder for typed search queries.
type SearchBuilder[T any] struct {
	idx *TypedIndex[T]

	query       string
	conds       []Filter
	limit       int
	withVectors bool
}

// Where adds an equality condition.
func (b *SearchBuilder[T]) Where(field string, value any) *SearchBuilder[T] {
	b.conds = append(b.conds, Eq(field, value))
	return b
}

// Filter adds an arbitrary condition. All conditions are combined with AND.
func (b *SearchBuilder[T]) Filter(f Filter) *SearchBuilder[T] {
	b.conds = append(b.conds, f)
	return b
}

// Limit sets the maximum number of results.
func (b *SearchBuilder[T]) Limit(n int) *SearchBuilder[T] {
	b.limit = n
	return b
}

// WithVectors asks the service to return the stored vectors.
func (b *SearchBuilder[T]) WithVectors() *SearchBuilder[T] {
	b.withVectors = true
	return b
}

func (b *SearchBuilder[T]) filter() any {
	switch len(b.conds) {
	case 0:
		return nil
	case 1:
		return b.conds[0]
	default:
		return And(b.conds...)
	}
}

// Do executes the search and returns typed results.
func (b *SearchBuilder[T]) Do(ctx context.Context) ([]TypedHit[T], error) {
	res, err := b.idx.client.Search(b.idx.name).Query(ctx, SearchQuery{
		Query:       b.query,
		Filter:      b.filter(),
		Limit:       b.limit,
		WithVectors: b.withVectors,
	})
	if err != nil {
		return nil, fmt.Errorf("typed search: %w", err)
	}

	hits := make([]TypedHit[T], 0, len(res.Results))
	for _, r := range res.Results {
		item, ok := b.idx.meta.fromPayload(r.ID, r.Payload).(T)
		if !ok {
			continue
		}
		hits = append(hits, TypedHit[T]{Item: item, Score: r.Score, Vector: r.Vector})
	}
	return hits, nil
}
