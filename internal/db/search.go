package db

import (
	"context"

	"github.com/kailas-cloud/recall/internal/domain/search/filter"
)

// VectorStore is the vector database facade.
//
//nolint:interfacebloat // consumers depend on the narrow sub-interfaces
type VectorStore interface {
	Pinger
	CreateCollection(ctx context.Context, def *CollectionDefinition) error
	DeleteCollection(ctx context.Context, name string) (bool, error)
	CollectionExists(ctx context.Context, name string) (bool, error)
	Upsert(ctx context.Context, collection string, points []Point) (int, error)
	Search(ctx context.Context, q *SearchQuery) ([]ScoredPoint, error)
	Scroll(ctx context.Context, q *ScrollQuery) (*ScrollPage, error)
	Count(ctx context.Context, collection string) (int, error)
	Close() error
}

// Point is one stored vector record.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// SearchQuery is the input for vector similarity search.
type SearchQuery struct {
	Collection  string
	Vector      []float32
	Filter      filter.Condition
	Limit       int
	WithPayload bool
	WithVectors bool
}

// ScoredPoint is a single search hit in backend ranking order.
type ScoredPoint struct {
	ID      string
	Score   float64
	Payload map[string]any
	Vector  []float32
}

// ScrollQuery pages through a collection by point-id cursor.
type ScrollQuery struct {
	Collection  string
	Offset      string // point id to start from; empty starts at the beginning
	Limit       int
	WithPayload bool
	WithVectors bool
}

// ScrollPage is one page of stored points.
type ScrollPage struct {
	Points     []Point
	NextOffset string // empty when there are no more points
}
