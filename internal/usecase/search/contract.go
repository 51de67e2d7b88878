package search

import (
	"context"

	"github.com/kailas-cloud/recall/internal/domain"
	domcol "github.com/kailas-cloud/recall/internal/domain/collection"
	"github.com/kailas-cloud/recall/internal/domain/search/request"
	"github.com/kailas-cloud/recall/internal/domain/search/result"
)

// Repository runs vector similarity search.
type Repository interface {
	Search(ctx context.Context, collection string, vector []float32, req request.Request) ([]result.Result, error)
}

// CollectionReader reads the collection configuration.
type CollectionReader interface {
	Get(ctx context.Context, name string) (domcol.Collection, error)
}

// EmbedderFactory returns the embedder of a model.
type EmbedderFactory interface {
	Create(model string) (domain.Embedder, error)
}

// ContentFetcher downloads remote query content.
type ContentFetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}
