package document

import (
	"context"

	domcol "github.com/kailas-cloud/recall/internal/domain/collection"
	domdoc "github.com/kailas-cloud/recall/internal/domain/document"
)

// Repository pages through stored points.
type Repository interface {
	List(ctx context.Context, collection, cursor string, limit int) ([]domdoc.Stored, string, error)
	Count(ctx context.Context, collection string) (int, error)
}

// CollectionReader checks that the collection exists.
type CollectionReader interface {
	Get(ctx context.Context, name string) (domcol.Collection, error)
}
