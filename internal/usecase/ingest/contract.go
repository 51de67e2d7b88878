package ingest

import (
	"context"

	domcol "github.com/kailas-cloud/recall/internal/domain/collection"
	"github.com/kailas-cloud/recall/internal/domain/collection/field"
	"github.com/kailas-cloud/recall/internal/domain/task"
)

// CollectionReader checks that the target collection exists.
type CollectionReader interface {
	Get(ctx context.Context, name string) (domcol.Collection, error)
}

// Validator checks a payload against a collection schema.
type Validator interface {
	Validate(payload map[string]any, schema map[string]field.Type, docID string) error
}

// Queue stores and dispatches jobs; it returns how many were queued before an error.
type Queue interface {
	Enqueue(ctx context.Context, jobs []task.Job) (int, error)
}
