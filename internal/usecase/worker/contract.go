package worker

import (
	"context"
	"time"

	"github.com/kailas-cloud/recall/internal/domain"
	domcol "github.com/kailas-cloud/recall/internal/domain/collection"
	"github.com/kailas-cloud/recall/internal/domain/document"
	"github.com/kailas-cloud/recall/internal/domain/task"
)

// Queue hands out jobs and records their outcome.
type Queue interface {
	Claim(ctx context.Context, wait time.Duration) (task.Job, task.Delivery, error)
	Complete(ctx context.Context, j task.Job, o task.Outcome, d task.Delivery) error
	Fail(ctx context.Context, j task.Job, cause error, d task.Delivery) error
	Requeue(ctx context.Context) (int, error)
}

// CollectionReader loads the target collection's configuration.
type CollectionReader interface {
	Get(ctx context.Context, name string) (domcol.Collection, error)
}

// EmbedderFactory returns the embedder of a model.
type EmbedderFactory interface {
	Create(model string) (domain.Embedder, error)
}

// ContentResolver turns a document into embedder input.
type ContentResolver interface {
	Resolve(ctx context.Context, doc document.Document) (domain.Content, error)
}

// DocumentWriter upserts a document's point.
type DocumentWriter interface {
	Upsert(ctx context.Context, collection string, doc document.Document, vector []float32) (string, error)
}
