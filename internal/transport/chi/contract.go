package chi

import (
	"context"

	"github.com/kailas-cloud/recall/internal/domain"
	domcol "github.com/kailas-cloud/recall/internal/domain/collection"
	"github.com/kailas-cloud/recall/internal/domain/collection/field"
	"github.com/kailas-cloud/recall/internal/domain/document"
	"github.com/kailas-cloud/recall/internal/domain/search/request"
	"github.com/kailas-cloud/recall/internal/domain/search/result"
	"github.com/kailas-cloud/recall/internal/domain/task"
	collectionuc "github.com/kailas-cloud/recall/internal/usecase/collection"
	documentuc "github.com/kailas-cloud/recall/internal/usecase/document"
	healthuc "github.com/kailas-cloud/recall/internal/usecase/health"
)

// Collections manages collection configuration.
type Collections interface {
	Create(ctx context.Context, name, model string, modality domain.Modality, fields []field.Field) (domcol.Collection, error)
	Get(ctx context.Context, name string) (domcol.Collection, error)
	List(ctx context.Context) ([]domcol.Collection, error)
	Delete(ctx context.Context, name string) error
	Models() collectionuc.SupportedModels
}

// Ingester queues documents for embedding.
type Ingester interface {
	Ingest(ctx context.Context, collection string, docs []document.Document) (task.Handle, error)
}

// Browser pages through stored points.
type Browser interface {
	Browse(ctx context.Context, collection, cursor string, limit int) (documentuc.Page, error)
}

// Searcher runs semantic search.
type Searcher interface {
	Search(ctx context.Context, collection string, req request.Request) (result.Page, error)
}

// Tasks reports batch progress.
type Tasks interface {
	Status(ctx context.Context, taskID string) (task.Report, error)
}

// HealthChecker reports dependency health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
