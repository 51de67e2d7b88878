package chi

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

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

type mockCollections struct {
	createFn func(ctx context.Context, name, model string, modality domain.Modality, fields []field.Field) (domcol.Collection, error)
	getFn    func(ctx context.Context, name string) (domcol.Collection, error)
	listFn   func(ctx context.Context) ([]domcol.Collection, error)
	deleteFn func(ctx context.Context, name string) error
}

func (m *mockCollections) Create(
	ctx context.Context, name, model string, modality domain.Modality, fields []field.Field,
) (domcol.Collection, error) {
	return m.createFn(ctx, name, model, modality, fields)
}

func (m *mockCollections) Get(ctx context.Context, name string) (domcol.Collection, error) {
	return m.getFn(ctx, name)
}

func (m *mockCollections) List(ctx context.Context) ([]domcol.Collection, error) {
	return m.listFn(ctx)
}

func (m *mockCollections) Delete(ctx context.Context, name string) error {
	return m.deleteFn(ctx, name)
}

func (m *mockCollections) Models() collectionuc.SupportedModels {
	return collectionuc.SupportedModels{
		Text:  []string{"all-MiniLM-L6-v2"},
		Image: []string{"clip-ViT-B-32"},
	}
}

type mockIngester struct {
	fn func(ctx context.Context, collection string, docs []document.Document) (task.Handle, error)
}

func (m *mockIngester) Ingest(ctx context.Context, collection string, docs []document.Document) (task.Handle, error) {
	return m.fn(ctx, collection, docs)
}

type mockBrowser struct {
	fn func(ctx context.Context, collection, cursor string, limit int) (documentuc.Page, error)
}

func (m *mockBrowser) Browse(ctx context.Context, collection, cursor string, limit int) (documentuc.Page, error) {
	return m.fn(ctx, collection, cursor, limit)
}

type mockSearcher struct {
	fn func(ctx context.Context, collection string, req request.Request) (result.Page, error)
}

func (m *mockSearcher) Search(ctx context.Context, collection string, req request.Request) (result.Page, error) {
	return m.fn(ctx, collection, req)
}

type mockTasks struct {
	fn func(ctx context.Context, taskID string) (task.Report, error)
}

func (m *mockTasks) Status(ctx context.Context, taskID string) (task.Report, error) {
	return m.fn(ctx, taskID)
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

type testDeps struct {
	collections *mockCollections
	ingest      *mockIngester
	documents   *mockBrowser
	search      *mockSearcher
	tasks       *mockTasks
	health      *mockHealth
	logger      *zap.Logger
}

func newTestDeps() *testDeps {
	return &testDeps{
		collections: &mockCollections{},
		ingest:      &mockIngester{},
		documents:   &mockBrowser{},
		search:      &mockSearcher{},
		tasks:       &mockTasks{},
		health: &mockHealth{report: healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{"redis": healthuc.CheckOK, "qdrant": healthuc.CheckOK},
		}},
		logger: zap.NewNop(),
	}
}

func (d *testDeps) router(apiKeys ...string) http.Handler {
	s := NewServer(d.collections, d.ingest, d.documents, d.search, d.tasks, d.health, d.logger)
	return NewRouter(s, RouterConfig{APIKeys: apiKeys})
}

func testCollection() domcol.Collection {
	return domcol.Reconstruct("products",
		domcol.EmbeddingConfig{Model: "all-MiniLM-L6-v2", Modality: domain.ModalityText},
		[]field.Field{field.Reconstruct("price", field.Float)},
		384, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
}
