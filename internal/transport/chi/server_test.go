package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/recall/internal/db"
	"github.com/kailas-cloud/recall/internal/domain"
	domcol "github.com/kailas-cloud/recall/internal/domain/collection"
	"github.com/kailas-cloud/recall/internal/domain/collection/field"
	"github.com/kailas-cloud/recall/internal/domain/document"
	"github.com/kailas-cloud/recall/internal/domain/search/filter"
	"github.com/kailas-cloud/recall/internal/domain/search/request"
	"github.com/kailas-cloud/recall/internal/domain/search/result"
	"github.com/kailas-cloud/recall/internal/domain/task"
	documentuc "github.com/kailas-cloud/recall/internal/usecase/document"
	healthuc "github.com/kailas-cloud/recall/internal/usecase/health"
)

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return v
}

func TestCreateCollection(t *testing.T) {
	d := newTestDeps()
	var gotModel string
	var gotFields []field.Field
	d.collections.createFn = func(_ context.Context, name, model string, modality domain.Modality, fields []field.Field) (domcol.Collection, error) {
		gotModel, gotFields = model, fields
		if modality != "" {
			t.Errorf("modality = %q, want empty", modality)
		}
		return domcol.Reconstruct(name, domcol.EmbeddingConfig{Model: model, Modality: domain.ModalityText}, fields, 384, testCollection().CreatedAt()), nil
	}

	rr := do(d.router(), "POST", "/collections",
		`{"name":"products","embedding_config":{"model":"all-MiniLM-L6-v2"},"index_schema":{"price":"float"}}`)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	resp := decode[CollectionResponse](t, rr)
	if resp.Status != "created" || resp.Name != "products" || resp.Message != "Collection created with 384-dim vectors" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if gotModel != "all-MiniLM-L6-v2" || len(gotFields) != 1 || gotFields[0].FieldType() != field.Float {
		t.Errorf("model=%q fields=%v", gotModel, gotFields)
	}
}

func TestCreateCollection_BadSchemaType(t *testing.T) {
	d := newTestDeps()
	rr := do(d.router(), "POST", "/collections",
		`{"name":"products","embedding_config":{"model":"m"},"index_schema":{"loc":"geo"}}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	if body := decode[ErrorResponse](t, rr); body.Error != KindInvalidRequest {
		t.Errorf("error kind = %q", body.Error)
	}
}

func TestCreateCollection_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
	}{
		{"exists", fmt.Errorf("create collection: %w", domain.ErrCollectionExists), http.StatusConflict, KindCollectionExists},
		{"unsupported model", &domain.UnsupportedModelError{Model: "gpt", Supported: []string{"a"}}, http.StatusBadRequest, KindUnsupportedModel},
		{"invalid", fmt.Errorf("%w: bad name", domain.ErrInvalidRequest), http.StatusBadRequest, KindInvalidRequest},
		{"vector db", &db.Error{Op: db.OpCreateCollection, Err: fmt.Errorf("%w: unavailable", domain.ErrVectorDB)}, http.StatusBadRequest, KindVectorDB},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDeps()
			d.collections.createFn = func(context.Context, string, string, domain.Modality, []field.Field) (domcol.Collection, error) {
				return domcol.Collection{}, tt.err
			}
			rr := do(d.router(), "POST", "/collections", `{"name":"x","embedding_config":{"model":"gpt"}}`)
			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantCode)
			}
			body := decode[ErrorResponse](t, rr)
			if body.Error != tt.wantKind {
				t.Errorf("kind = %q, want %q", body.Error, tt.wantKind)
			}
			if body.Details == nil {
				t.Error("details must always be present")
			}
		})
	}
}

func TestUnsupportedModel_Details(t *testing.T) {
	d := newTestDeps()
	d.collections.createFn = func(context.Context, string, string, domain.Modality, []field.Field) (domcol.Collection, error) {
		return domcol.Collection{}, &domain.UnsupportedModelError{Model: "gpt", Supported: []string{"a", "b"}}
	}
	rr := do(d.router(), "POST", "/collections", `{"name":"x","embedding_config":{"model":"gpt"}}`)

	body := decode[ErrorResponse](t, rr)
	if body.Details["model_name"] != "gpt" {
		t.Errorf("details = %v", body.Details)
	}
	if models, ok := body.Details["supported_models"].([]any); !ok || len(models) != 2 {
		t.Errorf("supported_models = %v", body.Details["supported_models"])
	}
}

func TestCollectionsReadRoutes(t *testing.T) {
	d := newTestDeps()
	d.collections.listFn = func(context.Context) ([]domcol.Collection, error) {
		return []domcol.Collection{testCollection()}, nil
	}
	d.collections.getFn = func(_ context.Context, name string) (domcol.Collection, error) {
		if name != "products" {
			return domcol.Collection{}, domain.ErrCollectionNotFound
		}
		return testCollection(), nil
	}
	h := d.router()

	rr := do(h, "GET", "/collections", "")
	if names := decode[[]string](t, rr); len(names) != 1 || names[0] != "products" {
		t.Errorf("list = %v", names)
	}

	rr = do(h, "GET", "/collections/products", "")
	col := decode[Collection](t, rr)
	if col.EmbeddingConfig.Model != "all-MiniLM-L6-v2" || col.IndexSchema["price"] != "float" {
		t.Errorf("get = %+v", col)
	}
	if col.CreatedAt.Year() != 2025 {
		t.Errorf("created_at = %v", col.CreatedAt)
	}

	rr = do(h, "GET", "/collections/missing", "")
	if rr.Code != http.StatusNotFound || decode[ErrorResponse](t, rr).Error != KindCollectionNotFound {
		t.Errorf("missing collection status = %d", rr.Code)
	}

	rr = do(h, "GET", "/collections/models/supported", "")
	if models := decode[[]string](t, rr); len(models) != 2 || models[0] != "all-MiniLM-L6-v2" || models[1] != "clip-ViT-B-32" {
		t.Errorf("models = %v", models)
	}
}

func TestDeleteCollection(t *testing.T) {
	d := newTestDeps()
	d.collections.deleteFn = func(_ context.Context, name string) error {
		if name == "missing" {
			return domain.ErrCollectionNotFound
		}
		return nil
	}
	h := d.router()

	rr := do(h, "DELETE", "/collections/products", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decode[CollectionResponse](t, rr); resp.Status != "deleted" || resp.Name != "products" {
		t.Errorf("response = %+v", resp)
	}

	if rr := do(h, "DELETE", "/collections/missing", ""); rr.Code != http.StatusNotFound {
		t.Errorf("missing status = %d", rr.Code)
	}
}

func TestIngestDocuments_Accepted(t *testing.T) {
	d := newTestDeps()
	var got []document.Document
	d.ingest.fn = func(_ context.Context, collection string, docs []document.Document) (task.Handle, error) {
		if collection != "products" {
			t.Errorf("collection = %q", collection)
		}
		got = docs
		return task.Handle{TaskID: "batch-1", DocumentsQueued: len(docs), Status: task.StateQueued}, nil
	}

	rr := do(d.router(), "POST", "/collections/products/documents",
		`{"documents":[{"id":"a","content_raw":"red shoes","payload":{"price":10}},{"id":"b","content_uri":"s3://b/k.jpg","payload":{}}]}`)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	resp := decode[IngestResponse](t, rr)
	if resp.TaskID != "batch-1" || resp.DocumentsQueued != 2 || resp.Status != "queued" {
		t.Errorf("response = %+v", resp)
	}
	if len(got) != 2 || got[0].ContentRaw() != "red shoes" || got[1].ContentURI() != "s3://b/k.jpg" {
		t.Errorf("docs = %+v", got)
	}
}

func TestIngestDocuments_SchemaViolation(t *testing.T) {
	d := newTestDeps()
	d.ingest.fn = func(context.Context, string, []document.Document) (task.Handle, error) {
		return task.Handle{}, &domain.SchemaValidationError{
			DocID:      "a",
			Violations: []domain.Violation{{Field: "price", Reason: "field required"}},
		}
	}

	rr := do(d.router(), "POST", "/collections/products/documents", `{"documents":[{"id":"a","content_raw":"x"}]}`)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decode[ErrorResponse](t, rr)
	if body.Error != KindSchemaValidation || body.Details["doc_id"] != "a" {
		t.Errorf("body = %+v", body)
	}
	if !strings.Contains(body.Message, "price: field required") {
		t.Errorf("message = %q", body.Message)
	}
}

func TestIngestDocuments_BadInput(t *testing.T) {
	d := newTestDeps()
	d.ingest.fn = func(context.Context, string, []document.Document) (task.Handle, error) {
		t.Fatal("ingest must not be called")
		return task.Handle{}, nil
	}
	h := d.router()

	for _, body := range []string{`{"documents":[{"id":""}]}`, `not json`} {
		if rr := do(h, "POST", "/collections/products/documents", body); rr.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d", body, rr.Code)
		}
	}
}

func TestListDocuments(t *testing.T) {
	d := newTestDeps()
	var gotCursor string
	var gotLimit int
	d.documents.fn = func(_ context.Context, _ string, cursor string, limit int) (documentuc.Page, error) {
		gotCursor, gotLimit = cursor, limit
		return documentuc.Page{
			Documents:  []document.Stored{{PointID: "p1", Payload: map[string]any{"_doc_id": "a"}}},
			Total:      7,
			Limit:      5,
			Offset:     cursor,
			NextOffset: "p2",
		}, nil
	}
	h := d.router()

	rr := do(h, "GET", "/collections/products/documents?limit=5&offset=p0", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decode[DocumentListResponse](t, rr)
	if gotCursor != "p0" || gotLimit != 5 {
		t.Errorf("cursor=%q limit=%d", gotCursor, gotLimit)
	}
	if resp.Total != 7 || len(resp.Documents) != 1 || resp.Documents[0].ID != "p1" {
		t.Errorf("response = %+v", resp)
	}
	if resp.NextOffset == nil || *resp.NextOffset != "p2" {
		t.Errorf("next_offset = %v", resp.NextOffset)
	}

	if rr := do(h, "GET", "/collections/products/documents?limit=abc", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d", rr.Code)
	}
}

func TestSearch(t *testing.T) {
	d := newTestDeps()
	var got request.Request
	d.search.fn = func(_ context.Context, _ string, req request.Request) (result.Page, error) {
		got = req
		return result.Page{
			Query:   req.Query(),
			Results: []result.Result{result.New("p1", 0.9, map[string]any{"_doc_id": "a"}, nil)},
		}, nil
	}

	rr := do(d.router(), "POST", "/collections/products/search",
		`{"query":"red shoes","filter":{"op":"and","conditions":[{"op":"EQ","field":"color","value":"red"}]}}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	resp := decode[SearchResponse](t, rr)
	if resp.Count != 1 || resp.Query != "red shoes" || resp.Results[0].ID != "p1" || resp.Results[0].Score != 0.9 {
		t.Errorf("response = %+v", resp)
	}
	if got.Limit() != request.DefaultLimit || !got.WithPayload() || got.WithVectors() {
		t.Errorf("defaults not applied: limit=%d payload=%v vectors=%v", got.Limit(), got.WithPayload(), got.WithVectors())
	}
	and, ok := got.Filter().(filter.And)
	if !ok || len(and.Conditions) != 1 {
		t.Errorf("filter = %#v", got.Filter())
	}
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		svcErr   error
		wantCode int
		wantKind string
	}{
		{"unknown op", `{"query":"q","filter":{"op":"LIKE","field":"a","value":1}}`, nil, http.StatusBadRequest, KindInvalidFilter},
		{"empty query", `{"query":""}`, nil, http.StatusBadRequest, KindInvalidRequest},
		{"limit zero", `{"query":"q","limit":0}`, nil, http.StatusBadRequest, KindInvalidRequest},
		{"limit too large", `{"query":"q","limit":101}`, nil, http.StatusBadRequest, KindInvalidRequest},
		{"missing collection", `{"query":"q"}`, fmt.Errorf("get collection: %w", domain.ErrCollectionNotFound), http.StatusNotFound, KindCollectionNotFound},
		{"embedding", `{"query":"q"}`, domain.NewEmbeddingError("clip-ViT-B-32", errors.New("fetch failed")), http.StatusUnprocessableEntity, KindEmbedding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDeps()
			d.search.fn = func(context.Context, string, request.Request) (result.Page, error) {
				if tt.svcErr == nil {
					t.Fatal("search must not be called")
				}
				return result.Page{}, tt.svcErr
			}
			rr := do(d.router(), "POST", "/collections/products/search", tt.body)
			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tt.wantCode, rr.Body)
			}
			if kind := decode[ErrorResponse](t, rr).Error; kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", kind, tt.wantKind)
			}
		})
	}
}

func TestTaskStatus(t *testing.T) {
	d := newTestDeps()
	d.tasks.fn = func(_ context.Context, taskID string) (task.Report, error) {
		return task.Aggregate(taskID, []task.Job{
			{DocID: "b", State: task.StateComplete, Outcome: &task.Outcome{Status: task.OutcomeError, Error: "No content provided"}},
			{DocID: "a", State: task.StateQueued},
		}), nil
	}

	rr := do(d.router(), "GET", "/tasks/batch-1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decode[TaskStatusResponse](t, rr)
	if resp.TaskID != "batch-1" || len(resp.Jobs) != 2 {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Jobs[0].DocID != "a" || resp.Jobs[1].Status != "failed" || resp.Jobs[1].Error != "No content provided" {
		t.Errorf("jobs = %+v", resp.Jobs)
	}
	if resp.Summary != (TaskSummary{Total: 2, Queued: 1, Failed: 1}) {
		t.Errorf("summary = %+v", resp.Summary)
	}
}

func TestHealthCheck(t *testing.T) {
	d := newTestDeps()
	rr := do(d.router("secret"), "GET", "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decode[HealthResponse](t, rr); resp.Status != "ok" || resp.Checks["redis"] != "ok" {
		t.Errorf("response = %+v", resp)
	}

	d.health.report = healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"redis": healthuc.CheckOK, "qdrant": healthuc.CheckError},
	}
	rr = do(d.router(), "GET", "/health", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decode[HealthResponse](t, rr); resp.Status != "degraded" || resp.Checks["qdrant"] != "error" {
		t.Errorf("response = %+v", resp)
	}
}

func TestRouter_RequestIDAndNotFound(t *testing.T) {
	d := newTestDeps()
	rr := do(d.router(), "GET", "/nope", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestRouter_RecoversPanics(t *testing.T) {
	d := newTestDeps()
	d.tasks.fn = func(context.Context, string) (task.Report, error) { panic("boom") }

	rr := do(d.router(), "GET", "/tasks/x", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if kind := decode[ErrorResponse](t, rr).Error; kind != KindInternal {
		t.Errorf("kind = %q", kind)
	}
}

func TestRouter_RequestLogCarriesRouteParams(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	d := newTestDeps()
	d.logger = zap.New(core)
	d.collections.getFn = func(context.Context, string) (domcol.Collection, error) {
		return domcol.Collection{}, errors.New("disk on fire")
	}
	h := d.router()

	do(h, "GET", "/collections/shoes", "")
	do(h, "GET", "/tasks/batch-9", "")

	unhandled := logs.FilterMessage("Unhandled error").All()
	if len(unhandled) != 1 || unhandled[0].ContextMap()["collection"] != "shoes" {
		t.Errorf("unhandled error log = %+v", unhandled)
	}
	events := logs.FilterMessage("http_request").All()
	if len(events) != 2 {
		t.Fatalf("http_request events = %d", len(events))
	}
	if f := events[0].ContextMap(); f["collection"] != "shoes" || f["request_id"] == "" {
		t.Errorf("first event fields = %v", f)
	}
	if f := events[1].ContextMap(); f["task_id"] != "batch-9" {
		t.Errorf("second event fields = %v", f)
	}
}
