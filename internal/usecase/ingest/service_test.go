package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/recall/internal/domain"
	"github.com/kailas-cloud/recall/internal/domain/document"
	"github.com/kailas-cloud/recall/internal/domain/task"
	"github.com/kailas-cloud/recall/internal/metrics"
)

func TestIngest_EnqueuesOneJobPerDocument(t *testing.T) {
	q := &mockQueue{queued: -1}
	s := newTestService(t, &mockColls{col: testCollection()}, q)

	before := testutil.ToFloat64(metrics.JobsEnqueuedTotal)

	docs := []document.Document{
		doc("doc1", map[string]any{"price": 9.5}),
		document.Reconstruct("doc2", "https://x/y.txt", "", map[string]any{"price": 3, "extra": "kept"}),
	}
	h, err := s.Ingest(context.Background(), "products", docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h.TaskID != "batch-1" || h.DocumentsQueued != 2 || h.Status != task.StateQueued {
		t.Errorf("handle = %+v", h)
	}
	if len(q.jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(q.jobs))
	}
	j := q.jobs[1]
	if j.ID != "batch-1:doc2" || j.DocID != "doc2" || j.Collection != "products" {
		t.Errorf("job = %+v", j)
	}
	if j.ContentURI != "https://x/y.txt" || j.Payload["extra"] != "kept" || j.State != task.StateQueued {
		t.Errorf("job = %+v", j)
	}
	if q.jobs[0].ID != "batch-1:doc1" || q.jobs[0].ContentRaw != "text of doc1" {
		t.Errorf("job order or content wrong: %+v", q.jobs[0])
	}
	if got := testutil.ToFloat64(metrics.JobsEnqueuedTotal) - before; got != 2 {
		t.Errorf("jobs_enqueued_total delta = %v", got)
	}
}

func TestIngest_FreshBatchIDPerCall(t *testing.T) {
	q := &mockQueue{queued: -1}
	s := newTestService(t, &mockColls{col: testCollection()}, q)
	s.newID = New(nil, nil, nil).newID

	docs := []document.Document{doc("d", map[string]any{"price": 1.0})}
	a, _ := s.Ingest(context.Background(), "products", docs)
	b, _ := s.Ingest(context.Background(), "products", docs)
	if a.TaskID == "" || a.TaskID == b.TaskID {
		t.Errorf("task ids %q and %q must differ", a.TaskID, b.TaskID)
	}
}

func TestIngest_CollectionNotFound(t *testing.T) {
	q := &mockQueue{queued: -1}
	s := newTestService(t, &mockColls{err: domain.ErrCollectionNotFound}, q)

	_, err := s.Ingest(context.Background(), "missing", []document.Document{doc("d", nil)})
	if !errors.Is(err, domain.ErrCollectionNotFound) {
		t.Fatalf("expected ErrCollectionNotFound, got %v", err)
	}
	if q.calls != 0 {
		t.Error("nothing must be enqueued")
	}
}

func TestIngest_SchemaValidationBeforeEnqueue(t *testing.T) {
	q := &mockQueue{queued: -1}
	s := newTestService(t, &mockColls{col: testCollection()}, q)

	docs := []document.Document{
		doc("ok", map[string]any{"price": 1.0}),
		doc("bad", map[string]any{"price": "cheap"}),
	}
	_, err := s.Ingest(context.Background(), "products", docs)

	var sve *domain.SchemaValidationError
	if !errors.As(err, &sve) {
		t.Fatalf("expected SchemaValidationError, got %v", err)
	}
	if sve.DocID != "bad" || !strings.Contains(err.Error(), "price") {
		t.Errorf("unexpected error: %v", err)
	}
	if q.calls != 0 {
		t.Error("nothing must be enqueued when a payload is invalid")
	}
}

func TestIngest_BatchSize(t *testing.T) {
	s := newTestService(t, &mockColls{col: testCollection()}, &mockQueue{queued: -1})

	if _, err := s.Ingest(context.Background(), "products", nil); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for empty batch, got %v", err)
	}

	docs := make([]document.Document, MaxDocuments+1)
	for i := range docs {
		docs[i] = doc(strings.Repeat("x", i+1), map[string]any{"price": 1.0})
	}
	if _, err := s.Ingest(context.Background(), "products", docs); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for oversized batch, got %v", err)
	}
	if _, err := s.Ingest(context.Background(), "products", docs[:MaxDocuments]); err != nil {
		t.Errorf("batch of %d rejected: %v", MaxDocuments, err)
	}
}

func TestIngest_DuplicateIDs(t *testing.T) {
	s := newTestService(t, &mockColls{col: testCollection()}, &mockQueue{queued: -1})

	docs := []document.Document{doc("a", map[string]any{"price": 1.0}), doc("a", map[string]any{"price": 2.0})}
	if _, err := s.Ingest(context.Background(), "products", docs); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestIngest_PartialEnqueueNotRolledBack(t *testing.T) {
	q := &mockQueue{queued: 1, err: errors.New("redis down")}
	s := newTestService(t, &mockColls{col: testCollection()}, q)

	docs := []document.Document{doc("a", map[string]any{"price": 1.0}), doc("b", map[string]any{"price": 2.0})}
	h, err := s.Ingest(context.Background(), "products", docs)
	if !errors.Is(err, q.err) {
		t.Fatalf("expected queue error, got %v", err)
	}
	if h.TaskID != "batch-1" || h.DocumentsQueued != 1 {
		t.Errorf("handle = %+v", h)
	}
}
