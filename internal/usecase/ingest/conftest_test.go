package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/recall/internal/domain"
	domcol "github.com/kailas-cloud/recall/internal/domain/collection"
	"github.com/kailas-cloud/recall/internal/domain/collection/field"
	"github.com/kailas-cloud/recall/internal/domain/document"
	"github.com/kailas-cloud/recall/internal/domain/payload"
	"github.com/kailas-cloud/recall/internal/domain/task"
)

type mockColls struct {
	col domcol.Collection
	err error
}

func (m *mockColls) Get(_ context.Context, _ string) (domcol.Collection, error) {
	return m.col, m.err
}

type mockQueue struct {
	jobs   []task.Job
	calls  int
	queued int // -1 queues everything
	err    error
}

func (m *mockQueue) Enqueue(_ context.Context, jobs []task.Job) (int, error) {
	m.calls++
	m.jobs = jobs
	if m.queued < 0 {
		return len(jobs), m.err
	}
	return m.queued, m.err
}

func testCollection() domcol.Collection {
	return domcol.Reconstruct("products",
		domcol.EmbeddingConfig{Model: "all-MiniLM-L6-v2", Modality: domain.ModalityText},
		[]field.Field{field.Reconstruct("price", field.Float)},
		384, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
}

func newTestService(t *testing.T, colls *mockColls, q *mockQueue) *Service {
	t.Helper()
	v, err := payload.NewValidator(0)
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	s := New(colls, v, q)
	s.newID = func() string { return "batch-1" }
	s.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func doc(id string, p map[string]any) document.Document {
	return document.Reconstruct(id, "", "text of "+id, p)
}
