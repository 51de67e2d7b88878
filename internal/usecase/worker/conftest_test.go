package worker

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/recall/internal/domain"
	domcol "github.com/kailas-cloud/recall/internal/domain/collection"
	"github.com/kailas-cloud/recall/internal/domain/document"
	"github.com/kailas-cloud/recall/internal/domain/task"
)

type mockColls struct {
	col domcol.Collection
	err error
}

func (m *mockColls) Get(_ context.Context, _ string) (domcol.Collection, error) {
	return m.col, m.err
}

type mockEmbedder struct {
	vec []float32
	err error
	got []domain.Content
}

func (m *mockEmbedder) Embed(_ context.Context, c domain.Content) (domain.EmbeddingResult, error) {
	m.got = append(m.got, c)
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: 1}, nil
}

func (m *mockEmbedder) Dimensions() int   { return len(m.vec) }
func (m *mockEmbedder) ModelName() string { return "mock" }

type mockFactory struct {
	emb   domain.Embedder
	err   error
	model string
}

func (m *mockFactory) Create(model string) (domain.Embedder, error) {
	m.model = model
	return m.emb, m.err
}

type mockResolver struct {
	fn func(ctx context.Context, doc document.Document) (domain.Content, error)
}

func (m *mockResolver) Resolve(ctx context.Context, doc document.Document) (domain.Content, error) {
	if m.fn != nil {
		return m.fn(ctx, doc)
	}
	if doc.ContentRaw() == "" {
		return domain.Content{}, domain.ErrNoContent
	}
	return domain.TextContent(doc.ContentRaw()), nil
}

type mockWriter struct {
	mu      sync.Mutex
	err     error
	upserts []string
	vectors [][]float32
}

func (m *mockWriter) Upsert(_ context.Context, collection string, doc document.Document, vector []float32) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.upserts = append(m.upserts, collection+"/"+doc.ID())
	m.vectors = append(m.vectors, vector)
	return document.PointID(collection, doc.ID()).String(), nil
}

// mockQueue serves a fixed job list, then reports no delivery.
type mockQueue struct {
	mu        sync.Mutex
	pending   []task.Job
	requeued  int
	claimErr  error
	completed map[string]task.Outcome
	failed    map[string]error
	acked     []string
	drained   chan struct{}
	total     int
}

func newMockQueue(jobs ...task.Job) *mockQueue {
	return &mockQueue{
		pending:   jobs,
		completed: map[string]task.Outcome{},
		failed:    map[string]error{},
		drained:   make(chan struct{}),
		total:     len(jobs),
	}
}

func (m *mockQueue) Requeue(_ context.Context) (int, error) {
	return m.requeued, nil
}

func (m *mockQueue) Claim(ctx context.Context, wait time.Duration) (task.Job, task.Delivery, error) {
	m.mu.Lock()
	if m.claimErr != nil {
		err := m.claimErr
		m.claimErr = nil
		m.mu.Unlock()
		return task.Job{}, task.Delivery{}, err
	}
	if len(m.pending) == 0 {
		m.mu.Unlock()
		select {
		case <-ctx.Done():
		case <-time.After(wait):
		}
		return task.Job{}, task.Delivery{}, task.ErrNoDelivery
	}
	j := m.pending[0]
	m.pending = m.pending[1:]
	m.mu.Unlock()

	j.State = task.StateInProgress
	j.Attempts++
	d := task.NewDelivery(j.ID, func(context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.acked = append(m.acked, j.ID)
		return nil
	})
	return j, d, nil
}

func (m *mockQueue) Complete(ctx context.Context, j task.Job, o task.Outcome, d task.Delivery) error {
	m.mu.Lock()
	m.completed[j.ID] = o
	m.mu.Unlock()
	m.finish()
	return d.Ack(ctx)
}

func (m *mockQueue) Fail(ctx context.Context, j task.Job, cause error, d task.Delivery) error {
	m.mu.Lock()
	m.failed[j.ID] = cause
	m.mu.Unlock()
	m.finish()
	return d.Ack(ctx)
}

func (m *mockQueue) finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.completed)+len(m.failed) == m.total {
		close(m.drained)
	}
}

func testCollection(modality domain.Modality, model string) domcol.Collection {
	return domcol.Reconstruct("products",
		domcol.EmbeddingConfig{Model: model, Modality: modality},
		nil, 3, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
}

func job(docID, raw string) task.Job {
	return task.Job{
		ID:         task.JobID("batch-1", docID),
		Collection: "products",
		DocID:      docID,
		ContentRaw: raw,
		State:      task.StateQueued,
	}
}
