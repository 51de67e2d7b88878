// Package ingest fans a document batch out into one queued job per document.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kailas-cloud/recall/internal/domain"
	"github.com/kailas-cloud/recall/internal/domain/document"
	"github.com/kailas-cloud/recall/internal/domain/task"
	"github.com/kailas-cloud/recall/internal/metrics"
)

// MaxDocuments is the largest batch accepted by one Ingest call.
const MaxDocuments = 100

var tracer = otel.Tracer("github.com/kailas-cloud/recall/internal/usecase/ingest")

// Service queues documents for the embedding workers.
type Service struct {
	colls     CollectionReader
	validator Validator
	queue     Queue
	newID     func() string
	now       func() time.Time
}

// New creates an ingestion service.
func New(colls CollectionReader, validator Validator, queue Queue) *Service {
	return &Service{
		colls:     colls,
		validator: validator,
		queue:     queue,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// Ingest validates every payload against the collection schema, then enqueues one
// job per document under the job id "{batch_id}:{doc_id}" and returns without
// waiting. A queue failure mid-batch is not rolled back: the returned handle
// counts the jobs that were queued before the error.
func (s *Service) Ingest(ctx context.Context, collectionName string, docs []document.Document) (task.Handle, error) {
	ctx, span := tracer.Start(ctx, "ingest", trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()
	span.SetAttributes(
		attribute.String("collection", collectionName),
		attribute.Int("documents", len(docs)),
	)

	if len(docs) == 0 || len(docs) > MaxDocuments {
		return task.Handle{}, fmt.Errorf("%w: batch must contain 1 to %d documents", domain.ErrInvalidRequest, MaxDocuments)
	}
	if err := checkUniqueIDs(docs); err != nil {
		return task.Handle{}, err
	}

	col, err := s.colls.Get(ctx, collectionName)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return task.Handle{}, fmt.Errorf("get collection: %w", err)
	}

	schema := col.Schema()
	for _, d := range docs {
		if err := s.validator.Validate(d.Payload(), schema, d.ID()); err != nil {
			return task.Handle{}, err
		}
	}

	batchID := s.newID()
	span.SetAttributes(attribute.String("task_id", batchID))

	enqueuedAt := s.now().UTC()
	jobs := make([]task.Job, len(docs))
	for i, d := range docs {
		jobs[i] = task.Job{
			ID:         task.JobID(batchID, d.ID()),
			Collection: collectionName,
			DocID:      d.ID(),
			ContentURI: d.ContentURI(),
			ContentRaw: d.ContentRaw(),
			Payload:    d.Payload(),
			State:      task.StateQueued,
			EnqueuedAt: enqueuedAt,
		}
	}

	n, err := s.queue.Enqueue(ctx, jobs)
	metrics.JobsEnqueuedTotal.Add(float64(n))
	handle := task.Handle{TaskID: batchID, DocumentsQueued: n, Status: task.StateQueued}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return handle, fmt.Errorf("enqueue jobs (%d of %d queued): %w", n, len(jobs), err)
	}

	return handle, nil
}

// checkUniqueIDs rejects batches where two documents would share one job id.
func checkUniqueIDs(docs []document.Document) error {
	seen := make(map[string]bool, len(docs))
	for _, d := range docs {
		if seen[d.ID()] {
			return fmt.Errorf("%w: duplicate document id %q", domain.ErrInvalidRequest, d.ID())
		}
		seen[d.ID()] = true
	}
	return nil
}
