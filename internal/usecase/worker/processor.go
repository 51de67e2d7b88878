// Package worker executes embed_document jobs: resolve content, embed, upsert.
package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/recall/internal/domain"
	"github.com/kailas-cloud/recall/internal/domain/document"
	"github.com/kailas-cloud/recall/internal/domain/task"
)

// noContentMessage is the stored error of a job without content.
const noContentMessage = "No content provided"

// Processor embeds one document and stores its point.
type Processor struct {
	colls    CollectionReader
	factory  EmbedderFactory
	resolver ContentResolver
	docs     DocumentWriter
}

// NewProcessor creates a job processor.
func NewProcessor(colls CollectionReader, factory EmbedderFactory, resolver ContentResolver, docs DocumentWriter) *Processor {
	return &Processor{colls: colls, factory: factory, resolver: resolver, docs: docs}
}

// Process runs an embed_document job. A document without content yields a failure
// outcome and no error; any other failure is returned for the caller to record.
// The point id is derived from (collection, doc id), so retries overwrite.
func (p *Processor) Process(ctx context.Context, j task.Job) (task.Outcome, error) {
	doc := document.Reconstruct(j.DocID, j.ContentURI, j.ContentRaw, j.Payload)

	col, err := p.colls.Get(ctx, j.Collection)
	if err != nil {
		return task.Outcome{}, fmt.Errorf("get collection: %w", err)
	}

	content, err := p.resolver.Resolve(ctx, doc)
	if errors.Is(err, domain.ErrNoContent) {
		return task.NewFailure(j.DocID, noContentMessage), nil
	}
	if err != nil {
		return task.Outcome{}, fmt.Errorf("resolve content: %w", err)
	}

	model := col.Embedding().Model
	emb, err := p.factory.Create(model)
	if err != nil {
		return task.Outcome{}, fmt.Errorf("create embedder: %w", err)
	}

	res, err := emb.Embed(ctx, content)
	if err != nil {
		if !errors.Is(err, domain.ErrEmbedding) {
			err = domain.NewEmbeddingError(model, err)
		}
		return task.Outcome{}, err
	}

	if _, err := p.docs.Upsert(ctx, col.Name(), doc, res.Embedding); err != nil {
		return task.Outcome{}, fmt.Errorf("upsert point: %w", err)
	}

	return task.NewSuccess(j.DocID, col.Name(), len(res.Embedding)), nil
}
