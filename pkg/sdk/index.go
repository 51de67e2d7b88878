package recall

import (
	"context"
	"fmt"
)

// TypedIndex is a generic, schema-first handle on a collection.
// Schema is inferred from T's struct tags at construction time.
type TypedIndex[T any] struct {
	name   string
	model  string
	client *Client
	meta   *schemaMeta
}

// NewIndex creates a typed index handle for the given collection name.
// T must be a struct with recall tags. Schema is parsed once and cached.
func NewIndex[T any](client *Client, name, model string) (*TypedIndex[T], error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, fmt.Errorf("new index %q: %w", name, err)
	}
	return &TypedIndex[T]{name: name, model: model, client: client, meta: meta}, nil
}

// Ensure creates the collection if it does not exist (idempotent).
func (idx *TypedIndex[T]) Ensure(ctx context.Context) error {
	_, err := idx.client.Collections().Ensure(ctx, idx.name, idx.model, idx.meta.collectionOptions()...)
	if err != nil {
		return fmt.Errorf("ensure %q: %w", idx.name, err)
	}
	return nil
}

// Ingest queues items for embedding and returns the tracking task.
func (idx *TypedIndex[T]) Ingest(ctx context.Context, items []T) (IngestResult, error) {
	docs := make([]Document, len(items))
	for i, item := range items {
		docs[i] = idx.meta.toDocument(item)
	}
	return idx.client.Documents(idx.name).Ingest(ctx, docs)
}

// IngestAndWait queues items and blocks until every job has finished.
func (idx *TypedIndex[T]) IngestAndWait(ctx context.Context, items []T) (TaskStatus, error) {
	res, err := idx.Ingest(ctx, items)
	if err != nil {
		return TaskStatus{}, err
	}
	return idx.client.Tasks().Wait(ctx, res.TaskID)
}

// Each walks every stored item until fn returns false.
func (idx *TypedIndex[T]) Each(ctx context.Context, fn func(T) bool) error {
	return idx.client.Documents(idx.name).All(ctx, 0, func(d StoredDocument) bool {
		item, ok := idx.meta.fromPayload(d.ID, d.Payload).(T)
		if !ok {
			return true
		}
		return fn(item)
	})
}

// Search returns a fluent search builder for this index.
func (idx *TypedIndex[T]) Search(query string) *SearchBuilder[T] {
	return &SearchBuilder[T]{idx: idx, query: query}
}
