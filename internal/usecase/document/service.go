// Package document browses the points stored in a collection.
package document

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/recall/internal/domain"
	domdoc "github.com/kailas-cloud/recall/internal/domain/document"
)

// Browse limits.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page is one page of stored documents. Offset and NextOffset are point-id cursors.
type Page struct {
	Documents  []domdoc.Stored
	Total      int
	Limit      int
	Offset     string
	NextOffset string
}

// Service lists stored documents.
type Service struct {
	repo  Repository
	colls CollectionReader
}

// New creates a document service.
func New(repo Repository, colls CollectionReader) *Service {
	return &Service{repo: repo, colls: colls}
}

// Browse returns up to limit documents starting at the cursor, plus the collection total.
// A zero limit selects DefaultLimit.
func (s *Service) Browse(ctx context.Context, collection, cursor string, limit int) (Page, error) {
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 1 || limit > MaxLimit {
		return Page{}, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalidRequest, MaxLimit)
	}

	if _, err := s.colls.Get(ctx, collection); err != nil {
		return Page{}, fmt.Errorf("get collection: %w", err)
	}

	docs, next, err := s.repo.List(ctx, collection, cursor, limit)
	if err != nil {
		return Page{}, fmt.Errorf("list documents: %w", err)
	}
	total, err := s.repo.Count(ctx, collection)
	if err != nil {
		return Page{}, fmt.Errorf("count documents: %w", err)
	}

	return Page{
		Documents:  docs,
		Total:      total,
		Limit:      limit,
		Offset:     cursor,
		NextOffset: next,
	}, nil
}
