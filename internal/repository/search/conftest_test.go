package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/recall/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn func(ctx context.Context, q *db.SearchQuery) ([]db.ScoredPoint, error)
}

func (m *mockStore) Search(ctx context.Context, q *db.SearchQuery) ([]db.ScoredPoint, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}
