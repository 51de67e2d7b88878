package document

import (
	"context"
	"testing"

	"github.com/kailas-cloud/recall/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	upsertFn func(ctx context.Context, collection string, points []db.Point) (int, error)
	scrollFn func(ctx context.Context, q *db.ScrollQuery) (*db.ScrollPage, error)
	countFn  func(ctx context.Context, collection string) (int, error)
}

func (m *mockStore) Upsert(ctx context.Context, collection string, points []db.Point) (int, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, collection, points)
	}
	return len(points), nil
}

func (m *mockStore) Scroll(ctx context.Context, q *db.ScrollQuery) (*db.ScrollPage, error) {
	if m.scrollFn != nil {
		return m.scrollFn(ctx, q)
	}
	return &db.ScrollPage{}, nil
}

func (m *mockStore) Count(ctx context.Context, collection string) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, collection)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}
