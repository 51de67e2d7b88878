package collection

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/recall/internal/db"
	"github.com/kailas-cloud/recall/internal/domain"
	domcol "github.com/kailas-cloud/recall/internal/domain/collection"
	"github.com/kailas-cloud/recall/internal/domain/collection/field"
)

// mockStore implements the consumer interfaces for tests.
type mockStore struct {
	hsetFn         func(ctx context.Context, key string, fields map[string]string) error
	hgetAllFn      func(ctx context.Context, key string) (map[string]string, error)
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	delFn          func(ctx context.Context, key string) error
	existsFn       func(ctx context.Context, key string) (bool, error)
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
	setNXFn        func(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return nil, nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if m.setNXFn != nil {
		return m.setNXFn(ctx, key, value, ttl)
	}
	return true, nil
}

// memStore is a map-backed store for interleaving tests.
type memStore struct {
	mockStore
	keys map[string]map[string]string
}

func newMemStore() *memStore {
	m := &memStore{keys: map[string]map[string]string{}}
	m.hsetFn = func(_ context.Context, key string, fields map[string]string) error {
		m.keys[key] = fields
		return nil
	}
	m.hgetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		return m.keys[key], nil
	}
	m.delFn = func(_ context.Context, key string) error {
		delete(m.keys, key)
		return nil
	}
	m.existsFn = func(_ context.Context, key string) (bool, error) {
		_, ok := m.keys[key]
		return ok, nil
	}
	m.setNXFn = func(_ context.Context, key string, value []byte, _ time.Duration) (bool, error) {
		if _, ok := m.keys[key]; ok {
			return false, nil
		}
		m.keys[key] = map[string]string{"": string(value)}
		return true, nil
	}
	return m
}

type mockVectors struct {
	createFn func(ctx context.Context, def *db.CollectionDefinition) error
	deleteFn func(ctx context.Context, name string) (bool, error)
}

func (m *mockVectors) CreateCollection(ctx context.Context, def *db.CollectionDefinition) error {
	if m.createFn != nil {
		return m.createFn(ctx, def)
	}
	return nil
}

func (m *mockVectors) DeleteCollection(ctx context.Context, name string) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, name)
	}
	return true, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore, *mockVectors) {
	t.Helper()
	ms := &mockStore{}
	mv := &mockVectors{}
	return New(ms, mv), ms, mv
}

func testCollection(t *testing.T) domcol.Collection {
	t.Helper()
	return domcol.Reconstruct(
		"test-collection",
		domcol.EmbeddingConfig{Model: "all-MiniLM-L6-v2", Modality: domain.ModalityText},
		[]field.Field{
			field.Reconstruct("category", field.Keyword),
			field.Reconstruct("price", field.Float),
		},
		384,
		time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	)
}

func testHash(name, createdAt string) map[string]string {
	return map[string]string{
		"name":        name,
		"model":       "clip-ViT-B-32",
		"modality":    "image",
		"fields_json": `[{"name":"category","type":"keyword"}]`,
		"vector_dim":  "512",
		"created_at":  createdAt,
	}
}
