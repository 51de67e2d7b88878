package qdrant

import (
	"context"
	"errors"

	"github.com/qdrant/go-client/qdrant"
)

var errBackend = errors.New("backend unavailable")

// fakeAPI records requests and returns canned responses.
type fakeAPI struct {
	exists    map[string]bool
	err       error
	indexErr  error
	created   []*qdrant.CreateCollection
	indexes   []*qdrant.CreateFieldIndexCollection
	deleted   []string
	upserts   []*qdrant.UpsertPoints
	queries   []*qdrant.QueryPoints
	scrolls   []*qdrant.ScrollPoints
	queryResp []*qdrant.ScoredPoint
	scrollRes []*qdrant.RetrievedPoint
	count     uint64
	closed    bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{exists: map[string]bool{}}
}

func (f *fakeAPI) HealthCheck(context.Context) (*qdrant.HealthCheckReply, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &qdrant.HealthCheckReply{Title: "qdrant"}, nil
}

func (f *fakeAPI) CollectionExists(_ context.Context, name string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.exists[name], nil
}

func (f *fakeAPI) CreateCollection(_ context.Context, req *qdrant.CreateCollection) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, req)
	f.exists[req.GetCollectionName()] = true
	return nil
}

func (f *fakeAPI) CreateFieldIndex(
	_ context.Context, req *qdrant.CreateFieldIndexCollection,
) (*qdrant.UpdateResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.indexErr != nil {
		return nil, f.indexErr
	}
	f.indexes = append(f.indexes, req)
	return &qdrant.UpdateResult{}, nil
}

func (f *fakeAPI) DeleteCollection(_ context.Context, name string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, name)
	delete(f.exists, name)
	return nil
}

func (f *fakeAPI) Upsert(_ context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.upserts = append(f.upserts, req)
	return &qdrant.UpdateResult{}, nil
}

func (f *fakeAPI) Query(_ context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.queries = append(f.queries, req)
	return f.queryResp, nil
}

func (f *fakeAPI) Scroll(_ context.Context, req *qdrant.ScrollPoints) ([]*qdrant.RetrievedPoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.scrolls = append(f.scrolls, req)
	return f.scrollRes, nil
}

func (f *fakeAPI) Count(context.Context, *qdrant.CountPoints) (uint64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.count, nil
}

func (f *fakeAPI) Close() error {
	f.closed = true
	return nil
}
