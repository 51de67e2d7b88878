package qdrant

import (
	"context"
	"errors"
	"testing"

	"github.com/qdrant/go-client/qdrant"

	"github.com/kailas-cloud/recall/internal/db"
	"github.com/kailas-cloud/recall/internal/domain"
	"github.com/kailas-cloud/recall/internal/domain/search/filter"
)

const pointUUID = "0b1e2a4c-6d8f-5a1b-9c3d-5e7f9a1b3c5d"

func TestCreateCollection(t *testing.T) {
	api := newFakeAPI()
	s := NewStoreForTest(api)

	def := &db.CollectionDefinition{
		Name:       "shoes",
		VectorSize: 384,
		Distance:   db.DistanceCosine,
		Indexes: []db.PayloadIndex{
			{Field: "category", Type: db.PayloadIndexKeyword},
			{Field: "price", Type: db.PayloadIndexFloat},
		},
	}
	if err := s.CreateCollection(context.Background(), def); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(api.created) != 1 {
		t.Fatalf("created = %d", len(api.created))
	}
	params := api.created[0].GetVectorsConfig().GetParams()
	if params.GetSize() != 384 || params.GetDistance() != qdrant.Distance_Cosine {
		t.Errorf("vector params = %v", params)
	}
	if len(api.indexes) != 2 {
		t.Fatalf("indexes = %d", len(api.indexes))
	}
	if api.indexes[1].GetFieldType() != qdrant.FieldType_FieldTypeFloat {
		t.Errorf("price index type = %v", api.indexes[1].GetFieldType())
	}

	if err := s.CreateCollection(context.Background(), def); !errors.Is(err, db.ErrCollectionExists) {
		t.Errorf("expected ErrCollectionExists, got %v", err)
	}
}

func TestCreateCollection_InvalidDefinition(t *testing.T) {
	s := NewStoreForTest(newFakeAPI())
	err := s.CreateCollection(context.Background(), &db.CollectionDefinition{Name: "bad name", VectorSize: 3})
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestCreateCollection_IndexFailureDropsCollection(t *testing.T) {
	api := newFakeAPI()
	api.indexErr = errors.New("index boom")
	s := NewStoreForTest(api)

	def := &db.CollectionDefinition{
		Name:       "shoes",
		VectorSize: 384,
		Indexes:    []db.PayloadIndex{{Field: "price", Type: db.PayloadIndexFloat}},
	}
	err := s.CreateCollection(context.Background(), def)
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpCreateFieldIndex {
		t.Fatalf("expected create_field_index error, got %v", err)
	}
	if api.exists["shoes"] || len(api.deleted) != 1 {
		t.Errorf("collection left behind: exists=%v deleted=%v", api.exists["shoes"], api.deleted)
	}

	api.indexErr = nil
	if err := s.CreateCollection(context.Background(), def); err != nil {
		t.Fatalf("retry after cleanup: %v", err)
	}
}

func TestDeleteCollection(t *testing.T) {
	api := newFakeAPI()
	api.exists["shoes"] = true
	s := NewStoreForTest(api)

	ok, err := s.DeleteCollection(context.Background(), "shoes")
	if err != nil || !ok {
		t.Fatalf("DeleteCollection = %v, %v", ok, err)
	}
	ok, err = s.DeleteCollection(context.Background(), "shoes")
	if err != nil || ok {
		t.Fatalf("second DeleteCollection = %v, %v", ok, err)
	}
}

func TestUpsert(t *testing.T) {
	api := newFakeAPI()
	s := NewStoreForTest(api)

	n, err := s.Upsert(context.Background(), "shoes", []db.Point{{
		ID:      pointUUID,
		Vector:  []float32{0.1, 0.2},
		Payload: map[string]any{"_doc_id": "d1", "price": 9.5, "stock": 3, "tags": []any{"a", "b"}},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("n = %d", n)
	}

	p := api.upserts[0].GetPoints()[0]
	if p.GetId().GetUuid() != pointUUID {
		t.Errorf("id = %v", p.GetId())
	}
	if !api.upserts[0].GetWait() {
		t.Error("upsert should wait for the write")
	}
	pl := p.GetPayload()
	if pl["_doc_id"].GetStringValue() != "d1" || pl["stock"].GetIntegerValue() != 3 || pl["price"].GetDoubleValue() != 9.5 {
		t.Errorf("payload = %v", pl)
	}
	if len(pl["tags"].GetListValue().GetValues()) != 2 {
		t.Errorf("tags = %v", pl["tags"])
	}
}

func TestUpsert_UnsupportedPayload(t *testing.T) {
	s := NewStoreForTest(newFakeAPI())
	_, err := s.Upsert(context.Background(), "c", []db.Point{{ID: pointUUID, Payload: map[string]any{"ch": make(chan int)}}})
	if err == nil {
		t.Fatal("expected error for unsupported payload type")
	}
}

func TestSearch(t *testing.T) {
	api := newFakeAPI()
	api.queryResp = []*qdrant.ScoredPoint{
		{
			Id:      qdrant.NewID(pointUUID),
			Score:   0.9,
			Payload: qdrant.NewValueMap(map[string]any{"_doc_id": "d1", "category": "boots"}),
			Vectors: &qdrant.VectorsOutput{VectorsOptions: &qdrant.VectorsOutput_Vector{
				Vector: &qdrant.VectorOutput{Data: []float32{0.5, 0.5}},
			}},
		},
		{Id: qdrant.NewIDNum(7), Score: 0.4},
	}
	s := NewStoreForTest(api)

	got, err := s.Search(context.Background(), &db.SearchQuery{
		Collection:  "shoes",
		Vector:      []float32{1, 0},
		Filter:      filter.Eq{Field: "category", Value: filter.String("boots")},
		Limit:       5,
		WithPayload: true,
		WithVectors: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("results = %d", len(got))
	}
	if got[0].ID != pointUUID || got[0].Payload["_doc_id"] != "d1" || len(got[0].Vector) != 2 {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].ID != "7" {
		t.Errorf("numeric id = %q", got[1].ID)
	}

	req := api.queries[0]
	if req.GetLimit() != 5 || req.GetFilter() == nil || len(req.GetFilter().GetMust()) != 1 {
		t.Errorf("request = %v", req)
	}
}

func TestSearch_InvalidFilter(t *testing.T) {
	api := newFakeAPI()
	s := NewStoreForTest(api)

	_, err := s.Search(context.Background(), &db.SearchQuery{
		Collection: "c",
		Vector:     []float32{1},
		Filter:     filter.Lt{Field: "p", Value: filter.Bool(true)},
		Limit:      1,
	})
	if !errors.Is(err, domain.ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
	if len(api.queries) != 0 {
		t.Error("backend should not be queried with an invalid filter")
	}
}

func TestScroll_NextOffset(t *testing.T) {
	api := newFakeAPI()
	api.scrollRes = []*qdrant.RetrievedPoint{
		{Id: qdrant.NewIDNum(1)},
		{Id: qdrant.NewIDNum(2)},
		{Id: qdrant.NewIDNum(3)},
	}
	s := NewStoreForTest(api)

	page, err := s.Scroll(context.Background(), &db.ScrollQuery{Collection: "c", Offset: "1", Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Points) != 2 || page.NextOffset != "3" {
		t.Errorf("page = %+v", page)
	}
	req := api.scrolls[0]
	if req.GetLimit() != 3 {
		t.Errorf("limit = %d, want 3", req.GetLimit())
	}
	if req.GetOffset().GetNum() != 1 {
		t.Errorf("offset = %v", req.GetOffset())
	}
}

func TestCount(t *testing.T) {
	api := newFakeAPI()
	api.count = 12
	n, err := NewStoreForTest(api).Count(context.Background(), "c")
	if err != nil || n != 12 {
		t.Fatalf("Count = %d, %v", n, err)
	}
}

func TestErrorsWrapVectorDB(t *testing.T) {
	api := newFakeAPI()
	api.err = errBackend
	s := NewStoreForTest(api)
	ctx := context.Background()

	checks := map[string]error{
		"ping":   s.Ping(ctx),
		"exists": func() error { _, err := s.CollectionExists(ctx, "c"); return err }(),
		"upsert": func() error { _, err := s.Upsert(ctx, "c", []db.Point{{ID: pointUUID}}); return err }(),
		"search": func() error {
			_, err := s.Search(ctx, &db.SearchQuery{Collection: "c", Vector: []float32{1}, Limit: 1})
			return err
		}(),
		"count": func() error { _, err := s.Count(ctx, "c"); return err }(),
	}

	for name, err := range checks {
		if !errors.Is(err, domain.ErrVectorDB) {
			t.Errorf("%s: expected ErrVectorDB, got %v", name, err)
		}
		if !errors.Is(err, errBackend) {
			t.Errorf("%s: expected cause to be preserved, got %v", name, err)
		}
		var dbErr *db.Error
		if !errors.As(err, &dbErr) {
			t.Errorf("%s: expected *db.Error, got %T", name, err)
		}
	}
}

func TestFromPayload_Nested(t *testing.T) {
	in := qdrant.NewValueMap(map[string]any{
		"n":    int64(3),
		"obj":  map[string]any{"k": "v"},
		"list": []any{true, 1.5},
		"nil":  nil,
	})
	out := fromPayload(in)
	if out["n"] != int64(3) {
		t.Errorf("n = %v (%T)", out["n"], out["n"])
	}
	if obj, ok := out["obj"].(map[string]any); !ok || obj["k"] != "v" {
		t.Errorf("obj = %v", out["obj"])
	}
	if list, ok := out["list"].([]any); !ok || len(list) != 2 || list[0] != true {
		t.Errorf("list = %v", out["list"])
	}
	if out["nil"] != nil {
		t.Errorf("nil = %v", out["nil"])
	}
}
