package qdrant

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"github.com/kailas-cloud/recall/internal/db"
)

// Upsert writes points, overwriting any point with the same id. Returns the number written.
func (s *Store) Upsert(ctx context.Context, collection string, points []db.Point) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}

	structs := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		payload, err := toPayload(p.Payload)
		if err != nil {
			return 0, fmt.Errorf("point %s payload: %w", p.ID, err)
		}
		structs = append(structs, &qdrant.PointStruct{
			Id:      qdrant.NewID(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: payload,
		})
	}

	wait := true
	_, err := s.api.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         structs,
		Wait:           &wait,
	})
	if err != nil {
		return 0, wrap(db.OpUpsert, err)
	}
	return len(structs), nil
}

// Search runs a nearest-neighbor query. Results keep the backend ranking order.
func (s *Store) Search(ctx context.Context, q *db.SearchQuery) ([]db.ScoredPoint, error) {
	if q.Limit <= 0 {
		return nil, errors.New("limit must be positive")
	}
	native, err := Transpile(q.Filter)
	if err != nil {
		return nil, err
	}

	limit := uint64(q.Limit)
	resp, err := s.api.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.Collection,
		Query:          qdrant.NewQuery(q.Vector...),
		Filter:         native,
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(q.WithPayload),
		WithVectors:    qdrant.NewWithVectors(q.WithVectors),
	})
	if err != nil {
		return nil, wrap(db.OpSearch, err)
	}

	out := make([]db.ScoredPoint, 0, len(resp))
	for _, r := range resp {
		id, err := pointID(r.GetId())
		if err != nil {
			return nil, wrap(db.OpSearch, err)
		}
		sp := db.ScoredPoint{ID: id, Score: float64(r.GetScore())}
		if q.WithPayload {
			sp.Payload = fromPayload(r.GetPayload())
		}
		if q.WithVectors {
			sp.Vector = r.GetVectors().GetVector().GetData()
		}
		out = append(out, sp)
	}
	return out, nil
}

// Scroll pages through stored points by id cursor. It requests one extra point
// to learn the next cursor.
func (s *Store) Scroll(ctx context.Context, q *db.ScrollQuery) (*db.ScrollPage, error) {
	if q.Limit <= 0 {
		return nil, errors.New("limit must be positive")
	}

	limit := uint32(q.Limit + 1)
	req := &qdrant.ScrollPoints{
		CollectionName: q.Collection,
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(q.WithPayload),
		WithVectors:    qdrant.NewWithVectors(q.WithVectors),
	}
	if q.Offset != "" {
		req.Offset = parseID(q.Offset)
	}

	resp, err := s.api.Scroll(ctx, req)
	if err != nil {
		return nil, wrap(db.OpScroll, err)
	}

	page := &db.ScrollPage{Points: make([]db.Point, 0, min(len(resp), q.Limit))}
	for i, r := range resp {
		id, err := pointID(r.GetId())
		if err != nil {
			return nil, wrap(db.OpScroll, err)
		}
		if i == q.Limit {
			page.NextOffset = id
			break
		}
		page.Points = append(page.Points, db.Point{
			ID:      id,
			Payload: fromPayload(r.GetPayload()),
			Vector:  r.GetVectors().GetVector().GetData(),
		})
	}
	return page, nil
}

// Count returns the exact number of points in a collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	exact := true
	n, err := s.api.Count(ctx, &qdrant.CountPoints{
		CollectionName: collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, wrap(db.OpCount, err)
	}
	return int(n), nil
}

func pointID(id *qdrant.PointId) (string, error) {
	if id == nil {
		return "", errors.New("nil point id")
	}
	switch v := id.GetPointIdOptions().(type) {
	case *qdrant.PointId_Uuid:
		return v.Uuid, nil
	case *qdrant.PointId_Num:
		return strconv.FormatUint(v.Num, 10), nil
	default:
		return "", fmt.Errorf("unexpected point id type %T", v)
	}
}

// parseID turns a cursor back into a point id; numeric strings become numeric ids.
func parseID(s string) *qdrant.PointId {
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return qdrant.NewIDNum(n)
	}
	return qdrant.NewID(s)
}
