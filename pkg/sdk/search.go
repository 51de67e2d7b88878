package recall

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SearchService runs semantic queries against one collection.
type SearchService struct {
	c          *Client
	collection string
}

// Query embeds q.Query with the collection's model and returns the nearest points.
func (s *SearchService) Query(ctx context.Context, q SearchQuery) (_ SearchResults, err error) {
	start := time.Now()
	defer func() { s.c.obs.observe("search.query", start, err) }()

	req := searchRequest{
		Query:       q.Query,
		WithPayload: q.WithPayload,
	}
	if q.Limit > 0 {
		req.Limit = &q.Limit
	}
	if q.WithVectors {
		v := true
		req.WithVectors = &v
	}
	if q.Filter != nil {
		raw, mErr := json.Marshal(q.Filter)
		if mErr != nil {
			return SearchResults{}, fmt.Errorf("search: encode filter: %w", mErr)
		}
		req.Filter = raw
	}

	var res SearchResults
	target := s.c.endpoint(nil, "collections", s.collection, "search")
	if err = s.c.do(ctx, http.MethodPost, target, req, &res); err != nil {
		return SearchResults{}, fmt.Errorf("search: %w", err)
	}
	return res, nil
}

// Text is a shorthand for a payload-bearing query with a result limit.
func (s *SearchService) Text(ctx context.Context, query string, limit int) (SearchResults, error) {
	return s.Query(ctx, SearchQuery{Query: query, Limit: limit})
}
