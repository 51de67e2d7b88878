package recall

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DocumentService ingests and lists documents of one collection.
type DocumentService struct {
	c          *Client
	collection string
}

// Ingest submits a batch for asynchronous embedding.
// Payloads are validated synchronously; the returned task id tracks the rest.
func (s *DocumentService) Ingest(ctx context.Context, docs []Document) (_ IngestResult, err error) {
	start := time.Now()
	defer func() { s.c.obs.observe("documents.ingest", start, err) }()

	body := struct {
		Documents []Document `json:"documents"`
	}{Documents: docs}

	var res IngestResult
	target := s.c.endpoint(nil, "collections", s.collection, "documents")
	if err = s.c.do(ctx, http.MethodPost, target, body, &res); err != nil {
		return IngestResult{}, fmt.Errorf("ingest documents: %w", err)
	}
	return res, nil
}

// List returns one page of stored points. Pass an empty offset for the
// first page and DocumentPage.NextOffset for the following ones.
// A limit of 0 uses the server default.
func (s *DocumentService) List(
	ctx context.Context, offset string, limit int,
) (_ DocumentPage, err error) {
	start := time.Now()
	defer func() { s.c.obs.observe("documents.list", start, err) }()

	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset != "" {
		q.Set("offset", offset)
	}

	var page DocumentPage
	target := s.c.endpoint(q, "collections", s.collection, "documents")
	if err = s.c.do(ctx, http.MethodGet, target, nil, &page); err != nil {
		return DocumentPage{}, fmt.Errorf("list documents: %w", err)
	}
	return page, nil
}

// All walks every page and calls fn for each document until fn returns false.
func (s *DocumentService) All(
	ctx context.Context, pageSize int, fn func(StoredDocument) bool,
) error {
	offset := ""
	for {
		page, err := s.List(ctx, offset, pageSize)
		if err != nil {
			return err
		}
		for _, d := range page.Documents {
			if !fn(d) {
				return nil
			}
		}
		if !page.HasMore() {
			return nil
		}
		offset = *page.NextOffset
	}
}
