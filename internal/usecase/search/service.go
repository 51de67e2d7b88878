package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kailas-cloud/recall/internal/domain"
	"github.com/kailas-cloud/recall/internal/domain/search/request"
	"github.com/kailas-cloud/recall/internal/domain/search/result"
)

var tracer = otel.Tracer("github.com/kailas-cloud/recall/internal/usecase/search")

var remoteSchemes = []string{"http://", "https://", "s3://"}

// Service embeds queries and runs vector search against a collection.
type Service struct {
	repo    Repository
	colls   CollectionReader
	factory EmbedderFactory
	fetcher ContentFetcher
}

// New creates a search service. fetcher may be nil; image collections then
// embed URI queries as plain text.
func New(repo Repository, colls CollectionReader, factory EmbedderFactory, fetcher ContentFetcher) *Service {
	return &Service{repo: repo, colls: colls, factory: factory, fetcher: fetcher}
}

// Search looks up the collection, embeds the query with the collection's model and
// returns hits in the vector database's ranking order. No re-ranking is done.
func (s *Service) Search(ctx context.Context, collectionName string, req request.Request) (result.Page, error) {
	ctx, span := tracer.Start(ctx, "search")
	defer span.End()
	span.SetAttributes(
		attribute.String("collection", collectionName),
		attribute.Int("limit", req.Limit()),
		attribute.Bool("filtered", req.Filter() != nil),
	)

	page, err := s.search(ctx, collectionName, req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return result.Page{}, err
	}
	span.SetAttributes(attribute.Int("results", page.Count()))
	return page, nil
}

func (s *Service) search(ctx context.Context, collectionName string, req request.Request) (result.Page, error) {
	col, err := s.colls.Get(ctx, collectionName)
	if err != nil {
		return result.Page{}, fmt.Errorf("get collection: %w", err)
	}

	model := col.Embedding().Model
	emb, err := s.factory.Create(model)
	if err != nil {
		return result.Page{}, fmt.Errorf("create embedder: %w", err)
	}

	content, err := s.queryContent(ctx, col.Embedding().Modality, req.Query())
	if err != nil {
		return result.Page{}, domain.NewEmbeddingError(model, err)
	}

	vec, err := emb.Embed(ctx, content)
	if err != nil {
		if !errors.Is(err, domain.ErrEmbedding) {
			err = domain.NewEmbeddingError(model, err)
		}
		return result.Page{}, fmt.Errorf("vectorize query: %w", err)
	}

	results, err := s.repo.Search(ctx, collectionName, vec.Embedding, req)
	if err != nil {
		return result.Page{}, fmt.Errorf("search: %w", err)
	}

	return result.Page{Query: req.Query(), Results: results}, nil
}

// queryContent downloads URI queries for image collections; everything else is text.
func (s *Service) queryContent(ctx context.Context, modality domain.Modality, query string) (domain.Content, error) {
	if modality != domain.ModalityImage || s.fetcher == nil || !isRemote(query) {
		return domain.TextContent(query), nil
	}
	data, err := s.fetcher.Fetch(ctx, query)
	if err != nil {
		return domain.Content{}, err
	}
	return domain.BytesContent(data), nil
}

func isRemote(s string) bool {
	lower := strings.ToLower(s)
	for _, scheme := range remoteSchemes {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}
