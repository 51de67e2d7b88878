package recall

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// CollectionService manages collections.
type CollectionService struct {
	c *Client
}

// CollectionOption configures collection creation.
type CollectionOption func(*createCollectionRequest)

type createCollectionRequest struct {
	Name            string               `json:"name"`
	EmbeddingConfig EmbeddingConfig      `json:"embedding_config"`
	IndexSchema     map[string]FieldType `json:"index_schema"`
}

// WithModality pins the modality instead of letting the server derive it from the model.
func WithModality(m Modality) CollectionOption {
	return func(r *createCollectionRequest) {
		r.EmbeddingConfig.Modality = m
	}
}

// WithField adds an indexed payload field.
func WithField(name string, t FieldType) CollectionOption {
	return func(r *createCollectionRequest) {
		r.IndexSchema[name] = t
	}
}

// Create creates a collection vectorized by model.
// Returns the server's confirmation message.
func (s *CollectionService) Create(
	ctx context.Context, name, model string, opts ...CollectionOption,
) (_ string, err error) {
	start := time.Now()
	defer func() { s.c.obs.observe("collection.create", start, err) }()

	req := createCollectionRequest{
		Name:            name,
		EmbeddingConfig: EmbeddingConfig{Model: model},
		IndexSchema:     map[string]FieldType{},
	}
	for _, o := range opts {
		o(&req)
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err = s.c.do(ctx, http.MethodPost, s.c.endpoint(nil, "collections"), req, &resp); err != nil {
		return "", fmt.Errorf("create collection: %w", err)
	}
	return resp.Message, nil
}

// Ensure creates a collection if it does not exist.
// If it already exists, returns its info.
func (s *CollectionService) Ensure(
	ctx context.Context, name, model string, opts ...CollectionOption,
) (_ CollectionInfo, err error) {
	start := time.Now()
	defer func() { s.c.obs.observe("collection.ensure", start, err) }()

	if _, err = s.Create(ctx, name, model, opts...); err != nil && !errors.Is(err, ErrCollectionExists) {
		return CollectionInfo{}, fmt.Errorf("ensure collection: %w", err)
	}

	info, err := s.Get(ctx, name)
	if err != nil {
		return CollectionInfo{}, fmt.Errorf("ensure collection: %w", err)
	}
	return info, nil
}

// Get retrieves collection metadata by name.
func (s *CollectionService) Get(ctx context.Context, name string) (_ CollectionInfo, err error) {
	start := time.Now()
	defer func() { s.c.obs.observe("collection.get", start, err) }()

	var info CollectionInfo
	if err = s.c.do(ctx, http.MethodGet, s.c.endpoint(nil, "collections", name), nil, &info); err != nil {
		return CollectionInfo{}, fmt.Errorf("get collection: %w", err)
	}
	return info, nil
}

// List returns all collection names.
func (s *CollectionService) List(ctx context.Context) (_ []string, err error) {
	start := time.Now()
	defer func() { s.c.obs.observe("collection.list", start, err) }()

	var names []string
	if err = s.c.do(ctx, http.MethodGet, s.c.endpoint(nil, "collections"), nil, &names); err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return names, nil
}

// Delete removes a collection and all of its points.
func (s *CollectionService) Delete(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { s.c.obs.observe("collection.delete", start, err) }()

	if err = s.c.do(ctx, http.MethodDelete, s.c.endpoint(nil, "collections", name), nil, nil); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}

// SupportedModels lists the embedding models the server accepts.
func (s *CollectionService) SupportedModels(ctx context.Context) (_ []string, err error) {
	start := time.Now()
	defer func() { s.c.obs.observe("collection.models", start, err) }()

	var models []string
	target := s.c.endpoint(nil, "collections", "models", "supported")
	if err = s.c.do(ctx, http.MethodGet, target, nil, &models); err != nil {
		return nil, fmt.Errorf("supported models: %w", err)
	}
	return models, nil
}
