package collection

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/recall/internal/domain"
	domcol "github.com/kailas-cloud/recall/internal/domain/collection"
	"github.com/kailas-cloud/recall/internal/domain/collection/field"
	"github.com/kailas-cloud/recall/internal/usecase/embedding"
)

// Service handles collection CRUD operations.
type Service struct {
	repo   Repository
	models ModelResolver
}

// New creates a collection service.
func New(repo Repository, models ModelResolver) *Service {
	return &Service{repo: repo, models: models}
}

// SupportedModels lists model names by modality.
type SupportedModels struct {
	Text  []string
	Image []string
}

// Create resolves the embedding model, validates and stores a new collection.
// The vector collection is sized to the model's dimensions.
func (s *Service) Create(
	ctx context.Context, name, model string, modality domain.Modality, fields []field.Field,
) (domcol.Collection, error) {
	m, err := s.models.Resolve(model, modality)
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("resolve model: %w", err)
	}

	col, err := domcol.New(name, domcol.EmbeddingConfig{Model: m.Name, Modality: m.Modality}, fields, m.Dimensions)
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("validate collection: %w: %w", domain.ErrInvalidRequest, err)
	}

	if err := s.repo.Create(ctx, col); err != nil {
		return domcol.Collection{}, fmt.Errorf("create collection: %w", err)
	}

	return col, nil
}

// Get retrieves a collection by name.
func (s *Service) Get(ctx context.Context, name string) (domcol.Collection, error) {
	col, err := s.repo.Get(ctx, name)
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("get collection: %w", err)
	}
	return col, nil
}

// List returns all collections sorted by name.
func (s *Service) List(ctx context.Context) ([]domcol.Collection, error) {
	cols, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return cols, nil
}

// Delete removes a collection, its vectors and its registry entry.
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := s.repo.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}

// Models returns the supported embedding models.
func (s *Service) Models() SupportedModels {
	return SupportedModels{
		Text:  embedding.Supported(domain.ModalityText),
		Image: embedding.Supported(domain.ModalityImage),
	}
}
