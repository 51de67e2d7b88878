package embedding

import (
	"fmt"
	"sync"

	"github.com/kailas-cloud/recall/internal/domain"
)

// Builder constructs the embedder chain for one model.
type Builder func(m Model) domain.Embedder

// Factory hands out one embedder per model name. Instances are built on first
// use and shared afterwards; it is created once at startup and passed explicitly.
type Factory struct {
	build    Builder
	defaults map[domain.Modality]string

	mu        sync.Mutex
	instances map[string]domain.Embedder
}

// NewFactory creates a factory with the default text and image models.
func NewFactory(build Builder) *Factory {
	return &Factory{
		build: build,
		defaults: map[domain.Modality]string{
			domain.ModalityText:  DefaultTextModel,
			domain.ModalityImage: DefaultImageModel,
		},
		instances: make(map[string]domain.Embedder),
	}
}

// WithDefault overrides the default model of a modality. The model must be in the
// table and match the modality.
func (f *Factory) WithDefault(modality domain.Modality, model string) (*Factory, error) {
	if model == "" {
		return f, nil
	}
	m, err := Lookup(model)
	if err != nil {
		return nil, err
	}
	if m.Modality != modality {
		return nil, fmt.Errorf("default %s model %q is a %s model", modality, model, m.Modality)
	}
	f.defaults[modality] = model
	return f, nil
}

// Create returns the embedder for a model name.
func (f *Factory) Create(model string) (domain.Embedder, error) {
	m, err := Lookup(model)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if e, ok := f.instances[model]; ok {
		return e, nil
	}
	e := f.build(m)
	f.instances[model] = e
	return e, nil
}

// CreateForModality returns the embedder of the modality's default model.
func (f *Factory) CreateForModality(modality domain.Modality) (domain.Embedder, error) {
	model, ok := f.defaults[modality]
	if !ok {
		return nil, fmt.Errorf("%w: no default model for modality %q", domain.ErrUnsupportedModel, modality)
	}
	return f.Create(model)
}

// DefaultModel returns the default model name of a modality.
func (f *Factory) DefaultModel(modality domain.Modality) string {
	return f.defaults[modality]
}

// Resolve picks the model for a new collection. An empty model selects the default
// of the modality (text if both are empty); an empty modality is derived from the
// model. A modality that contradicts the model fails with ErrUnsupportedModel.
func (f *Factory) Resolve(model string, modality domain.Modality) (Model, error) {
	if model == "" {
		if modality == "" {
			modality = domain.ModalityText
		}
		name, ok := f.defaults[modality]
		if !ok {
			return Model{}, fmt.Errorf("%w: unknown modality %q", domain.ErrUnsupportedModel, modality)
		}
		model = name
	}

	m, err := Lookup(model)
	if err != nil {
		return Model{}, err
	}
	if modality != "" && modality != m.Modality {
		return Model{}, fmt.Errorf("%w: model %q does not support modality %q",
			domain.ErrUnsupportedModel, model, modality)
	}
	return m, nil
}
