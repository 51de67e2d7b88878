package collection

import (
	"fmt"
	"regexp"
	"time"

	"github.com/kailas-cloud/recall/internal/domain"
	"github.com/kailas-cloud/recall/internal/domain/collection/field"
)

// MaxNameLength is the maximum collection name length.
const MaxNameLength = 128

var nameRegex = regexp.MustCompile(`^[a-z0-9_-]+$`)

// EmbeddingConfig names the model that vectorizes the collection and its modality.
type EmbeddingConfig struct {
	Model    string
	Modality domain.Modality
}

// Collection is the collection aggregate (immutable value object).
type Collection struct {
	name      string
	embedding EmbeddingConfig
	fields    []field.Field
	vectorDim int
	createdAt time.Time
}

// ValidateName checks the collection naming rules: ^[a-z0-9_-]+$, 1-128 chars.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("collection name is required")
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("collection name too long (max %d)", MaxNameLength)
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("collection name must match ^[a-z0-9_-]+$")
	}
	return nil
}

func validateFields(fields []field.Field) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Name()] {
			return fmt.Errorf("duplicate field name: %s", f.Name())
		}
		seen[f.Name()] = true
	}
	return nil
}

// New validates and creates a Collection stamped with the current time.
func New(name string, emb EmbeddingConfig, fields []field.Field, vectorDim int) (Collection, error) {
	if err := ValidateName(name); err != nil {
		return Collection{}, err
	}
	if emb.Model == "" {
		return Collection{}, fmt.Errorf("embedding model is required")
	}
	if !emb.Modality.IsValid() {
		return Collection{}, fmt.Errorf("invalid modality: %q", emb.Modality)
	}
	if vectorDim <= 0 {
		return Collection{}, fmt.Errorf("vector dimension must be positive")
	}
	if err := validateFields(fields); err != nil {
		return Collection{}, err
	}

	return Collection{
		name:      name,
		embedding: emb,
		fields:    fields,
		vectorDim: vectorDim,
		createdAt: time.Now().UTC(),
	}, nil
}

// Reconstruct creates a Collection without validation (storage hydration).
func Reconstruct(
	name string, emb EmbeddingConfig, fields []field.Field,
	vectorDim int, createdAt time.Time,
) Collection {
	return Collection{
		name:      name,
		embedding: emb,
		fields:    fields,
		vectorDim: vectorDim,
		createdAt: createdAt,
	}
}

// Name returns the collection name.
func (c Collection) Name() string { return c.name }

// Embedding returns the embedding configuration.
func (c Collection) Embedding() EmbeddingConfig { return c.embedding }

// Fields returns the index schema as fields sorted by name.
func (c Collection) Fields() []field.Field { return c.fields }

// Schema returns the index schema as a name->type map.
func (c Collection) Schema() map[string]field.Type {
	m := make(map[string]field.Type, len(c.fields))
	for _, f := range c.fields {
		m[f.Name()] = f.FieldType()
	}
	return m
}

// VectorDim returns the vector dimension of the collection's model.
func (c Collection) VectorDim() int { return c.vectorDim }

// CreatedAt returns the creation time (UTC).
func (c Collection) CreatedAt() time.Time { return c.createdAt }

// FieldByName looks up a field by name.
func (c Collection) FieldByName(name string) (field.Field, bool) {
	for _, f := range c.fields {
		if f.Name() == name {
			return f, true
		}
	}
	return field.Field{}, false
}
