package recall

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by APIError.Is. Use errors.Is() to check.
var (
	ErrCollectionNotFound = errors.New("collection not found")
	ErrCollectionExists   = errors.New("collection already exists")
	ErrUnsupportedModel   = errors.New("unsupported model")
	ErrSchemaValidation   = errors.New("schema validation failed")
	ErrEmbedding          = errors.New("embedding failed")
	ErrInvalidFilter      = errors.New("invalid filter")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrVectorDB           = errors.New("vector database error")
	ErrUnauthorized       = errors.New("unauthorized")
)

var kindSentinels = map[string]error{
	"CollectionNotFoundError": ErrCollectionNotFound,
	"CollectionExistsError":   ErrCollectionExists,
	"UnsupportedModelError":   ErrUnsupportedModel,
	"SchemaValidationError":   ErrSchemaValidation,
	"EmbeddingError":          ErrEmbedding,
	"InvalidFilterOperation":  ErrInvalidFilter,
	"InvalidRequest":          ErrInvalidRequest,
	"VectorDBError":           ErrVectorDB,
	"Unauthorized":            ErrUnauthorized,
}

// APIError is a non-2xx response decoded from the service's error envelope.
type APIError struct {
	StatusCode int
	Kind       string
	Message    string
	Details    map[string]any
}

func (e *APIError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("recall: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("recall: %s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
}

// Is maps the error kind onto the package sentinels.
func (e *APIError) Is(target error) bool {
	s, ok := kindSentinels[e.Kind]
	return ok && s == target
}

// Violations returns the per-field reasons of a SchemaValidationError.
func (e *APIError) Violations() []Violation {
	raw, ok := e.Details["violations"].([]any)
	if !ok {
		return nil
	}
	out := make([]Violation, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		f, _ := m["field"].(string)
		r, _ := m["reason"].(string)
		out = append(out, Violation{Field: f, Reason: r})
	}
	return out
}

// Violation is one failed payload field.
type Violation struct {
	Field  string
	Reason string
}
