package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCollectionNotFound signals a missing collection.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrCollectionExists signals a duplicate collection name.
	ErrCollectionExists = errors.New("collection already exists")
	// ErrUnsupportedModel signals an embedding model outside the model table.
	ErrUnsupportedModel = errors.New("unsupported model")
	// ErrSchemaValidation signals a payload that does not satisfy the collection schema.
	ErrSchemaValidation = errors.New("schema validation failed")
	// ErrEmbedding signals an embedder failure.
	ErrEmbedding = errors.New("embedding failed")
	// ErrVectorDB signals a vector database failure.
	ErrVectorDB = errors.New("vector database error")
	// ErrInvalidFilter signals an unknown or malformed filter operation.
	ErrInvalidFilter = errors.New("invalid filter operation")
	// ErrInvalidRequest signals a malformed request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNoContent signals a document without content_raw or content_uri.
	ErrNoContent = errors.New("no content provided")
	// ErrContentFetch signals a failure to resolve a content URI.
	ErrContentFetch = errors.New("content fetch failed")
)

// SchemaValidationError aggregates every payload violation of one document.
type SchemaValidationError struct {
	DocID      string
	Violations []Violation
}

// Violation is a single field-level schema failure.
type Violation struct {
	Field  string
	Reason string
}

func (e *SchemaValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Field + ": " + v.Reason
	}
	return fmt.Sprintf("Document '%s' payload validation failed: %s", e.DocID, strings.Join(parts, "; "))
}

func (e *SchemaValidationError) Unwrap() error { return ErrSchemaValidation }

// UnsupportedModelError names the rejected model and the supported set.
type UnsupportedModelError struct {
	Model     string
	Supported []string
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("Model '%s' is not supported. Supported models: %s",
		e.Model, strings.Join(e.Supported, ", "))
}

func (e *UnsupportedModelError) Unwrap() error { return ErrUnsupportedModel }

// EmbeddingError wraps an embedder failure with the model name.
type EmbeddingError struct {
	Model string
	Err   error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed for model '%s': %v", e.Model, e.Err)
}

// Is lets errors.Is match ErrEmbedding while Unwrap exposes the cause.
func (e *EmbeddingError) Is(target error) bool { return target == ErrEmbedding }

func (e *EmbeddingError) Unwrap() error { return e.Err }

// NewEmbeddingError creates an EmbeddingError.
func NewEmbeddingError(model string, err error) error {
	return &EmbeddingError{Model: model, Err: err}
}
