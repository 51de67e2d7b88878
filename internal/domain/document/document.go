package document

import (
	"fmt"
	"maps"
)

// MaxIDLength is the maximum external document id length.
const MaxIDLength = 512

// PayloadDocIDKey is the payload key that carries the external document id on every point.
const PayloadDocIDKey = "_doc_id"

// Source tells where the document content comes from.
type Source int

const (
	// SourceNone means neither content_raw nor content_uri was given.
	SourceNone Source = iota
	// SourceRaw means inline content.
	SourceRaw
	// SourceURI means content must be fetched from a URI.
	SourceURI
)

// Document is an ingestion request item (immutable value object).
type Document struct {
	id         string
	contentURI string
	contentRaw string
	payload    map[string]any
}

// New validates and creates a Document.
// Missing content is accepted here; the worker reports it as a failed outcome.
func New(id, contentURI, contentRaw string, payload map[string]any) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document id is required")
	}
	if len(id) > MaxIDLength {
		return Document{}, fmt.Errorf("document id too long (max %d)", MaxIDLength)
	}
	return Reconstruct(id, contentURI, contentRaw, payload), nil
}

// Reconstruct creates a Document without validation (job hydration).
func Reconstruct(id, contentURI, contentRaw string, payload map[string]any) Document {
	return Document{
		id:         id,
		contentURI: contentURI,
		contentRaw: contentRaw,
		payload:    maps.Clone(payload),
	}
}

// ID returns the caller-supplied document id.
func (d Document) ID() string { return d.id }

// ContentURI returns the content URI, if any.
func (d Document) ContentURI() string { return d.contentURI }

// ContentRaw returns the inline content, if any.
func (d Document) ContentRaw() string { return d.contentRaw }

// Payload returns the caller payload.
func (d Document) Payload() map[string]any { return d.payload }

// Source picks content_raw first, then content_uri.
func (d Document) Source() Source {
	switch {
	case d.contentRaw != "":
		return SourceRaw
	case d.contentURI != "":
		return SourceURI
	default:
		return SourceNone
	}
}

// PointPayload returns the caller payload merged with the _doc_id key.
func (d Document) PointPayload() map[string]any {
	out := make(map[string]any, len(d.payload)+1)
	maps.Copy(out, d.payload)
	out[PayloadDocIDKey] = d.id
	return out
}

// Stored is a document as persisted in the vector database, addressed by point id.
type Stored struct {
	PointID string
	Payload map[string]any
}

// DocID returns the external document id carried in the payload, if present.
func (s Stored) DocID() string {
	id, _ := s.Payload[PayloadDocIDKey].(string)
	return id
}
