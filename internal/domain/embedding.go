package domain

import (
	"context"
	"fmt"
)

// Modality is the content kind an embedder accepts.
type Modality string

const (
	// ModalityText embeds text content.
	ModalityText Modality = "text"
	// ModalityImage embeds raw image bytes.
	ModalityImage Modality = "image"
)

// IsValid reports whether the modality is known.
func (m Modality) IsValid() bool {
	return m == ModalityText || m == ModalityImage
}

// Content is embedder input: either text or raw bytes.
type Content struct {
	text  string
	data  []byte
	isRaw bool
}

// TextContent wraps a string.
func TextContent(s string) Content { return Content{text: s} }

// BytesContent wraps raw bytes (fetched files, images).
func BytesContent(b []byte) Content { return Content{data: b, isRaw: true} }

// IsBytes reports whether the content carries raw bytes.
func (c Content) IsBytes() bool { return c.isRaw }

// Text returns the content as a string, decoding bytes as UTF-8.
func (c Content) Text() string {
	if c.isRaw {
		return string(c.data)
	}
	return c.text
}

// Bytes returns the content as bytes.
func (c Content) Bytes() []byte {
	if c.isRaw {
		return c.data
	}
	return []byte(c.text)
}

// Len returns the content size in bytes.
func (c Content) Len() int {
	if c.isRaw {
		return len(c.data)
	}
	return len(c.text)
}

// Embedder is the shared vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, content Content) (EmbeddingResult, error)
	Dimensions() int
	ModelName() string
}

// BatchEmbedder vectorizes multiple contents in a single call.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, contents []Content) (BatchEmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult carries multiple embedding vectors and aggregate token usage.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

// EmbedBatch uses the native batch call when available and falls back to one Embed per item.
func EmbedBatch(ctx context.Context, e Embedder, contents []Content) (BatchEmbeddingResult, error) {
	if be, ok := e.(BatchEmbedder); ok {
		res, err := be.EmbedBatch(ctx, contents)
		if err != nil {
			return BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
		}
		return res, nil
	}

	embeddings := make([][]float32, len(contents))
	var totalPrompt, totalTokens int

	for i, c := range contents {
		res, err := e.Embed(ctx, c)
		if err != nil {
			return BatchEmbeddingResult{}, fmt.Errorf("fallback embed [%d]: %w", i, err)
		}
		embeddings[i] = res.Embedding
		totalPrompt += res.PromptTokens
		totalTokens += res.TotalTokens
	}

	return BatchEmbeddingResult{
		Embeddings:   embeddings,
		PromptTokens: totalPrompt,
		TotalTokens:  totalTokens,
	}, nil
}
