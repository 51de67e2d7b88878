package embedding

import (
	"context"

	"github.com/kailas-cloud/recall/internal/domain"
)

type mockEmbedder struct {
	model      string
	result     domain.EmbeddingResult
	err        error
	batchErr   error
	batchCalls int
	batchSizes []int
}

func (m *mockEmbedder) Embed(_ context.Context, _ domain.Content) (domain.EmbeddingResult, error) {
	return m.result, m.err
}

func (m *mockEmbedder) Dimensions() int   { return len(m.result.Embedding) }
func (m *mockEmbedder) ModelName() string { return m.model }

func (m *mockEmbedder) EmbedBatch(_ context.Context, contents []domain.Content) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	m.batchSizes = append(m.batchSizes, len(contents))
	if m.batchErr != nil {
		return domain.BatchEmbeddingResult{}, m.batchErr
	}
	embeddings := make([][]float32, len(contents))
	for i := range contents {
		embeddings[i] = m.result.Embedding
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   embeddings,
		PromptTokens: m.result.PromptTokens * len(contents),
		TotalTokens:  m.result.TotalTokens * len(contents),
	}, nil
}

// plainMockEmbedder implements only Embedder, not BatchEmbedder.
type plainMockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *plainMockEmbedder) Embed(_ context.Context, _ domain.Content) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

func (m *plainMockEmbedder) Dimensions() int   { return len(m.result.Embedding) }
func (m *plainMockEmbedder) ModelName() string { return "plain" }

func texts(ss ...string) []domain.Content {
	out := make([]domain.Content, len(ss))
	for i, s := range ss {
		out[i] = domain.TextContent(s)
	}
	return out
}
