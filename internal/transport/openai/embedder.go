// Package openai embeds text and images through an OpenAI-compatible /v1/embeddings server.
package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recall/internal/domain"
	"github.com/kailas-cloud/recall/internal/metrics"
)

// remoteSchemes are URI prefixes an image embedder refuses as string content.
var remoteSchemes = []string{"http://", "https://", "s3://"}

// Embedder is an embedding provider using the OpenAI-compatible API. Image
// models receive raw bytes as base64 data URIs; string content is sent as text,
// which CLIP servers embed with the text tower for cross-modal queries.
type Embedder struct {
	client     *openai.Client
	model      string
	dimensions int
	modality   domain.Modality
	user       string
	provider   string
	logger     *zap.Logger
}

var (
	_ domain.Embedder      = (*Embedder)(nil)
	_ domain.BatchEmbedder = (*Embedder)(nil)
	_ domain.HealthChecker = (*Embedder)(nil)
)

// Config holds the embedding provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Modality   domain.Modality
	User       string
	Provider   string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewEmbedder creates an OpenAI-compatible embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}

	modality := cfg.Modality
	if modality == "" {
		modality = domain.ModalityText
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Embedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		modality:   modality,
		user:       cfg.User,
		provider:   cfg.Provider,
		logger:     logger,
	}
}

// Dimensions returns the model's vector size.
func (e *Embedder) Dimensions() int { return e.dimensions }

// ModelName returns the model name.
func (e *Embedder) ModelName() string { return e.model }

// Embed implements domain.Embedder. Returns the vector and usage with transport-level metrics.
func (e *Embedder) Embed(ctx context.Context, content domain.Content) (domain.EmbeddingResult, error) {
	res, err := e.EmbedBatch(ctx, []domain.Content{content})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{
		Embedding:    res.Embeddings[0],
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

// EmbedBatch vectorizes contents in one request. Response order is restored by index.
func (e *Embedder) EmbedBatch(ctx context.Context, contents []domain.Content) (domain.BatchEmbeddingResult, error) {
	if len(contents) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	inputs := make([]string, len(contents))
	for i, c := range contents {
		in, err := e.input(c)
		if err != nil {
			return domain.BatchEmbeddingResult{}, domain.NewEmbeddingError(e.model, err)
		}
		inputs[i] = in
	}

	req := openai.EmbeddingRequest{
		Input:          inputs,
		Model:          openai.EmbeddingModel(e.model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		User:           e.user,
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	if err != nil {
		e.countError("api_error")
		return domain.BatchEmbeddingResult{}, domain.NewEmbeddingError(e.model, parseAPIError(err))
	}
	if len(resp.Data) != len(contents) {
		e.countError("count_mismatch")
		return domain.BatchEmbeddingResult{}, domain.NewEmbeddingError(e.model,
			fmt.Errorf("expected %d embeddings, got %d", len(contents), len(resp.Data)))
	}

	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })

	embeddings := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		if e.dimensions > 0 && len(d.Embedding) != e.dimensions {
			e.countError("dimension_mismatch")
			return domain.BatchEmbeddingResult{}, domain.NewEmbeddingError(e.model,
				fmt.Errorf("expected %d dimensions, got %d", e.dimensions, len(d.Embedding)))
		}
		embeddings[i] = d.Embedding
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(e.provider, e.model).Observe(duration.Seconds())

	totalTokens := resp.Usage.TotalTokens
	promptTokens := resp.Usage.PromptTokens
	if totalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, e.model, "prompt").Add(float64(promptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, e.model, "total").Add(float64(totalTokens))
	}

	e.logger.Debug("Embedded batch",
		zap.String("model", e.model), zap.Int("count", len(contents)), zap.Duration("duration", duration))

	return domain.BatchEmbeddingResult{
		Embeddings:   embeddings,
		PromptTokens: promptTokens,
		TotalTokens:  totalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// input renders one content as a request input string.
func (e *Embedder) input(c domain.Content) (string, error) {
	if e.modality != domain.ModalityImage {
		return c.Text(), nil
	}
	if c.IsBytes() {
		data := c.Bytes()
		return "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data), nil
	}
	s := c.Text()
	lower := strings.ToLower(s)
	for _, scheme := range remoteSchemes {
		if strings.HasPrefix(lower, scheme) {
			return "", fmt.Errorf("content must be downloaded first: %q", s)
		}
	}
	return s, nil
}

func (e *Embedder) countError(kind string) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, e.model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, e.model, kind).Inc()
}

// parseAPIError extracts a human-readable error from the API response.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("embedding API error %d: %s", reqErr.HTTPStatusCode, detail)
		}
		return fmt.Errorf("embedding API error %d: %s", reqErr.HTTPStatusCode, string(reqErr.Body))
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}

	return fmt.Errorf("embedding request failed: %w", err)
}

// extractDetail extracts the "detail" field from a JSON error body (FastAPI error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
