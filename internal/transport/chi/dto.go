package chi

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/recall/internal/domain"
	domcol "github.com/kailas-cloud/recall/internal/domain/collection"
	"github.com/kailas-cloud/recall/internal/domain/collection/field"
	"github.com/kailas-cloud/recall/internal/domain/document"
	"github.com/kailas-cloud/recall/internal/domain/search/result"
	"github.com/kailas-cloud/recall/internal/domain/task"
	documentuc "github.com/kailas-cloud/recall/internal/usecase/document"
)

// EmbeddingConfig is the wire form of a collection's model binding.
type EmbeddingConfig struct {
	Model    string          `json:"model"`
	Modality domain.Modality `json:"modality,omitempty"`
}

// CreateCollectionRequest is the body of POST /collections.
type CreateCollectionRequest struct {
	Name            string            `json:"name"`
	EmbeddingConfig EmbeddingConfig   `json:"embedding_config"`
	IndexSchema     map[string]string `json:"index_schema"`
}

// CollectionResponse acknowledges a create or delete.
type CollectionResponse struct {
	Status  string `json:"status"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Collection is the stored configuration returned by GET /collections/{name}.
type Collection struct {
	Name            string            `json:"name"`
	EmbeddingConfig EmbeddingConfig   `json:"embedding_config"`
	IndexSchema     map[string]string `json:"index_schema"`
	CreatedAt       time.Time         `json:"created_at"`
}

// DocumentInput is one document of an ingest request.
type DocumentInput struct {
	ID         string         `json:"id"`
	ContentURI string         `json:"content_uri,omitempty"`
	ContentRaw string         `json:"content_raw,omitempty"`
	Payload    map[string]any `json:"payload"`
}

// IngestRequest is the body of POST /collections/{name}/documents.
type IngestRequest struct {
	Documents []DocumentInput `json:"documents"`
}

// IngestResponse is the task handle of an accepted ingestion.
type IngestResponse struct {
	TaskID          string `json:"task_id"`
	DocumentsQueued int    `json:"documents_queued"`
	Status          string `json:"status"`
}

// DocumentPoint is one stored point.
type DocumentPoint struct {
	ID      string         `json:"id"`
	Payload map[string]any `json:"payload"`
}

// DocumentListResponse is a page of stored points.
type DocumentListResponse struct {
	Documents  []DocumentPoint `json:"documents"`
	Total      int             `json:"total"`
	Limit      int             `json:"limit"`
	Offset     string          `json:"offset"`
	NextOffset *string         `json:"next_offset,omitempty"`
}

// SearchRequest is the body of POST /collections/{name}/search.
type SearchRequest struct {
	Query       string          `json:"query"`
	Filter      json.RawMessage `json:"filter,omitempty"`
	Limit       *int            `json:"limit,omitempty"`
	WithPayload *bool           `json:"with_payload,omitempty"`
	WithVectors *bool           `json:"with_vectors,omitempty"`
}

// SearchResult is one ranked hit.
type SearchResult struct {
	ID      string         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload,omitempty"`
	Vector  []float32      `json:"vector,omitempty"`
}

// SearchResponse is the ranked result list.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Query   string         `json:"query"`
	Count   int            `json:"count"`
}

// JobStatus is one document's status within a task.
type JobStatus struct {
	DocID  string         `json:"doc_id"`
	Status string         `json:"status"`
	Result map[string]any `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// TaskSummary tallies a task's jobs.
type TaskSummary struct {
	Total      int `json:"total"`
	Queued     int `json:"queued"`
	InProgress int `json:"in_progress"`
	Complete   int `json:"complete"`
	Failed     int `json:"failed"`
}

// TaskStatusResponse is the body of GET /tasks/{task_id}.
type TaskStatusResponse struct {
	TaskID  string      `json:"task_id"`
	Jobs    []JobStatus `json:"jobs"`
	Summary TaskSummary `json:"summary"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func collectionToWire(c domcol.Collection) Collection {
	return Collection{
		Name: c.Name(),
		EmbeddingConfig: EmbeddingConfig{
			Model:    c.Embedding().Model,
			Modality: c.Embedding().Modality,
		},
		IndexSchema: field.ToMap(c.Fields()),
		CreatedAt:   c.CreatedAt().UTC(),
	}
}

func documentsFromWire(in []DocumentInput) ([]document.Document, error) {
	docs := make([]document.Document, 0, len(in))
	for i, d := range in {
		doc, err := document.New(d.ID, d.ContentURI, d.ContentRaw, d.Payload)
		if err != nil {
			return nil, fmt.Errorf("%w: documents[%d]: %w", domain.ErrInvalidRequest, i, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func pageToWire(p documentuc.Page) DocumentListResponse {
	resp := DocumentListResponse{
		Documents: make([]DocumentPoint, len(p.Documents)),
		Total:     p.Total,
		Limit:     p.Limit,
		Offset:    p.Offset,
	}
	for i, d := range p.Documents {
		resp.Documents[i] = DocumentPoint{ID: d.PointID, Payload: d.Payload}
	}
	if p.NextOffset != "" {
		next := p.NextOffset
		resp.NextOffset = &next
	}
	return resp
}

func searchPageToWire(p result.Page) SearchResponse {
	resp := SearchResponse{
		Results: make([]SearchResult, len(p.Results)),
		Query:   p.Query,
		Count:   p.Count(),
	}
	for i, r := range p.Results {
		resp.Results[i] = SearchResult{
			ID:      r.ID(),
			Score:   r.Score(),
			Payload: r.Payload(),
			Vector:  r.Vector(),
		}
	}
	return resp
}

func reportToWire(r task.Report) TaskStatusResponse {
	resp := TaskStatusResponse{
		TaskID: r.TaskID,
		Jobs:   make([]JobStatus, len(r.Jobs)),
		Summary: TaskSummary{
			Total:      r.Summary.Total,
			Queued:     r.Summary.Queued,
			InProgress: r.Summary.InProgress,
			Complete:   r.Summary.Complete,
			Failed:     r.Summary.Failed,
		},
	}
	for i, j := range r.Jobs {
		resp.Jobs[i] = JobStatus{
			DocID:  j.DocID,
			Status: string(j.Status),
			Result: j.Result,
			Error:  j.Error,
		}
	}
	return resp
}
