package recall

import (
	"encoding/json"
	"time"
)

// Modality selects the embedding input kind of a collection.
type Modality string

// Supported modalities.
const (
	ModalityText  Modality = "text"
	ModalityImage Modality = "image"
)

// FieldType is the payload type of an indexed field.
type FieldType string

// Supported field types.
const (
	FieldFloat   FieldType = "float"
	FieldInt     FieldType = "int"
	FieldKeyword FieldType = "keyword"
	FieldBool    FieldType = "bool"
	FieldText    FieldType = "text"
)

// EmbeddingConfig names the model that vectorizes a collection.
type EmbeddingConfig struct {
	Model    string   `json:"model"`
	Modality Modality `json:"modality,omitempty"`
}

// CollectionInfo describes an existing collection.
type CollectionInfo struct {
	Name            string               `json:"name"`
	EmbeddingConfig EmbeddingConfig      `json:"embedding_config"`
	IndexSchema     map[string]FieldType `json:"index_schema"`
	CreatedAt       time.Time            `json:"created_at"`
}

// Document is one item submitted for ingestion.
// Exactly one of ContentURI and ContentRaw must be set.
type Document struct {
	ID         string         `json:"id"`
	ContentURI string         `json:"content_uri,omitempty"`
	ContentRaw string         `json:"content_raw,omitempty"`
	Payload    map[string]any `json:"payload"`
}

// IngestResult acknowledges an accepted batch.
type IngestResult struct {
	TaskID          string `json:"task_id"`
	DocumentsQueued int    `json:"documents_queued"`
	Status          string `json:"status"`
}

// StoredDocument is a point returned by a document listing.
type StoredDocument struct {
	ID      string         `json:"id"`
	Payload map[string]any `json:"payload"`
}

// DocumentPage is one page of a document listing.
type DocumentPage struct {
	Documents  []StoredDocument `json:"documents"`
	Total      int              `json:"total"`
	Limit      int              `json:"limit"`
	Offset     string           `json:"offset"`
	NextOffset *string          `json:"next_offset,omitempty"`
}

// HasMore reports whether another page follows.
func (p DocumentPage) HasMore() bool { return p.NextOffset != nil }

// SearchQuery is a semantic search request.
// Filter is usually built with And, Or, Eq and friends; any JSON-encodable
// value in the same shape is accepted.
type SearchQuery struct {
	Query       string
	Filter      any
	Limit       int
	WithPayload *bool
	WithVectors bool
}

type searchRequest struct {
	Query       string          `json:"query"`
	Filter      json.RawMessage `json:"filter,omitempty"`
	Limit       *int            `json:"limit,omitempty"`
	WithPayload *bool           `json:"with_payload,omitempty"`
	WithVectors *bool           `json:"with_vectors,omitempty"`
}

// Hit is one scored search result.
type Hit struct {
	ID      string         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload,omitempty"`
	Vector  []float32      `json:"vector,omitempty"`
}

// SearchResults is the response of a search call.
type SearchResults struct {
	Results []Hit  `json:"results"`
	Query   string `json:"query"`
	Count   int    `json:"count"`
}

// Job states reported by the task endpoint.
const (
	JobQueued     = "queued"
	JobInProgress = "in_progress"
	JobComplete   = "complete"
	JobFailed     = "failed"
	JobNotFound   = "not_found"
)

// JobStatus is the state of one document within a task.
type JobStatus struct {
	DocID  string         `json:"doc_id"`
	Status string         `json:"status"`
	Result map[string]any `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// TaskSummary counts jobs per state.
type TaskSummary struct {
	Total      int `json:"total"`
	Queued     int `json:"queued"`
	InProgress int `json:"in_progress"`
	Complete   int `json:"complete"`
	Failed     int `json:"failed"`
}

// Done reports whether no job is still queued or running.
func (s TaskSummary) Done() bool { return s.Queued == 0 && s.InProgress == 0 }

// TaskStatus is the aggregated state of an ingestion task.
type TaskStatus struct {
	TaskID  string      `json:"task_id"`
	Jobs    []JobStatus `json:"jobs"`
	Summary TaskSummary `json:"summary"`
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            `json:"status"` // "ok", "degraded", "error"
	Checks map[string]string `json:"checks"` // component -> "ok"/"error"
}
