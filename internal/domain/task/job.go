// Package task models ingestion jobs and the batch task view derived from them.
package task

import (
	"strings"
	"time"
)

// State is the queue-reported state of a job, or its final report classification.
type State string

// Job states. Failed is only produced by classification; the queue never stores it.
const (
	StateQueued     State = "queued"
	StateInProgress State = "in_progress"
	StateComplete   State = "complete"
	StateFailed     State = "failed"
	StateNotFound   State = "not_found"
)

// JobID correlates a document job with its batch: "{batch_id}:{doc_id}".
func JobID(batchID, docID string) string {
	return batchID + ":" + docID
}

// ParseJobID splits a job id on its first colon. Doc ids may contain colons.
// An id without a colon yields itself as the doc id.
func ParseJobID(jobID string) (batchID, docID string) {
	batchID, docID, ok := strings.Cut(jobID, ":")
	if !ok {
		return "", jobID
	}
	return batchID, docID
}

// Job is one embed_document unit of work as stored in the queue.
type Job struct {
	ID         string         `json:"id"`
	Collection string         `json:"collection"`
	DocID      string         `json:"doc_id"`
	ContentURI string         `json:"content_uri,omitempty"`
	ContentRaw string         `json:"content_raw,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
	State      State          `json:"state"`
	Attempts   int            `json:"attempts"`
	EnqueuedAt time.Time      `json:"enqueued_at"`
	StartedAt  time.Time      `json:"started_at,omitzero"`
	FinishedAt time.Time      `json:"finished_at,omitzero"`
	Outcome    *Outcome       `json:"outcome,omitempty"`
}

// Handle is returned to the caller of an ingestion.
type Handle struct {
	TaskID          string
	DocumentsQueued int
	Status          State
}
