package result

import "github.com/kailas-cloud/recall/internal/domain/document"

// Result is a single search hit.
type Result struct {
	id      string
	score   float64
	payload map[string]any
	vector  []float32
}

// New creates a search result.
func New(id string, score float64, payload map[string]any, vector []float32) Result {
	return Result{id: id, score: score, payload: payload, vector: vector}
}

// ID returns the point identifier.
func (r Result) ID() string { return r.id }

// Score returns the similarity score.
func (r Result) Score() float64 { return r.score }

// Payload returns the point payload (nil when not requested).
func (r Result) Payload() map[string]any { return r.payload }

// Vector returns the point vector (nil when not requested).
func (r Result) Vector() []float32 { return r.vector }

// DocID returns the external document id carried in the payload, if present.
func (r Result) DocID() string {
	s, _ := r.payload[document.PayloadDocIDKey].(string)
	return s
}

// Page is an ordered list of hits for one query.
type Page struct {
	Query   string
	Results []Result
}

// Count returns the number of hits.
func (p Page) Count() int { return len(p.Results) }
