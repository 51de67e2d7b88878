package request

import (
	"fmt"

	"github.com/kailas-cloud/recall/internal/domain/search/filter"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultLimit   = 10
	MaxLimit       = 100
)

// Request is a validated search query.
type Request struct {
	query       string
	filter      filter.Condition
	limit       int
	withPayload bool
	withVectors bool
}

// New validates search parameters. A zero limit selects DefaultLimit;
// anything outside 1..MaxLimit is rejected.
func New(query string, f filter.Condition, limit int, withPayload, withVectors bool) (Request, error) {
	if query == "" {
		return Request{}, fmt.Errorf("query is required")
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 1 || limit > MaxLimit {
		return Request{}, fmt.Errorf("limit must be between 1 and %d", MaxLimit)
	}

	return Request{
		query:       query,
		filter:      f,
		limit:       limit,
		withPayload: withPayload,
		withVectors: withVectors,
	}, nil
}

// Query returns the search query text (or image URI for image collections).
func (r Request) Query() string { return r.query }

// Filter returns the optional filter tree; nil means match all.
func (r Request) Filter() filter.Condition { return r.filter }

// Limit returns the maximum results to return.
func (r Request) Limit() int { return r.limit }

// WithPayload reports whether payloads should be returned.
func (r Request) WithPayload() bool { return r.withPayload }

// WithVectors reports whether vectors should be returned.
func (r Request) WithVectors() bool { return r.withVectors }
