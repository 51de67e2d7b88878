package task

// OutcomeStatus is the processing outcome of a single job.
type OutcomeStatus string

// Job outcome status values.
const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeError   OutcomeStatus = "error"
)

// Outcome is the stored result of a finished job.
type Outcome struct {
	Status OutcomeStatus  `json:"status"`
	DocID  string         `json:"doc_id"`
	Result map[string]any `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// NewSuccess creates a successful outcome for an embedded document.
func NewSuccess(docID, collection string, vectorDim int) Outcome {
	return Outcome{
		Status: OutcomeSuccess,
		DocID:  docID,
		Result: map[string]any{
			"status":     string(OutcomeSuccess),
			"doc_id":     docID,
			"collection": collection,
			"vector_dim": vectorDim,
		},
	}
}

// NewFailure creates a failed outcome carrying the error message.
func NewFailure(docID, msg string) Outcome {
	return Outcome{Status: OutcomeError, DocID: docID, Error: msg}
}

// Succeeded reports whether the job produced a point.
func (o Outcome) Succeeded() bool { return o.Status == OutcomeSuccess }
