package task

import (
	"context"

	domtask "github.com/kailas-cloud/recall/internal/domain/task"
)

// JobLister finds every job of one ingestion batch.
type JobLister interface {
	ListByPrefix(ctx context.Context, taskID string) ([]domtask.Job, error)
}
