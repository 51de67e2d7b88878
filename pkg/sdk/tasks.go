package recall

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// TaskService reports ingestion progress.
type TaskService struct {
	c *Client
}

// Status returns the per-document state of a task.
func (s *TaskService) Status(ctx context.Context, taskID string) (_ TaskStatus, err error) {
	start := time.Now()
	defer func() { s.c.obs.observe("task.status", start, err) }()

	var st TaskStatus
	if err = s.c.do(ctx, http.MethodGet, s.c.endpoint(nil, "tasks", taskID), nil, &st); err != nil {
		return TaskStatus{}, fmt.Errorf("task status: %w", err)
	}
	return st, nil
}

// Wait polls until no job of the task is queued or in progress, or ctx ends.
// Job results are kept for a limited time on the server, so a task that is
// waited on long after completion may report no jobs at all.
func (s *TaskService) Wait(ctx context.Context, taskID string) (TaskStatus, error) {
	ticker := time.NewTicker(s.c.pollInterval)
	defer ticker.Stop()

	for {
		st, err := s.Status(ctx, taskID)
		if err != nil {
			return TaskStatus{}, err
		}
		if st.Summary.Done() {
			return st, nil
		}
		select {
		case <-ctx.Done():
			return st, fmt.Errorf("wait for task %s: %w", taskID, ctx.Err())
		case <-ticker.C:
		}
	}
}
