// Package task reports the progress of an ingestion batch.
package task

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/recall/internal/domain"
	domtask "github.com/kailas-cloud/recall/internal/domain/task"
)

// Service aggregates per-job states into a task report.
type Service struct {
	jobs JobLister
}

// New creates a task status service.
func New(jobs JobLister) *Service {
	return &Service{jobs: jobs}
}

// Status returns a point-in-time snapshot of every job sharing the task id prefix.
// An unknown or expired task yields an empty report, not an error.
func (s *Service) Status(ctx context.Context, taskID string) (domtask.Report, error) {
	if taskID == "" || strings.Contains(taskID, ":") {
		return domtask.Report{}, fmt.Errorf("%w: invalid task id %q", domain.ErrInvalidRequest, taskID)
	}

	jobs, err := s.jobs.ListByPrefix(ctx, taskID)
	if err != nil {
		return domtask.Report{}, fmt.Errorf("list jobs: %w", err)
	}

	return domtask.Aggregate(taskID, jobs), nil
}
