// Package job stores ingestion job state in Redis hashes and hands job ids to workers
// through a pluggable dispatcher.
package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/recall/internal/domain/task"
)

const (
	// DefaultKeyPrefix namespaces job and queue keys.
	DefaultKeyPrefix = "recall:"
	// DefaultKeepResult is how long a finished job's state stays readable.
	DefaultKeepResult = time.Hour
)

// store is the consumer interface for job state (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Dispatcher moves job ids from producers to workers with at-least-once delivery.
type Dispatcher interface {
	Publish(ctx context.Context, jobIDs ...string) error
	// Next returns task.ErrNoDelivery when nothing arrived within wait.
	Next(ctx context.Context, wait time.Duration) (task.Delivery, error)
	// Recover makes unacked deliveries of crashed consumers available again.
	Recover(ctx context.Context) ([]string, error)
}

// Repo implements the job queue: state per job id plus dispatch.
type Repo struct {
	store      store
	dispatcher Dispatcher
	prefix     string
	keepResult time.Duration
	now        func() time.Time
}

// New creates a job repository.
func New(s store, d Dispatcher) *Repo {
	return &Repo{
		store:      s,
		dispatcher: d,
		prefix:     DefaultKeyPrefix,
		keepResult: DefaultKeepResult,
		now:        time.Now,
	}
}

// WithKeyPrefix overrides the key prefix.
func (r *Repo) WithKeyPrefix(prefix string) *Repo {
	if prefix != "" {
		r.prefix = prefix
	}
	return r
}

// WithKeepResult sets the retention of finished jobs.
func (r *Repo) WithKeepResult(ttl time.Duration) *Repo {
	if ttl > 0 {
		r.keepResult = ttl
	}
	return r
}

// Enqueue stores and publishes jobs in order. On error, the jobs before the failing
// one stay queued; the returned count says how many.
func (r *Repo) Enqueue(ctx context.Context, jobs []task.Job) (int, error) {
	for i, j := range jobs {
		j.State = task.StateQueued
		j.Attempts = 0
		j.EnqueuedAt = r.now().UTC()

		fields, err := jobToHash(j)
		if err != nil {
			return i, fmt.Errorf("job %s: %w", j.ID, err)
		}
		if err := r.store.HSet(ctx, r.jobKey(j.ID), fields); err != nil {
			return i, fmt.Errorf("hset job %s: %w", j.ID, err)
		}
		if err := r.dispatcher.Publish(ctx, j.ID); err != nil {
			return i, fmt.Errorf("job %s: %w", j.ID, err)
		}
	}
	return len(jobs), nil
}

// Claim waits up to wait for the next job and marks it in progress.
// A delivery whose state is gone is acked and reported as task.ErrJobNotFound.
func (r *Repo) Claim(ctx context.Context, wait time.Duration) (task.Job, task.Delivery, error) {
	d, err := r.dispatcher.Next(ctx, wait)
	if err != nil {
		return task.Job{}, task.Delivery{}, err
	}

	key := r.jobKey(d.JobID)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return task.Job{}, d, fmt.Errorf("hgetall job %s: %w", d.JobID, err)
	}
	if len(m) == 0 {
		ackErr := d.Ack(ctx)
		return task.Job{}, task.Delivery{}, errors.Join(fmt.Errorf("%w: %s", task.ErrJobNotFound, d.JobID), ackErr)
	}

	j, err := jobFromHash(m)
	if err != nil {
		return task.Job{}, d, fmt.Errorf("parse job %s: %w", d.JobID, err)
	}

	j.State = task.StateInProgress
	j.Attempts++
	j.StartedAt = r.now().UTC()
	err = r.store.HSet(ctx, key, map[string]string{
		"state":      string(j.State),
		"attempts":   strconv.Itoa(j.Attempts),
		"started_at": formatTime(j.StartedAt),
	})
	if err != nil {
		return task.Job{}, d, fmt.Errorf("hset job %s: %w", d.JobID, err)
	}

	return j, d, nil
}

// Complete stores the outcome, starts the retention TTL and acks the delivery.
// Failed outcomes are stored as complete; classification happens on read.
func (r *Repo) Complete(ctx context.Context, j task.Job, o task.Outcome, d task.Delivery) error {
	raw, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}

	key := r.jobKey(j.ID)
	err = r.store.HSet(ctx, key, map[string]string{
		"state":       string(task.StateComplete),
		"outcome":     string(raw),
		"finished_at": formatTime(r.now()),
	})
	if err != nil {
		return fmt.Errorf("hset job %s: %w", j.ID, err)
	}
	if err := r.store.Expire(ctx, key, r.keepResult, false); err != nil {
		return fmt.Errorf("expire job %s: %w", j.ID, err)
	}
	if err := d.Ack(ctx); err != nil {
		return fmt.Errorf("ack job %s: %w", j.ID, err)
	}
	return nil
}

// Fail completes the job with a failure outcome carrying cause's message.
func (r *Repo) Fail(ctx context.Context, j task.Job, cause error, d task.Delivery) error {
	return r.Complete(ctx, j, task.NewFailure(j.DocID, cause.Error()), d)
}

// Get returns a job by id. An expired or unknown job is returned with state not_found.
func (r *Repo) Get(ctx context.Context, jobID string) (task.Job, error) {
	m, err := r.store.HGetAll(ctx, r.jobKey(jobID))
	if err != nil {
		return task.Job{}, fmt.Errorf("hgetall job %s: %w", jobID, err)
	}
	return r.hydrate(jobID, m)
}

// ListByPrefix returns every job whose id starts with "{taskID}:".
func (r *Repo) ListByPrefix(ctx context.Context, taskID string) ([]task.Job, error) {
	keys, err := r.store.Scan(ctx, r.jobKey(escapeGlob(taskID)+":*"))
	if err != nil {
		return nil, fmt.Errorf("scan jobs: %w", err)
	}
	if len(keys) == 0 {
		return []task.Job{}, nil
	}
	// SCAN may repeat a key; a repeat would be counted twice.
	slices.Sort(keys)
	keys = slices.Compact(keys)

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi jobs: %w", err)
	}

	jobs := make([]task.Job, 0, len(results))
	for i, m := range results {
		j, err := r.hydrate(strings.TrimPrefix(keys[i], r.jobKey("")), m)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

// Requeue returns unacked jobs of crashed workers to the queue.
func (r *Repo) Requeue(ctx context.Context) (int, error) {
	ids, err := r.dispatcher.Recover(ctx)
	for _, id := range ids {
		if hErr := r.store.HSet(ctx, r.jobKey(id), map[string]string{"state": string(task.StateQueued)}); hErr != nil {
			err = errors.Join(err, fmt.Errorf("hset job %s: %w", id, hErr))
		}
	}
	return len(ids), err
}

// hydrate parses a job hash; an empty hash (expired between SCAN and HGETALL) is not_found.
func (r *Repo) hydrate(jobID string, m map[string]string) (task.Job, error) {
	if len(m) == 0 {
		_, docID := task.ParseJobID(jobID)
		return task.Job{ID: jobID, DocID: docID, State: task.StateNotFound}, nil
	}
	j, err := jobFromHash(m)
	if err != nil {
		return task.Job{}, fmt.Errorf("parse job %s: %w", jobID, err)
	}
	return j, nil
}

// Key pattern: {prefix}job:{batch_id}:{doc_id}
func (r *Repo) jobKey(jobID string) string {
	return r.prefix + "job:" + jobID
}

// escapeGlob quotes SCAN MATCH metacharacters.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, c := range s {
		switch c {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}
