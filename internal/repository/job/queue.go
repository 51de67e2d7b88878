package job

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/recall/internal/db"
	"github.com/kailas-cloud/recall/internal/domain/task"
)

// lists is the consumer interface for the Redis list queue (ISP).
type lists interface {
	LPush(ctx context.Context, key string, values ...string) error
	BLMove(ctx context.Context, src, dst string, timeout time.Duration) (string, error)
	LMove(ctx context.Context, src, dst string) (string, error)
	LRem(ctx context.Context, key, value string) error
	LLen(ctx context.Context, key string) (int64, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// DefaultLease is how long a consumer counts as alive after its last poll.
// It must exceed the longest job, since a fully busy consumer does not poll.
const DefaultLease = 10 * time.Minute

// ListQueue dispatches job ids through Redis lists. A claimed id moves
// atomically from pending to the consumer's own processing list and stays
// there until acked. Each poll renews a liveness key; the processing lists of
// consumers whose key expired are recoverable.
type ListQueue struct {
	lists    lists
	prefix   string
	pending  string
	consumer string
	lease    time.Duration

	lastBeat atomic.Int64
}

var _ Dispatcher = (*ListQueue)(nil)

// NewListQueue creates a list-backed dispatcher under the given key prefix
// with a fresh consumer id.
func NewListQueue(l lists, prefix string) *ListQueue {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &ListQueue{
		lists:    l,
		prefix:   prefix,
		pending:  prefix + "queue:pending",
		consumer: uuid.NewString(),
		lease:    DefaultLease,
	}
}

// WithLease overrides the consumer liveness lease.
func (q *ListQueue) WithLease(d time.Duration) *ListQueue {
	if d > 0 {
		q.lease = d
	}
	return q
}

// WithConsumerID overrides the generated consumer id.
func (q *ListQueue) WithConsumerID(id string) *ListQueue {
	if id != "" {
		q.consumer = id
	}
	return q
}

// Publish appends job ids to the pending list.
func (q *ListQueue) Publish(ctx context.Context, jobIDs ...string) error {
	if err := q.lists.LPush(ctx, q.pending, jobIDs...); err != nil {
		return fmt.Errorf("publish jobs: %w", err)
	}
	return nil
}

// Next waits up to wait for a job id. Returns task.ErrNoDelivery on timeout.
func (q *ListQueue) Next(ctx context.Context, wait time.Duration) (task.Delivery, error) {
	if err := q.heartbeat(ctx, false); err != nil {
		return task.Delivery{}, err
	}

	processing := q.processingKey(q.consumer)
	id, err := q.lists.BLMove(ctx, q.pending, processing, wait)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return task.Delivery{}, task.ErrNoDelivery
		}
		return task.Delivery{}, fmt.Errorf("claim job: %w", err)
	}
	return task.NewDelivery(id, func(ctx context.Context) error {
		return q.lists.LRem(ctx, processing, id)
	}), nil
}

// Recover moves the ids held by expired consumers back to pending and returns
// them. Processing lists of live consumers are left alone.
func (q *ListQueue) Recover(ctx context.Context) ([]string, error) {
	if err := q.heartbeat(ctx, true); err != nil {
		return nil, err
	}

	keys, err := q.lists.Scan(ctx, q.processingKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan processing lists: %w", err)
	}

	var moved []string
	for _, key := range keys {
		consumer := strings.TrimPrefix(key, q.processingKey(""))
		if consumer == q.consumer {
			continue
		}
		alive, err := q.lists.Exists(ctx, q.aliveKey(consumer))
		if err != nil {
			return moved, fmt.Errorf("check consumer %s: %w", consumer, err)
		}
		if alive {
			continue
		}
		for {
			id, err := q.lists.LMove(ctx, key, q.pending)
			if errors.Is(err, db.ErrKeyNotFound) {
				break
			}
			if err != nil {
				return moved, fmt.Errorf("recover jobs: %w", err)
			}
			moved = append(moved, id)
		}
	}
	return moved, nil
}

// heartbeat renews the liveness key at most four times per lease unless forced.
func (q *ListQueue) heartbeat(ctx context.Context, force bool) error {
	now := time.Now().UnixNano()
	if !force && time.Duration(now-q.lastBeat.Load()) < q.lease/4 {
		return nil
	}
	if err := q.lists.SetWithTTL(ctx, q.aliveKey(q.consumer), []byte("1"), q.lease); err != nil {
		return fmt.Errorf("renew consumer lease: %w", err)
	}
	q.lastBeat.Store(now)
	return nil
}

// Key patterns: {prefix}queue:processing:{consumer}, {prefix}queue:alive:{consumer}
func (q *ListQueue) processingKey(consumer string) string {
	return q.prefix + "queue:processing:" + consumer
}

func (q *ListQueue) aliveKey(consumer string) string {
	return q.prefix + "queue:alive:" + consumer
}

// Depth returns the number of pending job ids.
func (q *ListQueue) Depth(ctx context.Context) (int64, error) {
	n, err := q.lists.LLen(ctx, q.pending)
	if err != nil {
		return 0, fmt.Errorf("queue depth: %w", err)
	}
	return n, nil
}
