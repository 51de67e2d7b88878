package task

import (
	"context"
	"errors"
)

var (
	// ErrNoDelivery is returned when no job arrived within the poll window.
	ErrNoDelivery = errors.New("no job available")
	// ErrJobNotFound signals a job whose state expired or was never stored.
	ErrJobNotFound = errors.New("job not found")
	// ErrQueueClosed means the dispatcher can no longer deliver; consumers stop.
	ErrQueueClosed = errors.New("job queue closed")
)

// Delivery is one job id handed to a worker. Ack releases it from the queue;
// an unacked delivery is redelivered after recovery.
type Delivery struct {
	JobID string
	ack   func(context.Context) error
}

// NewDelivery binds a job id to its queue acknowledgement.
func NewDelivery(jobID string, ack func(context.Context) error) Delivery {
	return Delivery{JobID: jobID, ack: ack}
}

// Ack acknowledges the delivery. A delivery without an ack hook is a no-op.
func (d Delivery) Ack(ctx context.Context) error {
	if d.ack == nil {
		return nil
	}
	return d.ack(ctx)
}
